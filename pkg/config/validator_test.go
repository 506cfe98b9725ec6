package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Defaults:   &Defaults{MaxSteps: 10},
		Policy:     &PolicyConfig{},
		Validator:  &ValidatorConfig{},
		Loop:       &LoopConfig{},
		Diagnostic: &DiagnosticConfig{},
		Store:      &StoreConfig{Enabled: false},
		System:     &SystemConfig{HTTPAddr: ":8080", GRPCHealthAddr: ":9090", LogLevel: "info"},
		RunQueue:   DefaultRunQueueConfig(),
		LLMProviderRegistry: NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"default": {Type: LLMProviderTypeGoogle, Model: "gemini", Address: "x:1"},
		}),
	}
}

func TestValidateAll_AcceptsWellFormedConfig(t *testing.T) {
	require.NoError(t, NewValidator(validConfig()).ValidateAll())
}

func TestValidateAll_RejectsHeartbeatAboveOrphanThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.RunQueue.HeartbeatInterval = cfg.RunQueue.OrphanThreshold + time.Second

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}

func TestValidateAll_RejectsUnknownDefaultLLMProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.LLMProvider = "does-not-exist"

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}

func TestValidateAll_RejectsStoreEnabledWithoutDSNEnv(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Enabled = true

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}

func TestValidateAll_RejectsCommandValidatorEnabledWithoutCommand(t *testing.T) {
	cfg := validConfig()
	cfg.Validator.Command.Enabled = true

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}

func TestValidateAll_RejectsInvalidLLMProviderType(t *testing.T) {
	cfg := validConfig()
	cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
		"bad": {Type: LLMProviderType("nope"), Model: "m", Address: "x:1"},
	})

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}
