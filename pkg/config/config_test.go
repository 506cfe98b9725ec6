package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_StatsReflectsLLMProviderCount(t *testing.T) {
	registry := NewLLMProviderRegistry(map[string]*LLMProviderConfig{
		"a": {Type: LLMProviderTypeGoogle, Model: "m", Address: "a:1"},
		"b": {Type: LLMProviderTypeOpenAI, Model: "m2", Address: "b:1"},
	})
	cfg := &Config{configDir: "/tmp/x", LLMProviderRegistry: registry}

	assert.Equal(t, 2, cfg.Stats().LLMProviders)
	assert.Equal(t, "/tmp/x", cfg.ConfigDir())
}

func TestConfig_GetLLMProvider(t *testing.T) {
	registry := NewLLMProviderRegistry(map[string]*LLMProviderConfig{
		"default": {Type: LLMProviderTypeGoogle, Model: "gemini", Address: "x:1"},
	})
	cfg := &Config{LLMProviderRegistry: registry}

	p, err := cfg.GetLLMProvider("default")
	assert.NoError(t, err)
	assert.Equal(t, "gemini", p.Model)

	_, err = cfg.GetLLMProvider("missing")
	assert.ErrorIs(t, err, ErrLLMProviderNotFound)
}
