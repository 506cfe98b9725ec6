package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// AgentcoreYAMLConfig represents the complete agentcore.yaml file structure.
type AgentcoreYAMLConfig struct {
	Defaults   *Defaults         `yaml:"defaults"`
	Policy     *PolicyConfig     `yaml:"policy"`
	Validator  *ValidatorConfig  `yaml:"validator"`
	Loop       *LoopConfig       `yaml:"loop"`
	Diagnostic *DiagnosticConfig `yaml:"diagnostic"`
	Store      *StoreConfig      `yaml:"store"`
	System     *SystemConfig     `yaml:"system"`
	RunQueue   *RunQueueConfig   `yaml:"run_queue"`
}

// LLMProvidersYAMLConfig represents the complete llm-providers.yaml file structure.
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration. This
// is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load YAML files from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined LLM providers
//  5. Apply default values for any unset section
//  6. Validate all configuration
//  7. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully", "llm_providers", stats.LLMProviders)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	agentcoreCfg, err := loader.loadAgentcoreYAML()
	if err != nil {
		return nil, NewLoadError("agentcore.yaml", err)
	}

	llmProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	builtinCfg := GetBuiltinConfig()
	llmProvidersMerged := mergeLLMProviders(builtinCfg.LLMProviders, llmProviders)
	llmProviderRegistry := NewLLMProviderRegistry(llmProvidersMerged)

	defaults := agentcoreCfg.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if defaults.MaxSteps == 0 {
		defaults.MaxSteps = 50
	}

	policyCfg := agentcoreCfg.Policy
	if policyCfg == nil {
		policyCfg = &PolicyConfig{}
	}

	validatorCfg := agentcoreCfg.Validator
	if validatorCfg == nil {
		validatorCfg = &ValidatorConfig{}
	}

	loopCfg := agentcoreCfg.Loop
	if loopCfg == nil {
		loopCfg = &LoopConfig{}
	}

	diagnosticCfg := agentcoreCfg.Diagnostic
	if diagnosticCfg == nil {
		diagnosticCfg = &DiagnosticConfig{}
	}

	storeCfg := agentcoreCfg.Store
	if storeCfg == nil {
		storeCfg = &StoreConfig{}
	}
	if storeCfg.Retention == nil {
		storeCfg.Retention = DefaultRetentionConfig()
	}

	systemCfg := resolveSystemConfig(agentcoreCfg.System)

	// Resolve run queue config: start with defaults, then merge user
	// config on top so unset fields keep their built-in values.
	runQueueCfg := DefaultRunQueueConfig()
	if agentcoreCfg.RunQueue != nil {
		if err := mergo.Merge(runQueueCfg, agentcoreCfg.RunQueue, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge run_queue config: %w", err)
		}
	}

	return &Config{
		configDir:           configDir,
		Defaults:            defaults,
		Policy:              policyCfg,
		Validator:           validatorCfg,
		Loop:                loopCfg,
		Diagnostic:          diagnosticCfg,
		Store:               storeCfg,
		System:              systemCfg,
		RunQueue:            runQueueCfg,
		LLMProviderRegistry: llmProviderRegistry,
	}, nil
}

func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

// resolveSystemConfig applies cmd/agentcored's listener defaults for any
// field the user YAML left unset.
func resolveSystemConfig(sys *SystemConfig) *SystemConfig {
	cfg := &SystemConfig{
		HTTPAddr:       ":8080",
		GRPCHealthAddr: ":9090",
		LogLevel:       "info",
	}
	if sys == nil {
		return cfg
	}
	if sys.HTTPAddr != "" {
		cfg.HTTPAddr = sys.HTTPAddr
	}
	if sys.GRPCHealthAddr != "" {
		cfg.GRPCHealthAddr = sys.GRPCHealthAddr
	}
	if sys.LogLevel != "" {
		cfg.LogLevel = sys.LogLevel
	}
	return cfg
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Note: ExpandEnv passes through original data on parse/execution
	// errors, allowing the YAML parser to handle the content (or fail with
	// a clearer error message).
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadAgentcoreYAML() (*AgentcoreYAMLConfig, error) {
	var cfg AgentcoreYAMLConfig
	if err := l.loadYAML("agentcore.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *configLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	var cfg LLMProvidersYAMLConfig
	cfg.LLMProviders = make(map[string]LLMProviderConfig)
	if err := l.loadYAML("llm-providers.yaml", &cfg); err != nil {
		return nil, err
	}
	return cfg.LLMProviders, nil
}
