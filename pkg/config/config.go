package config

// Config is the umbrella configuration object produced by Initialize. It is
// threaded through pkg/policy, pkg/validator, pkg/looprun, pkg/store, and
// cmd/agentcored at startup.
type Config struct {
	configDir string

	Defaults   *Defaults
	Policy     *PolicyConfig
	Validator  *ValidatorConfig
	Loop       *LoopConfig
	Diagnostic *DiagnosticConfig
	Store      *StoreConfig
	System     *SystemConfig
	RunQueue   *RunQueueConfig

	LLMProviderRegistry *LLMProviderRegistry
}

// ConfigStats contains statistics about loaded configuration.
type ConfigStats struct {
	LLMProviders int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		LLMProviders: len(c.LLMProviderRegistry.GetAll()),
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetLLMProvider retrieves an LLM provider configuration by name.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}
