package config

import "sync"

// BuiltinConfig holds compiled-in defaults layered under any user-provided
// llm-providers.yaml, mirroring the teacher's built-in agent/chain defaults.
type BuiltinConfig struct {
	LLMProviders map[string]LLMProviderConfig
}

var (
	builtinOnce sync.Once
	builtin     *BuiltinConfig
)

// GetBuiltinConfig returns the compiled-in configuration defaults,
// initializing them on first use.
func GetBuiltinConfig() *BuiltinConfig {
	builtinOnce.Do(func() {
		builtin = &BuiltinConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"default": {
					Type:                LLMProviderTypeGoogle,
					Model:               "gemini-2.0-flash-thinking-exp-01-21",
					Address:             "localhost:50051",
					APIKeyEnv:           "GEMINI_API_KEY",
					MaxToolResultTokens: 8000,
				},
			},
		}
	})
	return builtin
}
