package config

import (
	"fmt"
	"sync"
)

// LLMProviderConfig defines one named LLM provider reachable through the
// gRPC LLMService pkg/llm.Client dials. Model selection and credential
// lookup stay config-driven even though transport is fixed to gRPC.
type LLMProviderConfig struct {
	// Type identifies the upstream provider (required).
	Type LLMProviderType `yaml:"type" validate:"required"`

	// Model name passed through to the LLMService on every call (required).
	Model string `yaml:"model" validate:"required"`

	// Address is the gRPC LLMService endpoint for this provider, e.g.
	// "llm-gateway:9443".
	Address string `yaml:"address" validate:"required"`

	// APIKeyEnv names the environment variable holding the upstream API
	// key; the gRPC gateway process reads it, not this binary.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// MaxToolResultTokens caps how many tokens of tool output are folded
	// back into a step's prompt before truncation.
	MaxToolResultTokens int `yaml:"max_tool_result_tokens,omitempty" validate:"omitempty,min=1000"`
}

// LLMProviderRegistry stores LLM provider configurations in memory with
// thread-safe access.
type LLMProviderRegistry struct {
	providers map[string]*LLMProviderConfig
	mu        sync.RWMutex
}

// NewLLMProviderRegistry creates a new LLM provider registry.
func NewLLMProviderRegistry(providers map[string]*LLMProviderConfig) *LLMProviderRegistry {
	copied := make(map[string]*LLMProviderConfig, len(providers))
	for k, v := range providers {
		copied[k] = v
	}
	return &LLMProviderRegistry{providers: copied}
}

// Get retrieves an LLM provider configuration by name (thread-safe).
func (r *LLMProviderRegistry) Get(name string) (*LLMProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrLLMProviderNotFound, name)
	}
	return provider, nil
}

// GetAll returns all LLM provider configurations (thread-safe, returns copy).
func (r *LLMProviderRegistry) GetAll() map[string]*LLMProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*LLMProviderConfig, len(r.providers))
	for k, v := range r.providers {
		result[k] = v
	}
	return result
}

// Has checks if an LLM provider exists in the registry (thread-safe).
func (r *LLMProviderRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.providers[name]
	return exists
}

// Len returns the number of LLM providers in the registry (thread-safe).
func (r *LLMProviderRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
