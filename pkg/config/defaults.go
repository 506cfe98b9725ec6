package config

import "time"

// Defaults contains system-wide default configurations. Used when a loop
// definition or step doesn't specify its own value.
type Defaults struct {
	// LLMProvider names the default entry in the LLMProviderRegistry used by
	// steps that don't set llm_provider explicitly.
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// MaxSteps bounds a loop with no explicit max_steps.
	MaxSteps int `yaml:"max_steps,omitempty" validate:"omitempty,min=1"`

	// TokenBudget bounds a loop with no explicit token_budget (0 = unbounded).
	TokenBudget int `yaml:"token_budget,omitempty" validate:"omitempty,min=0"`

	// StepTimeout bounds a single step's execution when the step doesn't
	// declare its own timeout.
	StepTimeout time.Duration `yaml:"step_timeout,omitempty"`

	// OnError is the default error action for steps that don't declare one.
	OnError OnErrorAction `yaml:"on_error,omitempty" validate:"omitempty"`
}
