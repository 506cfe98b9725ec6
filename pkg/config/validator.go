package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg     *Config
	structV *validator.Validate
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg, structV: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first error). Struct-tag validation (`validate:"..."` tags on the leaf
// config structs) runs first to catch malformed values; the semantic
// cross-reference checks below it assume well-formed input. Order after
// that: run_queue → llm providers → defaults → policy → validator → store,
// roughly dependents-after-dependencies.
func (v *Validator) ValidateAll() error {
	if err := v.structV.Struct(v.cfg.Defaults); err != nil {
		return fmt.Errorf("defaults struct validation failed: %w", err)
	}
	if v.cfg.Policy != nil {
		if err := v.structV.Struct(&v.cfg.Policy.Velocity); err != nil {
			return fmt.Errorf("policy.velocity struct validation failed: %w", err)
		}
		if err := v.structV.Struct(&v.cfg.Policy.RateLimit); err != nil {
			return fmt.Errorf("policy.rate_limit struct validation failed: %w", err)
		}
	}
	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		if err := v.structV.Struct(provider); err != nil {
			return fmt.Errorf("llm_provider '%s' struct validation failed: %w", name, err)
		}
	}
	if v.cfg.Validator != nil {
		if err := v.structV.Struct(&v.cfg.Validator.TestRunner); err != nil {
			return fmt.Errorf("validator.test_runner struct validation failed: %w", err)
		}
		if err := v.structV.Struct(&v.cfg.Validator.Diagnostic); err != nil {
			return fmt.Errorf("validator.diagnostic struct validation failed: %w", err)
		}
	}
	if v.cfg.Loop != nil {
		if err := v.structV.Struct(v.cfg.Loop); err != nil {
			return fmt.Errorf("loop struct validation failed: %w", err)
		}
	}

	if err := v.validateRunQueue(); err != nil {
		return fmt.Errorf("run_queue validation failed: %w", err)
	}
	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("LLM provider validation failed: %w", err)
	}
	if err := v.validateDefaults(); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}
	if err := v.validatePolicy(); err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}
	if err := v.validateValidatorConfig(); err != nil {
		return fmt.Errorf("validator chain validation failed: %w", err)
	}
	if err := v.validateStore(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateRunQueue() error {
	q := v.cfg.RunQueue
	if q == nil {
		return fmt.Errorf("run_queue configuration is nil")
	}

	if q.WorkerCount < 1 || q.WorkerCount > 50 {
		return fmt.Errorf("worker_count must be between 1 and 50, got %d", q.WorkerCount)
	}
	if q.MaxConcurrentRuns < 1 {
		return fmt.Errorf("max_concurrent_runs must be at least 1, got %d", q.MaxConcurrentRuns)
	}
	if q.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", q.PollInterval)
	}
	if q.PollIntervalJitter < 0 {
		return fmt.Errorf("poll_interval_jitter must be non-negative, got %v", q.PollIntervalJitter)
	}
	if q.PollIntervalJitter >= q.PollInterval {
		return fmt.Errorf("poll_interval_jitter must be less than poll_interval, got jitter=%v interval=%v", q.PollIntervalJitter, q.PollInterval)
	}
	if q.RunTimeout <= 0 {
		return fmt.Errorf("run_timeout must be positive, got %v", q.RunTimeout)
	}
	if q.GracefulShutdownTimeout <= 0 {
		return fmt.Errorf("graceful_shutdown_timeout must be positive, got %v", q.GracefulShutdownTimeout)
	}
	if q.OrphanDetectionInterval <= 0 {
		return fmt.Errorf("orphan_detection_interval must be positive, got %v", q.OrphanDetectionInterval)
	}
	if q.OrphanThreshold <= 0 {
		return fmt.Errorf("orphan_threshold must be positive, got %v", q.OrphanThreshold)
	}
	if q.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval must be positive, got %v", q.HeartbeatInterval)
	}
	if q.HeartbeatInterval >= q.OrphanThreshold {
		return fmt.Errorf("heartbeat_interval must be less than orphan_threshold to prevent false orphan detection, got heartbeat=%v threshold=%v", q.HeartbeatInterval, q.OrphanThreshold)
	}

	return nil
}

func (v *Validator) validateLLMProviders() error {
	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		if !provider.Type.IsValid() {
			return NewValidationError("llm_provider", name, "type", fmt.Errorf("invalid provider type: %s", provider.Type))
		}
		if provider.Model == "" {
			return NewValidationError("llm_provider", name, "model", ErrMissingRequiredField)
		}
		if provider.Address == "" {
			return NewValidationError("llm_provider", name, "address", ErrMissingRequiredField)
		}
	}
	return nil
}

func (v *Validator) validateDefaults() error {
	d := v.cfg.Defaults
	if d == nil {
		return nil
	}
	if d.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(d.LLMProvider) {
		return NewValidationError("defaults", "", "llm_provider", fmt.Errorf("LLM provider '%s' not found", d.LLMProvider))
	}
	if d.MaxSteps < 0 {
		return NewValidationError("defaults", "", "max_steps", fmt.Errorf("must be non-negative"))
	}
	if d.TokenBudget < 0 {
		return NewValidationError("defaults", "", "token_budget", fmt.Errorf("must be non-negative"))
	}
	if !d.OnError.IsValid() {
		return NewValidationError("defaults", "", "on_error", fmt.Errorf("invalid on_error action: %s", d.OnError))
	}
	return nil
}

func (v *Validator) validatePolicy() error {
	p := v.cfg.Policy
	if p == nil {
		return nil
	}
	if p.Velocity.WindowSeconds < 0 || p.Velocity.StallObservations < 0 || p.Velocity.OscillationCycles < 0 {
		return NewValidationError("policy", "velocity", "", fmt.Errorf("window_seconds/stall_observations/oscillation_cycles must be non-negative"))
	}
	if p.RateLimit.MaxPerMinuteGlobal < 0 || p.RateLimit.MaxPerTarget < 0 {
		return NewValidationError("policy", "rate_limit", "", fmt.Errorf("max_per_minute_global/max_per_target must be non-negative"))
	}
	return nil
}

// validateValidatorConfig checks the one validator section whose
// required-if-enabled shape isn't already covered by struct tags above
// (CommandValidatorConfig's Name/Args combination has no clean tag form).
func (v *Validator) validateValidatorConfig() error {
	vc := v.cfg.Validator
	if vc == nil {
		return nil
	}
	if vc.Command.Enabled && vc.Command.Command == "" {
		return NewValidationError("validator", "command", "command", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateStore() error {
	s := v.cfg.Store
	if s == nil || !s.Enabled {
		return nil
	}
	if s.DSNEnv == "" {
		return NewValidationError("store", "", "dsn_env", fmt.Errorf("required when store is enabled"))
	}
	return nil
}
