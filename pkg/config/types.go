package config

// Shared leaf types used across configuration sections.

// VelocityConfig configures pkg/policy's stall/oscillation detector.
type VelocityConfig struct {
	WindowSeconds     int `yaml:"window_seconds,omitempty" validate:"omitempty,min=1"`
	StallObservations int `yaml:"stall_observations,omitempty" validate:"omitempty,min=1"`
	OscillationCycles int `yaml:"oscillation_cycles,omitempty" validate:"omitempty,min=1"`
}

// QuarantineConfig configures pkg/policy's QuarantinePolicy repair-tool allowlist.
type QuarantineConfig struct {
	RepairTools []string `yaml:"repair_tools,omitempty"`
}

// RateLimitConfig configures pkg/policy's RateLimitPolicy thresholds.
type RateLimitConfig struct {
	MaxPerMinuteGlobal int `yaml:"max_per_minute_global,omitempty" validate:"omitempty,min=1"`
	MaxPerTarget       int `yaml:"max_per_target,omitempty" validate:"omitempty,min=1"`
}

// PathPolicyConfig configures pkg/policy's PathPolicy blocklist.
type PathPolicyConfig struct {
	BlockedPaths []string `yaml:"blocked_paths,omitempty"`
}

// TrustConfig points at the declarative trust-rules YAML file pkg/trust loads.
type TrustConfig struct {
	RulesFile string `yaml:"rules_file,omitempty"`
}
