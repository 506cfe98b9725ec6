package config

// PolicyConfig groups the knobs for every pkg/policy.Policy the default
// engine composes (see pkg/policy.NewDefaultEngine).
type PolicyConfig struct {
	Velocity   VelocityConfig   `yaml:"velocity,omitempty"`
	Quarantine QuarantineConfig `yaml:"quarantine,omitempty"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit,omitempty"`
	Path       PathPolicyConfig `yaml:"path,omitempty"`
	Trust      TrustConfig      `yaml:"trust,omitempty"`
}

// ValidatorConfig configures pkg/validator's chain and its individual
// validators.
type ValidatorConfig struct {
	// StopOnError mirrors Chain.Validate's stopOnError argument as a
	// config-driven default.
	StopOnError bool `yaml:"stop_on_error"`

	Syntax     SyntaxValidatorConfig     `yaml:"syntax,omitempty"`
	Command    CommandValidatorConfig    `yaml:"command,omitempty"`
	TestRunner TestRunnerValidatorConfig `yaml:"test_runner,omitempty"`
	Diagnostic DiagnosticValidatorConfig `yaml:"diagnostic,omitempty"`
}

// SyntaxValidatorConfig enables/disables the go/parser-backed syntax check.
type SyntaxValidatorConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CommandValidatorConfig configures an arbitrary shell-out validator step.
type CommandValidatorConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Name         string   `yaml:"name,omitempty"`
	Command      string   `yaml:"command,omitempty"`
	Args         []string `yaml:"args,omitempty"`
	SuccessCodes []int    `yaml:"success_codes,omitempty"`
}

// TestRunnerValidatorConfig configures the test-suite validator.
type TestRunnerValidatorConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command string   `yaml:"command,omitempty" validate:"required_if=Enabled true"`
	Args    []string `yaml:"args,omitempty"`
}

// DiagnosticValidatorConfig configures the command+diagnostic-parser
// validator bridge.
type DiagnosticValidatorConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Name       string   `yaml:"name,omitempty"`
	Command    string   `yaml:"command,omitempty" validate:"required_if=Enabled true"`
	Args       []string `yaml:"args,omitempty"`
	ParserName string   `yaml:"parser_name,omitempty"`
}

// LoopConfig holds the agent-loop runtime's default retry count. The step,
// token and step-timeout defaults live in Defaults, not here.
type LoopConfig struct {
	MaxRetries int `yaml:"max_retries,omitempty" validate:"omitempty,min=0"`
}

// DiagnosticConfig configures pkg/diagnostic's parser registry.
type DiagnosticConfig struct {
	// ParserAliases maps an extra name to one of the built-in parsers,
	// e.g. mapping a custom lint wrapper's name to "eslint".
	ParserAliases map[string]string `yaml:"parser_aliases,omitempty"`
}

// StoreConfig configures the optional pkg/store persistence adapter.
// When Enabled is false, loop runs execute without any history being
// written (pkg/looprun has no hard dependency on pkg/store).
type StoreConfig struct {
	Enabled        bool             `yaml:"enabled"`
	DSNEnv         string           `yaml:"dsn_env,omitempty"`
	MigrationsPath string           `yaml:"migrations_path,omitempty"`
	Retention      *RetentionConfig `yaml:"retention,omitempty"`
}

// SystemConfig groups cmd/agentcored's own listener settings.
type SystemConfig struct {
	HTTPAddr       string `yaml:"http_addr,omitempty"`
	GRPCHealthAddr string `yaml:"grpc_health_addr,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
}
