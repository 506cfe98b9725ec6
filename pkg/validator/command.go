package validator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const maxStderrBytes = 500

// CommandValidator runs a configured command, substituting the literal
// token `{path}` with the target path in each argument. Non-configured
// success codes produce two issues: the exit code, and a truncated stderr
// excerpt.
type CommandValidator struct {
	name         string
	command      []string
	successCodes map[int]bool
}

// CommandOption configures a CommandValidator.
type CommandOption func(*CommandValidator)

// WithSuccessCodes overrides the default success-code set of {0}.
func WithSuccessCodes(codes ...int) CommandOption {
	return func(v *CommandValidator) {
		v.successCodes = make(map[int]bool, len(codes))
		for _, c := range codes {
			v.successCodes[c] = true
		}
	}
}

// NewCommandValidator returns a CommandValidator named name, running
// command (with `{path}` substitution) against the validated path.
func NewCommandValidator(name string, command []string, opts ...CommandOption) *CommandValidator {
	v := &CommandValidator{
		name:         name,
		command:      command,
		successCodes: map[int]bool{0: true},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *CommandValidator) Name() string { return v.name }

func (v *CommandValidator) Validate(ctx context.Context, path string) (Result, error) {
	args := make([]string, len(v.command))
	for i, tok := range v.command {
		args[i] = strings.ReplaceAll(tok, "{path}", path)
	}
	if len(args) == 0 {
		return Result{Success: true}, nil
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{
				Success: false,
				Issues: []Issue{
					{Severity: SeverityError, Message: fmt.Sprintf("command could not be run: %v", runErr), Source: v.name},
				},
			}, nil
		}
	}

	if v.successCodes[exitCode] {
		return Result{Success: true, Metadata: map[string]any{"exit_code": exitCode}}, nil
	}

	excerpt := stderr.String()
	if len(excerpt) > maxStderrBytes {
		excerpt = excerpt[:maxStderrBytes]
	}
	return Result{
		Success: false,
		Issues: []Issue{
			{Severity: SeverityError, Message: fmt.Sprintf("command failed with exit code %d", exitCode), Source: v.name},
			{Severity: SeverityError, Message: excerpt, Source: v.name},
		},
		Metadata: map[string]any{"exit_code": exitCode},
	}, nil
}
