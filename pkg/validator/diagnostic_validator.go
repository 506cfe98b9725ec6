package validator

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/codeready-toolchain/agentcore/pkg/diagnostic"
)

// diagnosticRegistry is the subset of *diagnostic.Registry this validator
// needs, narrowed so tests can substitute a fake.
type diagnosticRegistry interface {
	ParseDiagnostics(raw, parserName string) diagnostic.DiagnosticSet
}

// DiagnosticValidator runs a configured command with structured-output
// flags, concatenates stdout+stderr, and hands the blob to a diagnostic
// parser. This is the preferred pattern for compiler- and linter-backed
// validation: signal without noise.
type DiagnosticValidator struct {
	name       string
	command    []string
	parserName string
	registry   diagnosticRegistry
}

// NewDiagnosticValidator returns a DiagnosticValidator named name, running
// command and parsing its output with registry. parserName may be empty to
// use content-sniffing auto-detection.
func NewDiagnosticValidator(name string, command []string, registry diagnosticRegistry, parserName string) *DiagnosticValidator {
	return &DiagnosticValidator{name: name, command: command, parserName: parserName, registry: registry}
}

func (v *DiagnosticValidator) Name() string { return v.name }

func (v *DiagnosticValidator) Validate(ctx context.Context, path string) (Result, error) {
	args := make([]string, len(v.command))
	for i, tok := range v.command {
		args[i] = strings.ReplaceAll(tok, "{path}", path)
	}

	var combined bytes.Buffer
	if len(args) > 0 {
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Stdout = &combined
		cmd.Stderr = &combined
		_ = cmd.Run() // non-zero exit is expected when diagnostics are found
	}

	set := v.registry.ParseDiagnostics(combined.String(), v.parserName)

	var issues []Issue
	for _, d := range set.Diagnostics {
		issues = append(issues, Issue{
			Severity: mapSeverity(d.Severity),
			Message:  d.Message,
			File:     locationFile(d),
			Line:     locationLine(d),
			Column:   locationColumn(d),
			Code:     d.Code,
			Source:   d.Source,
		})
	}

	return Result{
		Success:  set.ErrorCount() == 0,
		Issues:   issues,
		Metadata: map[string]any{"error_count": set.ErrorCount(), "warning_count": set.WarningCount()},
	}, nil
}

func mapSeverity(s diagnostic.Severity) Severity {
	switch s {
	case diagnostic.SeverityError:
		return SeverityError
	case diagnostic.SeverityWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

func locationFile(d diagnostic.Diagnostic) string {
	if d.Location == nil {
		return ""
	}
	return d.Location.File
}

func locationLine(d diagnostic.Diagnostic) int {
	if d.Location == nil {
		return 0
	}
	return d.Location.Line
}

func locationColumn(d diagnostic.Diagnostic) int {
	if d.Location == nil {
		return 0
	}
	return d.Location.Column
}
