// Package validator implements the pluggable validator chain: syntax,
// command, diagnostic, and test-runner validators run in sequence against a
// target path, producing a uniform Result.
package validator

import "context"

// Severity mirrors diagnostic.Severity so validator.Issue stays
// self-contained (validators that don't touch pkg/diagnostic shouldn't need
// to import it just for the severity enum).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one problem found by a validator.
type Issue struct {
	Severity Severity
	Message  string
	File     string
	Line     int
	Column   int
	Code     string
	Source   string
}

// Result bundles one validator's outcome.
type Result struct {
	Success  bool
	Issues   []Issue
	Metadata map[string]any
}

// ErrorCount returns the number of ERROR-severity issues.
func (r Result) ErrorCount() int { return r.countSeverity(SeverityError) }

// WarningCount returns the number of WARNING-severity issues.
func (r Result) WarningCount() int { return r.countSeverity(SeverityWarning) }

func (r Result) countSeverity(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Validator is one step in a ValidatorChain.
type Validator interface {
	Name() string
	Validate(ctx context.Context, path string) (Result, error)
}
