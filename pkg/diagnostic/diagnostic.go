// Package diagnostic provides a uniform representation of issues produced
// by external tools (compilers, linters, test runners) and a registry of
// parsers that extract that representation from heterogeneous tool output.
package diagnostic

import "fmt"

// Severity classifies a Diagnostic. The zero value is not a valid severity;
// parsers that cannot determine severity should use SeverityInfo.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Location is a 1-based position in a file. Line and Column are only
// meaningful when both are set; a zero value on either means "unknown".
type Location struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is one issue produced by a tool.
//
// Severity is always set. Location is optional, but when present Line and
// Column are both >= 1.
type Diagnostic struct {
	Severity   Severity
	Location   *Location
	Code       string
	Message    string
	Source     string
	Suggestion string
}

// String renders the diagnostic in a compact, human-readable form.
func (d Diagnostic) String() string {
	loc := ""
	if d.Location != nil {
		loc = fmt.Sprintf("%s:%d:%d: ", d.Location.File, d.Location.Line, d.Location.Column)
	}
	code := ""
	if d.Code != "" {
		code = fmt.Sprintf("[%s] ", d.Code)
	}
	return fmt.Sprintf("%s%s%s: %s%s", loc, d.Severity, boolSuffix(d.Source), code, d.Message)
}

func boolSuffix(source string) string {
	if source == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", source)
}

// DiagnosticSet bundles diagnostics extracted from one tool invocation with
// a source label; ErrorCount and WarningCount count them on each call.
type DiagnosticSet struct {
	Source      string
	Diagnostics []Diagnostic
}

// ErrorCount returns the number of error-severity diagnostics.
func (s DiagnosticSet) ErrorCount() int {
	return s.countSeverity(SeverityError)
}

// WarningCount returns the number of warning-severity diagnostics.
func (s DiagnosticSet) WarningCount() int {
	return s.countSeverity(SeverityWarning)
}

func (s DiagnosticSet) countSeverity(sev Severity) int {
	n := 0
	for _, d := range s.Diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
