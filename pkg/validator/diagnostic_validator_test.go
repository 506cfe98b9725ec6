package validator

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/agentcore/pkg/diagnostic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	set diagnostic.DiagnosticSet
}

func (f fakeRegistry) ParseDiagnostics(raw, parserName string) diagnostic.DiagnosticSet {
	return f.set
}

func TestDiagnosticValidator_ConvertsDiagnosticsToIssues(t *testing.T) {
	set := diagnostic.DiagnosticSet{
		Source: "rustc",
		Diagnostics: []diagnostic.Diagnostic{
			{Severity: diagnostic.SeverityError, Message: "type mismatch", Location: &diagnostic.Location{File: "main.rs", Line: 3, Column: 5}},
			{Severity: diagnostic.SeverityWarning, Message: "unused var"},
			{Severity: diagnostic.SeverityHint, Message: "consider renaming"},
		},
	}
	v := NewDiagnosticValidator("rustc", []string{"true"}, fakeRegistry{set: set}, "rustc")
	res, err := v.Validate(context.Background(), "/dev/null")
	require.NoError(t, err)
	assert.False(t, res.Success) // one error present
	require.Len(t, res.Issues, 3)
	assert.Equal(t, SeverityError, res.Issues[0].Severity)
	assert.Equal(t, "main.rs", res.Issues[0].File)
	assert.Equal(t, 3, res.Issues[0].Line)
	assert.Equal(t, SeverityWarning, res.Issues[1].Severity)
	assert.Equal(t, SeverityInfo, res.Issues[2].Severity, "hint maps to info")
}

func TestDiagnosticValidator_NoErrorsSucceeds(t *testing.T) {
	v := NewDiagnosticValidator("clean", []string{"true"}, fakeRegistry{set: diagnostic.DiagnosticSet{}}, "")
	res, err := v.Validate(context.Background(), "/dev/null")
	require.NoError(t, err)
	assert.True(t, res.Success)
}
