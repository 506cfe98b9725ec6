package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagnostics_AutoDetectGCC(t *testing.T) {
	raw := "foo.c:10:5: error: expected ';' before '}' token\n" +
		"foo.c:12:1: warning: unused variable 'x'\n"

	set := NewRegistry().ParseDiagnostics(raw, "")

	require.Len(t, set.Diagnostics, 2)
	assert.Equal(t, "gcc", set.Source)
	assert.Equal(t, SeverityError, set.Diagnostics[0].Severity)
	assert.Equal(t, 10, set.Diagnostics[0].Location.Line)
	assert.Equal(t, 5, set.Diagnostics[0].Location.Column)
	assert.Equal(t, 1, set.ErrorCount())
	assert.Equal(t, 1, set.WarningCount())
}

func TestParseDiagnostics_ExplicitParser(t *testing.T) {
	raw := "src/main.ts(4,10): error TS2322: Type 'string' is not assignable to type 'number'."
	set := NewRegistry().ParseDiagnostics(raw, "tsc")
	require.Len(t, set.Diagnostics, 1)
	d := set.Diagnostics[0]
	assert.Equal(t, "TS2322", d.Code)
	assert.Equal(t, 4, d.Location.Line)
	assert.Equal(t, 10, d.Location.Column)
}

func TestParseDiagnostics_UnknownParserReturnsEmpty(t *testing.T) {
	set := NewRegistry().ParseDiagnostics("anything", "no-such-parser")
	assert.Empty(t, set.Diagnostics)
}

func TestParseDiagnostics_UnparseableInputNeverRaises(t *testing.T) {
	assert.NotPanics(t, func() {
		set := NewRegistry().ParseDiagnostics("\x00\x01 garbage \xff\xfe", "")
		assert.Empty(t, set.Diagnostics)
	})
}

func TestParseDiagnostics_UnknownSeverityDefaultsToInfo(t *testing.T) {
	reg := NewRegistry()
	reg.Register("custom", func(string) DiagnosticSet {
		return DiagnosticSet{Diagnostics: []Diagnostic{{Message: "no severity set"}}}
	}, nil)
	set := reg.ParseDiagnostics("x", "custom")
	require.Len(t, set.Diagnostics, 1)
	assert.Equal(t, SeverityInfo, set.Diagnostics[0].Severity)
}

func TestParseDiagnostics_RustcMultiLineCollapsesToSuggestion(t *testing.T) {
	raw := "error[E0308]: mismatched types\n" +
		" --> src/main.rs:3:13\n" +
		"  |\n" +
		"3 |     let x: u32 = \"hi\";\n" +
		"  |             ^^^^ expected `u32`, found `&str`\n" +
		"\n"
	set := NewRegistry().ParseDiagnostics(raw, "rustc")
	require.Len(t, set.Diagnostics, 1)
	d := set.Diagnostics[0]
	assert.Equal(t, "E0308", d.Code)
	assert.Equal(t, "src/main.rs", d.Location.File)
	assert.Equal(t, 3, d.Location.Line)
	assert.Equal(t, 13, d.Location.Column)
	assert.NotEmpty(t, d.Suggestion)
}

func TestParseDiagnostics_JSONEnvelope(t *testing.T) {
	raw := `{"severity":"error","file":"a.py","line":2,"column":1,"code":"E001","message":"bad indent"}`
	set := NewRegistry().ParseDiagnostics(raw, "")
	require.Len(t, set.Diagnostics, 1)
	assert.Equal(t, "json", set.Source)
	assert.Equal(t, SeverityError, set.Diagnostics[0].Severity)
}

func TestStripNoise_RemovesANSIAndCollapsesBlankLines(t *testing.T) {
	raw := "\x1b[31merror\x1b[0m: bad\n\n\n\nwarning: also bad\n"
	got := stripNoise(raw)
	assert.NotContains(t, got, "\x1b")
	assert.NotContains(t, got, "\n\n\n")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "he", truncate("hello", 2))
}
