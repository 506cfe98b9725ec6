package trust

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CheckMatchesGlob(t *testing.T) {
	m := NewManager()
	m.AddRule(Rule{Operation: "write", Pattern: "src/**/*.go", Decision: DecisionAllow})
	m.AddRule(Rule{Operation: "write", Pattern: "**/*.secret", Decision: DecisionDeny, Reason: "secrets are immutable"})

	d := m.Check("write", "src/pkg/foo.go")
	assert.Equal(t, DecisionAllow, d.Decision)
	assert.Equal(t, "write:src/**/*.go", d.MatchedRule)

	d = m.Check("write", "config/app.secret")
	assert.Equal(t, DecisionDeny, d.Decision)
	assert.Equal(t, "secrets are immutable", d.Reason)
}

func TestManager_CheckNoMatchReturnsEmptyDecision(t *testing.T) {
	m := NewManager()
	d := m.Check("read", "anything")
	assert.Empty(t, d.Decision)
}

func TestManager_FirstMatchWins(t *testing.T) {
	m := NewManager()
	m.AddRule(Rule{Operation: "bash", Pattern: "*", Decision: DecisionConfirm})
	m.AddRule(Rule{Operation: "bash", Pattern: "rm *", Decision: DecisionDeny})

	d := m.Check("bash", "rm -rf /tmp/x")
	assert.Equal(t, DecisionConfirm, d.Decision, "first matching rule in file order wins")
}

func TestLoad_ParsesYAMLRulesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trust.yaml")
	content := `
rules:
  - operation: read
    pattern: "**"
    decision: allow
  - operation: delete
    pattern: "vendor/**"
    decision: deny
    reason: "vendor is generated"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := Load(path)
	require.NoError(t, err)

	d := m.Check("delete", "vendor/modules.txt")
	assert.Equal(t, DecisionDeny, d.Decision)
	assert.Equal(t, "vendor is generated", d.Reason)

	d = m.Check("read", "anything/at/all")
	assert.Equal(t, DecisionAllow, d.Decision)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [not, valid, :yaml"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
