package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathPolicy_BlockedSubstring(t *testing.T) {
	p := NewPathPolicy()
	res, err := p.Evaluate(context.Background(), ToolCallContext{Target: "repo/.git/config"})
	require.NoError(t, err)
	assert.Equal(t, Deny, res.Decision)
}

func TestPathPolicy_AllowsUnrelatedPath(t *testing.T) {
	p := NewPathPolicy()
	res, err := p.Evaluate(context.Background(), ToolCallContext{Target: "src/main.go"})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)
}

func TestPathPolicy_BlockedPathAndDescendant(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	blocked := filepath.Join(wd, "sensitive")

	p := NewPathPolicy(WithBlockedSubstrings(), WithBlockedPaths(blocked))

	res, err := p.Evaluate(context.Background(), ToolCallContext{Target: blocked})
	require.NoError(t, err)
	assert.Equal(t, Deny, res.Decision)

	res, err = p.Evaluate(context.Background(), ToolCallContext{Target: filepath.Join(blocked, "nested", "file.txt")})
	require.NoError(t, err)
	assert.Equal(t, Deny, res.Decision)

	res, err = p.Evaluate(context.Background(), ToolCallContext{Target: filepath.Join(wd, "other.txt")})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)
}

func TestPathPolicy_Priority(t *testing.T) {
	assert.Equal(t, 0, NewPathPolicy().Priority())
}
