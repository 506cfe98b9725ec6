package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarantinePolicy_TrapsNonRepairAllowsRepairAllowsUnrelated(t *testing.T) {
	p := NewQuarantinePolicy()
	p.Quarantine("foo.py", "SyntaxError line 5")
	ctx := context.Background()

	res, err := p.Evaluate(ctx, ToolCallContext{ToolName: "edit", Target: "foo.py"})
	require.NoError(t, err)
	assert.Equal(t, Quarantine, res.Decision)

	res, err = p.Evaluate(ctx, ToolCallContext{ToolName: "repair", Target: "foo.py"})
	require.NoError(t, err)
	assert.Equal(t, Warn, res.Decision)
	assert.Equal(t, "SyntaxError line 5", res.Reason)

	res, err = p.Evaluate(ctx, ToolCallContext{ToolName: "edit", Target: "bar.py"})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)
}

func TestQuarantinePolicy_ReleaseRestoresAllow(t *testing.T) {
	p := NewQuarantinePolicy()
	p.Quarantine("foo.py", "broken")
	p.Release("foo.py")

	res, err := p.Evaluate(context.Background(), ToolCallContext{ToolName: "edit", Target: "foo.py"})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)
}

func TestQuarantinePolicy_Priority(t *testing.T) {
	assert.Equal(t, 20, NewQuarantinePolicy().Priority())
}
