package policy

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/agentcore/pkg/trust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustPolicy_MapsDecisionsAndInfersOperation(t *testing.T) {
	manager := trust.NewManager()
	manager.AddRule(trust.Rule{Operation: "write", Pattern: "**/*.go", Decision: trust.DecisionAllow})
	manager.AddRule(trust.Rule{Operation: "delete", Pattern: "**", Decision: trust.DecisionDeny, Reason: "no deletes"})
	manager.AddRule(trust.Rule{Operation: "bash", Pattern: "*", Decision: trust.DecisionConfirm})

	p := NewTrustPolicy(manager)
	ctx := context.Background()

	res, err := p.Evaluate(ctx, ToolCallContext{ToolName: "edit_file", Target: "pkg/foo.go"})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)

	res, err = p.Evaluate(ctx, ToolCallContext{ToolName: "delete_file", Target: "pkg/foo.go"})
	require.NoError(t, err)
	assert.Equal(t, Deny, res.Decision)
	assert.Equal(t, "no deletes", res.Reason)

	res, err = p.Evaluate(ctx, ToolCallContext{ToolName: "bash", Params: map[string]any{"command": "ls"}})
	require.NoError(t, err)
	assert.Equal(t, Warn, res.Decision)
}

func TestTrustPolicy_NoMatchAllows(t *testing.T) {
	p := NewTrustPolicy(trust.NewManager())
	res, err := p.Evaluate(context.Background(), ToolCallContext{ToolName: "read_file", Target: "x"})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)
}

func TestTrustPolicy_Priority(t *testing.T) {
	assert.Equal(t, 5, NewTrustPolicy(trust.NewManager()).Priority())
}
