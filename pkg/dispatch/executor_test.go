package dispatch

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/agentcore/pkg/looprun"
	"github.com/codeready-toolchain/agentcore/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type denyAllPolicy struct{}

func (denyAllPolicy) Name() string     { return "deny-all" }
func (denyAllPolicy) Priority() int    { return 100 }
func (denyAllPolicy) Evaluate(_ context.Context, tc policy.ToolCallContext) (policy.Result, error) {
	return policy.Result{Decision: policy.Deny, Reason: "no tools allowed in this test"}, nil
}

func TestToolExecutor_PolicyDenyBlocksTool(t *testing.T) {
	eng := policy.NewEngine([]policy.Policy{denyAllPolicy{}})
	exec := NewToolExecutor(eng, nil, nil, nil, nil, ".")

	_, _, _, err := exec.Execute(context.Background(), "shadow_branch.create",
		looprun.NewLoopContext(nil), looprun.LoopStep{Name: "branch", Type: looprun.StepTool})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestToolExecutor_UnknownToolErrors(t *testing.T) {
	exec := NewToolExecutor(nil, nil, nil, nil, nil, ".")
	_, _, _, err := exec.Execute(context.Background(), "nonexistent.tool",
		looprun.NewLoopContext(nil), looprun.LoopStep{Name: "step", Type: looprun.StepTool})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestToolExecutor_LLMStepWithoutExecutorErrors(t *testing.T) {
	exec := NewToolExecutor(nil, nil, nil, nil, nil, ".")
	_, _, _, err := exec.Execute(context.Background(), "",
		looprun.NewLoopContext(nil), looprun.LoopStep{Name: "analyze", Type: looprun.StepLLM})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm executor")
}

func TestToolExecutor_MissingCollaboratorsFailFast(t *testing.T) {
	exec := NewToolExecutor(nil, nil, nil, nil, nil, ".")
	_, _, _, err := exec.Execute(context.Background(), "validate.run",
		looprun.NewLoopContext(nil), looprun.LoopStep{Name: "validate", Type: looprun.StepTool})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validator chain")
}
