package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/agentcore/ent"
	"github.com/codeready-toolchain/agentcore/pkg/looprun"
	"github.com/codeready-toolchain/agentcore/pkg/runqueue"
)

// RunExecutor implements runqueue.LoopExecutor, resolving the AgentLoop
// named by a queued LoopRun and driving it through a looprun.Runner.
type RunExecutor struct {
	runner   *looprun.Runner
	loops    *LoopRegistry
	executor looprun.Executor
}

// NewRunExecutor builds a RunExecutor.
func NewRunExecutor(runner *looprun.Runner, loops *LoopRegistry, executor looprun.Executor) *RunExecutor {
	return &RunExecutor{runner: runner, loops: loops, executor: executor}
}

// Execute resolves run.LoopName, decodes run.Input (JSON), and drives the
// loop to completion. It never returns nil: an unknown loop name or
// malformed input both produce a StatusFailed ExecutionResult rather than
// letting the worker pool synthesize one.
func (e *RunExecutor) Execute(ctx context.Context, run *ent.LoopRun) *runqueue.ExecutionResult {
	loop, ok := e.loops.Get(run.LoopName)
	if !ok {
		return &runqueue.ExecutionResult{
			Status: looprun.StatusFailed,
			Error:  fmt.Errorf("agent: unknown loop %q", run.LoopName),
		}
	}

	var input any
	if run.Input != "" {
		if err := json.Unmarshal([]byte(run.Input), &input); err != nil {
			return &runqueue.ExecutionResult{
				Status: looprun.StatusFailed,
				Error:  fmt.Errorf("agent: decoding run input: %w", err),
			}
		}
	}

	result, err := e.runner.Run(ctx, loop, e.executor, input)

	var finalOutput any
	if encoded, encErr := json.Marshal(result.FinalOutput); encErr == nil {
		finalOutput = string(encoded)
	}

	status := result.Status
	if status == "" {
		status = looprun.StatusFailed
	}
	if err != nil && result.Error == "" {
		result.Error = err.Error()
	}
	var resultErr error
	if result.Error != "" {
		resultErr = fmt.Errorf("%s", result.Error)
	}

	return &runqueue.ExecutionResult{
		Status:      status,
		FinalOutput: finalOutput,
		Iterations:  result.Metrics.Iterations,
		TotalTokens: result.Metrics.LLMTokensIn + result.Metrics.LLMTokensOut,
		Error:       resultErr,
	}
}
