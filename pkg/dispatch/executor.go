package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/agentcore/pkg/diagnostic"
	"github.com/codeready-toolchain/agentcore/pkg/looprun"
	"github.com/codeready-toolchain/agentcore/pkg/policy"
	"github.com/codeready-toolchain/agentcore/pkg/shadowvcs"
	"github.com/codeready-toolchain/agentcore/pkg/validator"
)

// ToolExecutor is the looprun.Executor cmd/agentcored drives every AgentLoop
// with. "llm"/"hybrid" steps delegate to an inner Executor (pkg/llm.Client);
// "tool" steps are policy-gated, then dispatched by step.Tool against the
// shadow-VCS engine, validator chain, or diagnostic registry.
type ToolExecutor struct {
	policy      *policy.Engine
	validators  *validator.Chain
	diagnostics *diagnostic.Registry
	vcs         *shadowvcs.Engine
	llm         looprun.Executor
	stopOnError bool
	workdir     string
	logger      *slog.Logger
}

// Option configures a ToolExecutor.
type Option func(*ToolExecutor)

// WithLogger overrides the default slog.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *ToolExecutor) { e.logger = l }
}

// WithStopOnError controls whether the validator chain halts at the first
// failing validator (true) or runs every validator regardless (false).
func WithStopOnError(stop bool) Option {
	return func(e *ToolExecutor) { e.stopOnError = stop }
}

// NewToolExecutor builds a ToolExecutor. Any of validators/diagnostics/vcs
// may be nil; the corresponding tools then fail fast with a clear error
// instead of panicking.
func NewToolExecutor(eng *policy.Engine, validators *validator.Chain, diagnostics *diagnostic.Registry, vcs *shadowvcs.Engine, llm looprun.Executor, workdir string, opts ...Option) *ToolExecutor {
	e := &ToolExecutor{
		policy:      eng,
		validators:  validators,
		diagnostics: diagnostics,
		vcs:         vcs,
		llm:         llm,
		workdir:     workdir,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute implements looprun.Executor.
func (e *ToolExecutor) Execute(ctx context.Context, toolName string, lc looprun.LoopContext, step looprun.LoopStep) (any, int, int, error) {
	switch step.Type {
	case looprun.StepLLM, looprun.StepHybrid:
		if e.llm == nil {
			return nil, 0, 0, fmt.Errorf("agent: step %q needs an llm executor but none is configured", step.Name)
		}
		return e.llm.Execute(ctx, toolName, lc, step)
	case looprun.StepTool:
		return e.executeTool(ctx, toolName, lc, step)
	default:
		return nil, 0, 0, fmt.Errorf("agent: unknown step type %q for step %q", step.Type, step.Name)
	}
}

func (e *ToolExecutor) executeTool(ctx context.Context, toolName string, lc looprun.LoopContext, step looprun.LoopStep) (any, int, int, error) {
	target := stringParam(lc, "branch", "path", "target")
	if e.policy != nil {
		tc := policy.ToolCallContext{
			ToolName:  toolName,
			Target:    target,
			Action:    step.Name,
			Params:    inputMap(lc),
			Timestamp: time.Now(),
		}
		result, err := e.policy.Evaluate(ctx, tc)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("agent: policy evaluation: %w", err)
		}
		if !result.Allowed {
			if result.BlockingResult != nil {
				return nil, 0, 0, fmt.Errorf("agent: policy %q denied tool %q: %s", result.BlockingResult.Policy, toolName, result.BlockingResult.Reason)
			}
			return nil, 0, 0, fmt.Errorf("agent: policy denied tool %q", toolName)
		}
	}

	switch toolName {
	case "shadow_branch.create":
		return e.createBranch(ctx, lc)
	case "shadow_branch.commit":
		return e.commitBranch(ctx, lc)
	case "shadow_branch.diff":
		return e.diffBranch(ctx, lc)
	case "shadow_branch.rollback":
		return e.rollbackBranch(ctx, lc)
	case "validate.run":
		return e.runValidators(ctx, lc)
	case "diagnostics.parse":
		return e.parseDiagnostics(lc)
	default:
		return nil, 0, 0, fmt.Errorf("agent: unknown tool %q", toolName)
	}
}

func (e *ToolExecutor) createBranch(ctx context.Context, lc looprun.LoopContext) (any, int, int, error) {
	if e.vcs == nil {
		return nil, 0, 0, fmt.Errorf("agent: shadow_branch.create requires a shadow-VCS engine")
	}
	name := stringParam(lc, "branch", "name")
	if name == "" {
		name = fmt.Sprintf("loop-%d", time.Now().UnixNano())
	}
	branch, err := e.vcs.CreateShadowBranch(ctx, name)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("agent: create shadow branch: %w", err)
	}
	return branch, 0, 0, nil
}

func (e *ToolExecutor) commitBranch(ctx context.Context, lc looprun.LoopContext) (any, int, int, error) {
	if e.vcs == nil {
		return nil, 0, 0, fmt.Errorf("agent: shadow_branch.commit requires a shadow-VCS engine")
	}
	branch, ok := lc.Last.(*shadowvcs.ShadowBranch)
	if !ok {
		return nil, 0, 0, fmt.Errorf("agent: shadow_branch.commit expects the prior step's output to be a *shadowvcs.ShadowBranch")
	}
	message := stringParam(lc, "message")
	if message == "" {
		message = "agent loop commit"
	}
	handle, err := e.vcs.Commit(ctx, branch, message, false)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("agent: commit: %w", err)
	}
	return handle, 0, 0, nil
}

func (e *ToolExecutor) diffBranch(ctx context.Context, lc looprun.LoopContext) (any, int, int, error) {
	if e.vcs == nil {
		return nil, 0, 0, fmt.Errorf("agent: shadow_branch.diff requires a shadow-VCS engine")
	}
	branch, ok := lc.Last.(*shadowvcs.ShadowBranch)
	if !ok {
		return nil, 0, 0, fmt.Errorf("agent: shadow_branch.diff expects the prior step's output to be a *shadowvcs.ShadowBranch")
	}
	diff, err := e.vcs.Diff(ctx, branch)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("agent: diff: %w", err)
	}
	return diff, 0, 0, nil
}

func (e *ToolExecutor) rollbackBranch(ctx context.Context, lc looprun.LoopContext) (any, int, int, error) {
	if e.vcs == nil {
		return nil, 0, 0, fmt.Errorf("agent: shadow_branch.rollback requires a shadow-VCS engine")
	}
	branch, ok := lc.Last.(*shadowvcs.ShadowBranch)
	if !ok {
		return nil, 0, 0, fmt.Errorf("agent: shadow_branch.rollback expects the prior step's output to be a *shadowvcs.ShadowBranch")
	}
	if err := e.vcs.Rollback(ctx, branch, 1); err != nil {
		return nil, 0, 0, fmt.Errorf("agent: rollback: %w", err)
	}
	return branch, 0, 0, nil
}

func (e *ToolExecutor) runValidators(ctx context.Context, lc looprun.LoopContext) (any, int, int, error) {
	if e.validators == nil {
		return nil, 0, 0, fmt.Errorf("agent: validate.run requires a validator chain")
	}
	path := stringParam(lc, "path")
	if path == "" {
		path = e.workdir
	}
	result, err := e.validators.Validate(ctx, path, e.stopOnError)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("agent: validate: %w", err)
	}
	if !result.Success {
		return result, 0, 0, fmt.Errorf("agent: validation failed: %d issue(s)", len(result.Issues()))
	}
	return result, 0, 0, nil
}

func (e *ToolExecutor) parseDiagnostics(lc looprun.LoopContext) (any, int, int, error) {
	if e.diagnostics == nil {
		return nil, 0, 0, fmt.Errorf("agent: diagnostics.parse requires a diagnostic registry")
	}
	raw, _ := lc.Last.(string)
	parserName := stringParam(lc, "parser", "parser_name")
	return e.diagnostics.ParseDiagnostics(raw, parserName), 0, 0, nil
}

// inputMap best-effort coerces the loop context's input into a param map
// for the policy engine; non-map inputs evaluate with empty params.
func inputMap(lc looprun.LoopContext) map[string]any {
	if m, ok := lc.Input.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func stringParam(lc looprun.LoopContext, keys ...string) string {
	m := inputMap(lc)
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
