package policy

import (
	"context"
	"strings"

	"github.com/codeready-toolchain/agentcore/pkg/trust"
)

// trustChecker is the subset of trust.Manager that TrustPolicy consults;
// narrowed so tests can substitute a fake without a backing YAML file.
type trustChecker interface {
	Check(operation, target string) trust.TrustDecision
}

// TrustPolicy bridges a declarative trust-rules store into the policy
// engine.
type TrustPolicy struct {
	manager trustChecker
}

// NewTrustPolicy wraps a trust manager (or any trustChecker) as a Policy.
func NewTrustPolicy(manager trustChecker) *TrustPolicy {
	return &TrustPolicy{manager: manager}
}

func (p *TrustPolicy) Name() string { return "trust" }
func (p *TrustPolicy) Priority() int { return 5 }

func (p *TrustPolicy) Evaluate(_ context.Context, tc ToolCallContext) (Result, error) {
	operation := tc.Action
	if operation == "" {
		operation = inferOperation(tc.ToolName)
	}
	target := tc.Target
	if target == "" {
		target = tc.Param("path", "file", "command", "target", "cmd")
	}
	if target == "" {
		target = "*"
	}

	decision := p.manager.Check(operation, target)
	meta := map[string]any{"matched_rule": decision.MatchedRule}

	switch decision.Decision {
	case trust.DecisionAllow:
		return Result{Decision: Allow, Policy: p.Name(), Reason: decision.Reason, Metadata: meta}, nil
	case trust.DecisionDeny:
		return Result{Decision: Deny, Policy: p.Name(), Reason: decision.Reason, Metadata: meta}, nil
	case trust.DecisionConfirm:
		return Result{Decision: Warn, Policy: p.Name(), Reason: decision.Reason, Metadata: meta}, nil
	default:
		// No matching rule: trust rules gate known operations, they don't
		// default-deny the rest.
		return Result{Decision: Allow, Policy: p.Name()}, nil
	}
}

func inferOperation(toolName string) string {
	lower := strings.ToLower(toolName)
	switch {
	case strings.Contains(lower, "read"), strings.Contains(lower, "grep"):
		return "read"
	case strings.Contains(lower, "write"), strings.Contains(lower, "edit"), strings.Contains(lower, "patch"):
		return "write"
	case strings.Contains(lower, "delete"):
		return "delete"
	case strings.Contains(lower, "bash"), strings.Contains(lower, "exec"):
		return "bash"
	default:
		return toolName
	}
}
