package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Engine evaluates a priority-sorted, stable-for-ties chain of policies.
type Engine struct {
	policies []Policy
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine builds an engine from the given policies, sorted by descending
// priority. Sort is stable so equal-priority policies keep insertion order.
func NewEngine(policies []Policy, opts ...Option) *Engine {
	e := &Engine{
		policies: append([]Policy(nil), policies...),
		logger:   slog.Default(),
	}
	sort.SliceStable(e.policies, func(i, j int) bool {
		return e.policies[i].Priority() > e.policies[j].Priority()
	})
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultEngine composes the spec's default ordering: Quarantine (20),
// Velocity (10), Trust (5), RateLimit (0), Path (0).
func NewDefaultEngine(velocity *VelocityPolicy, quarantine *QuarantinePolicy, rateLimit *RateLimitPolicy, path *PathPolicy, trust *TrustPolicy, opts ...Option) *Engine {
	return NewEngine([]Policy{quarantine, velocity, trust, rateLimit, path}, opts...)
}

// Evaluate runs every policy in priority order. The first DENY or QUARANTINE
// short-circuits the chain and becomes BlockingResult; ALLOW and WARN
// results continue to the next policy. Final Allowed is true iff no policy
// blocked.
func (e *Engine) Evaluate(ctx context.Context, tc ToolCallContext) (EngineResult, error) {
	out := EngineResult{Allowed: true}
	for _, p := range e.policies {
		res, err := p.Evaluate(ctx, tc)
		if err != nil {
			return EngineResult{}, fmt.Errorf("policy: %s: %w", p.Name(), err)
		}
		if res.Policy == "" {
			res.Policy = p.Name()
		}
		out.Results = append(out.Results, res)
		e.logger.Debug("policy evaluated", "policy", p.Name(), "decision", res.Decision, "tool", tc.ToolName, "target", tc.Target)

		if res.Decision == Deny || res.Decision == Quarantine {
			blocking := res
			out.BlockingResult = &blocking
			out.Allowed = false
			return out, nil
		}
	}
	return out, nil
}
