// Package policy implements the prioritised interceptor chain evaluated
// before every tool invocation: velocity (anti-stall/anti-oscillation),
// quarantine, rate limiting, path restrictions, and declarative trust rules.
package policy

import (
	"context"
	"time"
)

// Decision is one policy's verdict.
type Decision string

const (
	Allow      Decision = "allow"
	Warn       Decision = "warn"
	Deny       Decision = "deny"
	Quarantine Decision = "quarantine"
)

// Allowed reports whether a decision lets the call proceed.
func (d Decision) Allowed() bool {
	return d == Allow || d == Warn
}

// ToolCallContext is the input to the policy engine for one pending
// operation.
type ToolCallContext struct {
	ToolName  string
	Target    string
	Action    string
	Params    map[string]any
	Timestamp time.Time
}

// Param returns the first present parameter among the given keys, or ""
// if none are set. Used by policies that must infer a target from params.
func (c ToolCallContext) Param(keys ...string) string {
	for _, k := range keys {
		if v, ok := c.Params[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Result is one policy's verdict on a ToolCallContext.
type Result struct {
	Decision Decision
	Policy   string
	Reason   string
	Metadata map[string]any
}

// Allowed reports whether this result lets the call proceed.
func (r Result) Allowed() bool {
	return r.Decision.Allowed()
}

// EngineResult is the aggregate outcome of evaluating the full chain.
type EngineResult struct {
	Allowed        bool
	Results        []Result
	BlockingResult *Result
}

// Warnings returns every WARN result in evaluation order.
func (r EngineResult) Warnings() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Decision == Warn {
			out = append(out, res)
		}
	}
	return out
}

// Policy is one interceptor in the chain.
type Policy interface {
	Name() string
	Priority() int
	Evaluate(ctx context.Context, tc ToolCallContext) (Result, error)
}
