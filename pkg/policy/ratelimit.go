package policy

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimitPolicy tracks a global call-time window plus per-target call
// counts. Calls are recorded by the caller after a tool runs, via
// RecordCall — Evaluate records nothing; it only drops call times older
// than a minute before counting.
type RateLimitPolicy struct {
	mu               sync.Mutex
	maxPerMinute     int
	maxPerTarget     int
	globalCallTimes  []time.Time
	perTargetCounts  map[string]int
}

// RateLimitOption configures a RateLimitPolicy.
type RateLimitOption func(*RateLimitPolicy)

// WithMaxCallsPerMinute overrides the default of 60.
func WithMaxCallsPerMinute(n int) RateLimitOption {
	return func(p *RateLimitPolicy) { p.maxPerMinute = n }
}

// WithMaxCallsPerTarget overrides the default of 10.
func WithMaxCallsPerTarget(n int) RateLimitOption {
	return func(p *RateLimitPolicy) { p.maxPerTarget = n }
}

// NewRateLimitPolicy returns a RateLimitPolicy with spec defaults: 60
// calls/minute globally, 10 calls per target.
func NewRateLimitPolicy(opts ...RateLimitOption) *RateLimitPolicy {
	p := &RateLimitPolicy{
		maxPerMinute:    60,
		maxPerTarget:    10,
		perTargetCounts: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *RateLimitPolicy) Name() string { return "rate_limit" }
func (p *RateLimitPolicy) Priority() int { return 0 }

// RecordCall records one completed call against the global and (if target
// is non-empty) per-target counters. Call after the tool runs.
func (p *RateLimitPolicy) RecordCall(target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.globalCallTimes = append(p.globalCallTimes, now)
	p.pruneGlobal(now)
	if target != "" {
		p.perTargetCounts[target]++
	}
}

func (p *RateLimitPolicy) pruneGlobal(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for ; i < len(p.globalCallTimes); i++ {
		if p.globalCallTimes[i].After(cutoff) {
			break
		}
	}
	p.globalCallTimes = p.globalCallTimes[i:]
}

// Evaluate reports DENY if the global per-minute count strictly exceeds the
// limit, WARN if the per-target count is at or above its limit, else ALLOW.
func (p *RateLimitPolicy) Evaluate(_ context.Context, tc ToolCallContext) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pruneGlobal(time.Now())
	if len(p.globalCallTimes) > p.maxPerMinute {
		return Result{
			Decision: Deny,
			Policy:   p.Name(),
			Reason:   fmt.Sprintf("global rate limit exceeded: %d calls in the last minute (max %d)", len(p.globalCallTimes), p.maxPerMinute),
		}, nil
	}

	if tc.Target != "" && p.perTargetCounts[tc.Target] >= p.maxPerTarget {
		return Result{
			Decision: Warn,
			Policy:   p.Name(),
			Reason:   fmt.Sprintf("%s called %d times (limit %d); consider an alternative approach", tc.Target, p.perTargetCounts[tc.Target], p.maxPerTarget),
		}, nil
	}

	return Result{Decision: Allow, Policy: p.Name()}, nil
}
