package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// QuarantinePolicy locks broken files: once a target is quarantined, only
// configured repair tools may touch it.
type QuarantinePolicy struct {
	mu          sync.RWMutex
	quarantined map[string]string // canonical path -> reason
	repairTools map[string]bool
}

// QuarantineOption configures a QuarantinePolicy.
type QuarantineOption func(*QuarantinePolicy)

// WithRepairTools overrides the default repair-tool set
// {repair, fix_syntax, raw_edit}.
func WithRepairTools(tools ...string) QuarantineOption {
	return func(p *QuarantinePolicy) {
		p.repairTools = make(map[string]bool, len(tools))
		for _, t := range tools {
			p.repairTools[t] = true
		}
	}
}

// NewQuarantinePolicy returns a QuarantinePolicy with the spec default
// repair-tool set.
func NewQuarantinePolicy(opts ...QuarantineOption) *QuarantinePolicy {
	p := &QuarantinePolicy{
		quarantined: make(map[string]string),
		repairTools: map[string]bool{"repair": true, "fix_syntax": true, "raw_edit": true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *QuarantinePolicy) Name() string { return "quarantine" }
func (p *QuarantinePolicy) Priority() int { return 20 }

// Quarantine marks target as broken, recording reason for future decisions.
func (p *QuarantinePolicy) Quarantine(target, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quarantined[canonicalize(target)] = reason
}

// Release clears a previously quarantined target.
func (p *QuarantinePolicy) Release(target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.quarantined, canonicalize(target))
}

func canonicalize(target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	return filepath.Clean(abs)
}

func (p *QuarantinePolicy) Evaluate(_ context.Context, tc ToolCallContext) (Result, error) {
	if tc.Target == "" {
		return Result{Decision: Allow, Policy: p.Name()}, nil
	}

	p.mu.RLock()
	reason, quarantined := p.quarantined[canonicalize(tc.Target)]
	p.mu.RUnlock()

	if !quarantined {
		return Result{Decision: Allow, Policy: p.Name()}, nil
	}
	if p.repairTools[tc.ToolName] {
		return Result{Decision: Warn, Policy: p.Name(), Reason: reason}, nil
	}

	var allowed []string
	for t := range p.repairTools {
		allowed = append(allowed, t)
	}
	sort.Strings(allowed)
	return Result{
		Decision: Quarantine,
		Policy:   p.Name(),
		Reason:   fmt.Sprintf("%s is quarantined (%s); only %s may touch it", tc.Target, reason, strings.Join(allowed, ", ")),
	}, nil
}
