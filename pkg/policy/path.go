package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

var defaultBlockedSubstrings = []string{
	".git", ".env", "__pycache__", "node_modules", ".ssh", ".aws", "credentials", "secrets",
}

// PathPolicy denies access to sensitive paths by substring match or exact
// path (and descendant) match against a configured blocklist.
type PathPolicy struct {
	blockedSubstrings []string
	blockedPaths      []string // canonicalized
}

// PathOption configures a PathPolicy.
type PathOption func(*PathPolicy)

// WithBlockedSubstrings overrides the default substring blocklist.
func WithBlockedSubstrings(subs ...string) PathOption {
	return func(p *PathPolicy) { p.blockedSubstrings = subs }
}

// WithBlockedPaths adds absolute paths (and their descendants) to the
// blocklist, in addition to the substring rules.
func WithBlockedPaths(paths ...string) PathOption {
	return func(p *PathPolicy) {
		for _, path := range paths {
			p.blockedPaths = append(p.blockedPaths, canonicalize(path))
		}
	}
}

// NewPathPolicy returns a PathPolicy with the spec default substring
// blocklist and no explicit blocked paths.
func NewPathPolicy(opts ...PathOption) *PathPolicy {
	p := &PathPolicy{
		blockedSubstrings: append([]string(nil), defaultBlockedSubstrings...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PathPolicy) Name() string { return "path" }
func (p *PathPolicy) Priority() int { return 0 }

func (p *PathPolicy) Evaluate(_ context.Context, tc ToolCallContext) (Result, error) {
	if tc.Target == "" {
		return Result{Decision: Allow, Policy: p.Name()}, nil
	}
	resolved := canonicalize(tc.Target)

	for _, blocked := range p.blockedPaths {
		if resolved == blocked || isDescendant(resolved, blocked) {
			return Result{
				Decision: Deny,
				Policy:   p.Name(),
				Reason:   fmt.Sprintf("%s is a blocked path (%s)", tc.Target, blocked),
			}, nil
		}
	}

	for _, sub := range p.blockedSubstrings {
		if strings.Contains(resolved, sub) {
			return Result{
				Decision: Deny,
				Policy:   p.Name(),
				Reason:   fmt.Sprintf("%s matches blocked pattern %q", tc.Target, sub),
			}, nil
		}
	}

	return Result{Decision: Allow, Policy: p.Name()}, nil
}

func isDescendant(path, ancestor string) bool {
	rel, err := filepath.Rel(ancestor, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}
