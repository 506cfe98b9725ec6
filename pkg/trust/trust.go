// Package trust implements the declarative trust-rules store consulted by
// policy.TrustPolicy. Rules are loaded from a YAML file at the project root
// and matched by operation plus a shell glob against the target.
package trust

import (
	"fmt"
	"os"
	"sync"

	"github.com/bmatcuk/doublestar"
	"gopkg.in/yaml.v3"
)

// Decision is the trust manager's verdict for one (operation, target) pair.
type Decision string

const (
	DecisionAllow   Decision = "allow"
	DecisionDeny    Decision = "deny"
	DecisionConfirm Decision = "confirm"
)

// TrustDecision is returned by Check.
type TrustDecision struct {
	Decision    Decision
	Reason      string
	MatchedRule string
}

// Rule is one "<operation>:<glob-pattern>" entry mapped to a decision.
type Rule struct {
	Operation string   `yaml:"operation"`
	Pattern   string   `yaml:"pattern"`
	Decision  Decision `yaml:"decision"`
	Reason    string   `yaml:"reason,omitempty"`
}

// fileFormat is the on-disk YAML shape: a flat list of rules, first match
// wins, most-specific-first is the caller's responsibility (order in file).
type fileFormat struct {
	Rules []Rule `yaml:"rules"`
}

// Manager holds the loaded rule set. Safe for concurrent Check calls; Load
// replaces the rule set atomically.
type Manager struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewManager returns an empty manager (every Check falls through to a
// caller-supplied default, since an empty store matches nothing).
func NewManager() *Manager {
	return &Manager{}
}

// Load reads and parses a YAML rules file into a new Manager.
func Load(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trust: reading rules file %s: %w", path, err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("trust: parsing rules file %s: %w", path, err)
	}
	return &Manager{rules: ff.Rules}, nil
}

// Reload re-reads path into this manager, replacing its rule set.
func (m *Manager) Reload(path string) error {
	loaded, err := Load(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.rules = loaded.rules
	m.mu.Unlock()
	return nil
}

// Check returns the first rule matching operation and target by glob, in
// file order. No match is reported as an empty Decision so TrustPolicy can
// apply its own default (ALLOW, per spec — trust rules gate, they don't
// default-deny).
func (m *Manager) Check(operation, target string) TrustDecision {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rules {
		if r.Operation != operation {
			continue
		}
		matched, err := doublestar.Match(r.Pattern, target)
		if err != nil || !matched {
			continue
		}
		return TrustDecision{
			Decision:    r.Decision,
			Reason:      r.Reason,
			MatchedRule: fmt.Sprintf("%s:%s", r.Operation, r.Pattern),
		}
	}
	return TrustDecision{}
}

// AddRule appends a rule at runtime (used by tests and by callers composing
// a manager without a backing file).
func (m *Manager) AddRule(r Rule) {
	m.mu.Lock()
	m.rules = append(m.rules, r)
	m.mu.Unlock()
}
