// Package dispatch wires the policy engine, validator chain, and shadow-VCS
// engine into a single looprun.Executor, and keeps the named AgentLoop
// graphs cmd/agentcored dispatches run requests against.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/codeready-toolchain/agentcore/pkg/looprun"
)

// LoopRegistry is a name -> AgentLoop lookup, validated at registration.
type LoopRegistry struct {
	mu    sync.RWMutex
	loops map[string]looprun.AgentLoop
}

// NewLoopRegistry returns an empty registry.
func NewLoopRegistry() *LoopRegistry {
	return &LoopRegistry{loops: make(map[string]looprun.AgentLoop)}
}

// Register validates loop and adds it under loop.Name, replacing any
// previous entry of the same name.
func (r *LoopRegistry) Register(loop looprun.AgentLoop) error {
	if loop.Name == "" {
		return fmt.Errorf("agent: loop must have a name")
	}
	if err := loop.Validate(); err != nil {
		return fmt.Errorf("agent: loop %q: %w", loop.Name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loops[loop.Name] = loop
	return nil
}

// Get returns the named loop, or false if unregistered.
func (r *LoopRegistry) Get(name string) (looprun.AgentLoop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loops[name]
	return l, ok
}

// Names returns every registered loop name.
func (r *LoopRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loops))
	for n := range r.loops {
		names = append(names, n)
	}
	return names
}

// DefaultLoops returns a registry pre-populated with the built-in loops:
// diagnose-and-fix drives a shadow branch through edit/validate/commit,
// retrying the llm step when validation fails.
func DefaultLoops() *LoopRegistry {
	r := NewLoopRegistry()
	must(r.Register(looprun.AgentLoop{
		Name: "diagnose-and-fix",
		Steps: []looprun.LoopStep{
			{Name: "branch", Tool: "shadow_branch.create", Type: looprun.StepTool, OnError: looprun.OnErrorAbort},
			{Name: "edit", Type: looprun.StepLLM, InputFrom: "branch", OnError: looprun.OnErrorRetry, MaxRetries: 2},
			{Name: "validate", Tool: "validate.run", Type: looprun.StepTool, InputFrom: "edit", OnError: looprun.OnErrorGoto, GotoTarget: "edit", MaxRetries: 3},
			{Name: "commit", Tool: "shadow_branch.commit", Type: looprun.StepTool, InputFrom: "validate", OnError: looprun.OnErrorAbort},
		},
		Entry:          "branch",
		ExitConditions: []string{"commit.success"},
		MaxSteps:       20,
	}))
	must(r.Register(looprun.AgentLoop{
		Name: "diagnose-only",
		Steps: []looprun.LoopStep{
			{Name: "analyze", Type: looprun.StepLLM, OnError: looprun.OnErrorAbort},
			{Name: "diagnostics", Tool: "diagnostics.parse", Type: looprun.StepTool, InputFrom: "analyze", OnError: looprun.OnErrorSkip},
		},
		Entry:          "analyze",
		ExitConditions: []string{"diagnostics.success"},
		MaxSteps:       5,
	}))
	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
