// Package looprun implements the declarative agent-loop runtime: a step
// graph (AgentLoop/LoopStep) executed by a runner that tracks an immutable
// LoopContext and accumulates Metrics, suspending at every step
// boundary.
package looprun

import (
	"errors"
	"fmt"
	"time"
)

// StepType classifies a LoopStep for metrics bookkeeping.
type StepType string

const (
	StepTool   StepType = "tool"
	StepLLM    StepType = "llm"
	StepHybrid StepType = "hybrid"
)

// ErrorAction determines what the runner does when a step fails.
type ErrorAction string

const (
	OnErrorAbort ErrorAction = "abort"
	OnErrorRetry ErrorAction = "retry"
	OnErrorSkip  ErrorAction = "skip"
	OnErrorGoto  ErrorAction = "goto"
)

// LoopStep is one node in an agent loop's declarative graph.
type LoopStep struct {
	Name       string
	Tool       string
	Type       StepType
	InputFrom  string
	OnError    ErrorAction
	GotoTarget string
	MaxRetries int
	Timeout    time.Duration // zero means no per-step timeout
}

// AgentLoop is an ordered step graph plus termination conditions.
type AgentLoop struct {
	Name           string
	Steps          []LoopStep
	Entry          string
	ExitConditions []string // "<step-name>.success"
	MaxSteps       int
	TokenBudget    int // 0 means unbounded
	WallTimeBudget time.Duration
}

var (
	ErrNoSteps           = errors.New("looprun: agent loop must have at least one step")
	ErrDuplicateStepName = errors.New("looprun: step names must be unique within a loop")
	ErrEntryNotFound     = errors.New("looprun: entry step does not resolve")
	ErrGotoNotFound      = errors.New("looprun: goto target does not resolve")
	ErrGotoMissingTarget = errors.New("looprun: on_error=goto requires a goto_target")
)

// Validate enforces the construction-time invariants: at least one step,
// unique names, a resolving entry, every goto target resolves, and every
// goto-on-error step names a target.
func (l *AgentLoop) Validate() error {
	if len(l.Steps) == 0 {
		return ErrNoSteps
	}
	seen := make(map[string]bool, len(l.Steps))
	for _, s := range l.Steps {
		if seen[s.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateStepName, s.Name)
		}
		seen[s.Name] = true
	}

	entry := l.Entry
	if entry == "" {
		entry = l.Steps[0].Name
	}
	if !seen[entry] {
		return fmt.Errorf("%w: %q", ErrEntryNotFound, entry)
	}

	for _, s := range l.Steps {
		if s.OnError == OnErrorGoto && s.GotoTarget == "" {
			return fmt.Errorf("%w: step %q", ErrGotoMissingTarget, s.Name)
		}
		if s.GotoTarget != "" && !seen[s.GotoTarget] {
			return fmt.Errorf("%w: %q", ErrGotoNotFound, s.GotoTarget)
		}
	}
	return nil
}

// EntryName returns the configured entry, defaulting to the first step.
func (l *AgentLoop) EntryName() string {
	if l.Entry != "" {
		return l.Entry
	}
	return l.Steps[0].Name
}

func (l *AgentLoop) stepByName(name string) (LoopStep, int, bool) {
	for i, s := range l.Steps {
		if s.Name == name {
			return s, i, true
		}
	}
	return LoopStep{}, -1, false
}
