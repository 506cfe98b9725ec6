package looprun

import (
	"context"
	"errors"
)

// TimeoutError is a distinct error type so the runner can tell a step
// timeout apart from any other failure without string matching.
type TimeoutError struct {
	Step string
}

func (e *TimeoutError) Error() string {
	return "looprun: step " + e.Step + " timed out"
}

// IsTimeout reports whether err is (or wraps) a *TimeoutError.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// Executor runs one step's underlying tool or LLM call. Non-LLM tools
// return (output, 0, 0). A timeout must be reported as a *TimeoutError;
// any other error is treated as a regular step failure.
type Executor interface {
	Execute(ctx context.Context, toolName string, lc LoopContext, step LoopStep) (output any, tokensIn int, tokensOut int, err error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, toolName string, lc LoopContext, step LoopStep) (any, int, int, error)

func (f ExecutorFunc) Execute(ctx context.Context, toolName string, lc LoopContext, step LoopStep) (any, int, int, error) {
	return f(ctx, toolName, lc, step)
}
