package looprun

import (
	"context"
	"log/slog"
	"time"
)

// Status is the terminal state of a loop run.
type Status string

const (
	StatusSuccess        Status = "SUCCESS"
	StatusFailed         Status = "FAILED"
	StatusTimeout        Status = "TIMEOUT"
	StatusBudgetExceeded Status = "BUDGET_EXCEEDED"
	StatusMaxIterations  Status = "MAX_ITERATIONS"
)

// StepResult records the outcome of one step execution.
type StepResult struct {
	StepName string
	Success  bool
	Output   any
	Error    string
	Timeout  bool
}

// Result is the outcome of a full loop run.
type Result struct {
	Success     bool
	Status      Status
	FinalOutput any
	StepResults []StepResult
	Metrics     Metrics
	Error       string
}

// Runner executes an AgentLoop against an Executor.
type Runner struct {
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner returns a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes loop against executor starting from loop.Entry, following
// the spec's runner algorithm: resolve, execute, advance or branch on
// on_error, checking timeout and token budgets after every step, up to
// MaxSteps iterations.
func (r *Runner) Run(ctx context.Context, loop AgentLoop, executor Executor, initialInput any) (Result, error) {
	if err := loop.Validate(); err != nil {
		return Result{}, err
	}

	lc := NewLoopContext(initialInput)
	metrics := newMetrics()
	var stepResults []StepResult

	current := loop.EntryName()
	start := time.Now()
	maxSteps := loop.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 1
	}

	for iter := 0; iter < maxSteps; iter++ {
		metrics.Iterations++

		step, idx, ok := loop.stepByName(current)
		if !ok {
			return Result{
				Success: false, Status: StatusFailed,
				StepResults: stepResults, Metrics: *metrics,
				Error: "looprun: step " + current + " does not resolve",
			}, nil
		}

		sr, output, retries, _ := r.runStepWithRetries(ctx, executor, lc, step, metrics)
		metrics.Retries += retries
		stepResults = append(stepResults, sr)

		if sr.Timeout {
			return Result{Success: false, Status: StatusTimeout, StepResults: stepResults, Metrics: *metrics, Error: sr.Error}, nil
		}

		if sr.Success {
			lc = lc.WithStep(step.Name, output)
		}

		// Budget/timeout are evaluated before deciding whether to advance,
		// exit, or declare success: a step that completes but pushes the
		// loop over budget must not be allowed to "succeed its way out"
		// via the end-of-pass shortcut below (spec §8 scenario 6).
		metrics.WallClock = time.Since(start)
		if loop.WallTimeBudget > 0 && metrics.WallClock > loop.WallTimeBudget {
			return Result{Success: false, Status: StatusTimeout, StepResults: stepResults, Metrics: *metrics, Error: "wall-time budget exceeded"}, nil
		}
		if loop.TokenBudget > 0 && metrics.TotalTokens() > loop.TokenBudget {
			return Result{Success: false, Status: StatusBudgetExceeded, StepResults: stepResults, Metrics: *metrics, Error: "token budget exceeded"}, nil
		}

		if sr.Success {
			if exitMatches(loop.ExitConditions, step.Name) {
				return Result{Success: true, Status: StatusSuccess, FinalOutput: output, StepResults: stepResults, Metrics: *metrics}, nil
			}

			nextIdx := idx + 1
			if nextIdx >= len(loop.Steps) {
				if len(loop.ExitConditions) == 0 {
					return Result{Success: true, Status: StatusSuccess, FinalOutput: output, StepResults: stepResults, Metrics: *metrics}, nil
				}
				current = loop.EntryName()
			} else {
				current = loop.Steps[nextIdx].Name
			}
		} else {
			switch step.OnError {
			case OnErrorAbort, "":
				return Result{Success: false, Status: StatusFailed, StepResults: stepResults, Metrics: *metrics, Error: sr.Error}, nil
			case OnErrorSkip:
				nextIdx := idx + 1
				if nextIdx >= len(loop.Steps) {
					current = loop.EntryName()
				} else {
					current = loop.Steps[nextIdx].Name
				}
			case OnErrorGoto:
				current = step.GotoTarget
			default:
				return Result{Success: false, Status: StatusFailed, StepResults: stepResults, Metrics: *metrics, Error: sr.Error}, nil
			}
		}
	}

	return Result{Success: false, Status: StatusMaxIterations, StepResults: stepResults, Metrics: *metrics}, nil
}

// runStepWithRetries attempts step's executor call. On success it records
// metrics and returns a SUCCESS StepResult. On timeout it returns a TIMEOUT
// StepResult with no retry. On any other error: if on_error != retry or
// retries are exhausted, it returns FAILED with the last error message;
// otherwise it retries up to step.MaxRetries times.
func (r *Runner) runStepWithRetries(ctx context.Context, executor Executor, lc LoopContext, step LoopStep, metrics *Metrics) (StepResult, any, int, error) {
	var lastErr error
	retries := 0

	for {
		stepCtx := ctx
		var cancel context.CancelFunc
		if step.Timeout > 0 {
			stepCtx, cancel = context.WithTimeout(ctx, step.Timeout)
		}
		started := time.Now()
		output, tokensIn, tokensOut, err := executor.Execute(stepCtx, step.Tool, lc, step)
		elapsed := time.Since(started)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			metrics.recordStep(step, tokensIn, tokensOut, elapsed)
			return StepResult{StepName: step.Name, Success: true, Output: output}, output, retries, nil
		}

		if IsTimeout(err) {
			r.logger.Debug("step timed out", "step", step.Name)
			return StepResult{StepName: step.Name, Success: false, Timeout: true, Error: err.Error()}, nil, retries, err
		}

		lastErr = err
		if step.OnError != OnErrorRetry || retries >= step.MaxRetries {
			return StepResult{StepName: step.Name, Success: false, Error: lastErr.Error()}, nil, retries, lastErr
		}
		retries++
	}
}

func exitMatches(conditions []string, stepName string) bool {
	for _, c := range conditions {
		if c == stepName+".success" {
			return true
		}
	}
	return false
}
