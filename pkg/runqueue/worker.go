package runqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/codeready-toolchain/agentcore/ent"
	entlooprun "github.com/codeready-toolchain/agentcore/ent/looprun"
	"github.com/codeready-toolchain/agentcore/pkg/config"
	"github.com/codeready-toolchain/agentcore/pkg/looprun"
)

// WorkerStatus represents the current state of a worker.
type WorkerStatus string

// Worker status constants.
const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// Worker is a single queue worker that polls for and processes runs.
type Worker struct {
	id       string
	workerID string
	client   *ent.Client
	config   *config.RunQueueConfig
	executor LoopExecutor
	pool     RunRegistry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Health tracking
	mu            sync.RWMutex
	status        WorkerStatus
	currentRunID  string
	runsProcessed int
	lastActivity  time.Time
}

// RunRegistry is the subset of WorkerPool used by Worker for run registration.
type RunRegistry interface {
	RegisterRun(runID string, cancel context.CancelFunc)
	UnregisterRun(runID string)
}

// NewWorker creates a new queue worker.
func NewWorker(id, workerID string, client *ent.Client, cfg *config.RunQueueConfig, executor LoopExecutor, pool RunRegistry) *Worker {
	return &Worker{
		id:           id,
		workerID:     workerID,
		client:       client,
		config:       cfg,
		executor:     executor,
		pool:         pool,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for it to finish.
// It is safe to call Stop multiple times.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns the current worker health status.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:            w.id,
		Status:        string(w.status),
		CurrentRunID:  w.currentRunID,
		RunsProcessed: w.runsProcessed,
		LastActivity:  w.lastActivity,
	}
}

// run is the main worker loop.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker", w.id, "worker_id", w.workerID)
	log.Info("Worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("Worker shutting down")
			return
		case <-ctx.Done():
			log.Info("Context cancelled, worker shutting down")
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				if errors.Is(err, ErrNoRunsAvailable) || errors.Is(err, ErrAtCapacity) {
					w.sleep(w.pollInterval())
					continue
				}
				log.Error("Error processing run", "error", err)
				w.sleep(time.Second) // Brief backoff on error
			}
		}
	}
}

// sleep waits for the given duration or until stop is signalled.
func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// pollAndProcess checks capacity, claims a run, and processes it.
func (w *Worker) pollAndProcess(ctx context.Context) error {
	// 1. Check global capacity (best-effort; racy with concurrent workers but
	//    bounded by WorkerCount and mitigated by poll jitter).
	activeCount, err := w.client.LoopRun.Query().
		Where(entlooprun.StatusEQ(entlooprun.StatusRunning)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("checking active runs: %w", err)
	}
	if activeCount >= w.config.MaxConcurrentRuns {
		return ErrAtCapacity
	}

	// 2. Claim next run
	run, err := w.claimNextRun(ctx)
	if err != nil {
		return err
	}

	log := slog.With("run_id", run.ID, "worker", w.id)
	log.Info("Run claimed")

	w.setStatus(WorkerStatusWorking, run.ID)
	defer w.setStatus(WorkerStatusIdle, "")

	// 3. Create run context with timeout
	runCtx, cancelRun := context.WithTimeout(ctx, w.config.RunTimeout)
	defer cancelRun()

	// 4. Register cancel function for external cancellation
	w.pool.RegisterRun(run.ID, cancelRun)
	defer w.pool.UnregisterRun(run.ID)

	// 5. Start heartbeat
	heartbeatCtx, cancelHeartbeat := context.WithCancel(runCtx)
	defer cancelHeartbeat()
	go w.runHeartbeat(heartbeatCtx, run.ID)

	// 6. Execute run
	result := w.executor.Execute(runCtx, run)

	// 6a. Nil-guard: synthesize a safe result if executor returned nil
	if result == nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			result = &ExecutionResult{Status: looprun.StatusTimeout, Error: fmt.Errorf("run timed out after %v", w.config.RunTimeout)}
		case errors.Is(runCtx.Err(), context.Canceled):
			result = &ExecutionResult{Status: looprun.StatusFailed, Error: context.Canceled}
		default:
			result = &ExecutionResult{Status: looprun.StatusFailed, Error: fmt.Errorf("executor returned nil result")}
		}
	}

	// 7. Handle timeout not already reflected by the executor
	if result.Status == "" && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result = &ExecutionResult{Status: looprun.StatusTimeout, Error: fmt.Errorf("run timed out after %v", w.config.RunTimeout)}
	}

	// 8. Stop heartbeat
	cancelHeartbeat()

	// 9. Update terminal status (use background context — run ctx may be cancelled)
	if err := w.updateRunTerminalStatus(context.Background(), run, result); err != nil {
		log.Error("Failed to update run terminal status", "error", err)
		return err
	}

	w.mu.Lock()
	w.runsProcessed++
	w.mu.Unlock()

	log.Info("Run processing complete", "status", result.Status)
	return nil
}

// claimNextRun atomically claims the next pending run using FOR UPDATE SKIP LOCKED.
func (w *Worker) claimNextRun(ctx context.Context) (*ent.LoopRun, error) {
	tx, err := w.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// SELECT ... FOR UPDATE SKIP LOCKED, ordered by created_at for FIFO processing
	run, err := tx.LoopRun.Query().
		Where(
			entlooprun.StatusEQ(entlooprun.StatusPending),
			entlooprun.DeletedAtIsNil(),
		).
		Order(ent.Asc(entlooprun.FieldCreatedAt)).
		Limit(1).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNoRunsAvailable
		}
		return nil, fmt.Errorf("failed to query pending run: %w", err)
	}

	now := time.Now()
	run, err = run.Update().
		SetStatus(entlooprun.StatusRunning).
		SetWorkerID(w.workerID).
		SetStartedAt(now).
		SetLastHeartbeatAt(now).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return run, nil
}

// runHeartbeat periodically updates last_heartbeat_at for orphan detection.
func (w *Worker) runHeartbeat(ctx context.Context, runID string) {
	ticker := time.NewTicker(w.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.client.LoopRun.UpdateOneID(runID).
				SetLastHeartbeatAt(time.Now()).
				Exec(ctx); err != nil {
				slog.Warn("Heartbeat update failed", "run_id", runID, "error", err)
			}
		}
	}
}

// updateRunTerminalStatus writes the final run status.
func (w *Worker) updateRunTerminalStatus(ctx context.Context, run *ent.LoopRun, result *ExecutionResult) error {
	update := w.client.LoopRun.UpdateOneID(run.ID).
		SetStatus(storeStatus(result.Status)).
		SetCompletedAt(time.Now()).
		SetIterations(result.Iterations).
		SetTotalTokens(result.TotalTokens)

	if result.FinalOutput != nil {
		if encoded, ok := result.FinalOutput.(string); ok {
			update = update.SetFinalOutput(encoded)
		}
	}
	if result.Error != nil {
		update = update.SetErrorMessage(result.Error.Error())
	}

	return update.Exec(ctx)
}

// storeStatus maps a looprun.Status (upper-case runner vocabulary) onto the
// lower-case enum values of the LoopRun.status column.
func storeStatus(s looprun.Status) entlooprun.Status {
	switch s {
	case looprun.StatusSuccess:
		return entlooprun.StatusSuccess
	case looprun.StatusTimeout:
		return entlooprun.StatusTimeout
	case looprun.StatusBudgetExceeded:
		return entlooprun.StatusBudgetExceeded
	case looprun.StatusMaxIterations:
		return entlooprun.StatusMaxIterations
	default:
		return entlooprun.StatusFailed
	}
}

// pollInterval returns the poll duration with jitter.
func (w *Worker) pollInterval() time.Duration {
	base := w.config.PollInterval
	jitter := w.config.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	// Range: [base - jitter, base + jitter]
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

// setStatus updates the worker's health tracking state.
func (w *Worker) setStatus(status WorkerStatus, runID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentRunID = runID
	w.lastActivity = time.Now()
}
