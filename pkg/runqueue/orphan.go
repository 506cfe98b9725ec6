package runqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codeready-toolchain/agentcore/ent"
	entlooprun "github.com/codeready-toolchain/agentcore/ent/looprun"
)

// orphanState tracks orphan detection metrics (thread-safe).
type orphanState struct {
	mu               sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int
}

// runOrphanDetection periodically scans for orphaned runs.
// Every worker pool runs this independently — operations are idempotent.
func (p *WorkerPool) runOrphanDetection(ctx context.Context) {
	ticker := time.NewTicker(p.config.OrphanDetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.detectAndRecoverOrphans(ctx); err != nil {
				slog.Error("Orphan detection failed", "error", err)
			}
		}
	}
}

// detectAndRecoverOrphans finds running runs with stale heartbeats and
// marks them timed out (terminal state).
func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	threshold := time.Now().Add(-p.config.OrphanThreshold)

	orphans, err := p.client.LoopRun.Query().
		Where(
			entlooprun.StatusEQ(entlooprun.StatusRunning),
			entlooprun.LastHeartbeatAtNotNil(),
			entlooprun.LastHeartbeatAtLT(threshold),
			entlooprun.DeletedAtIsNil(),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query orphaned runs: %w", err)
	}

	if len(orphans) == 0 {
		p.orphans.mu.Lock()
		p.orphans.lastOrphanScan = time.Now()
		p.orphans.mu.Unlock()
		return nil
	}

	slog.Warn("Detected orphaned runs", "count", len(orphans))

	recovered := 0
	failed := 0
	for _, run := range orphans {
		if err := p.recoverOrphanedRun(ctx, run); err != nil {
			slog.Error("Failed to recover orphaned run", "run_id", run.ID, "error", err)
			failed++
			continue
		}
		recovered++
	}

	p.orphans.mu.Lock()
	p.orphans.lastOrphanScan = time.Now()
	p.orphans.orphansRecovered += recovered
	p.orphans.mu.Unlock()

	if failed > 0 {
		slog.Warn("Orphan recovery completed with failures",
			"total_orphans", len(orphans),
			"recovered", recovered,
			"failed", failed)
	}

	return nil
}

// recoverOrphanedRun marks a single orphaned run as timed out.
func (p *WorkerPool) recoverOrphanedRun(ctx context.Context, run *ent.LoopRun) error {
	lastHeartbeat := "unknown"
	if run.LastHeartbeatAt != nil {
		lastHeartbeat = run.LastHeartbeatAt.Format(time.RFC3339)
	}

	workerID := "unknown"
	if run.WorkerID != nil {
		workerID = *run.WorkerID
	}

	errorMsg := fmt.Sprintf("orphaned: no heartbeat from worker %s since %s", workerID, lastHeartbeat)
	if err := markRunTimedOut(ctx, p.client, run.ID, errorMsg); err != nil {
		return err
	}

	slog.Warn("Orphaned run marked as timed out", "run_id", run.ID, "old_worker_id", workerID, "last_heartbeat", lastHeartbeat)
	return nil
}

// CleanupStartupOrphans performs a one-time cleanup of runs owned by this
// worker that were running when the process previously crashed.
// Called once during startup, before the worker pool begins processing.
func CleanupStartupOrphans(ctx context.Context, client *ent.Client, workerID string) error {
	orphans, err := client.LoopRun.Query().
		Where(
			entlooprun.StatusEQ(entlooprun.StatusRunning),
			entlooprun.WorkerIDEQ(workerID),
			entlooprun.DeletedAtIsNil(),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("failed to query startup orphans: %w", err)
	}

	if len(orphans) == 0 {
		return nil
	}

	slog.Warn("Found startup orphans from previous run", "worker_id", workerID, "count", len(orphans))

	for _, run := range orphans {
		errorMsg := fmt.Sprintf("orphaned: worker %s restarted while run was in progress", workerID)
		if err := markRunTimedOut(ctx, client, run.ID, errorMsg); err != nil {
			slog.Error("Failed to mark startup orphan", "run_id", run.ID, "error", err)
			continue
		}
		slog.Info("Startup orphan recovered", "run_id", run.ID)
	}

	return nil
}

// markRunTimedOut marks a run as timed out (terminal — no resume).
func markRunTimedOut(ctx context.Context, client *ent.Client, runID, errorMsg string) error {
	return client.LoopRun.UpdateOneID(runID).
		SetStatus(entlooprun.StatusTimeout).
		SetCompletedAt(time.Now()).
		SetErrorMessage(errorMsg).
		Exec(ctx)
}
