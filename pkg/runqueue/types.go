// Package runqueue provides the worker pool that claims pending LoopRun rows
// from pkg/store and drives them through a pkg/looprun.Runner.
package runqueue

import (
	"context"
	"errors"
	"time"

	"github.com/codeready-toolchain/agentcore/ent"
	"github.com/codeready-toolchain/agentcore/pkg/looprun"
)

// Sentinel errors for queue operations.
var (
	// ErrNoRunsAvailable indicates no pending runs are in the queue.
	ErrNoRunsAvailable = errors.New("no runs available")

	// ErrAtCapacity indicates the global concurrent run limit has been reached.
	ErrAtCapacity = errors.New("at capacity")
)

// LoopExecutor is the interface for run processing.
//
// The executor owns the entire run lifecycle internally: it resolves the
// named AgentLoop, drives it to completion (or a terminal non-success status)
// through a looprun.Runner, and returns the terminal outcome. The worker only
// handles: claiming, heartbeat, and terminal status persistence.
type LoopExecutor interface {
	Execute(ctx context.Context, run *ent.LoopRun) *ExecutionResult
}

// ExecutionResult is the terminal state of one run, translated from a
// looprun.Result into the fields pkg/store persists on the LoopRun row.
type ExecutionResult struct {
	Status      looprun.Status
	FinalOutput any
	Iterations  int
	TotalTokens int
	Error       error
}

// PoolHealth contains health information for the entire worker pool.
type PoolHealth struct {
	IsHealthy        bool           `json:"is_healthy"`
	StoreReachable   bool           `json:"store_reachable"`
	StoreError       string         `json:"store_error,omitempty"`
	WorkerID         string         `json:"worker_id"`
	ActiveWorkers    int            `json:"active_workers"`
	TotalWorkers     int            `json:"total_workers"`
	ActiveRuns       int            `json:"active_runs"`
	MaxConcurrent    int            `json:"max_concurrent"`
	QueueDepth       int            `json:"queue_depth"`
	WorkerStats      []WorkerHealth `json:"worker_stats"`
	LastOrphanScan   time.Time      `json:"last_orphan_scan"`
	OrphansRecovered int            `json:"orphans_recovered"`
}

// WorkerHealth contains health information for a single worker goroutine.
type WorkerHealth struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"` // "idle" or "working"
	CurrentRunID  string    `json:"current_run_id,omitempty"`
	RunsProcessed int       `json:"runs_processed"`
	LastActivity  time.Time `json:"last_activity"`
}
