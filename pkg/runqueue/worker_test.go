package runqueue

import (
	"testing"
	"time"

	"github.com/codeready-toolchain/agentcore/pkg/config"
	"github.com/codeready-toolchain/agentcore/pkg/looprun"
	"github.com/stretchr/testify/assert"
)

func testRunQueueConfig() *config.RunQueueConfig {
	return &config.RunQueueConfig{
		WorkerCount:             5,
		MaxConcurrentRuns:       5,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		RunTimeout:              15 * time.Minute,
		GracefulShutdownTimeout: 15 * time.Minute,
		OrphanDetectionInterval: 5 * time.Minute,
		OrphanThreshold:         5 * time.Minute,
		HeartbeatInterval:       30 * time.Second,
	}
}

func TestWorkerPollInterval(t *testing.T) {
	cfg := testRunQueueConfig()
	w := NewWorker("test-worker", "test-node", nil, cfg, nil, nil)

	// Poll interval should be within [base - jitter, base + jitter]
	for i := 0; i < 100; i++ {
		d := w.pollInterval()
		assert.GreaterOrEqual(t, d, 500*time.Millisecond, "poll interval below minimum")
		assert.LessOrEqual(t, d, 1500*time.Millisecond, "poll interval above maximum")
	}
}

func TestWorkerPollIntervalNoJitter(t *testing.T) {
	cfg := testRunQueueConfig()
	cfg.PollIntervalJitter = 0
	w := NewWorker("test-worker", "test-node", nil, cfg, nil, nil)

	for i := 0; i < 10; i++ {
		d := w.pollInterval()
		assert.Equal(t, 1*time.Second, d, "poll interval should equal base when jitter is 0")
	}
}

func TestWorkerPollIntervalWithNegativeJitter(t *testing.T) {
	cfg := testRunQueueConfig()
	cfg.PollInterval = 1 * time.Second
	cfg.PollIntervalJitter = -100 * time.Millisecond
	w := NewWorker("test-worker", "test-node", nil, cfg, nil, nil)

	// Negative jitter should be treated as zero
	for i := 0; i < 10; i++ {
		d := w.pollInterval()
		assert.Equal(t, 1*time.Second, d)
	}
}

func TestWorkerHealth(t *testing.T) {
	cfg := testRunQueueConfig()
	w := NewWorker("worker-1", "node-1", nil, cfg, nil, nil)

	h := w.Health()
	assert.Equal(t, "worker-1", h.ID)
	assert.Equal(t, string(WorkerStatusIdle), h.Status)
	assert.Equal(t, "", h.CurrentRunID)
	assert.Equal(t, 0, h.RunsProcessed)

	// Simulate working state
	w.setStatus(WorkerStatusWorking, "run-abc")
	h = w.Health()
	assert.Equal(t, string(WorkerStatusWorking), h.Status)
	assert.Equal(t, "run-abc", h.CurrentRunID)

	// Back to idle
	w.setStatus(WorkerStatusIdle, "")
	h = w.Health()
	assert.Equal(t, string(WorkerStatusIdle), h.Status)
	assert.Equal(t, "", h.CurrentRunID)
}

func TestWorkerStopIdempotent(t *testing.T) {
	cfg := testRunQueueConfig()
	w := NewWorker("worker-1", "node-1", nil, cfg, nil, nil)

	// First stop should succeed
	assert.NotPanics(t, func() { w.Stop() })

	// Second stop should also succeed (no panic)
	assert.NotPanics(t, func() { w.Stop() })
}

func TestStoreStatus_MapsEveryTerminalStatus(t *testing.T) {
	tests := []struct {
		in   looprun.Status
		want string
	}{
		{looprun.StatusSuccess, "success"},
		{looprun.StatusFailed, "failed"},
		{looprun.StatusTimeout, "timeout"},
		{looprun.StatusBudgetExceeded, "budget_exceeded"},
		{looprun.StatusMaxIterations, "max_iterations"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(storeStatus(tt.in)))
	}
}
