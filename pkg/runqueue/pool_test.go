package runqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRegisterAndCancelRun(t *testing.T) {
	pool := &WorkerPool{
		activeRuns: make(map[string]context.CancelFunc),
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.RegisterRun("run-1", cancel)

	assert.True(t, pool.CancelRun("run-1"))
	assert.Error(t, ctx.Err()) // Context should be cancelled

	assert.False(t, pool.CancelRun("unknown"))
}

func TestPoolUnregisterRun(t *testing.T) {
	pool := &WorkerPool{
		activeRuns: make(map[string]context.CancelFunc),
	}

	_, cancel := context.WithCancel(context.Background())
	pool.RegisterRun("run-1", cancel)

	assert.True(t, pool.CancelRun("run-1"))

	pool.UnregisterRun("run-1")

	assert.False(t, pool.CancelRun("run-1"))
}

func TestPoolGetActiveRunIDs(t *testing.T) {
	pool := &WorkerPool{
		activeRuns: make(map[string]context.CancelFunc),
	}

	ids := pool.getActiveRunIDs()
	assert.Empty(t, ids)

	_, cancel1 := context.WithCancel(context.Background())
	defer cancel1()
	_, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	pool.RegisterRun("run-a", cancel1)
	pool.RegisterRun("run-b", cancel2)

	ids = pool.getActiveRunIDs()
	require.Len(t, ids, 2)
	assert.Contains(t, ids, "run-a")
	assert.Contains(t, ids, "run-b")
}

func TestPoolStopTwiceDoesNotPanic(t *testing.T) {
	pool := &WorkerPool{
		stopCh:     make(chan struct{}),
		activeRuns: make(map[string]context.CancelFunc),
	}

	assert.NotPanics(t, func() { pool.Stop() })
	assert.NotPanics(t, func() { pool.Stop() })
}
