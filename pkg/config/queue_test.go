package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRunQueueConfig_HeartbeatBelowOrphanThreshold(t *testing.T) {
	q := DefaultRunQueueConfig()
	assert.Less(t, q.HeartbeatInterval, q.OrphanThreshold)
	assert.Less(t, q.PollIntervalJitter, q.PollInterval)
	assert.Greater(t, q.WorkerCount, 0)
	assert.Greater(t, q.MaxConcurrentRuns, 0)
}
