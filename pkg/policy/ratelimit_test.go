package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitPolicy_GlobalLimitIsStrictlyGreaterThan(t *testing.T) {
	p := NewRateLimitPolicy(WithMaxCallsPerMinute(5))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := p.Evaluate(ctx, ToolCallContext{})
		require.NoError(t, err)
		assert.Equal(t, Allow, res.Decision)
		p.RecordCall("")
	}

	// 6th pre-record check still allows (5 recorded calls, limit 5, not >).
	res, err := p.Evaluate(ctx, ToolCallContext{})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)
	p.RecordCall("")

	// 7th pre-record check denies (6 recorded calls > limit 5).
	res, err = p.Evaluate(ctx, ToolCallContext{})
	require.NoError(t, err)
	assert.Equal(t, Deny, res.Decision)
}

func TestRateLimitPolicy_PerTargetWarnsNotDenies(t *testing.T) {
	p := NewRateLimitPolicy(WithMaxCallsPerTarget(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p.RecordCall("a.txt")
	}

	res, err := p.Evaluate(ctx, ToolCallContext{Target: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, Warn, res.Decision)

	res, err = p.Evaluate(ctx, ToolCallContext{Target: "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, Allow, res.Decision)
}

func TestRateLimitPolicy_Priority(t *testing.T) {
	assert.Equal(t, 0, NewRateLimitPolicy().Priority())
}
