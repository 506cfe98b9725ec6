package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	name   string
	result Result
	called *int
}

func (f fakeValidator) Name() string { return f.name }
func (f fakeValidator) Validate(context.Context, string) (Result, error) {
	if f.called != nil {
		*f.called++
	}
	return f.result, nil
}

func TestChain_StopsOnFirstErrorWhenConfigured(t *testing.T) {
	var secondCalls int
	chain := NewChain([]Validator{
		fakeValidator{name: "first", result: Result{Success: false, Issues: []Issue{{Message: "boom"}}}},
		fakeValidator{name: "second", result: Result{Success: true}, called: &secondCalls},
	})

	res, err := chain.Validate(context.Background(), "target", true)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, secondCalls, "chain must stop before running the second validator")
	assert.Equal(t, []string{"first"}, res.Order)
}

func TestChain_ContinuesWhenStopOnErrorFalse(t *testing.T) {
	var secondCalls int
	chain := NewChain([]Validator{
		fakeValidator{name: "first", result: Result{Success: false}},
		fakeValidator{name: "second", result: Result{Success: true}, called: &secondCalls},
	})

	res, err := chain.Validate(context.Background(), "target", false)
	require.NoError(t, err)
	assert.False(t, res.Success, "overall success is AND of all run validators")
	assert.Equal(t, 1, secondCalls)
	assert.Equal(t, []string{"first", "second"}, res.Order)
}

func TestChain_AllSuccessIsSuccess(t *testing.T) {
	chain := NewChain([]Validator{
		fakeValidator{name: "a", result: Result{Success: true}},
		fakeValidator{name: "b", result: Result{Success: true}},
	})
	res, err := chain.Validate(context.Background(), "target", true)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestChainResult_IssuesFlattensInOrder(t *testing.T) {
	chain := NewChain([]Validator{
		fakeValidator{name: "a", result: Result{Success: false, Issues: []Issue{{Message: "a1"}}}},
		fakeValidator{name: "b", result: Result{Success: false, Issues: []Issue{{Message: "b1"}}}},
	})
	res, err := chain.Validate(context.Background(), "target", false)
	require.NoError(t, err)
	issues := res.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "a1", issues[0].Message)
	assert.Equal(t, "b1", issues[1].Message)
}
