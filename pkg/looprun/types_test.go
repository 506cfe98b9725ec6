package looprun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentLoop_ValidateRequiresAtLeastOneStep(t *testing.T) {
	l := AgentLoop{}
	require.ErrorIs(t, l.Validate(), ErrNoSteps)
}

func TestAgentLoop_ValidateRejectsDuplicateNames(t *testing.T) {
	l := AgentLoop{Steps: []LoopStep{{Name: "a"}, {Name: "a"}}}
	require.ErrorIs(t, l.Validate(), ErrDuplicateStepName)
}

func TestAgentLoop_ValidateRejectsUnresolvedEntry(t *testing.T) {
	l := AgentLoop{Steps: []LoopStep{{Name: "a"}}, Entry: "missing"}
	require.ErrorIs(t, l.Validate(), ErrEntryNotFound)
}

func TestAgentLoop_ValidateRequiresGotoTarget(t *testing.T) {
	l := AgentLoop{Steps: []LoopStep{{Name: "a", OnError: OnErrorGoto}}}
	require.ErrorIs(t, l.Validate(), ErrGotoMissingTarget)
}

func TestAgentLoop_ValidateRejectsUnresolvedGotoTarget(t *testing.T) {
	l := AgentLoop{Steps: []LoopStep{{Name: "a", OnError: OnErrorGoto, GotoTarget: "nowhere"}}}
	require.ErrorIs(t, l.Validate(), ErrGotoNotFound)
}

func TestAgentLoop_EntryDefaultsToFirstStep(t *testing.T) {
	l := AgentLoop{Steps: []LoopStep{{Name: "first"}, {Name: "second"}}}
	assert.NoError(t, l.Validate())
	assert.Equal(t, "first", l.EntryName())
}

func TestLoopContext_WithStepDoesNotMutateOriginal(t *testing.T) {
	c1 := NewLoopContext("input")
	c2 := c1.WithStep("a", "output-a")

	_, ok := c1.Step("a")
	assert.False(t, ok, "c1 must be unaffected by c2's extension")
	assert.Nil(t, c1.Last)
	assert.Equal(t, "input", c1.Input)

	v, ok := c2.Step("a")
	require.True(t, ok)
	assert.Equal(t, "output-a", v)
	assert.Equal(t, "output-a", c2.Last)
}
