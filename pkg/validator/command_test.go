package validator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandValidator_SuccessExitCode(t *testing.T) {
	v := NewCommandValidator("true-check", []string{"true"})
	res, err := v.Validate(context.Background(), "/dev/null")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestCommandValidator_FailureEmitsTwoIssuesWithTruncatedStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho some error text 1>&2\nexit 3\n"), 0o755))

	v := NewCommandValidator("script", []string{"sh", script})
	res, err := v.Validate(context.Background(), "/dev/null")
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Issues, 2)
	assert.Contains(t, res.Issues[0].Message, "exit code 3")
	assert.Contains(t, res.Issues[1].Message, "some error text")
	assert.Equal(t, 3, res.Metadata["exit_code"])
}

func TestCommandValidator_PathSubstitution(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))

	v := NewCommandValidator("exists", []string{"test", "-f", "{path}"})
	res, err := v.Validate(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestCommandValidator_CustomSuccessCodes(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "exit2.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 2\n"), 0o755))

	v := NewCommandValidator("script", []string{"sh", script}, WithSuccessCodes(0, 2))
	res, err := v.Validate(context.Background(), "/dev/null")
	require.NoError(t, err)
	assert.True(t, res.Success)
}
