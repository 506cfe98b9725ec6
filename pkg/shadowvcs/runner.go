package shadowvcs

import (
	"bytes"
	"context"
	"os/exec"
)

// commandRunner executes a VCS command in a working directory and returns
// stdout, or a *VCSError on non-zero exit. It is an interface so tests can
// substitute a fake without a real git binary.
type commandRunner interface {
	Run(ctx context.Context, dir string, op string, args ...string) (string, error)
}

// execRunner shells out to the system "git" binary, matching spec §6's
// exact command list.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, op string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return stdout.String(), &VCSError{Op: op, Args: args, ExitCode: exitCode, Stderr: stderr.String()}
	}
	return stdout.String(), nil
}
