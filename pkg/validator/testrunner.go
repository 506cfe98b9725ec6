package validator

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TestRunnerValidator runs the project's test command. On failure it
// attempts to extract failed-test names from lines beginning with FAILED.
// Whenever the command runs, metadata carries the exit code, the failure
// count and the failed-test names; no pass count is parsed.
type TestRunnerValidator struct {
	name    string
	command []string
}

// NewTestRunnerValidator returns a TestRunnerValidator named name, running
// command (with `{path}` substitution) as the project's test command.
func NewTestRunnerValidator(name string, command []string) *TestRunnerValidator {
	return &TestRunnerValidator{name: name, command: command}
}

func (v *TestRunnerValidator) Name() string { return v.name }

func (v *TestRunnerValidator) Validate(ctx context.Context, path string) (Result, error) {
	args := make([]string, len(v.command))
	for i, tok := range v.command {
		args[i] = strings.ReplaceAll(tok, "{path}", path)
	}
	if len(args) == 0 {
		return Result{Success: true}, nil
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{
				Success: false,
				Issues: []Issue{
					{Severity: SeverityError, Message: fmt.Sprintf("command could not be run: %v", runErr), Source: v.name},
				},
			}, nil
		}
	}

	failed := extractFailedTests(out.String())
	var issues []Issue
	for _, name := range failed {
		issues = append(issues, Issue{Severity: SeverityError, Message: "test failed: " + name, Source: v.name})
	}

	return Result{
		Success: exitCode == 0,
		Issues:  issues,
		Metadata: map[string]any{
			"exit_code":   exitCode,
			"fail_count":  len(failed),
			"failed_tests": failed,
		},
	}, nil
}

// extractFailedTests collects the remainder of each line beginning with
// "FAILED" (after trimming that prefix and surrounding whitespace).
func extractFailedTests(output string) []string {
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "FAILED") {
			name := strings.TrimSpace(strings.TrimPrefix(line, "FAILED"))
			name = strings.TrimPrefix(name, "-")
			names = append(names, strings.TrimSpace(name))
		}
	}
	return names
}
