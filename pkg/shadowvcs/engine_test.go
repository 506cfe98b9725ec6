package shadowvcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-b", "main")
	run("config", "user.email", "agent@example.com")
	run("config", "user.name", "Agent")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644))
	run("add", "-A")
	run("commit", "-m", "initial commit")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestEngine_CreateCommitRollback(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)

	branch, err := e.CreateShadowBranch(ctx, "")
	require.NoError(t, err)
	require.Contains(t, branch.Name, "shadow/")
	require.Equal(t, "main", branch.Base)

	writeFile(t, dir, "a.txt", "v1\n")
	handle, err := e.Commit(ctx, branch, "add a.txt", false)
	require.NoError(t, err)
	require.NotEmpty(t, handle.SHA())
	require.False(t, handle.IsStaged())
	require.Len(t, branch.Commits(), 1)

	// commit with no changes fails
	_, err = e.Commit(ctx, branch, "nothing", false)
	require.ErrorIs(t, err, ErrNothingToCommit)

	before, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "v1\n", string(before))

	writeFile(t, dir, "a.txt", "v2\n")
	_, err = e.Commit(ctx, branch, "update a.txt", false)
	require.NoError(t, err)
	require.Len(t, branch.Commits(), 2)

	// rollback(1) returns the working tree to its pre-commit state
	require.NoError(t, e.Rollback(ctx, branch, 1))
	require.Len(t, branch.Commits(), 1)
	after, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "v1\n", string(after))
}

func TestEngine_RollbackZeroStepsFails(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)
	branch, err := e.CreateShadowBranch(ctx, "b1")
	require.NoError(t, err)
	err = e.Rollback(ctx, branch, 0)
	require.ErrorIs(t, err, ErrInvalidStepCount)
}

func TestEngine_MultiCommitMode(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)
	branch, err := e.CreateShadowBranch(ctx, "b-multi")
	require.NoError(t, err)

	require.NoError(t, e.BeginMultiCommit(branch))
	// nested begin rejected
	require.ErrorIs(t, e.BeginMultiCommit(branch), ErrMultiCommitAlreadyActive)

	writeFile(t, dir, "x.txt", "x\n")
	h1, err := e.Commit(ctx, branch, "edit A", false)
	require.NoError(t, err)
	require.True(t, h1.IsStaged())
	require.Equal(t, StagedSHA, h1.SHA())

	writeFile(t, dir, "y.txt", "y\n")
	h2, err := e.Commit(ctx, branch, "edit B", false)
	require.NoError(t, err)
	require.True(t, h2.IsStaged())

	final, err := e.FinishMultiCommit(ctx, branch, "")
	require.NoError(t, err)
	require.False(t, final.IsStaged())
	require.Equal(t, "edit A / edit B", final.Message())
	require.Len(t, branch.Commits(), 1)

	diff, err := e.Diff(ctx, branch)
	require.NoError(t, err)
	require.Contains(t, diff, "x.txt")
	require.Contains(t, diff, "y.txt")
}

func TestEngine_SquashMergeNoCommitsFails(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)
	branch, err := e.CreateShadowBranch(ctx, "empty-branch")
	require.NoError(t, err)
	_, err = e.SquashMerge(ctx, branch, "")
	require.ErrorIs(t, err, ErrNoCommitsToMerge)
}

func TestEngine_SquashMerge(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)
	branch, err := e.CreateShadowBranch(ctx, "feature")
	require.NoError(t, err)

	writeFile(t, dir, "feature.txt", "feature\n")
	_, err = e.Commit(ctx, branch, "add feature", false)
	require.NoError(t, err)

	handle, err := e.SquashMerge(ctx, branch, "")
	require.NoError(t, err)
	require.Equal(t, "main", handle.Branch())

	content, err := os.ReadFile(filepath.Join(dir, "feature.txt"))
	require.NoError(t, err)
	require.Equal(t, "feature\n", string(content))
}

func TestEngine_AbortRemovesBranch(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)
	branch, err := e.CreateShadowBranch(ctx, "to-abort")
	require.NoError(t, err)
	require.NoError(t, e.Abort(ctx, branch))
	_, ok := e.Branch("to-abort")
	require.False(t, ok)
}

func TestEngine_GetHunksAndSymbolAttribution(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)
	branch, err := e.CreateShadowBranch(ctx, "hunks")
	require.NoError(t, err)

	writeFile(t, dir, "README.md", "hello world\n")
	_, err = e.Commit(ctx, branch, "edit readme", false)
	require.NoError(t, err)

	hunks, err := e.GetHunks(ctx, branch)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	require.Equal(t, "README.md", hunks[0].File)

	attributed := e.MapHunksToSymbols(ctx, hunks)
	require.Len(t, attributed, 1)
	require.Empty(t, attributed[0].Symbol) // no resolver configured -> no symbol, never raises
}

func TestEngine_ExperimentForkCompareSelect(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)

	exp, err := e.CreateExperiment(ctx, "optimize", "", nil)
	require.NoError(t, err)
	require.Equal(t, "main", exp.Base)

	approaches := []string{"A", "B", "C"}
	for _, approach := range approaches {
		b, err := e.CreateExperimentBranch(ctx, exp, approach, nil)
		require.NoError(t, err)
		require.Equal(t, "optimize", b.ExperimentID)

		writeFile(t, dir, "core.py", "core v"+approach+"\n")
		if approach != "C" {
			writeFile(t, dir, approach+".py", approach+" only\n")
		}
		_, err = e.Commit(ctx, b, "approach "+approach, false)
		require.NoError(t, err)
	}

	cmp, err := e.CompareExperimentBranches(ctx, exp)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"core.py"}, cmp.CommonFiles)
	require.ElementsMatch(t, []string{"A.py"}, cmp.UniqueFiles["A"])
	require.ElementsMatch(t, []string{"B.py"}, cmp.UniqueFiles["B"])
	require.Empty(t, cmp.UniqueFiles["C"])

	handle, err := e.SelectWinner(ctx, exp, "B", "")
	require.NoError(t, err)
	require.Equal(t, "Experiment 'optimize': selected B", handle.Message())

	content, err := os.ReadFile(filepath.Join(dir, "core.py"))
	require.NoError(t, err)
	require.Equal(t, "core vB\n", string(content))
}

func TestEngine_VelocityLikeGlobalIndexKeyedByFullyQualifiedName(t *testing.T) {
	dir := newTestRepo(t)
	ctx := context.Background()
	e := New(dir)

	exp1, err := e.CreateExperiment(ctx, "exp1", "", nil)
	require.NoError(t, err)
	_, err = e.CreateExperimentBranch(ctx, exp1, "alpha", nil)
	require.NoError(t, err)

	exp2, err := e.CreateExperiment(ctx, "exp2", "", nil)
	require.NoError(t, err)
	_, err = e.CreateExperimentBranch(ctx, exp2, "alpha", nil)
	require.NoError(t, err)

	_, ok1 := e.Branch("experiment/exp1/alpha")
	_, ok2 := e.Branch("experiment/exp2/alpha")
	require.True(t, ok1)
	require.True(t, ok2)
}
