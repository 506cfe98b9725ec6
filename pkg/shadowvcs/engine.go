package shadowvcs

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/agentcore/pkg/introspect"
)

// Engine wraps an underlying git repository and is the single legal
// mutator of every ShadowBranch/Experiment it returns. The branch index
// and experiment index are engine-internal, single-writer, in-memory only
// (spec §6 "the engine persists nothing itself").
type Engine struct {
	mu       sync.Mutex
	repoRoot string
	run      commandRunner
	log      *slog.Logger
	resolver introspect.SymbolResolver

	branches    map[string]*ShadowBranch // keyed by fully-qualified branch name
	experiments map[string]*Experiment

	multiCommit *multiCommitState
}

type multiCommitState struct {
	branch   string
	messages []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the default slog.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithSymbolResolver wires the AST-introspection collaborator used by
// MapHunksToSymbols.
func WithSymbolResolver(r introspect.SymbolResolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// New returns an Engine rooted at repoRoot, an already-initialized git
// working tree.
func New(repoRoot string, opts ...Option) *Engine {
	e := &Engine{
		repoRoot:    repoRoot,
		run:         execRunner{},
		log:         slog.Default(),
		resolver:    introspect.NoopResolver{},
		branches:    make(map[string]*ShadowBranch),
		experiments: make(map[string]*Experiment),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) currentBranch(ctx context.Context) (string, error) {
	out, err := e.run.Run(ctx, e.repoRoot, "rev-parse", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func randHex(n int) string {
	b := make([]byte, n/2)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x", b)
}

// CreateShadowBranch creates and switches to a new branch forked from the
// current branch. If name is empty, a name of the form "shadow/<8-hex>" is
// generated.
func (e *Engine) CreateShadowBranch(ctx context.Context, name string) (*ShadowBranch, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	base, err := e.currentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "shadow/" + randHex(8)
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "checkout", "checkout", "-b", name); err != nil {
		return nil, err
	}

	branch := &ShadowBranch{
		Name:     name,
		Base:     base,
		RepoRoot: e.repoRoot,
		ID:       uuid.NewString(),
		Metadata: map[string]any{},
	}
	e.branches[name] = branch
	e.log.Info("created shadow branch", "branch", name, "base", base)
	return branch, nil
}

// CheckoutShadowBranch switches HEAD to branch.Name.
func (e *Engine) CheckoutShadowBranch(ctx context.Context, branch *ShadowBranch) error {
	_, err := e.run.Run(ctx, e.repoRoot, "checkout", "checkout", branch.Name)
	return err
}

func (e *Engine) ensureOnBranch(ctx context.Context, branch *ShadowBranch) error {
	current, err := e.currentBranch(ctx)
	if err != nil {
		return err
	}
	if current == branch.Name {
		return nil
	}
	return e.CheckoutShadowBranch(ctx, branch)
}

// Commit ensures HEAD is on branch, stages all changes, and creates a
// commit. If the engine is in multi-commit mode, the change is staged and
// the message queued instead of producing a real commit; the returned
// handle carries the StagedSHA sentinel.
func (e *Engine) Commit(ctx context.Context, branch *ShadowBranch, message string, allowEmpty bool) (CommitHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOnBranch(ctx, branch); err != nil {
		return CommitHandle{}, err
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "add", "add", "-A"); err != nil {
		return CommitHandle{}, err
	}

	if e.multiCommit != nil {
		if e.multiCommit.branch != branch.Name {
			return CommitHandle{}, fmt.Errorf("multi-commit mode active for branch %q, cannot commit to %q", e.multiCommit.branch, branch.Name)
		}
		e.multiCommit.messages = append(e.multiCommit.messages, message)
		return NewCommitHandle(StagedSHA, message, time.Time{}, branch.Name), nil
	}

	status, err := e.run.Run(ctx, e.repoRoot, "status", "status", "--porcelain")
	if err != nil {
		return CommitHandle{}, err
	}
	if strings.TrimSpace(status) == "" && !allowEmpty {
		return CommitHandle{}, ErrNothingToCommit
	}

	args := []string{"-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "commit", append([]string{"commit"}, args...)...); err != nil {
		return CommitHandle{}, err
	}

	sha, err := e.run.Run(ctx, e.repoRoot, "rev-parse", "rev-parse", "HEAD")
	if err != nil {
		return CommitHandle{}, err
	}
	handle := NewCommitHandle(strings.TrimSpace(sha), message, time.Now().UTC(), branch.Name)
	branch.commits = append(branch.commits, handle)
	return handle, nil
}

// BeginMultiCommit puts the engine into multi-commit mode for branch.
// Nested calls are rejected (spec §9 open question, resolved as rejection).
func (e *Engine) BeginMultiCommit(branch *ShadowBranch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.multiCommit != nil {
		return ErrMultiCommitAlreadyActive
	}
	e.multiCommit = &multiCommitState{branch: branch.Name}
	return nil
}

// FinishMultiCommit flushes queued multi-commit messages into one real
// commit. The message defaults to the queued messages joined with " / ".
func (e *Engine) FinishMultiCommit(ctx context.Context, branch *ShadowBranch, message string) (CommitHandle, error) {
	e.mu.Lock()
	if e.multiCommit == nil || e.multiCommit.branch != branch.Name {
		e.mu.Unlock()
		return CommitHandle{}, ErrNotInMultiCommit
	}
	messages := e.multiCommit.messages
	e.multiCommit = nil
	e.mu.Unlock()

	if message == "" {
		message = strings.Join(messages, " / ")
	}

	if err := e.ensureOnBranch(ctx, branch); err != nil {
		return CommitHandle{}, err
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "add", "add", "-A"); err != nil {
		return CommitHandle{}, err
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "commit", "commit", "-m", message); err != nil {
		return CommitHandle{}, err
	}
	sha, err := e.run.Run(ctx, e.repoRoot, "rev-parse", "rev-parse", "HEAD")
	if err != nil {
		return CommitHandle{}, err
	}

	e.mu.Lock()
	handle := NewCommitHandle(strings.TrimSpace(sha), message, time.Now().UTC(), branch.Name)
	branch.commits = append(branch.commits, handle)
	e.mu.Unlock()
	return handle, nil
}

// Rollback resets HEAD backwards by steps commits, destructively matching
// the working tree, and truncates the handle list.
func (e *Engine) Rollback(ctx context.Context, branch *ShadowBranch, steps int) error {
	if steps < 1 {
		return ErrInvalidStepCount
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if steps > len(branch.commits) {
		return ErrInvalidStepCount
	}
	if err := e.ensureOnBranch(ctx, branch); err != nil {
		return err
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "reset", "reset", "--hard", fmt.Sprintf("HEAD~%d", steps)); err != nil {
		return err
	}
	branch.commits = branch.commits[:len(branch.commits)-steps]
	return nil
}

// RollbackTo rolls back by the exact offset needed to land at handle.
func (e *Engine) RollbackTo(ctx context.Context, branch *ShadowBranch, handle CommitHandle) error {
	e.mu.Lock()
	idx := -1
	for i, h := range branch.commits {
		if h.sha == handle.sha {
			idx = i
			break
		}
	}
	e.mu.Unlock()
	if idx == -1 {
		return ErrCommitNotFound
	}
	steps := len(branch.commits) - idx - 1
	if steps == 0 {
		return nil
	}
	return e.Rollback(ctx, branch, steps)
}

// SquashMerge checks out the base, squash-merges branch, and commits with
// the given message (defaulting to a generic description).
func (e *Engine) SquashMerge(ctx context.Context, branch *ShadowBranch, message string) (CommitHandle, error) {
	e.mu.Lock()
	if len(branch.commits) == 0 {
		e.mu.Unlock()
		return CommitHandle{}, ErrNoCommitsToMerge
	}
	e.mu.Unlock()

	if message == "" {
		message = fmt.Sprintf("Squash merge %s", branch.Name)
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "checkout", "checkout", branch.Base); err != nil {
		return CommitHandle{}, err
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "merge", "merge", "--squash", branch.Name); err != nil {
		return CommitHandle{}, err
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "commit", "commit", "-m", message); err != nil {
		return CommitHandle{}, err
	}
	sha, err := e.run.Run(ctx, e.repoRoot, "rev-parse", "rev-parse", "HEAD")
	if err != nil {
		return CommitHandle{}, err
	}
	return NewCommitHandle(strings.TrimSpace(sha), message, time.Now().UTC(), branch.Base), nil
}

// SmartMerge attempts a normal merge first; on conflict it falls back to a
// "favor theirs" resolution and commits with a "(resolved conflicts)"
// suffix. Conflicts that can't be resolved this way surface as errors.
func (e *Engine) SmartMerge(ctx context.Context, branch *ShadowBranch, message string) (CommitHandle, error) {
	if message == "" {
		message = fmt.Sprintf("Merge %s", branch.Name)
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "checkout", "checkout", branch.Base); err != nil {
		return CommitHandle{}, err
	}

	_, mergeErr := e.run.Run(ctx, e.repoRoot, "merge", "merge", branch.Name, "-m", message)
	if mergeErr == nil {
		sha, err := e.run.Run(ctx, e.repoRoot, "rev-parse", "rev-parse", "HEAD")
		if err != nil {
			return CommitHandle{}, err
		}
		return NewCommitHandle(strings.TrimSpace(sha), message, time.Now().UTC(), branch.Base), nil
	}

	// Recovery path: favor the shadow branch's version of conflicting files.
	if _, err := e.run.Run(ctx, e.repoRoot, "checkout", "checkout", "--theirs", "."); err != nil {
		return CommitHandle{}, fmt.Errorf("smart merge recovery failed: %w (original: %v)", err, mergeErr)
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "add", "add", "-A"); err != nil {
		return CommitHandle{}, fmt.Errorf("smart merge recovery failed: %w (original: %v)", err, mergeErr)
	}
	resolvedMessage := message + " (resolved conflicts)"
	if _, err := e.run.Run(ctx, e.repoRoot, "commit", "commit", "-m", resolvedMessage); err != nil {
		return CommitHandle{}, fmt.Errorf("smart merge recovery failed: %w (original: %v)", err, mergeErr)
	}
	sha, err := e.run.Run(ctx, e.repoRoot, "rev-parse", "rev-parse", "HEAD")
	if err != nil {
		return CommitHandle{}, err
	}
	return NewCommitHandle(strings.TrimSpace(sha), resolvedMessage, time.Now().UTC(), branch.Base), nil
}

// Abort switches to base and deletes the shadow branch, removing it from
// the index.
func (e *Engine) Abort(ctx context.Context, branch *ShadowBranch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.run.Run(ctx, e.repoRoot, "checkout", "checkout", branch.Base); err != nil {
		return err
	}
	if _, err := e.run.Run(ctx, e.repoRoot, "branch", "branch", "-D", branch.Name); err != nil {
		return err
	}
	delete(e.branches, branch.Name)
	return nil
}

// Diff returns the raw unified diff comparing shadow HEAD to base.
func (e *Engine) Diff(ctx context.Context, branch *ShadowBranch) (string, error) {
	return e.run.Run(ctx, e.repoRoot, "diff", "diff", fmt.Sprintf("%s...%s", branch.Base, branch.Name))
}

// DiffStat returns a summary stat comparing shadow HEAD to base.
func (e *Engine) DiffStat(ctx context.Context, branch *ShadowBranch) (string, error) {
	return e.run.Run(ctx, e.repoRoot, "diff", "diff", "--stat", fmt.Sprintf("%s...%s", branch.Base, branch.Name))
}

// diffNameOnly returns the list of files changed between base and ref.
func (e *Engine) diffNameOnly(ctx context.Context, base, ref string) ([]string, error) {
	out, err := e.run.Run(ctx, e.repoRoot, "diff", "diff", "--name-only", fmt.Sprintf("%s...%s", base, ref))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// Branch looks up a previously created branch by fully-qualified name.
func (e *Engine) Branch(name string) (*ShadowBranch, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.branches[name]
	return b, ok
}
