package shadowvcs

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// CreateExperiment records the current branch as the experiment's base and
// registers the Experiment. It does not create any VCS branch itself.
func (e *Engine) CreateExperiment(ctx context.Context, id, description string, metadata map[string]any) (*Experiment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	base, err := e.currentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	exp := &Experiment{
		ID:          id,
		Description: description,
		Base:        base,
		Branches:    make(map[string]*ShadowBranch),
		CreatedAt:   time.Now().UTC(),
		Metadata:    metadata,
	}
	e.experiments[id] = exp
	return exp, nil
}

// CreateExperimentBranch checks out the experiment's base, then creates a
// new branch named "experiment/<id>/<approach>". The resulting branch is
// stored both in experiment.Branches and the engine's global index, keyed
// by the fully-qualified name (spec §9: approach names can collide across
// experiments, so the global index must never use the short name).
func (e *Engine) CreateExperimentBranch(ctx context.Context, exp *Experiment, approach string, metadata map[string]any) (*ShadowBranch, error) {
	if _, err := e.run.Run(ctx, e.repoRoot, "checkout", "checkout", exp.Base); err != nil {
		return nil, err
	}
	fqName := fmt.Sprintf("experiment/%s/%s", exp.ID, approach)
	branch, err := e.CreateShadowBranch(ctx, fqName)
	if err != nil {
		return nil, err
	}
	branch.ExperimentID = exp.ID
	if metadata != nil {
		for k, v := range metadata {
			branch.Metadata[k] = v
		}
	}

	e.mu.Lock()
	exp.Branches[approach] = branch
	e.mu.Unlock()
	return branch, nil
}

// RecordMetrics shallow-merges into branch.Metadata["metrics"].
func (e *Engine) RecordMetrics(branch *ShadowBranch, metrics map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	existing, _ := branch.Metadata["metrics"].(map[string]any)
	if existing == nil {
		existing = map[string]any{}
	}
	for k, v := range metrics {
		existing[k] = v
	}
	branch.Metadata["metrics"] = existing
}

// CompareExperimentBranches computes, for each branch, the files changed
// vs. the experiment base; the intersection across all branches
// (CommonFiles); and per-branch UniqueFiles (set-difference against the
// union of all other branches' files). Metrics are copied by reference.
func (e *Engine) CompareExperimentBranches(ctx context.Context, exp *Experiment) (ExperimentComparison, error) {
	filesByApproach := make(map[string]map[string]bool)
	allFiles := make(map[string]int) // file -> count of approaches containing it

	// Stable order for deterministic slices.
	var approaches []string
	for approach := range exp.Branches {
		approaches = append(approaches, approach)
	}
	sort.Strings(approaches)

	for _, approach := range approaches {
		branch := exp.Branches[approach]
		files, err := e.diffNameOnly(ctx, exp.Base, branch.Name)
		if err != nil {
			return ExperimentComparison{}, err
		}
		set := make(map[string]bool, len(files))
		for _, f := range files {
			set[f] = true
			allFiles[f]++
		}
		filesByApproach[approach] = set
	}

	var common []string
	for f, count := range allFiles {
		if count == len(approaches) && len(approaches) > 0 {
			common = append(common, f)
		}
	}
	sort.Strings(common)

	unique := make(map[string][]string, len(approaches))
	metrics := make(map[string]map[string]any, len(approaches))
	for _, approach := range approaches {
		var uniqueFiles []string
		for f := range filesByApproach[approach] {
			if allFiles[f] == 1 {
				uniqueFiles = append(uniqueFiles, f)
			}
		}
		sort.Strings(uniqueFiles)
		unique[approach] = uniqueFiles

		branch := exp.Branches[approach]
		if m, ok := branch.Metadata["metrics"].(map[string]any); ok {
			metrics[approach] = m
		}
	}

	return ExperimentComparison{CommonFiles: common, UniqueFiles: unique, Metrics: metrics}, nil
}

// SelectWinner validates the approach exists, then squash-merges the
// winning branch onto the experiment's base with a message defaulting to
// "Experiment '<id>': selected <approach>".
func (e *Engine) SelectWinner(ctx context.Context, exp *Experiment, approach string, message string) (CommitHandle, error) {
	branch, ok := exp.Branches[approach]
	if !ok {
		return CommitHandle{}, ErrApproachNotFound
	}
	if message == "" {
		message = fmt.Sprintf("Experiment '%s': selected %s", exp.ID, approach)
	}
	return e.SquashMerge(ctx, branch, message)
}

// AbortExperiment aborts every branch in the experiment, then removes the
// experiment from the index.
func (e *Engine) AbortExperiment(ctx context.Context, exp *Experiment) error {
	for _, branch := range exp.Branches {
		if err := e.Abort(ctx, branch); err != nil {
			return err
		}
	}
	e.mu.Lock()
	delete(e.experiments, exp.ID)
	e.mu.Unlock()
	return nil
}

// Experiment looks up a previously created experiment by id.
func (e *Engine) Experiment(id string) (*Experiment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	exp, ok := e.experiments[id]
	return exp, ok
}
