package shadowvcs

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codeready-toolchain/agentcore/pkg/introspect"
)

var (
	fileHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@.*$`)
)

// ParseDiff parses unified-diff output into DiffHunks. It tracks the
// "current file" from "diff --git a/X b/Y" headers (the new path Y is
// authoritative) and emits a DiffHunk whenever a "@@ ... @@" header is
// seen, collecting all following lines until the next hunk header, next
// file header, or input end. Missing counts default to 1. A blank line
// followed by "diff --git" is tolerated as a file-boundary signal (some
// VCS output inserts one).
func ParseDiff(raw string) []DiffHunk {
	lines := strings.Split(raw, "\n")
	var hunks []DiffHunk
	currentFile := ""

	i := 0
	for i < len(lines) {
		line := lines[i]

		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			currentFile = m[2]
			i++
			continue
		}
		if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ") {
			i++
			continue
		}

		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			oldStart := atoiDefault(m[1], 1)
			oldCount := atoiDefaultCount(m[2])
			newStart := atoiDefault(m[3], 1)
			newCount := atoiDefaultCount(m[4])

			header := line
			var bodyLines []string
			j := i + 1
			for j < len(lines) {
				next := lines[j]
				if hunkHeaderRe.MatchString(next) || fileHeaderRe.MatchString(next) {
					break
				}
				bodyLines = append(bodyLines, next)
				j++
			}
			// Trim trailing blank lines that precede the next file header
			// or EOF; they are formatting, not hunk content.
			for len(bodyLines) > 0 && bodyLines[len(bodyLines)-1] == "" {
				bodyLines = bodyLines[:len(bodyLines)-1]
			}

			hunks = append(hunks, DiffHunk{
				File:     currentFile,
				OldStart: oldStart,
				OldCount: oldCount,
				NewStart: newStart,
				NewCount: newCount,
				Header:   header,
				Content:  strings.Join(bodyLines, "\n"),
			})
			i = j
			continue
		}

		i++
	}
	return hunks
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// atoiDefaultCount implements the "missing counts default to 1" rule for
// the optional ",count" group in a hunk header.
func atoiDefaultCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

// GetHunks runs Diff and parses the result into DiffHunks.
func (e *Engine) GetHunks(ctx context.Context, branch *ShadowBranch) ([]DiffHunk, error) {
	raw, err := e.Diff(ctx, branch)
	if err != nil {
		return nil, err
	}
	return ParseDiff(raw), nil
}

// MapHunksToSymbols opens each hunk's target file at NewStart and queries
// the AST-introspection service for the innermost enclosing symbol. If the
// file or symbol cannot be resolved, Symbol is left empty; this never
// raises.
func (e *Engine) MapHunksToSymbols(ctx context.Context, hunks []DiffHunk) []DiffHunk {
	out := make([]DiffHunk, len(hunks))
	for i, h := range hunks {
		out[i] = h
		out[i].Symbol = introspect.Innermost(ctx, e.resolver, h.File, h.NewStart)
	}
	return out
}

// RollbackHunks surgically reverts the given hunks in the working tree.
// Callers typically follow this with a Commit to record the selective
// revert. Returns the count of hunks reverted. Per hunk, it picks the
// revert strategy automatically: a plain slice-replace for hunks whose body
// is a single contiguous run of +/- lines, or the more careful
// line-by-line walk (see RollbackHunksLineByLine) when hasInterleavedContext
// reports context lines between +/- runs, since a blind slice-replace would
// clobber the interleaved context.
func (e *Engine) RollbackHunks(branch *ShadowBranch, hunksToRevert []DiffHunk) (int, error) {
	byFile := make(map[string][]DiffHunk)
	for _, h := range hunksToRevert {
		byFile[h.File] = append(byFile[h.File], h)
	}

	reverted := 0
	for file, hunks := range byFile {
		// Sort by NewStart descending: reverting bottom-up preserves line
		// validity for earlier hunks in the same file.
		sort.Slice(hunks, func(i, j int) bool { return hunks[i].NewStart > hunks[j].NewStart })

		path := file
		if branch.RepoRoot != "" {
			path = branch.RepoRoot + string(os.PathSeparator) + file
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return reverted, fmt.Errorf("reading %s: %w", path, err)
		}
		lines := strings.Split(string(data), "\n")

		for _, h := range hunks {
			if hasInterleavedContext(h) {
				lines = revertHunkLineByLine(h, lines)
			} else {
				lines = revertHunkSlice(h, lines)
			}
			reverted++
		}

		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
			return reverted, fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return reverted, nil
}

// revertHunkSlice replaces the hunk's NewStart..NewStart+NewCount range with
// its removed ('-') lines in one blind slice-replace.
func revertHunkSlice(h DiffHunk, lines []string) []string {
	removed, _ := h.LinesChanged()
	startIdx := h.NewStart - 1
	endIdx := startIdx + h.NewCount
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > len(lines) {
		endIdx = len(lines)
	}
	replaced := append([]string{}, lines[:startIdx]...)
	replaced = append(replaced, removed...)
	replaced = append(replaced, lines[endIdx:]...)
	return replaced
}

// hasInterleavedContext reports whether a hunk's body contains context
// (' '-prefixed) lines between runs of +/- lines — the case spec §9 flags
// as needing the more conservative line-by-line walk rather than a blind
// slice-replace.
func hasInterleavedContext(h DiffHunk) bool {
	lines := strings.Split(h.Content, "\n")
	sawChange := false
	sawContextAfterChange := false
	for _, l := range lines {
		if l == "" {
			continue
		}
		switch l[0] {
		case '+', '-':
			sawChange = true
		case ' ':
			if sawChange {
				sawContextAfterChange = true
			}
		}
	}
	return sawContextAfterChange
}

// RollbackHunksLineByLine is the more careful walk spec §9 suggests for
// hunks with interleaved context: it replays the hunk body line-by-line,
// emitting context lines unchanged, emitting removed lines in place of
// their prior '-' position, and skipping added lines — rather than
// slice-replacing the whole NewStart..NewStart+NewCount range. Unlike
// RollbackHunks it applies this walk to every hunk unconditionally, for
// callers that want to force it regardless of hasInterleavedContext.
func (e *Engine) RollbackHunksLineByLine(branch *ShadowBranch, hunksToRevert []DiffHunk) (int, error) {
	byFile := make(map[string][]DiffHunk)
	for _, h := range hunksToRevert {
		byFile[h.File] = append(byFile[h.File], h)
	}

	reverted := 0
	for file, hunks := range byFile {
		sort.Slice(hunks, func(i, j int) bool { return hunks[i].NewStart > hunks[j].NewStart })

		path := file
		if branch.RepoRoot != "" {
			path = branch.RepoRoot + string(os.PathSeparator) + file
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return reverted, fmt.Errorf("reading %s: %w", path, err)
		}
		lines := strings.Split(string(data), "\n")

		for _, h := range hunks {
			lines = revertHunkLineByLine(h, lines)
			reverted++
		}

		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
			return reverted, fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return reverted, nil
}

// revertHunkLineByLine reconstructs the hunk's NewStart..NewStart+NewCount
// range by replaying its body: context lines pass through unchanged,
// removed lines are restored, added lines are dropped.
func revertHunkLineByLine(h DiffHunk, lines []string) []string {
	startIdx := h.NewStart - 1
	if startIdx < 0 {
		startIdx = 0
	}
	var reconstructed []string
	for _, bl := range strings.Split(h.Content, "\n") {
		if bl == "" {
			continue
		}
		switch bl[0] {
		case ' ':
			reconstructed = append(reconstructed, bl[1:])
		case '-':
			reconstructed = append(reconstructed, bl[1:])
		case '+':
			// dropped: this is the edit being reverted
		}
	}
	endIdx := startIdx + h.NewCount
	if endIdx > len(lines) {
		endIdx = len(lines)
	}
	replaced := append([]string{}, lines[:startIdx]...)
	replaced = append(replaced, reconstructed...)
	replaced = append(replaced, lines[endIdx:]...)
	return replaced
}
