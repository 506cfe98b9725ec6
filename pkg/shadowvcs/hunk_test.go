package shadowvcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/good.py b/good.py
index 1111111..2222222 100644
--- a/good.py
+++ b/good.py
@@ -1,1 +1,1 @@
-x = 42
+x = 42 * 2
diff --git a/bad.py b/bad.py
index 3333333..4444444 100644
--- a/bad.py
+++ b/bad.py
@@ -1,1 +1,1 @@
-msg = "hello"
+msg = "hello
`

func TestParseDiff_MultiFile(t *testing.T) {
	hunks := ParseDiff(sampleDiff)
	require.Len(t, hunks, 2)

	assert.Equal(t, "good.py", hunks[0].File)
	assert.Equal(t, 1, hunks[0].OldStart)
	assert.Equal(t, 1, hunks[0].OldCount)
	assert.Equal(t, 1, hunks[0].NewStart)
	assert.Equal(t, 1, hunks[0].NewCount)
	assert.False(t, hunks[0].IsAddition())
	assert.False(t, hunks[0].IsDeletion())

	assert.Equal(t, "bad.py", hunks[1].File)
	removed, added := hunks[1].LinesChanged()
	assert.Equal(t, []string{`msg = "hello"`}, removed)
	assert.Equal(t, []string{`msg = "hello`}, added)
}

func TestParseDiff_EmptyInput(t *testing.T) {
	assert.Empty(t, ParseDiff(""))
}

func TestParseDiff_FileHeaderOnlyNoHunkBody(t *testing.T) {
	diff := "diff --git a/x.go b/x.go\nindex 111..222 100644\n"
	assert.Empty(t, ParseDiff(diff))
}

func TestParseDiff_MissingCountsDefaultToOne(t *testing.T) {
	diff := "diff --git a/a b/a\n@@ -5 +5 @@\n-old\n+new\n"
	hunks := ParseDiff(diff)
	require.Len(t, hunks, 1)
	assert.Equal(t, 1, hunks[0].OldCount)
	assert.Equal(t, 1, hunks[0].NewCount)
}

func TestParseDiff_BlankLineBeforeNextFileHeaderTolerated(t *testing.T) {
	diff := "diff --git a/a b/a\n@@ -1,1 +1,1 @@\n-old\n+new\n\ndiff --git a/b b/b\n@@ -1,1 +1,1 @@\n-foo\n+bar\n"
	hunks := ParseDiff(diff)
	require.Len(t, hunks, 2)
	assert.Equal(t, "a", hunks[0].File)
	assert.Equal(t, "b", hunks[1].File)
}

func TestParseDiff_Stable(t *testing.T) {
	first := ParseDiff(sampleDiff)
	second := ParseDiff(sampleDiff)
	assert.Equal(t, first, second)
}

func TestRollbackHunks_PartialRevertPreservesOtherFile(t *testing.T) {
	dir := t.TempDir()
	goodPath := filepath.Join(dir, "good.py")
	badPath := filepath.Join(dir, "bad.py")
	require.NoError(t, os.WriteFile(goodPath, []byte("x = 42 * 2\n"), 0o644))
	require.NoError(t, os.WriteFile(badPath, []byte("msg = \"hello\n"), 0o644))

	branch := &ShadowBranch{Name: "shadow/test", RepoRoot: dir}
	hunks := ParseDiff(sampleDiff)

	var badHunks []DiffHunk
	for _, h := range hunks {
		if h.File == "bad.py" {
			badHunks = append(badHunks, h)
		}
	}

	e := New(dir)
	n, err := e.RollbackHunks(branch, badHunks)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	badContent, err := os.ReadFile(badPath)
	require.NoError(t, err)
	assert.Equal(t, "msg = \"hello\"\n", string(badContent))

	goodContent, err := os.ReadFile(goodPath)
	require.NoError(t, err)
	assert.Equal(t, "x = 42 * 2\n", string(goodContent))
}

func TestRollbackHunks_InterleavedContextUsesLineByLineWalk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "interleaved.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\nX2\nB\nY2\nC\n"), 0o644))

	diff := `diff --git a/interleaved.txt b/interleaved.txt
@@ -1,5 +1,5 @@
 A
-X1
+X2
 B
-Y1
+Y2
 C
`
	hunks := ParseDiff(diff)
	require.Len(t, hunks, 1)
	assert.True(t, hasInterleavedContext(hunks[0]))

	branch := &ShadowBranch{Name: "shadow/test", RepoRoot: dir}
	e := New(dir)
	n, err := e.RollbackHunks(branch, hunks)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A blind slice-replace would drop the context lines (A, B, C) and leave
	// just the removed lines; the line-by-line walk preserves them.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\nX1\nB\nY1\nC\n", string(content))
}

func TestRollbackHunks_MultipleHunksSameFileBottomUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.txt")
	// Final (post-edit) content has two edited lines.
	require.NoError(t, os.WriteFile(path, []byte("A\nCHANGED1\nB\nCHANGED2\nC\n"), 0o644))

	diff := `diff --git a/multi.txt b/multi.txt
@@ -2,1 +2,1 @@
-ORIG1
+CHANGED1
@@ -4,1 +4,1 @@
-ORIG2
+CHANGED2
`
	hunks := ParseDiff(diff)
	require.Len(t, hunks, 2)

	branch := &ShadowBranch{Name: "shadow/test", RepoRoot: dir}
	e := New(dir)
	n, err := e.RollbackHunks(branch, hunks)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\nORIG1\nB\nORIG2\nC\n", string(content))
}
