package diagnostic

import (
	"regexp"
	"strings"
)

// ansiPattern matches ANSI escape sequences (CSI and simple two-byte forms).
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\([A-Za-z]`)

// boxDrawingPattern matches the caret/box-drawing runs tools use to
// underline a source span (e.g. rustc's "^^^" and "───" carets).
var boxDrawingPattern = regexp.MustCompile(`[\x{2500}-\x{257F}^~]{2,}`)

// stripNoise removes ANSI escapes and box-drawing caret runs, and collapses
// repeated blank lines, matching the "minimal tuple" contract in spec §4.1.
func stripNoise(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	s = boxDrawingPattern.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

// truncate returns s limited to n bytes, matching the validator chain's
// "first 500 bytes of stderr" convention for noisy tool output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
