// Package patch applies LLM-emitted unified diffs to files.
//
// Model-produced diffs are frequently malformed: wrong line counts in hunk
// headers, context lines missing their leading space, hallucinated or
// truncated context, inconsistent file markers. The engine parses such diffs
// into hunks, locates each hunk in the target buffer by content (the header
// line numbers are advisory only), and applies the edits either to a single
// in-memory buffer (PatchCode) or to files under a project root
// (ProjectPatcher).
package patch

import "regexp"

// hunkHeaderRegex matches a normal unified diff hunk header like
// "@@ -12,3 +14,4 @@". The counts are optional ("@@ -12 +14 @@").
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// hunkHeaderNoCountsRegex matches the placeholder header form "@@ ... @@"
// that models emit when they did not compute real line numbers.
var hunkHeaderNoCountsRegex = regexp.MustCompile(`^@@ \.\.\. @@`)

// IsUnifiedDiff reports whether the lines contain at least one unified diff
// hunk header, in either the counted or the placeholder form.
func IsUnifiedDiff(lines []string) bool {
	for _, line := range lines {
		if hunkHeaderRegex.MatchString(line) || hunkHeaderNoCountsRegex.MatchString(line) {
			return true
		}
	}
	return false
}

// IsUnifiedDiffNoCounts reports whether the lines contain a placeholder hunk
// header without line counts. Such diffs must be located purely by content
// matching since their declared offsets are meaningless.
func IsUnifiedDiffNoCounts(lines []string) bool {
	for _, line := range lines {
		if hunkHeaderNoCountsRegex.MatchString(line) {
			return true
		}
	}
	return false
}
