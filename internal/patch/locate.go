package patch

import "strings"

// Fuzziness levels for locating hunks.
const (
	// FuzzExact requires lines to match byte for byte.
	FuzzExact = 0
	// FuzzIgnoreComments also accepts a match when the lines agree after
	// stripping a trailing comment and trailing whitespace. Models often
	// reproduce a code line without its inline comment, or vice versa.
	FuzzIgnoreComments = 1
)

// MatchesCode reports whether the hunk's match lines align with code at
// index under the given fuzziness.
func (h *Hunk) MatchesCode(code []string, index, fuzziness int) bool {
	if index < 0 || index+len(h.Match) > len(code) {
		return false
	}
	for i, want := range h.Match {
		got := code[index+i]
		if fuzziness >= FuzzIgnoreComments {
			got = trimTrailingComment(got)
			want = trimTrailingComment(want)
		}
		if got != want {
			return false
		}
	}
	return true
}

// MatchCode returns the index where the hunk's match lines align with code,
// searching outward in increasing distance from the hunk's declared start
// line (or from 0 when the header carried no counts). Prior hunks shift line
// numbers and model-declared numbers are frequently wrong even on the first
// hunk, so the declared start is only a search origin, never trusted.
func (h *Hunk) MatchCode(code []string, fuzziness int) (int, bool) {
	origin := 0
	if h.StartOriginal > 0 {
		origin = h.StartOriginal - 1
	}
	if origin > len(code) {
		origin = len(code)
	}

	for dist := 0; dist <= len(code); dist++ {
		if i := origin + dist; h.MatchesCode(code, i, fuzziness) {
			return i, true
		}
		if dist == 0 {
			continue
		}
		if i := origin - dist; i >= 0 && h.MatchesCode(code, i, fuzziness) {
			return i, true
		}
	}
	return 0, false
}

// trimTrailingComment removes an inline comment ("#" or "//") that is not
// inside a quoted string, then trailing whitespace.
func trimTrailingComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '#':
			return strings.TrimRight(line[:i], " \t")
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return strings.TrimRight(line, " \t")
}
