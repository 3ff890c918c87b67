package patch

import "strings"

// extractState tracks where the hunk scanner is in the diff text.
type extractState int

const (
	// stateSeeking: before any marker, or between files.
	stateSeeking extractState = iota
	// stateFileHeader: just saw a ---/+++ marker, waiting for @@.
	stateFileHeader
	// stateInHunk: collecting body lines for an open hunk.
	stateInHunk
)

// ExtractHunks scans unified diff text and returns its hunks in order.
//
// The scanner is a small state machine. File markers (---/+++) update the
// current filename and new-file flag; each @@ header opens a hunk whose body
// closes on the next @@, the next file marker, or end of input. Markers may
// be missing or duplicated; hunks seen before any file marker keep
// Filename "" and are preserved so the caller can decide how to treat them.
func ExtractHunks(lines []string) []*Hunk {
	var hunks []*Hunk

	state := stateSeeking
	filename := ""
	isNewFile := false
	header := ""
	var body []string

	closeHunk := func() {
		if state == stateInHunk {
			hunks = append(hunks, newHunk(header, body, filename, isNewFile))
		}
		body = nil
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"):
			closeHunk()
			if path, null := parseFileMarker(line[3:]); null {
				// No original file: the following hunks create one.
				isNewFile = true
			} else if path != "" {
				filename = path
				isNewFile = false
			}
			state = stateFileHeader

		case strings.HasPrefix(line, "+++"):
			closeHunk()
			if path, null := parseFileMarker(line[3:]); !null && path != "" {
				filename = path
			}
			state = stateFileHeader

		case strings.HasPrefix(line, "@@"):
			closeHunk()
			header = line
			state = stateInHunk

		default:
			if state == stateInHunk {
				body = append(body, line)
			}
		}
	}
	closeHunk()

	return hunks
}

// parseFileMarker extracts the path from the remainder of a ---/+++ marker
// line. It tolerates the conventional a/ and b/ prefixes and a trailing
// timestamp after a tab. null is true for /dev/null style markers.
func parseFileMarker(rest string) (path string, null bool) {
	rest = strings.TrimSpace(rest)
	if i := strings.IndexByte(rest, '\t'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	if rest == "/dev/null" || rest == "a/dev/null" || rest == "b/dev/null" {
		return "", true
	}
	if strings.HasPrefix(rest, "a/") || strings.HasPrefix(rest, "b/") {
		rest = rest[2:]
	}
	return rest, false
}
