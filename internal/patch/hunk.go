package patch

import "strconv"

// Context lines kept on each side of an edit. Models often pad hunks with
// long, partially hallucinated context; a short anchor is enough to locate
// the edit and less likely to defeat matching.
const (
	maxLeadingContext  = 3
	maxTrailingContext = 3
)

// Hunk is one parsed unified diff edit operation: an expected location, the
// lines expected in the original file there, and the lines that should exist
// after the edit.
type Hunk struct {
	// StartOriginal and StartNew are the 1-based line numbers from the hunk
	// header, or 0 when the header carried no counts ("@@ ... @@").
	StartOriginal int
	StartNew      int

	// Match holds the lines expected in the original file (context plus
	// removed lines, in original order, marker characters stripped).
	Match []string
	// Replace holds the lines that should exist after the edit (context
	// plus added lines).
	Replace []string

	// Filename is the target path from the nearest preceding ---/+++
	// marker pair, "" if no marker preceded this hunk.
	Filename string
	// IsNewFile is set when the originating --- marker was a null device,
	// meaning the +++ path must be created.
	IsNewFile bool
}

// newHunk parses a hunk header and body into a Hunk.
//
// Body lines with no recognized prefix are treated as context lines that
// lost their leading space and go to both Match and Replace. An empty body
// line truncates the hunk: the format has no way to express one, so
// everything after it is untrustworthy.
func newHunk(header string, body []string, filename string, isNewFile bool) *Hunk {
	h := &Hunk{Filename: filename, IsNewFile: isNewFile}

	if m := hunkHeaderRegex.FindStringSubmatch(header); m != nil {
		h.StartOriginal, _ = strconv.Atoi(m[1])
		h.StartNew, _ = strconv.Atoi(m[3])
	}

	for _, line := range body {
		if line == "" {
			break
		}
		switch line[0] {
		case '+':
			h.Replace = append(h.Replace, line[1:])
		case '-':
			h.Match = append(h.Match, line[1:])
		case ' ', '\t':
			h.Match = append(h.Match, line[1:])
			h.Replace = append(h.Replace, line[1:])
		default:
			// Missing context marker, keep the line as-is on both sides.
			h.Match = append(h.Match, line)
			h.Replace = append(h.Replace, line)
		}
	}

	h.trimContext()
	return h
}

// trimContext drops pure-context lines beyond the caps from the front and
// back of Match/Replace pairwise, keeping only the edited lines plus a short
// anchor on each side.
func (h *Hunk) trimContext() {
	n := min(len(h.Match), len(h.Replace))

	leading := 0
	for leading < n && h.Match[leading] == h.Replace[leading] {
		leading++
	}
	if leading > maxLeadingContext {
		trim := leading - maxLeadingContext
		h.Match = h.Match[trim:]
		h.Replace = h.Replace[trim:]
	}

	if len(h.Match) == 0 || len(h.Replace) == 0 {
		return
	}

	n = min(len(h.Match), len(h.Replace))
	trailing := 0
	for trailing < n && h.Match[len(h.Match)-1-trailing] == h.Replace[len(h.Replace)-1-trailing] {
		trailing++
	}
	if trailing > maxTrailingContext {
		trim := trailing - maxTrailingContext
		h.Match = h.Match[:len(h.Match)-trim]
		h.Replace = h.Replace[:len(h.Replace)-trim]
	}
}

// MatchCount returns the number of lines the hunk expects in the original.
func (h *Hunk) MatchCount() int { return len(h.Match) }

// ReplaceCount returns the number of lines the hunk produces.
func (h *Hunk) ReplaceCount() int { return len(h.Replace) }

// Empty reports whether the hunk has nothing to anchor on. An empty hunk
// whose markers indicate a new file is the "create empty file" hunk.
func (h *Hunk) Empty() bool { return h.MatchCount() == 0 }
