package patch

// PatchCode applies the hunks in patchLines to code and returns the patched
// lines. File markers in the diff are ignored: this entry point assumes the
// caller already knows which buffer the diff targets.
//
// Hunks are applied strictly in diff order, each located by content against
// the buffer as mutated by the hunks before it. The call is transactional:
// if any hunk cannot be located, the original code slice is returned
// unmodified with ok false. "Did not apply" is an expected, retryable
// condition, not an error.
func PatchCode(code []string, patchLines []string, fuzziness int) (result []string, ok bool) {
	return applyHunks(code, ExtractHunks(patchLines), fuzziness)
}

// applyHunks applies already-extracted hunks to code, committing only when
// every hunk lands. Empty hunks carry nothing to anchor on and are skipped.
func applyHunks(code []string, hunks []*Hunk, fuzziness int) ([]string, bool) {
	out := make([]string, len(code))
	copy(out, code)

	for _, h := range hunks {
		if h.Empty() {
			continue
		}
		idx, found := h.MatchCode(out, fuzziness)
		if !found {
			return code, false
		}
		out = splice(out, idx, h.MatchCount(), h.Replace)
	}
	return out, true
}

// splice replaces lines[at:at+del] with ins.
func splice(lines []string, at, del int, ins []string) []string {
	out := make([]string, 0, len(lines)-del+len(ins))
	out = append(out, lines[:at]...)
	out = append(out, ins...)
	out = append(out, lines[at+del:]...)
	return out
}
