package patch

import (
	"reflect"
	"testing"
)

func TestPatchCode_SingleHunk(t *testing.T) {
	code := []string{"line1", "line2", "line3"}
	patch := []string{"@@ -2,1 +2,1 @@", "-line2", "+line2_modified"}

	got, ok := PatchCode(code, patch, FuzzExact)
	if !ok {
		t.Fatal("patch should apply")
	}
	want := []string{"line1", "line2_modified", "line3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %q, want %q", got, want)
	}
	// Input buffer stays untouched; the result is a new slice.
	if !reflect.DeepEqual(code, []string{"line1", "line2", "line3"}) {
		t.Errorf("input mutated: %q", code)
	}
}

func TestPatchCode_NoMatchLeavesCodeUnchanged(t *testing.T) {
	code := []string{"line1", "line2", "line3"}
	patch := []string{"@@ -1,1 +1,1 @@", "-never_present", "+whatever"}

	got, ok := PatchCode(code, patch, FuzzIgnoreComments)
	if ok {
		t.Fatal("patch should not apply")
	}
	if !reflect.DeepEqual(got, code) {
		t.Errorf("failed patch must return the original lines, got %q", got)
	}
}

func TestPatchCode_MultiHunkSequential(t *testing.T) {
	code := []string{"a", "b", "c", "d", "e"}
	patch := []string{
		"@@ -2,1 +2,1 @@",
		"-b",
		"+B",
		"@@ -4,1 +4,2 @@",
		"-d",
		"+d1",
		"+d2",
	}

	got, ok := PatchCode(code, patch, FuzzExact)
	if !ok {
		t.Fatal("patch should apply")
	}
	want := []string{"a", "B", "c", "d1", "d2", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestPatchCode_MultiHunkRollback(t *testing.T) {
	// Second hunk cannot be located: the first must be rolled back and the
	// original returned (all-or-nothing per call).
	code := []string{"a", "b", "c"}
	patch := []string{
		"@@ -1,1 +1,1 @@",
		"-a",
		"+A",
		"@@ -3,1 +3,1 @@",
		"-not_there",
		"+nope",
	}

	got, ok := PatchCode(code, patch, FuzzExact)
	if ok {
		t.Fatal("patch should fail on second hunk")
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("partial application leaked: %q", got)
	}
}

func TestPatchCode_LaterHunkSeesEarlierEdit(t *testing.T) {
	// The second hunk's context only exists after the first applied.
	code := []string{"start", "middle", "end"}
	patch := []string{
		"@@ -2,1 +2,1 @@",
		"-middle",
		"+center",
		"@@ -2,1 +2,2 @@",
		" center",
		"+inserted",
	}

	got, ok := PatchCode(code, patch, FuzzExact)
	if !ok {
		t.Fatal("patch should apply")
	}
	want := []string{"start", "center", "inserted", "end"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestPatchCode_NotIdempotent(t *testing.T) {
	code := []string{"line1", "line2", "line3"}
	patch := []string{"@@ -2,1 +2,1 @@", "-line2", "+line2_modified"}

	once, ok := PatchCode(code, patch, FuzzExact)
	if !ok {
		t.Fatal("first application should succeed")
	}
	// The match text no longer exists, so re-applying must fail rather
	// than silently re-matching.
	twice, ok := PatchCode(once, patch, FuzzExact)
	if ok {
		t.Fatal("second application should fail")
	}
	if !reflect.DeepEqual(twice, once) {
		t.Errorf("failed re-application changed the buffer: %q", twice)
	}
}

func TestPatchCode_NoCountsDiff(t *testing.T) {
	code := []string{"one", "two", "three"}
	patch := []string{
		"@@ ... @@",
		" two",
		"-three",
		"+THREE",
	}

	got, ok := PatchCode(code, patch, FuzzExact)
	if !ok {
		t.Fatal("placeholder-header patch should apply by content")
	}
	want := []string{"one", "two", "THREE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestPatchCode_IgnoresFileMarkers(t *testing.T) {
	// Single-file entry point: markers naming some other file are metadata
	// only, the diff still targets this buffer.
	code := []string{"x"}
	patch := []string{
		"--- a/unrelated.py",
		"+++ b/unrelated.py",
		"@@ -1,1 +1,1 @@",
		"-x",
		"+y",
	}

	got, ok := PatchCode(code, patch, FuzzExact)
	if !ok || got[0] != "y" {
		t.Errorf("PatchCode() = (%q, %v), want ([y], true)", got, ok)
	}
}

func TestPatchCode_EmptyHunksSkipped(t *testing.T) {
	code := []string{"a"}
	patch := []string{
		"@@ -0,0 +0,0 @@",
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
	}

	got, ok := PatchCode(code, patch, FuzzExact)
	if !ok || got[0] != "b" {
		t.Errorf("PatchCode() = (%q, %v), want ([b], true)", got, ok)
	}
}

func TestPatchCode_FuzzyEscalation(t *testing.T) {
	code := []string{"value = 42  # the answer"}
	patch := []string{"@@ -1,1 +1,1 @@", "-value = 42", "+value = 43"}

	if _, ok := PatchCode(code, patch, FuzzExact); ok {
		t.Fatal("exact application should fail against comment drift")
	}
	got, ok := PatchCode(code, patch, FuzzIgnoreComments)
	if !ok {
		t.Fatal("fuzzy application should succeed")
	}
	if got[0] != "value = 43" {
		t.Errorf("result = %q, want value = 43", got[0])
	}
}
