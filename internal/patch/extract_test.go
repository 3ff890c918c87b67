package patch

import (
	"reflect"
	"testing"
)

func TestExtractHunks_SingleFile(t *testing.T) {
	lines := []string{
		"--- a/src/main.py",
		"+++ b/src/main.py",
		"@@ -1,3 +1,3 @@",
		" import os",
		"-print('old')",
		"+print('new')",
		"@@ -10,2 +10,2 @@",
		"-x = 1",
		"+x = 2",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(hunks))
	}
	for i, h := range hunks {
		if h.Filename != "src/main.py" {
			t.Errorf("hunk %d filename = %q, want src/main.py", i, h.Filename)
		}
		if h.IsNewFile {
			t.Errorf("hunk %d unexpectedly flagged new file", i)
		}
	}
	if hunks[1].StartOriginal != 10 {
		t.Errorf("second hunk StartOriginal = %d, want 10", hunks[1].StartOriginal)
	}
}

func TestExtractHunks_MultiFile(t *testing.T) {
	lines := []string{
		"--- a/one.py",
		"+++ b/one.py",
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
		"--- a/two.py",
		"+++ b/two.py",
		"@@ -1,1 +1,1 @@",
		"-c",
		"+d",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(hunks))
	}
	if hunks[0].Filename != "one.py" || hunks[1].Filename != "two.py" {
		t.Errorf("filenames = %q, %q", hunks[0].Filename, hunks[1].Filename)
	}
}

func TestExtractHunks_NewFile(t *testing.T) {
	lines := []string{
		"--- /dev/null",
		"+++ b/pkg/created.py",
		"@@ -0,0 +1,2 @@",
		"+line one",
		"+line two",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	h := hunks[0]
	if h.Filename != "pkg/created.py" {
		t.Errorf("filename = %q, want pkg/created.py", h.Filename)
	}
	if !h.IsNewFile {
		t.Error("hunk should be flagged as new file")
	}
	if !reflect.DeepEqual(h.Replace, []string{"line one", "line two"}) {
		t.Errorf("Replace = %q", h.Replace)
	}
	if h.MatchCount() != 0 {
		t.Errorf("MatchCount() = %d, want 0", h.MatchCount())
	}
}

func TestExtractHunks_NewFileFlagResets(t *testing.T) {
	lines := []string{
		"--- /dev/null",
		"+++ b/new.py",
		"@@ -0,0 +1,1 @@",
		"+created",
		"--- a/old.py",
		"+++ b/old.py",
		"@@ -1,1 +1,1 @@",
		"-x",
		"+y",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(hunks))
	}
	if !hunks[0].IsNewFile {
		t.Error("first hunk should be new-file")
	}
	if hunks[1].IsNewFile {
		t.Error("second hunk should not inherit the new-file flag")
	}
	if hunks[1].Filename != "old.py" {
		t.Errorf("second hunk filename = %q, want old.py", hunks[1].Filename)
	}
}

func TestExtractHunks_NoFileMarkers(t *testing.T) {
	lines := []string{
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	if hunks[0].Filename != "" {
		t.Errorf("filename = %q, want empty", hunks[0].Filename)
	}
}

func TestExtractHunks_MarkerClosesOpenHunk(t *testing.T) {
	// A file marker ends the running hunk body; body lines after it belong
	// to the next hunk.
	lines := []string{
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
		"--- a/next.py",
		"+++ b/next.py",
		"@@ -5,1 +5,1 @@",
		"-c",
		"+d",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(hunks))
	}
	if got := hunks[0].MatchCount(); got != 1 {
		t.Errorf("first hunk MatchCount() = %d, want 1", got)
	}
	if hunks[1].Filename != "next.py" {
		t.Errorf("second hunk filename = %q, want next.py", hunks[1].Filename)
	}
}

func TestExtractHunks_PathsWithoutPrefix(t *testing.T) {
	lines := []string{
		"--- main.py",
		"+++ main.py",
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 1 || hunks[0].Filename != "main.py" {
		t.Fatalf("hunks = %+v, want one hunk for main.py", hunks)
	}
}

func TestExtractHunks_TimestampStripped(t *testing.T) {
	lines := []string{
		"--- a/main.py\t2025-01-01 00:00:00",
		"+++ b/main.py\t2025-01-02 00:00:00",
		"@@ -1,1 +1,1 @@",
		"-a",
		"+b",
	}

	hunks := ExtractHunks(lines)
	if len(hunks) != 1 || hunks[0].Filename != "main.py" {
		t.Fatalf("filename = %q, want main.py", hunks[0].Filename)
	}
}

func TestExtractHunks_Empty(t *testing.T) {
	if got := ExtractHunks(nil); len(got) != 0 {
		t.Errorf("ExtractHunks(nil) = %v, want none", got)
	}
	if got := ExtractHunks([]string{"just text", "no markers"}); len(got) != 0 {
		t.Errorf("got %d hunks from plain text, want 0", len(got))
	}
}
