package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeAndValidatePath(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	root := filepath.Join(cwd, "testworkspace")

	tests := []struct {
		name        string
		inputPath   string
		wantPath    string
		wantOutside bool
	}{
		{
			name:      "relative path within workspace",
			inputPath: "foo/bar.txt",
			wantPath:  filepath.Join(root, "foo/bar.txt"),
		},
		{
			name:      "absolute path within workspace",
			inputPath: filepath.Join(root, "file.txt"),
			wantPath:  filepath.Join(root, "file.txt"),
		},
		{
			name:        "path with .. escaping workspace",
			inputPath:   "../../etc/passwd",
			wantPath:    filepath.Clean(filepath.Join(root, "../../etc/passwd")),
			wantOutside: true,
		},
		{
			name:        "absolute path outside workspace",
			inputPath:   "/etc/passwd",
			wantPath:    "/etc/passwd",
			wantOutside: true,
		},
		{
			name:      "path with . normalizes",
			inputPath: "./foo/./bar.txt",
			wantPath:  filepath.Join(root, "foo/bar.txt"),
		},
		{
			name:      "current directory",
			inputPath: ".",
			wantPath:  root,
		},
		{
			name:      "dotdot staying inside",
			inputPath: "sub/../file.txt",
			wantPath:  filepath.Join(root, "file.txt"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPath, outside, err := NormalizeAndValidatePath(root, tt.inputPath)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if outside != tt.wantOutside {
				t.Errorf("outside = %v, want %v", outside, tt.wantOutside)
			}
		})
	}
}

func TestNormalizeAndValidatePath_HomeDirExpansion(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot get home directory")
	}

	gotPath, outside, err := NormalizeAndValidatePath("/workspace", "~/test.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(homeDir, "test.txt"); gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if !outside {
		t.Error("home dir should be outside workspace")
	}
}
