// Package project gives the agent a file-level view of the workspace:
// listing, loading, creating and searching files, always confined to the
// workspace root.
package project

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/forgeloop/forgeloop/internal/workspace"
)

// skipDirs are directory names never descended into while walking.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
}

// FileInfo describes one workspace file.
type FileInfo struct {
	Path  string // relative to the workspace root
	Size  int64
	Lines int
}

// Match is one search hit.
type Match struct {
	Path string // relative to the workspace root
	Line int    // 1-based
	Text string
}

// SearchOptions controls SearchFiles behavior.
type SearchOptions struct {
	Regex         bool   // treat the pattern as a regular expression
	CaseSensitive bool
	FileGlob      string // e.g. "*.go"; empty matches all files
	MaxMatches    int    // 0 means no limit
}

// Folder is a workspace-rooted file service. All paths passed to its
// methods are resolved against Root and rejected when they escape it.
type Folder struct {
	Root string
}

// New returns a Folder rooted at root.
func New(root string) *Folder {
	return &Folder{Root: root}
}

// resolve turns path into an absolute path inside the workspace.
func (f *Folder) resolve(path string) (string, error) {
	abs, outside, err := workspace.NormalizeAndValidatePath(f.Root, path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	if outside {
		return "", fmt.Errorf("path %q escapes the workspace", path)
	}
	return abs, nil
}

// ListFiles walks the workspace and returns files whose base name matches
// the glob pattern. An empty pattern lists everything. Hidden directories
// and common vendor trees are skipped.
func (f *Folder) ListFiles(pattern string) ([]FileInfo, error) {
	var out []FileInfo
	err := filepath.WalkDir(f.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != f.Root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if pattern != "" {
			matched, err := filepath.Match(pattern, d.Name())
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if !matched {
				return nil
			}
		}
		rel, err := filepath.Rel(f.Root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		lines, err := countLines(path)
		if err != nil {
			return err
		}
		out = append(out, FileInfo{Path: rel, Size: info.Size(), Lines: lines})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFile returns the full content of a workspace file.
func (f *Folder) LoadFile(path string) (string, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CreateFile writes content to path, creating parent directories as
// needed. Existing files are overwritten.
func (f *Folder) CreateFile(path, content string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	return os.WriteFile(abs, []byte(content), 0644)
}

// RemoveFile deletes a workspace file.
func (f *Folder) RemoveFile(path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(abs)
}

// LineRange returns lines start..end of a file, 1-based and inclusive.
// The range is clamped to the file; an empty slice means the range fell
// entirely past the end.
func (f *Folder) LineRange(path string, start, end int) ([]string, error) {
	if start < 1 {
		return nil, fmt.Errorf("start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("end %d before start %d", end, start)
	}
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var out []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum < start {
			continue
		}
		if lineNum > end {
			break
		}
		out = append(out, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchFiles scans workspace files for the pattern and returns the
// matching lines. Plain patterns are substring searches; set opts.Regex
// for regular expressions.
func (f *Folder) SearchFiles(pattern string, opts SearchOptions) ([]Match, error) {
	var re *regexp.Regexp
	var needle string
	if opts.Regex {
		expr := pattern
		if !opts.CaseSensitive {
			expr = "(?i)" + expr
		}
		var err error
		re, err = regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("bad regex %q: %w", pattern, err)
		}
	} else {
		needle = pattern
		if !opts.CaseSensitive {
			needle = strings.ToLower(needle)
		}
	}

	matchLine := func(line string) bool {
		if re != nil {
			return re.MatchString(line)
		}
		if opts.CaseSensitive {
			return strings.Contains(line, needle)
		}
		return strings.Contains(strings.ToLower(line), needle)
	}

	var out []Match
	err := filepath.WalkDir(f.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != f.Root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.FileGlob != "" {
			matched, err := filepath.Match(opts.FileGlob, d.Name())
			if err != nil {
				return fmt.Errorf("bad file glob %q: %w", opts.FileGlob, err)
			}
			if !matched {
				return nil
			}
		}
		rel, err := filepath.Rel(f.Root, path)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()
			if !matchLine(line) {
				continue
			}
			out = append(out, Match{Path: rel, Line: lineNum, Text: line})
			if opts.MaxMatches > 0 && len(out) >= opts.MaxMatches {
				return filepath.SkipAll
			}
		}
		return scanner.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// countLines counts newline-terminated lines, counting a trailing partial
// line as one.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	n := strings.Count(string(data), "\n")
	if data[len(data)-1] != '\n' {
		n++
	}
	return n, nil
}
