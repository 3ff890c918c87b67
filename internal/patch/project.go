package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/forgeloop/forgeloop/internal/workspace"
)

// Failure kinds for per-file patch outcomes. Every failed file group is
// attributable to exactly one of these.
const (
	FailSecurity   = "security"   // resolved path escapes the project root
	FailLocation   = "location"   // a hunk's match lines were not found
	FailFilesystem = "filesystem" // missing file, permission denied, I/O error
)

// FileResult is the outcome of patching one file group.
type FileResult struct {
	Path    string // path as it appeared in the diff
	Created bool   // file did not exist and was created
	Diff    string // rendered diff of the applied change, for display only
	Kind    string // failure kind, "" on success
	Err     error  // failure detail, nil on success
}

// ProjectPatcher applies multi-file diffs to files under a project root.
// Every target path must resolve inside Root; hunks naming paths outside it
// are rejected without touching the filesystem.
//
// The patcher assumes exclusive access to the files it touches for the
// duration of a call. There is no locking here; the caller serializes runs
// (see workspace.AcquireLock).
type ProjectPatcher struct {
	Root      string
	Fuzziness int
	Log       *zap.Logger

	// DefaultFile, when set, is the target for hunks that carry no file
	// marker. When empty such hunks are skipped.
	DefaultFile string
}

// NewProjectPatcher returns a patcher rooted at root. A nil logger disables
// diagnostics.
func NewProjectPatcher(root string, fuzziness int, log *zap.Logger) *ProjectPatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectPatcher{Root: root, Fuzziness: fuzziness, Log: log}
}

// Apply extracts all hunks from patchLines and applies them to the files
// they name. It returns true iff every file group succeeded. Files that
// succeed are persisted even when other files in the same patch fail; there
// is no cross-file transaction.
func (p *ProjectPatcher) Apply(patchLines []string) bool {
	ok := true
	for _, res := range p.ApplyFiles(patchLines) {
		if res.Err != nil {
			ok = false
		}
	}
	return ok
}

// ApplyFiles is Apply with per-file outcomes. Hunks that carry no filename
// go to DefaultFile when one is set; otherwise they are skipped without
// counting as failures, since a diff that never names its target cannot be
// safely applied anywhere.
func (p *ProjectPatcher) ApplyFiles(patchLines []string) []FileResult {
	hunks := ExtractHunks(patchLines)

	// Group by filename in first-seen order.
	groups := make(map[string][]*Hunk)
	var order []string
	skipped := 0
	for _, h := range hunks {
		name := h.Filename
		if name == "" {
			name = p.DefaultFile
		}
		if name == "" {
			skipped++
			continue
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], h)
	}
	if skipped > 0 {
		p.Log.Warn("skipping hunks with no file marker", zap.Int("count", skipped))
	}

	results := make([]FileResult, 0, len(order))
	for _, name := range order {
		res := p.applyGroup(name, groups[name])
		if res.Err != nil {
			p.Log.Warn("file patch failed",
				zap.String("file", name),
				zap.String("kind", res.Kind),
				zap.Error(res.Err),
			)
		} else {
			p.Log.Info("file patched",
				zap.String("file", name),
				zap.Int("hunks", len(groups[name])),
				zap.Bool("created", res.Created),
			)
		}
		results = append(results, res)
	}
	return results
}

// applyGroup applies all hunks for one file. On any failure the on-disk file
// is left untouched.
func (p *ProjectPatcher) applyGroup(name string, hunks []*Hunk) FileResult {
	res := FileResult{Path: name}

	abs, outside, err := workspace.NormalizeAndValidatePath(p.Root, name)
	if err != nil {
		res.Kind = FailFilesystem
		res.Err = fmt.Errorf("resolve %s: %w", name, err)
		return res
	}
	if outside {
		res.Kind = FailSecurity
		res.Err = fmt.Errorf("path %s resolves outside project root", name)
		return res
	}

	// A group is a file creation only when every hunk says so; a single
	// update hunk means the model expects the file to exist.
	isNew := true
	for _, h := range hunks {
		if !h.IsNewFile {
			isNew = false
			break
		}
	}

	var lines []string
	oldContent := ""
	if isNew {
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			res.Kind = FailFilesystem
			res.Err = fmt.Errorf("create parent directories for %s: %w", name, err)
			return res
		}
	} else {
		data, err := os.ReadFile(abs)
		if err != nil {
			res.Kind = FailFilesystem
			res.Err = fmt.Errorf("read %s: %w", name, err)
			return res
		}
		oldContent = string(data)
		lines = SplitLines(oldContent)
	}

	patched, ok := applyHunks(lines, hunks, p.Fuzziness)
	if !ok {
		res.Kind = FailLocation
		res.Err = fmt.Errorf("hunk match lines not found in %s", name)
		return res
	}

	newContent := JoinLines(patched)
	if err := os.WriteFile(abs, []byte(newContent), 0644); err != nil {
		res.Kind = FailFilesystem
		res.Err = fmt.Errorf("write %s: %w", name, err)
		return res
	}

	res.Created = isNew
	res.Diff = RenderDiff(oldContent, newContent, name)
	return res
}

// SplitLines splits file content into lines for patching. A trailing newline
// does not produce a final empty line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// JoinLines is the inverse of SplitLines; non-empty content always ends with
// a newline.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderDiff renders a unified diff of a completed change for logs and
// terminal output. It plays no part in applying patches.
func RenderDiff(oldContent, newContent, path string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}
