// Package workspace provides project-root path safety and run exclusivity.
package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizeAndValidatePath resolves inputPath against root and reports
// whether the result escapes it. Model-supplied paths may embed ".."
// traversal or be absolute; callers must reject anything with outside true
// before touching the filesystem.
func NormalizeAndValidatePath(root, inputPath string) (absPath string, outside bool, err error) {
	path := inputPath
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, err
		}
		path = filepath.Join(home, path[2:])
	}

	if filepath.IsAbs(path) {
		absPath = path
	} else {
		absPath = filepath.Join(root, path)
	}
	absPath = filepath.Clean(absPath)

	rel, err := filepath.Rel(filepath.Clean(root), absPath)
	if err != nil {
		return "", false, err
	}
	outside = rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
	return absPath, outside, nil
}
