// Package bridgepath resolves the per-project Memory Directory from a
// working directory: the containing repository root keys a directory
// under the user's home.
package bridgepath

import (
	"os"
	"path/filepath"
	"strings"
)

// gitMarker is the directory entry that identifies a repository root.
const gitMarker = ".git"

// ResolveMemoryDir computes the Memory Directory for a working
// directory: ascend to the containing repository root (or fall back
// to workingDir verbatim), derive a stable per-project key from the
// resulting path, and join it under the user's memory root.
//
// Pure function of its input; performs no filesystem writes.
func ResolveMemoryDir(workingDir string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	root := FindGitRoot(workingDir)
	if root == "" {
		root = workingDir
	}

	key := ProjectKey(root)
	return filepath.Join(home, ".claude", "projects", key, "memory"), nil
}

// FindGitRoot ascends from dir until it finds a directory containing
// a .git entry, returning that directory. It returns "" if traversal
// reaches the filesystem root without finding one.
func FindGitRoot(dir string) string {
	current := filepath.Clean(dir)

	for {
		if _, err := os.Stat(filepath.Join(current, gitMarker)); err == nil {
			return current
		}

		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// ProjectKey forms a stable project key from an absolute path by
// replacing every path separator with '-' and stripping a leading '-'.
func ProjectKey(path string) string {
	key := strings.ReplaceAll(filepath.Clean(path), string(filepath.Separator), "-")
	return strings.TrimPrefix(key, "-")
}
