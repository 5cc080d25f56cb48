// Package pathutil resolves user-supplied paths the same way for the shell,
// the CLI and the tray.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Resolve converts path to an absolute path. Symlinks and junctions are
// resolved in the existing part of the path and the missing components are
// appended, so folders that do not exist yet (a new backup directory) still
// land on their real volume.
func Resolve(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	absPath, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved, nil
	}

	current := absPath
	var missing []string
	for {
		if _, err := os.Stat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				resolved = current
			}
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return absPath, nil
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}

// MustResolve is Resolve that falls back to the cleaned input on error.
func MustResolve(path string) string {
	resolved, err := Resolve(path)
	if err != nil {
		return filepath.Clean(ExpandHome(path))
	}
	return resolved
}
