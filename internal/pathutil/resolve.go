// Package pathutil resolves the executable path that OS scheme
// registrations point at.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveExecutable returns the file the OS should launch for a link.
// Inside an AppImage the running binary sits on a temporary mount that
// disappears on exit, so the AppImage itself ($APPIMAGE) is used.
func ResolveExecutable() (string, error) {
	return resolveExecutable(os.Getenv, os.Executable)
}

func resolveExecutable(getenv func(string) string, executable func() (string, error)) (string, error) {
	if appImage := getenv("APPIMAGE"); appImage != "" {
		return ResolveAbsolutePath(appImage)
	}
	exe, err := executable()
	if err != nil {
		return "", err
	}
	return ResolveAbsolutePath(exe)
}

// ResolveAbsolutePath makes path absolute, expanding a leading ~. Symlinks
// and junctions are resolved in the part of the path that exists; missing
// trailing components are appended unchanged.
func ResolveAbsolutePath(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = home + path[1:]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var missing []string
	for current := absPath; ; {
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
