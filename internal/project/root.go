package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ManifestName is the file that marks a project root.
const ManifestName = "corvid.toml"

// FindManifest looks for corvid.toml in startDir and then in each parent.
// A directory named corvid.toml does not count.
func FindManifest(startDir string) (path string, ok bool, err error) {
	dir, err := filepath.Abs(cmpOr(startDir, "."))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for prev := ""; dir != prev; prev, dir = dir, filepath.Dir(dir) {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

func cmpOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
