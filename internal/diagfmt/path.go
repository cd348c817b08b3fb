package diagfmt

import (
	"path/filepath"
	"strings"

	"corvid/internal/source"
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	if fs == nil || id == source.NoFileID {
		return ""
	}
	f := fs.Get(id)
	if f == nil {
		return ""
	}
	path := f.Path
	if f.IsVirtual() {
		return path
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeBasename:
		return source.BaseName(path)
	case PathModeRelative, PathModeAuto:
		base := fs.BaseDir()
		abs, err := filepath.Abs(path)
		if err != nil || base == "" {
			return path
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil {
			return path
		}
		// auto keeps absolute paths for files outside the base directory
		if mode == PathModeAuto && strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(abs)
		}
		return filepath.ToSlash(rel)
	}
	return path
}

// location renders "path:line:col", or "" for spans without a file.
func location(fs *source.FileSet, sp source.Span, mode PathMode) (string, source.LineCol, bool) {
	if sp.IsNone() || fs == nil {
		return "", source.LineCol{}, false
	}
	start, _, ok := fs.Resolve(sp)
	if !ok {
		return "", source.LineCol{}, false
	}
	return formatPath(fs, sp.File, mode), start, true
}
