package source

import (
	"bytes"
	"path/filepath"
	"sort"
)

var (
	bom  = []byte{0xEF, 0xBB, 0xBF}
	crlf = []byte("\r\n")
)

// normalizeCRLF приводит \r\n к \n; одиночные \r остаются.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, crlf) {
		return content, false
	}
	return bytes.ReplaceAll(content, crlf, []byte{'\n'}), true
}

func removeBOM(content []byte) ([]byte, bool) {
	rest, ok := bytes.CutPrefix(content, bom)
	return rest, ok
}

// buildLineIndex returns the offset of every '\n'.
func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		idx = append(idx, uint32(off+i)) //nolint:gosec // file sizes are checked by Add
		off += i + 1
	}
}

// toLineCol: сам '\n' относится к строке, которую он завершает.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	return LineCol{Line: uint32(line) + 1, Col: off - lineStart + 1} //nolint:gosec // line <= len(lineIdx)
}

// normalizePath gives unit paths one shape across platforms.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// BaseName returns the last path element.
func BaseName(p string) string {
	return filepath.Base(p)
}
