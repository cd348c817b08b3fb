package source

import "fmt"

type (
	// FileID indexes a file inside its FileSet.
	FileID uint32
	// FileFlags records how the content was obtained.
	FileFlags uint8
)

// NoFileID marks spans that are not attached to any file (reference diagnostics, options).
const NoFileID FileID = ^FileID(0)

const (
	FileVirtual        FileFlags = 1 << iota // не с диска: тест, stdin, сгенерированный unit
	FileHadBOM                               // BOM снят при загрузке
	FileNormalizedCRLF                       // \r\n приведены к \n
)

// File is the immutable text of one source unit.
// LineIdx holds the offsets of every '\n' in Content.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// IsVirtual reports whether the file did not come from disk; its path is shown as given.
func (f *File) IsVirtual() bool { return f.Flags&FileVirtual != 0 }

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Col) }

// Position converts a byte offset into a line/column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

func (f *File) size() uint32 {
	return uint32(len(f.Content)) //nolint:gosec // bounded by Add
}

// GetLine returns line n (1-based) without its newline, "" when out of range.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := f.size()
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start >= f.size() {
		return ""
	}
	return string(f.Content[start:min(end, f.size())])
}

// Text returns the source text covered by span, clamped to the file bounds.
func (f *File) Text(span Span) string {
	start, end := min(span.Start, f.size()), min(span.End, f.size())
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}
