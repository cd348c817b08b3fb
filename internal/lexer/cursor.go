package lexer

import (
	"fmt"
	"strings"

	"corvid/internal/source"

	"fortio.org/safecast"
)

// Cursor walks the bytes of one file. Offsets are uint32 like source.Span.
type Cursor struct {
	File *source.File
	Off  uint32
	end  uint32
}

// NewCursor panics on files that do not fit a uint32 offset.
func NewCursor(f *source.File) Cursor {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("%s: file too large: %w", f.Path, err))
	}
	return Cursor{File: f, end: end}
}

func (c *Cursor) EOF() bool { return c.Off >= c.end }

// At возвращает байт на расстоянии i от курсора или 0 за концом файла.
func (c *Cursor) At(i uint32) byte {
	if c.Off+i >= c.end {
		return 0
	}
	return c.File.Content[c.Off+i]
}

func (c *Cursor) Peek() byte { return c.At(0) }

// Bump advances one byte and returns it; 0 at EOF.
func (c *Cursor) Bump() byte {
	b := c.At(0)
	if !c.EOF() {
		c.Off++
	}
	return b
}

// Eat consumes b if it is next.
func (c *Cursor) Eat(b byte) bool {
	if c.EOF() || c.File.Content[c.Off] != b {
		return false
	}
	c.Off++
	return true
}

// HasPrefix reports whether the unread input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	return strings.HasPrefix(string(c.File.Content[c.Off:c.end]), s)
}

// EatPrefix consumes s if the unread input starts with it.
func (c *Cursor) EatPrefix(s string) bool {
	if !c.HasPrefix(s) {
		return false
	}
	c.Off += uint32(len(s))
	return true
}

// BumpWhile consumes bytes while ok holds and reports how many it took.
func (c *Cursor) BumpWhile(ok func(byte) bool) int {
	n := 0
	for !c.EOF() && ok(c.File.Content[c.Off]) {
		c.Off++
		n++
	}
	return n
}

// Mark is an offset remembered to build a span or to backtrack.
type Mark uint32

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

func (c *Cursor) Reset(m Mark) { c.Off = uint32(m) }

// SpanFrom covers the bytes read since m.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

// TextFrom returns the bytes read since m.
func (c *Cursor) TextFrom(m Mark) string {
	return string(c.File.Content[m:c.Off])
}
