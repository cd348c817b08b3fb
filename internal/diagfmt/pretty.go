package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"corvid/internal/diag"
	"corvid/internal/source"
)

type palette struct {
	err, warn, info, code, path, gutter, caret, note *color.Color
}

func newPalette(on bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		path:   mk(color.FgWhite, color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Подавленные (Suppressed) и отозванные диагностики пропускаются.
func Pretty(w io.Writer, items []*diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range items {
		if d == nil || !d.Counts() {
			continue
		}
		writeHeader(w, p, d, fs, opts.PathMode)
		writeSnippet(w, p, d.Primary, fs, opts)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				loc := ""
				if path, pos, ok := location(fs, n.Span, opts.PathMode); ok {
					loc = fmt.Sprintf(" (%s:%s)", path, pos)
				}
				fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("= note:"), n.Msg, loc)
			}
		}
		fmt.Fprintln(w)
	}
}

// Short prints one line per diagnostic, the way build tools and editors expect it.
func Short(w io.Writer, items []*diag.Diagnostic, fs *source.FileSet, mode PathMode) {
	p := newPalette(false)
	for _, d := range items {
		if d == nil || !d.Counts() {
			continue
		}
		writeHeader(w, p, d, fs, mode)
	}
}

func writeHeader(w io.Writer, p palette, d *diag.Diagnostic, fs *source.FileSet, mode PathMode) {
	if path, pos, ok := location(fs, d.Primary, mode); ok {
		fmt.Fprintf(w, "%s: ", p.path.Sprintf("%s:%s", path, pos))
	}
	suffix := ""
	if d.IsWarningAsError() {
		suffix = " [warning as error]"
	}
	fmt.Fprintf(w, "%s %s: %s%s\n",
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message, suffix)
}

func writeSnippet(w io.Writer, p palette, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	if sp.IsNone() || fs == nil {
		return
	}
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end, _ := fs.Resolve(sp)
	first := start.Line
	if opts.Context > 0 && uint32(opts.Context) < first {
		first -= uint32(opts.Context)
	} else if opts.Context > 0 {
		first = 1
	}
	gutterWidth := len(fmt.Sprint(start.Line))
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", gutterWidth), p.gutter.Sprint("|"))
	for ln := first; ln <= start.Line; ln++ {
		text := clip(strings.TrimRight(f.GetLine(ln), "\r"), opts.Width)
		fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprintf("%*d", gutterWidth, ln), p.gutter.Sprint("|"), text)
	}

	line := f.GetLine(start.Line)
	col := int(start.Col) - 1
	col = min(max(col, 0), len(line))
	// подчёркивание только в пределах первой строки спана
	stop := len(line)
	if end.Line == start.Line {
		stop = min(max(int(end.Col)-1, col), len(line))
	}
	marker := underline(line[col:stop])
	fmt.Fprintf(w, "%s %s %s%s\n",
		strings.Repeat(" ", gutterWidth), p.gutter.Sprint("|"),
		pad(line[:col]), p.caret.Sprint(marker))
}

// pad mirrors prefix as whitespace of the same display width; tabs are kept.
func pad(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func underline(text string) string {
	width := runewidth.StringWidth(text)
	if width <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", width-1)
}

func clip(value string, width uint8) string {
	if width == 0 || runewidth.StringWidth(value) <= int(width) {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, int(width), "")
	}
	return runewidth.Truncate(value, int(width), "...")
}

// Summary prints "N error(s), M warning(s)" for the visible diagnostics.
func Summary(w io.Writer, items []*diag.Diagnostic, useColor bool) {
	p := newPalette(useColor)
	var errs, warns int
	for _, d := range items {
		if d == nil || !d.Counts() {
			continue
		}
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	fmt.Fprintf(w, "%s, %s\n",
		p.err.Sprint(plural(errs, "error")),
		p.warn.Sprint(plural(warns, "warning")))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
