package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"corvid/internal/diag"
	"corvid/internal/source"
)

func sample(t *testing.T) (*source.FileSet, []*diag.Diagnostic) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.AddVirtual("prog.cv", []byte("class A {\n    static void Main() { }\n}\n"))
	start := uint32(strings.Index(string(f.Content), "Main"))
	d := diag.NewError(diag.CmpMultipleEntryPoints, source.Span{File: f.ID, Start: start, End: start + 4},
		"Program has more than one entry point defined")
	d.WithNote(source.Span{File: f.ID, Start: start, End: start + 4}, "A.Main()")
	suppressed := diag.NewWarning(diag.CmpNullComparison, source.Span{File: f.ID}, "hidden")
	suppressed.Suppressed = true
	global := diag.NewWarning(diag.RefCircularSelf, source.NoSpan, "reference 'App' is the assembly being compiled")
	return fs, []*diag.Diagnostic{d, suppressed, global}
}

func TestPrettyUnderlinesPrimarySpan(t *testing.T) {
	fs, items := sample(t)
	var buf bytes.Buffer
	Pretty(&buf, items, fs, PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()

	for _, want := range []string{
		"prog.cv:2:17: ERROR CMP4017: Program has more than one entry point defined",
		"1 | class A {",
		"2 |     static void Main() { }",
		"|" + strings.Repeat(" ", 17) + "^~~~",
		"= note: A.Main() (prog.cv:2:17)",
		"WARNING REF2003: reference 'App' is the assembly being compiled",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("suppressed diagnostic printed:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colour escape with Color=false:\n%s", out)
	}
}

func TestShortAndSummary(t *testing.T) {
	fs, items := sample(t)
	items[0].Escalated = true

	var buf bytes.Buffer
	Short(&buf, items, fs, PathModeBasename)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasSuffix(lines[0], "[warning as error]") {
		t.Fatalf("escalation marker missing: %q", lines[0])
	}

	buf.Reset()
	Summary(&buf, items, false)
	if got := strings.TrimSpace(buf.String()); got != "1 error, 1 warning" {
		t.Fatalf("summary = %q", got)
	}
}

func TestClipAndUnderlineUseDisplayWidth(t *testing.T) {
	if got := underline("日本"); got != "^~~~" {
		t.Fatalf("underline = %q", got)
	}
	if got := pad("\tаб"); got != "\t  " {
		t.Fatalf("pad = %q", got)
	}
	if got := clip("abcdefghij", 6); got != "abc..." {
		t.Fatalf("clip = %q", got)
	}
	if got := clip("abc", 0); got != "abc" {
		t.Fatalf("clip = %q", got)
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{"": PathModeAuto, "abs": PathModeAbsolute, "relative": PathModeRelative, "basename": PathModeBasename} {
		got, err := ParsePathMode(in)
		if err != nil || got != want {
			t.Fatalf("ParsePathMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePathMode("weird"); err == nil {
		t.Fatal("expected error")
	}
}
