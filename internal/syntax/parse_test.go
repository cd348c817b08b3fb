package syntax_test

import (
	"testing"

	"corvid/internal/diag"
	"corvid/internal/source"
	"corvid/internal/syntax"

	"github.com/google/go-cmp/cmp"
)

func parse(t *testing.T, text string) *syntax.Unit {
	t.Helper()
	return syntax.ParseText(source.NewFileSet(), "test.cv", text)
}

func codes(u *syntax.Unit) []diag.Code {
	var out []diag.Code
	for _, d := range u.Diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func TestParseOutline(t *testing.T) {
	u := parse(t, `
extern alias Legacy;
using System;
using IO = System.IO;
global using System.Linq;

namespace App.Core {
    using System.Text;

    public static class Program {
        private int counter = 0;
        public string Name { get; set; } = "x";

        public static async Task<int> Main(string[] args) {
            await Run();
            return 0;
        }

        static void Helper<T, U>(ref T a, U b = default) { }

        public abstract void Abstract();

        class Nested { }
    }

    interface IThing { void Do(); }
    record Point(int X, int Y);
    enum Color { Red, Green }
}
`)
	if len(u.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(u))
	}
	if got := u.ExternAliases; len(got) != 1 || got[0].Name != "Legacy" {
		t.Fatalf("extern aliases = %+v", got)
	}
	if len(u.Root.Usings) != 2 || u.Root.Usings[1].Alias != "IO" || u.Root.Usings[1].Path != "System.IO" {
		t.Fatalf("root usings = %+v", u.Root.Usings)
	}
	if len(u.GlobalUsings) != 1 || !u.GlobalUsings[0].Global || u.GlobalUsings[0].Path != "System.Linq" {
		t.Fatalf("global usings = %+v", u.GlobalUsings)
	}
	if len(u.Root.Namespaces) != 1 {
		t.Fatalf("namespaces = %d", len(u.Root.Namespaces))
	}
	ns := u.Root.Namespaces[0]
	if ns.Name != "App.Core" || len(ns.Usings) != 1 {
		t.Fatalf("namespace = %q usings=%d", ns.Name, len(ns.Usings))
	}

	var names []string
	for _, ty := range ns.Types {
		names = append(names, ty.Kind.String()+" "+ty.MetadataName())
	}
	want := []string{"class Program", "interface IThing", "record Point", "enum Color"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	prog := ns.Types[0]
	if !prog.Modifiers.Has(syntax.ModStatic) || !prog.Modifiers.Has(syntax.ModPublic) {
		t.Fatalf("modifiers = %b", prog.Modifiers)
	}
	if len(prog.Methods) != 3 || len(prog.Types) != 1 {
		t.Fatalf("methods=%d nested=%d", len(prog.Methods), len(prog.Types))
	}
	main := prog.Methods[0]
	if main.Name != "Main" || !main.Modifiers.Has(syntax.ModAsync) || main.ReturnType.Text != "Task<int>" {
		t.Fatalf("main = %+v", main)
	}
	if len(main.Params) != 1 || main.Params[0].Type.Text != "string[]" || main.Params[0].Name != "args" {
		t.Fatalf("main params = %+v", main.Params)
	}
	if main.Body == nil || len(main.Body.Awaits) != 1 || !main.Body.ReturnsValue() {
		t.Fatalf("main body = %+v", main.Body)
	}
	helper := prog.Methods[1]
	if helper.Arity != 2 || helper.Params[0].Modifier != "ref" || !helper.IsVoid() {
		t.Fatalf("helper = %+v", helper)
	}
	if abs := prog.Methods[2]; abs.Body != nil {
		t.Fatalf("abstract method must have no body")
	}
	if u.HasTopLevelStatements() {
		t.Fatal("no top-level statements expected")
	}
}

func TestTopLevelStatements(t *testing.T) {
	u := parse(t, `using System;
Console.WriteLine("hi");
if (args.Length > 0) { Run(); } else { Stop(); }
await Task.Delay(1);
class Helper { }
`)
	if len(u.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(u))
	}
	if !u.HasTopLevelStatements() {
		t.Fatal("expected top-level statements")
	}
	if len(u.TopLevel.Awaits) != 1 {
		t.Fatalf("awaits = %d", len(u.TopLevel.Awaits))
	}
	if len(u.Root.Types) != 1 || u.Root.Types[0].Name != "Helper" {
		t.Fatalf("types = %+v", u.Root.Types)
	}
	for _, n := range []string{"Console", "Task", "Stop"} {
		if !u.Mentions(n) {
			t.Fatalf("expected %q to be mentioned", n)
		}
	}
}

func TestFileScopedNamespace(t *testing.T) {
	u := parse(t, "namespace A.B;\nclass C { void M() { } }\nstruct S { }\n")
	if len(u.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(u))
	}
	ns := u.Root.Namespaces[0]
	if !ns.FileScoped || len(ns.Types) != 2 {
		t.Fatalf("namespace = %+v", ns)
	}
}

func TestReferenceDirectives(t *testing.T) {
	u := parse(t, "#r \"lib.cvm\"\n#load \"other.cv\"\nclass C { }\n")
	if !u.HasReferenceDirectives() {
		t.Fatal("expected reference directives")
	}
	dirs := u.ReferenceDirectives()
	if len(dirs) != 2 || dirs[0].Arg != "lib.cvm" || dirs[1].Kind != syntax.DirLoad {
		t.Fatalf("directives = %+v", dirs)
	}

	late := parse(t, "class C { }\n#r \"late.cvm\"\n")
	if diff := cmp.Diff([]diag.Code{diag.ParDirectiveAfterDecl}, codes(late)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	plain := parse(t, "class C { }")
	if plain.HasReferenceDirectives() {
		t.Fatal("plain unit has no reference directives")
	}
}

func TestPragmaTable(t *testing.T) {
	text := "class C {\n#pragma warning disable CMP4472, 4017\n  void A() { }\n#pragma warning restore CMP4472\n  void B() { }\n#pragma warning disable\n  void D() { }\n}\n"
	u := parse(t, text)
	if len(u.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(u))
	}
	methods := u.Root.Types[0].Methods
	a, b, d := methods[0].NameSpan, methods[1].NameSpan, methods[2].NameSpan

	cases := []struct {
		code diag.Code
		at   source.Span
		want bool
	}{
		{diag.CmpNullComparison, a, true},
		{diag.CmpMultipleEntryPoints, a, true},
		{diag.CmpNullComparison, b, false},
		{diag.CmpMultipleEntryPoints, b, true},
		{diag.CmpTopLevelIgnoresMain, b, false},
		{diag.CmpTopLevelIgnoresMain, d, true},
		{diag.CmpNullComparison, source.Span{File: u.FileID(), Start: 0, End: 1}, false},
	}
	for i, tc := range cases {
		if got := u.IsSuppressed(tc.code, tc.at); got != tc.want {
			t.Fatalf("case %d: IsSuppressed(%s) = %v, want %v", i, tc.code.ID(), got, tc.want)
		}
	}
	if u.IsSuppressed(diag.CmpNullComparison, source.Span{File: u.FileID() + 1, Start: a.Start}) {
		t.Fatal("spans of other files are never suppressed")
	}
}

func TestBadDirectives(t *testing.T) {
	u := parse(t, "#pragma foo\n#pragma warning disable NOPE9999\n#bogus\n#r lib\n#warning check this\nclass C { }\n")
	want := []diag.Code{diag.ParUnknownPragma, diag.ParUnknownPragma, diag.ParBadDirective, diag.ParBadDirective, diag.ParWarningDirective}
	if diff := cmp.Diff(want, codes(u)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestBodySummary(t *testing.T) {
	u := parse(t, `class C {
    int F(int? x, string s) {
        if (x == null) { throw new Error(); }
        if (null != s) { return; }
        if (a.b == null) { }
        throw new Error();
    }
    int G() => 42;
}`)
	if len(u.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(u))
	}
	f := u.Root.Types[0].Methods[0]
	if !f.Body.Throws {
		t.Fatal("expected statement-level throw")
	}
	if f.Body.ReturnsValue() {
		t.Fatal("bare return has no value")
	}
	got := f.Body.NullCompare
	if len(got) != 2 || got[0].Operand != "x" || !got[0].Equal || got[1].Operand != "s" || got[1].Equal {
		t.Fatalf("null comparisons = %+v", got)
	}
	if !f.Params[0].Type.Nullable {
		t.Fatal("int? is nullable")
	}
	g := u.Root.Types[0].Methods[1]
	if !g.ExpressionBodied || g.Body == nil {
		t.Fatalf("G = %+v", g)
	}
}

func TestRecovery(t *testing.T) {
	u := parse(t, "namespace N {\n class { }\n class Ok { }\n")
	got := codes(u)
	if len(got) < 2 || got[0] != diag.ParExpectIdentifier {
		t.Fatalf("codes = %v", got)
	}
	if !u.WellFormed() {
		t.Fatal("parser must always produce a root")
	}
}

func TestDistinctIdentity(t *testing.T) {
	fs := source.NewFileSet()
	a := syntax.ParseText(fs, "a.cv", "class A { }")
	b := syntax.ParseText(fs, "a.cv", "class A { }")
	if a == b {
		t.Fatal("each parse yields a new unit")
	}
	if (&syntax.Unit{}).WellFormed() {
		t.Fatal("empty unit is not well formed")
	}
}
