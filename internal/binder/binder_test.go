package binder

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"corvid/internal/decl"
	"corvid/internal/diag"
	"corvid/internal/metadata"
	"corvid/internal/source"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

type testEnv struct {
	units   []*syntax.Unit
	global  *symbols.Namespace
	aliases map[string]*symbols.Namespace
}

func (e *testEnv) GlobalNamespace(context.Context) (*symbols.Namespace, error) { return e.global, nil }

func (e *testEnv) ExternAlias(_ context.Context, alias string) (*symbols.Namespace, error) {
	return e.aliases[alias], nil
}

func (e *testEnv) GlobalImports(context.Context) ([]string, error) { return nil, nil }

func (e *testEnv) Ordinal(u *syntax.Unit) (int, bool) {
	for i, x := range e.units {
		if x == u {
			return i, true
		}
	}
	return 0, false
}

func (e *testEnv) Units() []*syntax.Unit { return e.units }

func system() *symbols.Assembly {
	return symbols.FromImage(nil, &metadata.Image{
		Schema:   metadata.ImageSchema,
		Identity: metadata.Identity{Name: "System.Runtime"},
		Types: []metadata.TypeDef{
			{Namespace: "System", Name: "Object", Kind: "class", Public: true},
			{Namespace: "System", Name: "Console", Kind: "class", Public: true,
				Methods: []metadata.MethodDef{{Name: "WriteLine", Static: true, Return: "void", Params: []string{"object"}}}},
			{Namespace: "System", Name: "Math", Kind: "class", Public: true,
				Methods: []metadata.MethodDef{{Name: "Max", Static: true, Return: "int", Params: []string{"int", "int"}}}},
			{Namespace: "System.Text", Name: "StringBuilder", Kind: "class", Public: true},
			{Namespace: "System.Collections", Name: "ArrayList", Kind: "class", Public: true},
			{Namespace: "System.Threading.Tasks", Name: "Task", Kind: "class", Public: true},
			{Namespace: "System.Threading.Tasks", Name: "Task", Arity: 1, Kind: "class", Public: true},
		},
	})
}

func newEnv(t *testing.T, sources ...string) *testEnv {
	t.Helper()
	fs := source.NewFileSet()
	table := decl.New(decl.Naming{})
	env := &testEnv{aliases: map[string]*symbols.Namespace{}}
	var roots []*symbols.Namespace
	for i, src := range sources {
		u := syntax.ParseText(fs, string(rune('a'+i))+".cv", src)
		if len(u.Diagnostics) != 0 {
			t.Fatalf("parse %d: %v", i, u.Diagnostics[0].Message)
		}
		env.units = append(env.units, u)
		table = table.Add(u)
		e, _ := table.Entry(u)
		roots = append(roots, e.Root())
	}
	env.global = symbols.Merge(append(roots, system().GlobalNamespace())...)
	return env
}

func codesOf(ds []*diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func TestDeclarationChecks(t *testing.T) {
	env := newEnv(t, `extern alias Missing;
using System;
using System;
using Nowhere.At.All;
namespace App {
    class Dup { }
    partial class P { }
    class C {
        void M(int x) { }
        void M(int y) { }
        void M(string s) { }
    }
}
`, `namespace App {
    class Dup { }
    partial class P { }
}
`)
	ctx := context.Background()
	first, err := Default{}.Declare(ctx, env, env.units[0])
	if err != nil {
		t.Fatal(err)
	}
	want := []diag.Code{diag.DclUnknownExternAlias, diag.DclDuplicateUsing, diag.DclUnresolvedUsing, diag.DclDuplicateMethod}
	if diff := cmp.Diff(want, codesOf(first.Diagnostics)); diff != "" {
		t.Fatalf("unit a (-want +got):\n%s", diff)
	}

	second, err := Default{}.Declare(ctx, env, env.units[1])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]diag.Code{diag.DclDuplicateType}, codesOf(second.Diagnostics)); diff != "" {
		t.Fatalf("unit b (-want +got):\n%s", diff)
	}
	if n := len(second.Diagnostics[0].Notes); n != 1 {
		t.Fatalf("duplicate type should point at the first definition, notes=%d", n)
	}

	var names []string
	for _, s := range second.Symbols {
		names = append(names, s.Display())
	}
	if diff := cmp.Diff([]string{"App.Dup", "App.P"}, names); diff != "" {
		t.Fatalf("declared symbols (-want +got):\n%s", diff)
	}
}

func TestExternAliasAndQualifiedUsing(t *testing.T) {
	env := newEnv(t, "extern alias Sys;\nusing Sys::System.Text;\nusing global::System;\nclass C { }\n")
	env.aliases["Sys"] = system().GlobalNamespace()
	res, err := Default{}.Declare(context.Background(), env, env.units[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codesOf(res.Diagnostics))
	}
}

func TestMultipleTopLevelUnits(t *testing.T) {
	env := newEnv(t, "System.Console.WriteLine(1);\n", "System.Console.WriteLine(2);\n")
	ctx := context.Background()
	if res, _ := (Default{}).Declare(ctx, env, env.units[0]); len(res.Diagnostics) != 0 {
		t.Fatalf("first unit: %v", codesOf(res.Diagnostics))
	}
	res, _ := Default{}.Declare(ctx, env, env.units[1])
	if diff := cmp.Diff([]diag.Code{diag.DclMultipleTopLevel}, codesOf(res.Diagnostics)); diff != "" {
		t.Fatalf("second unit (-want +got):\n%s", diff)
	}
}

func TestBodyChecks(t *testing.T) {
	env := newEnv(t, `using System.Threading.Tasks;
struct Point { }
class C {
    int NoReturn() { Console.WriteLine(1); }
    int Throws() { throw new Exception(); }
    int Expr() => 42;
    async Task Fine() { await Task.Delay(1); }
    async Task<int> NeedsValue() { await Task.Delay(1); }
    void Sync() { await Task.Delay(1); }
    void Nulls(int a, int? b, Point p, string s) {
        if (a == null) { }
        if (b == null) { }
        if (p != null) { }
        if (s == null) { }
        if (a != null) { }
    }
}
`)
	res, err := Default{}.Compile(context.Background(), env, env.units[0])
	if err != nil {
		t.Fatal(err)
	}
	want := []diag.Code{
		diag.CmpMissingReturn,
		diag.CmpMissingReturn,
		diag.CmpAwaitInNonAsync,
		diag.CmpNullComparisonFalse,
		diag.CmpNullComparisonFalse,
		diag.CmpNullComparison,
		diag.CmpNullComparisonTrue,
	}
	if diff := cmp.Diff(want, codesOf(res.Diagnostics)); diff != "" {
		t.Fatalf("diagnostics (-want +got):\n%s", diff)
	}
	if res.Diagnostics[4].Severity != diag.SevVoid {
		t.Fatalf("comparison on a nullable parameter must be retracted")
	}
	kept, _ := diag.Policy{WarningLevel: 4}.Apply(res.Diagnostics, nil)
	if len(kept) != 6 {
		t.Fatalf("policy should drop only the retracted diagnostic, kept %d", len(kept))
	}
}

func TestUnusedUsings(t *testing.T) {
	env := newEnv(t, `using System;
using System.Text;
using Col = System.Collections;
using static System.Math;
class C { void M() { Console.WriteLine(Max(1, 2)); } }
`)
	ds, err := UnusedUsings(context.Background(), env, env.units[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]diag.Code{diag.CmpUnnecessaryUsing, diag.CmpUnnecessaryUsing}, codesOf(ds)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	for _, d := range ds {
		if d.Severity != diag.SevInfo {
			t.Fatalf("unnecessary using must be info, got %v", d.Severity)
		}
	}
	if got := env.units[0].File.Text(ds[0].Primary); got != "using System.Text;" {
		t.Fatalf("first unused using at %q", got)
	}
}
