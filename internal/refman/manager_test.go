package refman

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"corvid/internal/diag"
	"corvid/internal/metadata"
	"corvid/internal/source"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

func image(name string, refs ...string) *metadata.Image {
	img := &metadata.Image{
		Schema:   metadata.ImageSchema,
		Identity: metadata.Identity{Name: name, Version: "1.0.0.0"},
		Types: []metadata.TypeDef{
			{Namespace: name, Name: "Api", Kind: "class", Public: true},
		},
	}
	for _, r := range refs {
		img.References = append(img.References, metadata.Identity{Name: r, Version: "1.0.0.0"})
	}
	return img
}

func corlib() *metadata.Image {
	return &metadata.Image{
		Schema:   metadata.ImageSchema,
		Identity: metadata.Identity{Name: "System.Runtime", Version: "8.0.0.0"},
		Types: []metadata.TypeDef{
			{Namespace: "System", Name: "Object", Kind: "class", Public: true},
			{Namespace: "System", Name: "String", Kind: "class", Public: true},
		},
	}
}

func codes(ds []*diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

func names(asms []*symbols.Assembly) []string {
	out := make([]string, 0, len(asms))
	for _, a := range asms {
		out = append(out, a.Identity.Name)
	}
	return out
}

func TestResolveOrdersDependenciesFirst(t *testing.T) {
	refs := []*metadata.Reference{
		metadata.FromImage("app.lib", image("App.Lib", "System.Runtime", "Util")),
		metadata.FromImage("util", image("Util", "System.Runtime")),
		metadata.FromImage("corlib", corlib()),
	}
	m := New(Config{AssemblyName: "App"}, refs, nil)
	res, err := m.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"System.Runtime", "Util", "App.Lib"}, names(res.Assemblies)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if res.Corlib == nil || res.Corlib.Identity.Name != "System.Runtime" {
		t.Fatalf("corlib not detected: %+v", res.Corlib)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(res.Diagnostics))
	}
	lib, _ := res.AssemblyFor(refs[0])
	if diff := cmp.Diff([]string{"System.Runtime", "Util"}, names(lib.References)); diff != "" {
		t.Fatalf("lib references mismatch:\n%s", diff)
	}
}

func TestResolveIsSharedAndLoadsOnce(t *testing.T) {
	var loads atomic.Int32
	data, err := metadata.Encode(image("Util"), metadata.FormatMsgpack)
	if err != nil {
		t.Fatal(err)
	}
	ref := metadata.FromLoader("util", metadata.FormatMsgpack, func() ([]byte, error) {
		loads.Add(1)
		return data, nil
	})
	m := New(Config{AssemblyName: "App"}, []*metadata.Reference{ref}, nil)

	var wg sync.WaitGroup
	results := make([]*Resolution, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = m.Resolve(context.Background())
		}()
	}
	wg.Wait()
	for _, r := range results {
		if r != results[0] {
			t.Fatalf("resolution installed more than once")
		}
	}
	if n := loads.Load(); n != 1 {
		t.Fatalf("reference loaded %d times", n)
	}
}

func TestCancelledResolveInstallsNothing(t *testing.T) {
	m := New(Config{}, []*metadata.Reference{metadata.FromImage("u", image("Util"))}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Resolve(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if m.Resolved() {
		t.Fatalf("cancelled resolution was installed")
	}
	if _, err := m.Resolve(context.Background()); err != nil || !m.Resolved() {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestDuplicateIdentityUnionsAliases(t *testing.T) {
	a := metadata.FromImage("a/util", image("Util")).WithAliases("U1")
	b := metadata.FromImage("b/util", image("Util")).WithAliases("U2")
	m := New(Config{}, []*metadata.Reference{a, b}, nil)
	res, err := m.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Assemblies) != 1 {
		t.Fatalf("want one assembly, got %v", names(res.Assemblies))
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("identical duplicates should be silent, got %v", codes(res.Diagnostics))
	}
	asmA, _ := res.AssemblyFor(a)
	asmB, _ := res.AssemblyFor(b)
	if asmA != asmB {
		t.Fatalf("duplicates bound to different assemblies")
	}
	if diff := cmp.Diff([]string{"U1", "U2"}, res.Aliases()); diff != "" {
		t.Fatalf("aliases mismatch:\n%s", diff)
	}
	if len(res.Global) != 0 {
		t.Fatalf("aliased-only assembly leaked into global: %v", names(res.Global))
	}

	n1, err := m.ExternAlias(context.Background(), "U1")
	if err != nil || n1 == nil || n1.LookupNamespace("Util") == nil {
		t.Fatalf("U1 lookup failed: %v %v", n1, err)
	}
	n2, _ := m.ExternAlias(context.Background(), "U2")
	if n2 == nil || n2.LookupNamespace("Util") == nil {
		t.Fatalf("U2 lookup failed")
	}
}

func TestDuplicateIdentityDifferentContent(t *testing.T) {
	other := image("Util")
	other.Types = append(other.Types, metadata.TypeDef{Namespace: "Util", Name: "Extra", Kind: "class"})
	refs := []*metadata.Reference{
		metadata.FromImage("a/util", image("Util")),
		metadata.FromImage("b/util", other),
	}
	res, err := New(Config{}, refs, nil).Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]diag.Code{diag.RefDuplicateIdentity}, codes(res.Diagnostics)); diff != "" {
		t.Fatalf("diagnostics mismatch:\n%s", diff)
	}
	asm, _ := res.AssemblyFor(refs[1])
	if asm.GlobalNamespace().LookupNamespace("Util").HasTypeNamed("Extra") {
		t.Fatalf("second duplicate should lose")
	}
}

func TestExternAliasUnknownIsCached(t *testing.T) {
	m := New(Config{}, []*metadata.Reference{metadata.FromImage("u", image("Util")).WithAliases("U")}, nil)
	for range 2 {
		ns, err := m.ExternAlias(context.Background(), "Nope")
		if err != nil || ns != nil {
			t.Fatalf("want nil namespace, got %v %v", ns, err)
		}
	}
	if m.AliasLookups() != 1 {
		t.Fatalf("negative result not memoized")
	}
}

func TestCircularSelfReference(t *testing.T) {
	refs := []*metadata.Reference{
		metadata.FromImage("old app", image("App")),
		metadata.FromImage("plugin", image("Plugin", "App")),
		metadata.FromImage("util", image("Util")),
	}
	m := New(Config{AssemblyName: "App"}, refs, nil)
	if !m.Shareable() {
		t.Fatalf("unresolved manager must be shareable")
	}
	res, err := m.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.CircularSelf || m.Shareable() {
		t.Fatalf("circular self not detected")
	}
	if diff := cmp.Diff([]diag.Code{diag.RefCircularSelf, diag.RefCircularSelf}, codes(res.Diagnostics)); diff != "" {
		t.Fatalf("diagnostics mismatch:\n%s", diff)
	}
	old, _ := res.AssemblyFor(refs[0])
	if !res.IsExcluded(old) {
		t.Fatalf("earlier build of App should be excluded from the global namespace")
	}
	if diff := cmp.Diff([]string{"Plugin", "Util"}, names(res.Global)); diff != "" {
		t.Fatalf("global mismatch:\n%s", diff)
	}
	if m.CanReuse(refs, Config{AssemblyName: "App"}) {
		t.Fatalf("circular manager must not be reused")
	}
}

func TestCycleAndMissingDependency(t *testing.T) {
	refs := []*metadata.Reference{
		metadata.FromImage("a", image("A", "B")),
		metadata.FromImage("b", image("B", "A")),
		metadata.FromImage("c", image("C", "Missing")),
	}
	res, err := New(Config{AssemblyName: "App"}, refs, nil).Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := codes(res.Diagnostics)
	want := []diag.Code{diag.RefMissingDependency, diag.RefCycle}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("diagnostics mismatch:\n%s", diff)
	}
	if len(res.Assemblies) != 3 {
		t.Fatalf("cyclic assemblies must still be bound: %v", names(res.Assemblies))
	}
}

func TestLoadFailures(t *testing.T) {
	refs := []*metadata.Reference{
		metadata.FromBytes("bad", []byte{0x85, 0xc1}, metadata.FormatMsgpack),
		metadata.FromLoader("gone", metadata.FormatMsgpack, func() ([]byte, error) {
			return nil, errors.New("no such file")
		}),
	}
	res, err := New(Config{}, refs, nil).Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]diag.Code{diag.RefMalformedImage, diag.RefNotFound}, codes(res.Diagnostics)); diff != "" {
		t.Fatalf("diagnostics mismatch:\n%s", diff)
	}
	for _, d := range res.Diagnostics {
		if !d.Primary.IsNone() {
			t.Fatalf("explicit reference diagnostics carry no location: %v", d.Primary)
		}
	}
}

func TestReferenceDirectives(t *testing.T) {
	fs := source.NewFileSet()
	u := syntax.ParseText(fs, "s.cvx", "#r \"util.cvm\"\n#r \"missing.cvm\"\nSystem.Console.WriteLine(1);\n")
	var dirs []DirectiveRef
	for _, d := range u.ReferenceDirectives() {
		dirs = append(dirs, DirectiveRef{Unit: u, Directive: d})
	}

	noResolver, err := New(Config{}, nil, dirs).Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]diag.Code{diag.RefDirectiveNoResolve, diag.RefDirectiveNoResolve}, codes(noResolver.Diagnostics)); diff != "" {
		t.Fatalf("diagnostics mismatch:\n%s", diff)
	}

	util := metadata.FromImage("util.cvm", image("Util"))
	resolver := ResolverFunc(func(path, from string) (*metadata.Reference, error) {
		if from != "s.cvx" {
			t.Errorf("unexpected from %q", from)
		}
		if path == "util.cvm" {
			return util, nil
		}
		return nil, errors.New("not found")
	})
	res, err := New(Config{Resolver: resolver}, nil, dirs).Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]diag.Code{diag.RefNotFound}, codes(res.Diagnostics)); diff != "" {
		t.Fatalf("diagnostics mismatch:\n%s", diff)
	}
	if res.Diagnostics[0].Primary.IsNone() {
		t.Fatalf("directive diagnostics must point at the directive")
	}
	if got := res.DirectiveReferences(); len(got) != 1 || got[0] != util {
		t.Fatalf("directive references: %v", got)
	}
}

func TestResolverWithoutResult(t *testing.T) {
	fs := source.NewFileSet()
	u := syntax.ParseText(fs, "s.cvx", "#r \"absent.cvm\"\nSystem.Console.WriteLine(1);\n")
	var dirs []DirectiveRef
	for _, d := range u.ReferenceDirectives() {
		dirs = append(dirs, DirectiveRef{Unit: u, Directive: d})
	}
	resolver := ResolverFunc(func(string, string) (*metadata.Reference, error) { return nil, nil })
	res, err := New(Config{Resolver: resolver}, nil, dirs).Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]diag.Code{diag.RefNotFound}, codes(res.Diagnostics)); diff != "" {
		t.Fatalf("diagnostics mismatch:\n%s", diff)
	}
	if want := `metadata file "absent.cvm" could not be found`; res.Diagnostics[0].Message != want {
		t.Fatalf("message = %q, want %q", res.Diagnostics[0].Message, want)
	}
}
