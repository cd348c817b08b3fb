package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"corvid/internal/compilation"
	"corvid/internal/diag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifestFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
sources = ["src"]

[compilation]
name = "App"
output = "library"
warning_level = 2
warnings = "error"
features = ["unused-usings:off"]
identity = "lenient"
concurrent = false

[diagnostics]
CMP4472 = "suppress"

[[references]]
path = "lib/util.cvm"
aliases = ["U"]
`)
	writeFile(t, filepath.Join(root, "src", "b.cv"), "class B { }\n")
	writeFile(t, filepath.Join(root, "src", "a.cv"), "class A { }\n")
	writeFile(t, filepath.Join(root, "src", ".hidden", "x.cv"), "class X { }\n")
	writeFile(t, filepath.Join(root, "src", "notes.txt"), "")
	sub := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := LoadManifest(sub)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	opts, err := m.Config.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.OutputKind != compilation.OutputLibrary || opts.WarningLevel != 2 || opts.ConcurrentBuild {
		t.Fatalf("options = %+v", opts)
	}
	if opts.GeneralDiagnosticOption != diag.ActionError || opts.SpecificDiagnosticOptions[diag.CmpNullComparison] != diag.ActionSuppress {
		t.Fatalf("diagnostic options = %v %v", opts.GeneralDiagnosticOption, opts.SpecificDiagnosticOptions)
	}
	if opts.IdentityComparer.Name() != "lenient" {
		t.Fatalf("comparer = %s", opts.IdentityComparer.Name())
	}

	files, err := m.SourceFiles()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "src", "a.cv"), filepath.Join(root, "src", "b.cv")}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("sources (-want +got):\n%s", diff)
	}

	refs := m.References()
	if len(refs) != 1 || refs[0].Display() != filepath.Join(root, "lib", "util.cvm") {
		t.Fatalf("references = %v", refs)
	}
	if diff := cmp.Diff([]string{"U"}, refs[0].Aliases()); diff != "" {
		t.Fatalf("aliases (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"no compilation", "sources = [\"src\"]\n", ErrCompilationSectionMissing},
		{"no name", "[compilation]\noutput = \"library\"\n", ErrNameMissing},
		{"bad output", "[compilation]\nname = \"A\"\noutput = \"dll\"\n", ErrInvalidValue},
		{"bad level", "[compilation]\nname = \"A\"\nwarning_level = 12\n", ErrInvalidValue},
		{"bad id", "[compilation]\nname = \"A\"\n[diagnostics]\nXYZ = \"error\"\n", ErrInvalidValue},
		{"bad action", "[compilation]\nname = \"A\"\n[diagnostics]\nCMP4472 = \"loud\"\n", ErrInvalidValue},
		{"unknown key", "[compilation]\nname = \"A\"\ncolour = \"blue\"\n", ErrInvalidValue},
		{"reference without path", "[compilation]\nname = \"A\"\n[[references]]\naliases = [\"X\"]\n", ErrReferencePathMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tt.content)
			_, err := LoadConfig(path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFindManifestMissing(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := FindManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	// a corvid.toml above the temp dir would make this test meaningless
	if ok {
		t.Skip("a corvid.toml exists above the temporary directory")
	}
}
