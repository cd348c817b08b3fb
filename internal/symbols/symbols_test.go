package symbols

import (
	"testing"

	"corvid/internal/metadata"

	"github.com/google/go-cmp/cmp"
)

func testImage(name string, types ...metadata.TypeDef) *metadata.Image {
	return &metadata.Image{Schema: metadata.ImageSchema, Identity: metadata.Identity{Name: name, Version: "1.0"}, Types: types}
}

func TestFromImageBuildsNamespaces(t *testing.T) {
	img := testImage("Lib",
		metadata.TypeDef{Namespace: "A.B", Name: "List", Arity: 1, Kind: "class",
			Methods: []metadata.MethodDef{{Name: "Add", Return: "void", Params: []string{"T"}}},
			Nested:  []metadata.TypeDef{{Name: "Enumerator", Kind: "struct"}}},
		metadata.TypeDef{Name: "Root", Kind: "class"},
	)
	asm := FromImage(nil, img)
	global := asm.GlobalNamespace()
	if !global.IsGlobal() || global.Display() != "<global namespace>" {
		t.Fatalf("global = %q", global.Display())
	}
	ab := global.LookupNamespace("A.B")
	if ab == nil || ab.QualifiedName() != "A.B" {
		t.Fatalf("A.B = %v", ab)
	}
	list := ab.LookupType("List`1")
	if len(list) != 1 || list[0].Display() != "A.B.List" || list[0].Assembly != asm {
		t.Fatalf("List`1 = %+v", list)
	}
	if got := list[0].Methods[0].Signature(); got != "A.B.List.Add(T)" {
		t.Fatalf("signature = %q", got)
	}
	if got := list[0].Nested[0].Display(); got != "A.B.List.Enumerator" {
		t.Fatalf("nested = %q", got)
	}
	var all []string
	for _, ty := range global.AllTypes() {
		all = append(all, ty.Display())
	}
	if diff := cmp.Diff([]string{"Root", "A.B.List", "A.B.List.Enumerator"}, all); diff != "" {
		t.Fatalf("AllTypes mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeIsStructural(t *testing.T) {
	a := FromImage(nil, testImage("A", metadata.TypeDef{Namespace: "System", Name: "Object", Kind: "class"}))
	b := FromImage(nil, testImage("B",
		metadata.TypeDef{Namespace: "System", Name: "String", Kind: "class"},
		metadata.TypeDef{Namespace: "System.IO", Name: "File", Kind: "class"},
	))
	merged := Merge(a.GlobalNamespace(), b.GlobalNamespace())
	if !merged.IsMerged() || len(merged.Constituents) != 2 {
		t.Fatal("expected merged namespace with two constituents")
	}
	sys := merged.Namespace("System")
	if sys == nil || !sys.IsMerged() {
		t.Fatal("System must merge")
	}
	if len(sys.LookupType("Object")) != 1 || len(sys.LookupType("String")) != 1 {
		t.Fatal("types from both assemblies must be visible")
	}
	if merged.LookupNamespace("System.IO") == nil {
		t.Fatal("System.IO missing")
	}
	if sys.QualifiedName() != "System" || merged.LookupNamespace("System.IO").QualifiedName() != "System.IO" {
		t.Fatal("qualified names must follow merged parents")
	}
	// inputs are untouched
	if a.GlobalNamespace().Namespace("System").LookupType("String") != nil {
		t.Fatal("merge must not mutate constituents")
	}
	if Merge(a.GlobalNamespace()) != a.GlobalNamespace() {
		t.Fatal("single part merge returns the part")
	}
}

func TestToImageRoundTrip(t *testing.T) {
	img := testImage("Lib",
		metadata.TypeDef{Name: "Root", Kind: "class", Public: true},
		metadata.TypeDef{Namespace: "N", Name: "T", Arity: 2, Kind: "struct",
			Methods: []metadata.MethodDef{{Name: "M", Static: true, Return: "int", Params: []string{"string[]"}}}},
	)
	got := ToImage(FromImage(nil, img))
	if diff := cmp.Diff(img, got); diff != "" {
		t.Fatalf("image mismatch (-want +got):\n%s", diff)
	}
}
