package symbols

import (
	"corvid/internal/metadata"
)

// FromImage builds the symbol graph of a referenced assembly.
func FromImage(ref *metadata.Reference, img *metadata.Image) *Assembly {
	asm := &Assembly{Identity: img.Identity, Reference: ref, Image: img}
	global := NewNamespace("", nil, asm)
	asm.Module = &Module{Name: img.Identity.Name + ".cvm", Assembly: asm, Global: global}
	for i := range img.Types {
		def := &img.Types[i]
		global.Path(def.Namespace).AddType(typeFromDef(asm, def))
	}
	return asm
}

func typeFromDef(asm *Assembly, def *metadata.TypeDef) *Type {
	t := &Type{
		Name:     def.Name,
		Arity:    def.Arity,
		TypeKind: def.Kind,
		Public:   def.Public,
		Assembly: asm,
	}
	for _, md := range def.Methods {
		m := &Method{
			Name:   md.Name,
			Arity:  md.Arity,
			Static: md.Static,
			Async:  md.Async,
			Return: md.Return,
		}
		for _, p := range md.Params {
			m.Params = append(m.Params, Param{Type: p})
		}
		t.AddMethod(m)
	}
	for i := range def.Nested {
		t.AddNested(typeFromDef(asm, &def.Nested[i]))
	}
	return t
}

// ToImage renders an assembly's types back into image form (used by the emitter).
func ToImage(asm *Assembly) *metadata.Image {
	img := &metadata.Image{Schema: metadata.ImageSchema, Identity: asm.Identity}
	for _, dep := range asm.References {
		img.References = append(img.References, dep.Identity)
	}
	asm.GlobalNamespace().Walk(func(ns *Namespace) bool {
		for _, t := range ns.Types() {
			img.Types = append(img.Types, defFromType(t, ns.QualifiedName()))
		}
		return true
	})
	return img
}

func defFromType(t *Type, ns string) metadata.TypeDef {
	def := metadata.TypeDef{Namespace: ns, Name: t.Name, Arity: t.Arity, Kind: t.TypeKind, Public: t.Public}
	for _, m := range t.Methods {
		md := metadata.MethodDef{Name: m.Name, Arity: m.Arity, Static: m.Static, Async: m.Async, Return: m.Return}
		for _, p := range m.Params {
			md.Params = append(md.Params, p.Type)
		}
		def.Methods = append(def.Methods, md)
	}
	for _, n := range t.Nested {
		nd := defFromType(n, "")
		def.Nested = append(def.Nested, nd)
	}
	return def
}
