package decl

import (
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

// buildRoot builds the root namespace declaration contributed by one unit.
// The result depends only on the unit and naming.
func buildRoot(u *syntax.Unit, naming Naming) *symbols.Namespace {
	root := symbols.NewNamespace("", nil, nil)
	addNamespace(root, u, u.Root)
	if u.HasTopLevelStatements() {
		root.AddType(implicitContainer(u, naming))
	}
	return root
}

func addNamespace(ns *symbols.Namespace, u *syntax.Unit, decl *syntax.NamespaceDecl) {
	for _, td := range decl.Types {
		ns.AddType(typeFromDecl(u, td))
	}
	for _, child := range decl.Namespaces {
		addNamespace(ns.Path(child.Name), u, child)
	}
}

func typeFromDecl(u *syntax.Unit, td *syntax.TypeDecl) *symbols.Type {
	t := &symbols.Type{
		Name:     td.Name,
		Arity:    td.Arity,
		TypeKind: td.Kind.String(),
		Public:   td.Modifiers.Has(syntax.ModPublic),
		Partial:  td.Modifiers.Has(syntax.ModPartial),
		Decl:     td,
		Unit:     u,
	}
	for _, md := range td.Methods {
		t.AddMethod(methodFromDecl(u, md))
	}
	for _, nested := range td.Types {
		t.AddNested(typeFromDecl(u, nested))
	}
	return t
}

func methodFromDecl(u *syntax.Unit, md *syntax.MethodDecl) *symbols.Method {
	m := &symbols.Method{
		Name:   md.Name,
		Arity:  md.Arity,
		Static: md.Modifiers.Has(syntax.ModStatic),
		Async:  md.Modifiers.Has(syntax.ModAsync),
		Return: md.ReturnType.Text,
		Decl:   md,
		Unit:   u,
		Span:   md.NameSpan,
	}
	for _, p := range md.Params {
		m.Params = append(m.Params, symbols.Param{Type: p.Type.Text, Name: p.Name, Modifier: p.Modifier})
	}
	return m
}

// implicitContainer synthesizes the type holding top-level statements and its entry method.
func implicitContainer(u *syntax.Unit, naming Naming) *symbols.Type {
	t := &symbols.Type{
		Name:     naming.ContainerName(),
		TypeKind: syntax.TypeClass.String(),
		Implicit: true,
		Unit:     u,
	}
	async := len(u.TopLevel.Awaits) > 0
	ret := "void"
	switch {
	case async && u.TopLevel.ReturnsValue():
		ret = "Task<int>"
	case async:
		ret = "Task"
	case u.TopLevel.ReturnsValue():
		ret = "int"
	}
	t.AddMethod(&symbols.Method{
		Name:        SynthesizedMainName,
		Static:      true,
		Async:       async,
		Return:      ret,
		Params:      []symbols.Param{{Type: "string[]", Name: "args"}},
		Synthesized: true,
		Unit:        u,
		Span:        u.TopLevel.Span,
	})
	return t
}
