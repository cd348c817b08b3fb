package symbols

import (
	"corvid/internal/syntax"
)

// Type is a named type symbol.
type Type struct {
	Name       string
	Arity      int
	TypeKind   string
	Public     bool
	Partial    bool
	Namespace  *Namespace
	Containing *Type
	Assembly   *Assembly
	Methods    []*Method
	Nested     []*Type
	// Implicit marks the compiler generated container of top-level statements.
	Implicit bool
	// Source-only.
	Decl *syntax.TypeDecl
	Unit *syntax.Unit
}

func (t *Type) Kind() Kind { return KindType }

// MetadataName appends the arity suffix.
func (t *Type) MetadataName() string { return syntax.MetadataName(t.Name, t.Arity) }

// Display is the dotted fully qualified name.
func (t *Type) Display() string {
	if t.Containing != nil {
		return t.Containing.Display() + "." + t.Name
	}
	if t.Namespace != nil {
		if q := t.Namespace.QualifiedName(); q != "" {
			return q + "." + t.Name
		}
	}
	return t.Name
}

// AddMethod attaches m. Only builders call it.
func (t *Type) AddMethod(m *Method) {
	m.Containing = t
	t.Methods = append(t.Methods, m)
}

// AddNested attaches a nested type. Only builders call it.
func (t *Type) AddNested(n *Type) {
	n.Containing = t
	n.Namespace = t.Namespace
	t.Nested = append(t.Nested, n)
}

// MethodsNamed returns the methods called name, in declaration order.
func (t *Type) MethodsNamed(name string) []*Method {
	var out []*Method
	for _, m := range t.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func (t *Type) appendAll(out []*Type) []*Type {
	out = append(out, t)
	for _, n := range t.Nested {
		out = n.appendAll(out)
	}
	return out
}
