package binder

import (
	"fmt"
	"strings"

	"corvid/internal/diag"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

func (c *checker) declarations() error {
	if err := c.externAliases(); err != nil {
		return err
	}
	if err := c.usings(); err != nil {
		return err
	}
	c.walkNamespace("", c.unit.Root)
	c.topLevel()
	return nil
}

func (c *checker) externAliases() error {
	for _, ea := range c.unit.ExternAliases {
		ns, err := c.env.ExternAlias(c.ctx, ea.Name)
		if err != nil {
			return err
		}
		if ns == nil {
			diag.ReportError(c.rep, diag.DclUnknownExternAlias, ea.Span,
				fmt.Sprintf("extern alias '%s' was not specified by any reference", ea.Name)).Emit()
		}
	}
	return nil
}

// usings checks duplicates per scope and resolvability of every using directive.
func (c *checker) usings() error {
	if err := c.usingScope("", c.unit.GlobalUsings); err != nil {
		return err
	}
	var visit func(prefix string, ns *syntax.NamespaceDecl) error
	visit = func(prefix string, ns *syntax.NamespaceDecl) error {
		full := join(prefix, ns.Name)
		if err := c.usingScope(full, ns.Usings); err != nil {
			return err
		}
		for _, child := range ns.Namespaces {
			if err := visit(full, child); err != nil {
				return err
			}
		}
		return nil
	}
	return visit("", c.unit.Root)
}

func (c *checker) usingScope(scope string, us []syntax.Using) error {
	seen := make(map[string]syntax.Using, len(us))
	for _, u := range us {
		key := usingKey(u)
		if first, dup := seen[key]; dup {
			diag.ReportWarning(c.rep, diag.DclDuplicateUsing, u.Span,
				fmt.Sprintf("the using directive for '%s' appeared previously in this namespace", u.Path)).
				WithNote(first.Span, "previous directive").Emit()
			continue
		}
		seen[key] = u
		target, err := c.resolveUsing(scope, u)
		if err != nil {
			return err
		}
		if target.empty() {
			diag.ReportError(c.rep, diag.DclUnresolvedUsing, u.PathSpan,
				fmt.Sprintf("the type or namespace name '%s' could not be found", u.Path)).Emit()
		}
	}
	return nil
}

func usingKey(u syntax.Using) string {
	var sb strings.Builder
	if u.Static {
		sb.WriteString("static ")
	}
	if u.Alias != "" {
		sb.WriteString(u.Alias + "=")
	}
	sb.WriteString(u.Path)
	return sb.String()
}

func join(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	}
	return prefix + "." + name
}

func (c *checker) walkNamespace(prefix string, ns *syntax.NamespaceDecl) {
	full := join(prefix, ns.Name)
	for _, td := range ns.Types {
		c.checkTopType(full, td)
	}
	for _, child := range ns.Namespaces {
		c.walkNamespace(full, child)
	}
}

// checkTopType reports td when an earlier source declaration with the same metadata
// name exists in the same namespace and the two are not both partial.
func (c *checker) checkTopType(ns string, td *syntax.TypeDecl) {
	if scope := c.global.LookupNamespace(ns); scope != nil {
		for _, other := range scope.LookupType(td.MetadataName()) {
			if other.Unit == nil {
				continue
			}
			if other.Decl == td {
				break
			}
			if !(td.Modifiers.Has(syntax.ModPartial) && other.Partial) {
				diag.ReportError(c.rep, diag.DclDuplicateType, td.NameSpan,
					fmt.Sprintf("the namespace '%s' already contains a definition for '%s'", nsDisplay(ns), td.Name)).
					WithNote(other.Decl.NameSpan, "previous definition").Emit()
			}
			break
		}
	}
	c.checkMembers(td)
}

func (c *checker) checkMembers(td *syntax.TypeDecl) {
	nested := make(map[string]*syntax.TypeDecl, len(td.Types))
	for _, n := range td.Types {
		key := n.MetadataName()
		if first, dup := nested[key]; dup && !(first.Modifiers.Has(syntax.ModPartial) && n.Modifiers.Has(syntax.ModPartial)) {
			diag.ReportError(c.rep, diag.DclDuplicateType, n.NameSpan,
				fmt.Sprintf("the type '%s' already contains a definition for '%s'", td.Name, n.Name)).
				WithNote(first.NameSpan, "previous definition").Emit()
		} else if !dup {
			nested[key] = n
		}
		c.checkMembers(n)
	}

	methods := make(map[string]*syntax.MethodDecl, len(td.Methods))
	for _, m := range td.Methods {
		key := methodKey(m)
		if first, dup := methods[key]; dup {
			diag.ReportError(c.rep, diag.DclDuplicateMethod, m.NameSpan,
				fmt.Sprintf("type '%s' already defines a member called '%s' with the same parameter types", td.Name, m.Name)).
				WithNote(first.NameSpan, "previous definition").Emit()
			continue
		}
		methods[key] = m
	}
}

func methodKey(m *syntax.MethodDecl) string {
	parts := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		t := p.Type.Text
		if p.Modifier == "ref" || p.Modifier == "out" || p.Modifier == "in" {
			t = "&" + t
		}
		parts = append(parts, t)
	}
	return syntax.MetadataName(m.Name, m.Arity) + "(" + strings.Join(parts, ",") + ")"
}

// topLevel reports the unit when an earlier unit already has top-level statements.
func (c *checker) topLevel() {
	if !c.unit.HasTopLevelStatements() {
		return
	}
	mine, ok := c.env.Ordinal(c.unit)
	if !ok {
		return
	}
	for _, other := range c.env.Units() {
		if other == c.unit || !other.HasTopLevelStatements() {
			continue
		}
		if ord, ok := c.env.Ordinal(other); ok && ord < mine {
			diag.ReportError(c.rep, diag.DclMultipleTopLevel, c.unit.TopLevel.Span,
				"only one compilation unit can have top-level statements").
				WithNote(other.TopLevel.Span, "top-level statements also appear here").Emit()
			return
		}
	}
}

func nsDisplay(ns string) string {
	if ns == "" {
		return "<global namespace>"
	}
	return ns
}

// usingTarget is what a using directive names.
type usingTarget struct {
	ns  *symbols.Namespace
	typ *symbols.Type
}

func (t usingTarget) empty() bool { return t.ns == nil && t.typ == nil }

// resolveUsing looks the path up relative to the enclosing namespaces, innermost first,
// then from the root. `X::A.B` goes through the extern alias X; `global::` is the root.
func (c *checker) resolveUsing(scope string, u syntax.Using) (usingTarget, error) {
	root := c.global
	path := u.Path
	if alias, rest, ok := strings.Cut(path, "::"); ok {
		path = rest
		if alias != "global" {
			ns, err := c.env.ExternAlias(c.ctx, alias)
			if err != nil || ns == nil {
				return usingTarget{}, err
			}
			root = ns
		}
		return lookup(root, path, u.Static || u.Alias != ""), nil
	}
	for s := scope; ; {
		base := root.LookupNamespace(s)
		if base != nil {
			if t := lookup(base, path, u.Static || u.Alias != ""); !t.empty() {
				return t, nil
			}
		}
		if s == "" {
			return usingTarget{}, nil
		}
		if i := strings.LastIndexByte(s, '.'); i >= 0 {
			s = s[:i]
		} else {
			s = ""
		}
	}
}

// lookup finds a namespace at path, or (allowTypes) a type whose container is path's prefix.
func lookup(base *symbols.Namespace, path string, allowTypes bool) usingTarget {
	if ns := base.LookupNamespace(path); ns != nil {
		return usingTarget{ns: ns}
	}
	if !allowTypes {
		return usingTarget{}
	}
	container, name := "", path
	head := path
	if lt := strings.IndexByte(path, '<'); lt >= 0 {
		head = path[:lt]
	}
	if i := strings.LastIndexByte(head, '.'); i >= 0 {
		container, name = path[:i], path[i+1:]
	}
	name, arity := genericName(name)
	ns := base.LookupNamespace(container)
	if ns == nil {
		return usingTarget{}
	}
	if ts := ns.LookupType(syntax.MetadataName(name, arity)); len(ts) > 0 {
		return usingTarget{typ: ts[0]}
	}
	return usingTarget{}
}

// genericName splits "List<int,string>" into ("List", 2).
func genericName(s string) (string, int) {
	i := strings.IndexByte(s, '<')
	if i < 0 {
		return s, 0
	}
	depth, arity := 0, 1
	for _, r := range s[i:] {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 1 {
				arity++
			}
		}
	}
	return s[:i], arity
}
