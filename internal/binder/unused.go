package binder

import (
	"context"
	"fmt"

	"corvid/internal/diag"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

// UnusedUsings reports the using directives of u that no name mentioned in u needs.
// Unresolved and duplicate directives are left to the declaration checks; global
// usings serve every unit and are never reported.
func UnusedUsings(ctx context.Context, env Env, u *syntax.Unit) ([]*diag.Diagnostic, error) {
	global, err := env.GlobalNamespace(ctx)
	if err != nil {
		return nil, err
	}
	c := newChecker(ctx, env, u, global)
	var visit func(prefix string, ns *syntax.NamespaceDecl) error
	visit = func(prefix string, ns *syntax.NamespaceDecl) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		full := join(prefix, ns.Name)
		seen := make(map[string]bool, len(ns.Usings))
		for _, us := range ns.Usings {
			key := usingKey(us)
			if seen[key] {
				continue
			}
			seen[key] = true
			target, err := c.resolveUsing(full, us)
			if err != nil {
				return err
			}
			if target.empty() || c.used(us, target) {
				continue
			}
			diag.ReportDefault(c.rep, diag.CmpUnnecessaryUsing, us.Span,
				fmt.Sprintf("using directive for '%s' is unnecessary", us.Path)).Emit()
		}
		for _, child := range ns.Namespaces {
			if err := visit(full, child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit("", u.Root); err != nil {
		return nil, err
	}
	return c.bag.Items(), nil
}

func (c *checker) used(us syntax.Using, target usingTarget) bool {
	if us.Alias != "" {
		return c.unit.Mentions(us.Alias)
	}
	if target.typ != nil {
		return typeMembersMentioned(c.unit, target.typ)
	}
	for _, t := range target.ns.Types() {
		if c.unit.Mentions(t.Name) {
			return true
		}
	}
	return false
}

func typeMembersMentioned(u *syntax.Unit, t *symbols.Type) bool {
	for _, m := range t.Methods {
		if u.Mentions(m.Name) {
			return true
		}
	}
	for _, n := range t.Nested {
		if u.Mentions(n.Name) {
			return true
		}
	}
	return false
}
