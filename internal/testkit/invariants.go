package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"corvid/internal/source"
	"corvid/internal/syntax"
)

// CheckUnitInvariants runs a minimal set of span invariants on a parsed unit:
// 1) the unit is well formed (file and root namespace present)
// 2) every span attached to the unit points into the unit's file and lies within its content
// 3) every diagnostic span is either NoSpan or satisfies (2)
func CheckUnitInvariants(u *syntax.Unit) error {
	if !u.WellFormed() {
		return fmt.Errorf("unit is not well formed")
	}
	size, err := safecast.Conv[uint32](len(u.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	check := func(what string, sp source.Span) error {
		if sp.IsNone() {
			return nil
		}
		if sp.File != u.File.ID {
			return fmt.Errorf("%s span points to different file id: got=%d want=%d", what, sp.File, u.File.ID)
		}
		if sp.Start > sp.End {
			return fmt.Errorf("%s span is inverted: %v", what, sp)
		}
		if sp.End > size {
			return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, size)
		}
		return nil
	}

	for _, d := range u.Diagnostics {
		if err := check("diagnostic "+d.Code.ID(), d.Primary); err != nil {
			return err
		}
	}
	for _, dir := range u.Directives {
		if err := check("directive", dir.Span); err != nil {
			return err
		}
	}
	for _, ea := range u.ExternAliases {
		if err := check("extern alias", ea.Span); err != nil {
			return err
		}
	}
	for _, us := range u.GlobalUsings {
		if err := check("global using", us.Span); err != nil {
			return err
		}
	}
	if u.TopLevel != nil {
		if err := check("top-level body", u.TopLevel.Span); err != nil {
			return err
		}
	}
	return checkNamespace(u.Root, check)
}

func checkNamespace(ns *syntax.NamespaceDecl, check func(string, source.Span) error) error {
	if ns == nil {
		return fmt.Errorf("nil namespace")
	}
	for _, us := range ns.Usings {
		if err := check("using", us.Span); err != nil {
			return err
		}
	}
	for _, t := range ns.Types {
		if err := checkType(t, check); err != nil {
			return err
		}
	}
	for _, inner := range ns.Namespaces {
		if err := check("namespace "+inner.Name, inner.Span); err != nil {
			return err
		}
		if err := checkNamespace(inner, check); err != nil {
			return err
		}
	}
	return nil
}

func checkType(t *syntax.TypeDecl, check func(string, source.Span) error) error {
	if err := check("type "+t.Name, t.Span); err != nil {
		return err
	}
	for _, m := range t.Methods {
		if err := check("method "+m.Name, m.Span); err != nil {
			return err
		}
		if m.Body != nil {
			if err := check("body of "+m.Name, m.Body.Span); err != nil {
				return err
			}
		}
	}
	for _, nested := range t.Types {
		if err := checkType(nested, check); err != nil {
			return err
		}
	}
	return nil
}
