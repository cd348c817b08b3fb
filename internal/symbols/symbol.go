// Package symbols holds the assembly / module / namespace / type / method
// symbol graph shared by source and referenced assemblies.
//
// Symbols are immutable once built. Merged namespaces are new values that
// point at their constituents; nothing is ever rewired in place.
package symbols

import (
	"corvid/internal/metadata"
	"corvid/internal/source"
	"corvid/internal/syntax"
)

// Kind classifies a symbol.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAssembly
	KindModule
	KindNamespace
	KindType
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindAssembly:
		return "assembly"
	case KindModule:
		return "module"
	case KindNamespace:
		return "namespace"
	case KindType:
		return "type"
	case KindMethod:
		return "method"
	default:
		return "invalid"
	}
}

// Symbol is implemented by every symbol kind.
type Symbol interface {
	Kind() Kind
	// Display is the fully qualified name used in diagnostics and events.
	Display() string
}

// Assembly is a referenced or in-progress assembly.
type Assembly struct {
	Identity metadata.Identity
	// Source is set for the assembly being compiled.
	Source bool
	Module *Module
	// Reference is the first reference that resolved to this assembly (nil for source).
	Reference *metadata.Reference
	// Image is nil for the source assembly.
	Image *metadata.Image
	// References are the resolved assemblies this one depends on, in dependency order.
	References []*Assembly
}

func (a *Assembly) Kind() Kind      { return KindAssembly }
func (a *Assembly) Display() string { return a.Identity.Name }

// GlobalNamespace returns the root namespace of the assembly's module.
func (a *Assembly) GlobalNamespace() *Namespace {
	if a == nil || a.Module == nil {
		return nil
	}
	return a.Module.Global
}

// Module is the single module of an assembly.
type Module struct {
	Name     string
	Assembly *Assembly
	Global   *Namespace
}

func (m *Module) Kind() Kind      { return KindModule }
func (m *Module) Display() string { return m.Name }

// Method is a method symbol.
type Method struct {
	Name       string
	Arity      int
	Static     bool
	Async      bool
	Return     string
	Params     []Param
	Containing *Type
	// Synthesized is set for compiler generated methods (the top-level statements entry point).
	Synthesized bool
	// Source-only.
	Decl *syntax.MethodDecl
	Unit *syntax.Unit
	Span source.Span
}

type Param struct {
	Type     string
	Name     string
	Modifier string
}

func (m *Method) Kind() Kind { return KindMethod }

func (m *Method) Display() string {
	if m.Containing == nil {
		return m.Name
	}
	return m.Containing.Display() + "." + m.Name
}

// Signature renders "Name(T1, T2)" for diagnostics.
func (m *Method) Signature() string {
	s := m.Display() + "("
	for i, p := range m.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Type
	}
	return s + ")"
}
