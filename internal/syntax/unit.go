package syntax

import (
	"slices"
	"strconv"

	"corvid/internal/diag"
	"corvid/internal/source"
)

// Unit is one parsed source file.
type Unit struct {
	File *source.File
	// Root is the compilation-unit level namespace (Name == "").
	Root          *NamespaceDecl
	Directives    []Directive
	ExternAliases []ExternAlias
	// GlobalUsings are `global using` directives; they apply to every unit.
	GlobalUsings []Using
	// TopLevel summarises top-level statements; nil when the unit has none.
	TopLevel    *Body
	Pragmas     *PragmaTable
	Diagnostics []*diag.Diagnostic

	names map[string]struct{}
}

// Path returns the file path or "" for a unit without a file.
func (u *Unit) Path() string {
	if u == nil || u.File == nil {
		return ""
	}
	return u.File.Path
}

// FileID returns the unit's file id or source.NoFileID.
func (u *Unit) FileID() source.FileID {
	if u == nil || u.File == nil {
		return source.NoFileID
	}
	return u.File.ID
}

// WellFormed reports whether the unit has a file and a root node.
func (u *Unit) WellFormed() bool {
	return u != nil && u.File != nil && u.Root != nil
}

// HasTopLevelStatements reports whether the unit carries an implicit executable container.
func (u *Unit) HasTopLevelStatements() bool {
	return u.TopLevel != nil
}

// HasReferenceDirectives reports whether the unit carries #r or #load directives.
// Adding or removing such a unit invalidates reference resolution.
func (u *Unit) HasReferenceDirectives() bool {
	for _, d := range u.Directives {
		if d.Kind == DirReference || d.Kind == DirLoad {
			return true
		}
	}
	return false
}

// ReferenceDirectives returns the #r and #load directives in source order.
func (u *Unit) ReferenceDirectives() []Directive {
	var out []Directive
	for _, d := range u.Directives {
		if d.Kind == DirReference || d.Kind == DirLoad {
			out = append(out, d)
		}
	}
	return out
}

// Mentions reports whether an identifier with this text occurs in a type
// reference, base list, body or top-level statement of the unit.
func (u *Unit) Mentions(name string) bool {
	_, ok := u.names[name]
	return ok
}

// MentionedNames returns the mentioned identifiers, sorted.
func (u *Unit) MentionedNames() []string {
	out := make([]string, 0, len(u.names))
	for n := range u.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// IsSuppressed implements diag.Suppressor for diagnostics located in this unit.
func (u *Unit) IsSuppressed(code diag.Code, at source.Span) bool {
	if u == nil || u.Pragmas == nil || at.File != u.FileID() {
		return false
	}
	return u.Pragmas.IsSuppressed(code, at.Start)
}

// Using is a using directive.
type Using struct {
	// Path is the dotted namespace or type name.
	Path string
	// Alias is set for `using X = A.B;`.
	Alias  string
	Static bool
	Global bool
	Span   source.Span
	// PathSpan covers the dotted name only.
	PathSpan source.Span
}

// ExternAlias is `extern alias X;`.
type ExternAlias struct {
	Name string
	Span source.Span
}

// NamespaceDecl is a namespace block, a file-scoped namespace, or the unit root.
type NamespaceDecl struct {
	// Name is relative to the enclosing namespace and may be dotted.
	Name       string
	Span       source.Span
	NameSpan   source.Span
	FileScoped bool
	Usings     []Using
	Namespaces []*NamespaceDecl
	Types      []*TypeDecl
}

type TypeKind uint8

const (
	TypeClass TypeKind = iota
	TypeStruct
	TypeInterface
	TypeRecord
	TypeRecordStruct
	TypeEnum
)

var typeKindNames = [...]string{
	TypeClass:        "class",
	TypeStruct:       "struct",
	TypeInterface:    "interface",
	TypeRecord:       "record",
	TypeRecordStruct: "record struct",
	TypeEnum:         "enum",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "type"
}

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModInternal
	ModProtected
	ModStatic
	ModAsync
	ModAbstract
	ModVirtual
	ModOverride
	ModSealed
	ModPartial
	ModExtern
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// TypeDecl is a class, struct, interface, record or enum declaration.
type TypeDecl struct {
	Kind      TypeKind
	Name      string
	Arity     int
	Modifiers Modifiers
	Span      source.Span
	NameSpan  source.Span
	Bases     []TypeRef
	Methods   []*MethodDecl
	Types     []*TypeDecl
}

// MetadataName returns the name with generic arity suffix, e.g. "List`1".
func (t *TypeDecl) MetadataName() string {
	return MetadataName(t.Name, t.Arity)
}

// MethodDecl is a method signature plus a body summary.
type MethodDecl struct {
	Name       string
	Arity      int
	Modifiers  Modifiers
	ReturnType TypeRef
	Params     []Param
	Span       source.Span
	NameSpan   source.Span
	// Body is nil for abstract/extern/interface methods without a body.
	Body *Body
	// ExpressionBodied is set for `=> expr;` methods.
	ExpressionBodied bool
}

// IsVoid reports whether the method returns void.
func (m *MethodDecl) IsVoid() bool { return m.ReturnType.IsVoid() }

type Param struct {
	Type TypeRef
	Name string
	// Modifier is "ref", "out", "in", "params", "this" or "".
	Modifier string
	Span     source.Span
}

// TypeRef is a syntactic type reference.
type TypeRef struct {
	// Text is the normalised spelling without spaces, e.g. "Task<int>", "string[]", "int?".
	Text string
	// Name is the rightmost simple name ("Task" for "System.Threading.Tasks.Task<int>").
	Name string
	// Alias is the extern alias qualifier of `X::N.T`.
	Alias     string
	Args      []TypeRef
	Nullable  bool
	ArrayRank int
	Span      source.Span
}

// IsVoid reports whether the reference is the `void` keyword.
func (t TypeRef) IsVoid() bool { return t.Text == "void" }

// IsZero reports whether the reference is absent.
func (t TypeRef) IsZero() bool { return t.Text == "" }

// Body summarises the tokens of a method body or of the top-level statements.
type Body struct {
	Span        source.Span
	Idents      []Ident
	Returns     []Return
	Awaits      []source.Span
	NullCompare []NullComparison
	// Throws is set when a statement directly in the body begins with `throw`.
	Throws bool
}

// ReturnsValue reports whether some return statement carries an expression.
func (b *Body) ReturnsValue() bool {
	for _, r := range b.Returns {
		if r.HasValue {
			return true
		}
	}
	return false
}

type Ident struct {
	Name string
	Span source.Span
}

type Return struct {
	Span     source.Span
	HasValue bool
}

// NullComparison is `x == null`, `x != null` or their mirrored forms with a simple name operand.
type NullComparison struct {
	Operand string
	Equal   bool
	Span    source.Span
}

// MetadataName appends the generic arity suffix.
func MetadataName(name string, arity int) string {
	if arity <= 0 {
		return name
	}
	return name + "`" + strconv.Itoa(arity)
}
