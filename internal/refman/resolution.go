package refman

import (
	"slices"
	"sort"

	"corvid/internal/diag"
	"corvid/internal/metadata"
	"corvid/internal/symbols"
)

// Resolution is the bound reference set of one Manager.
type Resolution struct {
	// Assemblies are the distinct referenced assemblies, dependencies first.
	Assemblies []*symbols.Assembly
	// Global are the assemblies merged into the global namespace (no alias, or the "global" alias).
	Global []*symbols.Assembly
	// Corlib is the referenced assembly with no references that defines System.Object.
	Corlib *symbols.Assembly
	// CircularSelf is set when some reference leads back to the assembly being compiled.
	CircularSelf bool
	// Diagnostics are Declare-stage diagnostics (REF codes).
	Diagnostics []*diag.Diagnostic

	byRef         map[*metadata.Reference]*symbols.Assembly
	aliases       map[string][]*symbols.Assembly
	directiveRefs []*metadata.Reference
	excluded      []*symbols.Assembly
}

// AssemblyFor returns the assembly a reference resolved to. Duplicate identities share one assembly.
func (r *Resolution) AssemblyFor(ref *metadata.Reference) (*symbols.Assembly, bool) {
	a, ok := r.byRef[ref]
	return a, ok
}

// Aliases lists the extern aliases defined by the references, sorted.
func (r *Resolution) Aliases() []string {
	out := make([]string, 0, len(r.aliases))
	for a := range r.aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// AliasAssemblies returns the assemblies reachable through alias.
func (r *Resolution) AliasAssemblies(alias string) []*symbols.Assembly {
	return slices.Clone(r.aliases[alias])
}

// DirectiveReferences returns references produced by `#r` directives, in unit order.
func (r *Resolution) DirectiveReferences() []*metadata.Reference {
	return slices.Clone(r.directiveRefs)
}

// IsExcluded reports whether asm was kept out of the global namespace because it is
// an earlier build of the assembly being compiled.
func (r *Resolution) IsExcluded(asm *symbols.Assembly) bool {
	return slices.Contains(r.excluded, asm)
}

// GlobalNamespaces returns the root namespaces merged into the compilation's global namespace.
func (r *Resolution) GlobalNamespaces() []*symbols.Namespace {
	out := make([]*symbols.Namespace, 0, len(r.Global))
	for _, a := range r.Global {
		out = append(out, a.GlobalNamespace())
	}
	return out
}
