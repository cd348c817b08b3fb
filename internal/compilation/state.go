package compilation

import (
	"context"
	"fmt"
	"strings"

	"corvid/internal/binder"
	"corvid/internal/diag"
	"corvid/internal/lazy"
	"corvid/internal/metadata"
	"corvid/internal/refman"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
	"corvid/internal/trace"
)

// slots is the derived state of one snapshot. Every field is install-once.
type slots struct {
	features    lazy.Cell[featureSet]
	sourceNS    lazy.Cell[*symbols.Namespace]
	sourceAsm   lazy.Cell[*symbols.Assembly]
	global      lazy.Cell[*symbols.Namespace]
	imports     lazy.Cell[[]string]
	entry       lazy.Cell[*EntryPoint]
	scriptClass lazy.Cell[*symbols.Type]
	hostObject  lazy.Cell[*symbols.Type]
	special     lazy.Memo[SpecialType, *symbols.Type]
	units       lazy.Memo[*syntax.Unit, *unitSlots]
}

// unitSlots is per-unit derived state.
type unitSlots struct {
	declare lazy.Cell[binder.Result]
	compile lazy.Cell[binder.Result]
	unused  lazy.Cell[[]*diag.Diagnostic]
	// announced is won by exactly one reader, which publishes SymbolDeclared events.
	announced lazy.Cell[bool]
}

func newSlots() *slots { return &slots{} }

func (s *slots) unit(u *syntax.Unit) *unitSlots {
	return s.units.Get(u, func(*syntax.Unit) *unitSlots { return &unitSlots{} })
}

type featureSet struct {
	features    Features
	diagnostics []*diag.Diagnostic
}

// Features returns the parsed feature flags, parsed once per snapshot.
func (c *Compilation) Features() Features {
	return c.featureSet().features
}

func (c *Compilation) featureSet() featureSet {
	return c.lz.features.Get(func() featureSet {
		f, ds := ParseFeatures(c.options.Features)
		return featureSet{features: f, diagnostics: ds}
	})
}

// ResolvedReferences binds the metadata references (once per reference manager).
func (c *Compilation) ResolvedReferences(ctx context.Context) (*refman.Resolution, error) {
	res, err := c.manager.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve references: %w", err)
	}
	return res, nil
}

// ExternAlias returns the namespace visible through an extern alias, nil when no reference has it.
func (c *Compilation) ExternAlias(ctx context.Context, alias string) (*symbols.Namespace, error) {
	return c.manager.ExternAlias(ctx, alias)
}

// SourceNamespace merges the root declarations of all units, in ordinal order.
func (c *Compilation) SourceNamespace(ctx context.Context) (*symbols.Namespace, error) {
	return c.lz.sourceNS.GetErr(func() (*symbols.Namespace, error) {
		units := c.Units()
		roots := make([]*symbols.Namespace, 0, len(units))
		for _, u := range units {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e, ok := c.decls.Entry(u)
			if !ok {
				panic(fmt.Errorf("unit %q has no declaration entry", u.Path()))
			}
			roots = append(roots, e.Root())
		}
		return symbols.Merge(roots...), nil
	})
}

// SourceAssembly is the assembly being compiled.
func (c *Compilation) SourceAssembly(ctx context.Context) (*symbols.Assembly, error) {
	return c.lz.sourceAsm.GetErr(func() (*symbols.Assembly, error) {
		ns, err := c.SourceNamespace(ctx)
		if err != nil {
			return nil, err
		}
		res, err := c.ResolvedReferences(ctx)
		if err != nil {
			return nil, err
		}
		asm := &symbols.Assembly{
			Identity: metadata.Identity{Name: c.name, Version: c.options.Version},
			Source:   true,
		}
		asm.Module = &symbols.Module{Name: c.name, Assembly: asm, Global: ns}
		for _, ref := range res.Assemblies {
			if !res.IsExcluded(ref) {
				asm.References = append(asm.References, ref)
			}
		}
		return asm, nil
	})
}

// GlobalNamespace merges source declarations with every unaliased referenced assembly.
// Assemblies reachable only through an extern alias stay out of it.
func (c *Compilation) GlobalNamespace(ctx context.Context) (*symbols.Namespace, error) {
	return c.lz.global.GetErr(func() (*symbols.Namespace, error) {
		span, ctx := trace.Start(c.traced(ctx), trace.ScopeStage, "global-namespace")
		defer span.End("")
		ns, err := c.SourceNamespace(ctx)
		if err != nil {
			return nil, err
		}
		res, err := c.ResolvedReferences(ctx)
		if err != nil {
			return nil, err
		}
		parts := append([]*symbols.Namespace{ns}, res.GlobalNamespaces()...)
		return symbols.Merge(parts...), nil
	})
}

// GlobalImports are the namespaces imported into every unit: option usings, then
// `global using` directives in ordinal order, then the predecessor submission's imports.
func (c *Compilation) GlobalImports(ctx context.Context) ([]string, error) {
	return c.lz.imports.GetErr(func() ([]string, error) {
		seen := make(map[string]bool)
		var out []string
		add := func(ns string) {
			ns = strings.TrimSpace(ns)
			if ns != "" && !seen[ns] {
				seen[ns] = true
				out = append(out, ns)
			}
		}
		for _, ns := range c.options.Usings {
			add(ns)
		}
		for _, u := range c.Units() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, us := range u.GlobalUsings {
				if us.Alias == "" && !us.Static {
					add(us.Path)
				}
			}
		}
		if c.previous != nil {
			prev, err := c.previous.GlobalImports(ctx)
			if err != nil {
				return nil, err
			}
			for _, ns := range prev {
				add(ns)
			}
		}
		return out, nil
	})
}

// ScriptClass is the type holding a script's top-level code, nil outside scripts
// or when no unit has top-level statements.
func (c *Compilation) ScriptClass(ctx context.Context) (*symbols.Type, error) {
	return c.lz.scriptClass.GetErr(func() (*symbols.Type, error) {
		if c.options.OutputKind != OutputScript {
			return nil, nil
		}
		ns, err := c.SourceNamespace(ctx)
		if err != nil {
			return nil, err
		}
		return implicitContainer(ns), nil
	})
}

// HostObjectType resolves Options.HostObjectType in the global namespace; nil when unset or missing.
func (c *Compilation) HostObjectType(ctx context.Context) (*symbols.Type, error) {
	return c.lz.hostObject.GetErr(func() (*symbols.Type, error) {
		if c.options.HostObjectType == "" {
			return nil, nil
		}
		global, err := c.GlobalNamespace(ctx)
		if err != nil {
			return nil, err
		}
		return findType(global, c.options.HostObjectType), nil
	})
}

// SpecialType is a well-known type the language relies on.
type SpecialType uint8

const (
	SpecialObject SpecialType = iota
	SpecialString
	SpecialInt32
	SpecialVoid
	SpecialBoolean
	SpecialTask
	SpecialTaskOfT
)

var specialTypes = [...]struct{ ns, name string }{
	SpecialObject:  {"System", "Object"},
	SpecialString:  {"System", "String"},
	SpecialInt32:   {"System", "Int32"},
	SpecialVoid:    {"System", "Void"},
	SpecialBoolean: {"System", "Boolean"},
	SpecialTask:    {"System.Threading.Tasks", "Task"},
	SpecialTaskOfT: {"System.Threading.Tasks", "Task`1"},
}

func (s SpecialType) String() string {
	if int(s) < len(specialTypes) {
		return specialTypes[s].ns + "." + specialTypes[s].name
	}
	return fmt.Sprintf("SpecialType(%d)", s)
}

// SpecialType looks the type up in the core library, falling back to the global
// namespace when no reference qualifies as corlib. Missing types yield nil.
func (c *Compilation) SpecialType(ctx context.Context, kind SpecialType) (*symbols.Type, error) {
	if int(kind) >= len(specialTypes) {
		return nil, fmt.Errorf("unknown special type %d", kind)
	}
	res, err := c.ResolvedReferences(ctx)
	if err != nil {
		return nil, err
	}
	global, err := c.GlobalNamespace(ctx)
	if err != nil {
		return nil, err
	}
	return c.lz.special.Get(kind, func(kind SpecialType) *symbols.Type {
		root := global
		if res.Corlib != nil {
			root = res.Corlib.GlobalNamespace()
		}
		want := specialTypes[kind]
		ns := root.LookupNamespace(want.ns)
		if ns == nil {
			return nil
		}
		if ts := ns.LookupType(want.name); len(ts) > 0 {
			return ts[0]
		}
		return nil
	}), nil
}

// findType resolves "A.B.T" (or "A.B.T`1", or a nested "A.Outer.T") to the first type with that name.
func findType(global *symbols.Namespace, dotted string) *symbols.Type {
	if t := findTopType(global, dotted); t != nil {
		return t
	}
	i := strings.LastIndexByte(dotted, '.')
	if i < 0 {
		return nil
	}
	outer := findType(global, dotted[:i])
	if outer == nil {
		return nil
	}
	for _, n := range outer.Nested {
		if n.MetadataName() == dotted[i+1:] || n.Name == dotted[i+1:] {
			return n
		}
	}
	return nil
}

func findTopType(global *symbols.Namespace, dotted string) *symbols.Type {
	nsPath, name := "", dotted
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		nsPath, name = dotted[:i], dotted[i+1:]
	}
	if ns := global.LookupNamespace(nsPath); ns != nil {
		if ts := ns.LookupType(name); len(ts) > 0 {
			return ts[0]
		}
	}
	return nil
}

// implicitContainer finds the synthesized type of the first unit with top-level statements.
func implicitContainer(ns *symbols.Namespace) *symbols.Type {
	for _, t := range ns.Types() {
		if t.Implicit {
			return t
		}
	}
	return nil
}
