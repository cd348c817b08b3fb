package refman

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"corvid/internal/diag"
	"corvid/internal/lazy"
	"corvid/internal/metadata"
	"corvid/internal/source"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
	"corvid/internal/trace"
)

// Resolver resolves `#r "path"` directives. from is the path of the unit carrying the directive.
type Resolver interface {
	ResolveReference(path, from string) (*metadata.Reference, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(path, from string) (*metadata.Reference, error)

func (f ResolverFunc) ResolveReference(path, from string) (*metadata.Reference, error) {
	return f(path, from)
}

// Config holds the naming-relevant inputs of resolution.
type Config struct {
	// AssemblyName is the name of the assembly being compiled.
	AssemblyName string
	Comparer     metadata.Comparer
	Resolver     Resolver
}

// DirectiveRef is a `#r` directive found in a source unit.
type DirectiveRef struct {
	Unit      *syntax.Unit
	Directive syntax.Directive
}

// Manager resolves one set of references. It is immutable apart from its
// install-once resolution slot and its alias memo, so snapshots share it freely.
type Manager struct {
	cfg        Config
	refs       []*metadata.Reference
	directives []DirectiveRef

	mu      sync.Mutex
	loaders map[*metadata.Reference]func() (*metadata.Image, error)

	resolved lazy.Cell[*Resolution]
	aliases  lazy.Memo[string, *symbols.Namespace]
}

// New creates a manager; nothing is loaded until Resolve.
func New(cfg Config, refs []*metadata.Reference, directives []DirectiveRef) *Manager {
	if cfg.Comparer == nil {
		cfg.Comparer = metadata.Strict
	}
	return &Manager{
		cfg:        cfg,
		refs:       slices.Clone(refs),
		directives: slices.Clone(directives),
		loaders:    make(map[*metadata.Reference]func() (*metadata.Image, error)),
	}
}

func (m *Manager) Config() Config                    { return m.cfg }
func (m *Manager) References() []*metadata.Reference { return slices.Clone(m.refs) }
func (m *Manager) Directives() []DirectiveRef        { return slices.Clone(m.directives) }

// Resolved reports whether resolution has been installed.
func (m *Manager) Resolved() bool { return m.resolved.Installed() }

// Shareable reports whether another snapshot may reuse this manager.
// A manager whose references lead back to the assembly being compiled is never shared.
func (m *Manager) Shareable() bool {
	r, ok := m.resolved.Load()
	return !ok || !r.CircularSelf
}

// CanReuse reports whether a snapshot with the given references and config may keep this manager.
func (m *Manager) CanReuse(refs []*metadata.Reference, cfg Config) bool {
	return m.Shareable() &&
		metadata.SameReferences(m.refs, refs) &&
		sameConfig(m.cfg, cfg)
}

func sameConfig(a, b Config) bool {
	if a.Comparer == nil {
		a.Comparer = metadata.Strict
	}
	if b.Comparer == nil {
		b.Comparer = metadata.Strict
	}
	return a.AssemblyName == b.AssemblyName && a.Comparer.Name() == b.Comparer.Name() && a.Resolver == b.Resolver
}

// load reads each reference at most once per manager, whatever the number of resolution attempts.
func (m *Manager) load(ref *metadata.Reference) (*metadata.Image, error) {
	m.mu.Lock()
	fn, ok := m.loaders[ref]
	if !ok {
		fn = sync.OnceValues(ref.Load)
		m.loaders[ref] = fn
	}
	m.mu.Unlock()
	return fn()
}

// Resolve binds all references. The result is computed at most once per manager and shared;
// a cancelled attempt installs nothing.
func (m *Manager) Resolve(ctx context.Context) (*Resolution, error) {
	return m.resolved.GetErr(func() (*Resolution, error) {
		span, ctx := trace.Start(ctx, trace.ScopeStage, "refman:resolve")
		r, err := m.resolve(ctx)
		if r != nil {
			span.WithExtra("assemblies", fmt.Sprint(len(r.Assemblies)))
		}
		span.End("")
		return r, err
	})
}

type pending struct {
	ref  *metadata.Reference
	span source.Span
	img  *metadata.Image
}

func (m *Manager) resolve(ctx context.Context) (*Resolution, error) {
	res := &Resolution{
		byRef:   make(map[*metadata.Reference]*symbols.Assembly),
		aliases: make(map[string][]*symbols.Assembly),
	}
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}

	var loaded []pending
	for _, ref := range m.refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p, ok := m.loadOne(reporter, ref, source.NoSpan); ok {
			loaded = append(loaded, p)
		}
	}
	for _, d := range m.directives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.Directive.Kind != syntax.DirReference {
			continue
		}
		if m.cfg.Resolver == nil {
			diag.ReportError(reporter, diag.RefDirectiveNoResolve, d.Directive.Span,
				fmt.Sprintf("cannot resolve #r %q: no reference resolver configured", d.Directive.Arg)).Emit()
			continue
		}
		ref, err := m.cfg.Resolver.ResolveReference(d.Directive.Arg, d.Unit.Path())
		if err != nil {
			diag.ReportError(reporter, diag.RefNotFound, d.Directive.Span,
				fmt.Sprintf("metadata file %q could not be found: %v", d.Directive.Arg, err)).Emit()
			continue
		}
		if ref == nil {
			diag.ReportError(reporter, diag.RefNotFound, d.Directive.Span,
				fmt.Sprintf("metadata file %q could not be found", d.Directive.Arg)).Emit()
			continue
		}
		if p, ok := m.loadOne(reporter, ref, d.Directive.Span); ok {
			loaded = append(loaded, p)
			res.directiveRefs = append(res.directiveRefs, ref)
		}
	}

	m.bind(res, reporter, loaded)
	res.Diagnostics = bag.Items()
	return res, nil
}

func (m *Manager) loadOne(r diag.Reporter, ref *metadata.Reference, at source.Span) (pending, bool) {
	img, err := m.load(ref)
	if err == nil {
		return pending{ref: ref, span: at, img: img}, true
	}
	if errors.Is(err, metadata.ErrMalformed) {
		diag.ReportError(r, diag.RefMalformedImage, at,
			fmt.Sprintf("metadata reference %s is malformed: %v", ref.Display(), err)).Emit()
	} else {
		diag.ReportError(r, diag.RefNotFound, at,
			fmt.Sprintf("metadata file %s could not be read: %v", ref.Display(), err)).Emit()
	}
	return pending{}, false
}

// bind groups images by identity, detects self references and orders assemblies by dependency.
func (m *Manager) bind(res *Resolution, r diag.Reporter, loaded []pending) {
	cmp := m.cfg.Comparer
	byKey := make(map[string]int)
	var (
		unique []*symbols.Assembly
		global []bool
		first  []pending
		names  = make([][]string, 0)
	)
	for _, p := range loaded {
		key := cmp.Key(p.img.Identity)
		idx, dup := byKey[key]
		if !dup {
			idx = len(unique)
			byKey[key] = idx
			unique = append(unique, symbols.FromImage(p.ref, p.img))
			global = append(global, false)
			first = append(first, p)
			names = append(names, nil)
		} else if !metadata.SameContent(first[idx].img, p.img) {
			diag.ReportWarning(r, diag.RefDuplicateIdentity, p.span,
				fmt.Sprintf("reference %s has the same identity as %s (%s) but different content; using %s",
					p.ref.Display(), first[idx].ref.Display(), p.img.Identity, first[idx].ref.Display())).Emit()
		}
		res.byRef[p.ref] = unique[idx]
		if p.ref.Global() {
			global[idx] = true
		}
		for _, a := range p.ref.Aliases() {
			if a != "global" && !slices.Contains(names[idx], a) {
				names[idx] = append(names[idx], a)
			}
		}
	}

	// зависимости между сборками
	selfKey := nameKey(cmp, m.cfg.AssemblyName)
	g := newDepGraph(len(unique))
	refersSelf := make([]bool, len(unique))
	for i, asm := range unique {
		if m.cfg.AssemblyName != "" && nameKey(cmp, asm.Identity.Name) == selfKey {
			refersSelf[i] = true
		}
		for _, depID := range asm.Image.References {
			if m.cfg.AssemblyName != "" && nameKey(cmp, depID.Name) == selfKey {
				refersSelf[i] = true
				continue
			}
			j, ok := byKey[cmp.Key(depID)]
			if !ok {
				diag.ReportWarning(r, diag.RefMissingDependency, first[i].span,
					fmt.Sprintf("assembly %s references %s, which is not referenced by the compilation",
						asm.Identity.Name, depID)).Emit()
				continue
			}
			if j == i {
				continue
			}
			asm.References = append(asm.References, unique[j])
			g.addEdge(j, i)
		}
	}

	order := toposortKahn(g)
	if order.Cyclic {
		var cyc []string
		for _, id := range order.Cycles {
			cyc = append(cyc, unique[id].Identity.Name)
		}
		diag.ReportWarning(r, diag.RefCycle, source.NoSpan,
			"referenced assemblies form a cycle: "+strings.Join(cyc, " -> ")).Emit()
		order.Order = append(order.Order, order.Cycles...)
	}

	// транзитивная ссылка на собираемую сборку
	reaches := make([]bool, len(unique))
	for _, id := range order.Order {
		reaches[id] = refersSelf[id]
		for _, dep := range unique[id].References {
			if reaches[slices.Index(unique, dep)] {
				reaches[id] = true
			}
		}
	}
	if order.Cyclic {
		// внутри цикла одного прохода мало
		for changed := true; changed; {
			changed = false
			for i, asm := range unique {
				for _, dep := range asm.References {
					if !reaches[i] && reaches[slices.Index(unique, dep)] {
						reaches[i], changed = true, true
					}
				}
			}
		}
	}

	for _, id := range order.Order {
		asm := unique[id]
		if reaches[id] {
			res.CircularSelf = true
			diag.ReportWarning(r, diag.RefCircularSelf, first[id].span,
				fmt.Sprintf("reference %s refers back to the assembly being compiled (%s)",
					first[id].ref.Display(), m.cfg.AssemblyName)).Emit()
			if refersSelf[id] && nameKey(cmp, asm.Identity.Name) == selfKey {
				// прежняя версия самой сборки - не подмешиваем в глобальное пространство имён
				res.Assemblies = append(res.Assemblies, asm)
				res.excluded = append(res.excluded, asm)
				continue
			}
		}
		res.Assemblies = append(res.Assemblies, asm)
		if global[id] {
			res.Global = append(res.Global, asm)
		}
		for _, a := range names[id] {
			res.aliases[a] = append(res.aliases[a], asm)
		}
		if res.Corlib == nil && len(asm.Image.References) == 0 && asm.Image.Defines("System", "Object") {
			res.Corlib = asm
		}
	}
}

func nameKey(c metadata.Comparer, name string) string {
	return c.Key(metadata.Identity{Name: name})
}

// ExternAlias returns the merged global namespace of the assemblies reachable through alias,
// or nil. Results, negative ones included, are memoized per manager.
func (m *Manager) ExternAlias(ctx context.Context, alias string) (*symbols.Namespace, error) {
	res, err := m.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return m.aliases.Get(alias, func(a string) *symbols.Namespace {
		asms := res.aliases[a]
		if len(asms) == 0 {
			return nil
		}
		parts := make([]*symbols.Namespace, 0, len(asms))
		for _, asm := range asms {
			parts = append(parts, asm.GlobalNamespace())
		}
		return symbols.Merge(parts...)
	}), nil
}

// AliasLookups returns how many distinct aliases have been memoized.
func (m *Manager) AliasLookups() int { return m.aliases.Len() }
