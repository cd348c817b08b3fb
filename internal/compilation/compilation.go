// Package compilation holds a whole program as an immutable snapshot: source
// units, metadata references, options and the state derived from them.
//
// Every edit returns a new *Compilation that shares the declaration table,
// the unit sequence and, when resolution cannot be affected, the reference
// manager with its predecessor. Derived state (global namespace, entry point,
// diagnostics) is computed on demand into install-once slots; concurrent
// readers may race on a slot, the first result wins.
package compilation

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"unsafe"

	"corvid/internal/decl"
	"corvid/internal/events"
	"corvid/internal/metadata"
	"corvid/internal/refman"
	"corvid/internal/syntax"
	"corvid/internal/trace"

	"github.com/xiaq/persistent/hash"
	"github.com/xiaq/persistent/hashmap"
	"github.com/xiaq/persistent/vector"
)

// Compilation is one immutable version of a program. It is safe for concurrent use.
type Compilation struct {
	// id tags trace spans; every snapshot gets a fresh one.
	id      uint64
	name    string
	options Options
	refs    []*metadata.Reference

	// units is the ordered sequence of *syntax.Unit; ordinals maps unit -> int.
	units    vector.Vector
	ordinals hashmap.Map
	decls    decl.Table
	manager  *refman.Manager

	previous   *Compilation
	submission bool
	queue      *events.Queue

	lz *slots
}

var snapshotSeq atomic.Uint64

func unitEqual(a, b interface{}) bool {
	return a.(*syntax.Unit) == b.(*syntax.Unit)
}

func unitHash(k interface{}) uint32 {
	return hash.Pointer(unsafe.Pointer(k.(*syntax.Unit)))
}

func emptyOrdinals() hashmap.Map { return hashmap.New(unitEqual, unitHash) }

// Create builds a compilation from scratch. Units are validated the same way AddUnits does.
func Create(ctx context.Context, name string, units []*syntax.Unit, refs []*metadata.Reference, opts Options) (*Compilation, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.clone()
	id := snapshotSeq.Add(1)
	span, ctx := trace.Start(trace.WithSnapshot(ctx, id), trace.ScopeSnapshot, "create")
	defer span.End("")
	span.WithExtra("units", fmt.Sprint(len(units))).WithExtra("refs", fmt.Sprint(len(refs)))

	c := &Compilation{
		id:       id,
		name:     name,
		options:  opts,
		refs:     slices.Clone(refs),
		units:    vector.Empty,
		ordinals: emptyOrdinals(),
		decls:    decl.New(opts.naming()),
		lz:       newSlots(),
	}
	if err := c.appendUnits(ctx, units); err != nil {
		return nil, err
	}
	c.manager = refman.New(opts.refConfig(name), c.refs, collectDirectives(c.Units()))
	return c, nil
}

// clone copies the snapshot value with empty derived state.
func (c *Compilation) clone() *Compilation {
	cp := *c
	cp.id = snapshotSeq.Add(1)
	cp.lz = newSlots()
	return &cp
}

// traced tags spans started under ctx with this snapshot.
func (c *Compilation) traced(ctx context.Context) context.Context {
	return trace.WithSnapshot(ctx, c.id)
}

// ID identifies the snapshot in traces; it is unique within the process.
func (c *Compilation) ID() uint64 { return c.id }

func (c *Compilation) Name() string                      { return c.name }
func (c *Compilation) Options() Options                  { return c.options.clone() }
func (c *Compilation) References() []*metadata.Reference { return slices.Clone(c.refs) }
func (c *Compilation) UnitCount() int                    { return c.units.Len() }
func (c *Compilation) Previous() *Compilation            { return c.previous }
func (c *Compilation) IsSubmission() bool                { return c.submission }
func (c *Compilation) EventQueue() *events.Queue         { return c.queue }
func (c *Compilation) ReferenceManager() *refman.Manager { return c.manager }
func (c *Compilation) DeclarationTable() decl.Table      { return c.decls }

// Units returns the units in ordinal order.
func (c *Compilation) Units() []*syntax.Unit {
	out := make([]*syntax.Unit, 0, c.units.Len())
	for it := c.units.Iterator(); it.HasElem(); it.Next() {
		out = append(out, it.Elem().(*syntax.Unit))
	}
	return out
}

// Unit returns the unit at ordinal i.
func (c *Compilation) Unit(i int) (*syntax.Unit, bool) {
	v, ok := c.units.Index(i)
	if !ok {
		return nil, false
	}
	return v.(*syntax.Unit), true
}

// Ordinal returns the position of u.
func (c *Compilation) Ordinal(u *syntax.Unit) (int, bool) {
	v, ok := c.ordinals.Index(u)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// ContainsUnit reports whether u (by identity) is part of the compilation.
func (c *Compilation) ContainsUnit(u *syntax.Unit) bool {
	_, ok := c.ordinals.Index(u)
	return ok
}

// UnitByPath finds the first unit with the given path.
func (c *Compilation) UnitByPath(path string) (*syntax.Unit, bool) {
	for it := c.units.Iterator(); it.HasElem(); it.Next() {
		if u := it.Elem().(*syntax.Unit); u.Path() == path {
			return u, true
		}
	}
	return nil, false
}

// appendUnits validates and appends units in place. Only used on fresh clones.
func (c *Compilation) appendUnits(ctx context.Context, units []*syntax.Unit) error {
	if c.submission && c.units.Len()+len(units) > 1 {
		return errorf(KindTooManyUnits, "a submission holds at most one unit, got %d", c.units.Len()+len(units))
	}
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !u.WellFormed() {
			return errorf(KindMalformedUnit, "unit %q has no root", u.Path())
		}
		if c.ContainsUnit(u) {
			return errorf(KindDuplicateUnit, "unit %q is already part of the compilation", u.Path())
		}
		c.ordinals = c.ordinals.Assoc(u, c.units.Len())
		c.units = c.units.Cons(u)
		c.decls = c.decls.Add(u)
	}
	return nil
}

func collectDirectives(units []*syntax.Unit) []refman.DirectiveRef {
	var out []refman.DirectiveRef
	for _, u := range units {
		for _, d := range u.ReferenceDirectives() {
			out = append(out, refman.DirectiveRef{Unit: u, Directive: d})
		}
	}
	return out
}

func anyReferenceDirectives(units []*syntax.Unit) bool {
	return slices.ContainsFunc(units, (*syntax.Unit).HasReferenceDirectives)
}

// managerFor keeps the current manager when the edit cannot change resolution.
func (c *Compilation) managerFor(next *Compilation, directivesChanged bool) *refman.Manager {
	cfg := next.options.refConfig(next.name)
	if !directivesChanged &&
		next.options.naming() == c.options.naming() &&
		c.manager.CanReuse(next.refs, cfg) {
		return c.manager
	}
	return refman.New(cfg, next.refs, collectDirectives(next.Units()))
}
