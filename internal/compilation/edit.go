package compilation

import (
	"context"
	"fmt"
	"slices"

	"corvid/internal/events"
	"corvid/internal/metadata"
	"corvid/internal/syntax"
	"corvid/internal/trace"

	"github.com/xiaq/persistent/vector"
)

// beginEdit traces an edit against c; the span carries the id of the edited snapshot.
func (c *Compilation) beginEdit(ctx context.Context, name string) *trace.Span {
	span, _ := trace.Start(c.traced(ctx), trace.ScopeSnapshot, "edit:"+name)
	return span
}

// AddUnits returns a compilation with units appended. Each unit must be well formed
// and not already present. The reference manager is kept unless an added unit
// carries #r or #load directives or the current one resolved back to this assembly.
func (c *Compilation) AddUnits(ctx context.Context, units ...*syntax.Unit) (*Compilation, error) {
	span := c.beginEdit(ctx, "addUnits")
	defer span.End("")
	span.WithExtra("units", fmt.Sprint(len(units)))

	next := c.clone()
	next.queue = nil
	if err := next.appendUnits(ctx, units); err != nil {
		return nil, err
	}
	next.manager = c.managerFor(next, anyReferenceDirectives(units))
	return next, nil
}

// RemoveUnits returns a compilation without units. Ordinals of the remaining units are recomputed.
func (c *Compilation) RemoveUnits(ctx context.Context, units ...*syntax.Unit) (*Compilation, error) {
	span := c.beginEdit(ctx, "removeUnits")
	defer span.End("")
	span.WithExtra("units", fmt.Sprint(len(units)))

	drop := make(map[*syntax.Unit]struct{}, len(units))
	for _, u := range units {
		if !c.ContainsUnit(u) {
			return nil, errorf(KindNotFound, "unit %q is not part of the compilation", u.Path())
		}
		drop[u] = struct{}{}
	}
	next := c.clone()
	next.queue = nil
	next.units = vector.Empty
	next.ordinals = emptyOrdinals()
	for _, u := range c.Units() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, gone := drop[u]; gone {
			next.decls = next.decls.Remove(u)
			continue
		}
		next.ordinals = next.ordinals.Assoc(u, next.units.Len())
		next.units = next.units.Cons(u)
	}
	next.manager = c.managerFor(next, anyReferenceDirectives(units))
	return next, nil
}

// RemoveAll drops every unit.
func (c *Compilation) RemoveAll(ctx context.Context) (*Compilation, error) {
	span := c.beginEdit(ctx, "removeAll")
	defer span.End("")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	old := c.Units()
	next := c.clone()
	next.queue = nil
	next.units = vector.Empty
	next.ordinals = emptyOrdinals()
	for _, u := range old {
		next.decls = next.decls.Remove(u)
	}
	next.manager = c.managerFor(next, anyReferenceDirectives(old))
	return next, nil
}

// ReplaceUnit swaps old for repl at old's position.
func (c *Compilation) ReplaceUnit(ctx context.Context, old, repl *syntax.Unit) (*Compilation, error) {
	span := c.beginEdit(ctx, "replaceUnit")
	defer span.End("")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pos, ok := c.Ordinal(old)
	if !ok {
		return nil, errorf(KindNotFound, "unit %q is not part of the compilation", old.Path())
	}
	if old == repl {
		return c, nil
	}
	if !repl.WellFormed() {
		return nil, errorf(KindMalformedUnit, "unit %q has no root", repl.Path())
	}
	if c.ContainsUnit(repl) {
		return nil, errorf(KindDuplicateUnit, "unit %q is already part of the compilation", repl.Path())
	}
	next := c.clone()
	next.queue = nil
	next.units = c.units.Assoc(pos, repl)
	next.ordinals = c.ordinals.Dissoc(old).Assoc(repl, pos)
	next.decls = c.decls.Remove(old).Add(repl)
	next.manager = c.managerFor(next, old.HasReferenceDirectives() || repl.HasReferenceDirectives())
	return next, nil
}

// WithOptions returns a compilation with different options. Declarations are rebuilt only
// when naming options change; the manager only when resolution inputs change.
func (c *Compilation) WithOptions(ctx context.Context, opts Options) (*Compilation, error) {
	span := c.beginEdit(ctx, "withOptions")
	defer span.End("")
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.clone()
	if c.submission {
		opts.OutputKind = OutputScript
	}
	next := c.clone()
	next.options = opts
	next.decls = c.decls.WithNaming(opts.naming())
	next.manager = c.managerFor(next, false)
	return next, nil
}

// WithReferences replaces the metadata references.
func (c *Compilation) WithReferences(ctx context.Context, refs ...*metadata.Reference) (*Compilation, error) {
	span := c.beginEdit(ctx, "withReferences")
	defer span.End("")
	span.WithExtra("refs", fmt.Sprint(len(refs)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	next := c.clone()
	next.refs = slices.Clone(refs)
	next.manager = c.managerFor(next, false)
	return next, nil
}

// WithName renames the assembly being compiled. The name takes part in
// circular reference detection, so the manager is rebuilt when it changes.
func (c *Compilation) WithName(ctx context.Context, name string) (*Compilation, error) {
	span := c.beginEdit(ctx, "withName")
	defer span.End("")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	next := c.clone()
	next.name = name
	next.manager = c.managerFor(next, false)
	return next, nil
}

// WithScriptInfo turns the compilation into an interactive submission chained to prev
// (which may be nil). A submission holds at most one unit and compiles as a script.
func (c *Compilation) WithScriptInfo(ctx context.Context, prev *Compilation) (*Compilation, error) {
	span := c.beginEdit(ctx, "withScriptInfo")
	defer span.End("")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n := c.units.Len(); n > 1 {
		return nil, errorf(KindTooManyUnits, "a submission holds at most one unit, got %d", n)
	}
	next := c.clone()
	next.previous = prev
	next.submission = true
	next.options = c.options.WithOutputKind(OutputScript)
	next.decls = c.decls.WithNaming(next.options.naming())
	next.manager = c.managerFor(next, false)
	return next, nil
}

// WithEventQueue attaches a queue that receives this compilation's events.
// Edits do not carry the queue over: it tracks the units of one snapshot.
func (c *Compilation) WithEventQueue(q *events.Queue) *Compilation {
	next := c.clone()
	next.queue = q
	return next
}
