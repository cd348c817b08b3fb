// Package decl is the Declaration Table: the per-unit root declarations of a
// compilation, kept in a persistent map so that adding or removing a unit
// costs O(that unit) and untouched entries are shared between snapshots.
package decl

import (
	"unsafe"

	"corvid/internal/lazy"
	"corvid/internal/symbols"
	"corvid/internal/syntax"

	"github.com/xiaq/persistent/hash"
	"github.com/xiaq/persistent/hashmap"
)

// Entry is one unit's contribution. Its root is built on first use and memoized.
type Entry struct {
	Unit   *syntax.Unit
	naming Naming
	root   lazy.Cell[*symbols.Namespace]
}

// Root returns the unit's root namespace declaration.
func (e *Entry) Root() *symbols.Namespace {
	return e.root.Get(func() *symbols.Namespace {
		return buildRoot(e.Unit, e.naming)
	})
}

// Built reports whether the root has been computed.
func (e *Entry) Built() bool { return e.root.Installed() }

// Table maps units (by pointer identity) to entries. The zero Table is not usable; call New.
type Table struct {
	naming  Naming
	entries hashmap.Map
}

func unitEqual(a, b interface{}) bool {
	return a.(*syntax.Unit) == b.(*syntax.Unit)
}

func unitHash(k interface{}) uint32 {
	return hash.Pointer(unsafe.Pointer(k.(*syntax.Unit)))
}

// New creates an empty table.
func New(naming Naming) Table {
	return Table{naming: naming.normalized(), entries: hashmap.New(unitEqual, unitHash)}
}

func (t Table) Naming() Naming { return t.naming }

func (t Table) Len() int { return t.entries.Len() }

// Contains reports whether u has an entry.
func (t Table) Contains(u *syntax.Unit) bool {
	_, ok := t.entries.Index(u)
	return ok
}

// Entry returns the entry of u.
func (t Table) Entry(u *syntax.Unit) (*Entry, bool) {
	v, ok := t.entries.Index(u)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// Add returns a table with a fresh entry for u. Existing entries are shared.
func (t Table) Add(u *syntax.Unit) Table {
	t.entries = t.entries.Assoc(u, &Entry{Unit: u, naming: t.naming})
	return t
}

// Remove returns a table without u.
func (t Table) Remove(u *syntax.Unit) Table {
	t.entries = t.entries.Dissoc(u)
	return t
}

// WithNaming rebuilds every entry when naming changes; otherwise t is returned unchanged.
func (t Table) WithNaming(naming Naming) Table {
	naming = naming.normalized()
	if naming == t.naming {
		return t
	}
	out := New(naming)
	for it := t.entries.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		out = out.Add(k.(*syntax.Unit))
	}
	return out
}

// Units lists the units in unspecified order.
func (t Table) Units() []*syntax.Unit {
	out := make([]*syntax.Unit, 0, t.entries.Len())
	for it := t.entries.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		out = append(out, k.(*syntax.Unit))
	}
	return out
}

// Same reports whether two tables hold the same entries (pointer equal) under the same naming.
func Same(a, b Table) bool {
	if a.naming != b.naming || a.Len() != b.Len() {
		return false
	}
	for it := a.entries.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		w, ok := b.entries.Index(k)
		if !ok || w != v {
			return false
		}
	}
	return true
}
