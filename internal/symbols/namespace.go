package symbols

import (
	"slices"
	"strings"
)

// Namespace is a namespace symbol. A merged namespace lists its constituents.
type Namespace struct {
	Name   string
	Parent *Namespace
	// Constituents are the namespaces merged into this one; empty for a plain namespace.
	Constituents []*Namespace
	// Assembly is nil for merged namespaces spanning several assemblies.
	Assembly *Assembly

	children map[string]*Namespace
	types    map[string][]*Type
}

// NewNamespace creates a namespace; a nil parent makes it a global namespace.
func NewNamespace(name string, parent *Namespace, asm *Assembly) *Namespace {
	return &Namespace{
		Name:     name,
		Parent:   parent,
		Assembly: asm,
		children: make(map[string]*Namespace),
		types:    make(map[string][]*Type),
	}
}

func (n *Namespace) Kind() Kind { return KindNamespace }

// Display returns the dotted name; the global namespace displays as "<global namespace>".
func (n *Namespace) Display() string {
	if n.IsGlobal() {
		return "<global namespace>"
	}
	return n.QualifiedName()
}

// QualifiedName is the dotted name ("" for the global namespace).
func (n *Namespace) QualifiedName() string {
	if n == nil || n.IsGlobal() {
		return ""
	}
	if p := n.Parent.QualifiedName(); p != "" {
		return p + "." + n.Name
	}
	return n.Name
}

func (n *Namespace) IsGlobal() bool { return n.Parent == nil }

// IsMerged reports whether the namespace combines several constituents.
func (n *Namespace) IsMerged() bool { return len(n.Constituents) > 0 }

// Child returns the child namespace, creating it when missing. Only builders call it.
func (n *Namespace) Child(name string) *Namespace {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := NewNamespace(name, n, n.Assembly)
	n.children[name] = c
	return c
}

// Path returns (creating) the namespace for a dotted path relative to n.
func (n *Namespace) Path(dotted string) *Namespace {
	cur := n
	if dotted == "" {
		return cur
	}
	for part := range strings.SplitSeq(dotted, ".") {
		cur = cur.Child(part)
	}
	return cur
}

// AddType registers a type. Only builders call it.
func (n *Namespace) AddType(t *Type) {
	t.Namespace = n
	key := t.MetadataName()
	n.types[key] = append(n.types[key], t)
}

// Namespace looks up a direct child.
func (n *Namespace) Namespace(name string) *Namespace {
	return n.children[name]
}

// LookupNamespace resolves a dotted path without creating anything.
func (n *Namespace) LookupNamespace(dotted string) *Namespace {
	cur := n
	if dotted == "" {
		return cur
	}
	for part := range strings.SplitSeq(dotted, ".") {
		cur = cur.children[part]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// LookupType returns every type with the given metadata name ("List`1").
func (n *Namespace) LookupType(metadataName string) []*Type {
	return n.types[metadataName]
}

// HasTypeNamed reports whether some type in n has this simple name, any arity.
func (n *Namespace) HasTypeNamed(name string) bool {
	for _, ts := range n.types {
		if len(ts) > 0 && ts[0].Name == name {
			return true
		}
	}
	return false
}

// Namespaces returns child namespaces sorted by name.
func (n *Namespace) Namespaces() []*Namespace {
	names := make([]string, 0, len(n.children))
	for k := range n.children {
		names = append(names, k)
	}
	slices.Sort(names)
	out := make([]*Namespace, 0, len(names))
	for _, k := range names {
		out = append(out, n.children[k])
	}
	return out
}

// Types returns the types sorted by metadata name; same-named types keep insertion order.
func (n *Namespace) Types() []*Type {
	keys := make([]string, 0, len(n.types))
	for k := range n.types {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var out []*Type
	for _, k := range keys {
		out = append(out, n.types[k]...)
	}
	return out
}

// Walk visits n and every namespace below it, depth first in name order.
func (n *Namespace) Walk(visit func(*Namespace) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Namespaces() {
		c.Walk(visit)
	}
}

// AllTypes returns every type (nested included) below n in deterministic order.
func (n *Namespace) AllTypes() []*Type {
	var out []*Type
	n.Walk(func(ns *Namespace) bool {
		for _, t := range ns.Types() {
			out = t.appendAll(out)
		}
		return true
	})
	return out
}

// Merge builds the structural union of namespaces with the same name.
// Children with equal names merge recursively; types are concatenated in argument order.
// A single part is returned as is.
func Merge(parts ...*Namespace) *Namespace {
	parts = slices.DeleteFunc(slices.Clone(parts), func(p *Namespace) bool { return p == nil })
	switch len(parts) {
	case 0:
		return NewNamespace("", nil, nil)
	case 1:
		return parts[0]
	}
	return mergeInto(parts[0].Name, nil, parts)
}

func mergeInto(name string, parent *Namespace, parts []*Namespace) *Namespace {
	merged := NewNamespace(name, parent, nil)
	merged.Constituents = parts
	byName := make(map[string][]*Namespace)
	for _, p := range parts {
		for _, c := range p.Namespaces() {
			byName[c.Name] = append(byName[c.Name], c)
		}
		for k, ts := range p.types {
			merged.types[k] = append(merged.types[k], ts...)
		}
	}
	for childName, group := range byName {
		merged.children[childName] = mergeInto(childName, merged, group)
	}
	return merged
}
