// Package syntax turns one source file into an immutable Unit: a declaration
// outline (namespaces, types, method signatures), the unit's directives and
// pragma table, and per-body token summaries.
//
// Only declarations are parsed precisely. Method bodies and top-level
// statements are summarised (identifiers, returns, awaits, null comparisons);
// expressions are never built into trees.
//
// A Unit is identified by pointer. Parsing the same text twice yields two
// distinct units.
package syntax
