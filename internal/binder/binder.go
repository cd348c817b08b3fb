// Package binder is the default Binder collaborator of a compilation. It checks
// declarations and summarised method bodies of one unit at a time; it never looks
// at expressions beyond the body summaries the parser records.
package binder

import (
	"context"

	"corvid/internal/diag"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

// Env is what a binder may ask of the compilation it runs in.
type Env interface {
	// GlobalNamespace is the merge of source declarations and unaliased references.
	GlobalNamespace(ctx context.Context) (*symbols.Namespace, error)
	// ExternAlias resolves an extern alias; nil when no reference defines it.
	ExternAlias(ctx context.Context, alias string) (*symbols.Namespace, error)
	// GlobalImports are namespaces imported into every unit (options and `global using`).
	GlobalImports(ctx context.Context) ([]string, error)
	// Ordinal is the unit's position in the compilation.
	Ordinal(u *syntax.Unit) (int, bool)
	Units() []*syntax.Unit
}

// Result is the outcome of binding one unit at one stage.
type Result struct {
	// Symbols are the symbols the unit declares (Declare stage only).
	Symbols     []symbols.Symbol
	Diagnostics []*diag.Diagnostic
}

// Binder binds a unit. Implementations must be pure: the compilation may call them
// more than once for the same unit and keeps only one result.
type Binder interface {
	Declare(ctx context.Context, env Env, u *syntax.Unit) (Result, error)
	Compile(ctx context.Context, env Env, u *syntax.Unit) (Result, error)
}

// Default is the built-in binder.
type Default struct{}

var _ Binder = Default{}

func (Default) Declare(ctx context.Context, env Env, u *syntax.Unit) (Result, error) {
	global, err := env.GlobalNamespace(ctx)
	if err != nil {
		return Result{}, err
	}
	c := newChecker(ctx, env, u, global)
	if err := c.declarations(); err != nil {
		return Result{}, err
	}
	return Result{Symbols: declared(global, u), Diagnostics: c.bag.Items()}, nil
}

func (Default) Compile(ctx context.Context, env Env, u *syntax.Unit) (Result, error) {
	global, err := env.GlobalNamespace(ctx)
	if err != nil {
		return Result{}, err
	}
	c := newChecker(ctx, env, u, global)
	c.bodies()
	return Result{Diagnostics: c.bag.Items()}, nil
}

type checker struct {
	ctx    context.Context
	env    Env
	unit   *syntax.Unit
	global *symbols.Namespace
	bag    *diag.Bag
	rep    diag.Reporter
}

func newChecker(ctx context.Context, env Env, u *syntax.Unit, global *symbols.Namespace) *checker {
	bag := diag.NewBag(0)
	return &checker{ctx: ctx, env: env, unit: u, global: global, bag: bag, rep: diag.BagReporter{Bag: bag}}
}

// declared lists the types and methods of u found in the merged namespace, in declaration order.
func declared(global *symbols.Namespace, u *syntax.Unit) []symbols.Symbol {
	var out []symbols.Symbol
	for _, t := range global.AllTypes() {
		if t.Unit != u {
			continue
		}
		out = append(out, t)
		for _, m := range t.Methods {
			out = append(out, m)
		}
	}
	return out
}
