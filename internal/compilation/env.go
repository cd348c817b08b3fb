package compilation

import (
	"context"

	"corvid/internal/binder"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

// env is the compilation as seen by a binder.
type env struct{ c *Compilation }

var _ binder.Env = env{}

func (e env) GlobalNamespace(ctx context.Context) (*symbols.Namespace, error) {
	return e.c.GlobalNamespace(ctx)
}

func (e env) ExternAlias(ctx context.Context, alias string) (*symbols.Namespace, error) {
	return e.c.ExternAlias(ctx, alias)
}

func (e env) GlobalImports(ctx context.Context) ([]string, error) {
	return e.c.GlobalImports(ctx)
}

func (e env) Ordinal(u *syntax.Unit) (int, bool) { return e.c.Ordinal(u) }

func (e env) Units() []*syntax.Unit { return e.c.Units() }
