package compilation

import (
	"context"
	"fmt"

	"corvid/internal/binder"
	"corvid/internal/diag"
	"corvid/internal/events"
	"corvid/internal/source"
	"corvid/internal/syntax"
	"corvid/internal/trace"

	"golang.org/x/sync/errgroup"
)

// DiagnosticsResult is a policy-filtered view of one or more stages.
type DiagnosticsResult struct {
	Diagnostics []*diag.Diagnostic
	// Success is false when some diagnostic is an error, escalated warnings included.
	Success bool
}

// GetDiagnostics collects the raw diagnostics of stage (and of the stages before it when
// includeEarlier is set), then applies the options' filter and escalation policy once.
// StageEmit is treated as StageCompile: emit diagnostics only exist on an emit result.
func (c *Compilation) GetDiagnostics(ctx context.Context, stage diag.Stage, includeEarlier bool) (*DiagnosticsResult, error) {
	if stage > diag.StageCompile {
		stage = diag.StageCompile
	}
	first := stage
	if includeEarlier {
		first = diag.StageParse
	}
	c.startEvents()

	var raw []*diag.Diagnostic
	for s := first; s <= stage; s++ {
		ds, err := c.rawStage(ctx, s)
		if err != nil {
			return nil, err
		}
		raw = append(raw, ds...)
	}
	out, hasError := c.options.policy().Apply(raw, c.suppressor())
	return &DiagnosticsResult{Diagnostics: out, Success: !hasError}, nil
}

// RawDiagnostics returns the stage's diagnostics before policy, in stage then ordinal order.
func (c *Compilation) RawDiagnostics(ctx context.Context, stage diag.Stage) ([]*diag.Diagnostic, error) {
	c.startEvents()
	return c.rawStage(ctx, stage)
}

func (c *Compilation) rawStage(ctx context.Context, stage diag.Stage) ([]*diag.Diagnostic, error) {
	span, ctx := trace.StartStage(c.traced(ctx), stage.String())
	var (
		ds  []*diag.Diagnostic
		err error
	)
	switch stage {
	case diag.StageParse:
		ds, err = c.perUnit(ctx, func(_ context.Context, u *syntax.Unit) ([]*diag.Diagnostic, error) {
			return u.Diagnostics, nil
		})
	case diag.StageDeclare:
		ds, err = c.declareStage(ctx)
	case diag.StageCompile:
		ds, err = c.compileStage(ctx)
	}
	span.SetDiagnostics(len(ds))
	if err != nil {
		span.End(err.Error())
		return nil, fmt.Errorf("%s diagnostics: %w", stage, err)
	}
	span.End("")
	return ds, nil
}

func (c *Compilation) declareStage(ctx context.Context) ([]*diag.Diagnostic, error) {
	res, err := c.ResolvedReferences(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]*diag.Diagnostic(nil), res.Diagnostics...)
	out = append(out, c.featureSet().diagnostics...)
	ep, err := c.GetEntryPoint(ctx)
	if err != nil {
		return nil, err
	}
	out = append(out, stageOf(ep.Diagnostics, diag.StageDeclare)...)

	units, err := c.perUnit(ctx, c.declareUnit)
	if err != nil {
		return nil, err
	}
	return append(out, units...), nil
}

func (c *Compilation) declareUnit(ctx context.Context, u *syntax.Unit) ([]*diag.Diagnostic, error) {
	us := c.lz.unit(u)
	r, err := us.declare.GetErr(func() (binder.Result, error) {
		return c.options.binder().Declare(ctx, env{c}, u)
	})
	if err != nil {
		return nil, err
	}
	if _, first := us.announced.GetInstalled(func() bool { return true }); first && c.queue != nil {
		for _, sym := range r.Symbols {
			// a closed queue no longer has a listener
			_ = c.queue.Enqueue(events.Event{Kind: events.KindSymbolDeclared, Symbol: sym, Unit: u})
		}
	}
	return r.Diagnostics, nil
}

func (c *Compilation) compileStage(ctx context.Context) ([]*diag.Diagnostic, error) {
	units, err := c.perUnit(ctx, c.compileUnit)
	if err != nil {
		return nil, err
	}
	ep, err := c.GetEntryPoint(ctx)
	if err != nil {
		return nil, err
	}
	return append(units, stageOf(ep.Diagnostics, diag.StageCompile)...), nil
}

// compileUnit runs body checks and the unused-using analysis; afterwards the unit's
// diagnostics are final and it is marked completed on the event queue.
// The unit's declare pass is forced first so that its symbols are announced before completion.
func (c *Compilation) compileUnit(ctx context.Context, u *syntax.Unit) ([]*diag.Diagnostic, error) {
	if _, err := c.declareUnit(ctx, u); err != nil {
		return nil, err
	}
	us := c.lz.unit(u)
	r, err := us.compile.GetErr(func() (binder.Result, error) {
		return c.options.binder().Compile(ctx, env{c}, u)
	})
	if err != nil {
		return nil, err
	}
	unused, err := us.unused.GetErr(func() ([]*diag.Diagnostic, error) {
		if !c.Features().Enabled(FeatureUnusedUsings, true) {
			return nil, nil
		}
		return binder.UnusedUsings(ctx, env{c}, u)
	})
	if err != nil {
		return nil, err
	}
	if c.queue != nil {
		if first, _ := c.queue.MarkUnitCompleted(u); first {
			trace.Point(ctx, trace.ScopeUnit, "unit-completed", u.Path())
		}
	}
	out := make([]*diag.Diagnostic, 0, len(r.Diagnostics)+len(unused))
	out = append(out, r.Diagnostics...)
	return append(out, unused...), nil
}

// perUnit runs fn for every unit and concatenates the results in ordinal order.
// With ConcurrentBuild the units fan out over at most Jobs goroutines; cancellation
// is checked before each unit starts.
func (c *Compilation) perUnit(ctx context.Context, fn func(context.Context, *syntax.Unit) ([]*diag.Diagnostic, error)) ([]*diag.Diagnostic, error) {
	units := c.Units()
	results := make([][]*diag.Diagnostic, len(units))

	run := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		span, ctx := trace.StartUnit(ctx, units[i].Path(), i)
		ds, err := fn(ctx, units[i])
		span.SetDiagnostics(len(ds))
		span.End("")
		results[i] = ds
		return err
	}

	if c.concurrent() && len(units) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(c.options.jobs(), len(units)))
		for i := range units {
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range units {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	var out []*diag.Diagnostic
	for _, ds := range results {
		out = append(out, ds...)
	}
	return out, nil
}

func (c *Compilation) concurrent() bool {
	return c.options.ConcurrentBuild && !c.Features().Enabled(FeatureSequential, false)
}

// startEvents publishes Started once, fixing the units whose completion closes the queue.
func (c *Compilation) startEvents() {
	if c.queue != nil {
		_ = c.queue.Start(c.Units())
	}
}

// Enqueue forwards an event to the attached queue. Without a queue it is a no-op.
func (c *Compilation) Enqueue(ev events.Event) error {
	if c.queue == nil {
		return nil
	}
	if err := c.queue.Enqueue(ev); err != nil {
		return &Error{Kind: KindQueueClosed, Err: err}
	}
	return nil
}

func stageOf(ds []*diag.Diagnostic, stage diag.Stage) []*diag.Diagnostic {
	var out []*diag.Diagnostic
	for _, d := range ds {
		if d.Stage == stage {
			out = append(out, d)
		}
	}
	return out
}

// unitSuppressor routes pragma questions to the unit owning the diagnostic's file.
type unitSuppressor map[source.FileID]*syntax.Unit

func (s unitSuppressor) IsSuppressed(code diag.Code, at source.Span) bool {
	u, ok := s[at.File]
	return ok && u.IsSuppressed(code, at)
}

func (c *Compilation) suppressor() diag.Suppressor {
	s := make(unitSuppressor, c.units.Len())
	for _, u := range c.Units() {
		s[u.FileID()] = u
	}
	return s
}
