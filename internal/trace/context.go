package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext returns the tracer carried by ctx, Nop if there is none.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx; a nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// SpanContext is what child spans inherit from their parent:
// the parent id and the compilation coordinates.
type SpanContext struct {
	SpanID   uint64
	Snapshot uint64
	Stage    string
}

// CurrentSpan returns the span context carried by ctx (zero if none).
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanKey{}).(SpanContext)
	return sc
}

// WithSpanContext replaces the span context carried by ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}

// WithSnapshot tags every span started under ctx with the snapshot id.
func WithSnapshot(ctx context.Context, id uint64) context.Context {
	sc := CurrentSpan(ctx)
	if sc.Snapshot == id {
		return ctx
	}
	sc.Snapshot = id
	return WithSpanContext(ctx, sc)
}

// Start begins a child of the span in ctx and returns a context carrying it.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sc := CurrentSpan(ctx)
	sp := begin(FromContext(ctx), scope, name, sc, "", 0)
	return sp, sp.into(ctx, sc)
}

// StartStage begins a stage span; spans started under the returned context carry the stage.
func StartStage(ctx context.Context, stage string) (*Span, context.Context) {
	sc := CurrentSpan(ctx)
	sc.Stage = stage
	sp := begin(FromContext(ctx), ScopeStage, stage, sc, "", 0)
	return sp, sp.into(ctx, sc)
}

// StartUnit begins the span of one unit's job inside the current stage.
// The job is visible to InFlight until the span ends.
func StartUnit(ctx context.Context, path string, ordinal int) (*Span, context.Context) {
	sc := CurrentSpan(ctx)
	sp := begin(FromContext(ctx), ScopeUnit, path, sc, path, ordinal)
	return sp, sp.into(ctx, sc)
}
