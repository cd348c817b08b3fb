package trace

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// goroutineID парсит "goroutine N [" из runtime.Stack.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b, ok := bytes.CutPrefix(b, []byte("goroutine "))
	if !ok {
		return 0
	}
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	gid, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is one open piece of work. A Span from a disabled tracer is inert;
// unit spans are still registered as in-flight jobs while any tracer is enabled.
type Span struct {
	tracer  Tracer
	emit    bool
	id      uint64
	job     uint64 // key in the in-flight registry, 0 if not a job
	parent  SpanContext
	gid     uint64
	scope   Scope
	name    string
	unit    string
	ordinal int
	started time.Time
	diags   int
	extra   map[string]string
}

// Begin starts a span without compilation coordinates; parent is a span id (0 for a root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, SpanContext{SpanID: parent}, "", 0)
}

func begin(t Tracer, scope Scope, name string, parent SpanContext, unit string, ordinal int) *Span {
	if t == nil || !t.Enabled() {
		return &Span{tracer: Nop, parent: parent}
	}
	sp := &Span{
		tracer:  t,
		emit:    t.Level().ShouldEmit(scope),
		parent:  parent,
		gid:     goroutineID(),
		scope:   scope,
		name:    name,
		unit:    unit,
		ordinal: ordinal,
		started: time.Now(),
		diags:   -1,
	}
	if sp.emit {
		sp.id = NextSpanID()
		t.Emit(sp.event(KindSpanBegin, sp.started, ""))
	}
	if unit != "" {
		sp.job = jobs.add(Job{
			Snapshot: parent.Snapshot,
			Stage:    parent.Stage,
			Unit:     unit,
			Ordinal:  ordinal,
			Started:  sp.started,
		})
	}
	return sp
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:        at,
		Seq:         NextSeq(),
		Kind:        kind,
		Scope:       s.scope,
		SpanID:      s.id,
		ParentID:    s.parent.SpanID,
		GID:         s.gid,
		Name:        s.name,
		Detail:      detail,
		Snapshot:    s.parent.Snapshot,
		Stage:       s.parent.Stage,
		Unit:        s.unit,
		Ordinal:     s.ordinal,
		Diagnostics: -1,
	}
	if kind == KindSpanEnd {
		ev.Diagnostics = s.diags
		ev.Extra = s.extra
	}
	if s.scope == ScopeStage {
		ev.Stage = s.name
	}
	return ev
}

// into returns ctx with this span as the parent of further spans.
func (s *Span) into(ctx context.Context, sc SpanContext) context.Context {
	if s.id != 0 {
		sc.SpanID = s.id
	}
	return WithSpanContext(ctx, sc)
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return 0
	}
	if s.job != 0 {
		jobs.remove(s.job)
		s.job = 0
	}
	now := time.Now()
	if s.emit {
		s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	}
	return now.Sub(s.started)
}

// SetDiagnostics records the number of diagnostics the span produced.
func (s *Span) SetDiagnostics(n int) *Span {
	if s != nil && s.emit {
		s.diags = n
	}
	return s
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !s.emit {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID is 0 for spans that are not emitted.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event at the coordinates carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	sc := CurrentSpan(ctx)
	t.Emit(&Event{
		Time:        time.Now(),
		Seq:         NextSeq(),
		Kind:        KindPoint,
		Scope:       scope,
		ParentID:    sc.SpanID,
		GID:         goroutineID(),
		Name:        name,
		Detail:      detail,
		Snapshot:    sc.Snapshot,
		Stage:       sc.Stage,
		Diagnostics: -1,
	})
}
