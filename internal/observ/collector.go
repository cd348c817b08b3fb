package observ

import (
	"sync"
	"time"

	"corvid/internal/trace"
)

// StageCollector is a trace.Tracer that turns finished stage spans into Timer phases.
// It is what --timings hooks into the compilation's tracer.
type StageCollector struct {
	timer *Timer
	scope trace.Scope

	mu     sync.Mutex
	starts map[uint64]time.Time
}

// NewStageCollector records spans at scope and coarser into timer.
func NewStageCollector(timer *Timer, scope trace.Scope) *StageCollector {
	return &StageCollector{timer: timer, scope: scope, starts: make(map[uint64]time.Time)}
}

func (c *StageCollector) Emit(ev *trace.Event) {
	if ev == nil || ev.Scope != c.scope {
		return
	}
	switch ev.Kind {
	case trace.KindSpanBegin:
		c.mu.Lock()
		c.starts[ev.SpanID] = ev.Time
		c.mu.Unlock()
	case trace.KindSpanEnd:
		c.mu.Lock()
		start, ok := c.starts[ev.SpanID]
		delete(c.starts, ev.SpanID)
		c.mu.Unlock()
		if ok {
			c.timer.Record(ev.Name, start, ev.Time.Sub(start), ev.Detail)
		}
	}
}

func (c *StageCollector) Flush() error { return nil }
func (c *StageCollector) Close() error { return nil }

func (c *StageCollector) Level() trace.Level {
	switch {
	case c.scope <= trace.ScopeDriver:
		return trace.LevelDriver
	case c.scope <= trace.ScopeStage:
		return trace.LevelStage
	}
	return trace.LevelDebug
}

func (c *StageCollector) Enabled() bool { return true }
