package trace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Heartbeat periodically reports the unit jobs that are still running.
// A job that shows up in several consecutive beats is the first place to look for a hang.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartHeartbeat emits a heartbeat every interval until Stop. It returns nil when
// tracing is off or interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) run(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var beat uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			beat++
			tracer.Emit(heartbeatEvent(now, beat, InFlight()))
		}
	}
}

func heartbeatEvent(now time.Time, beat uint64, running []Job) *Event {
	ev := &Event{
		Time:        now,
		Seq:         NextSeq(),
		Kind:        KindHeartbeat,
		Scope:       ScopeDriver,
		GID:         goroutineID(),
		Name:        "heartbeat",
		Diagnostics: -1,
	}
	if len(running) == 0 {
		ev.Detail = fmt.Sprintf("#%d idle", beat)
		return ev
	}
	parts := make([]string, 0, len(running))
	for _, j := range running {
		parts = append(parts, fmt.Sprintf("%s %s", j, now.Sub(j.Started).Round(time.Millisecond)))
	}
	ev.Detail = fmt.Sprintf("#%d %d running: %s", beat, len(running), strings.Join(parts, ", "))
	// старейшая задача - первый кандидат на зависание
	ev.Snapshot = running[0].Snapshot
	ev.Stage = running[0].Stage
	return ev
}

// Stop ends the heartbeat goroutine and waits for it.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}
