package trace

import (
	"fmt"
	"io"
	"sync"
)

// DefaultRingSize is used when the configured size is not positive.
const DefaultRingSize = 4096

// RingTracer keeps the last events in memory for a crash dump.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int // index of the slot written next
	count int
	level Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
	t.count = min(t.count+1, len(t.buf))
	t.mu.Unlock()
}

// Snapshot returns the stored events oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, t.count)
	first := (t.next - t.count + len(t.buf)) % len(t.buf)
	for i := range t.count {
		out = append(out, t.buf[(first+i)%len(t.buf)])
	}
	return out
}

// Dump writes the stored events and then the unit jobs still in flight,
// so a dump taken on a crash names the units that were being processed.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	running := InFlight()
	if len(running) == 0 {
		return nil
	}
	if format == FormatNDJSON {
		for _, j := range running {
			ev := Event{Kind: KindPoint, Scope: ScopeUnit, Name: "in-flight", Time: j.Started,
				Snapshot: j.Snapshot, Stage: j.Stage, Unit: j.Unit, Ordinal: j.Ordinal, Diagnostics: -1}
			if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
				return err
			}
		}
		return nil
	}
	if _, err := fmt.Fprintf(w, "--- %d unit job(s) in flight ---\n", len(running)); err != nil {
		return err
	}
	for _, j := range running {
		if _, err := fmt.Fprintf(w, "  snapshot %d: %s\n", j.Snapshot, j); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
