package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer writes every event as it arrives. Output is buffered and flushed
// on heartbeats and driver-level events, so a hung compilation still shows its last steps.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{out: w, buf: bufio.NewWriter(w), level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// трассировка не должна ронять компиляцию
	_, _ = t.buf.Write(data)
	if ev.Kind == KindHeartbeat || ev.Scope == ScopeDriver {
		_ = t.buf.Flush()
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.buf.Flush(); err != nil {
		return err
	}
	if f, ok := t.out.(interface{ Sync() error }); ok && t.out != io.Writer(os.Stderr) {
		return f.Sync()
	}
	return nil
}

// Close flushes and closes the output unless it is stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.out.(io.Closer); ok && t.out != io.Writer(os.Stderr) {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
