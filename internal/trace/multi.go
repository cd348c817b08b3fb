package trace

import "errors"

// MultiTracer fans events out to several tracers, each applying its own level.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer flattens nested MultiTracers and drops disabled ones.
// level is what Level reports; it decides which spans are started at all.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	m := &MultiTracer{level: level}
	for _, tr := range tracers {
		switch tr := tr.(type) {
		case nil:
		case *MultiTracer:
			m.tracers = append(m.tracers, tr.tracers...)
		default:
			if tr.Enabled() {
				m.tracers = append(m.tracers, tr)
			}
		}
	}
	return m
}

// Tracers returns the fan-out targets.
func (t *MultiTracer) Tracers() []Tracer { return t.tracers }

func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
