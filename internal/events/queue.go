package events

import (
	"context"
	"errors"
	"slices"
	"sync"

	"corvid/internal/syntax"
)

var (
	// ErrQueueClosed is returned by writes after Completed.
	ErrQueueClosed = errors.New("event queue is closed")
	// ErrUnitsPending rejects a Completed request while some expected unit is not completed.
	ErrUnitsPending = errors.New("event queue has units that are not completed")
)

// SubscriberBuffer is the channel capacity handed out by Subscribe.
const SubscriberBuffer = 64

// Queue is safe for concurrent use. The zero value is not usable; call New.
type Queue struct {
	mu        sync.Mutex
	events    []Event
	closed    bool
	started   bool
	expected  map[*syntax.Unit]struct{}
	completed map[*syntax.Unit]struct{}
	// changed закрывается и заменяется при каждой записи, будя подписчиков
	changed chan struct{}
	done    chan struct{}
}

func New() *Queue {
	return &Queue{
		expected:  make(map[*syntax.Unit]struct{}),
		completed: make(map[*syntax.Unit]struct{}),
		changed:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start appends Started and fixes the set of units whose completion closes the queue.
// Starting twice is a no-op. With no units the queue completes immediately.
func (q *Queue) Start(units []*syntax.Unit) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.started {
		return nil
	}
	q.started = true
	for _, u := range units {
		q.expected[u] = struct{}{}
	}
	q.appendLocked(Event{Kind: KindStarted})
	q.maybeCompleteLocked()
	return nil
}

// Enqueue appends an event. UnitCompleted is routed through the completion set;
// Completed is only accepted once every expected unit has been marked.
func (q *Queue) Enqueue(ev Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	switch ev.Kind {
	case KindUnitCompleted:
		q.markLocked(ev.Unit)
		return nil
	case KindCompleted:
		q.maybeCompleteLocked()
		if !q.closed {
			return ErrUnitsPending
		}
		return nil
	}
	q.appendLocked(ev)
	return nil
}

// MarkUnitCompleted records that all diagnostics of u are final. The first call per unit
// appends UnitCompleted; the call that completes the last expected unit also appends
// Completed and closes the queue. Repeated calls report false.
func (q *Queue) MarkUnitCompleted(u *syntax.Unit) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		if _, done := q.completed[u]; done {
			return false, nil
		}
		return false, ErrQueueClosed
	}
	return q.markLocked(u), nil
}

func (q *Queue) markLocked(u *syntax.Unit) bool {
	if u == nil {
		return false
	}
	if _, done := q.completed[u]; done {
		return false
	}
	q.completed[u] = struct{}{}
	q.appendLocked(Event{Kind: KindUnitCompleted, Unit: u})
	q.maybeCompleteLocked()
	return true
}

func (q *Queue) maybeCompleteLocked() {
	if !q.started {
		return
	}
	for u := range q.expected {
		if _, ok := q.completed[u]; !ok {
			return
		}
	}
	q.closeLocked()
}

func (q *Queue) closeLocked() {
	if q.closed {
		return
	}
	q.appendLocked(Event{Kind: KindCompleted})
	q.closed = true
	close(q.done)
}

func (q *Queue) appendLocked(ev Event) {
	ev.Seq = len(q.events)
	q.events = append(q.events, ev)
	close(q.changed)
	q.changed = make(chan struct{})
}

// IsUnitCompleted reports whether u has been marked.
func (q *Queue) IsUnitCompleted(u *syntax.Unit) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.completed[u]
	return ok
}

// Closed reports whether Completed has been appended.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Done is closed together with the queue.
func (q *Queue) Done() <-chan struct{} { return q.done }

// Snapshot copies the events appended so far.
func (q *Queue) Snapshot() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.events)
}

func (q *Queue) since(i int) ([]Event, <-chan struct{}, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var evs []Event
	if i < len(q.events) {
		evs = slices.Clone(q.events[i:])
	}
	return evs, q.changed, q.closed
}

// Subscribe replays every event from the start and then follows the queue.
// The channel is closed after Completed or when ctx is done.
func (q *Queue) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event, SubscriberBuffer)
	go func() {
		defer close(out)
		next := 0
		for {
			evs, changed, closed := q.since(next)
			for _, ev := range evs {
				select {
				case out <- ev:
					next++
				case <-ctx.Done():
					return
				}
			}
			if closed && len(evs) == 0 {
				return
			}
			if len(evs) > 0 {
				continue
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
