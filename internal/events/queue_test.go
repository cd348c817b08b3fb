package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"corvid/internal/source"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

func units(t *testing.T, n int) []*syntax.Unit {
	t.Helper()
	fs := source.NewFileSet()
	out := make([]*syntax.Unit, 0, n)
	for i := range n {
		out = append(out, syntax.ParseText(fs, string(rune('a'+i))+".cv", "class C { }\n"))
	}
	return out
}

func kinds(evs []Event) []Kind {
	out := make([]Kind, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return out
}

func TestCompletionIsIdempotent(t *testing.T) {
	us := units(t, 2)
	q := New()
	if err := q.Start(us); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(Event{Kind: KindSymbolDeclared, Symbol: &symbols.Type{Name: "C"}}); err != nil {
		t.Fatal(err)
	}
	if first, _ := q.MarkUnitCompleted(us[0]); !first {
		t.Fatalf("first mark must report true")
	}
	if again, _ := q.MarkUnitCompleted(us[0]); again {
		t.Fatalf("second mark must report false")
	}
	if q.Closed() {
		t.Fatalf("queue closed before every unit completed")
	}
	if _, err := q.MarkUnitCompleted(us[1]); err != nil {
		t.Fatal(err)
	}
	if again, err := q.MarkUnitCompleted(us[1]); again || err != nil {
		t.Fatalf("marking a completed unit after close: %v %v", again, err)
	}

	want := []Kind{KindStarted, KindSymbolDeclared, KindUnitCompleted, KindUnitCompleted, KindCompleted}
	if diff := cmp.Diff(want, kinds(q.Snapshot())); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	select {
	case <-q.Done():
	default:
		t.Fatalf("Done not closed")
	}
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	q := New()
	if err := q.Start(nil); err != nil {
		t.Fatal(err)
	}
	if !q.Closed() {
		t.Fatalf("empty queue should complete on start")
	}
	if err := q.Enqueue(Event{Kind: KindSymbolDeclared}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("want ErrQueueClosed, got %v", err)
	}
	if _, err := q.MarkUnitCompleted(units(t, 1)[0]); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("want ErrQueueClosed, got %v", err)
	}
	if diff := cmp.Diff([]Kind{KindStarted, KindCompleted}, kinds(q.Snapshot())); diff != "" {
		t.Fatalf("events mismatch:\n%s", diff)
	}
}

func TestCompletedRequiresEveryUnit(t *testing.T) {
	us := units(t, 2)
	q := New()
	if err := q.Enqueue(Event{Kind: KindCompleted}); !errors.Is(err, ErrUnitsPending) {
		t.Fatalf("before start: want ErrUnitsPending, got %v", err)
	}
	_ = q.Start(us)
	_, _ = q.MarkUnitCompleted(us[0])
	if err := q.Enqueue(Event{Kind: KindCompleted}); !errors.Is(err, ErrUnitsPending) {
		t.Fatalf("want ErrUnitsPending, got %v", err)
	}
	if q.Closed() {
		t.Fatalf("queue closed with a pending unit")
	}
	if err := q.Enqueue(Event{Kind: KindUnitCompleted, Unit: us[1]}); err != nil {
		t.Fatal(err)
	}
	if !q.Closed() {
		t.Fatalf("queue not closed after the last unit")
	}
	if err := q.Enqueue(Event{Kind: KindCompleted}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("after close: want ErrQueueClosed, got %v", err)
	}
	want := []Kind{KindStarted, KindUnitCompleted, KindUnitCompleted, KindCompleted}
	if diff := cmp.Diff(want, kinds(q.Snapshot())); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentMarksCompleteOnce(t *testing.T) {
	us := units(t, 4)
	q := New()
	_ = q.Start(us)
	var wg sync.WaitGroup
	for range 8 {
		for _, u := range us {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = q.MarkUnitCompleted(u)
			}()
		}
	}
	wg.Wait()
	counts := map[Kind]int{}
	for _, ev := range q.Snapshot() {
		counts[ev.Kind]++
	}
	if counts[KindUnitCompleted] != 4 || counts[KindCompleted] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestSubscribeReplaysAndFollows(t *testing.T) {
	us := units(t, 1)
	q := New()
	_ = q.Start(us)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ch := q.Subscribe(ctx)

	_ = q.Enqueue(Event{Kind: KindSymbolDeclared, Symbol: &symbols.Type{Name: "C", Unit: us[0]}})
	_, _ = q.MarkUnitCompleted(us[0])

	var got []Event
	for ev := range ch {
		got = append(got, ev)
	}
	want := []Kind{KindStarted, KindSymbolDeclared, KindUnitCompleted, KindCompleted}
	if diff := cmp.Diff(want, kinds(got)); diff != "" {
		t.Fatalf("events mismatch:\n%s", diff)
	}
	for i, ev := range got {
		if ev.Seq != i {
			t.Fatalf("event %d has seq %d", i, ev.Seq)
		}
	}
	if got[1].UnitPath() != "a.cv" || got[2].UnitPath() != "a.cv" {
		t.Fatalf("unit paths: %q %q", got[1].UnitPath(), got[2].UnitPath())
	}
}
