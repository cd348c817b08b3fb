package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"corvid/internal/events"
	"corvid/internal/source"
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

func TestProgressFollowsUnitEvents(t *testing.T) {
	fs := source.NewFileSet()
	a := syntax.ParseText(fs, "a.cv", "class A { }")
	b := syntax.ParseText(fs, "b.cv", "class B { }")

	ch := make(chan events.Event)
	m := NewProgressModel("App", []string{"a.cv", "b.cv"}, ch).(*progressModel)

	m.applyEvent(events.Event{Kind: events.KindStarted})
	m.applyEvent(events.Event{Kind: events.KindSymbolDeclared, Symbol: &symbols.Type{Name: "A", Unit: a}})
	if got := m.items[0].status; got != statusDeclaring {
		t.Fatalf("a.cv status = %q", got)
	}
	m.applyEvent(events.Event{Kind: events.KindUnitCompleted, Unit: a})
	if got := m.fraction(); got != 0.5 {
		t.Fatalf("fraction = %v", got)
	}
	m.applyEvent(events.Event{Kind: events.KindUnitCompleted, Unit: b})
	if m.items[1].status != statusDone || m.fraction() != 1.0 {
		t.Fatalf("items = %+v", m.items)
	}

	view := m.View()
	for _, want := range []string{"a.cv (1)", "b.cv", "1 symbols"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}

	close(ch)
	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	if _, cmd := m.Update(msg); cmd == nil || !m.done {
		t.Fatal("expected quit after the queue closed")
	}
	var _ tea.Model = m
}

func TestTruncate(t *testing.T) {
	if got := truncate("very/long/path/to/unit.cv", 10); got != "very/lo..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a.cv", 10); got != "a.cv" {
		t.Fatalf("truncate = %q", got)
	}
}
