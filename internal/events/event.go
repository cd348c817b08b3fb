// Package events is the Event Queue: an append-only channel of structural
// compilation events, terminated exactly once by Completed.
package events

import (
	"corvid/internal/symbols"
	"corvid/internal/syntax"
)

// Kind tags an Event.
type Kind uint8

const (
	KindStarted Kind = iota + 1
	KindSymbolDeclared
	KindUnitCompleted
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindStarted:
		return "started"
	case KindSymbolDeclared:
		return "symbol-declared"
	case KindUnitCompleted:
		return "unit-completed"
	case KindCompleted:
		return "completed"
	}
	return "unknown"
}

// Event is one entry of the queue. Symbol is set for SymbolDeclared, Unit for UnitCompleted.
type Event struct {
	Seq    int
	Kind   Kind
	Symbol symbols.Symbol
	Unit   *syntax.Unit
}

// UnitPath returns the path of the unit an event is about, if any.
func (e Event) UnitPath() string {
	switch {
	case e.Unit != nil:
		return e.Unit.Path()
	case e.Symbol != nil:
		if t, ok := e.Symbol.(*symbols.Type); ok && t.Unit != nil {
			return t.Unit.Path()
		}
		if m, ok := e.Symbol.(*symbols.Method); ok && m.Unit != nil {
			return m.Unit.Path()
		}
	}
	return ""
}

// Sink consumes events; Queue is one.
type Sink interface {
	Enqueue(Event) error
}
