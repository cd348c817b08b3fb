package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1 // span start
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd // span end
	// KindPoint represents an instant event.
	KindPoint     // instant event
	KindHeartbeat // periodic liveness signal
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent higher-level/coarser events.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // CLI command
	ScopeSnapshot                  // one compilation snapshot: edits, lazy slots
	ScopeStage                     // diagnostic stages and reference resolution
	ScopeUnit                      // per-unit work inside a stage
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeSnapshot:
		return "snapshot"
	case ScopeStage:
		return "stage"
	case ScopeUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
// Snapshot, Stage, Unit and Ordinal locate the event inside a compilation;
// Ordinal is meaningful only when Unit is set.
type Event struct {
	Time     time.Time
	Seq      uint64 // global sequence number (monotonic)
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64
	Name     string // "check", "declare", "create", unit path
	Detail   string

	Snapshot uint64 // 0 outside a snapshot
	Stage    string
	Unit     string
	Ordinal  int
	// Diagnostics is the diagnostic count reported at span end, -1 when not reported.
	Diagnostics int

	Extra map[string]string
}

// located reports whether the event belongs to a unit.
func (ev *Event) located() bool { return ev.Unit != "" }
