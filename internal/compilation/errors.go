package compilation

import "fmt"

// ErrorKind classifies construction errors.
type ErrorKind uint8

const (
	KindNotFound ErrorKind = iota + 1
	KindTooManyUnits
	KindDuplicateUnit
	KindMalformedUnit
	KindInvalidOptions
	KindQueueClosed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindTooManyUnits:
		return "too many units"
	case KindDuplicateUnit:
		return "duplicate unit"
	case KindMalformedUnit:
		return "malformed unit"
	case KindInvalidOptions:
		return "invalid options"
	case KindQueueClosed:
		return "queue closed"
	}
	return "unknown"
}

// Error is returned by operations that reject their arguments. Diagnostics are never errors.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := "compilation: " + e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels of the same kind, so errors.Is(err, ErrNotFound) works for any detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Detail == "" && t.Err == nil
}

var (
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrTooManyUnits   = &Error{Kind: KindTooManyUnits}
	ErrDuplicateUnit  = &Error{Kind: KindDuplicateUnit}
	ErrMalformedUnit  = &Error{Kind: KindMalformedUnit}
	ErrInvalidOptions = &Error{Kind: KindInvalidOptions}
	ErrQueueClosed    = &Error{Kind: KindQueueClosed}
)

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
