package diag

import (
	"fmt"
	"strings"

	"corvid/internal/source"
)

// Action is a configured reaction to a diagnostic id.
type Action uint8

const (
	// ActionDefault defers to the next rule (per-id -> general -> code default).
	ActionDefault Action = iota
	ActionSuppress
	ActionInfo
	ActionWarn
	ActionError
)

func (a Action) String() string {
	switch a {
	case ActionDefault:
		return "default"
	case ActionSuppress:
		return "suppress"
	case ActionInfo:
		return "info"
	case ActionWarn:
		return "warn"
	case ActionError:
		return "error"
	}
	return "unknown"
}

// ParseAction accepts the manifest/CLI spellings of an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ActionDefault, nil
	case "suppress", "none", "off":
		return ActionSuppress, nil
	case "info", "hidden":
		return ActionInfo, nil
	case "warn", "warning":
		return ActionWarn, nil
	case "error":
		return ActionError, nil
	}
	return ActionDefault, fmt.Errorf("invalid diagnostic action %q (expected default|suppress|info|warn|error)", s)
}

// Suppressor answers in-source suppression questions (pragma tables).
type Suppressor interface {
	IsSuppressed(code Code, at source.Span) bool
}

// Policy is the filter/escalation configuration applied once per query.
type Policy struct {
	// General applies to warnings without a per-id override: warn, suppress or error.
	General Action
	// Specific maps ids to actions; see legacy.go for the umbrella exception.
	Specific map[Code]Action
	// WarningLevel is the maximum warning level reported.
	WarningLevel uint8
}

// Apply filters raw diagnostics and returns frozen copies plus whether the result
// contains an error (true or escalated). Raw diagnostics are never mutated, so cached
// stage results can be filtered again with another policy.
func (p Policy) Apply(raw []*Diagnostic, sup Suppressor) (out []*Diagnostic, hasError bool) {
	out = make([]*Diagnostic, 0, len(raw))
	for _, d := range raw {
		filtered, keep := p.Filter(d, sup)
		if !keep {
			continue
		}
		if filtered.Severity == SevError && !filtered.Suppressed {
			hasError = true
		}
		out = append(out, filtered)
	}
	return out, hasError
}

// Filter applies the policy to one diagnostic. The returned value is a copy.
func (p Policy) Filter(d *Diagnostic, sup Suppressor) (*Diagnostic, bool) {
	if d == nil || d.Severity == SevVoid {
		return nil, false
	}
	cp := *d
	if cp.Suppressed || cp.Severity == SevError {
		return &cp, true
	}
	if cp.WarningLevel > p.WarningLevel {
		return nil, false
	}
	action := p.specificFor(cp.Code)
	if action == ActionSuppress {
		return nil, false
	}
	if sup != nil && sup.IsSuppressed(cp.Code, cp.Primary) {
		cp.Suppressed = true
		return &cp, true
	}
	if action == ActionDefault && cp.Severity == SevWarning {
		action = p.General
	}
	switch action {
	case ActionSuppress:
		return nil, false
	case ActionInfo:
		cp.Severity = SevInfo
	case ActionWarn:
		cp.Severity = SevWarning
	case ActionError:
		cp.Severity = SevError
		cp.Escalated = true
	}
	return &cp, true
}

// specificFor resolves the per-id override, honouring legacy umbrella inheritance.
func (p Policy) specificFor(c Code) Action {
	if umbrella, ok := legacyUmbrellaOf(c); ok {
		if a, has := p.Specific[umbrella]; has {
			return a
		}
	}
	return p.Specific[c]
}
