package syntax

import "corvid/internal/diag"

// PragmaTable records `#pragma warning disable|restore` transitions in source order.
type PragmaTable struct {
	entries []pragmaEntry
}

type pragmaEntry struct {
	offset  uint32
	code    diag.Code // 0 - все предупреждения
	disable bool
}

func (t *PragmaTable) add(offset uint32, code diag.Code, disable bool) {
	t.entries = append(t.entries, pragmaEntry{offset: offset, code: code, disable: disable})
}

// Len returns the number of recorded transitions.
func (t *PragmaTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// IsSuppressed reports whether code is disabled at byte offset off.
// The last transition before off that names the code (or names no code) wins.
func (t *PragmaTable) IsSuppressed(code diag.Code, off uint32) bool {
	if t == nil {
		return false
	}
	suppressed := false
	for _, e := range t.entries {
		if e.offset > off {
			break
		}
		if e.code == 0 || e.code == code {
			suppressed = e.disable
		}
	}
	return suppressed
}
