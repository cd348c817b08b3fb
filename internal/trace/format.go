package trace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output file extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time        string            `json:"time"`
	Seq         uint64            `json:"seq"`
	Kind        string            `json:"kind"`
	Scope       string            `json:"scope"`
	SpanID      uint64            `json:"span_id,omitempty"`
	ParentID    uint64            `json:"parent_id,omitempty"`
	GID         uint64            `json:"gid,omitempty"`
	Name        string            `json:"name"`
	Detail      string            `json:"detail,omitempty"`
	Snapshot    uint64            `json:"snapshot,omitempty"`
	Stage       string            `json:"stage,omitempty"`
	Unit        string            `json:"unit,omitempty"`
	Ordinal     *int              `json:"ordinal,omitempty"`
	Diagnostics *int              `json:"diagnostics,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	je := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Snapshot: ev.Snapshot,
		Stage:    ev.Stage,
		Unit:     ev.Unit,
		Extra:    ev.Extra,
	}
	if ev.located() {
		je.Ordinal = &ev.Ordinal
	}
	if ev.Diagnostics >= 0 {
		je.Diagnostics = &ev.Diagnostics
	}
	data, err := json.Marshal(je)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

var kindMarks = map[Kind]string{KindSpanBegin: "→ ", KindSpanEnd: "← ", KindPoint: "• ", KindHeartbeat: "♡ "}

// formatText: [seq] →/← scope name [snap N stage S unit#ord] (detail) diags=N {k=v}
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] ", ev.Seq)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	sb.WriteString(kindMarks[ev.Kind])
	sb.WriteString(ev.Scope.String())
	sb.WriteByte(' ')
	sb.WriteString(ev.Name)

	var loc []string
	if ev.Snapshot != 0 {
		loc = append(loc, fmt.Sprintf("snap %d", ev.Snapshot))
	}
	// у stage-спана имя и есть стадия
	if ev.Stage != "" && ev.Scope != ScopeStage {
		loc = append(loc, ev.Stage)
	}
	if ev.located() {
		loc = append(loc, fmt.Sprintf("#%d", ev.Ordinal))
	}
	if len(loc) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(loc, " "))
		sb.WriteString("]")
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if ev.Diagnostics >= 0 {
		fmt.Fprintf(&sb, " diags=%d", ev.Diagnostics)
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
