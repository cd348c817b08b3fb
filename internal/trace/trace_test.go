package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	ring := NewRingTracer(8, LevelStage)
	ctx := WithTracer(context.Background(), ring)
	st, sctx := StartStage(ctx, "declare")
	u, _ := StartUnit(sctx, "a.cv", 0)
	u.End("")
	st.End("")
	Point(ctx, ScopeSnapshot, "edit", "add")

	evs := ring.Snapshot()
	if len(evs) != 3 {
		t.Fatalf("want 3 events, got %d", len(evs))
	}
	for _, ev := range evs {
		if ev.Scope == ScopeUnit {
			t.Fatalf("unit scope leaked at stage level: %+v", ev)
		}
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	for _, n := range []string{"a", "b", "c"} {
		Point(ctx, ScopeDriver, n, "")
	}
	evs := ring.Snapshot()
	if len(evs) != 2 || evs[0].Name != "b" || evs[1].Name != "c" {
		t.Fatalf("unexpected ring contents: %+v", evs)
	}
}

func TestSpansCarryCompilationCoordinates(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithSnapshot(WithTracer(context.Background(), ring), 7)
	st, sctx := StartStage(ctx, "compile")
	u, _ := StartUnit(sctx, "b.cv", 1)
	u.SetDiagnostics(2).End("")
	st.SetDiagnostics(2).End("")

	evs := ring.Snapshot()
	if len(evs) != 4 {
		t.Fatalf("want 4 events, got %d", len(evs))
	}
	unitEnd := evs[2]
	if unitEnd.Kind != KindSpanEnd || unitEnd.Snapshot != 7 || unitEnd.Stage != "compile" ||
		unitEnd.Unit != "b.cv" || unitEnd.Ordinal != 1 || unitEnd.Diagnostics != 2 {
		t.Fatalf("unit end event: %+v", unitEnd)
	}
	if unitEnd.ParentID != evs[0].SpanID {
		t.Fatalf("unit span parent = %d, want stage span %d", unitEnd.ParentID, evs[0].SpanID)
	}
	if evs[0].Diagnostics != -1 || evs[3].Stage != "compile" {
		t.Fatalf("stage events: %+v / %+v", evs[0], evs[3])
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithSnapshot(WithTracer(context.Background(), st), 3)
	sp, sctx := StartStage(ctx, "compile")
	sp.WithExtra("jobs", "4")
	u, _ := StartUnit(sctx, "a.cv", 0)
	u.SetDiagnostics(1).End("")
	sp.End("ok")
	if err := st.Flush(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"→ stage compile [snap 3]",
		"← unit a.cv [snap 3 compile #0] diags=1",
		"← stage compile [snap 3] (ok) {jobs=4}",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNDJSONOrdinalOnlyForUnits(t *testing.T) {
	var m map[string]any
	ev := Event{Kind: KindPoint, Scope: ScopeStage, Name: "declare", Diagnostics: -1}
	if err := json.Unmarshal(FormatEvent(&ev, FormatNDJSON), &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["ordinal"]; ok {
		t.Fatalf("stage event has an ordinal: %v", m)
	}
	if _, ok := m["diagnostics"]; ok {
		t.Fatalf("unset diagnostics serialized: %v", m)
	}
	ev = Event{Kind: KindSpanEnd, Scope: ScopeUnit, Name: "a.cv", Unit: "a.cv", Ordinal: 0, Diagnostics: 0}
	m = nil
	if err := json.Unmarshal(FormatEvent(&ev, FormatNDJSON), &m); err != nil {
		t.Fatal(err)
	}
	if m["ordinal"] != float64(0) || m["diagnostics"] != float64(0) {
		t.Fatalf("unit event: %v", m)
	}
}

func TestInFlightJobsAppearInDump(t *testing.T) {
	ring := NewRingTracer(16, LevelStage)
	ctx := WithSnapshot(WithTracer(context.Background(), ring), 42)
	_, sctx := StartStage(ctx, "declare")
	u, _ := StartUnit(sctx, "stuck.cv", 3)

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "snapshot 42: declare stuck.cv#3") {
		t.Fatalf("dump does not list the running unit:\n%s", buf.String())
	}

	u.End("")
	for _, j := range InFlight() {
		if j.Unit == "stuck.cv" && j.Snapshot == 42 {
			t.Fatalf("ended job still in flight: %+v", j)
		}
	}
}

func TestHeartbeatReportsRunningJobs(t *testing.T) {
	started := time.Unix(100, 0)
	running := []Job{{Snapshot: 5, Stage: "compile", Unit: "a.cv", Ordinal: 0, Started: started}}
	ev := heartbeatEvent(started.Add(1500*time.Millisecond), 2, running)
	if ev.Kind != KindHeartbeat || ev.Snapshot != 5 || ev.Stage != "compile" {
		t.Fatalf("heartbeat: %+v", ev)
	}
	if want := "#2 1 running: compile a.cv#0 1.5s"; ev.Detail != want {
		t.Fatalf("detail = %q, want %q", ev.Detail, want)
	}
	if idle := heartbeatEvent(started, 3, nil); idle.Detail != "#3 idle" {
		t.Fatalf("idle detail = %q", idle.Detail)
	}

	var h *Heartbeat
	h.Stop()
	if StartHeartbeat(Nop, time.Second) != nil {
		t.Fatalf("heartbeat on a disabled tracer")
	}
}

func TestMultiFlattens(t *testing.T) {
	a := NewRingTracer(4, LevelDebug)
	b := NewRingTracer(4, LevelDebug)
	m := NewMultiTracer(LevelDebug, NewMultiTracer(LevelDebug, a, Nop), b, nil)
	if got := len(m.Tracers()); got != 2 {
		t.Fatalf("tracers = %d, want 2", got)
	}
	Point(WithTracer(context.Background(), m), ScopeDriver, "x", "")
	if len(a.Snapshot()) != 1 || len(b.Snapshot()) != 1 {
		t.Fatalf("fan-out missed a tracer")
	}
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("STAGE"); err != nil || l != LevelStage {
		t.Fatalf("ParseLevel(STAGE) = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error")
	}
	if m, err := ParseMode("Both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(Both) = %v, %v", m, err)
	}
}
