package observ

import (
	"strings"
	"testing"
	"time"

	"corvid/internal/trace"
)

func TestReportNestsInnerPhases(t *testing.T) {
	timer := NewTimer()
	base := time.Now()
	timer.Record("check", base, 10*time.Millisecond, "")
	timer.Record("declare", base.Add(time.Millisecond), 3*time.Millisecond, "")
	timer.Record("emit", base.Add(20*time.Millisecond), 5*time.Millisecond, "ok")

	r := timer.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	if r.Phases[0].Nested || !r.Phases[1].Nested || r.Phases[2].Nested {
		t.Fatalf("nesting = %+v", r.Phases)
	}
	if r.TotalMS != 15 {
		t.Fatalf("total = %v, want 15", r.TotalMS)
	}
	s := timer.Summary()
	if !strings.Contains(s, "    declare") || !strings.Contains(s, "// ok") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestStageCollectorRecordsStageSpans(t *testing.T) {
	timer := NewTimer()
	c := NewStageCollector(timer, trace.ScopeStage)

	drv := trace.Begin(c, trace.ScopeDriver, "check", 0)
	st := trace.Begin(c, trace.ScopeStage, "declare", drv.ID())
	unit := trace.Begin(c, trace.ScopeUnit, "unit:a.cv", st.ID())
	unit.End("")
	st.End("2 diagnostics")
	drv.End("")

	r := timer.Report()
	if len(r.Phases) != 1 || r.Phases[0].Name != "declare" || r.Phases[0].Note != "2 diagnostics" {
		t.Fatalf("phases = %+v", r.Phases)
	}
}
