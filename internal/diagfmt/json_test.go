package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJSONBasic(t *testing.T) {
	fs, items := sample(t)
	var buf bytes.Buffer
	if err := JSON(&buf, items, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || out.Errors != 1 || out.Success {
		t.Fatalf("count=%d errors=%d success=%v", out.Count, out.Errors, out.Success)
	}
	first := out.Diagnostics[0]
	want := &LocationJSON{File: "prog.cv", StartByte: 26, EndByte: 30, StartLine: 2, StartCol: 17, EndLine: 2, EndCol: 21}
	if diff := cmp.Diff(want, first.Location); diff != "" {
		t.Fatalf("location (-want +got):\n%s", diff)
	}
	if first.Code != "CMP4017" || first.Stage != "compile" || len(first.Notes) != 1 {
		t.Fatalf("first = %+v", first)
	}
	if out.Diagnostics[1].Location != nil {
		t.Fatalf("reference diagnostic should have no location: %+v", out.Diagnostics[1].Location)
	}
}

func TestJSONMaxKeepsCounts(t *testing.T) {
	fs, items := sample(t)
	out := BuildDiagnosticsOutput(items, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Errors != 1 {
		t.Fatalf("count=%d errors=%d", out.Count, out.Errors)
	}
}

func TestSarif(t *testing.T) {
	fs, items := sample(t)
	var buf bytes.Buffer
	if err := Sarif(&buf, items, fs, SarifRunMeta{ToolName: "corvid", ToolVersion: "0.1.0"}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatal(err)
	}
	run := log.Runs[0]
	ids := []string{}
	for _, r := range run.Tool.Driver.Rules {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"CMP4017", "REF2003"}, ids); diff != "" {
		t.Fatalf("rules (-want +got):\n%s", diff)
	}
	if len(run.Results) != 2 || run.Results[0].Level != "error" || run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("run = %+v", run)
	}
}
