package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"corvid/internal/source"
)

type spanSuppressor struct {
	code Code
	file source.FileID
}

func (s spanSuppressor) IsSuppressed(code Code, at source.Span) bool {
	return code == s.code && at.File == s.file
}

func rawSet() []*Diagnostic {
	sp := source.Span{File: 1, Start: 4, End: 8}
	void := NewError(CmpMissingReturn, sp, "retracted")
	void.Retract()
	return []*Diagnostic{
		void,
		NewError(DclDuplicateType, sp, "dup"),
		Default(CmpBadEntryPointShape, sp, "shape"),
		Default(CmpNullComparisonFalse, sp, "null"),
		Default(ParWarningDirective, source.Span{File: 2}, "hello"),
		Default(CmpUnnecessaryUsing, sp, "using"),
	}
}

func ids(ds []*Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		tag := d.Code.ID() + ":" + d.Severity.String()
		if d.Escalated {
			tag += ":escalated"
		}
		if d.Suppressed {
			tag += ":suppressed"
		}
		out = append(out, tag)
	}
	return out
}

func TestPolicyDefaults(t *testing.T) {
	p := Policy{WarningLevel: 4}
	out, hasErr := p.Apply(rawSet(), nil)
	if !hasErr {
		t.Fatal("true error must mark result")
	}
	want := []string{
		"DCL3001:ERROR",
		"CMP4028:WARNING",
		"CMP4473:WARNING",
		"PAR1030:WARNING",
		"CMP4819:INFO",
	}
	if diff := cmp.Diff(want, ids(out)); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestPolicyWarningLevelGates(t *testing.T) {
	p := Policy{WarningLevel: 1, General: ActionError, Specific: map[Code]Action{CmpBadEntryPointShape: ActionError}}
	out, _ := p.Apply(rawSet(), nil)
	want := []string{"DCL3001:ERROR", "PAR1030:ERROR:escalated", "CMP4819:INFO"}
	if diff := cmp.Diff(want, ids(out)); diff != "" {
		t.Fatalf("level gate (-want +got):\n%s", diff)
	}
}

func TestPolicyEscalationAndSuppression(t *testing.T) {
	p := Policy{
		WarningLevel: 4,
		General:      ActionError,
		Specific: map[Code]Action{
			CmpBadEntryPointShape: ActionSuppress,
			CmpUnnecessaryUsing:   ActionWarn,
		},
	}
	sup := spanSuppressor{code: ParWarningDirective, file: 2}
	out, hasErr := p.Apply(rawSet(), sup)
	if !hasErr {
		t.Fatal("escalated warning must mark result")
	}
	want := []string{
		"DCL3001:ERROR",
		"CMP4473:ERROR:escalated",
		"PAR1030:WARNING:suppressed",
		"CMP4819:WARNING",
	}
	if diff := cmp.Diff(want, ids(out)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestPolicyIdempotent(t *testing.T) {
	policies := []Policy{
		{WarningLevel: 4},
		{WarningLevel: 0},
		{WarningLevel: 4, General: ActionError},
		{WarningLevel: 4, General: ActionSuppress},
		{WarningLevel: 2, Specific: map[Code]Action{CmpNullComparison: ActionError, CmpUnnecessaryUsing: ActionWarn}},
	}
	sup := spanSuppressor{code: ParWarningDirective, file: 2}
	for i, p := range policies {
		once, err1 := p.Apply(rawSet(), sup)
		twice, err2 := p.Apply(once, sup)
		if err1 != err2 {
			t.Fatalf("policy %d: hasError changed %v -> %v", i, err1, err2)
		}
		if diff := cmp.Diff(ids(once), ids(twice)); diff != "" {
			t.Fatalf("policy %d not idempotent (-once +twice):\n%s", i, diff)
		}
	}
}

func TestLegacyUmbrellaInheritance(t *testing.T) {
	sp := source.Span{File: 1}
	raw := []*Diagnostic{
		Default(CmpNullComparison, sp, "umbrella"),
		Default(CmpNullComparisonFalse, sp, "false"),
		Default(CmpNullComparisonTrue, sp, "true"),
	}

	// umbrella override wins over the member's own id
	p := Policy{WarningLevel: 4, Specific: map[Code]Action{
		CmpNullComparison:     ActionSuppress,
		CmpNullComparisonTrue: ActionError,
	}}
	out, hasErr := p.Apply(raw, nil)
	if len(out) != 0 || hasErr {
		t.Fatalf("umbrella suppression must cover the family, got %v", ids(out))
	}

	// without an umbrella override the member's own id applies
	p = Policy{WarningLevel: 4, Specific: map[Code]Action{CmpNullComparisonTrue: ActionError}}
	out, hasErr = p.Apply(raw, nil)
	want := []string{"CMP4472:WARNING", "CMP4473:WARNING", "CMP4474:ERROR:escalated"}
	if diff := cmp.Diff(want, ids(out)); diff != "" || !hasErr {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestApplyDoesNotMutateRaw(t *testing.T) {
	raw := rawSet()
	p := Policy{WarningLevel: 4, General: ActionError}
	_, _ = p.Apply(raw, nil)
	if raw[2].Severity != SevWarning || raw[2].Escalated {
		t.Fatal("raw diagnostic mutated by Apply")
	}
}

func TestParseCodeAndAction(t *testing.T) {
	for _, s := range []string{"CMP4017", "cmp4017", "4017"} {
		if c, ok := ParseCode(s); !ok || c != CmpMultipleEntryPoints {
			t.Fatalf("ParseCode(%q) = %v,%v", s, c, ok)
		}
	}
	if _, ok := ParseCode("PAR4017"); ok {
		t.Fatal("prefix mismatch must fail")
	}
	if _, ok := ParseCode("CMP9999"); ok {
		t.Fatal("unknown code must fail")
	}
	if a, err := ParseAction("Error"); err != nil || a != ActionError {
		t.Fatalf("ParseAction = %v,%v", a, err)
	}
	if _, err := ParseAction("loud"); err == nil {
		t.Fatal("expected error")
	}
	if CmpNoEntryPoint.Stage() != StageCompile || RefNotFound.Stage() != StageDeclare {
		t.Fatal("stage mapping broken")
	}
}
