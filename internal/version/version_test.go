package version

import (
	"strings"
	"testing"
)

func TestPrettyWithoutColorIsVersion(t *testing.T) {
	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "weird"} {
		orig := Version
		Version = v
		if got := Pretty(false); got != v {
			t.Errorf("Pretty(false) = %q, want %q", got, v)
		}
		Version = orig
	}
}

func TestPrettyColorsCore(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "1.2.3-dev"
	got := Pretty(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-dev") {
		t.Fatalf("Pretty(true) = %q", got)
	}
}

func TestInfoOptionalFields(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit, BuildDate = "", ""
	if got := Info(false); strings.Count(got, "\n") != 1 {
		t.Fatalf("Info = %q", got)
	}
	GitCommit, BuildDate = "abc123", "2024-01-15T10:30:00Z"
	got := Info(false)
	if !strings.Contains(got, "commit: abc123") || !strings.Contains(got, "built:  2024-01-15T10:30:00Z") {
		t.Fatalf("Info = %q", got)
	}
}
