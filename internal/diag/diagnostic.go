package diag

import (
	"corvid/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one compiler message. Diagnostics produced by stages are raw;
// Policy.Apply freezes severity and sets Escalated/Suppressed.
type Diagnostic struct {
	Severity     Severity
	Code         Code
	Message      string
	Primary      source.Span
	Stage        Stage
	WarningLevel uint8
	// Escalated is set when a warning was promoted to an error by configuration.
	Escalated bool
	// Suppressed is set when an in-source pragma silenced the diagnostic.
	Suppressed bool
	Notes      []Note
}

// IsWarningAsError reports whether the diagnostic failed the build only because of policy.
func (d *Diagnostic) IsWarningAsError() bool {
	return d.Escalated && d.Severity == SevError
}

// Counts reports whether the diagnostic is visible to the user (not retracted or suppressed).
func (d *Diagnostic) Counts() bool {
	return d.Severity != SevVoid && !d.Suppressed
}
