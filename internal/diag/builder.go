package diag

import "corvid/internal/source"

// New builds a raw diagnostic with the code's default warning level.
func New(sev Severity, code Code, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{
		Severity:     sev,
		Code:         code,
		Primary:      primary,
		Message:      msg,
		Stage:        code.Stage(),
		WarningLevel: code.WarningLevel(),
	}
}

func NewError(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// Default builds a diagnostic with the code's default severity.
func Default(code Code, primary source.Span, msg string) *Diagnostic {
	return New(code.DefaultSeverity(), code, primary, msg)
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// Retract marks the diagnostic void; the pipeline drops it silently.
func (d *Diagnostic) Retract() {
	d.Severity = SevVoid
}
