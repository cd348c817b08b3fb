package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevVoid marks a diagnostic retracted by later analysis. It never leaves the pipeline.
	SevVoid Severity = iota
	// SevInfo is for informational diagnostics.
	SevInfo
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevVoid:
		return "VOID"
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Stage identifies the compilation stage a diagnostic originates from.
// Stages are cumulative: a later stage implies the earlier ones ran.
type Stage uint8

const (
	StageParse Stage = iota
	StageDeclare
	StageCompile
	StageEmit
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageDeclare:
		return "declare"
	case StageCompile:
		return "compile"
	case StageEmit:
		return "emit"
	}
	return "unknown"
}

// ParseStage converts a CLI/manifest spelling into a Stage.
func ParseStage(s string) (Stage, bool) {
	switch s {
	case "parse", "syntax":
		return StageParse, true
	case "declare", "decl":
		return StageDeclare, true
	case "compile", "all", "":
		return StageCompile, true
	}
	return StageParse, false
}
