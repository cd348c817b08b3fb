package diag

import (
	"fmt"
	"strconv"
	"strings"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Парсерные
	ParUnexpectedToken          Code = 1001
	ParUnterminatedString       Code = 1002
	ParUnterminatedBlockComment Code = 1003
	ParUnclosedBrace            Code = 1004
	ParExpectIdentifier         Code = 1005
	ParBadDirective             Code = 1006
	ParDirectiveAfterDecl       Code = 1007
	ParExpectSemicolon          Code = 1008
	ParUnknownChar              Code = 1009
	ParWarningDirective         Code = 1030
	ParUnknownPragma            Code = 1633

	// Разрешение ссылок
	RefNotFound           Code = 2001
	RefMalformedImage     Code = 2002
	RefCircularSelf       Code = 2003
	RefDuplicateIdentity  Code = 2004
	RefCycle              Code = 2005
	RefMissingDependency  Code = 2006
	RefDirectiveNoResolve Code = 2007

	// Декларации
	DclDuplicateType      Code = 3001
	DclDuplicateMethod    Code = 3002
	DclMultipleTopLevel   Code = 3003
	DclUnknownExternAlias Code = 3010
	DclDuplicateUsing     Code = 3105
	DclUnresolvedUsing    Code = 3246
	DclMainTypeNotFound   Code = 3555
	DclMainTypeIgnored    Code = 3556

	// Тела методов и точка входа
	CmpAwaitInNonAsync      Code = 4004
	CmpMultipleEntryPoints  Code = 4017
	CmpBadEntryPointShape   Code = 4028
	CmpMissingReturn        Code = 4161
	CmpAsyncEntryPoint      Code = 4402
	CmpNullComparison       Code = 4472
	CmpNullComparisonFalse  Code = 4473
	CmpNullComparisonTrue   Code = 4474
	CmpNoEntryPoint         Code = 4501
	CmpNoSuitableMainInType Code = 4558
	CmpTopLevelIgnoresMain  Code = 4722
	CmpUnnecessaryUsing     Code = 4819

	// Эмиссия
	EmtRefused Code = 5001
	EmtFailed  Code = 5002

	// Опции
	OptUnknownFeature Code = 6001
)

type codeInfo struct {
	title string
	sev   Severity
	level uint8 // warning level; 0 for errors
}

var codeTable = map[Code]codeInfo{
	UnknownCode: {"Unknown diagnostic", SevError, 0},

	ParUnexpectedToken:          {"Unexpected token", SevError, 0},
	ParUnterminatedString:       {"Unterminated string literal", SevError, 0},
	ParUnterminatedBlockComment: {"Unterminated block comment", SevError, 0},
	ParUnclosedBrace:            {"Unclosed brace", SevError, 0},
	ParExpectIdentifier:         {"Identifier expected", SevError, 0},
	ParBadDirective:             {"Malformed preprocessor directive", SevError, 0},
	ParDirectiveAfterDecl:       {"Reference directives must precede declarations", SevError, 0},
	ParExpectSemicolon:          {"Semicolon expected", SevError, 0},
	ParUnknownChar:              {"Unexpected character", SevError, 0},
	ParWarningDirective:         {"#warning directive", SevWarning, 1},
	ParUnknownPragma:            {"Unrecognized #pragma directive", SevWarning, 1},

	RefNotFound:           {"Metadata reference not found", SevError, 0},
	RefMalformedImage:     {"Metadata image is malformed", SevError, 0},
	RefCircularSelf:       {"Reference resolves back to the assembly being compiled", SevWarning, 1},
	RefDuplicateIdentity:  {"Two references resolve to the same assembly identity", SevWarning, 2},
	RefCycle:              {"Referenced assemblies form a cycle", SevWarning, 1},
	RefMissingDependency:  {"Referenced assembly depends on an assembly that is not referenced", SevWarning, 3},
	RefDirectiveNoResolve: {"Reference directives are not supported by this compilation", SevError, 0},

	DclDuplicateType:      {"Duplicate type declaration", SevError, 0},
	DclDuplicateMethod:    {"Duplicate method declaration", SevError, 0},
	DclUnknownExternAlias: {"Extern alias not specified by any reference", SevError, 0},
	DclDuplicateUsing:     {"Using directive appeared previously", SevWarning, 3},
	DclUnresolvedUsing:    {"Namespace in using directive not found", SevError, 0},
	DclMainTypeNotFound:   {"Type specified for Main was not found", SevError, 0},
	DclMainTypeIgnored:    {"Main type ignored for non-executable output", SevWarning, 1},

	CmpAwaitInNonAsync:      {"'await' used in a method not marked async", SevError, 0},
	CmpMultipleEntryPoints:  {"Program has more than one entry point", SevError, 0},
	CmpBadEntryPointShape:   {"Method has the wrong signature to be an entry point", SevWarning, 4},
	CmpMissingReturn:        {"Not all code paths return a value", SevError, 0},
	CmpAsyncEntryPoint:      {"An entry point cannot be marked async", SevError, 0},
	CmpNullComparison:       {"Comparison of value with null is constant", SevWarning, 2},
	CmpNullComparisonFalse:  {"Comparison of value with null is always false", SevWarning, 2},
	CmpNullComparisonTrue:   {"Comparison of value with null is always true", SevWarning, 2},
	CmpNoEntryPoint:         {"No entry point", SevError, 0},
	CmpNoSuitableMainInType: {"Type does not contain a suitable static Main method", SevError, 0},
	CmpTopLevelIgnoresMain:  {"Entry point is global code; Main candidate ignored", SevWarning, 1},
	CmpUnnecessaryUsing:     {"Unnecessary using directive", SevInfo, 1},

	EmtRefused: {"Emit refused because of declaration errors", SevError, 0},
	EmtFailed:  {"Emitter failed", SevError, 0},

	OptUnknownFeature: {"Unknown feature flag", SevWarning, 4},
}

func (c Code) info() codeInfo {
	if ci, ok := codeTable[c]; ok {
		return ci
	}
	return codeTable[UnknownCode]
}

func (c Code) prefix() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return "PAR"
	case ic >= 2000 && ic < 3000:
		return "REF"
	case ic >= 3000 && ic < 4000:
		return "DCL"
	case ic >= 4000 && ic < 5000:
		return "CMP"
	case ic >= 5000 && ic < 6000:
		return "EMT"
	case ic >= 6000 && ic < 7000:
		return "OPT"
	}
	return "E"
}

// ID returns the stable string identifier, e.g. "CMP4017".
func (c Code) ID() string {
	return fmt.Sprintf("%s%04d", c.prefix(), int(c))
}

func (c Code) Title() string {
	return c.info().title
}

// DefaultSeverity is the severity stages use when nothing more specific is known.
func (c Code) DefaultSeverity() Severity {
	return c.info().sev
}

// WarningLevel is the minimum configured level at which the warning is reported.
func (c Code) WarningLevel() uint8 {
	return c.info().level
}

// Stage maps the code range to the stage that produces it.
func (c Code) Stage() Stage {
	switch c.prefix() {
	case "PAR":
		return StageParse
	case "REF", "DCL", "OPT":
		return StageDeclare
	case "EMT":
		return StageEmit
	}
	return StageCompile
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode accepts "CMP4017", "cmp4017" or a bare "4017".
func ParseCode(s string) (Code, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	digits := strings.TrimLeft(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return UnknownCode, false
	}
	c := Code(n)
	if _, ok := codeTable[c]; !ok {
		return UnknownCode, false
	}
	if prefix := s[:len(s)-len(digits)]; prefix != "" && prefix != c.prefix() {
		return UnknownCode, false
	}
	return c, true
}
