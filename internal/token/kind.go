package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	StringLit
	NumberLit
	CharLit
	// Directive is a whole '#' line.
	Directive

	LBrace   // {
	RBrace   // }
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	Lt       // <
	Gt       // >
	Comma    // ,
	Dot      // .
	Semicolon
	Colon
	Assign   // =
	EqEq     // ==
	BangEq   // !=
	Question // ?
	Arrow    // =>
	Op       // any other operator

	kwStart
	KwNamespace
	KwUsing
	KwGlobal
	KwExtern
	KwAlias
	KwClass
	KwStruct
	KwInterface
	KwRecord
	KwEnum
	KwPublic
	KwPrivate
	KwInternal
	KwProtected
	KwStatic
	KwAsync
	KwAbstract
	KwVirtual
	KwOverride
	KwSealed
	KwPartial
	KwReturn
	KwAwait
	KwNull
	KwVoid
	KwThrow
	kwEnd
)

var kindNames = map[Kind]string{
	Invalid:   "invalid",
	EOF:       "EOF",
	Ident:     "identifier",
	StringLit: "string",
	NumberLit: "number",
	CharLit:   "char",
	Directive: "directive",
	LBrace:    "{",
	RBrace:    "}",
	LParen:    "(",
	RParen:    ")",
	LBracket:  "[",
	RBracket:  "]",
	Lt:        "<",
	Gt:        ">",
	Comma:     ",",
	Dot:       ".",
	Semicolon: ";",
	Colon:     ":",
	Assign:    "=",
	EqEq:      "==",
	BangEq:    "!=",
	Question:  "?",
	Arrow:     "=>",
	Op:        "operator",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	for text, kw := range keywords {
		if kw == k {
			return text
		}
	}
	return "unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k > kwStart && k < kwEnd
}

// IsModifier reports whether k may prefix a type or member declaration.
func (k Kind) IsModifier() bool {
	switch k {
	case KwPublic, KwPrivate, KwInternal, KwProtected, KwStatic, KwAsync,
		KwAbstract, KwVirtual, KwOverride, KwSealed, KwPartial:
		return true
	}
	return false
}

// IsTypeKeyword reports whether k starts a type declaration.
func (k Kind) IsTypeKeyword() bool {
	switch k {
	case KwClass, KwStruct, KwInterface, KwRecord, KwEnum:
		return true
	}
	return false
}
