package token

import (
	"corvid/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsContextualIdent reports whether the token can serve as a name. Contextual
// keywords (alias, global, record, partial, async, await) are accepted as names.
func (t Token) IsContextualIdent() bool {
	switch t.Kind {
	case Ident, KwAlias, KwGlobal, KwRecord, KwPartial, KwAsync, KwAwait:
		return true
	}
	return false
}
