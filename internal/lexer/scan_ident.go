package lexer

import (
	"unicode/utf8"

	"corvid/internal/token"
)

const utf8RuneSelf = utf8.RuneSelf

// scanIdentOrKeyword: ключевые слова регистрозависимые, Token.Text - исходный срез.
// Не-ASCII идентификаторы проверяются по unicode-классам.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	r, sz := lx.peekRune()
	if sz == 0 || !isIdentStartRune(r) {
		return lx.scanOperatorOrPunct()
	}
	for {
		lx.cursor.BumpWhile(isIdentContinueByte)
		r, sz = lx.peekRune()
		if sz == 0 || r < utf8RuneSelf || !isIdentContinueRune(r) {
			break
		}
		lx.bumpRune()
	}
	tok := lx.tokenFrom(start, token.Ident)
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
	}
	return tok
}
