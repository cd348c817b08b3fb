package lexer

import "corvid/internal/token"

// scanDirective забирает всю строку, начиная с '#', без завершающего '\n'.
// Разбор содержимого (#r, #load, #pragma ...) делает syntax.
func (lx *Lexer) scanDirective() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Directive, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
