package lexer

import (
	"corvid/internal/diag"
	"corvid/internal/token"
)

// scanString: "..." с escape через '\'. verbatim=true - @"..." где кавычка экранируется удвоением
// и перевод строки допустим.
func (lx *Lexer) scanString(verbatim bool) token.Token {
	start := lx.cursor.Mark()
	return lx.scanStringFrom(start, verbatim)
}

func (lx *Lexer) scanStringFrom(start Mark, verbatim bool) token.Token {
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '"' {
			lx.cursor.Bump()
			if verbatim && lx.cursor.Peek() == '"' {
				lx.cursor.Bump()
				continue
			}
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		if b == '\\' && !verbatim {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if b == '\n' && !verbatim {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.ParUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.ParUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// prefixedString: @"..", $"..", $@"..", @$"..".
func (lx *Lexer) prefixedString() bool {
	return lx.cursor.HasPrefix(`@"`) || lx.cursor.HasPrefix(`$"`) ||
		lx.cursor.HasPrefix(`$@"`) || lx.cursor.HasPrefix(`@$"`)
}

func (lx *Lexer) scanPrefixedString() token.Token {
	start := lx.cursor.Mark()
	verbatim := false
	for b := lx.cursor.Peek(); b == '@' || b == '$'; b = lx.cursor.Peek() {
		if b == '@' {
			verbatim = true
		}
		lx.cursor.Bump()
	}
	return lx.scanStringFrom(start, verbatim)
}

func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		switch b {
		case '\\':
			lx.cursor.Bump()
		case '\'':
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.CharLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		case '\n':
			lx.cursor.Off--
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.ParUnterminatedString, sp, "newline in character literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.ParUnterminatedString, sp, "unterminated character literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
