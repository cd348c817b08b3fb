package lexer

import (
	"corvid/internal/diag"
	"corvid/internal/token"
)

// collectLeadingTrivia собирает trivia перед значимым токеном в lx.hold:
// пробелы/табы и переводы строк склеиваются в один элемент,
// "//" и "///" идут до конца строки, "/* */" с вложенностью.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch {
		case lx.cursor.BumpWhile(func(b byte) bool { return b == ' ' || b == '\t' }) > 0:
			lx.holdTrivia(token.TriviaSpace, start)
		case lx.cursor.BumpWhile(func(b byte) bool { return b == '\n' }) > 0:
			lx.holdTrivia(token.TriviaNewline, start)
		case lx.cursor.HasPrefix("//"):
			lx.lineComment(start)
		case lx.cursor.HasPrefix("/*"):
			lx.blockComment(start)
		default:
			return
		}
	}
}

func (lx *Lexer) holdTrivia(k token.TriviaKind, start Mark) {
	lx.hold = append(lx.hold, token.Trivia{
		Kind: k,
		Span: lx.cursor.SpanFrom(start),
		Text: lx.cursor.TextFrom(start),
	})
}

// "///" - doc-строка, не директива.
func (lx *Lexer) lineComment(start Mark) {
	kind := token.TriviaLineComment
	if lx.cursor.EatPrefix("///") {
		kind = token.TriviaDocLine
	} else {
		lx.cursor.EatPrefix("//")
	}
	lx.cursor.BumpWhile(func(b byte) bool { return b != '\n' })
	lx.holdTrivia(kind, start)
}

// Незакрытый комментарий репортится и обрезается на EOF.
func (lx *Lexer) blockComment(start Mark) {
	lx.cursor.EatPrefix("/*")
	depth := 1
	for depth > 0 && !lx.cursor.EOF() {
		switch {
		case lx.cursor.EatPrefix("/*"):
			depth++
		case lx.cursor.EatPrefix("*/"):
			depth--
		default:
			lx.cursor.Bump()
		}
	}
	if depth > 0 {
		lx.errLex(diag.ParUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
	}
	lx.holdTrivia(token.TriviaBlockComment, start)
}
