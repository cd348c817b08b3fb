package lexer

import (
	"unicode"
	"unicode/utf8"

	"corvid/internal/token"
)

// peekRune декодирует руну под курсором; size 0 на EOF.
func (lx *Lexer) peekRune() (r rune, size int) {
	if lx.cursor.EOF() {
		return utf8.RuneError, 0
	}
	if b := lx.cursor.Peek(); b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
}

func (lx *Lexer) bumpRune() {
	_, sz := lx.peekRune()
	lx.cursor.Off += uint32(sz) // sz <= utf8.UTFMax
}

// tokenFrom builds a token covering everything read since start.
func (lx *Lexer) tokenFrom(start Mark, k token.Kind) token.Token {
	return token.Token{Kind: k, Span: lx.cursor.SpanFrom(start), Text: lx.cursor.TextFrom(start)}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b|0x20 >= 'a' && b|0x20 <= 'z')
}

func isIdentContinueByte(b byte) bool { return isIdentStartByte(b) || isDec(b) }

func isIdentStartRune(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinueRune(r rune) bool {
	return isIdentStartRune(r) || unicode.IsDigit(r)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool { return isDec(b) || (b|0x20 >= 'a' && b|0x20 <= 'f') }

func isDigitSep(b byte) bool { return isDec(b) || b == '_' }

func isHexSep(b byte) bool { return isHex(b) || b == '_' }

// ".5" и "1.5": точка считается частью числа, только если за ней цифра.
func (lx *Lexer) isNumberAfterDot() bool {
	return lx.cursor.Peek() == '.' && isDec(lx.cursor.At(1))
}
