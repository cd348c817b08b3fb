package lexer

import "corvid/internal/token"

// Числа нужны только как непрозрачные литералы: 0x.., 1_000, 1.5e-3, суффиксы (1L, 2.0f) входят в Text.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	if lx.cursor.Peek() == '0' {
		switch lx.cursor.At(1) {
		case 'x', 'X', 'b', 'B':
			lx.cursor.Off += 2
			lx.cursor.BumpWhile(isHexSep)
			return lx.numberSuffix(start)
		}
	}
	lx.cursor.BumpWhile(isDigitSep)
	if lx.isNumberAfterDot() {
		lx.cursor.Bump()
		lx.cursor.BumpWhile(isDigitSep)
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if s := lx.cursor.Peek(); s == '+' || s == '-' {
			lx.cursor.Bump()
		}
		if lx.cursor.BumpWhile(isDec) == 0 {
			lx.cursor.Reset(mark)
		}
	}
	return lx.numberSuffix(start)
}

func (lx *Lexer) numberSuffix(start Mark) token.Token {
	lx.cursor.BumpWhile(func(b byte) bool {
		switch b {
		case 'u', 'U', 'l', 'L', 'f', 'F', 'd', 'D', 'm', 'M':
			return true
		}
		return false
	})
	return lx.tokenFrom(start, token.NumberLit)
}
