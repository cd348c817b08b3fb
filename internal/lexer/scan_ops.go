package lexer

import (
	"corvid/internal/diag"
	"corvid/internal/token"
)

// Многосимвольные операторы, длинные раньше коротких.
// Всё, что не важно для декларативного разбора, сворачивается в token.Op.
var compoundOps = []struct {
	text string
	kind token.Kind
}{
	{"??=", token.Op}, {"<<=", token.Op}, {">>=", token.Op},
	{"==", token.EqEq}, {"!=", token.BangEq}, {"=>", token.Arrow},
	{"::", token.Op}, {"??", token.Op}, {"?.", token.Op},
	{"&&", token.Op}, {"||", token.Op}, {"<=", token.Op}, {">=", token.Op},
	{"++", token.Op}, {"--", token.Op}, {"->", token.Op},
	{"+=", token.Op}, {"-=", token.Op}, {"*=", token.Op}, {"/=", token.Op},
	{"%=", token.Op}, {"&=", token.Op}, {"|=", token.Op}, {"^=", token.Op},
}

var punct = map[byte]token.Kind{
	'{': token.LBrace, '}': token.RBrace,
	'(': token.LParen, ')': token.RParen,
	'[': token.LBracket, ']': token.RBracket,
	'<': token.Lt, '>': token.Gt,
	',': token.Comma, '.': token.Dot, ';': token.Semicolon, ':': token.Colon,
	'=': token.Assign, '?': token.Question,
	'+': token.Op, '-': token.Op, '*': token.Op, '/': token.Op, '%': token.Op,
	'!': token.Op, '&': token.Op, '|': token.Op, '^': token.Op, '~': token.Op,
	'@': token.Op, '$': token.Op,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	for _, op := range compoundOps {
		if lx.cursor.EatPrefix(op.text) {
			return lx.tokenFrom(start, op.kind)
		}
	}
	if k, ok := punct[lx.cursor.Peek()]; ok {
		lx.cursor.Bump()
		return lx.tokenFrom(start, k)
	}
	// неизвестный символ; для не-ASCII забираем руну целиком
	if lx.cursor.Peek() >= utf8RuneSelf {
		lx.bumpRune()
	} else {
		lx.cursor.Bump()
	}
	tok := lx.tokenFrom(start, token.Invalid)
	lx.errLex(diag.ParUnknownChar, tok.Span, "unknown character")
	return tok
}
