package syntax

import (
	"corvid/internal/diag"
	"corvid/internal/source"
	"corvid/internal/token"
)

// bodyBuilder собирает сводку тела по индексам токенов.
type bodyBuilder struct {
	p     *Parser
	start source.Span
	// stmtDepth - глубина фигурных скобок, на которой стоят операторы тела.
	stmtDepth int
	body      Body
}

func newBodyBuilder(p *Parser, start source.Span) *bodyBuilder {
	return &bodyBuilder{p: p, start: start}
}

func (b *bodyBuilder) at(i int) token.Token {
	if i < 0 {
		return token.Token{Kind: token.Invalid}
	}
	if i >= len(b.p.toks) {
		return b.p.toks[len(b.p.toks)-1]
	}
	return b.p.toks[i]
}

// observe учитывает токен с индексом i, лежащий на глубине depth.
func (b *bodyBuilder) observe(i, depth int) {
	tok := b.at(i)
	switch tok.Kind {
	case token.KwAwait:
		switch b.at(i + 1).Kind {
		case token.Semicolon, token.RParen, token.Comma, token.Assign, token.Dot:
			// `await` как обычное имя
			b.ident(tok)
		default:
			b.body.Awaits = append(b.body.Awaits, tok.Span)
		}
	case token.KwReturn:
		b.body.Returns = append(b.body.Returns, Return{Span: tok.Span, HasValue: b.at(i+1).Kind != token.Semicolon})
	case token.KwThrow:
		if depth == b.stmtDepth && b.statementStart(i) {
			b.body.Throws = true
		}
	case token.KwNull:
		b.nullComparison(i)
	default:
		if tok.IsContextualIdent() {
			b.ident(tok)
		}
	}
}

func (b *bodyBuilder) ident(tok token.Token) {
	b.body.Idents = append(b.body.Idents, Ident{Name: tok.Text, Span: tok.Span})
	b.p.mention(tok.Text)
}

func (b *bodyBuilder) statementStart(i int) bool {
	if i == 0 {
		return true
	}
	switch b.at(i - 1).Kind {
	case token.LBrace, token.RBrace, token.Semicolon:
		return true
	}
	return false
}

// x == null, x != null, null == x, null != x - только для простого имени.
func (b *bodyBuilder) nullComparison(i int) {
	op, operand := b.at(i-1), b.at(i-2)
	if isEqualityOp(op) && operand.IsContextualIdent() && b.at(i-3).Kind != token.Dot {
		b.body.NullCompare = append(b.body.NullCompare, NullComparison{
			Operand: operand.Text,
			Equal:   op.Kind == token.EqEq,
			Span:    operand.Span.Cover(b.at(i).Span),
		})
		return
	}
	op, operand = b.at(i+1), b.at(i+2)
	if isEqualityOp(op) && operand.IsContextualIdent() {
		if k := b.at(i + 3).Kind; k == token.Dot || k == token.LParen || k == token.LBracket {
			return
		}
		b.body.NullCompare = append(b.body.NullCompare, NullComparison{
			Operand: operand.Text,
			Equal:   op.Kind == token.EqEq,
			Span:    b.at(i).Span.Cover(operand.Span),
		})
	}
}

func isEqualityOp(tok token.Token) bool {
	return tok.Kind == token.EqEq || tok.Kind == token.BangEq
}

func (b *bodyBuilder) finish(sp source.Span) *Body {
	b.body.Span = sp
	body := b.body
	return &body
}

// parseBlockBody разбирает '{ ... }' тела метода.
func (p *Parser) parseBlockBody() *Body {
	open := p.peek()
	b := newBodyBuilder(p, open.Span)
	b.stmtDepth = 1
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == token.EOF {
			p.report(diag.ParUnclosedBrace, diag.SevError, open.Span, "unclosed '{' of method body")
			break
		}
		idx := p.pos
		p.advance()
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		if depth == 0 {
			break
		}
		b.observe(idx, depth)
	}
	return b.finish(open.Span.Cover(p.lastSpan))
}

// parseExpressionBody: '=>' уже съеден, читаем до ';' на нулевой глубине.
func (p *Parser) parseExpressionBody() *Body {
	b := newBodyBuilder(p, p.peek().Span)
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == token.EOF {
			p.err(diag.ParExpectSemicolon, "expected ';' after expression body")
			break
		}
		if depth == 0 && (tok.Kind == token.Semicolon || tok.Kind == token.RBrace) {
			p.expect(token.Semicolon, diag.ParExpectSemicolon, "expected ';' after expression body")
			break
		}
		idx := p.pos
		p.advance()
		switch tok.Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			depth--
		}
		b.observe(idx, depth)
	}
	return b.finish(b.start.Cover(p.lastSpan))
}

// statementContinues: после '}' на нулевой глубине оператор продолжается (else, catch, `};` ...).
func statementContinues(tok token.Token) bool {
	switch tok.Kind {
	case token.Semicolon, token.Comma, token.Dot, token.RParen, token.Op, token.Question, token.Colon:
		return true
	case token.Ident:
		switch tok.Text {
		case "else", "catch", "finally", "while":
			return true
		}
	}
	return false
}

// parseStatement съедает один top-level оператор.
func (p *Parser) parseStatement(b *bodyBuilder) {
	start := p.peek()
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == token.EOF {
			if depth > 0 {
				p.report(diag.ParUnclosedBrace, diag.SevError, start.Span, "unclosed block in top-level statement")
			} else {
				p.err(diag.ParExpectSemicolon, "expected ';'")
			}
			return
		}
		idx := p.pos
		p.advance()
		b.observe(idx, depth)
		switch tok.Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
			if tok.Kind == token.RBrace && depth == 0 && !statementContinues(p.peek()) {
				return
			}
		case token.Semicolon:
			if depth == 0 {
				return
			}
		}
	}
}
