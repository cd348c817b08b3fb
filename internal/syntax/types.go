package syntax

import (
	"strings"

	"corvid/internal/diag"
	"corvid/internal/token"
)

// parseTypeDecl: модификаторы (class|struct|interface|record [class|struct]|enum) Name<...> (...)? : bases where ... { members }
func (p *Parser) parseTypeDecl() *TypeDecl {
	start := p.peek().Span
	t := &TypeDecl{Modifiers: p.parseModifiers()}

	switch kw := p.advance(); kw.Kind {
	case token.KwClass:
		t.Kind = TypeClass
	case token.KwStruct:
		t.Kind = TypeStruct
	case token.KwInterface:
		t.Kind = TypeInterface
	case token.KwEnum:
		t.Kind = TypeEnum
	case token.KwRecord:
		t.Kind = TypeRecord
		if p.eat(token.KwStruct) {
			t.Kind = TypeRecordStruct
		} else {
			p.eat(token.KwClass)
		}
	}

	name := p.peek()
	if !name.IsContextualIdent() {
		p.err(diag.ParExpectIdentifier, "expected type name, got \""+name.Text+"\"")
		p.resyncMember()
		return nil
	}
	p.advance()
	t.Name, t.NameSpan = name.Text, name.Span

	if p.at(token.Lt) {
		t.Arity = p.parseTypeParams()
	}
	if p.at(token.LParen) && (t.Kind == TypeRecord || t.Kind == TypeRecordStruct || t.Kind == TypeClass || t.Kind == TypeStruct) {
		// primary constructor
		p.parseParams()
	}
	if p.eat(token.Colon) {
		for {
			base, ok := p.parseTypeRef()
			if !ok {
				break
			}
			t.Bases = append(t.Bases, base)
			if p.at(token.LParen) {
				// record Derived(int X) : Base(X)
				p.skipBalanced(p.mentionTok)
			}
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	p.skipConstraints()

	switch {
	case t.Kind == TypeEnum && p.at(token.LBrace):
		p.skipBalanced(nil)
		p.eat(token.Semicolon)
	case p.eat(token.Semicolon):
	case p.at(token.LBrace):
		p.advance()
		for !p.atOr(token.RBrace, token.EOF) {
			p.parseMember(t)
		}
		if _, ok := p.expect(token.RBrace, diag.ParUnclosedBrace, "expected '}' to close "+t.Kind.String()+" "+t.Name); ok {
			p.eat(token.Semicolon)
		}
	default:
		p.err(diag.ParUnexpectedToken, "expected '{' after "+t.Kind.String()+" "+t.Name)
		p.resyncMember()
	}
	t.Span = start.Cover(p.lastSpan)
	return t
}

// parseTypeParams считает арность '<T, U>'.
func (p *Parser) parseTypeParams() int {
	arity := 1
	p.skipBalanced(func(tok token.Token, depth int) {
		if tok.Kind == token.Comma && depth == 1 {
			arity++
		}
	})
	return arity
}

// where T : class, new() ...
func (p *Parser) skipConstraints() {
	for p.atIdentText("where") {
		for !p.atOr(token.LBrace, token.Semicolon, token.Arrow, token.EOF) {
			if p.atOr(token.LParen, token.Lt) {
				p.skipBalanced(p.mentionTok)
				continue
			}
			p.mentionTok(p.advance(), 0)
		}
	}
}

func (p *Parser) mentionTok(tok token.Token, _ int) {
	if tok.IsContextualIdent() {
		p.mention(tok.Text)
	}
}

// parseMember разбирает один член типа. Поля, свойства, события, конструкторы,
// операторы и индексаторы пропускаются: декларативному ядру нужны только методы и вложенные типы.
func (p *Parser) parseMember(t *TypeDecl) {
	p.skipAttributes()
	if p.startsTypeDecl() {
		if nested := p.parseTypeDecl(); nested != nil {
			t.Types = append(t.Types, nested)
		}
		return
	}
	if t.Kind == TypeEnum {
		p.resyncMember()
		return
	}
	start := p.peek().Span
	mods := p.parseModifiers()

	// конструктор Name( и деструктор ~Name(
	if p.at(token.Op) && p.peek().Text == "~" {
		p.skipMember()
		return
	}
	if tok := p.peek(); tok.IsContextualIdent() && p.peekN(1).Kind == token.LParen {
		p.skipMember()
		return
	}
	if !p.peek().IsContextualIdent() && !p.atOr(token.KwVoid, token.LParen) {
		if p.at(token.Semicolon) {
			p.advance()
			return
		}
		p.err(diag.ParUnexpectedToken, "unexpected '"+p.peek().Text+"' in type body")
		p.advance()
		p.resyncMember()
		return
	}

	ret, ok := p.parseTypeRef()
	if !ok {
		p.resyncMember()
		return
	}
	name := p.peek()
	if !name.IsContextualIdent() {
		p.skipMember()
		return
	}
	if next := p.peekN(1).Kind; next != token.LParen && next != token.Lt {
		p.skipMember()
		return
	}
	p.advance()

	m := &MethodDecl{
		Name:       name.Text,
		NameSpan:   name.Span,
		Modifiers:  mods,
		ReturnType: ret,
	}
	if p.at(token.Lt) {
		m.Arity = p.parseTypeParams()
	}
	if !p.at(token.LParen) {
		p.err(diag.ParUnexpectedToken, "expected '(' after method name "+m.Name)
		p.resyncMember()
		return
	}
	m.Params = p.parseParams()
	p.skipConstraints()

	switch {
	case p.at(token.LBrace):
		m.Body = p.parseBlockBody()
	case p.at(token.Arrow):
		p.advance()
		m.ExpressionBodied = true
		m.Body = p.parseExpressionBody()
	default:
		p.expect(token.Semicolon, diag.ParExpectSemicolon, "expected method body or ';'")
	}
	m.Span = start.Cover(p.lastSpan)
	t.Methods = append(t.Methods, m)
}

// skipMember пропускает член, запоминая упомянутые идентификаторы.
func (p *Parser) skipMember() {
	for {
		switch p.peek().Kind {
		case token.EOF, token.RBrace:
			return
		case token.Semicolon:
			p.advance()
			return
		case token.LBrace:
			p.skipBalanced(p.mentionTok)
			if p.at(token.Assign) {
				continue
			}
			p.eat(token.Semicolon)
			return
		case token.LParen, token.LBracket:
			p.skipBalanced(p.mentionTok)
		default:
			p.mentionTok(p.advance(), 0)
		}
	}
}

var paramModifiers = map[string]bool{"ref": true, "out": true, "in": true, "params": true, "this": true, "scoped": true}

// parseParams: '(' [attrs] [mod] Type name [= default] {, ...} ')'
func (p *Parser) parseParams() []Param {
	p.advance() // (
	var params []Param
	for !p.atOr(token.RParen, token.EOF) {
		p.skipAttributes()
		start := p.peek().Span
		prm := Param{}
		for tok := p.peek(); tok.Kind == token.Ident && paramModifiers[tok.Text]; tok = p.peek() {
			next := p.peekN(1)
			if !next.IsContextualIdent() && next.Kind != token.KwVoid && next.Kind != token.LParen {
				break
			}
			prm.Modifier = tok.Text
			p.advance()
		}
		typ, ok := p.parseTypeRef()
		if !ok {
			p.skipUntil(token.Comma, token.RParen)
			if !p.eat(token.Comma) {
				break
			}
			continue
		}
		prm.Type = typ
		if p.peek().IsContextualIdent() {
			prm.Name = p.advance().Text
		}
		if p.eat(token.Assign) {
			p.skipUntil(token.Comma, token.RParen)
		}
		prm.Span = start.Cover(p.lastSpan)
		params = append(params, prm)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RParen, diag.ParUnexpectedToken, "expected ')' to close parameter list")
	return params
}

// skipUntil прокручивает до одного из stop на нулевой глубине скобок (stop не съедается).
func (p *Parser) skipUntil(stop ...token.Kind) {
	for !p.atOr(stop...) && !p.atOr(token.EOF, token.RBrace) {
		if p.atOr(token.LParen, token.LBracket, token.LBrace) {
			p.skipBalanced(p.mentionTok)
			continue
		}
		p.mentionTok(p.advance(), 0)
	}
}

// parseTypeRef: void | (tuple) | [alias::]A.B<...>.C [?] [[]]...
func (p *Parser) parseTypeRef() (TypeRef, bool) {
	start := p.peek()
	var ref TypeRef
	var text strings.Builder

	switch {
	case start.Kind == token.KwVoid:
		p.advance()
		return TypeRef{Text: "void", Name: "void", Span: start.Span}, true
	case start.Kind == token.LParen:
		sp := p.skipBalanced(p.mentionTok)
		text.WriteString(compact(p.unit.File.Text(sp)))
		ref.Name = "ValueTuple"
		ref.Span = sp
	case start.IsContextualIdent():
		p.advance()
		ref.Span = start.Span
		if t := p.peek(); t.Kind == token.Op && t.Text == "::" {
			ref.Alias = start.Text
			text.WriteString(start.Text + "::")
			p.advance()
			first, ok := p.expect(token.Ident, diag.ParExpectIdentifier, "expected identifier after '::'")
			if !ok {
				return ref, false
			}
			start = first
		}
		p.mention(start.Text)
		text.WriteString(start.Text)
		ref.Name = start.Text
		for {
			if p.at(token.Lt) {
				args, ok := p.parseTypeArgs()
				if !ok {
					return ref, false
				}
				ref.Args = args
				text.WriteByte('<')
				for i, a := range args {
					if i > 0 {
						text.WriteByte(',')
					}
					text.WriteString(a.Text)
				}
				text.WriteByte('>')
			}
			if p.at(token.Dot) && p.peekN(1).IsContextualIdent() {
				p.advance()
				id := p.advance()
				p.mention(id.Text)
				text.WriteString("." + id.Text)
				ref.Name = id.Text
				ref.Args = nil
				continue
			}
			break
		}
	default:
		p.err(diag.ParExpectIdentifier, "expected type, got \""+start.Text+"\"")
		return ref, false
	}

	for {
		switch {
		case p.at(token.Question):
			p.advance()
			ref.Nullable = true
			text.WriteByte('?')
			continue
		case p.at(token.LBracket) && (p.peekN(1).Kind == token.RBracket || p.peekN(1).Kind == token.Comma):
			p.advance()
			text.WriteByte('[')
			for p.eat(token.Comma) {
				text.WriteByte(',')
			}
			p.expect(token.RBracket, diag.ParUnexpectedToken, "expected ']'")
			text.WriteByte(']')
			ref.ArrayRank++
			continue
		case p.at(token.Op) && p.peek().Text == "*":
			p.advance()
			text.WriteByte('*')
			continue
		}
		break
	}
	ref.Text = text.String()
	ref.Span = ref.Span.Cover(p.lastSpan)
	return ref, true
}

func (p *Parser) parseTypeArgs() ([]TypeRef, bool) {
	p.advance() // <
	var args []TypeRef
	for !p.at(token.Gt) {
		if p.at(token.Comma) {
			// open generic: typeof(Dictionary<,>)
			p.advance()
			continue
		}
		a, ok := p.parseTypeRef()
		if !ok {
			return args, false
		}
		args = append(args, a)
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.Gt, diag.ParUnexpectedToken, "expected '>' to close type arguments")
	return args, ok
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
