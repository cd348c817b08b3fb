package syntax

import (
	"fmt"
	"strings"

	"corvid/internal/diag"
	"corvid/internal/source"
	"corvid/internal/token"

	"fortio.org/safecast"
)

// parseCompilationUnit - верхний уровень: extern alias, using, global using,
// namespace, типы и top-level statements.
func (p *Parser) parseCompilationUnit() *NamespaceDecl {
	root := &NamespaceDecl{Span: p.fileSpan()}
	var top *bodyBuilder
	for !p.at(token.EOF) {
		if p.tryNamespaceMember(root, true) {
			continue
		}
		if p.at(token.RBrace) {
			p.err(diag.ParUnexpectedToken, "unexpected '}'")
			p.advance()
			continue
		}
		if top == nil {
			top = newBodyBuilder(p, p.peek().Span)
		}
		p.parseStatement(top)
	}
	if top != nil {
		p.unit.TopLevel = top.finish(top.start.Cover(p.lastSpan))
	}
	return root
}

func (p *Parser) fileSpan() source.Span {
	f := p.unit.File
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file size overflow: %w", err))
	}
	return source.Span{File: f.ID, Start: 0, End: end}
}

// tryNamespaceMember разбирает одну декларацию уровня namespace.
// false - под курсором не декларация (на верхнем уровне это statement).
func (p *Parser) tryNamespaceMember(ns *NamespaceDecl, topLevel bool) bool {
	switch tok := p.peek(); tok.Kind {
	case token.KwExtern:
		if p.peekN(1).Kind == token.KwAlias {
			p.parseExternAlias(topLevel)
			return true
		}
	case token.KwGlobal:
		if p.peekN(1).Kind == token.KwUsing {
			start := p.advance()
			p.advance()
			u, ok := p.parseUsing(start.Span)
			if ok {
				u.Global = true
				if !topLevel {
					p.report(diag.ParUnexpectedToken, diag.SevError, u.Span, "global using must appear at the top of the file")
				}
				p.unit.GlobalUsings = append(p.unit.GlobalUsings, u)
			}
			return true
		}
	case token.KwUsing:
		// `using (` и `using var` - это statement
		next := p.peekN(1)
		if next.Kind == token.LParen || (next.Kind == token.Ident && next.Text == "var") {
			return false
		}
		start := p.advance()
		if u, ok := p.parseUsing(start.Span); ok {
			ns.Usings = append(ns.Usings, u)
		}
		return true
	case token.KwNamespace:
		p.parseNamespace(ns)
		return true
	case token.LBracket:
		// атрибуты уровня сборки/типа: `[assembly: X]`, `[Serializable] class ...`
		if topLevel && !p.attributeStartsDecl() {
			return false
		}
		p.skipAttributes()
		return true
	}
	if p.startsTypeDecl() {
		if t := p.parseTypeDecl(); t != nil {
			ns.Types = append(ns.Types, t)
		}
		return true
	}
	return false
}

func (p *Parser) attributeStartsDecl() bool {
	i := 0
	for p.peekN(i).Kind == token.LBracket {
		depth := 0
		for {
			k := p.peekN(i).Kind
			if k == token.EOF {
				return false
			}
			i++
			if k == token.LBracket {
				depth++
			} else if k == token.RBracket {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}
	return p.startsTypeDeclAt(i) || p.peekN(i).Kind == token.LBracket
}

func (p *Parser) skipAttributes() {
	for p.at(token.LBracket) {
		p.skipBalanced(func(tok token.Token, _ int) {
			if tok.IsContextualIdent() {
				p.mention(tok.Text)
				p.mention(tok.Text + "Attribute")
			}
		})
	}
}

// startsTypeDecl: модификаторы* (class|struct|interface|enum|record)
func (p *Parser) startsTypeDecl() bool {
	return p.startsTypeDeclAt(0)
}

func (p *Parser) startsTypeDeclAt(i int) bool {
	for {
		tok := p.peekN(i)
		switch {
		case tok.Kind.IsTypeKeyword() && tok.Kind != token.KwRecord:
			return true
		case tok.Kind == token.KwRecord:
			next := p.peekN(i + 1)
			return next.Kind == token.Ident || next.Kind == token.KwStruct || next.Kind == token.KwClass
		case tok.Kind.IsModifier(), isModifierIdent(tok):
			i++
		default:
			return false
		}
	}
}

func isModifierIdent(tok token.Token) bool {
	if tok.Kind != token.Ident {
		return false
	}
	switch tok.Text {
	case "readonly", "unsafe", "new", "file", "ref", "required", "const", "volatile", "fixed", "extern":
		return true
	}
	return false
}

// extern alias X;
func (p *Parser) parseExternAlias(topLevel bool) {
	start := p.advance() // extern
	p.advance()          // alias
	name, ok := p.expect(token.Ident, diag.ParExpectIdentifier, "expected alias name")
	if !ok {
		p.resyncMember()
		return
	}
	if _, ok := p.expect(token.Semicolon, diag.ParExpectSemicolon, "expected ';' after extern alias"); !ok {
		p.resyncMember()
	}
	if !topLevel {
		p.report(diag.ParUnexpectedToken, diag.SevError, start.Span, "extern alias must appear at the top of the file")
		return
	}
	p.unit.ExternAliases = append(p.unit.ExternAliases, ExternAlias{Name: name.Text, Span: start.Span.Cover(p.lastSpan)})
}

// using [static] A.B; | using X = A.B;  (ключевое слово using уже съедено)
func (p *Parser) parseUsing(start source.Span) (Using, bool) {
	u := Using{}
	if t := p.peek(); t.Kind == token.KwStatic {
		p.advance()
		u.Static = true
	}
	if p.peek().IsContextualIdent() && p.peekN(1).Kind == token.Assign {
		u.Alias = p.advance().Text
		p.advance()
	}
	p.quiet = true
	ref, ok := p.parseTypeRef()
	p.quiet = false
	if !ok {
		p.resyncMember()
		return u, false
	}
	u.Path = ref.Text
	u.PathSpan = ref.Span
	if _, ok := p.expect(token.Semicolon, diag.ParExpectSemicolon, "expected ';' after using directive"); !ok {
		p.resyncMember()
	}
	u.Span = start.Cover(p.lastSpan)
	return u, true
}

// namespace A.B { ... } | namespace A.B;
func (p *Parser) parseNamespace(parent *NamespaceDecl) {
	start := p.advance()
	name, nameSpan, ok := p.parseDottedName()
	if !ok {
		p.resyncMember()
		return
	}
	ns := &NamespaceDecl{Name: name, NameSpan: nameSpan}
	parent.Namespaces = append(parent.Namespaces, ns)

	if p.eat(token.Semicolon) {
		// file-scoped: остаток файла принадлежит этому namespace
		ns.FileScoped = true
		for !p.at(token.EOF) {
			if !p.tryNamespaceMember(ns, false) {
				p.err(diag.ParUnexpectedToken, "unexpected '"+p.peek().Text+"' in namespace")
				p.advance()
				p.resyncMember()
			}
		}
		ns.Span = start.Span.Cover(p.lastSpan)
		return
	}

	if _, ok := p.expect(token.LBrace, diag.ParUnexpectedToken, "expected '{' or ';' after namespace name"); !ok {
		p.resyncMember()
		ns.Span = start.Span.Cover(p.lastSpan)
		return
	}
	p.parseNamespaceBody(ns, start.Span)
}

func (p *Parser) parseNamespaceBody(ns *NamespaceDecl, start source.Span) {
	for !p.atOr(token.RBrace, token.EOF) {
		if !p.tryNamespaceMember(ns, false) {
			p.err(diag.ParUnexpectedToken, "unexpected '"+p.peek().Text+"' in namespace")
			p.advance()
			p.resyncMember()
		}
	}
	if _, ok := p.expect(token.RBrace, diag.ParUnclosedBrace, "expected '}' to close namespace"); ok {
		p.eat(token.Semicolon)
	}
	ns.Span = start.Cover(p.lastSpan)
}

func (p *Parser) parseDottedName() (string, source.Span, bool) {
	first := p.peek()
	if !first.IsContextualIdent() {
		p.err(diag.ParExpectIdentifier, "expected identifier, got \""+first.Text+"\"")
		return "", first.Span, false
	}
	p.advance()
	parts := []string{first.Text}
	sp := first.Span
	for p.at(token.Dot) && p.peekN(1).IsContextualIdent() {
		p.advance()
		id := p.advance()
		parts = append(parts, id.Text)
		sp = sp.Cover(id.Span)
	}
	return strings.Join(parts, "."), sp, true
}

func (p *Parser) parseModifiers() Modifiers {
	var m Modifiers
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.KwPublic:
			m |= ModPublic
		case token.KwPrivate:
			m |= ModPrivate
		case token.KwInternal:
			m |= ModInternal
		case token.KwProtected:
			m |= ModProtected
		case token.KwStatic:
			m |= ModStatic
		case token.KwAsync:
			// `async` как имя типа/члена: async(...) или async; - не модификатор
			if next := p.peekN(1); next.Kind == token.LParen || next.Kind == token.Semicolon {
				return m
			}
			m |= ModAsync
		case token.KwAbstract:
			m |= ModAbstract
		case token.KwVirtual:
			m |= ModVirtual
		case token.KwOverride:
			m |= ModOverride
		case token.KwSealed:
			m |= ModSealed
		case token.KwPartial:
			m |= ModPartial
		case token.KwExtern:
			m |= ModExtern
		default:
			if !isModifierIdent(tok) {
				return m
			}
			if tok.Text == "extern" {
				m |= ModExtern
			}
		}
		p.advance()
	}
}
