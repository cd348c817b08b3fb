package syntax

import (
	"slices"

	"corvid/internal/diag"
	"corvid/internal/lexer"
	"corvid/internal/source"
	"corvid/internal/token"
)

type Options struct {
	// MaxErrors останавливает разбор после N ошибок; 0 - без лимита.
	MaxErrors uint
}

// Parser - состояние парсера на один файл
type Parser struct {
	toks     []token.Token // значимые токены, директивы уже отфильтрованы; последний - EOF
	pos      int
	unit     *Unit
	bag      *diag.Bag
	opts     Options
	errors   uint
	lastSpan source.Span
	// quiet отключает учёт упоминаний (путь в using не считается использованием)
	quiet bool
}

// Parse parses a file into a new Unit. It never fails; problems become PAR diagnostics.
func Parse(file *source.File) *Unit {
	return ParseWithOptions(file, Options{})
}

func ParseWithOptions(file *source.File, opts Options) *Unit {
	u := &Unit{
		File:    file,
		Pragmas: &PragmaTable{},
		names:   make(map[string]struct{}),
	}
	p := &Parser{unit: u, bag: diag.NewBag(0), opts: opts}

	lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: p.bag}})
	p.toks = p.filterDirectives(lx.All())
	p.lastSpan = source.Span{File: file.ID}

	u.Root = p.parseCompilationUnit()
	u.Diagnostics = p.bag.Items()
	return u
}

// ParseText is a convenience for tests and interactive submissions.
func ParseText(fs *source.FileSet, name, text string) *Unit {
	return Parse(fs.AddVirtual(name, []byte(text)))
}

// filterDirectives обрабатывает '#' строки и убирает их из потока.
func (p *Parser) filterDirectives(all []token.Token) []token.Token {
	out := make([]token.Token, 0, len(all))
	seen := false
	for _, tok := range all {
		if tok.Kind == token.Directive {
			p.directive(tok, seen)
			continue
		}
		if tok.Kind != token.EOF {
			seen = true
		}
		out = append(out, tok)
	}
	return out
}

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

// peekN смотрит на n токенов вперёд; за концом - EOF.
func (p *Parser) peekN(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) atIdentText(text string) bool {
	t := p.peek()
	return t.Kind == token.Ident && t.Text == text
}

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagSpan()
	p.report(code, diag.SevError, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// diagSpan: на EOF указываем сразу за последним съеденным токеном.
func (p *Parser) diagSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.diagSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if sev == diag.SevError {
		p.errors++
		if p.opts.MaxErrors != 0 && p.errors > p.opts.MaxErrors {
			return
		}
	}
	p.bag.Add(diag.New(sev, code, sp, msg))
}

// mention записывает идентификатор для анализа неиспользуемых using.
func (p *Parser) mention(name string) {
	if p.quiet {
		return
	}
	p.unit.names[name] = struct{}{}
}

// skipBalanced съедает сбалансированную группу, начиная с открывающей скобки под курсором.
// Возвращает span всей группы.
func (p *Parser) skipBalanced(onTok func(tok token.Token, depth int)) source.Span {
	open := p.advance()
	closeKind := closerOf(open.Kind)
	depth := 1
	for depth > 0 {
		tok := p.peek()
		if tok.Kind == token.EOF {
			p.report(diag.ParUnclosedBrace, diag.SevError, open.Span, "unclosed '"+open.Text+"'")
			return open.Span.Cover(p.lastSpan)
		}
		p.advance()
		switch tok.Kind {
		case open.Kind:
			depth++
		case closeKind:
			depth--
			if depth == 0 {
				return open.Span.Cover(tok.Span)
			}
		}
		if onTok != nil {
			onTok(tok, depth)
		}
	}
	return open.Span
}

func closerOf(k token.Kind) token.Kind {
	switch k {
	case token.LBrace:
		return token.RBrace
	case token.LParen:
		return token.RParen
	case token.LBracket:
		return token.RBracket
	case token.Lt:
		return token.Gt
	}
	return token.Invalid
}

// resyncMember прокручивает до ';' (съедая) или до сбалансированного блока '{...}',
// не выходя за закрывающую '}' текущей области.
func (p *Parser) resyncMember() {
	for {
		switch p.peek().Kind {
		case token.EOF, token.RBrace:
			return
		case token.Semicolon:
			p.advance()
			return
		case token.LBrace:
			p.skipBalanced(nil)
			// `{ get; set; } = value;`
			if p.at(token.Assign) {
				continue
			}
			p.eat(token.Semicolon)
			return
		case token.LParen, token.LBracket:
			p.skipBalanced(nil)
		default:
			p.advance()
		}
	}
}
