package syntax

import (
	"strings"

	"corvid/internal/diag"
	"corvid/internal/source"
	"corvid/internal/token"
)

type DirectiveKind uint8

const (
	DirOther DirectiveKind = iota
	// DirReference is `#r "path"`.
	DirReference
	// DirLoad is `#load "path"`.
	DirLoad
	DirPragma
	DirWarning
	DirRegion
	DirNullable
)

// Directive is one `#` line.
type Directive struct {
	Kind DirectiveKind
	// Arg is the unquoted path for #r/#load and the message for #warning.
	Arg  string
	Span source.Span
}

// directive разбирает строку '#...'. afterDecl - уже встречались значимые токены.
func (p *Parser) directive(tok token.Token, afterDecl bool) {
	body := strings.TrimSpace(strings.TrimPrefix(tok.Text, "#"))
	name, rest, _ := strings.Cut(body, " ")
	rest = strings.TrimSpace(rest)
	d := Directive{Span: tok.Span}

	switch name {
	case "r", "load":
		d.Kind = DirReference
		if name == "load" {
			d.Kind = DirLoad
		}
		path, ok := unquote(rest)
		if !ok {
			p.report(diag.ParBadDirective, diag.SevError, tok.Span, "expected quoted path after #"+name)
			return
		}
		if afterDecl {
			p.report(diag.ParDirectiveAfterDecl, diag.SevError, tok.Span, "#"+name+" must precede declarations and statements")
		}
		d.Arg = path
	case "pragma":
		d.Kind = DirPragma
		p.pragma(tok, rest)
	case "warning":
		d.Kind = DirWarning
		d.Arg = rest
		p.report(diag.ParWarningDirective, diag.SevWarning, tok.Span, "#warning: "+rest)
	case "region", "endregion":
		d.Kind = DirRegion
	case "nullable":
		d.Kind = DirNullable
	default:
		p.report(diag.ParBadDirective, diag.SevError, tok.Span, "unknown directive #"+name)
		return
	}
	p.unit.Directives = append(p.unit.Directives, d)
}

// #pragma warning disable|restore [ID[, ID]...]
func (p *Parser) pragma(tok token.Token, rest string) {
	fields := strings.Fields(rest)
	if len(fields) < 2 || fields[0] != "warning" || (fields[1] != "disable" && fields[1] != "restore") {
		p.report(diag.ParUnknownPragma, diag.SevWarning, tok.Span, "unrecognized #pragma directive")
		return
	}
	disable := fields[1] == "disable"
	ids := strings.Join(fields[2:], " ")
	// Переход действует со следующей строки: смещение - конец директивы.
	at := tok.Span.End
	if strings.TrimSpace(ids) == "" {
		p.unit.Pragmas.add(at, 0, disable)
		return
	}
	for raw := range strings.SplitSeq(ids, ",") {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		code, ok := diag.ParseCode(id)
		if !ok {
			p.report(diag.ParUnknownPragma, diag.SevWarning, tok.Span, "unknown diagnostic id '"+id+"' in #pragma")
			continue
		}
		p.unit.Pragmas.add(at, code, disable)
	}
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	return s[1 : len(s)-1], true
}
