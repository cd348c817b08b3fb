package lexer_test

import (
	"testing"

	"corvid/internal/diag"
	"corvid/internal/lexer"
	"corvid/internal/source"
	"corvid/internal/token"

	"github.com/google/go-cmp/cmp"
)

func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("test.cv", []byte(input))
	bag := diag.NewBag(0)
	return lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexDeclarations(t *testing.T) {
	lx, bag := makeTestLexer("namespace A.B { public static class C<T> { async void Main(string[] args) { } } }")
	got := kinds(lx.All())
	want := []token.Kind{
		token.KwNamespace, token.Ident, token.Dot, token.Ident, token.LBrace,
		token.KwPublic, token.KwStatic, token.KwClass, token.Ident, token.Lt, token.Ident, token.Gt, token.LBrace,
		token.KwAsync, token.KwVoid, token.Ident, token.LParen, token.Ident, token.LBracket, token.RBracket, token.Ident, token.RParen,
		token.LBrace, token.RBrace, token.RBrace, token.RBrace, token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestDirectiveOnlyAtLineStart(t *testing.T) {
	lx, bag := makeTestLexer("#r \"lib.cvm\"\n  #pragma warning disable CMP4472\nx # y")
	toks := lx.All()
	if toks[0].Kind != token.Directive || toks[0].Text != `#r "lib.cvm"` {
		t.Fatalf("first token = %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.Directive || toks[1].Text != "#pragma warning disable CMP4472" {
		t.Fatalf("second token = %v %q", toks[1].Kind, toks[1].Text)
	}
	if toks[2].Kind != token.Ident || toks[3].Kind != token.Invalid {
		t.Fatalf("mid-line '#' must be invalid, got %v %v", toks[2].Kind, toks[3].Kind)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ParUnknownChar {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestTriviaAndComments(t *testing.T) {
	lx, _ := makeTestLexer("// line\n/* block /* nested */ */ /// doc\nclass")
	tok := lx.Next()
	if tok.Kind != token.KwClass {
		t.Fatalf("got %v", tok.Kind)
	}
	var got []token.TriviaKind
	for _, tr := range tok.Leading {
		got = append(got, tr.Kind)
	}
	want := []token.TriviaKind{
		token.TriviaLineComment, token.TriviaNewline, token.TriviaBlockComment,
		token.TriviaSpace, token.TriviaDocLine, token.TriviaNewline,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("trivia mismatch (-want +got):\n%s", diff)
	}
}

func TestStringsAndLiterals(t *testing.T) {
	lx, bag := makeTestLexer(`"a\"b" @"x""y" $"{v}" 'c' 0x1F 1.5e-3f 10L == != =>`)
	got := kinds(lx.All())
	want := []token.Kind{
		token.StringLit, token.StringLit, token.StringLit, token.CharLit,
		token.NumberLit, token.NumberLit, token.NumberLit,
		token.EqEq, token.BangEq, token.Arrow, token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestUnterminated(t *testing.T) {
	lx, bag := makeTestLexer("\"abc\n/* open")
	lx.All()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(items))
	}
	if items[0].Code != diag.ParUnterminatedString || items[1].Code != diag.ParUnterminatedBlockComment {
		t.Fatalf("codes = %v, %v", items[0].Code, items[1].Code)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("using System;")
	if p := lx.Peek(); p.Kind != token.KwUsing {
		t.Fatalf("peek = %v", p.Kind)
	}
	if n := lx.Next(); n.Kind != token.KwUsing {
		t.Fatalf("next = %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.Ident || n.Text != "System" {
		t.Fatalf("next = %v %q", n.Kind, n.Text)
	}
}

func TestUnicodeIdentifier(t *testing.T) {
	lx, _ := makeTestLexer("класс Привет")
	toks := lx.All()
	if toks[0].Kind != token.Ident || toks[1].Text != "Привет" {
		t.Fatalf("got %v %q", toks[0].Kind, toks[1].Text)
	}
}

func TestCompoundOperatorsAreGreedy(t *testing.T) {
	lx, bag := makeTestLexer("a ??= b == c => d ?. e >= 1.5e3f")
	want := []token.Kind{
		token.Ident, token.Op, token.Ident, token.EqEq, token.Ident, token.Arrow,
		token.Ident, token.Op, token.Ident, token.Op, token.NumberLit, token.EOF,
	}
	toks := lx.All()
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if got := toks[len(toks)-2].Text; got != "1.5e3f" {
		t.Fatalf("number text = %q", got)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestCursorPrefixes(t *testing.T) {
	fs := source.NewFileSet()
	c := lexer.NewCursor(fs.AddVirtual("c.cv", []byte("//x\n  y")))
	m := c.Mark()
	if c.HasPrefix("///") || !c.EatPrefix("//") {
		t.Fatalf("prefix checks at %d", c.Off)
	}
	if n := c.BumpWhile(func(b byte) bool { return b != '\n' }); n != 1 {
		t.Fatalf("BumpWhile took %d bytes", n)
	}
	if got := c.TextFrom(m); got != "//x" {
		t.Fatalf("TextFrom = %q", got)
	}
	c.Reset(m)
	if c.At(3) != '\n' || c.At(100) != 0 {
		t.Fatalf("At lookahead broken")
	}
	c.Off = 6
	if c.Bump() != 'y' || !c.EOF() || c.Bump() != 0 {
		t.Fatalf("bump at end of input")
	}
}
