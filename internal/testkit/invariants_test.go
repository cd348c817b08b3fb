package testkit

import (
	"testing"

	"corvid/internal/source"
	"corvid/internal/syntax"
)

func TestCheckUnitInvariants(t *testing.T) {
	fs := source.NewFileSet()
	u := syntax.ParseText(fs, "ok.cv", `#r "lib.cvm"
extern alias X;
global using System;
namespace A.B {
    using System.Text;
    class C<T> {
        static int F(int x) { return x; }
        class Inner { }
    }
}
`)
	if err := CheckUnitInvariants(u); err != nil {
		t.Fatal(err)
	}

	if err := CheckUnitInvariants(&syntax.Unit{}); err == nil {
		t.Fatal("expected an error for a unit without file")
	}

	broken := syntax.ParseText(fs, "broken.cv", "class D { }")
	broken.Root.Types[0].Span.End = 1 << 20
	if err := CheckUnitInvariants(broken); err == nil {
		t.Fatal("expected an out-of-bounds span to be reported")
	}
}
