package binder

import (
	"fmt"
	"strings"

	"corvid/internal/diag"
	"corvid/internal/syntax"
)

// bodies runs the method-body checks over every method with a body and over the
// top-level statements.
func (c *checker) bodies() {
	var visitType func(td *syntax.TypeDecl)
	visitType = func(td *syntax.TypeDecl) {
		for _, m := range td.Methods {
			c.method(m)
		}
		for _, n := range td.Types {
			visitType(n)
		}
	}
	var visitNS func(ns *syntax.NamespaceDecl)
	visitNS = func(ns *syntax.NamespaceDecl) {
		for _, td := range ns.Types {
			visitType(td)
		}
		for _, child := range ns.Namespaces {
			visitNS(child)
		}
	}
	visitNS(c.unit.Root)
	// await допустим в top-level коде: точка входа становится асинхронной
}

func (c *checker) method(m *syntax.MethodDecl) {
	if m.Body == nil {
		return
	}
	async := m.Modifiers.Has(syntax.ModAsync)
	if !async {
		for _, at := range m.Body.Awaits {
			diag.ReportError(c.rep, diag.CmpAwaitInNonAsync, at,
				fmt.Sprintf("the 'await' operator can only be used within an async method; consider marking '%s' with the 'async' modifier", m.Name)).Emit()
		}
	}
	if needsValue(m, async) && !m.ExpressionBodied && !m.Body.ReturnsValue() && !m.Body.Throws {
		diag.ReportError(c.rep, diag.CmpMissingReturn, m.NameSpan,
			fmt.Sprintf("'%s': not all code paths return a value", m.Name)).Emit()
	}
	c.nullComparisons(m)
}

// needsValue reports whether returning from m requires an expression.
func needsValue(m *syntax.MethodDecl, async bool) bool {
	rt := m.ReturnType
	if rt.IsZero() || rt.IsVoid() {
		return false
	}
	if async && (rt.Name == "Task" || rt.Name == "ValueTask") && len(rt.Args) == 0 {
		return false
	}
	return true
}

var valueTypes = map[string]bool{
	"bool": true, "byte": true, "sbyte": true, "short": true, "ushort": true,
	"int": true, "uint": true, "long": true, "ulong": true, "char": true,
	"float": true, "double": true, "decimal": true, "nint": true, "nuint": true,
	"Boolean": true, "Byte": true, "SByte": true, "Int16": true, "UInt16": true,
	"Int32": true, "UInt32": true, "Int64": true, "UInt64": true, "Char": true,
	"Single": true, "Double": true, "Decimal": true, "Guid": true, "DateTime": true,
}

// nullComparisons warns about `p == null` where p is a value-typed parameter.
// Comparisons on nullable parameters are retracted: `int?` may well be null.
func (c *checker) nullComparisons(m *syntax.MethodDecl) {
	for _, nc := range m.Body.NullCompare {
		p, ok := paramNamed(m, nc.Operand)
		if !ok || p.Type.ArrayRank > 0 {
			continue
		}
		builtin := valueTypes[p.Type.Name]
		userStruct := !builtin && c.isSourceValueType(p.Type.Name)
		if !builtin && !userStruct {
			continue
		}
		var d *diag.Diagnostic
		switch {
		case userStruct:
			d = diag.NewWarning(diag.CmpNullComparison, nc.Span,
				fmt.Sprintf("the result of comparing '%s' of type '%s' with null is constant", p.Name, p.Type.Text))
		case nc.Equal:
			d = diag.NewWarning(diag.CmpNullComparisonFalse, nc.Span,
				fmt.Sprintf("the result of the expression is always 'false' since a value of type '%s' is never null", p.Type.Text))
		default:
			d = diag.NewWarning(diag.CmpNullComparisonTrue, nc.Span,
				fmt.Sprintf("the result of the expression is always 'true' since a value of type '%s' is never null", p.Type.Text))
		}
		if p.Type.Nullable {
			d.Retract()
		}
		c.bag.Add(d)
	}
}

func paramNamed(m *syntax.MethodDecl, name string) (syntax.Param, bool) {
	for _, p := range m.Params {
		if p.Name == name {
			return p, true
		}
	}
	return syntax.Param{}, false
}

// isSourceValueType reports whether some declared struct or enum has this simple name.
func (c *checker) isSourceValueType(name string) bool {
	for _, t := range c.global.AllTypes() {
		if t.Name != name {
			continue
		}
		if t.TypeKind == "struct" || t.TypeKind == "enum" || strings.HasSuffix(t.TypeKind, " struct") {
			return true
		}
	}
	return false
}
