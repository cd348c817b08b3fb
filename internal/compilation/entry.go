package compilation

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"corvid/internal/decl"
	"corvid/internal/diag"
	"corvid/internal/source"
	"corvid/internal/symbols"
	"corvid/internal/trace"
)

// EntryPoint is the outcome of entry point resolution.
type EntryPoint struct {
	// Method is nil when there is no (unambiguous) entry point.
	Method *symbols.Method
	// Diagnostics are raw; DCL codes belong to the declare stage, CMP codes to compile.
	Diagnostics []*diag.Diagnostic
}

// GetEntryPoint resolves the entry point once per snapshot.
func (c *Compilation) GetEntryPoint(ctx context.Context) (*EntryPoint, error) {
	return c.lz.entry.GetErr(func() (*EntryPoint, error) {
		span, ctx := trace.Start(c.traced(ctx), trace.ScopeStage, "entry-point")
		ep, err := c.findEntryPoint(ctx)
		if ep != nil && ep.Method != nil {
			span.WithExtra("method", ep.Method.Display())
		}
		span.End("")
		return ep, err
	})
}

func (c *Compilation) findEntryPoint(ctx context.Context) (*EntryPoint, error) {
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	ep := &EntryPoint{}
	mainType := c.options.MainTypeName

	if !c.options.OutputKind.HasEntryPoint() {
		if mainType != "" {
			diag.ReportWarning(rep, diag.DclMainTypeIgnored, source.NoSpan,
				fmt.Sprintf("main type %q is ignored for %s output", mainType, c.options.OutputKind)).Emit()
		}
		ep.Diagnostics = bag.Items()
		return ep, nil
	}

	srcNS, err := c.SourceNamespace(ctx)
	if err != nil {
		return nil, err
	}
	candidates := c.mainCandidates(srcNS.AllTypes())

	if implicit := implicitContainer(srcNS); implicit != nil {
		if mainType != "" {
			diag.ReportWarning(rep, diag.DclMainTypeIgnored, source.NoSpan,
				fmt.Sprintf("main type %q is ignored because the program has top-level statements", mainType)).Emit()
		}
		for _, m := range candidates {
			diag.ReportWarning(rep, diag.CmpTopLevelIgnoresMain, m.Span,
				fmt.Sprintf("%s will not be used as an entry point because a synthesized entry point for top-level statements was found", m.Signature())).Emit()
		}
		ep.Method = implicit.MethodsNamed(decl.SynthesizedMainName)[0]
		ep.Diagnostics = bag.Items()
		return ep, nil
	}

	if mainType != "" {
		global, err := c.GlobalNamespace(ctx)
		if err != nil {
			return nil, err
		}
		t := findType(global, mainType)
		if t == nil || t.Unit == nil {
			diag.ReportError(rep, diag.DclMainTypeNotFound, source.NoSpan,
				fmt.Sprintf("could not find %q specified for Main method", mainType)).Emit()
			ep.Diagnostics = bag.Items()
			return ep, nil
		}
		candidates = c.mainCandidates([]*symbols.Type{t})
	}

	var viable []*symbols.Method
	asyncSeen := false
	for _, m := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entryShape(m) {
			diag.ReportWarning(rep, diag.CmpBadEntryPointShape, m.Span,
				fmt.Sprintf("%s has the wrong signature to be an entry point", m.Signature())).Emit()
			continue
		}
		if m.Async {
			asyncSeen = true
			diag.ReportError(rep, diag.CmpAsyncEntryPoint, m.Span,
				fmt.Sprintf("%s cannot be an entry point because it is marked async", m.Signature())).Emit()
			continue
		}
		viable = append(viable, m)
	}

	switch {
	case len(viable) == 1:
		ep.Method = viable[0]
	case len(viable) > 1:
		b := diag.ReportError(rep, diag.CmpMultipleEntryPoints, viable[0].Span,
			"program has more than one entry point defined")
		for _, m := range viable {
			b.WithNote(m.Span, m.Signature())
		}
		b.Emit()
	case asyncSeen:
		// the async error already explains it
	case mainType != "":
		diag.ReportError(rep, diag.CmpNoSuitableMainInType, source.NoSpan,
			fmt.Sprintf("%q does not have a suitable static Main method", mainType)).Emit()
	default:
		diag.ReportError(rep, diag.CmpNoEntryPoint, source.NoSpan,
			"program does not contain a static Main method suitable for an entry point").Emit()
	}
	ep.Diagnostics = bag.Items()
	return ep, nil
}

// mainCandidates collects static methods named Main of the given source types (nested
// types included when the list comes from AllTypes), ordered by unit ordinal then offset.
func (c *Compilation) mainCandidates(types []*symbols.Type) []*symbols.Method {
	var out []*symbols.Method
	for _, t := range types {
		if t.Unit == nil || t.Implicit {
			continue
		}
		for _, m := range t.MethodsNamed("Main") {
			if m.Static {
				out = append(out, m)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b *symbols.Method) int {
		oa, _ := c.Ordinal(a.Unit)
		ob, _ := c.Ordinal(b.Unit)
		return cmp.Or(cmp.Compare(oa, ob), cmp.Compare(a.Span.Start, b.Span.Start))
	})
	return out
}

var entryReturns = map[string]bool{
	"void":                             true,
	"int":                              true,
	"Task":                             true,
	"Task<int>":                        true,
	"System.Threading.Tasks.Task":      true,
	"System.Threading.Tasks.Task<int>": true,
}

// entryShape checks return type, parameters and genericity of a Main candidate.
func entryShape(m *symbols.Method) bool {
	if m.Arity != 0 || !entryReturns[m.Return] {
		return false
	}
	for t := m.Containing; t != nil; t = t.Containing {
		if t.Arity != 0 {
			return false
		}
	}
	switch len(m.Params) {
	case 0:
		return true
	case 1:
		p := m.Params[0]
		return p.Modifier == "" && (p.Type == "string[]" || p.Type == "String[]" || p.Type == "System.String[]")
	}
	return false
}
