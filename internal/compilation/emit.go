package compilation

import (
	"context"
	"errors"
	"fmt"

	"corvid/internal/diag"
	"corvid/internal/emit"
	"corvid/internal/metadata"
	"corvid/internal/source"
	"corvid/internal/trace"
)

// EmitOptions configures Emit.
type EmitOptions struct {
	// Format of the produced image; FormatAuto lets the emitter decide.
	Format metadata.Format
}

// EmitResult is the outcome of Emit. Image is nil unless Success.
type EmitResult struct {
	Success     bool
	Image       []byte
	Diagnostics []*diag.Diagnostic
}

// Emit produces the output artifact. It is refused, with EMT5001, while the
// parse, declare or compile stages report errors after policy.
func (c *Compilation) Emit(ctx context.Context, opts EmitOptions) (*EmitResult, error) {
	span, ctx := trace.StartStage(c.traced(ctx), "emit")
	defer span.End("")

	dr, err := c.GetDiagnostics(ctx, diag.StageCompile, true)
	if err != nil {
		return nil, err
	}
	result := &EmitResult{Diagnostics: dr.Diagnostics}
	if !dr.Success {
		result.Diagnostics = append(result.Diagnostics, diag.NewError(diag.EmtRefused, source.NoSpan,
			fmt.Sprintf("cannot emit %q: the compilation has errors", c.name)))
		span.WithExtra("refused", "true")
		return result, nil
	}

	ep, err := c.GetEntryPoint(ctx)
	if err != nil {
		return nil, err
	}
	asm, err := c.SourceAssembly(ctx)
	if err != nil {
		return nil, err
	}
	img, err := c.options.emitter().Emit(ctx, emit.Input{Assembly: asm, EntryPoint: ep.Method, Format: opts.Format})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		result.Diagnostics = append(result.Diagnostics, diag.NewError(diag.EmtFailed, source.NoSpan,
			fmt.Sprintf("emitter failed: %v", err)))
		return result, nil
	}
	span.WithExtra("bytes", fmt.Sprint(len(img)))
	result.Success = true
	result.Image = img
	return result, nil
}

// AsReference wraps a successful emit result as a metadata reference, so that
// the output of one compilation can be referenced by another.
func (r *EmitResult) AsReference(display string) (*metadata.Reference, error) {
	if r == nil || !r.Success {
		return nil, errors.New("emit result has no image")
	}
	return metadata.FromBytes(display, r.Image, metadata.FormatAuto), nil
}
