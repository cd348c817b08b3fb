// Package trace records spans of compiler work: driver commands, compilation
// snapshots, diagnostic stages and per-unit passes.
//
// Enable it from the command line:
//
//	corvid check --trace=- --trace-level=stage app.cv
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.StartStage(trace.WithSnapshot(ctx, id), "declare")
//	defer span.End("")
//
// Child spans inherit the snapshot id and the stage from the context; unit
// spans also register as in-flight jobs, which heartbeats and crash dumps list.
// StreamTracer writes each event as it happens, RingTracer keeps the last N
// for a crash dump, MultiTracer fans out to both.
package trace
