package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"corvid/internal/observ"
	"corvid/internal/trace"
)

// startTimings returns the phase timer for the command. With --timings the stage spans
// of the compilation are collected into it as well.
func startTimings(cmd *cobra.Command) (context.Context, *observ.Timer, bool) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timer := observ.NewTimer()
	on, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil || !on {
		return ctx, timer, false
	}
	collector := observ.NewStageCollector(timer, trace.ScopeStage)
	current := trace.FromContext(ctx)
	level := max(current.Level(), collector.Level())
	return trace.WithTracer(ctx, trace.NewMultiTracer(level, current, collector)), timer, true
}

func printTimings(cmd *cobra.Command, timer *observ.Timer, on bool) {
	if !on {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
}
