package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corvid/internal/diagfmt"
	"corvid/internal/trace"
)

func newEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry [flags] [dir]",
		Short: "Print the resolved entry point",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEntry,
	}
	addCompilationFlags(cmd)
	return cmd
}

func runEntry(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	ctx, timer, timingsOn := startTimings(cmd)
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "entry")
	defer span.End("")

	ws, err := loadWorkspace(ctx, cmd, args, timer)
	if err != nil {
		return err
	}
	ep, err := ws.comp.GetEntryPoint(ctx)
	if err != nil {
		return err
	}
	printTimings(cmd, timer, timingsOn)

	out := cmd.OutOrStdout()
	if !ws.comp.Options().OutputKind.HasEntryPoint() {
		fmt.Fprintf(out, "%s output has no entry point\n", ws.comp.Options().OutputKind)
	} else if ep.Method != nil {
		fmt.Fprintln(out, ep.Method.Signature())
	}
	if len(ep.Diagnostics) > 0 {
		diagfmt.Pretty(cmd.ErrOrStderr(), ep.Diagnostics, ws.fs, diagfmt.PrettyOpts{ShowNotes: true})
	}
	if ep.Method == nil && ws.comp.Options().OutputKind.HasEntryPoint() {
		return errHasErrors
	}
	return nil
}
