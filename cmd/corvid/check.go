package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"corvid/internal/compilation"
	"corvid/internal/diag"
	"corvid/internal/diagfmt"
	"corvid/internal/events"
	"corvid/internal/source"
	"corvid/internal/trace"
	"corvid/internal/ui"
	"corvid/internal/version"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [dir]",
		Short: "Report diagnostics for a project or a directory of .cv files",
		Long: `Create a compilation from corvid.toml (or the .cv files under dir) and print
the diagnostics of the requested stage and every earlier one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().String("stage", "compile", "last stage to run (parse|declare|compile)")
	cmd.Flags().Bool("only", false, "report only the requested stage, not the earlier ones")
	mode := uiModeOff
	cmd.Flags().Var(&mode, "ui", "progress view over the compilation events")
	cmd.Flags().String("paths", "auto", "path display (auto|absolute|relative|basename)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	addCompilationFlags(cmd)
	return cmd
}

// runCheck exits non-zero when the reported diagnostics contain errors.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	stageStr, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}
	stage, ok := diag.ParseStage(stageStr)
	if !ok || stage == diag.StageEmit {
		return fmt.Errorf("invalid --stage %q (expected parse|declare|compile)", stageStr)
	}
	only, _ := cmd.Flags().GetBool("only")
	mode := uiMode(cmd.Flags().Lookup("ui").Value.String())
	pathStr, _ := cmd.Flags().GetString("paths")
	pathMode, err := diagfmt.ParsePathMode(pathStr)
	if err != nil {
		return err
	}

	ctx, timer, timingsOn := startTimings(cmd)
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "check")
	defer span.End("")

	ws, err := loadWorkspace(ctx, cmd, args, timer)
	if err != nil {
		return err
	}

	phase := timer.Begin("diagnostics")
	result, err := checkWithProgress(ctx, cmd, ws, stage, !only, mode.showProgress(len(ws.paths)))
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d reported", len(result.Diagnostics)))

	if err := writeDiagnostics(cmd, cmd.OutOrStdout(), result.Diagnostics, ws.fs, format, pathMode); err != nil {
		return err
	}
	printTimings(cmd, timer, timingsOn)
	if !result.Success {
		return errHasErrors
	}
	return nil
}

// checkWithProgress runs the diagnostics query; with the UI on, the progress view follows
// the compilation's event queue on stderr while the query runs.
func checkWithProgress(ctx context.Context, cmd *cobra.Command, ws *workspace, stage diag.Stage, includeEarlier, tui bool) (*compilation.DiagnosticsResult, error) {
	if !tui {
		return ws.comp.GetDiagnostics(ctx, stage, includeEarlier)
	}
	q := events.New()
	comp := ws.comp.WithEventQueue(q)

	uiCtx, stopUI := context.WithCancel(ctx)
	defer stopUI()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := ui.Run(uiCtx, cmd.ErrOrStderr(), comp.Name(), ws.paths, q.Subscribe(uiCtx))
		if uiCtx.Err() != nil {
			return nil
		}
		return err
	})

	var result *compilation.DiagnosticsResult
	g.Go(func() error {
		var err error
		result, err = comp.GetDiagnostics(gctx, stage, includeEarlier)
		// без compile-стадии очередь не закрывается, и UI надо остановить явно
		if !q.Closed() {
			stopUI()
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func writeDiagnostics(cmd *cobra.Command, w io.Writer, items []*diag.Diagnostic, fs *source.FileSet, format string, pathMode diagfmt.PathMode) error {
	maxItems, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	withNotes := true
	if cmd.Flags().Lookup("with-notes") != nil {
		withNotes, _ = cmd.Flags().GetBool("with-notes")
	}
	shown := items
	if maxItems > 0 && len(shown) > maxItems {
		shown = shown[:maxItems]
	}

	switch format {
	case "pretty":
		color := useColor(cmd, os.Stdout)
		diagfmt.Pretty(w, shown, fs, diagfmt.PrettyOpts{Color: color, Context: 2, PathMode: pathMode, ShowNotes: withNotes})
		if !quiet {
			diagfmt.Summary(w, items, color)
		}
	case "short":
		diagfmt.Short(w, shown, fs, pathMode)
	case "json":
		return diagfmt.JSON(w, items, fs, diagfmt.JSONOpts{
			IncludePositions: true, PathMode: pathMode, Max: maxItems, IncludeNotes: withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(w, shown, fs, diagfmt.SarifRunMeta{
			ToolName: "corvid", ToolVersion: version.Version, InvocationArgs: os.Args[1:],
		})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
