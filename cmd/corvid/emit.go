package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"corvid/internal/compilation"
	"corvid/internal/diagfmt"
	"corvid/internal/metadata"
	"corvid/internal/trace"
)

func newEmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit [flags] [dir]",
		Short: "Emit the metadata image of the compilation",
		Long: `Emit writes the source assembly as a metadata image (.cvm msgpack or .cvm.yaml)
that other compilations can reference. Emission is refused while there are errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEmit,
	}
	cmd.Flags().StringP("out", "o", "", "output path (default <name>.cvm in the project root)")
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json|sarif)")
	addCompilationFlags(cmd)
	return cmd
}

func runEmit(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	ctx, timer, timingsOn := startTimings(cmd)
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "emit")
	defer span.End("")

	ws, err := loadWorkspace(ctx, cmd, args, timer)
	if err != nil {
		return err
	}
	if out == "" {
		root := ws.dir
		if ws.manifest != nil {
			root = ws.manifest.Root
		}
		out = filepath.Join(root, ws.comp.Name()+".cvm")
	}

	phase := timer.Begin("emit")
	result, err := ws.comp.Emit(ctx, compilation.EmitOptions{Format: metadata.FormatForPath(out)})
	if err != nil {
		return err
	}
	timer.End(phase, "")

	if err := writeDiagnostics(cmd, cmd.ErrOrStderr(), result.Diagnostics, ws.fs, format, diagfmt.PathModeAuto); err != nil {
		return err
	}
	printTimings(cmd, timer, timingsOn)
	if !result.Success {
		return errHasErrors
	}
	if err := writeImage(out, result.Image); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "emitted %s (%d bytes)\n", out, len(result.Image))
	}
	return nil
}

// writeImage replaces path atomically.
func writeImage(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".emit-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
