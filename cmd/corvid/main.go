package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"corvid/internal/version"
)

// errHasErrors is returned by commands whose diagnostics contain errors; it only sets the exit code.
var errHasErrors = errors.New("compilation has errors")

// newRootCmd builds the command tree; tests get a fresh one per run.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "corvid",
		Short:         "Corvid compilation driver",
		Long:          `Corvid builds immutable compilation snapshots over .cv sources and metadata references`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			traceCleanup = cleanup
			return setupProfiling(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			stopProfiling(cmd)
			runTraceCleanup()
		},
	}

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newEmitCmd())
	rootCmd.AddCommand(newEntryCmd())
	rootCmd.AddCommand(newRefsCmd())
	rootCmd.AddCommand(newImageCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show (0 = all)")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|driver|stage|debug)")
	pf.String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity for crash dumps")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 = disabled)")
	pf.String("cpuprofile", "", "write a CPU profile to file")
	pf.String("memprofile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
	return rootCmd
}

// main executes the root command; any returned error exits with status 1.
func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		stopProfiling(rootCmd)
		runTraceCleanup()
		if !errors.Is(err, errHasErrors) {
			rootCmd.PrintErrln("error:", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits int
}

// useColor resolves --color against the given stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(f))
}
