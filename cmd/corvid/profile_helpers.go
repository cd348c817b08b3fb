package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corvid/internal/prof"
)

var profSession *prof.Session

// setupProfiling starts the profilers requested by --cpuprofile, --memprofile and --runtime-trace.
func setupProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	cpu, _ := pf.GetString("cpuprofile")
	mem, _ := pf.GetString("memprofile")
	rt, _ := pf.GetString("runtime-trace")
	cfg := prof.Config{CPU: cpu, Mem: mem, Runtime: rt}
	if !cfg.Enabled() {
		return nil
	}
	s, err := prof.Start(cfg)
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	profSession = s
	return nil
}

func stopProfiling(cmd *cobra.Command) {
	s := profSession
	profSession = nil
	if err := s.Stop(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
	}
}
