package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"corvid/internal/diagfmt"
	"corvid/internal/symbols"
	"corvid/internal/trace"
)

func newRefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs [flags] [dir]",
		Short: "Show how the metadata references resolve",
		Long: `List the resolved assemblies in dependency order with their aliases, the corlib,
assemblies kept out of the global namespace, and whether the reference manager is shareable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRefs,
	}
	addCompilationFlags(cmd)
	return cmd
}

func runRefs(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	ctx, timer, timingsOn := startTimings(cmd)
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "refs")
	defer span.End("")

	ws, err := loadWorkspace(ctx, cmd, args, timer)
	if err != nil {
		return err
	}
	res, err := ws.comp.ResolvedReferences(ctx)
	if err != nil {
		return err
	}
	printTimings(cmd, timer, timingsOn)

	aliasesOf := make(map[*symbols.Assembly][]string)
	for _, alias := range res.Aliases() {
		for _, a := range res.AliasAssemblies(alias) {
			aliasesOf[a] = append(aliasesOf[a], alias)
		}
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSEMBLY\tREFERENCE\tALIASES\tFLAGS")
	for _, a := range res.Assemblies {
		var flags []string
		if a == res.Corlib {
			flags = append(flags, "corlib")
		}
		if res.IsExcluded(a) {
			flags = append(flags, "excluded")
		}
		display := ""
		if a.Reference != nil {
			display = a.Reference.Display()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Identity, display,
			strings.Join(aliasesOf[a], ","), strings.Join(flags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "shareable: %v\n", ws.comp.ReferenceManager().Shareable())
	if res.CircularSelf {
		fmt.Fprintln(out, "circular: a reference resolves back to", ws.comp.Name())
	}
	if len(res.Diagnostics) > 0 {
		diagfmt.Short(cmd.ErrOrStderr(), res.Diagnostics, ws.fs, diagfmt.PathModeAuto)
	}
	return nil
}
