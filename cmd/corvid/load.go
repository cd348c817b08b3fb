package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"corvid/internal/compilation"
	"corvid/internal/diag"
	"corvid/internal/metadata"
	"corvid/internal/observ"
	"corvid/internal/project"
	"corvid/internal/refman"
	"corvid/internal/source"
	"corvid/internal/syntax"
	"corvid/internal/trace"
)

// addCompilationFlags registers the flags that override corvid.toml.
func addCompilationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "assembly name (default: manifest name or directory name)")
	f.String("output", "", "output kind (console|library|module|script)")
	f.String("main", "", "type that contains Main")
	f.Int("warning-level", -1, "warning level 0-9 (default: manifest or 4)")
	f.Bool("warnaserror", false, "treat warnings as errors")
	f.StringSlice("feature", nil, "feature flag name[:value] (repeatable)")
	f.StringSlice("reference", nil, "metadata reference path[=alias;alias] (repeatable)")
	f.Int("jobs", 0, "max parallel per-unit workers (0 = GOMAXPROCS)")
	f.Bool("sequential", false, "disable the concurrent build")
}

// workspace is everything a command needs to query one compilation.
type workspace struct {
	dir      string
	fs       *source.FileSet
	manifest *project.Manifest
	paths    []string
	comp     *compilation.Compilation
}

// loadWorkspace reads the manifest (if any), parses the sources and creates the compilation.
func loadWorkspace(ctx context.Context, cmd *cobra.Command, args []string, timer *observ.Timer) (*workspace, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}

	span, ctx := trace.Start(ctx, trace.ScopeDriver, "load")
	defer span.End("")
	phase := timer.Begin("load")

	ws := &workspace{dir: abs, fs: source.NewFileSetWithBase(abs)}
	opts := compilation.DefaultOptions()
	name := filepath.Base(abs)
	var refs []*metadata.Reference

	manifest, ok, err := project.LoadManifest(abs)
	if err != nil {
		return nil, err
	}
	if ok {
		ws.manifest = manifest
		ws.fs = source.NewFileSetWithBase(manifest.Root)
		if opts, err = manifest.Config.Options(); err != nil {
			return nil, fmt.Errorf("%s: %w", manifest.Path, err)
		}
		name = manifest.Config.Compilation.Name
		refs = manifest.References()
		if ws.paths, err = manifest.SourceFiles(); err != nil {
			return nil, err
		}
	} else if ws.paths, err = project.CollectSources(abs); err != nil {
		return nil, err
	}

	if name, opts, refs, err = applyFlags(cmd, name, opts, refs); err != nil {
		return nil, err
	}
	opts = opts.WithReferenceResolver(refman.ResolverFunc(resolveDirective))
	timer.End(phase, fmt.Sprintf("%d files", len(ws.paths)))

	phase = timer.Begin("parse")
	units := make([]*syntax.Unit, 0, len(ws.paths))
	for _, path := range ws.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := ws.fs.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		units = append(units, syntax.Parse(file))
	}
	timer.End(phase, "")

	ws.comp, err = compilation.Create(ctx, name, units, refs, opts)
	if err != nil {
		return nil, err
	}
	span.WithExtra("units", fmt.Sprint(len(units)))
	return ws, nil
}

// applyFlags layers explicitly set CLI flags over the manifest.
func applyFlags(cmd *cobra.Command, name string, opts compilation.Options, refs []*metadata.Reference) (string, compilation.Options, []*metadata.Reference, error) {
	f := cmd.Flags()
	if f.Changed("name") {
		name, _ = f.GetString("name")
	}
	if f.Changed("output") {
		v, _ := f.GetString("output")
		kind, err := compilation.ParseOutputKind(v)
		if err != nil {
			return name, opts, refs, err
		}
		opts = opts.WithOutputKind(kind)
	}
	if f.Changed("main") {
		v, _ := f.GetString("main")
		opts = opts.WithMainTypeName(v)
	}
	if f.Changed("warning-level") {
		v, _ := f.GetInt("warning-level")
		if v < 0 || v > compilation.MaxWarningLevel {
			return name, opts, refs, fmt.Errorf("--warning-level must be within 0..%d, got %d", compilation.MaxWarningLevel, v)
		}
		opts = opts.WithWarningLevel(uint8(v))
	}
	if on, _ := f.GetBool("warnaserror"); on {
		opts = opts.WithGeneralDiagnosticOption(diag.ActionError)
	}
	if f.Changed("feature") {
		v, _ := f.GetStringSlice("feature")
		opts = opts.WithFeatures(append(opts.Features, v...)...)
	}
	if f.Changed("jobs") {
		v, _ := f.GetInt("jobs")
		opts = opts.WithJobs(v)
	}
	if on, _ := f.GetBool("sequential"); on {
		opts = opts.WithConcurrentBuild(false)
	}
	if f.Changed("reference") {
		v, _ := f.GetStringSlice("reference")
		for _, spec := range v {
			refs = append(refs, parseReferenceFlag(spec))
		}
	}
	if err := opts.Validate(); err != nil {
		return name, opts, refs, err
	}
	return name, opts, refs, nil
}

// parseReferenceFlag accepts "path" or "path=alias;alias".
func parseReferenceFlag(spec string) *metadata.Reference {
	i := strings.LastIndexByte(spec, '=')
	if i < 0 {
		return metadata.FromFile(spec)
	}
	var aliases []string
	for _, a := range strings.Split(spec[i+1:], ";") {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	return metadata.FromFile(spec[:i]).WithAliases(aliases...)
}

// resolveDirective resolves `#r "path"` relative to the unit that carries it.
func resolveDirective(path, from string) (*metadata.Reference, error) {
	if !filepath.IsAbs(path) && from != "" {
		path = filepath.Join(filepath.Dir(from), filepath.FromSlash(path))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return metadata.FromFile(path), nil
}
