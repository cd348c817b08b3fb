package compilation

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"

	"corvid/internal/binder"
	"corvid/internal/decl"
	"corvid/internal/diag"
	"corvid/internal/emit"
	"corvid/internal/metadata"
	"corvid/internal/refman"
)

// OutputKind is what the compilation produces.
type OutputKind uint8

const (
	OutputConsole OutputKind = iota
	OutputLibrary
	OutputModule
	OutputScript
)

func (k OutputKind) String() string {
	switch k {
	case OutputConsole:
		return "console"
	case OutputLibrary:
		return "library"
	case OutputModule:
		return "module"
	case OutputScript:
		return "script"
	}
	return "unknown"
}

// ParseOutputKind accepts the manifest/CLI spellings.
func ParseOutputKind(s string) (OutputKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "console", "exe":
		return OutputConsole, nil
	case "library", "lib":
		return OutputLibrary, nil
	case "module":
		return OutputModule, nil
	case "script":
		return OutputScript, nil
	}
	return OutputConsole, fmt.Errorf("unknown output kind %q (expected console|library|module|script)", s)
}

// HasEntryPoint reports whether the output needs a Main.
func (k OutputKind) HasEntryPoint() bool { return k == OutputConsole }

const (
	DefaultWarningLevel = 4
	MaxWarningLevel     = 9
)

// Options is an immutable configuration value; the With methods return modified copies.
type Options struct {
	OutputKind            OutputKind
	MainTypeName          string
	ScriptClassName       string
	ImplicitContainerName string
	WarningLevel          uint8
	// GeneralDiagnosticOption applies to warnings without a specific override.
	GeneralDiagnosticOption   diag.Action
	SpecificDiagnosticOptions map[diag.Code]diag.Action
	// Usings are namespaces imported into every unit (script globals).
	Usings []string
	// Features are "name[:value]" flags.
	Features        []string
	ConcurrentBuild bool
	// Jobs bounds per-unit parallelism; 0 means GOMAXPROCS.
	Jobs              int
	IdentityComparer  metadata.Comparer
	HostObjectType    string
	ReferenceResolver refman.Resolver
	Binder            binder.Binder
	Emitter           emit.Emitter
	// Version is the version of the assembly being compiled.
	Version string
}

// DefaultOptions returns console output with warning level 4 and concurrent diagnostics.
func DefaultOptions() Options {
	return Options{
		OutputKind:      OutputConsole,
		WarningLevel:    DefaultWarningLevel,
		ConcurrentBuild: true,
		Version:         "1.0.0.0",
	}
}

func (o Options) WithOutputKind(k OutputKind) Options     { o.OutputKind = k; return o }
func (o Options) WithMainTypeName(name string) Options    { o.MainTypeName = name; return o }
func (o Options) WithScriptClassName(name string) Options { o.ScriptClassName = name; return o }
func (o Options) WithImplicitContainerName(name string) Options {
	o.ImplicitContainerName = name
	return o
}
func (o Options) WithWarningLevel(level uint8) Options { o.WarningLevel = level; return o }
func (o Options) WithGeneralDiagnosticOption(a diag.Action) Options {
	o.GeneralDiagnosticOption = a
	return o
}

// WithSpecificDiagnosticOptions replaces the per-id table; the map is copied.
func (o Options) WithSpecificDiagnosticOptions(m map[diag.Code]diag.Action) Options {
	o.SpecificDiagnosticOptions = maps.Clone(m)
	return o
}

// clone detaches the map and slices from the caller's copy.
func (o Options) clone() Options {
	o.SpecificDiagnosticOptions = maps.Clone(o.SpecificDiagnosticOptions)
	o.Usings = slices.Clone(o.Usings)
	o.Features = slices.Clone(o.Features)
	return o
}

func (o Options) WithUsings(usings ...string) Options { o.Usings = slices.Clone(usings); return o }
func (o Options) WithFeatures(features ...string) Options {
	o.Features = slices.Clone(features)
	return o
}
func (o Options) WithConcurrentBuild(on bool) Options { o.ConcurrentBuild = on; return o }
func (o Options) WithJobs(n int) Options              { o.Jobs = n; return o }
func (o Options) WithIdentityComparer(c metadata.Comparer) Options {
	o.IdentityComparer = c
	return o
}
func (o Options) WithHostObjectType(name string) Options { o.HostObjectType = name; return o }
func (o Options) WithReferenceResolver(r refman.Resolver) Options {
	o.ReferenceResolver = r
	return o
}
func (o Options) WithBinder(b binder.Binder) Options { o.Binder = b; return o }
func (o Options) WithEmitter(e emit.Emitter) Options { o.Emitter = e; return o }
func (o Options) WithVersion(version string) Options { o.Version = version; return o }

// Validate rejects configurations no compilation can run with.
func (o Options) Validate() error {
	if o.OutputKind > OutputScript {
		return errorf(KindInvalidOptions, "output kind %d", o.OutputKind)
	}
	if o.WarningLevel > MaxWarningLevel {
		return errorf(KindInvalidOptions, "warning level %d is out of range 0-%d", o.WarningLevel, MaxWarningLevel)
	}
	if o.Jobs < 0 {
		return errorf(KindInvalidOptions, "jobs must not be negative, got %d", o.Jobs)
	}
	for code, a := range o.SpecificDiagnosticOptions {
		if a > diag.ActionError {
			return errorf(KindInvalidOptions, "action %d for %s", a, code.ID())
		}
	}
	if o.GeneralDiagnosticOption > diag.ActionError {
		return errorf(KindInvalidOptions, "general diagnostic action %d", o.GeneralDiagnosticOption)
	}
	return nil
}

func (o Options) policy() diag.Policy {
	return diag.Policy{
		General:      o.GeneralDiagnosticOption,
		Specific:     o.SpecificDiagnosticOptions,
		WarningLevel: o.WarningLevel,
	}
}

func (o Options) naming() decl.Naming {
	return decl.Naming{
		ImplicitContainer: o.ImplicitContainerName,
		ScriptClass:       o.ScriptClassName,
		Script:            o.OutputKind == OutputScript,
	}
}

func (o Options) binder() binder.Binder {
	if o.Binder == nil {
		return binder.Default{}
	}
	return o.Binder
}

func (o Options) emitter() emit.Emitter {
	if o.Emitter == nil {
		return emit.Default{}
	}
	return o.Emitter
}

func (o Options) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) refConfig(assemblyName string) refman.Config {
	return refman.Config{
		AssemblyName: assemblyName,
		Comparer:     o.IdentityComparer,
		Resolver:     o.ReferenceResolver,
	}
}
