package compilation

import (
	"fmt"
	"sort"
	"strings"

	"corvid/internal/diag"
	"corvid/internal/source"
)

// Features is the parsed form of Options.Features: name -> value, "true" when no value was given.
type Features map[string]string

// Known feature flags.
const (
	// FeatureUnusedUsings controls the unnecessary-using analysis (default on).
	FeatureUnusedUsings = "unused-usings"
	// FeatureSequential forces per-unit diagnostics to run on one goroutine.
	FeatureSequential = "sequential"
)

var knownFeatures = map[string]bool{
	FeatureUnusedUsings: true,
	FeatureSequential:   true,
}

// ParseFeatures splits "name[:value]" entries. Later entries override earlier ones.
// Unknown or malformed entries come back as OPT diagnostics.
func ParseFeatures(list []string) (Features, []*diag.Diagnostic) {
	out := make(Features, len(list))
	var ds []*diag.Diagnostic
	for _, raw := range list {
		name, value, hasValue := strings.Cut(strings.TrimSpace(raw), ":")
		name = strings.TrimSpace(name)
		if !hasValue {
			value = "true"
		}
		if name == "" || !knownFeatures[name] {
			ds = append(ds, diag.Default(diag.OptUnknownFeature, source.NoSpan,
				fmt.Sprintf("unknown feature flag %q", raw)))
		}
		if name != "" {
			out[name] = strings.TrimSpace(value)
		}
	}
	return out, ds
}

// Enabled reports whether a boolean feature is on; def applies when it is not set.
func (f Features) Enabled(name string, def bool) bool {
	v, ok := f[name]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "false", "off", "0", "no":
		return false
	}
	return true
}

// Value returns the raw value of a feature.
func (f Features) Value(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// Names lists the set features, sorted.
func (f Features) Names() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
