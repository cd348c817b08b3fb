// Package version holds build metadata for the corvid CLI.
// The variables can be overridden at build time via -ldflags "-X corvid/internal/version.Version=...".
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Pretty renders Version with major/minor/patch colored; the pre-release suffix stays plain.
func Pretty(useColor bool) string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	attrs := [][]color.Attribute{
		{color.FgYellow, color.Bold},
		{color.FgGreen, color.Bold},
		{color.FgBlue, color.Bold},
	}
	for i, p := range parts {
		c := color.New(attrs[i]...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(p)
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// Info is the multi-line `corvid version` output.
func Info(useColor bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "corvid %s\n", Pretty(useColor))
	if GitCommit != "" {
		fmt.Fprintf(&b, "commit: %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, "built:  %s\n", BuildDate)
	}
	return b.String()
}
