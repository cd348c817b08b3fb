// Package diag defines the diagnostic model shared by all compilation stages.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Void (retracted), Info, Warning, Error (severity.go).
//   - Code – compact numeric identifier with a stable string form such as
//     "CMP4017" (codes.go). Each code carries a title, a default severity and
//     a warning level.
//   - Stage – Parse, Declare, Compile or Emit.
//   - Primary – the source.Span the message is about; source.NoSpan for
//     diagnostics that belong to a reference or to options.
//   - Escalated / Suppressed – set only by Policy.
//
// # Raw and filtered diagnostics
//
// Stages produce raw diagnostics and never decide whether a warning is shown.
// Policy.Apply is run once per query over the aggregated raw set and returns
// copies with frozen severities. Applying the same policy to its own output
// yields the same set: suppressed entries stay suppressed, escalated entries
// stay errors.
//
// The only exception to the general per-id lookup is the legacy umbrella table
// in legacy.go.
//
// # Emitting diagnostics
//
// Producers that do not want to build Diagnostic values directly use a
// Reporter (BagReporter, LockedReporter) through ReportBuilder.
package diag
