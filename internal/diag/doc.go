// Package diag defines the core diagnostic model shared by the fact
// collector and its driver.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture the
//     findings the collection pass produces (moves through references,
//     writes through shared references, unsupported constructs).
//   - Offer light-weight utilities (Reporter, Bag) that let the collector
//     emit diagnostics without coupling to concrete storage or formatting
//     layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering lives in the CLI layer; the collector
// only ever reports through a Reporter.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records describing how to address the problem.
//
// Notes should be used sparingly: each note must add new context (e.g. “value
// moved here”) rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Passes should use a diag.Reporter to decouple emission from storage. The
// collector constructs a ReportBuilder via NewReportBuilder (or the helper
// functions ReportError/ReportWarning/ReportInfo) and chains WithNote before
// calling Emit.
//
// When no additional metadata is needed, passes may call Reporter.Report(...)
// directly. For convenience, diag.BagReporter aggregates diagnostics into a
// Bag, which supports sorting, deduplication, and merging.
//
// Keep the data model deterministic: any new fields should avoid side
// effects, so the CLI and future tooling can safely serialise diagnostics
// for caching and testing.
package diag
