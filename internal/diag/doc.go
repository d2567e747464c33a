// Package diag defines the diagnostic model shared by the recording
// reader and writer.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced while decoding a stream or chunked recording:
//     truncated input, unsupported format identifiers, records that
//     reference an unknown callsite, partially-written chunk files,
//     and similar recoverable issues.
//   - Offer light-weight utilities (Reporter, Bag) that let producers
//     emit diagnostics without coupling to concrete storage or
//     rendering layers.
//
// # Scope
//
// Package diag performs no formatting or CLI integration; rendering a
// Bag (e.g. rfr cat's summary line, or a JSON report) lives in the
// consuming command.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in
//     severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable
//     string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary location – the Location the finding concerns.
//   - Notes – optional secondary locations for additional context.
//
// Unlike a compiler's diagnostics, Location never points into source
// text: a recording carries no source, so Location instead names the
// container file (meta.rfr, callsites.rfr, or a chunk file) plus,
// where applicable, the sequence id and record index within it.
//
// # Emitting diagnostics
//
// Producers use a diag.Reporter to decouple emission from storage. A
// reader constructs a ReportBuilder via NewReportBuilder (or the
// helper functions ReportError/ReportWarning/ReportInfo), chains
// WithNote as needed, then calls Emit.
//
// When no additional metadata is needed, callers may call
// Reporter.Report(...) directly. diag.BagReporter aggregates
// diagnostics into a Bag, which supports sorting and deduplication for
// deterministic output.
package diag
