// Package trace provides a self-observability subsystem for the
// recording engine itself — not to be confused with the activity the
// engine records.
//
// Running a long-lived recorder (internal/engine.Writer.Run, a
// flusher goroutine draining chunk buffers, a reader walking a large
// recording) has its own performance characteristics worth diagnosing
// independently of the recorded program: is the flusher keeping up
// with the configured chunk period, is a particular sequence buffer
// growing without bound, did the reader stall partway through a
// directory walk. This package answers that, the same way a
// compiler's internal tracer answers "why is this pass slow" rather
// than anything about the program being compiled.
//
// # Usage
//
// Enable tracing via rfr.toml's [trace] table:
//
//	[trace]
//	level = "phase"
//	output = "-"
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - nopTracer: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped on demand (e.g. on SIGQUIT)
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: no tracing
//   - LevelError: no scoped events (heartbeats still pass)
//   - LevelPhase: engine and flusher boundaries
//   - LevelDetail: per-sequence-buffer events
//   - LevelDebug: everything, including per-record reader events
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeEngine: Writer/Reader lifecycle (open, shutdown)
//   - ScopeFlusher: WriteCompletedChunks cycles
//   - ScopeSequence: per-SequenceBuffer appends and seals
//   - ScopeReader: chunk/recording file reads
//
// # Context Propagation
//
// Tracers are propagated through the engine via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFlusher, "write_completed_chunks", parentID)
//	defer span.End("")
package trace
