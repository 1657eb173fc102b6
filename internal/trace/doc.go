// Package trace provides a tracing subsystem for the birfacts toolchain.
//
// The trace package enables tracking of collection passes, fixture
// processing, and other operations to help diagnose performance issues and
// hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	birfacts collect --fixture shared-borrow --trace-level phase
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for crash dumps
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Fixture-level events
//   - LevelDebug: Everything including per-statement events
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopeModule: Per-fixture processing
//   - ScopePass: Collection passes (statement walk, place walk)
//   - ScopeNode: Statement level (future)
//
// # Context Propagation
//
// Tracers are propagated through the driver via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "factcollect", parentID)
//	defer span.End("")
package trace
