// Package trace records what the compiler is doing while it runs: run
// phases, per-capsule builds and link lookups. It exists to diagnose slow
// builds and link graphs that seem to hang.
//
// # Usage
//
//	thetac build --trace=- --trace-level=detail main.th
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events in memory for a dump on failure
//   - Fanout: sends each event to several tracers
//
// Heartbeats print the shared Status (which capsules each compiler is
// building) and flag beats where nothing has changed for a while.
//
// # Levels and scopes
//
// LevelError keeps only KindError events and heartbeats. LevelPhase emits ScopeDriver and ScopePass events (discover, build,
// emit). LevelDetail adds ScopeCapsule (one span per capsule built).
// LevelDebug adds ScopeLink (every link lookup, cache hits included).
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "build", parentID)
//	defer span.End("")
//
//	trace.StatusFromContext(ctx).Set("main.th", "Demo.Main > Geometry")
package trace
