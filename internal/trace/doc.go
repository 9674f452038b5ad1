// Package trace records what the converter is doing while it runs.
//
// Spans mark batch, unit and phase boundaries; with the debug level every
// construct the translators handle gets its own point event. The output is
// meant for diagnosing slow or stuck conversions:
//
//	perl2py convert --trace=- --trace-level=phase lib/
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "match", parent)
//	defer span.End("")
//
// Stream tracers write immediately, ring tracers keep the last N events for
// a dump after a failure, and ModeBoth does both.
package trace
