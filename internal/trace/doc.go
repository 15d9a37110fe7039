// Package trace provides structured tracing for the formatter.
//
// Tracing follows a formatting run through its phases (file discovery,
// preprocessing, parsing, printing, layout) and is the tool's logging layer:
// events are written as text or NDJSON to stderr or a file.
//
// # Usage
//
//	sveltefmt fmt --trace=- --trace-level=phase src/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything including printer internals
//
// # Scopes
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopePass: Formatting phases (preprocess, parse, print, render)
//   - ScopeFile: Per-file processing
//   - ScopeNode: AST node level
//
// # Spans
//
// The tracer and the current span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, sp := trace.Start(ctx, trace.ScopePass, "parse")
//	err := parse(ctx)
//	sp.End(err)
package trace
