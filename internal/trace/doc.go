// Package trace records what the compiler is doing while it does it.
//
// Enable it from the command line:
//
//	keel check --trace=- --trace-level=phase main.kast
//
// Tracers:
//
//   - Nop: zero-cost when tracing is off
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events in memory for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// Levels gate granularity: phase emits driver and pass spans, detail adds per-unit
// spans, debug adds node-level spans such as individual overload resolutions.
package trace
