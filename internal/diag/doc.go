// Package diag defines the diagnostic model shared by the semantic passes.
//
// A Diagnostic carries a Severity, a stable Code, a short message, a primary
// source.Span and optional notes. Severities are totally ordered:
//
//	Output < Debug < Warning < Error < Failure < Unimplemented < Fatal
//
// Producers emit through a Reporter. BagReporter stores into a Bag, which keeps
// the worst severity of the run; the process exits non-zero iff that severity is
// Error or above. Failure and Fatal describe broken compiler invariants rather
// than user errors: BagReporter records them and then panics with *Abort, which
// only the driver recovers (see Recover). Everything else accumulates so that a
// single run reports as many independent problems as possible.
//
// Package diag does no IO and no pretty printing; FormatGoldenDiagnostics is the
// one stable textual form, used by tests and the CLI short output.
package diag
