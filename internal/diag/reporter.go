package diag

import (
	"fmt"

	"keel/internal/source"
)

// Reporter: минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, primary, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Primary, b.diag.Message, b.diag.Notes)
	}
}

// Emit is the plain sink entry point: emit(level, message, location).
func Emit(r Reporter, sev Severity, code Code, at source.Span, format string, args ...any) {
	if r == nil {
		if sev.Aborts() {
			panic(&Abort{Diagnostic: New(sev, code, at, fmt.Sprintf(format, args...))})
		}
		return
	}
	r.Report(code, sev, at, fmt.Sprintf(format, args...), nil)
}

// Invariant reports a Failure: a compiler-internal invariant did not hold.
func Invariant(r Reporter, at source.Span, format string, args ...any) {
	Emit(r, SevFailure, IntInvariant, at, format, args...)
}

// BagReporter writes into *Bag. Failure and Fatal diagnostics are
// recorded and then abort the run with an *Abort panic.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	d := Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	}
	if r.Bag != nil {
		r.Bag.Add(d)
	}
	if sev.Aborts() {
		panic(&Abort{Diagnostic: d})
	}
}

// NopReporter drops everything except aborts.
type NopReporter struct{}

func (NopReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if sev.Aborts() {
		panic(&Abort{Diagnostic: New(sev, code, primary, msg)})
	}
}
