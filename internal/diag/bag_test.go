package diag

import (
	"errors"
	"testing"

	"keel/internal/source"
)

func TestBagTracksWorstSeverity(t *testing.T) {
	bag := NewBag(1)
	r := BagReporter{Bag: bag}
	r.Report(SemaInfo, SevWarning, source.Span{}, "first", nil)
	r.Report(SemaUnresolvedSymbol, SevError, source.Span{}, "dropped but counted", nil)

	if bag.Len() != 1 {
		t.Fatalf("expected the bag to honour its limit, got %d items", bag.Len())
	}
	worst, ok := bag.Worst()
	if !ok || worst != SevError {
		t.Fatalf("expected worst=ERROR, got %v (seen=%v)", worst, ok)
	}
	if !bag.HasErrors() {
		t.Fatal("HasErrors must reflect dropped diagnostics")
	}
}

func TestSeverityOrder(t *testing.T) {
	order := []Severity{SevOutput, SevDebug, SevWarning, SevError, SevFailure, SevUnimplemented, SevFatal}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Fatalf("%v must be below %v", order[i-1], order[i])
		}
	}
	if !SevUnimplemented.Failing() || SevWarning.Failing() {
		t.Fatal("unexpected Failing classification")
	}
}

func TestBagReporterAbortsOnFailure(t *testing.T) {
	bag := NewBag(4)
	err := func() (err error) {
		defer func() { err = Recover(recover(), err) }()
		Invariant(BagReporter{Bag: bag}, source.Span{File: 1, Line: 2, Col: 3}, "type %d unresolved", 7)
		return nil
	}()
	var abort *Abort
	if !errors.As(err, &abort) {
		t.Fatalf("expected *Abort, got %v", err)
	}
	if abort.Diagnostic.Code != IntInvariant || bag.Len() != 1 {
		t.Fatalf("abort must be recorded before panicking: %+v", abort.Diagnostic)
	}
}

func TestDedupReporterSuppressesRepeats(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.Span{File: 1, Line: 4, Col: 2}
	ReportError(r, SemaUnknownMember, span, "no member 'x'").Emit()
	ReportError(r, SemaUnknownMember, span, "no member 'x'").Emit()
	ReportError(r, SemaUnknownMember, span, "no member 'y'").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
}

func TestGoldenFormatting(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("main.kast")
	diags := []Diagnostic{
		NewError(SemaNoOverload, source.Span{File: file, Line: 9, Col: 1}, "no matching overload for f"),
		NewError(SemaUnresolvedSymbol, source.Span{File: file, Line: 2, Col: 5}, "unresolved identifier 'x'").
			WithNote(source.Span{File: file, Line: 1, Col: 1}, "in function main"),
	}
	got := FormatGoldenDiagnostics(diags, fs, true)
	want := "note SEM3005 main.kast:1:1 in function main\n" +
		"error SEM3005 main.kast:2:5 unresolved identifier 'x'\n" +
		"error SEM3011 main.kast:9:1 no matching overload for f"
	if got != want {
		t.Fatalf("unexpected golden output:\n%s\nwant:\n%s", got, want)
	}
}
