package source

import (
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID must map to the empty string, got %q ok=%v", s, ok)
	}

	id1 := interner.Intern("hello")
	if id1 == NoStringID {
		t.Fatal("Intern returned NoStringID for a non-empty string")
	}
	if id2 := interner.Intern("hello"); id1 != id2 {
		t.Errorf("same string interned twice: %d != %d", id1, id2)
	}
	if s := interner.MustLookup(id1); s != "hello" {
		t.Errorf("lookup returned %q", s)
	}
	if id3 := interner.Intern("world"); id3 == id1 {
		t.Errorf("different strings share id %d", id3)
	}
}

func TestInternerNormalizesNFC(t *testing.T) {
	interner := NewInterner()
	composed := interner.Intern("café")
	decomposed := interner.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("canonically equivalent names must share an id: %d vs %d", composed, decomposed)
	}
	if got := interner.MustLookup(decomposed); got != "café" {
		t.Fatalf("expected composed spelling, got %q", got)
	}
}

func TestFileSetReusesPath(t *testing.T) {
	fs := NewFileSet()
	a := fs.Add("units/main.kast", []byte("x"), 0)
	b := fs.Add("units/./main.kast", []byte("x"), 0)
	if a != b {
		t.Fatalf("expected same id for equivalent paths, got %d and %d", a, b)
	}
	if fs.Path(a) != "units/main.kast" {
		t.Fatalf("unexpected path %q", fs.Path(a))
	}
	if fs.Get(NoFileID) != nil {
		t.Fatal("NoFileID must not resolve")
	}
}

func TestSpanOrdering(t *testing.T) {
	a := Span{File: 1, Line: 3, Col: 9}
	b := Span{File: 1, Line: 4, Col: 1}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %v before %v", a, b)
	}
	if (Span{}).Known() {
		t.Fatal("zero span must be unknown")
	}
}
