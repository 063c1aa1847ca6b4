package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"keel/internal/diag"
	"keel/internal/source"
)

func TestPrettyPlain(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		`/work/src/main.kast:3:7: ERROR SEM3005: undefined identifier "missing"`,
		`    note: /work/src/main.kast:1:1: while checking main`,
		`/work/src/main.kast:5:2: WARNING SEM3035: cast from long to char may lose data`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d:\n got %s\nwant %s", i, lines[i], want[i])
		}
	}
}

func TestPrettyColorAndBuiltinSpans(t *testing.T) {
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevFatal, diag.IntInvariant, source.Span{}, "broken"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, nil, PrettyOpts{Color: true, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatal("expected ANSI escapes")
	}
	if !strings.Contains(out, "<builtin>") {
		t.Fatalf("builtin span printed as %q", out)
	}
}

func TestSummary(t *testing.T) {
	fs := source.NewFileSet()
	var buf bytes.Buffer
	if err := Summary(&buf, sampleBag(fs), false); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "1 error, 1 warning" {
		t.Fatalf("got %q", got)
	}
}
