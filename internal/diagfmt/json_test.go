package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"keel/internal/diag"
	"keel/internal/source"
)

func sampleBag(fs *source.FileSet) *diag.Bag {
	file := fs.Add("/work/src/main.kast", []byte("unit"), 0)
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.SemaUnresolvedSymbol, source.Span{File: file, Line: 3, Col: 7},
		`undefined identifier "missing"`).
		WithNote(source.Span{File: file, Line: 1, Col: 1}, "while checking main"))
	bag.Add(diag.New(diag.SevWarning, diag.SemaTruncatingCast, source.Span{File: file, Line: 5, Col: 2},
		"cast from long to char may lose data"))
	return bag
}

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if output.Count != 2 || output.Worst != "ERROR" {
		t.Fatalf("count=%d worst=%q", output.Count, output.Worst)
	}
	first := output.Diagnostics[0]
	if first.Code != diag.SemaUnresolvedSymbol.ID() || first.Location.File != "main.kast" || first.Location.Line != 3 {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if len(first.Notes) != 1 || first.Notes[0].Location.Line != 1 {
		t.Fatalf("notes %+v", first.Notes)
	}
}

func TestJSONMax(t *testing.T) {
	fs := source.NewFileSet()
	out := BuildDiagnosticsOutput(sampleBag(fs), fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Diagnostics[0].Notes != nil {
		t.Fatalf("got %+v", out)
	}
}
