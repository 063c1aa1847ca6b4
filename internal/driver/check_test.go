package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/trace"
)

func libUnit() *ast.Builder {
	b := ast.NewBuilder("lib", "lib.kast")
	b.Decl(b.Fn(ast.FnSpec{
		Name:   "twice",
		Params: []ast.Param{b.Param("v", b.Named("int"))},
		Result: b.Named("int"),
		Body:   b.Block(b.Return(b.Binary(ast.OpMul, b.Ident("v"), b.Int(2)))),
	}))
	return b
}

func mainUnit(importPath string) *ast.Builder {
	b := ast.NewBuilder("main", "main.kast")
	b.Decl(
		b.Import(importPath, "lib"),
		b.Fn(ast.FnSpec{
			Name:   "main",
			Result: b.Named("int"),
			Body:   b.Block(b.Return(b.Call(b.Member(b.Ident("lib"), "twice"), b.Int(21)))),
		}),
	)
	return b
}

func writeUnit(t *testing.T, dir string, b *ast.Builder) string {
	t.Helper()
	var buf bytes.Buffer
	be.Err(t, ast.EncodeUnit(&buf, b.Unit), nil)
	path := filepath.Join(dir, b.Unit.Module+UnitExt)
	be.Err(t, os.WriteFile(path, buf.Bytes(), 0o600), nil)
	return path
}

func codesOf(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestRunUnitsFindsImportedModules(t *testing.T) {
	dir := t.TempDir()
	vendor := filepath.Join(dir, "vendor")
	be.Err(t, os.MkdirAll(vendor, 0o755), nil)
	mainPath := writeUnit(t, dir, mainUnit("lib"))
	writeUnit(t, vendor, libUnit())

	var ended []string
	run, err := RunUnits(context.Background(), RunOptions{
		Units:       []string{mainPath},
		SearchPaths: []string{vendor},
		Check: CheckOptions{
			MaxDiagnostics: 16,
			Observer: func(ev PhaseEvent) {
				if ev.Status == PhaseEnd && !ev.Failed {
					ended = append(ended, ev.Name)
				}
			},
		},
	})
	be.Err(t, err, nil)
	be.Equal(t, len(run.Loaded), 2)
	be.Equal(t, ended, Phases)
	be.True(t, !run.Loaded[0].Imported)
	be.True(t, run.Loaded[1].Imported)
	be.Equal(t, run.Loaded[1].Unit.Module, "lib")
	be.Equal(t, codesOf(run.Result.Bag), []diag.Code(nil))
	be.True(t, !run.Result.Failed())

	f := run.FileSet.Get(run.Loaded[1].FileID)
	be.True(t, f.Flags&source.FileImported != 0)
}

func TestRunUnitsRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk"+UnitExt)
	be.Err(t, os.WriteFile(path, []byte("not msgpack"), 0o600), nil)
	var events []PhaseEvent
	_, err := RunUnits(context.Background(), RunOptions{
		Units: []string{path},
		Check: CheckOptions{Observer: func(ev PhaseEvent) { events = append(events, ev) }},
	})
	be.True(t, err != nil)
	be.Equal(t, len(events), 2)
	be.Equal(t, events[1].Name, PhaseLoad)
	be.True(t, events[1].Failed)

	_, err = RunUnits(context.Background(), RunOptions{})
	be.Err(t, err, ErrNoUnits)
}

func TestCheckReportsMissingModule(t *testing.T) {
	res, err := Check(context.Background(), []*ast.Unit{mainUnit("nowhere").Unit}, CheckOptions{})
	be.Err(t, err, nil)
	be.True(t, res.Failed())
	codes := codesOf(res.Bag)
	be.True(t, len(codes) >= 1)
	be.Equal(t, codes[0], diag.ProjMissingModule)
}

func TestCheckReportsSelfImport(t *testing.T) {
	res, err := Check(context.Background(), []*ast.Unit{mainUnit("main").Unit}, CheckOptions{})
	be.Err(t, err, nil)
	be.True(t, res.Failed())
	be.Equal(t, codesOf(res.Bag)[0], diag.ProjImportCycle)
}

func TestCheckPhasesAndTrace(t *testing.T) {
	var phases []string
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	res, err := Check(ctx, []*ast.Unit{libUnit().Unit, mainUnit("lib").Unit}, CheckOptions{
		Observer: func(ev PhaseEvent) {
			if ev.Status == PhaseEnd {
				phases = append(phases, ev.Name)
			}
		},
	})
	be.Err(t, err, nil)
	be.True(t, !res.Failed())
	be.Equal(t, phases, []string{"declare", "link", "sema"})

	names := make(map[string]bool)
	for _, ev := range ring.Snapshot() {
		names[ev.Name] = true
	}
	for _, want := range []string{"check", "declare", "link", "validate", "validate_unit", "overload"} {
		be.True(t, names[want])
	}
}

func TestCheckWarningsAsErrors(t *testing.T) {
	b := ast.NewBuilder("main", "main.kast")
	b.Decl(b.Fn(ast.FnSpec{
		Name:   "narrow",
		Params: []ast.Param{b.Param("v", b.Named("long"))},
		Result: b.Named("char"),
		Body:   b.Block(b.Return(b.Cast(b.Named("char"), b.Ident("v")))),
	}))
	res, err := Check(context.Background(), []*ast.Unit{b.Unit}, CheckOptions{})
	be.Err(t, err, nil)
	be.True(t, !res.Failed())

	b2 := ast.NewBuilder("main", "main.kast")
	b2.Decl(b2.Fn(ast.FnSpec{
		Name:   "narrow",
		Params: []ast.Param{b2.Param("v", b2.Named("long"))},
		Result: b2.Named("char"),
		Body:   b2.Block(b2.Return(b2.Cast(b2.Named("char"), b2.Ident("v")))),
	}))
	res, err = Check(context.Background(), []*ast.Unit{b2.Unit}, CheckOptions{WarningsAsErrors: true})
	be.Err(t, err, nil)
	be.True(t, res.Failed())
}

func TestCheckRecoversAbort(t *testing.T) {
	boom := &diag.Abort{Diagnostic: diag.New(diag.SevFatal, diag.IntInvariant, source.Span{}, "boom")}
	res, err := Check(context.Background(), []*ast.Unit{libUnit().Unit}, CheckOptions{
		Observer: func(ev PhaseEvent) {
			if ev.Name == "link" && ev.Status == PhaseStart {
				panic(boom)
			}
		},
	})
	var abort *diag.Abort
	be.True(t, errors.As(err, &abort))
	be.Equal(t, abort.Diagnostic.Message, "boom")
	be.True(t, res.Sema == nil)
}

func TestCheckPropagatesOtherPanics(t *testing.T) {
	defer func() {
		be.Equal(t, recover(), any("not an abort"))
	}()
	_, _ = Check(context.Background(), []*ast.Unit{libUnit().Unit}, CheckOptions{
		Observer: func(PhaseEvent) { panic("not an abort") },
	})
	t.Fatal("panic was swallowed")
}
