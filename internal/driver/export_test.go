package driver

import (
	"bytes"
	"context"
	"testing"

	"github.com/nalgeon/be"

	"keel/internal/ast"
	"keel/internal/source"
	"keel/internal/testkit"
)

func shapesUnit() *ast.Builder {
	b := ast.NewBuilder("shapes", "shapes.kast")
	area := b.Fn(ast.FnSpec{Name: "area", Result: b.Named("double"), Body: b.Block(b.Return(b.Float(0)))})
	shape := b.Type(ast.UserClass, "Shape", ast.NoTypeExprID,
		b.Var("tag", b.Named("char"), ast.NoExprID),
		area,
	)
	sqArea := b.Fn(ast.FnSpec{Name: "area", Result: b.Named("double"), Body: b.Block(b.Return(b.Float(1)))})
	square := b.Type(ast.UserClass, "Square", b.Named("Shape"),
		b.Var("side", b.Named("double"), ast.NoExprID),
		sqArea,
	)
	measurable := b.Type(ast.UserInterface, "Measurable", ast.NoTypeExprID,
		b.Fn(ast.FnSpec{Name: "area", Result: b.Named("double")}))
	call := b.Call(b.Member(b.Ident("s"), "area"))
	use := b.Fn(ast.FnSpec{
		Name:   "use",
		Params: []ast.Param{b.Param("s", b.PointerTo(b.Named("Square")))},
		Result: b.Named("double"),
		Body: b.Block(
			b.DeclStmt(b.Var("m", b.Named("Measurable"), b.Cast(b.Named("Measurable"), b.Ident("s")))),
			b.Return(call),
		),
	})
	b.Decl(shape, square, measurable, use)
	return b
}

func TestExportRoundTrip(t *testing.T) {
	res, err := Check(context.Background(), []*ast.Unit{shapesUnit().Unit}, CheckOptions{})
	be.Err(t, err, nil)
	be.Equal(t, codesOf(res.Bag), nil)

	be.Err(t, testkit.CheckLowered(res.Sema), nil)

	doc, err := BuildExport(res, nil)
	be.Err(t, err, nil)

	var buf bytes.Buffer
	be.Err(t, WriteExport(&buf, doc), nil)
	back, err := ReadExport(&buf)
	be.Err(t, err, nil)
	be.Equal(t, *back, *doc)

	byName := make(map[string]ExportType)
	for _, et := range back.Types {
		byName[et.Name] = et
	}
	square := byName["Square"]
	be.Equal(t, square.Base, "Shape")
	be.Equal(t, len(square.VTable), len(byName["Shape"].VTable))
	be.True(t, square.Size > 0)

	be.Equal(t, len(back.Interfaces), 1)
	be.Equal(t, back.Interfaces[0].Concrete, "Square")
	be.True(t, back.Interfaces[0].Complete)

	be.Equal(t, len(back.Calls), 1)
	be.True(t, back.Calls[0].Virtual)
	be.Equal(t, back.Calls[0].Args, 1)
}

func TestExportOrdersModulesByImports(t *testing.T) {
	res, err := Check(context.Background(), []*ast.Unit{mainUnit("lib").Unit, libUnit().Unit}, CheckOptions{})
	be.Err(t, err, nil)
	doc, err := BuildExport(res, nil)
	be.Err(t, err, nil)

	be.Equal(t, len(doc.Modules), 2)
	be.Equal(t, doc.Modules[0], ExportModule{Name: "lib", Path: "lib.kast", Wave: 0})
	be.Equal(t, doc.Modules[1].Name, "main")
	be.Equal(t, doc.Modules[1].Imports, []string{"lib"})
	be.Equal(t, doc.Modules[1].Wave, 1)
}

func TestExportRefusesFailedRun(t *testing.T) {
	res, err := Check(context.Background(), []*ast.Unit{mainUnit("nowhere").Unit}, CheckOptions{})
	be.Err(t, err, nil)
	_, err = BuildExport(res, nil)
	be.True(t, err != nil)
}

func TestReadExportRejectsForeignData(t *testing.T) {
	var buf bytes.Buffer
	be.Err(t, WriteExport(&buf, &Export{Magic: "NOPE"}), nil)
	_, err := ReadExport(&buf)
	be.True(t, err != nil)

	buf.Reset()
	be.Err(t, WriteExport(&buf, &Export{Magic: exportMagic, Schema: ExportSchemaVersion + 1}), nil)
	_, err = ReadExport(&buf)
	be.Err(t, err, ErrExportSchema)
}

func TestInputDigestFollowsContent(t *testing.T) {
	fs1 := source.NewFileSet()
	fs1.Add("a.kast", []byte("one"), 0)
	fs1.Add("b.kast", []byte("two"), 0)
	fs2 := source.NewFileSet()
	fs2.Add("a.kast", []byte("one"), 0)
	fs2.Add("b.kast", []byte("two"), 0)
	be.Equal(t, InputDigest(fs1), InputDigest(fs2))

	fs3 := source.NewFileSet()
	fs3.Add("b.kast", []byte("two"), 0)
	fs3.Add("a.kast", []byte("one"), 0)
	be.True(t, InputDigest(fs1) != InputDigest(fs3))
}
