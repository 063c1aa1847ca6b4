package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"keel/internal/ast"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

func addUnitSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, b := range seedPrograms() {
		var buf bytes.Buffer
		if err := ast.EncodeUnit(&buf, b.Unit); err != nil {
			f.Fatalf("encode seed %s: %v", b.Unit.Path, err)
		}
		f.Add(buf.Bytes())
	}
	f.Add([]byte{})
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".kast" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// seedPrograms covers each declaration family so mutations start from
// structurally rich units.
func seedPrograms() []*ast.Builder {
	arith := ast.NewBuilder("arith", "arith.kast")
	arith.Decl(arith.Fn(ast.FnSpec{
		Name:   "sum",
		Params: []ast.Param{arith.Param("a", arith.Named("int")), arith.ParamDefault("b", arith.Named("long"), arith.Int(1))},
		Result: arith.Named("long"),
		Body: arith.Block(
			arith.ExprStmt(arith.Binary(ast.OpAddAssign, arith.Ident("a"), arith.Int(2))),
			arith.If(arith.Ident("a"), arith.Return(arith.Ident("b")), ast.NoStmtID),
			arith.Return(arith.Binary(ast.OpAdd, arith.Ident("a"), arith.Ident("b"))),
		),
	}))

	shapes := ast.NewBuilder("shapes", "shapes.kast")
	area := shapes.Fn(ast.FnSpec{Name: "area", Result: shapes.Named("double"), Body: shapes.Block(shapes.Return(shapes.Float(0)))})
	shapes.Decl(
		shapes.Type(ast.UserClass, "Shape", ast.NoTypeExprID,
			shapes.Var("tag", shapes.Named("char"), ast.NoExprID),
			area,
		),
		shapes.Type(ast.UserInterface, "Measurable", ast.NoTypeExprID,
			shapes.Fn(ast.FnSpec{Name: "area", Result: shapes.Named("double")})),
		shapes.Type(ast.UserStruct, "Pair", ast.NoTypeExprID,
			shapes.Var("a", shapes.Named("int"), ast.NoExprID),
			shapes.Var("b", shapes.PointerTo(shapes.Named("Pair")), ast.NoExprID),
		),
	)

	loops := ast.NewBuilder("loops", "loops.kast")
	loops.Decl(
		loops.Define("N", loops.Int(8)),
		loops.Var("buf", loops.ArrayOfExpr(loops.Named("char"), loops.Ident("N")), ast.NoExprID),
		loops.Fn(ast.FnSpec{
			Name:   "spin",
			Result: loops.Named("int"),
			Body: loops.Block(
				loops.While(loops.Bool(true), loops.Block(loops.Break())),
				loops.Label("out"),
				loops.Goto("out"),
				loops.Return(loops.Int(0)),
			),
		}),
	)
	return []*ast.Builder{arith, shapes, loops}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
