package testkit

import (
	"context"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"keel/internal/ast"
	"keel/internal/driver"
	"keel/internal/sema"
	"keel/internal/symbols"
	"keel/internal/types"
	"keel/internal/vtable"
)

func TestCheckLoweredAcceptsCheckedProgram(t *testing.T) {
	b := ast.NewBuilder("main", "main.kast")
	b.Decl(b.Fn(ast.FnSpec{
		Name:   "sugar",
		Params: []ast.Param{b.Param("x", b.Named("long"))},
		Result: b.Named("long"),
		Body: b.Block(
			b.ExprStmt(b.Binary(ast.OpAddAssign, b.Ident("x"), b.Int(1))),
			b.ExprStmt(b.Binary(ast.OpCoerceAssign, b.Ident("x"), b.Float(2.5))),
			b.Return(b.As(b.Int(3), b.Named("long"))),
		),
	}))
	res, err := driver.Check(context.Background(), []*ast.Unit{b.Unit}, driver.CheckOptions{})
	be.Err(t, err, nil)
	be.True(t, !res.Failed())
	be.Err(t, CheckLowered(res.Sema), nil)
}

func TestCheckLoweredReportsBrokenResult(t *testing.T) {
	b := ast.NewBuilder("main", "main.kast")
	lit := b.Int(1)
	sugar := b.Binary(ast.OpMulAssign, b.Ident("x"), lit)
	call := b.Call(b.Ident("f"))
	conv := b.Cast(b.Named("I"), b.Ident("p"))

	ur := &sema.UnitResult{
		Unit:        b.Unit,
		ExprTypes:   map[ast.ExprID]types.TypeID{sugar: 1},
		Coercions:   map[ast.ExprID]types.TypeID{lit: 1},
		CallTargets: map[ast.ExprID]sema.CallTarget{call: {Fn: symbols.FnID(1), Callee: call}},
		Conversions: map[ast.ExprID]*vtable.Table{conv: {Complete: false}},
	}
	err := CheckLowered(&sema.Result{Units: []*sema.UnitResult{ur}})
	be.Err(t, err)
	msg := err.Error()
	for _, want := range []string{
		"operator *= was not lowered",
		"coercion recorded on int",
		"exactly one of fn and callee",
		"without a complete table",
	} {
		be.True(t, strings.Contains(msg, want))
	}
	be.Err(t, CheckLowered(nil))
}
