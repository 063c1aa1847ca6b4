package ast

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
)

func TestArenaIDsAreOneBased(t *testing.T) {
	a := NewArena[int](0)
	be.Equal(t, a.Get(0) == nil, true)
	id := a.Allocate(42)
	be.Equal(t, id, uint32(1))
	be.Equal(t, *a.Get(id), 42)
	be.Equal(t, a.Get(2) == nil, true)
}

func TestReplaceKeepsSpanAndIdentity(t *testing.T) {
	b := NewBuilder("m", "m.k")
	b.At(3, 7)
	x := b.Ident("x")
	y := b.Ident("y")
	sum := b.Binary(OpAddAssign, x, y)

	b.Unit.Exprs.Replace(sum, Expr{Kind: ExprBinary, Op: OpAssign, X: x, Y: y})
	got := b.Unit.Exprs.Get(sum)
	be.Equal(t, got.Op, OpAssign)
	be.Equal(t, got.Span.Line, uint32(3))
	be.Equal(t, got.Span.Col, uint32(7))
}

func TestCloneCopiesSubtree(t *testing.T) {
	b := NewBuilder("m", "m.k")
	orig := b.Binary(OpAdd, b.Int(1), b.Int(2))
	cp := b.Unit.Exprs.Clone(orig)
	be.True(t, cp != orig)
	be.True(t, b.Unit.Exprs.Get(cp).X != b.Unit.Exprs.Get(orig).X)
	be.Equal(t, b.Unit.Exprs.Get(b.Unit.Exprs.Get(cp).Y).Int, int64(2))
}

func TestCompoundBase(t *testing.T) {
	op, ok := OpShlAssign.CompoundBase()
	be.True(t, ok)
	be.Equal(t, op, OpShl)
	_, ok = OpAssign.CompoundBase()
	be.True(t, !ok)
}

func TestUnitCodecRoundTrip(t *testing.T) {
	b := NewBuilder("geometry", "geometry.k")
	i := b.Named("int")
	body := b.Block(b.Return(b.Binary(OpAdd, b.Ident("a"), b.Int(1))))
	fn := b.Fn(FnSpec{Name: "inc", Params: []Param{b.Param("a", i)}, Result: i, Body: body})
	b.Decl(b.Import("util", "u"), fn)

	var buf bytes.Buffer
	be.Err(t, EncodeUnit(&buf, b.Unit), nil)
	u, err := DecodeUnit(&buf)
	be.Err(t, err, nil)

	be.Equal(t, u.Module, "geometry")
	be.Equal(t, len(u.Decls), 2)
	be.Equal(t, len(u.Imports()), 1)
	got := u.Items.Get(u.Decls[1])
	be.Equal(t, got.Name, "inc")
	be.True(t, got.HasBody())
	be.Equal(t, u.Stmts.Get(got.Body).Kind, StmtCompound)
	be.Equal(t, u.Exprs.Arena.Len(), b.Unit.Exprs.Arena.Len())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeUnit(bytes.NewReader([]byte{0xc1}))
	be.True(t, err != nil)
}

func TestValidateRejectsBrokenReferences(t *testing.T) {
	b := NewBuilder("m", "m.k")
	x := b.Ident("x")
	sum := b.Binary(OpAdd, x, x) // общий лист допустим
	fn := b.Fn(FnSpec{Name: "f", Body: b.Block(b.ExprStmt(sum))})
	b.Decl(fn)
	be.Err(t, b.Unit.Validate(), nil)

	b.Unit.Exprs.Replace(x, Expr{Kind: ExprUnary, Op: OpNeg, X: sum})
	be.Err(t, b.Unit.Validate(), "contains itself")

	b.Unit.Exprs.Replace(x, Expr{Kind: ExprUnary, Op: OpNeg, X: ExprID(99)})
	be.Err(t, b.Unit.Validate(), "out of range")

	var buf bytes.Buffer
	be.Err(t, EncodeUnit(&buf, b.Unit), nil)
	_, err := DecodeUnit(&buf)
	be.Err(t, err, "expression 99 out of range")
}
