package ast

import (
	"keel/internal/source"
)

// Builder assembles a Unit node by node. The external parser and the tests both
// go through it, so every node gets the builder's current position.
type Builder struct {
	Unit *Unit
	pos  source.Span
}

func NewBuilder(module, path string) *Builder {
	return &Builder{
		Unit: NewUnit(module, path, Hints{}),
		pos:  source.Span{Line: 1, Col: 1},
	}
}

// At moves the position stamped on subsequently created nodes.
func (b *Builder) At(line, col uint32) *Builder {
	b.pos = source.Span{File: b.Unit.File, Line: line, Col: col}
	return b
}

// Pos returns the current position.
func (b *Builder) Pos() source.Span { return b.pos }

// Decl appends top-level declarations in source order.
func (b *Builder) Decl(items ...ItemID) {
	b.Unit.Decls = append(b.Unit.Decls, items...)
}

// --- type expressions ---

func (b *Builder) Named(name string) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprName, Span: b.pos, Name: name})
}

func (b *Builder) QualNamed(pkg, name string) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprName, Span: b.pos, Name: name, Pkg: pkg})
}

func (b *Builder) PointerTo(elem TypeExprID) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprPointer, Span: b.pos, Elem: elem})
}

func (b *Builder) ArrayOf(elem TypeExprID, n int64) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprArray, Span: b.pos, Elem: elem, Len: b.Int(n)})
}

// ArrayOfExpr uses a compile-time expression (e.g. a define) as the length.
func (b *Builder) ArrayOfExpr(elem TypeExprID, n ExprID) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprArray, Span: b.pos, Elem: elem, Len: n})
}

func (b *Builder) DynArrayOf(elem TypeExprID) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprDynArray, Span: b.pos, Elem: elem})
}

func (b *Builder) TupleType(elems ...TypeExprID) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprTuple, Span: b.pos, Elems: elems})
}

func (b *Builder) FnType(result TypeExprID, variadic bool, params ...TypeExprID) TypeExprID {
	return b.Unit.Types.New(TypeExpr{Kind: TypeExprFn, Span: b.pos, Elem: result, Elems: params, Variadic: variadic})
}

// --- expressions ---

func (b *Builder) expr(e Expr) ExprID {
	e.Span = b.pos
	return b.Unit.Exprs.New(e)
}

func (b *Builder) Ident(name string) ExprID { return b.expr(Expr{Kind: ExprIdent, Name: name}) }
func (b *Builder) Int(v int64) ExprID       { return b.expr(Expr{Kind: ExprIntLit, Int: v}) }
func (b *Builder) Float(v float64) ExprID   { return b.expr(Expr{Kind: ExprFloatLit, Float: v}) }
func (b *Builder) Str(s string) ExprID      { return b.expr(Expr{Kind: ExprStringLit, Str: s}) }
func (b *Builder) Char(r rune) ExprID       { return b.expr(Expr{Kind: ExprCharLit, Int: int64(r)}) }
func (b *Builder) Null() ExprID             { return b.expr(Expr{Kind: ExprNullLit}) }

func (b *Builder) Bool(v bool) ExprID {
	var n int64
	if v {
		n = 1
	}
	return b.expr(Expr{Kind: ExprBoolLit, Int: n})
}

func (b *Builder) Tuple(elems ...ExprID) ExprID {
	return b.expr(Expr{Kind: ExprTuple, Args: elems})
}

func (b *Builder) Unary(op Op, x ExprID) ExprID {
	return b.expr(Expr{Kind: ExprUnary, Op: op, X: x})
}

func (b *Builder) Binary(op Op, x, y ExprID) ExprID {
	return b.expr(Expr{Kind: ExprBinary, Op: op, X: x, Y: y})
}

func (b *Builder) Assign(x, y ExprID) ExprID { return b.Binary(OpAssign, x, y) }

// As builds the infix cast `x as T`.
func (b *Builder) As(x ExprID, t TypeExprID) ExprID {
	return b.expr(Expr{Kind: ExprBinary, Op: OpAs, X: x, Type: t})
}

func (b *Builder) Call(callee ExprID, args ...ExprID) ExprID {
	return b.expr(Expr{Kind: ExprCall, X: callee, Args: args})
}

func (b *Builder) Index(x, idx ExprID) ExprID {
	return b.expr(Expr{Kind: ExprIndex, X: x, Y: idx})
}

func (b *Builder) Member(x ExprID, name string) ExprID {
	return b.expr(Expr{Kind: ExprMember, X: x, Name: name})
}

func (b *Builder) Cast(t TypeExprID, x ExprID) ExprID {
	return b.expr(Expr{Kind: ExprCast, Type: t, X: x})
}

func (b *Builder) New(t TypeExprID, args ...ExprID) ExprID {
	return b.expr(Expr{Kind: ExprNew, Type: t, Args: args})
}

func (b *Builder) Delete(x ExprID) ExprID {
	return b.expr(Expr{Kind: ExprDelete, X: x})
}

// TypeValue uses a type in expression position: `T(args)`, `T.sizeof`.
func (b *Builder) TypeValue(t TypeExprID) ExprID {
	return b.expr(Expr{Kind: ExprTypeExpr, Type: t})
}

// --- statements ---

func (b *Builder) stmt(s Stmt) StmtID {
	s.Span = b.pos
	return b.Unit.Stmts.New(s)
}

func (b *Builder) Block(body ...StmtID) StmtID {
	return b.stmt(Stmt{Kind: StmtCompound, Body: body})
}

func (b *Builder) If(cond ExprID, then, els StmtID) StmtID {
	return b.stmt(Stmt{Kind: StmtIf, Cond: cond, Then: then, Else: els})
}

func (b *Builder) While(cond ExprID, body StmtID) StmtID {
	return b.stmt(Stmt{Kind: StmtLoop, Cond: cond, Then: body})
}

func (b *Builder) For(init StmtID, cond, post ExprID, body StmtID) StmtID {
	return b.stmt(Stmt{Kind: StmtLoop, Init: init, Cond: cond, Post: post, Then: body})
}

func (b *Builder) Switch(cond ExprID, body StmtID) StmtID {
	return b.stmt(Stmt{Kind: StmtSwitch, Cond: cond, Then: body})
}

func (b *Builder) Case(v ExprID) StmtID  { return b.stmt(Stmt{Kind: StmtCase, Value: v}) }
func (b *Builder) Default() StmtID       { return b.stmt(Stmt{Kind: StmtCase}) }
func (b *Builder) Label(n string) StmtID { return b.stmt(Stmt{Kind: StmtLabel, Label: n}) }
func (b *Builder) Goto(n string) StmtID  { return b.stmt(Stmt{Kind: StmtGoto, Label: n}) }
func (b *Builder) Break() StmtID         { return b.stmt(Stmt{Kind: StmtBreak}) }
func (b *Builder) Continue() StmtID      { return b.stmt(Stmt{Kind: StmtContinue}) }

func (b *Builder) Return(v ExprID) StmtID {
	return b.stmt(Stmt{Kind: StmtReturn, Value: v})
}

func (b *Builder) ExprStmt(e ExprID) StmtID {
	return b.stmt(Stmt{Kind: StmtExpr, Value: e})
}

func (b *Builder) DeclStmt(item ItemID) StmtID {
	return b.stmt(Stmt{Kind: StmtDecl, Decl: item})
}

// --- declarations ---

func (b *Builder) item(it Item) ItemID {
	it.Span = b.pos
	return b.Unit.Items.New(it)
}

func (b *Builder) Var(name string, t TypeExprID, init ExprID) ItemID {
	return b.item(Item{Kind: ItemVar, Name: name, Type: t, Init: init})
}

func (b *Builder) VarFlags(name string, t TypeExprID, init ExprID, flags VarFlags) ItemID {
	return b.item(Item{Kind: ItemVar, Name: name, Type: t, Init: init, VarFlags: flags})
}

func (b *Builder) Param(name string, t TypeExprID) Param {
	return Param{Span: b.pos, Name: name, Type: t}
}

func (b *Builder) ParamDefault(name string, t TypeExprID, def ExprID) Param {
	return Param{Span: b.pos, Name: name, Type: t, Default: def}
}

// FnSpec groups the parts of a function declaration.
type FnSpec struct {
	Name     string
	Params   []Param
	Result   TypeExprID // NoTypeExprID means void
	Variadic bool
	Body     StmtID // NoStmtID for a prototype
	Flags    FnFlags
}

func (b *Builder) Fn(spec FnSpec) ItemID {
	return b.item(Item{
		Kind:     ItemFn,
		Name:     spec.Name,
		Params:   spec.Params,
		Result:   spec.Result,
		Variadic: spec.Variadic,
		Body:     spec.Body,
		FnFlags:  spec.Flags,
	})
}

func (b *Builder) Type(kind UserKind, name string, base TypeExprID, members ...ItemID) ItemID {
	return b.item(Item{Kind: ItemType, Name: name, UserKind: kind, Base: base, Members: members})
}

func (b *Builder) Import(path, alias string) ItemID {
	return b.item(Item{Kind: ItemImport, Path: path, Name: alias})
}

func (b *Builder) Define(name string, value ExprID) ItemID {
	return b.item(Item{Kind: ItemDefine, Name: name, Init: value})
}

func (b *Builder) Typedef(t TypeExprID, name string) ItemID {
	return b.item(Item{Kind: ItemTypedef, Name: name, Type: t})
}
