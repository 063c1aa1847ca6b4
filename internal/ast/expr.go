package ast

import (
	"keel/internal/source"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota + 1
	ExprIntLit
	ExprFloatLit
	ExprStringLit
	ExprCharLit
	ExprBoolLit
	ExprNullLit
	ExprTuple
	ExprUnary
	ExprBinary
	ExprCall
	ExprIndex
	ExprMember
	ExprCast
	ExprNew
	ExprDelete
	ExprTypeExpr

	// produced by lowering and validation, never by the parser
	ExprAlloca // fresh stack slot of Type
	ExprCoerce // implicit conversion of X; target type lives in the sema result
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "ident"
	case ExprIntLit:
		return "int"
	case ExprFloatLit:
		return "float"
	case ExprStringLit:
		return "string"
	case ExprCharLit:
		return "char"
	case ExprBoolLit:
		return "bool"
	case ExprNullLit:
		return "null"
	case ExprTuple:
		return "tuple"
	case ExprUnary:
		return "unary"
	case ExprBinary:
		return "binary"
	case ExprCall:
		return "call"
	case ExprIndex:
		return "index"
	case ExprMember:
		return "member"
	case ExprCast:
		return "cast"
	case ExprNew:
		return "new"
	case ExprDelete:
		return "delete"
	case ExprTypeExpr:
		return "type"
	case ExprAlloca:
		return "alloca"
	case ExprCoerce:
		return "coerce"
	default:
		return "invalid"
	}
}

// Expr is an expression node.
//
//	ExprIdent:     Name
//	literals:      Int / Float / Str (Int holds 0/1 for bools, the code point for chars)
//	ExprTuple:     Args
//	ExprUnary:     Op, X
//	ExprBinary:    Op, X, Y (Type for OpAs)
//	ExprCall:      X (callee), Args
//	ExprIndex:     X, Y
//	ExprMember:    X, Name
//	ExprCast:      Type, X
//	ExprNew:       Type, Args
//	ExprDelete:    X
//	ExprTypeExpr:  Type
//	ExprAlloca:    Type
//	ExprCoerce:    X
type Expr struct {
	Kind  ExprKind
	Span  source.Span
	Op    Op
	X     ExprID
	Y     ExprID
	Args  []ExprID
	Name  string
	Type  TypeExprID
	Int   int64
	Float float64
	Str   string
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena *Arena[Expr]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{Arena: NewArena[Expr](capHint)}
}

func (e *Exprs) New(ex Expr) ExprID {
	return ExprID(e.Arena.Allocate(ex))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Replace overwrites a node in place so that every parent keeps pointing at it.
// The original span is kept when the replacement carries none.
func (e *Exprs) Replace(id ExprID, ex Expr) {
	slot := e.Get(id)
	if slot == nil {
		return
	}
	if !ex.Span.Known() {
		ex.Span = slot.Span
	}
	*slot = ex
}

// Clone copies a subtree and returns the new root. Type expressions are shared.
func (e *Exprs) Clone(id ExprID) ExprID {
	src := e.Get(id)
	if src == nil {
		return NoExprID
	}
	cp := *src
	cp.X = e.Clone(src.X)
	cp.Y = e.Clone(src.Y)
	if len(src.Args) > 0 {
		cp.Args = make([]ExprID, len(src.Args))
		for i, a := range src.Args {
			cp.Args[i] = e.Clone(a)
		}
	}
	return e.New(cp)
}
