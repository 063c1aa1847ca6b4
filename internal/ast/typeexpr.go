package ast

import (
	"keel/internal/source"
)

type TypeExprKind uint8

const (
	TypeExprName     TypeExprKind = iota + 1 // int, Point, pkg.Point
	TypeExprPointer                          // T*
	TypeExprArray                            // T[N]
	TypeExprDynArray                         // T[]
	TypeExprTuple                            // (T, U)
	TypeExprFn                               // fn(T, U...) R
)

// TypeExpr is a type as written in source.
//
//	TypeExprName:     Name, Pkg (qualifier, may be empty)
//	TypeExprPointer:  Elem
//	TypeExprArray:    Elem, Len
//	TypeExprDynArray: Elem
//	TypeExprTuple:    Elems
//	TypeExprFn:       Elem (result), Elems (params), Variadic
type TypeExpr struct {
	Kind     TypeExprKind
	Span     source.Span
	Name     string
	Pkg      string
	Elem     TypeExprID
	Elems    []TypeExprID
	Len      ExprID
	Variadic bool
}

type TypeExprs struct {
	Arena *Arena[TypeExpr]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &TypeExprs{Arena: NewArena[TypeExpr](capHint)}
}

func (t *TypeExprs) New(te TypeExpr) TypeExprID {
	return TypeExprID(t.Arena.Allocate(te))
}

func (t *TypeExprs) Get(id TypeExprID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}
