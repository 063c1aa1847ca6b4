package ast

import (
	"keel/internal/source"
)

type StmtKind uint8

const (
	StmtCompound StmtKind = iota + 1
	StmtIf
	StmtLoop // while and for share one shape
	StmtSwitch
	StmtCase // Value == NoExprID is the default label
	StmtLabel
	StmtGoto
	StmtBreak
	StmtContinue
	StmtReturn
	StmtExpr
	StmtDecl
)

func (k StmtKind) String() string {
	switch k {
	case StmtCompound:
		return "compound"
	case StmtIf:
		return "if"
	case StmtLoop:
		return "loop"
	case StmtSwitch:
		return "switch"
	case StmtCase:
		return "case"
	case StmtLabel:
		return "label"
	case StmtGoto:
		return "goto"
	case StmtBreak:
		return "break"
	case StmtContinue:
		return "continue"
	case StmtReturn:
		return "return"
	case StmtExpr:
		return "expr"
	case StmtDecl:
		return "decl"
	default:
		return "invalid"
	}
}

// Stmt is a statement node.
//
//	StmtCompound: Body
//	StmtIf:       Cond, Then, Else
//	StmtLoop:     Init, Cond, Post, Then (loop body)
//	StmtSwitch:   Cond, Then (switch body)
//	StmtCase:     Value
//	StmtLabel:    Label
//	StmtGoto:     Label
//	StmtReturn:   Value
//	StmtExpr:     Value
//	StmtDecl:     Decl
type Stmt struct {
	Kind  StmtKind
	Span  source.Span
	Body  []StmtID
	Cond  ExprID
	Then  StmtID
	Else  StmtID
	Init  StmtID
	Post  ExprID
	Value ExprID
	Label string
	Decl  ItemID
}

type Stmts struct {
	Arena *Arena[Stmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{Arena: NewArena[Stmt](capHint)}
}

func (s *Stmts) New(st Stmt) StmtID {
	return StmtID(s.Arena.Allocate(st))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}
