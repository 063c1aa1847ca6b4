package symbols

import (
	"keel/internal/ast"
	"keel/internal/source"
)

// Kind classifies what an identifier names.
type Kind uint8

const (
	KindUnknown Kind = iota // not bound yet
	KindVariable
	KindFunction
	KindType
	KindPackage
	KindLabel
	KindExpression
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	case KindType:
		return "type"
	case KindPackage:
		return "package"
	case KindLabel:
		return "label"
	case KindExpression:
		return "constant"
	case KindAlias:
		return "alias"
	default:
		return "invalid"
	}
}

// Payload is what a bound identifier refers to. The concrete type fixes the kind,
// so a payload can never disagree with its identifier's kind.
type Payload interface {
	Kind() Kind
	payload()
}

// VarRef binds a variable, field or parameter.
type VarRef struct{ ID VarID }

// FnRef binds a function name to the head of its overload chain.
type FnRef struct{ Head FnID }

// UserRef binds a struct, union, class or interface.
type UserRef struct{ ID UserID }

// PackageRef binds an import alias. Root stays invalid until the import resolver
// supplies the imported unit.
type PackageRef struct {
	Path string
	Root ScopeID
}

// LabelRef binds a statement label inside a function.
type LabelRef struct{ Stmt ast.StmtID }

// ExprRef binds a compile-time constant; uses are replaced by a copy of Expr.
type ExprRef struct {
	Unit  *ast.Unit
	Scope ScopeID
	Expr  ast.ExprID
}

// AliasRef binds a typedef name to the type expression it stands for.
type AliasRef struct {
	Unit  *ast.Unit
	Scope ScopeID
	Type  ast.TypeExprID
}

func (VarRef) Kind() Kind     { return KindVariable }
func (FnRef) Kind() Kind      { return KindFunction }
func (UserRef) Kind() Kind    { return KindType }
func (PackageRef) Kind() Kind { return KindPackage }
func (LabelRef) Kind() Kind   { return KindLabel }
func (ExprRef) Kind() Kind    { return KindExpression }
func (AliasRef) Kind() Kind   { return KindAlias }

func (VarRef) payload()     {}
func (FnRef) payload()      {}
func (UserRef) payload()    {}
func (PackageRef) payload() {}
func (LabelRef) payload()   {}
func (ExprRef) payload()    {}
func (AliasRef) payload()   {}

// Symbol is an identifier: a name in exactly one scope. It is Unknown until a
// declaration binds it. Target memoises the identifier an Unknown use resolved to.
type Symbol struct {
	Name    source.StringID
	Scope   ScopeID
	Span    source.Span
	Payload Payload
	Target  SymbolID
}

// Bound reports whether the identifier carries a declaration.
func (s *Symbol) Bound() bool { return s != nil && s.Payload != nil }

// Kind returns KindUnknown for unbound identifiers.
func (s *Symbol) Kind() Kind {
	if s == nil || s.Payload == nil {
		return KindUnknown
	}
	return s.Payload.Kind()
}

// Symbols stores identifiers.
type Symbols struct {
	a *arena[Symbol]
}

func NewSymbols(capacity uint32) *Symbols {
	return &Symbols{a: newArena[Symbol]("symbols", capacity)}
}

func (s *Symbols) New(sym Symbol) SymbolID { return SymbolID(s.a.push(sym)) }

func (s *Symbols) Get(id SymbolID) *Symbol { return s.a.get(uint32(id)) }

func (s *Symbols) Len() int { return s.a.Len() }
