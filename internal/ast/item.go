package ast

import (
	"keel/internal/source"
)

// ItemKind discriminates declaration nodes.
type ItemKind uint8

const (
	ItemVar     ItemKind = iota + 1 // variable or field
	ItemFn                          // function or method
	ItemType                        // struct / union / class / interface
	ItemImport                      // import "path" as name
	ItemDefine                      // define NAME = expr
	ItemTypedef                     // typedef T Name
)

func (k ItemKind) String() string {
	switch k {
	case ItemVar:
		return "var"
	case ItemFn:
		return "fn"
	case ItemType:
		return "type"
	case ItemImport:
		return "import"
	case ItemDefine:
		return "define"
	case ItemTypedef:
		return "typedef"
	default:
		return "invalid"
	}
}

// UserKind is the flavour of a user type declaration.
type UserKind uint8

const (
	UserStruct UserKind = iota + 1
	UserUnion
	UserClass
	UserInterface
)

func (k UserKind) String() string {
	switch k {
	case UserStruct:
		return "struct"
	case UserUnion:
		return "union"
	case UserClass:
		return "class"
	case UserInterface:
		return "interface"
	default:
		return "invalid"
	}
}

// VarFlags are the storage qualifiers of a variable.
type VarFlags uint8

const (
	VarConst VarFlags = 1 << iota
	VarStatic
	VarExternal
	VarWeak
)

// FnFlags describe a function's role inside a type.
type FnFlags uint8

const (
	FnConstructor FnFlags = 1 << iota
	FnDestructor
	FnStatic
	FnVirtual
	FnExternal
)

// Param is one declared function parameter.
type Param struct {
	Span    source.Span
	Name    string
	Type    TypeExprID
	Default ExprID // NoExprID when the parameter has no default value
}

// Item is a declaration node. Which fields are meaningful depends on Kind:
//
//	ItemVar:     Type, Init, VarFlags
//	ItemFn:      Params, Result, Variadic, Body, FnFlags
//	ItemType:    UserKind, Base, Members
//	ItemImport:  Path (Name is the local alias)
//	ItemDefine:  Init
//	ItemTypedef: Type
type Item struct {
	Kind     ItemKind
	Span     source.Span
	Name     string
	Type     TypeExprID
	Init     ExprID
	VarFlags VarFlags
	Params   []Param
	Result   TypeExprID
	Variadic bool
	Body     StmtID
	FnFlags  FnFlags
	UserKind UserKind
	Base     TypeExprID
	Members  []ItemID
	Path     string
}

// HasBody reports whether a function item is a definition rather than a prototype.
func (it *Item) HasBody() bool {
	return it != nil && it.Kind == ItemFn && it.Body.IsValid()
}

// Items manages allocation of declaration nodes.
type Items struct {
	Arena *Arena[Item]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Items{Arena: NewArena[Item](capHint)}
}

func (i *Items) New(it Item) ItemID {
	return ItemID(i.Arena.Allocate(it))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}
