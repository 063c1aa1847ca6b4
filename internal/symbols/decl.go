package symbols

import (
	"keel/internal/ast"
	"keel/internal/source"
	"keel/internal/types"
)

// NoVIndex marks a function without a dispatch slot.
const NoVIndex = -1

// Var is a variable, field or parameter declaration.
type Var struct {
	Name   source.StringID
	Span   source.Span
	Unit   *ast.Unit
	Item   ast.ItemID // NoItemID for parameters
	Scope  ScopeID    // scope the declaration lives in
	Type   types.TypeID
	Init   ast.ExprID // initializer, or the default value of a parameter
	Flags  ast.VarFlags
	Owner  UserID // set for fields
	Param  bool
	Symbol SymbolID
}

// IsField reports whether v is a by-value member of a user type.
func (v *Var) IsField() bool { return v.Owner.IsValid() && !v.Param }

// Fn is a function, method, constructor or destructor. Functions sharing a
// name in one scope form a singly linked overload chain through Next.
type Fn struct {
	Name     source.StringID
	Span     source.Span
	Unit     *ast.Unit
	Item     ast.ItemID
	Scope    ScopeID // parameter scope
	Params   []VarID // receiver first for methods
	Result   types.TypeID
	Sig      types.TypeID
	Variadic bool
	Body     ast.StmtID
	Flags    ast.FnFlags
	Owner    UserID
	Next     FnID
	VIndex   int
	Symbol   SymbolID
	// Definition points prototype declarations at the body-bearing declaration
	// that completed them.
	Definition FnID
}

// IsMethod reports functions with an implicit receiver.
func (f *Fn) IsMethod() bool {
	return f.Owner.IsValid() && f.Flags&ast.FnStatic == 0
}

func (f *Fn) IsConstructor() bool { return f.Flags&ast.FnConstructor != 0 }
func (f *Fn) IsDestructor() bool  { return f.Flags&ast.FnDestructor != 0 }
func (f *Fn) HasBody() bool       { return f.Body.IsValid() }

// User is a struct, union, class or interface declaration.
type User struct {
	Name     source.StringID
	Span     source.Span
	Unit     *ast.Unit
	Item     ast.ItemID
	Kind     types.UserKind
	Type     types.TypeID
	Members  ScopeID
	Fields   []VarID
	Methods  []FnID // declaration order, constructors and destructor excluded
	BaseExpr ast.TypeExprID
	Base     UserID
	Ctor     FnID // head of the constructor overload chain
	Dtor     FnID
	Symbol   SymbolID

	// VTable holds the class dispatch slots once built; interfaces list their
	// methods in slot order.
	VTable      []FnID
	VTableBuilt bool
	Resolved    bool
}

// Vars, Fns and Users are the declaration arenas.
type Vars struct{ a *arena[Var] }
type Fns struct{ a *arena[Fn] }
type Users struct{ a *arena[User] }

func NewVars(capacity uint32) *Vars   { return &Vars{a: newArena[Var]("vars", capacity)} }
func NewFns(capacity uint32) *Fns     { return &Fns{a: newArena[Fn]("fns", capacity)} }
func NewUsers(capacity uint32) *Users { return &Users{a: newArena[User]("users", capacity)} }

func (v *Vars) New(d Var) VarID      { return VarID(v.a.push(d)) }
func (v *Vars) Get(id VarID) *Var    { return v.a.get(uint32(id)) }
func (v *Vars) Len() int             { return v.a.Len() }
func (f *Fns) Get(id FnID) *Fn       { return f.a.get(uint32(id)) }
func (f *Fns) Len() int              { return f.a.Len() }
func (u *Users) New(d User) UserID   { return UserID(u.a.push(d)) }
func (u *Users) Get(id UserID) *User { return u.a.get(uint32(id)) }
func (u *Users) Len() int            { return u.a.Len() }

func (f *Fns) New(d Fn) FnID {
	if d.VIndex == 0 {
		d.VIndex = NoVIndex
	}
	return FnID(f.a.push(d))
}

// Chain lists the overload chain starting at head.
func (f *Fns) Chain(head FnID) []FnID {
	var out []FnID
	for id := head; id.IsValid(); {
		fn := f.Get(id)
		if fn == nil {
			break
		}
		out = append(out, id)
		id = fn.Next
	}
	return out
}
