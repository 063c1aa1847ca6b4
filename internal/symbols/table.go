package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"keel/internal/ast"
	"keel/internal/source"
	"keel/internal/types"
)

var (
	// ErrKindChange is returned when a bound identifier would change kind.
	ErrKindChange = errors.New("identifier kind is immutable once bound")
	// ErrRedefinition is returned when a defined non-function declaration is bound again.
	ErrRedefinition = errors.New("identifier already carries a definition")
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols, Decls uint }

// Table aggregates scopes, identifiers and declarations of one compilation run.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Vars    *Vars
	Fns     *Fns
	Users   *Users
	Strings *source.Interner
	Types   *types.Interner

	units   []*UnitInfo
	modRoot map[string]ScopeID
}

// NewTable builds a fresh table. Nil interners are allocated.
func NewTable(h Hints, strings *source.Interner, typesIn *types.Interner) *Table {
	conv := func(n uint, what string) uint32 {
		v, err := safecast.Conv[uint32](n)
		if err != nil {
			panic(fmt.Errorf("%s capacity overflow: %w", what, err))
		}
		return v
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	if typesIn == nil {
		typesIn = types.NewInterner()
	}
	decls := conv(h.Decls, "decl")
	return &Table{
		Scopes:  NewScopes(conv(h.Scopes, "scope")),
		Symbols: NewSymbols(conv(h.Symbols, "symbol")),
		Vars:    NewVars(decls),
		Fns:     NewFns(decls),
		Users:   NewUsers(decls),
		Strings: strings,
		Types:   typesIn,
		modRoot: make(map[string]ScopeID),
	}
}

// ModuleRoot returns the root scope registered for a module name.
func (t *Table) ModuleRoot(module string) (ScopeID, bool) {
	id, ok := t.modRoot[module]
	return id, ok
}

// Units lists declared units in declaration order.
func (t *Table) Units() []*UnitInfo { return t.units }

// Name returns the text of an identifier.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	return t.Strings.MustLookup(sym.Name)
}

// Lookup searches scope and its parents for name. A bound identifier anywhere on
// the lexical chain wins over an Unknown one closer in, so an enclosing
// declaration is preferred once it exists. When nothing is bound and
// considerSiblings is set, each sibling of every scope on the chain is probed
// one hop deep. If still nothing is bound, the innermost Unknown identifier is
// returned (or NoSymbolID).
func (t *Table) Lookup(scope ScopeID, name source.StringID, considerSiblings bool) SymbolID {
	pending := NoSymbolID
	for cur := scope; cur.IsValid(); {
		sc := t.Scopes.Get(cur)
		if sc == nil {
			break
		}
		if id, ok := sc.Names[name]; ok {
			if t.Symbols.Get(id).Bound() {
				return id
			}
			if !pending.IsValid() {
				pending = id
			}
		}
		cur = sc.Parent
	}
	if considerSiblings {
		for cur := scope; cur.IsValid(); {
			sc := t.Scopes.Get(cur)
			if sc == nil {
				break
			}
			for _, sib := range sc.Siblings {
				if id := t.LookupLocal(sib, name); id.IsValid() && t.Symbols.Get(id).Bound() {
					return id
				}
			}
			cur = sc.Parent
		}
	}
	return pending
}

// LookupLocal consults only the scope's own names.
func (t *Table) LookupLocal(scope ScopeID, name source.StringID) SymbolID {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		return NoSymbolID
	}
	return sc.Names[name]
}

// Get behaves like Lookup with siblings, but creates an Unknown identifier in
// scope when the name is not found at all. This is how a use may precede its
// declaration.
func (t *Table) Get(scope ScopeID, name source.StringID, span source.Span) SymbolID {
	if id := t.Lookup(scope, name, true); id.IsValid() {
		return id
	}
	return t.addSymbol(scope, name, span)
}

// Local returns the identifier for name in scope itself, creating an Unknown
// one if needed. Declarations go through here.
func (t *Table) Local(scope ScopeID, name source.StringID, span source.Span) SymbolID {
	if id := t.LookupLocal(scope, name); id.IsValid() {
		return id
	}
	return t.addSymbol(scope, name, span)
}

func (t *Table) addSymbol(scope ScopeID, name source.StringID, span source.Span) SymbolID {
	id := t.Symbols.New(Symbol{Name: name, Scope: scope, Span: span})
	if sc := t.Scopes.Get(scope); sc != nil {
		sc.Names[name] = id
		sc.Symbols = append(sc.Symbols, id)
	}
	return id
}

// CanBind reports whether Bind(id, p) would succeed.
func (t *Table) CanBind(id SymbolID, p Payload) error {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return fmt.Errorf("bind: invalid symbol %d", id)
	}
	if !sym.Bound() {
		return nil
	}
	if sym.Kind() != p.Kind() {
		return fmt.Errorf("%w: %s %q is already a %s", ErrKindChange, p.Kind(), t.Name(id), sym.Kind())
	}
	if sym.Kind() == KindFunction {
		return nil
	}
	if t.defined(sym.Payload) {
		return fmt.Errorf("%w: %s %q", ErrRedefinition, sym.Kind(), t.Name(id))
	}
	return nil
}

// Bind attaches a declaration to an identifier. Binding another function under a
// function identifier appends to its overload chain; a non-defining declaration
// (an external variable) may be completed by a later one.
func (t *Table) Bind(id SymbolID, p Payload) error {
	if err := t.CanBind(id, p); err != nil {
		return err
	}
	sym := t.Symbols.Get(id)
	if fn, ok := p.(FnRef); ok {
		if d := t.Fns.Get(fn.Head); d != nil {
			d.Symbol = id
		}
		if head, ok := sym.Payload.(FnRef); ok {
			t.appendOverload(head.Head, fn.Head)
			return nil
		}
	}
	sym.Payload = p
	sym.Target = NoSymbolID
	t.stampSymbol(id, p)
	return nil
}

func (t *Table) stampSymbol(id SymbolID, p Payload) {
	switch p := p.(type) {
	case VarRef:
		if v := t.Vars.Get(p.ID); v != nil {
			v.Symbol = id
		}
	case UserRef:
		if u := t.Users.Get(p.ID); u != nil {
			u.Symbol = id
		}
	}
}

func (t *Table) defined(p Payload) bool {
	if v, ok := p.(VarRef); ok {
		d := t.Vars.Get(v.ID)
		return d == nil || d.Flags&ast.VarExternal == 0
	}
	return true
}

func (t *Table) appendOverload(head, fn FnID) {
	cur := head
	for {
		d := t.Fns.Get(cur)
		if d == nil || cur == fn {
			return
		}
		if !d.Next.IsValid() {
			d.Next = fn
			return
		}
		cur = d.Next
	}
}

// RemoveOverload unlinks fn from the chain that starts at *head.
func (t *Table) RemoveOverload(head *FnID, fn FnID) {
	if *head == fn {
		if d := t.Fns.Get(fn); d != nil {
			*head = d.Next
			d.Next = NoFnID
		}
		return
	}
	for cur := *head; cur.IsValid(); {
		d := t.Fns.Get(cur)
		if d == nil {
			return
		}
		if d.Next == fn {
			removed := t.Fns.Get(fn)
			d.Next = removed.Next
			removed.Next = NoFnID
			return
		}
		cur = d.Next
	}
}

// SetOverloadHead rewrites the head stored on a function identifier.
func (t *Table) SetOverloadHead(id SymbolID, head FnID) {
	if sym := t.Symbols.Get(id); sym != nil && sym.Kind() == KindFunction {
		sym.Payload = FnRef{Head: head}
	}
}

// ResolveIdentifier returns the bound identifier an identifier stands for. Bound
// identifiers resolve to themselves; Unknown ones re-run Lookup from their own
// scope and memoise a hit. NoSymbolID means the name is still unresolved.
func (t *Table) ResolveIdentifier(id SymbolID) SymbolID {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return NoSymbolID
	}
	if sym.Bound() {
		return id
	}
	if sym.Target.IsValid() {
		return sym.Target
	}
	found := t.Lookup(sym.Scope, sym.Name, true)
	if found.IsValid() && t.Symbols.Get(found).Bound() {
		sym.Target = found
		return found
	}
	return NoSymbolID
}

// LinkPackage records the imported root on a package identifier and links it as
// a sibling of the importing unit root.
func (t *Table) LinkPackage(id SymbolID, root ScopeID) {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return
	}
	pkg, ok := sym.Payload.(PackageRef)
	if !ok {
		return
	}
	pkg.Root = root
	sym.Payload = pkg
	t.Scopes.AddSibling(t.rootOf(sym.Scope), root)
}

func (t *Table) rootOf(scope ScopeID) ScopeID {
	for {
		sc := t.Scopes.Get(scope)
		if sc == nil || !sc.Parent.IsValid() {
			return scope
		}
		scope = sc.Parent
	}
}

// EnclosingUser returns the user type whose member scope contains scope.
func (t *Table) EnclosingUser(scope ScopeID) UserID {
	for cur := scope; cur.IsValid(); {
		sc := t.Scopes.Get(cur)
		if sc == nil {
			break
		}
		if sc.Kind == ScopeType {
			return sc.Owner.User
		}
		cur = sc.Parent
	}
	return NoUserID
}

// UserOfType maps a user TypeID back to its declaration.
func (t *Table) UserOfType(id types.TypeID) UserID {
	info, ok := t.Types.UserInfo(id)
	if !ok {
		return NoUserID
	}
	return UserID(info.Decl)
}
