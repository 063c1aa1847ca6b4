package symbols

import (
	"fmt"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/types"
)

// UnitInfo records what the declare pass learned about one translation unit:
// the scope of every block, and the identifier every name use was bound to at
// the point it was reached in source order.
type UnitInfo struct {
	Unit      *ast.Unit
	Root      ScopeID
	Idents    map[ast.ExprID]SymbolID
	TypeNames map[ast.TypeExprID]SymbolID // named types; the qualifier for pkg.Name
	Labels    map[ast.StmtID]SymbolID     // goto targets
	Scopes    map[ast.StmtID]ScopeID      // compound statements and loops
	Items     map[ast.ItemID]SymbolID     // identifier each named item was bound to
	Vars      map[ast.ItemID]VarID
	Fns       map[ast.ItemID]FnID
	Users     map[ast.ItemID]UserID
	Imports   []SymbolID
}

func newUnitInfo(u *ast.Unit) *UnitInfo {
	return &UnitInfo{
		Unit:      u,
		Idents:    make(map[ast.ExprID]SymbolID),
		TypeNames: make(map[ast.TypeExprID]SymbolID),
		Labels:    make(map[ast.StmtID]SymbolID),
		Scopes:    make(map[ast.StmtID]ScopeID),
		Items:     make(map[ast.ItemID]SymbolID),
		Vars:      make(map[ast.ItemID]VarID),
		Fns:       make(map[ast.ItemID]FnID),
		Users:     make(map[ast.ItemID]UserID),
	}
}

type declarer struct {
	t       *Table
	r       diag.Reporter
	info    *UnitInfo
	fnScope ScopeID
}

// DeclareUnit builds the scope tree of u and binds its declarations in source
// order, the way a parser does while it reads the unit. Names used before their
// declaration get Unknown identifiers; ResolveIdentifier settles them later.
func (t *Table) DeclareUnit(u *ast.Unit, r diag.Reporter) *UnitInfo {
	d := &declarer{t: t, r: r, info: newUnitInfo(u)}
	root := t.Scopes.New(ScopeUnit, NoScopeID, ScopeOwner{Unit: u}, source.Span{File: u.File})
	d.info.Root = root
	if prev, dup := t.modRoot[u.Module]; dup && u.Module != "" {
		diag.ReportError(r, diag.ProjLoadError, source.Span{File: u.File},
			fmt.Sprintf("module %q is defined by more than one unit", u.Module)).
			WithNote(t.Scopes.Get(prev).Span, "first definition").Emit()
	} else {
		t.modRoot[u.Module] = root
	}
	for _, id := range u.Decls {
		d.declareItem(id, root, NoUserID)
	}
	t.units = append(t.units, d.info)
	return d.info
}

func (d *declarer) intern(s string) source.StringID { return d.t.Strings.Intern(s) }

// bind declares name in scope itself and reports redeclarations.
func (d *declarer) bind(scope ScopeID, name string, span source.Span, p Payload) SymbolID {
	id := d.t.Local(scope, d.intern(name), span)
	sym := d.t.Symbols.Get(id)
	if err := d.t.CanBind(id, p); err != nil {
		diag.ReportError(d.r, diag.SemaDuplicateSymbol, span, fmt.Sprintf("redeclaration of %q", name)).
			WithNote(sym.Span, "previous declaration is here").
			Emit()
		return NoSymbolID
	}
	wasBound := sym.Bound()
	if err := d.t.Bind(id, p); err != nil {
		diag.Invariant(d.r, span, "bind %q: %v", name, err)
	}
	if !wasBound {
		d.t.Symbols.Get(id).Span = span
	}
	return id
}

func (d *declarer) declareItem(id ast.ItemID, scope ScopeID, owner UserID) {
	u := d.info.Unit
	it := u.Items.Get(id)
	if it == nil {
		return
	}
	switch it.Kind {
	case ast.ItemVar:
		d.walkType(it.Type, scope)
		d.walkExpr(it.Init, scope)
		v := d.t.Vars.New(Var{
			Name:  d.intern(it.Name),
			Span:  it.Span,
			Unit:  u,
			Item:  id,
			Scope: scope,
			Init:  it.Init,
			Flags: it.VarFlags,
			Owner: owner,
		})
		d.info.Vars[id] = v
		if user := d.t.Users.Get(owner); user != nil {
			user.Fields = append(user.Fields, v)
		}
		d.info.Items[id] = d.bind(scope, it.Name, it.Span, VarRef{ID: v})
	case ast.ItemFn:
		d.declareFn(id, it, scope, owner)
	case ast.ItemType:
		d.declareUser(id, it, scope)
	case ast.ItemImport:
		sym := d.bind(scope, it.Name, it.Span, PackageRef{Path: it.Path})
		d.info.Items[id] = sym
		if sym.IsValid() {
			d.info.Imports = append(d.info.Imports, sym)
		}
	case ast.ItemDefine:
		d.walkExpr(it.Init, scope)
		d.info.Items[id] = d.bind(scope, it.Name, it.Span, ExprRef{Unit: u, Scope: scope, Expr: it.Init})
	case ast.ItemTypedef:
		d.walkType(it.Type, scope)
		d.info.Items[id] = d.bind(scope, it.Name, it.Span, AliasRef{Unit: u, Scope: scope, Type: it.Type})
	default:
		diag.Invariant(d.r, it.Span, "unexpected item kind %d", it.Kind)
	}
}

func (d *declarer) declareFn(id ast.ItemID, it *ast.Item, scope ScopeID, owner UserID) {
	u := d.info.Unit
	fnScope := d.t.Scopes.New(ScopeFunction, scope, ScopeOwner{Unit: u, Item: id}, it.Span)
	fnID := d.t.Fns.New(Fn{
		Name:     d.intern(it.Name),
		Span:     it.Span,
		Unit:     u,
		Item:     id,
		Scope:    fnScope,
		Variadic: it.Variadic,
		Body:     it.Body,
		Flags:    it.FnFlags,
		Owner:    owner,
	})
	d.info.Fns[id] = fnID

	var params []VarID
	if owner.IsValid() && it.FnFlags&ast.FnStatic == 0 {
		this := d.t.Vars.New(Var{Name: d.intern("this"), Span: it.Span, Unit: u, Scope: fnScope, Param: true, Owner: owner})
		d.bind(fnScope, "this", it.Span, VarRef{ID: this})
		params = append(params, this)
	}
	for _, p := range it.Params {
		d.walkType(p.Type, scope)
		d.walkExpr(p.Default, scope)
		v := d.t.Vars.New(Var{Name: d.intern(p.Name), Span: p.Span, Unit: u, Scope: fnScope, Init: p.Default, Param: true})
		if p.Name != "" {
			d.bind(fnScope, p.Name, p.Span, VarRef{ID: v})
		}
		params = append(params, v)
	}
	d.walkType(it.Result, scope)
	d.t.Fns.Get(fnID).Params = params

	user := d.t.Users.Get(owner)
	switch {
	case user != nil && it.FnFlags&ast.FnConstructor != 0:
		if !user.Ctor.IsValid() {
			user.Ctor = fnID
		} else {
			d.t.appendOverload(user.Ctor, fnID)
		}
	case user != nil && it.FnFlags&ast.FnDestructor != 0:
		if user.Dtor.IsValid() {
			diag.ReportError(d.r, diag.SemaDuplicateSymbol, it.Span, "destructor declared twice").
				WithNote(d.t.Fns.Get(user.Dtor).Span, "previous declaration is here").
				Emit()
		} else {
			user.Dtor = fnID
		}
	default:
		if user != nil {
			user.Methods = append(user.Methods, fnID)
		}
		d.info.Items[id] = d.bind(scope, it.Name, it.Span, FnRef{Head: fnID})
	}

	prev := d.fnScope
	d.fnScope = fnScope
	d.walkStmt(it.Body, fnScope)
	d.fnScope = prev
}

func (d *declarer) declareUser(id ast.ItemID, it *ast.Item, scope ScopeID) {
	u := d.info.Unit
	kind := userKind(it.UserKind)
	uid := d.t.Users.New(User{
		Name:     d.intern(it.Name),
		Span:     it.Span,
		Unit:     u,
		Item:     id,
		Kind:     kind,
		BaseExpr: it.Base,
	})
	typ := d.t.Types.RegisterUser(kind, it.Name, uint32(uid))
	members := d.t.Scopes.New(ScopeType, scope, ScopeOwner{Unit: u, Item: id, User: uid}, it.Span)
	user := d.t.Users.Get(uid)
	user.Type = typ
	user.Members = members
	d.info.Users[id] = uid
	d.info.Items[id] = d.bind(scope, it.Name, it.Span, UserRef{ID: uid})

	d.walkType(it.Base, scope)
	for _, m := range it.Members {
		d.declareItem(m, members, uid)
	}
}

func userKind(k ast.UserKind) types.UserKind {
	switch k {
	case ast.UserUnion:
		return types.UserUnion
	case ast.UserClass:
		return types.UserClass
	case ast.UserInterface:
		return types.UserInterface
	default:
		return types.UserStruct
	}
}

func (d *declarer) walkStmt(id ast.StmtID, scope ScopeID) {
	u := d.info.Unit
	st := u.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtCompound:
		inner := d.t.Scopes.New(ScopeBlock, scope, ScopeOwner{Unit: u, Stmt: id}, st.Span)
		d.info.Scopes[id] = inner
		for _, s := range st.Body {
			d.walkStmt(s, inner)
		}
	case ast.StmtIf:
		d.walkExpr(st.Cond, scope)
		d.walkStmt(st.Then, scope)
		d.walkStmt(st.Else, scope)
	case ast.StmtLoop:
		inner := d.t.Scopes.New(ScopeBlock, scope, ScopeOwner{Unit: u, Stmt: id}, st.Span)
		d.info.Scopes[id] = inner
		d.walkStmt(st.Init, inner)
		d.walkExpr(st.Cond, inner)
		d.walkExpr(st.Post, inner)
		d.walkStmt(st.Then, inner)
	case ast.StmtSwitch:
		d.walkExpr(st.Cond, scope)
		d.walkStmt(st.Then, scope)
	case ast.StmtCase, ast.StmtReturn, ast.StmtExpr:
		d.walkExpr(st.Value, scope)
	case ast.StmtLabel:
		d.bind(d.labelScope(scope), st.Label, st.Span, LabelRef{Stmt: id})
	case ast.StmtGoto:
		d.info.Labels[id] = d.t.Local(d.labelScope(scope), d.intern(st.Label), st.Span)
	case ast.StmtDecl:
		d.declareItem(st.Decl, scope, NoUserID)
	}
}

// labelScope is the innermost function scope; labels are function-wide.
func (d *declarer) labelScope(scope ScopeID) ScopeID {
	if d.fnScope.IsValid() {
		return d.fnScope
	}
	return scope
}

func (d *declarer) walkExpr(id ast.ExprID, scope ScopeID) {
	ex := d.info.Unit.Exprs.Get(id)
	if ex == nil {
		return
	}
	if ex.Kind == ast.ExprIdent {
		d.info.Idents[id] = d.t.Get(scope, d.intern(ex.Name), ex.Span)
		return
	}
	d.walkType(ex.Type, scope)
	d.walkExpr(ex.X, scope)
	d.walkExpr(ex.Y, scope)
	for _, a := range ex.Args {
		d.walkExpr(a, scope)
	}
}

func (d *declarer) walkType(id ast.TypeExprID, scope ScopeID) {
	te := d.info.Unit.Types.Get(id)
	if te == nil {
		return
	}
	switch te.Kind {
	case ast.TypeExprName:
		if te.Pkg != "" {
			d.info.TypeNames[id] = d.t.Get(scope, d.intern(te.Pkg), te.Span)
		} else if _, prim := d.t.Types.Primitive(te.Name); !prim {
			d.info.TypeNames[id] = d.t.Get(scope, d.intern(te.Name), te.Span)
		}
	case ast.TypeExprArray:
		d.walkExpr(te.Len, scope)
	}
	d.walkType(te.Elem, scope)
	for _, el := range te.Elems {
		d.walkType(el, scope)
	}
}
