package sema

import (
	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/symbols"
	"keel/internal/types"
)

// Lowering rewrites sugar in place so every parent keeps pointing at the same
// node id. A rewritten node is then checked as the primitive shape it became.

// lowerAs: x as T  =>  (T) x
func (tc *typeChecker) lowerAs(c checkCtx, id ast.ExprID, ex ast.Expr) {
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprCast, Span: ex.Span, Type: ex.Type, X: ex.X})
}

// lowerCompound: x op= y  =>  x = x op y
func (tc *typeChecker) lowerCompound(c checkCtx, id ast.ExprID, ex ast.Expr) {
	op, _ := ex.Op.CompoundBase()
	lhs := tc.cloneExpr(c, ex.X)
	rhs := c.info.Unit.Exprs.New(ast.Expr{Kind: ast.ExprBinary, Span: ex.Span, Op: op, X: lhs, Y: ex.Y})
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprBinary, Span: ex.Span, Op: ast.OpAssign, X: ex.X, Y: rhs})
}

// lowerCoerceAssign: x := y  =>  x = (typeof x) y
func (tc *typeChecker) lowerCoerceAssign(c checkCtx, id ast.ExprID, ex ast.Expr) {
	lt := tc.checkExpr(c, ex.X)
	rhs := ex.Y
	if lt != types.NoTypeID {
		rhs = c.info.Unit.Exprs.New(ast.Expr{Kind: ast.ExprCast, Span: ex.Span, X: ex.Y})
		c.res.CastTargets[rhs] = lt
	}
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprBinary, Span: ex.Span, Op: ast.OpAssign, X: ex.X, Y: rhs})
}

// lowerConversion: T(x)  =>  (T) x  for non-object T
func (tc *typeChecker) lowerConversion(c checkCtx, id ast.ExprID, ex ast.Expr, t types.TypeID) {
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprCast, Span: ex.Span, X: ex.Args[0]})
	c.res.CastTargets[id] = t
}

// lowerSizeof: T.sizeof  =>  integer literal
func (tc *typeChecker) lowerSizeof(c checkCtx, id ast.ExprID, ex ast.Expr, t types.TypeID) types.TypeID {
	if t == types.NoTypeID {
		return t
	}
	if t == tc.builtins().Void {
		tc.report(diag.SemaSizeofUnsized, ex.Span, "void has no size")
		return types.NoTypeID
	}
	l, ok := tc.layoutOf(t, ex.Span)
	if !ok {
		return types.NoTypeID
	}
	delete(c.res.ExprSymbols, id)
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprIntLit, Span: ex.Span, Int: int64(l.Size)})
	return tc.checkExpr(c, id)
}

// lowerConstructorCall: T(args)  =>  T.ctor(alloca T, args); the call yields the object.
func (tc *typeChecker) lowerConstructorCall(c checkCtx, id ast.ExprID, ex ast.Expr, t types.TypeID, uid symbols.UserID) {
	tc.resolveUser(uid)
	user := tc.table.Users.Get(uid)
	if !user.Ctor.IsValid() {
		tc.report(diag.SemaMissingConstructor, ex.Span, "%s has no constructor", tc.label(t))
		tc.argTypes(c, ex.Args)
		return
	}
	slot := c.info.Unit.Exprs.New(ast.Expr{Kind: ast.ExprAlloca, Span: ex.Span})
	c.res.ExprTypes[slot] = tc.types.PointerTo(t)
	call := callSite{id: id, name: tc.name(user.Name), span: ex.Span, recv: slot, args: ex.Args}
	if !tc.callFns(c, call, tc.table.Fns.Chain(user.Ctor)) {
		return
	}
	ct := c.res.CallTargets[id]
	ct.Constructor = true
	c.res.CallTargets[id] = ct
}

// lowerQualified: pkg.name  =>  name bound inside the package scope
func (tc *typeChecker) lowerQualified(c checkCtx, id ast.ExprID, ex ast.Expr, root symbols.ScopeID) bool {
	sym := tc.table.LookupLocal(root, tc.table.Strings.Intern(ex.Name))
	if !tc.table.Symbols.Get(sym).Bound() {
		pkg := c.info.Unit.Exprs.Get(ex.X)
		tc.report(diag.SemaUnresolvedSymbol, ex.Span, "package %s has no member %q", pkg.Name, ex.Name)
		return false
	}
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprIdent, Span: ex.Span, Name: ex.Name})
	c.info.Idents[id] = sym
	return true
}

// lowerUFCS: x.f(args)  =>  f(x, args)
func (tc *typeChecker) lowerUFCS(c checkCtx, id ast.ExprID, member ast.Expr, sym symbols.SymbolID, args []ast.ExprID) {
	fn := c.info.Unit.Exprs.New(ast.Expr{Kind: ast.ExprIdent, Span: member.Span, Name: member.Name})
	c.info.Idents[fn] = sym
	all := append([]ast.ExprID{member.X}, args...)
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprCall, Span: member.Span, X: fn, Args: all})
}

// lowerImplicitThis: field  =>  this.field  inside methods
func (tc *typeChecker) lowerImplicitThis(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	this := tc.thisExpr(c, ex.Span)
	if !this.IsValid() {
		tc.report(diag.SemaInvalidOperands, ex.Span, "field %q used without an object", ex.Name)
		return types.NoTypeID
	}
	delete(c.res.ExprSymbols, id)
	delete(c.info.Idents, id)
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprMember, Span: ex.Span, X: this, Name: ex.Name})
	return tc.checkExpr(c, id)
}

// expandDefine substitutes a use of a compile-time constant by a copy of its
// expression, checked at the use site.
func (tc *typeChecker) expandDefine(c checkCtx, id ast.ExprID, ex ast.Expr, sym symbols.SymbolID, ref symbols.ExprRef) types.TypeID {
	if tc.expanding[sym] {
		tc.report(diag.SemaTypeMismatch, ex.Span, "constant %q refers to itself", ex.Name)
		return types.NoTypeID
	}
	src := tc.ctxFor(ref.Unit, ref.Scope).info
	cp := tc.copyExpr(src, ref.Expr, c.info)
	node := *c.info.Unit.Exprs.Get(cp)
	node.Span = ex.Span
	delete(c.res.ExprSymbols, id)
	delete(c.info.Idents, id)
	if s, ok := c.info.Idents[cp]; ok {
		c.info.Idents[id] = s
	}
	c.info.Unit.Exprs.Replace(id, node)

	tc.expanding[sym] = true
	t := tc.checkExpr(c, id)
	delete(tc.expanding, sym)
	return t
}
