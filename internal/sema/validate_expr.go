package sema

import (
	"math"

	"fortio.org/safecast"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/symbols"
	"keel/internal/types"
)

// checkExpr types an expression, lowering it on the way. Each node is checked
// once; later visits return the recorded type.
func (tc *typeChecker) checkExpr(c checkCtx, id ast.ExprID) types.TypeID {
	if !id.IsValid() {
		return types.NoTypeID
	}
	if t, ok := c.res.ExprTypes[id]; ok {
		return t
	}
	t := tc.computeExpr(c, id)
	c.res.ExprTypes[id] = t
	return t
}

func (tc *typeChecker) computeExpr(c checkCtx, id ast.ExprID) types.TypeID {
	ex := *c.info.Unit.Exprs.Get(id)
	b := tc.builtins()
	switch ex.Kind {
	case ast.ExprIdent:
		return tc.checkIdent(c, id, ex)
	case ast.ExprIntLit:
		if ex.Int >= math.MinInt32 && ex.Int <= math.MaxInt32 {
			return b.Int
		}
		return b.Long
	case ast.ExprFloatLit:
		return b.Double
	case ast.ExprStringLit:
		n, err := safecast.Conv[uint32](len(ex.Str) + 1)
		if err != nil {
			tc.report(diag.SemaTypeMismatch, ex.Span, "string literal too long: %v", err)
			return types.NoTypeID
		}
		return tc.types.ArrayOf(b.Char, n)
	case ast.ExprCharLit:
		return b.Char
	case ast.ExprBoolLit:
		return b.Bool
	case ast.ExprNullLit:
		return b.VoidPtr
	case ast.ExprTuple:
		elems := make([]types.TypeID, 0, len(ex.Args))
		ok := true
		for _, a := range ex.Args {
			t := tc.checkExpr(c, a)
			if t == b.Void {
				tc.report(diag.SemaVoidValue, ex.Span, "void value in tuple")
				t = types.NoTypeID
			}
			ok = ok && t != types.NoTypeID
			elems = append(elems, t)
		}
		if !ok {
			return types.NoTypeID
		}
		return tc.types.TupleOf(elems...)
	case ast.ExprUnary:
		return tc.checkUnary(c, id, ex)
	case ast.ExprBinary:
		return tc.checkBinary(c, id, ex)
	case ast.ExprCall:
		return tc.checkCall(c, id, ex)
	case ast.ExprIndex:
		return tc.checkIndex(c, ex)
	case ast.ExprMember:
		return tc.checkMember(c, id, ex)
	case ast.ExprCast:
		return tc.checkCast(c, id, ex)
	case ast.ExprNew:
		return tc.checkNew(c, id, ex)
	case ast.ExprDelete:
		return tc.checkDelete(c, id, ex)
	case ast.ExprTypeExpr:
		if t := tc.resolveTypeExpr(c, ex.Type); t != types.NoTypeID {
			tc.report(diag.SemaTypeMismatch, ex.Span, "type %s used as a value", tc.label(t))
		}
		return types.NoTypeID
	case ast.ExprAlloca:
		t := tc.resolveTypeExpr(c, ex.Type)
		if t == types.NoTypeID {
			return t
		}
		return tc.types.PointerTo(t)
	case ast.ExprCoerce:
		tc.checkExpr(c, ex.X)
		return c.res.Coercions[id]
	}
	diag.Invariant(tc.reporter, ex.Span, "unexpected expression kind %s", ex.Kind)
	return types.NoTypeID
}

func (tc *typeChecker) checkIdent(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	sym := tc.table.ResolveIdentifier(c.info.Idents[id])
	if !sym.IsValid() {
		tc.report(diag.SemaUnresolvedSymbol, ex.Span, "undeclared identifier %q", ex.Name)
		return types.NoTypeID
	}
	c.res.ExprSymbols[id] = sym
	s := tc.table.Symbols.Get(sym)
	switch p := s.Payload.(type) {
	case symbols.VarRef:
		if tc.table.Vars.Get(p.ID).IsField() {
			return tc.lowerImplicitThis(c, id, ex)
		}
		return tc.resolveVarType(p.ID)
	case symbols.FnRef:
		tc.checkFnSymbol(sym)
		chain := tc.table.Fns.Chain(tc.fnHead(sym))
		if len(chain) == 0 {
			return types.NoTypeID
		}
		if len(chain) > 1 {
			tc.report(diag.SemaAmbiguousOverload, ex.Span, "overloaded function %q used as a value", ex.Name)
			return types.NoTypeID
		}
		fn := tc.table.Fns.Get(chain[0])
		if fn.IsMethod() {
			tc.report(diag.SemaInvalidOperands, ex.Span, "method %q used without an object", ex.Name)
			return types.NoTypeID
		}
		return tc.resolveFnSig(chain[0])
	case symbols.ExprRef:
		return tc.expandDefine(c, id, ex, sym, p)
	}
	tc.report(diag.SemaTypeMismatch, ex.Span, "%s %q used as a value", s.Kind(), ex.Name)
	return types.NoTypeID
}

func (tc *typeChecker) fnHead(sym symbols.SymbolID) symbols.FnID {
	ref, _ := symbolPayload[symbols.FnRef](tc.table.Symbols.Get(sym))
	return ref.Head
}

// checkFnSymbol settles a function identifier's overload chain once.
func (tc *typeChecker) checkFnSymbol(sym symbols.SymbolID) {
	if tc.overloads[sym] {
		return
	}
	tc.overloads[sym] = true
	head := tc.fnHead(sym)
	tc.checkOverloads(&head, sym)
}

func (tc *typeChecker) checkUnary(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	t := tc.checkExpr(c, ex.X)
	if t == types.NoTypeID {
		return t
	}
	k := tc.types.KindOf(t)
	bad := func() types.TypeID {
		tc.report(diag.SemaInvalidOperands, ex.Span, "invalid operand to unary %s: %s", ex.Op, tc.label(t))
		return types.NoTypeID
	}
	switch ex.Op {
	case ast.OpNeg, ast.OpPlus:
		if !k.IsNumeric() {
			return bad()
		}
		return t
	case ast.OpNot:
		if !tc.isScalar(t) {
			return bad()
		}
		return tc.builtins().Bool
	case ast.OpBitNot:
		if !k.IsInteger() {
			return bad()
		}
		return t
	case ast.OpDeref:
		if k != types.KindPointer {
			return bad()
		}
		elem := tc.types.Elem(t)
		if elem == tc.builtins().Void {
			tc.report(diag.SemaVoidValue, ex.Span, "dereference of void*")
			return types.NoTypeID
		}
		return elem
	case ast.OpAddrOf:
		if k == types.KindFn {
			return t
		}
		if !tc.checkLvalue(c, ex.X, false) {
			return types.NoTypeID
		}
		return tc.types.PointerTo(t)
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		if !k.IsNumeric() && k != types.KindPointer {
			return bad()
		}
		if !tc.checkLvalue(c, ex.X, true) {
			return types.NoTypeID
		}
		return t
	}
	diag.Invariant(tc.reporter, ex.Span, "unexpected unary operator %d", ex.Op)
	return types.NoTypeID
}

// checkLvalue reports whether id designates storage; write also rejects const
// variables and fields.
func (tc *typeChecker) checkLvalue(c checkCtx, id ast.ExprID, write bool) bool {
	ex := c.info.Unit.Exprs.Get(id)
	switch ex.Kind {
	case ast.ExprUnary:
		if ex.Op == ast.OpDeref {
			return true
		}
	case ast.ExprIndex:
		return true
	case ast.ExprIdent, ast.ExprMember:
		ref, ok := symbolPayload[symbols.VarRef](tc.table.Symbols.Get(c.res.ExprSymbols[id]))
		if !ok {
			break
		}
		v := tc.table.Vars.Get(ref.ID)
		if write && v.Flags&ast.VarConst != 0 {
			tc.report(diag.SemaConstAssign, ex.Span, "cannot assign to constant %q", tc.name(v.Name))
			return false
		}
		return true
	}
	tc.report(diag.SemaNotAssignable, ex.Span, "%s expression is not addressable", ex.Kind)
	return false
}

func (tc *typeChecker) checkAssign(c checkCtx, ex ast.Expr) types.TypeID {
	lt := tc.checkExpr(c, ex.X)
	if lt == types.NoTypeID || !tc.checkLvalue(c, ex.X, true) {
		tc.checkExpr(c, ex.Y)
		return lt
	}
	tc.coerce(c, ex.Y, lt, "assignment")
	return lt
}

func (tc *typeChecker) checkBinary(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	switch {
	case ex.Op == ast.OpAssign:
		return tc.checkAssign(c, ex)
	case ex.Op == ast.OpCoerceAssign:
		tc.lowerCoerceAssign(c, id, ex)
		return tc.checkExpr(c, id)
	case ex.Op == ast.OpAs:
		tc.lowerAs(c, id, ex)
		return tc.checkExpr(c, id)
	case ex.Op.IsLogical():
		tc.checkCondition(c, ex.X, "logical operand")
		tc.checkCondition(c, ex.Y, "logical operand")
		return tc.builtins().Bool
	}
	if _, ok := ex.Op.CompoundBase(); ok {
		tc.lowerCompound(c, id, ex)
		return tc.checkExpr(c, id)
	}

	lt := tc.checkExpr(c, ex.X)
	rt := tc.checkExpr(c, ex.Y)
	if lt == types.NoTypeID || rt == types.NoTypeID {
		return types.NoTypeID
	}
	void := tc.builtins().Void
	if lt == void || rt == void {
		tc.report(diag.SemaVoidValue, ex.Span, "void value used as operand of %s", ex.Op)
		return types.NoTypeID
	}
	lk, rk := tc.types.KindOf(lt), tc.types.KindOf(rt)
	bad := func() types.TypeID {
		tc.report(diag.SemaInvalidOperands, ex.Span, "invalid operands to %s: %s and %s", ex.Op, tc.label(lt), tc.label(rt))
		return types.NoTypeID
	}
	pointerLike := func(k types.Kind) bool { return k == types.KindPointer || k == types.KindFn }

	if ex.Op.IsComparison() {
		switch {
		case lk.IsNumeric() && rk.IsNumeric():
			p := tc.types.Promote(lt, rt)
			tc.coerceTo(c, ex.X, lt, p)
			tc.coerceTo(c, ex.Y, rt, p)
		case pointerLike(lk) && pointerLike(rk):
			switch {
			case lt == rt:
			case tc.coercible(c, ex.Y, rt, lt):
				tc.coerceTo(c, ex.Y, rt, lt)
			case tc.coercible(c, ex.X, lt, rt):
				tc.coerceTo(c, ex.X, lt, rt)
			default:
				return bad()
			}
		default:
			return bad()
		}
		return tc.builtins().Bool
	}

	switch {
	case (ex.Op == ast.OpAdd || ex.Op == ast.OpSub) && lk == types.KindPointer && rk.IsInteger():
		return lt
	case ex.Op == ast.OpAdd && lk.IsInteger() && rk == types.KindPointer:
		return rt
	case ex.Op == ast.OpSub && lk == types.KindPointer && lt == rt:
		return tc.builtins().Long
	case lk.IsNumeric() && rk.IsNumeric():
		if ex.Op.IsIntegral() && (lk.IsFloat() || rk.IsFloat()) {
			return bad()
		}
		p := tc.types.Promote(lt, rt)
		tc.coerceTo(c, ex.X, lt, p)
		tc.coerceTo(c, ex.Y, rt, p)
		return p
	}
	return bad()
}

func (tc *typeChecker) checkIndex(c checkCtx, ex ast.Expr) types.TypeID {
	xt := tc.checkExpr(c, ex.X)
	it := tc.checkExpr(c, ex.Y)
	if xt == types.NoTypeID || it == types.NoTypeID {
		return types.NoTypeID
	}
	tt := tc.types.MustLookup(xt)
	if tt.Kind == types.KindTuple {
		info, _ := tc.types.TupleInfo(xt)
		n, ok := tc.constInt(c, ex.Y)
		if !ok || n < 0 || n >= int64(len(info.Elems)) {
			tc.report(diag.SemaInvalidIndex, ex.Span, "tuple %s needs a constant index in range", tc.label(xt))
			return types.NoTypeID
		}
		return info.Elems[n]
	}
	if !tc.types.KindOf(it).IsInteger() {
		tc.report(diag.SemaInvalidIndex, ex.Span, "index has type %s, want an integer", tc.label(it))
		return types.NoTypeID
	}
	switch tt.Kind {
	case types.KindArray, types.KindDynArray:
		return tt.Elem
	case types.KindPointer:
		if tt.Elem != tc.builtins().Void {
			return tt.Elem
		}
	}
	tc.report(diag.SemaInvalidIndex, ex.Span, "cannot index %s", tc.label(xt))
	return types.NoTypeID
}

func (tc *typeChecker) checkCast(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	target, synthesized := c.res.CastTargets[id]
	if !synthesized {
		target = tc.resolveTypeExpr(c, ex.Type)
	}
	from := tc.checkExpr(c, ex.X)
	if from == types.NoTypeID || target == types.NoTypeID || from == target {
		return target
	}
	if from == tc.builtins().Void {
		tc.report(diag.SemaVoidValue, ex.Span, "cannot cast a void value")
		return target
	}
	if !tc.types.CastsTo(from, target) {
		tc.report(diag.SemaInvalidCast, ex.Span, "cannot cast %s to %s", tc.label(from), tc.label(target))
		return target
	}
	if tc.types.IsUserKind(target, types.UserInterface) {
		tc.convertToInterface(c, id, ex, from, target)
		return target
	}
	if !synthesized && tc.types.Truncates(from, target) {
		tc.warn(diag.SemaTruncatingCast, ex.Span, "cast from %s to %s may lose data", tc.label(from), tc.label(target))
	}
	return target
}

// convertToInterface builds (or reuses) the table of the (interface, class) pair.
func (tc *typeChecker) convertToInterface(c checkCtx, id ast.ExprID, ex ast.Expr, from, iface types.TypeID) {
	concrete := from
	if tc.types.KindOf(from) == types.KindPointer {
		concrete = tc.types.Elem(from)
	}
	cid := tc.table.UserOfType(concrete)
	iid := tc.table.UserOfType(iface)
	tc.resolveUser(cid)
	tc.resolveUser(iid)
	c.res.Conversions[id] = tc.result.VTables.ForPair(iid, cid, ex.Span)
}

func (tc *typeChecker) checkNew(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	t := tc.resolveTypeExpr(c, ex.Type)
	if t == types.NoTypeID {
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	}
	ptr := tc.types.PointerTo(t)
	info, isUser := tc.types.UserInfo(t)
	switch {
	case isUser && info.Kind == types.UserInterface:
		tc.report(diag.SemaNotCallable, ex.Span, "cannot allocate interface %s", tc.label(t))
		return types.NoTypeID
	case isUser:
		uid := symbols.UserID(info.Decl)
		tc.resolveUser(uid)
		user := tc.table.Users.Get(uid)
		if !user.Ctor.IsValid() {
			if len(ex.Args) > 0 {
				tc.report(diag.SemaMissingConstructor, ex.Span, "%s has no constructor", tc.label(t))
			}
			tc.argTypes(c, ex.Args)
			return ptr
		}
		call := callSite{id: id, name: tc.name(user.Name), span: ex.Span, recvType: ptr, args: ex.Args}
		if tc.callFns(c, call, tc.table.Fns.Chain(user.Ctor)) {
			ct := c.res.CallTargets[id]
			ct.Constructor = true
			c.res.CallTargets[id] = ct
		}
		return ptr
	}
	switch len(ex.Args) {
	case 0:
	case 1:
		tc.coerce(c, ex.Args[0], t, "initializer")
	default:
		tc.report(diag.SemaNotCallable, ex.Span, "%s takes at most one initializer", tc.label(t))
	}
	return ptr
}

func (tc *typeChecker) checkDelete(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	t := tc.checkExpr(c, ex.X)
	void := tc.builtins().Void
	if t == types.NoTypeID {
		return void
	}
	k := tc.types.KindOf(t)
	if k != types.KindPointer && k != types.KindDynArray {
		tc.report(diag.SemaDeleteNonPointer, ex.Span, "cannot delete %s", tc.label(t))
		return void
	}
	if info, ok := tc.types.UserInfo(tc.types.Elem(t)); ok && k == types.KindPointer {
		uid := symbols.UserID(info.Decl)
		tc.resolveUser(uid)
		if dtor := tc.table.Users.Get(uid).Dtor; dtor.IsValid() {
			fn := tc.table.Fns.Get(dtor)
			c.res.CallTargets[id] = CallTarget{Fn: dtor, Sig: fn.Sig, Args: []ast.ExprID{ex.X}}
		}
	}
	return void
}

func (tc *typeChecker) argTypes(c checkCtx, args []ast.ExprID) ([]types.TypeID, bool) {
	out := make([]types.TypeID, len(args))
	ok := true
	for i, a := range args {
		out[i] = tc.checkExpr(c, a)
		if out[i] == tc.builtins().Void {
			tc.report(diag.SemaVoidValue, c.info.Unit.Exprs.Get(a).Span, "void value used as argument")
			out[i] = types.NoTypeID
		}
		ok = ok && out[i] != types.NoTypeID
	}
	return out, ok
}
