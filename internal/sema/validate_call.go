package sema

import (
	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/symbols"
	"keel/internal/types"
)

// callSite describes a call being bound. recv is the receiver expression of a
// method or constructor-call; recvType without recv stands for a receiver that
// has no node of its own (the allocation of new).
type callSite struct {
	id       ast.ExprID
	name     string
	span     source.Span
	recv     ast.ExprID
	recvType types.TypeID
	args     []ast.ExprID
}

func (tc *typeChecker) checkCall(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	callee := *c.info.Unit.Exprs.Get(ex.X)
	switch callee.Kind {
	case ast.ExprMember:
		return tc.checkMemberCall(c, id, ex, callee)
	case ast.ExprTypeExpr:
		return tc.callType(c, id, ex, tc.resolveTypeExpr(c, callee.Type))
	case ast.ExprIdent:
		sym := tc.table.ResolveIdentifier(c.info.Idents[ex.X])
		if !sym.IsValid() {
			break
		}
		c.res.ExprSymbols[ex.X] = sym
		switch tc.payload(sym).(type) {
		case symbols.FnRef:
			return tc.callNamed(c, id, ex, sym, ast.NoExprID)
		case symbols.UserRef, symbols.AliasRef:
			return tc.callType(c, id, ex, tc.symbolType(sym, callee.Span))
		}
	}
	return tc.callValue(c, id, ex)
}

// callValue calls through a function-valued expression.
func (tc *typeChecker) callValue(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	ft := tc.checkExpr(c, ex.X)
	if ft == types.NoTypeID {
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	}
	cand, ok := tc.sigCandidate(ft)
	if !ok {
		tc.report(diag.SemaNotCallable, ex.Span, "%s is not callable", tc.label(ft))
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	}
	argTypes, ok := tc.argTypes(c, ex.Args)
	if !ok {
		return types.NoTypeID
	}
	if _, _, ok := tc.resolveOverloadList(tc.label(ft), ex.Span, argTypes, []candidate{cand}); !ok {
		return types.NoTypeID
	}
	args := tc.bindArgs(c, cand, ex.Args, 0)
	c.info.Unit.Exprs.Get(id).Args = args
	c.res.CallTargets[id] = CallTarget{Callee: ex.X, Sig: ft, Args: args}
	return cand.result
}

// callNamed calls a function identifier. A bare method name inside a method is
// called on this.
func (tc *typeChecker) callNamed(c checkCtx, id ast.ExprID, ex ast.Expr, sym symbols.SymbolID, recv ast.ExprID) types.TypeID {
	tc.checkFnSymbol(sym)
	chain := tc.table.Fns.Chain(tc.fnHead(sym))
	if len(chain) == 0 {
		return types.NoTypeID
	}
	name := tc.table.Name(sym)
	if !recv.IsValid() && tc.table.Fns.Get(chain[0]).IsMethod() {
		recv = tc.thisExpr(c, ex.Span)
		if !recv.IsValid() {
			tc.report(diag.SemaInvalidOperands, ex.Span, "method %q called without an object", name)
			tc.argTypes(c, ex.Args)
			return types.NoTypeID
		}
	}
	call := callSite{id: id, name: name, span: ex.Span, recv: recv, args: ex.Args}
	if !tc.callFns(c, call, chain) {
		return types.NoTypeID
	}
	return tc.table.Fns.Get(c.res.CallTargets[id].Fn).Result
}

// thisExpr synthesizes a use of the enclosing method's receiver.
func (tc *typeChecker) thisExpr(c checkCtx, at source.Span) ast.ExprID {
	sym := tc.table.Lookup(c.scope, tc.table.Strings.Intern("this"), false)
	if _, ok := symbolPayload[symbols.VarRef](tc.table.Symbols.Get(sym)); !ok {
		return ast.NoExprID
	}
	id := c.info.Unit.Exprs.New(ast.Expr{Kind: ast.ExprIdent, Span: at, Name: "this"})
	c.info.Idents[id] = sym
	return id
}

// callFns resolves a call over an overload chain and records the target.
func (tc *typeChecker) callFns(c checkCtx, call callSite, chain []symbols.FnID) bool {
	argTypes, ok := tc.argTypes(c, call.args)
	recvType := call.recvType
	recv := call.recv
	if recv.IsValid() {
		recv, recvType = tc.receiverArg(c, recv)
		ok = ok && recvType != types.NoTypeID
	}
	if !ok {
		return false
	}
	if recvType != types.NoTypeID {
		argTypes = append([]types.TypeID{recvType}, argTypes...)
	}
	cands := make([]candidate, 0, len(chain))
	for _, fn := range chain {
		cands = append(cands, tc.fnCandidate(fn))
	}
	best, _, ok := tc.resolveOverloadList(call.name, call.span, argTypes, cands)
	if !ok {
		return false
	}

	all := call.args
	skip := 0
	if recv.IsValid() {
		all = append([]ast.ExprID{recv}, call.args...)
	} else if recvType != types.NoTypeID {
		skip = 1
	}
	bound := tc.bindArgs(c, best, all, skip)
	fnID := best.fn
	fn := tc.table.Fns.Get(fnID)
	target := CallTarget{Fn: fnID, Sig: fn.Sig, Args: bound}
	if fn.IsMethod() {
		owner := tc.table.Users.Get(fn.Owner)
		switch owner.Kind {
		case types.UserClass:
			tc.result.VTables.Class(fn.Owner)
			target.Virtual = tc.table.Fns.Get(fnID).VIndex >= 0
		case types.UserInterface:
			tc.result.VTables.Interface(fn.Owner)
			target.Interface = true
		}
	}
	c.res.CallTargets[call.id] = target
	if recv.IsValid() {
		bound = bound[1:]
	}
	c.info.Unit.Exprs.Get(call.id).Args = bound
	return true
}

// receiverArg takes the address of a by-value object receiver. Interface values
// are passed as they are.
func (tc *typeChecker) receiverArg(c checkCtx, recv ast.ExprID) (ast.ExprID, types.TypeID) {
	t := tc.checkExpr(c, recv)
	info, ok := tc.types.UserInfo(t)
	if !ok || info.Kind == types.UserInterface {
		return recv, t
	}
	ptr := tc.types.PointerTo(t)
	addr := c.info.Unit.Exprs.New(ast.Expr{Kind: ast.ExprUnary, Op: ast.OpAddrOf, X: recv, Span: c.info.Unit.Exprs.Get(recv).Span})
	c.res.ExprTypes[addr] = ptr
	return addr, ptr
}

// callType handles T(args): a constructor call on a fresh stack slot for object
// types, a conversion for everything else.
func (tc *typeChecker) callType(c checkCtx, id ast.ExprID, ex ast.Expr, t types.TypeID) types.TypeID {
	if t == types.NoTypeID {
		tc.argTypes(c, ex.Args)
		return t
	}
	info, isUser := tc.types.UserInfo(t)
	switch {
	case isUser && info.Kind == types.UserInterface:
		tc.report(diag.SemaNotCallable, ex.Span, "cannot construct interface %s", tc.label(t))
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	case isUser:
		tc.lowerConstructorCall(c, id, ex, t, symbols.UserID(info.Decl))
		return t
	case len(ex.Args) != 1:
		tc.report(diag.SemaNotCallable, ex.Span, "conversion to %s takes exactly one argument", tc.label(t))
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	}
	tc.lowerConversion(c, id, ex, t)
	return tc.checkExpr(c, id)
}

func (tc *typeChecker) checkMemberCall(c checkCtx, id ast.ExprID, ex ast.Expr, callee ast.Expr) types.TypeID {
	if root, ok := tc.packageOf(c, callee.X); ok {
		if !tc.lowerQualified(c, ex.X, callee, root) {
			tc.argTypes(c, ex.Args)
			return types.NoTypeID
		}
		return tc.checkCall(c, id, *c.info.Unit.Exprs.Get(id))
	}
	if t, ok := tc.typeOperand(c, callee.X); ok {
		return tc.callStatic(c, id, ex, callee, t)
	}

	xt := tc.checkExpr(c, callee.X)
	if xt == types.NoTypeID {
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	}
	base := xt
	if tc.types.KindOf(base) == types.KindPointer {
		base = tc.types.Elem(base)
	}
	if info, ok := tc.types.UserInfo(base); ok {
		uid := symbols.UserID(info.Decl)
		sym := tc.findMember(uid, callee.Name)
		switch tc.payload(sym).(type) {
		case symbols.FnRef:
			c.res.ExprSymbols[ex.X] = sym
			return tc.callNamed(c, id, ex, sym, callee.X)
		case symbols.VarRef:
			return tc.callValue(c, id, ex)
		}
	}
	if sym, ok := tc.ufcsCandidate(c, callee.Name, xt); ok {
		tc.lowerUFCS(c, id, callee, sym, ex.Args)
		return tc.checkExpr(c, id)
	}
	tc.report(diag.SemaUnknownMember, callee.Span, "%s has no member %q", tc.label(xt), callee.Name)
	tc.argTypes(c, ex.Args)
	return types.NoTypeID
}

// callStatic calls T.f(args) where f is a static method of T.
func (tc *typeChecker) callStatic(c checkCtx, id ast.ExprID, ex ast.Expr, callee ast.Expr, t types.TypeID) types.TypeID {
	info, ok := tc.types.UserInfo(t)
	sym := symbols.NoSymbolID
	if ok {
		sym = tc.findMember(symbols.UserID(info.Decl), callee.Name)
	}
	if _, isFn := symbolPayload[symbols.FnRef](tc.table.Symbols.Get(sym)); !isFn {
		tc.report(diag.SemaUnknownMember, callee.Span, "%s has no static method %q", tc.label(t), callee.Name)
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	}
	tc.checkFnSymbol(sym)
	if fn := tc.table.Fns.Get(tc.fnHead(sym)); fn != nil && fn.IsMethod() {
		tc.report(diag.SemaInvalidOperands, callee.Span, "method %s.%s needs an object", tc.label(t), callee.Name)
		tc.argTypes(c, ex.Args)
		return types.NoTypeID
	}
	c.res.ExprSymbols[ex.X] = sym
	return tc.callNamed(c, id, ex, sym, ast.NoExprID)
}

// findMember looks name up in the member scopes of uid and its bases.
func (tc *typeChecker) findMember(uid symbols.UserID, name string) symbols.SymbolID {
	key := tc.table.Strings.Intern(name)
	seen := make(map[symbols.UserID]bool)
	for cur := uid; cur.IsValid() && !seen[cur]; {
		seen[cur] = true
		tc.resolveUser(cur)
		user := tc.table.Users.Get(cur)
		if sym := tc.table.LookupLocal(user.Members, key); tc.table.Symbols.Get(sym).Bound() {
			return sym
		}
		cur = user.Base
	}
	return symbols.NoSymbolID
}

// ufcsCandidate finds a visible free function name whose overloads accept recv
// as their first parameter.
func (tc *typeChecker) ufcsCandidate(c checkCtx, name string, recv types.TypeID) (symbols.SymbolID, bool) {
	sym := tc.table.Lookup(c.scope, tc.table.Strings.Intern(name), true)
	if _, ok := symbolPayload[symbols.FnRef](tc.table.Symbols.Get(sym)); !ok {
		return symbols.NoSymbolID, false
	}
	tc.checkFnSymbol(sym)
	for _, fn := range tc.table.Fns.Chain(tc.fnHead(sym)) {
		cand := tc.fnCandidate(fn)
		if tc.table.Fns.Get(fn).IsMethod() || len(cand.params) == 0 {
			continue
		}
		if cand.params[0] == recv || tc.types.CoercesTo(recv, cand.params[0]) {
			return sym, true
		}
	}
	return symbols.NoSymbolID, false
}

// packageOf reports whether id names an imported package.
func (tc *typeChecker) packageOf(c checkCtx, id ast.ExprID) (symbols.ScopeID, bool) {
	ex := c.info.Unit.Exprs.Get(id)
	if ex == nil || ex.Kind != ast.ExprIdent {
		return symbols.NoScopeID, false
	}
	sym := tc.table.ResolveIdentifier(c.info.Idents[id])
	pkg, ok := symbolPayload[symbols.PackageRef](tc.table.Symbols.Get(sym))
	if !ok {
		return symbols.NoScopeID, false
	}
	c.res.ExprSymbols[id] = sym
	return pkg.Root, true
}

// typeOperand reports whether id denotes a type rather than a value. It reports
// nothing for values.
func (tc *typeChecker) typeOperand(c checkCtx, id ast.ExprID) (types.TypeID, bool) {
	ex := c.info.Unit.Exprs.Get(id)
	if ex == nil {
		return types.NoTypeID, false
	}
	switch ex.Kind {
	case ast.ExprTypeExpr:
		t := tc.resolveTypeExpr(c, ex.Type)
		return t, t != types.NoTypeID
	case ast.ExprIdent:
		if t, ok := tc.types.Primitive(ex.Name); ok {
			return t, true
		}
		sym := tc.table.ResolveIdentifier(c.info.Idents[id])
		switch tc.payload(sym).(type) {
		case symbols.UserRef, symbols.AliasRef:
			t := tc.symbolType(sym, ex.Span)
			return t, t != types.NoTypeID
		}
	case ast.ExprMember:
		root, ok := tc.packageOf(c, ex.X)
		if !ok {
			return types.NoTypeID, false
		}
		sym := tc.table.LookupLocal(root, tc.table.Strings.Intern(ex.Name))
		switch tc.payload(sym).(type) {
		case symbols.UserRef, symbols.AliasRef:
			t := tc.symbolType(sym, ex.Span)
			return t, t != types.NoTypeID
		}
	}
	return types.NoTypeID, false
}

func (tc *typeChecker) checkMember(c checkCtx, id ast.ExprID, ex ast.Expr) types.TypeID {
	if ex.Name == "sizeof" {
		t, ok := tc.typeOperand(c, ex.X)
		if !ok {
			t = tc.checkExpr(c, ex.X)
		}
		return tc.lowerSizeof(c, id, ex, t)
	}
	if root, ok := tc.packageOf(c, ex.X); ok {
		if !tc.lowerQualified(c, id, ex, root) {
			return types.NoTypeID
		}
		return tc.checkExpr(c, id)
	}
	if t, ok := tc.typeOperand(c, ex.X); ok {
		tc.report(diag.SemaUnknownMember, ex.Span, "%s.%s needs an object", tc.label(t), ex.Name)
		return types.NoTypeID
	}
	xt := tc.checkExpr(c, ex.X)
	if xt == types.NoTypeID {
		return xt
	}
	base := xt
	if tc.types.KindOf(base) == types.KindPointer {
		base = tc.types.Elem(base)
	}
	if info, ok := tc.types.UserInfo(base); ok {
		sym := tc.findMember(symbols.UserID(info.Decl), ex.Name)
		if ref, ok := symbolPayload[symbols.VarRef](tc.table.Symbols.Get(sym)); ok {
			c.res.ExprSymbols[id] = sym
			return tc.resolveVarType(ref.ID)
		}
		if _, ok := symbolPayload[symbols.FnRef](tc.table.Symbols.Get(sym)); ok {
			tc.report(diag.SemaInvalidOperands, ex.Span, "method %q must be called", ex.Name)
			return types.NoTypeID
		}
	}
	if sym, ok := tc.ufcsCandidate(c, ex.Name, xt); ok {
		tc.lowerUFCS(c, id, ex, sym, nil)
		return tc.checkExpr(c, id)
	}
	tc.report(diag.SemaUnknownMember, ex.Span, "%s has no member %q", tc.label(xt), ex.Name)
	return types.NoTypeID
}
