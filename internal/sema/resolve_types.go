package sema

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/layout"
	"keel/internal/source"
	"keel/internal/symbols"
	"keel/internal/types"
)

// resolveTypeExpr maps a written type to a TypeID. Results, failures included,
// are memoised per node so each bad type is reported once.
func (tc *typeChecker) resolveTypeExpr(c checkCtx, id ast.TypeExprID) types.TypeID {
	if !id.IsValid() {
		return types.NoTypeID
	}
	key := typeExprKey{unit: c.info.Unit, id: id}
	if t, ok := tc.typeExprs[key]; ok {
		return t
	}
	t := tc.computeTypeExpr(c, id)
	tc.typeExprs[key] = t
	return t
}

func (tc *typeChecker) computeTypeExpr(c checkCtx, id ast.TypeExprID) types.TypeID {
	te := c.info.Unit.Types.Get(id)
	if te == nil {
		return types.NoTypeID
	}
	switch te.Kind {
	case ast.TypeExprName:
		return tc.resolveNamedType(c, id, te)
	case ast.TypeExprPointer:
		elem := tc.resolveTypeExpr(c, te.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return tc.types.PointerTo(elem)
	case ast.TypeExprArray:
		elem := tc.resolveTypeExpr(c, te.Elem)
		n, ok := tc.arrayLength(c, te)
		if elem == types.NoTypeID || !ok {
			return types.NoTypeID
		}
		return tc.types.ArrayOf(elem, n)
	case ast.TypeExprDynArray:
		elem := tc.resolveTypeExpr(c, te.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return tc.types.DynArrayOf(elem)
	case ast.TypeExprTuple:
		elems := make([]types.TypeID, 0, len(te.Elems))
		for _, el := range te.Elems {
			t := tc.resolveTypeExpr(c, el)
			if t == types.NoTypeID {
				return types.NoTypeID
			}
			elems = append(elems, t)
		}
		return tc.types.TupleOf(elems...)
	case ast.TypeExprFn:
		result := tc.builtins().Void
		if te.Elem.IsValid() {
			result = tc.resolveTypeExpr(c, te.Elem)
		}
		params := make([]types.TypeID, 0, len(te.Elems))
		ok := result != types.NoTypeID
		for _, el := range te.Elems {
			t := tc.resolveTypeExpr(c, el)
			ok = ok && t != types.NoTypeID
			params = append(params, t)
		}
		if !ok {
			return types.NoTypeID
		}
		return tc.types.FnOf(result, params, te.Variadic)
	}
	diag.Invariant(tc.reporter, te.Span, "unexpected type expression kind %d", te.Kind)
	return types.NoTypeID
}

func (tc *typeChecker) resolveNamedType(c checkCtx, id ast.TypeExprID, te *ast.TypeExpr) types.TypeID {
	if te.Pkg == "" {
		if t, ok := tc.types.Primitive(te.Name); ok {
			return t
		}
	}
	sym := tc.table.ResolveIdentifier(c.info.TypeNames[id])
	if te.Pkg != "" {
		pkgSym := tc.table.Symbols.Get(sym)
		pkg, ok := symbolPayload[symbols.PackageRef](pkgSym)
		if !ok {
			if sym.IsValid() {
				tc.report(diag.SemaNotAPackage, te.Span, "%q is not a package", te.Pkg)
			} else {
				tc.report(diag.SemaUnresolvedSymbol, te.Span, "unknown package %q", te.Pkg)
			}
			return types.NoTypeID
		}
		sym = tc.table.LookupLocal(pkg.Root, tc.table.Strings.Intern(te.Name))
		if !tc.table.Symbols.Get(sym).Bound() {
			tc.report(diag.SemaUnresolvedSymbol, te.Span, "unknown type %s.%s", te.Pkg, te.Name)
			return types.NoTypeID
		}
	}
	if !sym.IsValid() {
		tc.report(diag.SemaUnresolvedSymbol, te.Span, "unknown type %q", te.Name)
		return types.NoTypeID
	}
	return tc.symbolType(sym, te.Span)
}

// symbolType is the type a Type or Alias identifier denotes.
func (tc *typeChecker) symbolType(sym symbols.SymbolID, at source.Span) types.TypeID {
	s := tc.table.Symbols.Get(sym)
	switch p := s.Payload.(type) {
	case symbols.UserRef:
		return tc.table.Users.Get(p.ID).Type
	case symbols.AliasRef:
		return tc.resolveAlias(sym, p)
	}
	tc.report(diag.SemaNotAType, at, "%q is a %s, not a type", tc.name(s.Name), s.Kind())
	return types.NoTypeID
}

func (tc *typeChecker) resolveAlias(sym symbols.SymbolID, alias symbols.AliasRef) types.TypeID {
	if t, ok := tc.aliases[sym]; ok {
		return t
	}
	s := tc.table.Symbols.Get(sym)
	if tc.aliasBusy[sym] {
		tc.report(diag.SemaNotAType, s.Span, "typedef %q is defined in terms of itself", tc.name(s.Name))
		tc.aliases[sym] = types.NoTypeID
		return types.NoTypeID
	}
	tc.aliasBusy[sym] = true
	t := tc.resolveTypeExpr(tc.ctxFor(alias.Unit, alias.Scope), alias.Type)
	delete(tc.aliasBusy, sym)
	tc.aliases[sym] = t
	return t
}

func (tc *typeChecker) arrayLength(c checkCtx, te *ast.TypeExpr) (uint32, bool) {
	v, ok := tc.constInt(c, te.Len)
	if !ok {
		tc.report(diag.SemaTypeMismatch, te.Span, "array length must be an integer constant")
		return 0, false
	}
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		tc.report(diag.SemaTypeMismatch, te.Span, "invalid array length %d: %v", v, err)
		return 0, false
	}
	return n, true
}

// resolveUser completes a user type: base, field types, then member signatures.
// Inheritance cycles are cut at the declaration that closes them.
func (tc *typeChecker) resolveUser(uid symbols.UserID) {
	switch tc.userState[uid] {
	case stateDone, stateVisiting:
		return
	}
	tc.userState[uid] = stateVisiting
	user := tc.table.Users.Get(uid)
	c := tc.ctxFor(user.Unit, user.Members)

	baseType := types.NoTypeID
	base := symbols.NoUserID
	if user.BaseExpr.IsValid() {
		base, baseType = tc.resolveBase(c, uid)
	}
	fields := make([]types.Field, 0, len(user.Fields))
	for _, f := range user.Fields {
		v := tc.table.Vars.Get(f)
		t := tc.resolveVarType(f)
		if t == types.NoTypeID {
			continue
		}
		fields = append(fields, types.Field{Name: tc.name(v.Name), Type: t})
	}
	tc.types.SetUserBody(user.Type, baseType, fields)
	user = tc.table.Users.Get(uid)
	user.Base = base
	user.Resolved = true
	tc.userState[uid] = stateDone

	if user.Kind == types.UserInterface && len(user.Fields) > 0 {
		tc.report(diag.SemaInvalidBase, user.Span, "interface %s cannot declare fields", tc.name(user.Name))
	}
	for _, m := range user.Methods {
		tc.resolveFnSig(m)
	}
	for _, m := range user.Methods {
		if sym := tc.table.Fns.Get(m).Symbol; sym.IsValid() {
			tc.checkFnSymbol(sym)
		}
	}
	user.Methods = tc.liveMethods(user.Methods)
	for _, ctor := range tc.table.Fns.Chain(user.Ctor) {
		tc.resolveFnSig(ctor)
	}
	if user.Dtor.IsValid() {
		tc.resolveFnSig(user.Dtor)
	}
	tc.checkOverloads(&user.Ctor, symbols.NoSymbolID)
}

func (tc *typeChecker) resolveBase(c checkCtx, uid symbols.UserID) (symbols.UserID, types.TypeID) {
	user := tc.table.Users.Get(uid)
	span := c.info.Unit.Types.Get(user.BaseExpr).Span
	bt := tc.resolveTypeExpr(c, user.BaseExpr)
	if bt == types.NoTypeID {
		return symbols.NoUserID, types.NoTypeID
	}
	info, ok := tc.types.UserInfo(bt)
	if !ok || !baseAllowed(user.Kind, info.Kind) {
		tc.report(diag.SemaInvalidBase, span, "%s %s cannot derive from %s",
			user.Kind, tc.name(user.Name), tc.label(bt))
		return symbols.NoUserID, types.NoTypeID
	}
	bid := symbols.UserID(info.Decl)
	if bid == uid || tc.userState[bid] == stateVisiting {
		tc.report(diag.SemaCyclicInheritance, span, "inheritance cycle through %s", tc.name(user.Name))
		return symbols.NoUserID, types.NoTypeID
	}
	tc.resolveUser(bid)
	if tc.types.DerivesFrom(bt, user.Type) {
		tc.report(diag.SemaCyclicInheritance, span, "inheritance cycle through %s", tc.name(user.Name))
		return symbols.NoUserID, types.NoTypeID
	}
	return bid, bt
}

// baseAllowed: classes extend structs or classes, structs extend structs,
// interfaces extend interfaces, unions have no base. A struct has no header to
// keep a class base's fields at their offsets.
func baseAllowed(derived, base types.UserKind) bool {
	switch derived {
	case types.UserClass:
		return base == types.UserStruct || base == types.UserClass
	case types.UserStruct:
		return base == types.UserStruct
	case types.UserInterface:
		return base == types.UserInterface
	}
	return false
}

// resolveVarType settles the declared type of a variable, field or parameter.
// Untyped locals take their initializer's type when they are checked.
func (tc *typeChecker) resolveVarType(id symbols.VarID) types.TypeID {
	v := tc.table.Vars.Get(id)
	switch tc.varState[id] {
	case stateDone:
		return v.Type
	case stateVisiting:
		tc.report(diag.SemaTypeMismatch, v.Span, "type of %q depends on itself", tc.name(v.Name))
		return types.NoTypeID
	}
	tc.varState[id] = stateVisiting
	c := tc.ctxFor(v.Unit, v.Scope)
	var te ast.TypeExprID
	if v.Param {
		te = tc.paramTypeExpr(id)
	} else if it := v.Unit.Items.Get(v.Item); it != nil {
		te = it.Type
	}
	t := types.NoTypeID
	switch {
	case te.IsValid():
		t = tc.resolveTypeExpr(c, te)
	case v.Param && v.Owner.IsValid():
		t = tc.receiverType(v.Owner)
	case v.Init.IsValid():
		// inferred from the initializer
		t = tc.checkExpr(c, v.Init)
	default:
		tc.report(diag.SemaTypeMismatch, v.Span, "%q has neither a type nor an initializer", tc.name(v.Name))
	}
	if t == tc.builtins().Void {
		tc.report(diag.SemaVoidValue, v.Span, "%q cannot have type void", tc.name(v.Name))
		t = types.NoTypeID
	}
	v = tc.table.Vars.Get(id)
	v.Type = t
	tc.varState[id] = stateDone
	return t
}

// paramTypeExpr finds the written type of a parameter through its function item.
func (tc *typeChecker) paramTypeExpr(id symbols.VarID) ast.TypeExprID {
	v := tc.table.Vars.Get(id)
	sc := tc.table.Scopes.Get(v.Scope)
	if sc == nil {
		return ast.NoTypeExprID
	}
	it := v.Unit.Items.Get(sc.Owner.Item)
	if it == nil {
		return ast.NoTypeExprID
	}
	fn := tc.table.Fns.Get(tc.fnOfItem(v.Unit, sc.Owner.Item))
	if fn == nil {
		return ast.NoTypeExprID
	}
	idx := -1
	for i, p := range fn.Params {
		if p == id {
			idx = i
		}
	}
	if fn.IsMethod() {
		idx--
	}
	if idx < 0 || idx >= len(it.Params) {
		return ast.NoTypeExprID
	}
	return it.Params[idx].Type
}

func (tc *typeChecker) fnOfItem(u *ast.Unit, item ast.ItemID) symbols.FnID {
	if info := tc.ctxFor(u, symbols.NoScopeID).info; info.Fns != nil {
		return info.Fns[item]
	}
	return symbols.NoFnID
}

// receiverType is the type of `this`: a pointer to the owner, or the interface
// value itself for interface methods.
func (tc *typeChecker) receiverType(owner symbols.UserID) types.TypeID {
	user := tc.table.Users.Get(owner)
	if user.Kind == types.UserInterface {
		return user.Type
	}
	return tc.types.PointerTo(user.Type)
}

// resolveFnSig settles parameter and result types and interns the signature.
func (tc *typeChecker) resolveFnSig(id symbols.FnID) types.TypeID {
	fn := tc.table.Fns.Get(id)
	switch tc.fnState[id] {
	case stateDone, stateVisiting:
		return fn.Sig
	}
	tc.fnState[id] = stateVisiting
	if fn.Owner.IsValid() {
		tc.resolveUser(fn.Owner)
	}
	it := fn.Unit.Items.Get(fn.Item)
	c := tc.ctxFor(fn.Unit, fn.Scope)

	result := tc.builtins().Void
	if it.Result.IsValid() {
		result = tc.resolveTypeExpr(c, it.Result)
	}
	if fn.IsConstructor() || fn.IsDestructor() {
		if it.Result.IsValid() && result != tc.builtins().Void {
			tc.report(diag.SemaTypeMismatch, it.Span, "constructors and destructors do not return a value")
		}
		result = tc.builtins().Void
	}
	recv := types.NoTypeID
	params := make([]types.TypeID, 0, len(fn.Params))
	for i, p := range fn.Params {
		t := tc.resolveVarType(p)
		if i == 0 && fn.IsMethod() {
			recv = t
			continue
		}
		params = append(params, t)
	}
	fn = tc.table.Fns.Get(id)
	fn.Result = result
	fn.Sig = tc.types.MethodOf(recv, result, params, fn.Variadic)
	tc.fnState[id] = stateDone
	return fn.Sig
}

// checkOverloads reports exact duplicates in an overload chain. A prototype
// followed by its definition is merged: the prototype leaves the chain and
// points at the definition.
func (tc *typeChecker) checkOverloads(head *symbols.FnID, sym symbols.SymbolID) {
	chain := tc.table.Fns.Chain(*head)
	for _, id := range chain {
		tc.resolveFnSig(id)
	}
	for i := 0; i < len(chain); i++ {
		a := tc.table.Fns.Get(chain[i])
		for j := i + 1; j < len(chain); j++ {
			b := tc.table.Fns.Get(chain[j])
			if a.Sig != b.Sig || a.Sig == types.NoTypeID {
				continue
			}
			switch {
			case !a.HasBody() && b.HasBody(), !a.HasBody() && !b.HasBody():
				tc.mergePrototype(head, chain[i], chain[j])
			case a.HasBody() && !b.HasBody():
				tc.mergePrototype(head, chain[j], chain[i])
			default:
				diag.ReportError(tc.reporter, diag.SemaDuplicateOverload, b.Span,
					fmt.Sprintf("%q is already defined with signature %s", tc.name(b.Name), tc.label(b.Sig))).
					WithNote(a.Span, "previous definition is here").
					Emit()
				tc.table.RemoveOverload(head, chain[j])
			}
			tc.checkOverloads(head, sym)
			if sym.IsValid() {
				tc.table.SetOverloadHead(sym, *head)
			}
			return
		}
	}
}

// liveMethods drops methods that left their overload chain as duplicates or
// completed prototypes.
func (tc *typeChecker) liveMethods(methods []symbols.FnID) []symbols.FnID {
	out := methods[:0]
	for _, m := range methods {
		sym := tc.table.Fns.Get(m).Symbol
		for _, live := range tc.table.Fns.Chain(tc.fnHead(sym)) {
			if live == m {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func (tc *typeChecker) mergePrototype(head *symbols.FnID, proto, def symbols.FnID) {
	tc.table.RemoveOverload(head, proto)
	tc.table.Fns.Get(proto).Definition = def
}

// completeType resolves every user type t contains by value, so its layout can
// be computed.
func (tc *typeChecker) completeType(t types.TypeID, seen map[types.TypeID]bool) {
	if t == types.NoTypeID || seen[t] {
		return
	}
	seen[t] = true
	tt, ok := tc.types.Lookup(t)
	if !ok {
		return
	}
	switch tt.Kind {
	case types.KindArray:
		tc.completeType(tt.Elem, seen)
	case types.KindTuple:
		if info, ok := tc.types.TupleInfo(t); ok {
			for _, el := range info.Elems {
				tc.completeType(el, seen)
			}
		}
	case types.KindUser:
		info, _ := tc.types.UserInfo(t)
		tc.resolveUser(symbols.UserID(info.Decl))
		info, _ = tc.types.UserInfo(t)
		tc.completeType(info.Base, seen)
		for _, f := range info.Fields {
			tc.completeType(f.Type, seen)
		}
	}
}

// layoutOf computes the layout of t, reporting infinite value types.
func (tc *typeChecker) layoutOf(t types.TypeID, at source.Span) (layout.TypeLayout, bool) {
	tc.completeType(t, make(map[types.TypeID]bool))
	l, err := tc.result.Layout.LayoutOf(t)
	if err == nil {
		return l, true
	}
	var le *layout.LayoutError
	if errors.As(err, &le) {
		switch le.Kind {
		case layout.LayoutErrRecursiveUnsized:
			tc.report(diag.SemaRecursiveUnsized, at, "%s contains itself by value", tc.label(t))
			return layout.TypeLayout{}, false
		case layout.LayoutErrInvalid:
			return layout.TypeLayout{}, false
		}
	}
	diag.Invariant(tc.reporter, at, "layout of %s: %v", tc.label(t), err)
	return layout.TypeLayout{}, false
}

func (tc *typeChecker) builtins() types.Builtins { return tc.types.Builtins() }

// symbolPayload extracts a typed payload from a bound identifier.
func symbolPayload[P symbols.Payload](s *symbols.Symbol) (P, bool) {
	var zero P
	if !s.Bound() {
		return zero, false
	}
	p, ok := s.Payload.(P)
	return p, ok
}

// payload is the declaration behind an identifier, nil when unbound or absent.
func (tc *typeChecker) payload(sym symbols.SymbolID) symbols.Payload {
	if s := tc.table.Symbols.Get(sym); s != nil {
		return s.Payload
	}
	return nil
}
