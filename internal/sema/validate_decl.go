package sema

import (
	"strconv"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/symbols"
	"keel/internal/trace"
	"keel/internal/types"
)

func (tc *typeChecker) visitItem(c checkCtx, id ast.ItemID) {
	key := visitKey{unit: c.info.Unit, item: id}
	if tc.visited[key] {
		return
	}
	tc.visited[key] = true
	it := c.info.Unit.Items.Get(id)
	if it == nil {
		return
	}
	switch it.Kind {
	case ast.ItemVar:
		tc.visitVar(c, id, it)
	case ast.ItemFn:
		tc.visitFn(c, id)
	case ast.ItemType:
		tc.visitUser(c, c.info.Users[id])
	case ast.ItemDefine:
		if _, ok := c.info.Items[id]; ok {
			tc.checkExpr(c, it.Init)
		}
	case ast.ItemTypedef:
		sym := c.info.Items[id]
		if ref, ok := symbolPayload[symbols.AliasRef](tc.table.Symbols.Get(sym)); ok {
			tc.resolveAlias(sym, ref)
		}
	case ast.ItemImport:
		// linked by the driver before checking
	}
}

func (tc *typeChecker) visitVar(c checkCtx, id ast.ItemID, it *ast.Item) {
	vid, ok := c.info.Vars[id]
	if !ok {
		return
	}
	t := tc.resolveVarType(vid)
	v := tc.table.Vars.Get(vid)
	switch {
	case v.IsField() && it.Init.IsValid():
		tc.report(diag.SemaTypeMismatch, it.Span, "field %q cannot have an initializer", it.Name)
	case it.VarFlags&ast.VarExternal != 0 && it.Init.IsValid():
		tc.report(diag.SemaTypeMismatch, it.Span, "external variable %q cannot have an initializer", it.Name)
	case it.VarFlags&ast.VarConst != 0 && !it.Init.IsValid() && it.VarFlags&ast.VarExternal == 0:
		tc.report(diag.SemaConstAssign, it.Span, "constant %q needs an initializer", it.Name)
	case it.Init.IsValid() && it.Type.IsValid():
		tc.coerce(c, it.Init, t, "initializer")
	}
}

func (tc *typeChecker) visitFn(c checkCtx, id ast.ItemID) {
	fid, ok := c.info.Fns[id]
	if !ok {
		return
	}
	tc.resolveFnSig(fid)
	fn := tc.table.Fns.Get(fid)
	if sym := fn.Symbol; sym.IsValid() {
		tc.checkFnSymbol(sym)
	}
	it := c.info.Unit.Items.Get(id)
	if fn.Flags&ast.FnVirtual != 0 && (!fn.Owner.IsValid() || tc.table.Users.Get(fn.Owner).Kind != types.UserClass) {
		tc.warn(diag.SemaOverride, it.Span, "virtual has no effect outside a class")
	}
	// defaults were written in the scope enclosing the function
	outer := c
	for _, p := range fn.Params {
		v := tc.table.Vars.Get(p)
		if v.Init.IsValid() {
			tc.coerce(outer, v.Init, v.Type, "default argument")
		}
	}
	tc.checkDefaultOrder(fid)
	if !fn.HasBody() {
		return
	}
	body := c
	body.scope = fn.Scope
	body.fn = fid
	body.loops, body.switches = 0, 0
	body.switchType = types.NoTypeID
	tc.visitStmt(body, fn.Body)
}

// checkDefaultOrder rejects a parameter without a default after one with it.
func (tc *typeChecker) checkDefaultOrder(fid symbols.FnID) {
	fn := tc.table.Fns.Get(fid)
	seen := false
	for _, p := range fn.Params {
		v := tc.table.Vars.Get(p)
		switch {
		case v.Init.IsValid():
			seen = true
		case seen:
			tc.report(diag.SemaMissingDefault, v.Span, "parameter %q follows a parameter with a default value", tc.name(v.Name))
			return
		}
	}
}

// visitUser completes a type declaration: body, layout, dispatch table, then
// members.
func (tc *typeChecker) visitUser(c checkCtx, uid symbols.UserID) {
	user := tc.table.Users.Get(uid)
	if user == nil {
		return
	}
	tc.resolveUser(uid)
	if user.Kind != types.UserInterface {
		tc.layoutOf(user.Type, user.Span)
	}
	switch user.Kind {
	case types.UserClass:
		span := trace.Begin(tc.tracer, trace.ScopeNode, "vtable", tc.parentSpan).WithExtra("type", tc.name(user.Name))
		slots := tc.result.VTables.Class(uid)
		tc.checkOverrides(uid)
		span.End(plural(len(slots), "slot"))
	case types.UserInterface:
		tc.result.VTables.Interface(uid)
	}
	inner := c.in(user.Members)
	it := user.Unit.Items.Get(user.Item)
	for _, m := range it.Members {
		tc.visitItem(inner, m)
	}
}

// checkOverrides warns about methods that reuse an inherited name without
// matching its slot.
func (tc *typeChecker) checkOverrides(uid symbols.UserID) {
	user := tc.table.Users.Get(uid)
	if !user.Base.IsValid() {
		return
	}
	inherited := tc.table.Users.Get(user.Base).VTable
	for _, m := range user.Methods {
		fn := tc.table.Fns.Get(m)
		if !fn.IsMethod() {
			continue
		}
		for _, slot := range inherited {
			base := tc.table.Fns.Get(slot)
			if base.Name == fn.Name && fn.VIndex >= len(inherited) {
				tc.warn(diag.SemaOverride, fn.Span, "%q hides an inherited method with an incompatible signature", tc.name(fn.Name))
				break
			}
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
