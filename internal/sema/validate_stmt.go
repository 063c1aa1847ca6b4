package sema

import (
	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/symbols"
	"keel/internal/types"
)

func (tc *typeChecker) visitStmt(c checkCtx, id ast.StmtID) {
	st := c.info.Unit.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtCompound:
		inner := c.in(c.info.Scopes[id])
		for _, s := range st.Body {
			tc.visitStmt(inner, s)
		}
	case ast.StmtIf:
		tc.checkCondition(c, st.Cond, "if")
		tc.visitStmt(c, st.Then)
		tc.visitStmt(c, st.Else)
	case ast.StmtLoop:
		inner := c.in(c.info.Scopes[id])
		tc.visitStmt(inner, st.Init)
		if st.Cond.IsValid() {
			tc.checkCondition(inner, st.Cond, "loop")
		}
		tc.checkExpr(inner, st.Post)
		inner.loops++
		tc.visitStmt(inner, st.Then)
	case ast.StmtSwitch:
		t := tc.checkExpr(c, st.Cond)
		if t != types.NoTypeID && !tc.types.KindOf(t).IsInteger() && tc.types.KindOf(t) != types.KindBool {
			tc.report(diag.SemaConditionNotScalar, st.Span, "switch on %s, want an integer", tc.label(t))
			t = types.NoTypeID
		}
		inner := c
		inner.switches++
		inner.switchType = t
		tc.visitStmt(inner, st.Then)
	case ast.StmtCase:
		tc.visitCase(c, st)
	case ast.StmtLabel:
	case ast.StmtGoto:
		sym := tc.table.ResolveIdentifier(c.info.Labels[id])
		if _, ok := symbolPayload[symbols.LabelRef](tc.table.Symbols.Get(sym)); !ok {
			tc.report(diag.SemaUnresolvedSymbol, st.Span, "undefined label %q", st.Label)
		}
	case ast.StmtBreak:
		if c.loops == 0 && c.switches == 0 {
			tc.report(diag.SemaBreakOutsideLoop, st.Span, "break outside a loop or switch")
		}
	case ast.StmtContinue:
		if c.loops == 0 {
			tc.report(diag.SemaContinueOutsideLoop, st.Span, "continue outside a loop")
		}
	case ast.StmtReturn:
		tc.visitReturn(c, st)
	case ast.StmtExpr:
		tc.checkExpr(c, st.Value)
	case ast.StmtDecl:
		tc.visitItem(c, st.Decl)
	default:
		diag.Invariant(tc.reporter, st.Span, "unexpected statement kind %s", st.Kind)
	}
}

func (tc *typeChecker) visitCase(c checkCtx, st *ast.Stmt) {
	if c.switches == 0 {
		tc.report(diag.SemaCaseOutsideSwitch, st.Span, "case outside a switch")
		tc.checkExpr(c, st.Value)
		return
	}
	if !st.Value.IsValid() {
		return
	}
	if _, ok := tc.constInt(c, st.Value); !ok {
		tc.checkExpr(c, st.Value)
		tc.report(diag.SemaTypeMismatch, st.Span, "case value must be an integer constant")
		return
	}
	if c.switchType != types.NoTypeID {
		tc.coerce(c, st.Value, c.switchType, "case")
	}
}

func (tc *typeChecker) visitReturn(c checkCtx, st *ast.Stmt) {
	fn := tc.table.Fns.Get(c.fn)
	if fn == nil {
		tc.report(diag.SemaReturnMismatch, st.Span, "return outside a function")
		return
	}
	void := tc.builtins().Void
	switch {
	case fn.Result == types.NoTypeID:
		tc.checkExpr(c, st.Value)
	case fn.Result == void && st.Value.IsValid():
		if t := tc.checkExpr(c, st.Value); t != void && t != types.NoTypeID {
			tc.report(diag.SemaReturnMismatch, st.Span, "%s returns no value", tc.name(fn.Name))
		}
	case fn.Result != void && !st.Value.IsValid():
		tc.report(diag.SemaMissingReturnValue, st.Span, "%s must return %s", tc.name(fn.Name), tc.label(fn.Result))
	case st.Value.IsValid():
		tc.coerce(c, st.Value, fn.Result, "return")
	}
}
