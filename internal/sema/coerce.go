package sema

import (
	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/types"
)

// coerce checks id and converts it to type to, inserting an ExprCoerce node when
// the types differ. what names the site in diagnostics.
func (tc *typeChecker) coerce(c checkCtx, id ast.ExprID, to types.TypeID, what string) bool {
	from := tc.checkExpr(c, id)
	if from == types.NoTypeID || to == types.NoTypeID {
		return false
	}
	if from == to {
		return true
	}
	span := c.info.Unit.Exprs.Get(id).Span
	if from == tc.builtins().Void {
		tc.report(diag.SemaVoidValue, span, "void value used as %s", what)
		return false
	}
	if !tc.coercible(c, id, from, to) {
		tc.report(diag.SemaTypeMismatch, span, "cannot use %s as %s in %s", tc.label(from), tc.label(to), what)
		return false
	}
	tc.coerceTo(c, id, from, to)
	return true
}

// coercible extends CoercesTo with the null literal, which also converts to
// function values.
func (tc *typeChecker) coercible(c checkCtx, id ast.ExprID, from, to types.TypeID) bool {
	if tc.types.CoercesTo(from, to) {
		return true
	}
	ex := c.info.Unit.Exprs.Get(id)
	return ex.Kind == ast.ExprNullLit && tc.types.KindOf(to) == types.KindFn
}

// coerceTo wraps id in an ExprCoerce to type to without checking legality.
func (tc *typeChecker) coerceTo(c checkCtx, id ast.ExprID, from, to types.TypeID) {
	if from == to {
		return
	}
	moved := tc.moveNode(c, id)
	c.res.ExprTypes[moved] = from
	c.info.Unit.Exprs.Replace(id, ast.Expr{Kind: ast.ExprCoerce, X: moved})
	c.res.ExprTypes[id] = to
	c.res.Coercions[id] = to
}

// isScalar: conditions accept numbers, pointers and function values.
func (tc *typeChecker) isScalar(t types.TypeID) bool {
	k := tc.types.KindOf(t)
	return k.IsNumeric() || k == types.KindPointer || k == types.KindFn
}

func (tc *typeChecker) checkCondition(c checkCtx, id ast.ExprID, what string) {
	t := tc.checkExpr(c, id)
	if t == types.NoTypeID {
		return
	}
	if !tc.isScalar(t) {
		tc.report(diag.SemaConditionNotScalar, c.info.Unit.Exprs.Get(id).Span,
			"%s condition has type %s, want a number or pointer", what, tc.label(t))
	}
}
