package sema

import (
	"keel/internal/ast"
	"keel/internal/symbols"
)

// constInt folds an integer constant expression: literals, defines, const
// variables with constant initializers, sizeof, and arithmetic over them. It
// never rewrites the tree.
func (tc *typeChecker) constInt(c checkCtx, id ast.ExprID) (int64, bool) {
	ex := c.info.Unit.Exprs.Get(id)
	if ex == nil {
		return 0, false
	}
	switch ex.Kind {
	case ast.ExprIntLit, ast.ExprCharLit, ast.ExprBoolLit:
		return ex.Int, true
	case ast.ExprCoerce:
		return tc.constInt(c, ex.X)
	case ast.ExprCast:
		return tc.constInt(c, ex.X)
	case ast.ExprIdent:
		return tc.constIdent(c, id)
	case ast.ExprMember:
		if ex.Name != "sizeof" {
			return 0, false
		}
		t, ok := tc.typeOperand(c, ex.X)
		if !ok {
			return 0, false
		}
		l, ok := tc.layoutOf(t, ex.Span)
		return int64(l.Size), ok
	case ast.ExprUnary:
		x, ok := tc.constInt(c, ex.X)
		if !ok {
			return 0, false
		}
		switch ex.Op {
		case ast.OpNeg:
			return -x, true
		case ast.OpPlus:
			return x, true
		case ast.OpBitNot:
			return ^x, true
		case ast.OpNot:
			return boolInt(x == 0), true
		}
	case ast.ExprBinary:
		x, ok := tc.constInt(c, ex.X)
		if !ok {
			return 0, false
		}
		y, ok := tc.constInt(c, ex.Y)
		if !ok {
			return 0, false
		}
		return foldBinary(ex.Op, x, y)
	}
	return 0, false
}

func (tc *typeChecker) constIdent(c checkCtx, id ast.ExprID) (int64, bool) {
	sym := tc.table.ResolveIdentifier(c.info.Idents[id])
	if !sym.IsValid() || tc.expanding[sym] {
		return 0, false
	}
	var unit *ast.Unit
	var scope symbols.ScopeID
	var expr ast.ExprID
	switch p := tc.payload(sym).(type) {
	case symbols.ExprRef:
		unit, scope, expr = p.Unit, p.Scope, p.Expr
	case symbols.VarRef:
		v := tc.table.Vars.Get(p.ID)
		if v.Flags&ast.VarConst == 0 || v.Param {
			return 0, false
		}
		unit, scope, expr = v.Unit, v.Scope, v.Init
	default:
		return 0, false
	}
	tc.expanding[sym] = true
	defer delete(tc.expanding, sym)
	return tc.constInt(tc.ctxFor(unit, scope), expr)
}

func foldBinary(op ast.Op, x, y int64) (int64, bool) {
	switch op {
	case ast.OpAdd:
		return x + y, true
	case ast.OpSub:
		return x - y, true
	case ast.OpMul:
		return x * y, true
	case ast.OpDiv:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case ast.OpMod:
		if y == 0 {
			return 0, false
		}
		return x % y, true
	case ast.OpShl:
		if y < 0 || y > 63 {
			return 0, false
		}
		return x << y, true
	case ast.OpShr:
		if y < 0 || y > 63 {
			return 0, false
		}
		return x >> y, true
	case ast.OpBitAnd:
		return x & y, true
	case ast.OpBitOr:
		return x | y, true
	case ast.OpBitXor:
		return x ^ y, true
	case ast.OpLogAnd:
		return boolInt(x != 0 && y != 0), true
	case ast.OpLogOr:
		return boolInt(x != 0 || y != 0), true
	case ast.OpEq:
		return boolInt(x == y), true
	case ast.OpNe:
		return boolInt(x != y), true
	case ast.OpLt:
		return boolInt(x < y), true
	case ast.OpLe:
		return boolInt(x <= y), true
	case ast.OpGt:
		return boolInt(x > y), true
	case ast.OpGe:
		return boolInt(x >= y), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
