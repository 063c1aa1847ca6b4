package sema

import (
	"keel/internal/ast"
	"keel/internal/symbols"
)

// copyExpr duplicates a subtree of src into dst. Name uses keep the identifiers
// they were bound to at their original site, so a copied constant means the
// same thing wherever it is substituted.
func (tc *typeChecker) copyExpr(src *symbols.UnitInfo, id ast.ExprID, dst *symbols.UnitInfo) ast.ExprID {
	node := src.Unit.Exprs.Get(id)
	if node == nil {
		return ast.NoExprID
	}
	if node.Kind == ast.ExprCoerce {
		// coercions are re-derived where the copy is checked
		return tc.copyExpr(src, node.X, dst)
	}
	cp := *node
	cp.X = tc.copyExpr(src, node.X, dst)
	// node may be stale once dst grows when src == dst
	orig := *src.Unit.Exprs.Get(id)
	cp.Y = tc.copyExpr(src, orig.Y, dst)
	if len(orig.Args) > 0 {
		cp.Args = make([]ast.ExprID, len(orig.Args))
		for i, a := range orig.Args {
			cp.Args[i] = tc.copyExpr(src, a, dst)
		}
	}
	if src.Unit != dst.Unit {
		cp.Type = tc.copyTypeExpr(src, orig.Type, dst)
	}
	out := dst.Unit.Exprs.New(cp)
	if sym, ok := src.Idents[id]; ok {
		dst.Idents[out] = sym
	}
	if t, ok := tc.units[src.Unit].CastTargets[id]; ok {
		tc.units[dst.Unit].CastTargets[out] = t
	}
	return out
}

func (tc *typeChecker) copyTypeExpr(src *symbols.UnitInfo, id ast.TypeExprID, dst *symbols.UnitInfo) ast.TypeExprID {
	te := src.Unit.Types.Get(id)
	if te == nil {
		return ast.NoTypeExprID
	}
	cp := *te
	cp.Elem = tc.copyTypeExpr(src, te.Elem, dst)
	if len(te.Elems) > 0 {
		cp.Elems = make([]ast.TypeExprID, len(te.Elems))
		for i, el := range te.Elems {
			cp.Elems[i] = tc.copyTypeExpr(src, el, dst)
		}
	}
	cp.Len = tc.copyExpr(src, te.Len, dst)
	out := dst.Unit.Types.New(cp)
	if sym, ok := src.TypeNames[id]; ok {
		dst.TypeNames[out] = sym
	}
	return out
}

// cloneExpr duplicates a subtree inside the checked unit.
func (tc *typeChecker) cloneExpr(c checkCtx, id ast.ExprID) ast.ExprID {
	return tc.copyExpr(c.info, id, c.info)
}

// moveNode relocates the node at id to a fresh slot, carrying its recorded
// resolution with it, so that id can be rewritten to wrap it.
func (tc *typeChecker) moveNode(c checkCtx, id ast.ExprID) ast.ExprID {
	exprs := c.info.Unit.Exprs
	node := *exprs.Get(id)
	moved := exprs.New(node)
	if sym, ok := c.info.Idents[id]; ok {
		c.info.Idents[moved] = sym
	}
	r := c.res
	if t, ok := r.ExprTypes[id]; ok {
		r.ExprTypes[moved] = t
	}
	if s, ok := r.ExprSymbols[id]; ok {
		r.ExprSymbols[moved] = s
		delete(r.ExprSymbols, id)
	}
	if ct, ok := r.CallTargets[id]; ok {
		r.CallTargets[moved] = ct
		delete(r.CallTargets, id)
	}
	if t, ok := r.Coercions[id]; ok {
		r.Coercions[moved] = t
		delete(r.Coercions, id)
	}
	if t, ok := r.CastTargets[id]; ok {
		r.CastTargets[moved] = t
		delete(r.CastTargets, id)
	}
	if v, ok := r.Conversions[id]; ok {
		r.Conversions[moved] = v
		delete(r.Conversions, id)
	}
	return moved
}
