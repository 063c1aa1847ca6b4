// Package testkit holds structural checks shared by package tests.
package testkit

import (
	"errors"
	"fmt"
	"slices"

	"keel/internal/ast"
	"keel/internal/sema"
)

// CheckLowered verifies that a run which reported no errors left only
// primitive shapes behind: no sugar on checked nodes, every synthesized
// cast and coercion carries its target, every call target is well formed
// and every interface conversion has a complete table.
func CheckLowered(res *sema.Result) error {
	if res == nil {
		return errors.New("nil result")
	}
	var errs []error
	for _, ur := range res.Units {
		errs = append(errs, checkUnit(ur)...)
	}
	return errors.Join(errs...)
}

func checkUnit(ur *sema.UnitResult) []error {
	u := ur.Unit
	var errs []error
	fail := func(id ast.ExprID, format string, args ...any) {
		ex := u.Exprs.Get(id)
		errs = append(errs, fmt.Errorf("%s:%d:%d: expr %d (%s): %s",
			u.Path, ex.Span.Line, ex.Span.Col, id, ex.Kind, fmt.Sprintf(format, args...)))
	}

	// порядок ключей map случаен, сортируем ради стабильных сообщений
	for _, id := range sortedKeys(ur.ExprTypes) {
		ex := u.Exprs.Get(id)
		switch ex.Kind {
		case ast.ExprBinary:
			if _, ok := ex.Op.CompoundBase(); ok || ex.Op == ast.OpCoerceAssign || ex.Op == ast.OpAs {
				fail(id, "operator %s was not lowered", ex.Op)
			}
		case ast.ExprCast:
			if !ex.Type.IsValid() {
				if _, ok := ur.CastTargets[id]; !ok {
					fail(id, "synthesized cast without target")
				}
			}
		case ast.ExprCoerce:
			if _, ok := ur.Coercions[id]; !ok {
				fail(id, "coercion without target")
			}
		}
	}
	for _, id := range sortedKeys(ur.Coercions) {
		if k := u.Exprs.Get(id).Kind; k != ast.ExprCoerce {
			fail(id, "coercion recorded on %s", k)
		}
	}
	for _, id := range sortedKeys(ur.CallTargets) {
		ct := ur.CallTargets[id]
		if ct.Fn.IsValid() == ct.Callee.IsValid() {
			fail(id, "call target must name exactly one of fn and callee")
		}
		if k := u.Exprs.Get(id).Kind; k != ast.ExprCall && k != ast.ExprNew {
			fail(id, "call target recorded on %s", k)
		}
	}
	for _, id := range sortedKeys(ur.Conversions) {
		if t := ur.Conversions[id]; t == nil || !t.Complete {
			fail(id, "interface conversion without a complete table")
		}
	}
	return errs
}

func sortedKeys[V any](m map[ast.ExprID]V) []ast.ExprID {
	keys := make([]ast.ExprID, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}
