package sema

import (
	"fmt"
	"strings"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/symbols"
	"keel/internal/trace"
	"keel/internal/types"
)

// Rank grades how well a candidate accepts an argument list. The order is total.
type Rank uint8

const (
	RankInvalid Rank = iota
	RankCoerce
	RankDefault
	RankFull
)

func (r Rank) String() string {
	switch r {
	case RankCoerce:
		return "coerce"
	case RankDefault:
		return "default"
	case RankFull:
		return "full"
	}
	return "invalid"
}

// candidate is one callable considered at a call site: a declared function, or a
// bare signature for calls through function values.
type candidate struct {
	fn       symbols.FnID
	params   []types.TypeID // receiver first for methods
	defaults []bool
	variadic bool
	result   types.TypeID
}

func (tc *typeChecker) fnCandidate(id symbols.FnID) candidate {
	tc.resolveFnSig(id)
	fn := tc.table.Fns.Get(id)
	cand := candidate{fn: id, variadic: fn.Variadic, result: fn.Result}
	for _, p := range fn.Params {
		v := tc.table.Vars.Get(p)
		cand.params = append(cand.params, v.Type)
		cand.defaults = append(cand.defaults, v.Init.IsValid())
	}
	return cand
}

func (tc *typeChecker) sigCandidate(sig types.TypeID) (candidate, bool) {
	info, ok := tc.types.FnInfo(sig)
	if !ok {
		return candidate{}, false
	}
	cand := candidate{variadic: info.Variadic, result: info.Result}
	if info.Receiver != types.NoTypeID {
		cand.params = append(cand.params, info.Receiver)
		cand.defaults = append(cand.defaults, false)
	}
	cand.params = append(cand.params, info.Params...)
	cand.defaults = append(cand.defaults, make([]bool, len(info.Params))...)
	return cand, true
}

// resolveOverloadValidity ranks one candidate against argument types.
func (tc *typeChecker) resolveOverloadValidity(args []types.TypeID, cand candidate) Rank {
	if len(args) > len(cand.params) && !cand.variadic {
		return RankInvalid
	}
	rank := RankFull
	for i, p := range cand.params {
		if i >= len(args) {
			if !cand.defaults[i] {
				return RankInvalid
			}
			rank = min(rank, RankDefault)
			continue
		}
		switch {
		case args[i] == p:
		case tc.types.CoercesTo(args[i], p):
			rank = min(rank, RankCoerce)
		default:
			return RankInvalid
		}
	}
	return rank
}

// resolveOverloadList picks the single best candidate. ok is false on a tie at
// the best rank or when nothing applies; the reason is reported at span.
func (tc *typeChecker) resolveOverloadList(name string, at source.Span, args []types.TypeID, cands []candidate) (candidate, Rank, bool) {
	span := trace.Begin(tc.tracer, trace.ScopeNode, "overload", tc.parentSpan).
		WithExtra("name", name).
		WithExtra("candidates", fmt.Sprint(len(cands)))
	best := -1
	bestRank := RankInvalid
	tie := false
	ranks := make([]Rank, len(cands))
	for i, cand := range cands {
		r := tc.resolveOverloadValidity(args, cand)
		ranks[i] = r
		switch {
		case r > bestRank:
			best, bestRank, tie = i, r, false
		case r == bestRank && r != RankInvalid:
			tie = true
		}
	}
	switch {
	case best < 0:
		b := diag.ReportError(tc.reporter, diag.SemaNoOverload, at,
			fmt.Sprintf("no overload of %s accepts (%s)", name, tc.typeList(args)))
		for _, cand := range cands {
			tc.noteCandidate(b, cand)
		}
		b.Emit()
		span.End("none")
		return candidate{}, RankInvalid, false
	case tie:
		b := diag.ReportError(tc.reporter, diag.SemaAmbiguousOverload, at,
			fmt.Sprintf("call to %s with (%s) is ambiguous", name, tc.typeList(args)))
		for i, cand := range cands {
			if ranks[i] == bestRank {
				tc.noteCandidate(b, cand)
			}
		}
		b.Emit()
		span.End("ambiguous")
		return candidate{}, bestRank, false
	}
	span.End(bestRank.String())
	return cands[best], bestRank, true
}

func (tc *typeChecker) noteCandidate(b *diag.ReportBuilder, cand candidate) {
	if fn := tc.table.Fns.Get(cand.fn); fn != nil {
		b.WithNote(fn.Span, "candidate: "+tc.label(fn.Sig))
	}
}

func (tc *typeChecker) typeList(ts []types.TypeID) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = tc.label(t)
	}
	return strings.Join(parts, ", ")
}

// bindArgs coerces args to the chosen candidate's parameters, appends copies of
// the default values for missing trailing parameters and promotes variadic
// extras. The first skip parameters are bound to receivers that have no node.
// The returned slice is the full argument list in parameter order.
func (tc *typeChecker) bindArgs(c checkCtx, cand candidate, args []ast.ExprID, skip int) []ast.ExprID {
	params := cand.params[skip:]
	out := make([]ast.ExprID, 0, max(len(args), len(params)))
	for i, p := range params {
		if i < len(args) {
			tc.coerce(c, args[i], p, "argument")
			out = append(out, args[i])
			continue
		}
		if def := tc.defaultArg(c, cand.fn, i+skip); def.IsValid() {
			out = append(out, def)
		}
	}
	for _, extra := range args[min(len(args), len(params)):] {
		t := tc.checkExpr(c, extra)
		tc.coerceTo(c, extra, t, tc.types.VariadicPromote(t))
		out = append(out, extra)
	}
	return out
}

// defaultArg copies the default value of parameter i into the calling unit and
// coerces it to the parameter type.
func (tc *typeChecker) defaultArg(c checkCtx, fnID symbols.FnID, i int) ast.ExprID {
	fn := tc.table.Fns.Get(fnID)
	if fn == nil || i >= len(fn.Params) {
		return ast.NoExprID
	}
	v := tc.table.Vars.Get(fn.Params[i])
	src := tc.ctxFor(fn.Unit, v.Scope)
	cp := tc.copyExpr(src.info, v.Init, c.info)
	tc.coerce(c, cp, v.Type, "default argument")
	return cp
}
