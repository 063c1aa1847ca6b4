package sema

import (
	"context"
	"fmt"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/layout"
	"keel/internal/source"
	"keel/internal/symbols"
	"keel/internal/trace"
	"keel/internal/types"
	"keel/internal/vtable"
)

// Options configure a semantic pass.
type Options struct {
	Reporter diag.Reporter
}

// Checker validates declared units. It keeps its memo tables between calls, so
// checking the same units again is a no-op.
type Checker struct {
	tc *typeChecker
}

// NewChecker prepares a checker over a table filled by symbols.DeclareUnit.
func NewChecker(tbl *symbols.Table, opts Options) *Checker {
	res := &Result{
		Table:  tbl,
		Types:  tbl.Types,
		Layout: layout.New(tbl.Types),
	}
	tc := &typeChecker{
		table:     tbl,
		types:     tbl.Types,
		result:    res,
		infos:     make(map[*ast.Unit]*symbols.UnitInfo),
		units:     make(map[*ast.Unit]*UnitResult),
		typeExprs: make(map[typeExprKey]types.TypeID),
		varState:  make(map[symbols.VarID]resolveState),
		fnState:   make(map[symbols.FnID]resolveState),
		userState: make(map[symbols.UserID]resolveState),
		aliases:   make(map[symbols.SymbolID]types.TypeID),
		aliasBusy: make(map[symbols.SymbolID]bool),
		overloads: make(map[symbols.SymbolID]bool),
		expanding: make(map[symbols.SymbolID]bool),
		visited:   make(map[visitKey]bool),
		tracer:    trace.Nop,
	}
	tc.reporter = &severityTracker{next: opts.Reporter, result: res}
	res.VTables = vtable.New(tbl, tc.reporter)
	return &Checker{tc: tc}
}

// Check runs the validator over units in order and returns the accumulated
// result. Units must have been declared into the checker's table.
func (c *Checker) Check(ctx context.Context, units []*symbols.UnitInfo) *Result {
	tc := c.tc
	tc.tracer = trace.FromContext(ctx)
	for _, info := range units {
		tc.register(info)
	}
	span := trace.Begin(tc.tracer, trace.ScopePass, "validate", 0)
	for _, info := range units {
		unitSpan := trace.Begin(tc.tracer, trace.ScopeModule, "validate_unit", span.ID()).
			WithExtra("unit", info.Unit.Path)
		tc.parentSpan = unitSpan.ID()
		tc.checkUnit(info)
		unitSpan.End("")
	}
	span.WithExtra("units", fmt.Sprint(len(units))).End("")
	return tc.result
}

// Check is a one-shot NewChecker(...).Check(...).
func Check(ctx context.Context, tbl *symbols.Table, units []*symbols.UnitInfo, opts Options) *Result {
	return NewChecker(tbl, opts).Check(ctx, units)
}

type resolveState uint8

const (
	stateUnvisited resolveState = iota
	stateVisiting
	stateDone
)

type typeExprKey struct {
	unit *ast.Unit
	id   ast.TypeExprID
}

type visitKey struct {
	unit *ast.Unit
	item ast.ItemID
}

type typeChecker struct {
	table    *symbols.Table
	types    *types.Interner
	reporter diag.Reporter
	result   *Result
	tracer   trace.Tracer

	parentSpan uint64

	infos map[*ast.Unit]*symbols.UnitInfo
	units map[*ast.Unit]*UnitResult

	typeExprs map[typeExprKey]types.TypeID
	varState  map[symbols.VarID]resolveState
	fnState   map[symbols.FnID]resolveState
	userState map[symbols.UserID]resolveState
	aliases   map[symbols.SymbolID]types.TypeID
	aliasBusy map[symbols.SymbolID]bool
	overloads map[symbols.SymbolID]bool
	expanding map[symbols.SymbolID]bool
	visited   map[visitKey]bool
}

// checkCtx is the explicit traversal context: where we are, and what encloses us.
type checkCtx struct {
	info  *symbols.UnitInfo
	res   *UnitResult
	scope symbols.ScopeID
	fn    symbols.FnID
	loops int
	// switches counts enclosing switch statements; switchType is the innermost
	// switch's condition type.
	switches   int
	switchType types.TypeID
}

func (c checkCtx) in(scope symbols.ScopeID) checkCtx {
	if scope.IsValid() {
		c.scope = scope
	}
	return c
}

func (tc *typeChecker) register(info *symbols.UnitInfo) {
	if _, ok := tc.infos[info.Unit]; ok {
		return
	}
	tc.infos[info.Unit] = info
	ur := newUnitResult(info.Unit)
	tc.units[info.Unit] = ur
	tc.result.Units = append(tc.result.Units, ur)
}

// ctxFor returns a root context for a unit, registering it on first use
// (declarations from imported units are resolved on demand).
func (tc *typeChecker) ctxFor(u *ast.Unit, scope symbols.ScopeID) checkCtx {
	info, ok := tc.infos[u]
	if !ok {
		for _, cand := range tc.table.Units() {
			if cand.Unit == u {
				tc.register(cand)
				info = cand
				break
			}
		}
	}
	if info == nil {
		diag.Invariant(tc.reporter, source.Span{File: u.File}, "unit %s was never declared", u.Path)
		info = &symbols.UnitInfo{
			Unit:      u,
			Idents:    make(map[ast.ExprID]symbols.SymbolID),
			TypeNames: make(map[ast.TypeExprID]symbols.SymbolID),
		}
		tc.register(info)
	}
	return checkCtx{info: info, res: tc.units[u], scope: scope}
}

func (tc *typeChecker) checkUnit(info *symbols.UnitInfo) {
	c := checkCtx{info: info, res: tc.units[info.Unit], scope: info.Root}
	for _, id := range info.Unit.Decls {
		tc.visitItem(c, id)
	}
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (tc *typeChecker) warn(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportWarning(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (tc *typeChecker) name(id source.StringID) string {
	return tc.table.Strings.MustLookup(id)
}

func (tc *typeChecker) label(t types.TypeID) string {
	return tc.types.Label(t)
}

// severityTracker forwards diagnostics and keeps the run's worst severity on
// the result.
type severityTracker struct {
	next   diag.Reporter
	result *Result
}

func (s *severityTracker) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if !s.result.reported || sev > s.result.worst {
		s.result.worst = sev
	}
	s.result.reported = true
	if s.next == nil {
		if sev.Aborts() {
			d := diag.New(sev, code, primary, msg)
			d.Notes = notes
			panic(&diag.Abort{Diagnostic: d})
		}
		return
	}
	s.next.Report(code, sev, primary, msg, notes)
}
