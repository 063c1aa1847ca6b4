package sema

import (
	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/layout"
	"keel/internal/symbols"
	"keel/internal/types"
	"keel/internal/vtable"
)

// CallTarget is a fully resolved call site. Exactly one of Fn and Callee is set:
// Fn for a direct call to a declared function, Callee for a call through a
// function-valued expression. Args matches Sig position by position once
// coercions are inserted; for methods and constructors Args[0] is the receiver,
// except under new, where the allocation itself is the receiver and has no node.
type CallTarget struct {
	Fn          symbols.FnID
	Callee      ast.ExprID
	Sig         types.TypeID
	Args        []ast.ExprID
	Virtual     bool // dispatched through the receiver's class table
	Interface   bool // dispatched through an interface table
	Constructor bool // receiver is a fresh allocation, the call yields the object
}

// UnitResult holds the resolution maps of one translation unit.
type UnitResult struct {
	Unit        *ast.Unit
	ExprTypes   map[ast.ExprID]types.TypeID
	ExprSymbols map[ast.ExprID]symbols.SymbolID
	CallTargets map[ast.ExprID]CallTarget
	// Coercions maps each inserted ExprCoerce node to its target type.
	Coercions map[ast.ExprID]types.TypeID
	// CastTargets maps casts synthesized by lowering (which have no written
	// type) to their target type.
	CastTargets map[ast.ExprID]types.TypeID
	// Conversions records casts that produced an interface value.
	Conversions map[ast.ExprID]*vtable.Table
}

func newUnitResult(u *ast.Unit) *UnitResult {
	return &UnitResult{
		Unit:        u,
		ExprTypes:   make(map[ast.ExprID]types.TypeID),
		ExprSymbols: make(map[ast.ExprID]symbols.SymbolID),
		CallTargets: make(map[ast.ExprID]CallTarget),
		Coercions:   make(map[ast.ExprID]types.TypeID),
		CastTargets: make(map[ast.ExprID]types.TypeID),
		Conversions: make(map[ast.ExprID]*vtable.Table),
	}
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	Table   *symbols.Table
	Types   *types.Interner
	Layout  *layout.LayoutEngine
	VTables *vtable.Builder
	Units   []*UnitResult

	worst    diag.Severity
	reported bool
}

// Worst is the highest severity reported during checking; ok is false when
// nothing was reported.
func (r *Result) Worst() (diag.Severity, bool) { return r.worst, r.reported }

// Failed reports whether code generation must not run.
func (r *Result) Failed() bool { return r.reported && r.worst.Failing() }

// Unit returns the result for u, or nil.
func (r *Result) Unit(u *ast.Unit) *UnitResult {
	for _, ur := range r.Units {
		if ur.Unit == u {
			return ur
		}
	}
	return nil
}
