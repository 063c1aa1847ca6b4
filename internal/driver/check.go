package driver

import (
	"context"
	"fmt"
	"time"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/sema"
	"keel/internal/symbols"
	"keel/internal/trace"
)

// CheckOptions configure a run over already decoded units.
type CheckOptions struct {
	MaxDiagnostics   int
	WarningsAsErrors bool
	Observer         PhaseObserver
}

// CheckResult is everything a run produced. Sema is nil when the run aborted
// before validation.
type CheckResult struct {
	Units []*ast.Unit
	Infos []*symbols.UnitInfo
	Table *symbols.Table
	Sema  *sema.Result
	Bag   *diag.Bag

	warningsAsErrors bool
}

// Failed reports whether the process should exit non-zero.
func (r *CheckResult) Failed() bool {
	if r == nil || r.Bag == nil {
		return true
	}
	if r.Bag.HasErrors() {
		return true
	}
	return r.warningsAsErrors && r.Bag.HasWarnings()
}

// Check declares units in order, links their imports and validates them.
// A Failure or Fatal diagnostic stops the run; it is returned as an error
// wrapping *diag.Abort, with the partial result.
func Check(ctx context.Context, units []*ast.Unit, opts CheckOptions) (res *CheckResult, err error) {
	tracer := trace.FromContext(ctx)
	bag := diag.NewBag(opts.MaxDiagnostics)
	res = &CheckResult{Units: units, Bag: bag, warningsAsErrors: opts.WarningsAsErrors}
	if len(units) == 0 {
		return res, ErrNoUnits
	}
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	span := trace.Begin(tracer, trace.ScopeDriver, "check", 0).
		WithExtra("units", fmt.Sprint(len(units)))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check aborted: %w", diag.Recover(r, nil))
		}
		span.End(fmt.Sprintf("diagnostics=%d", bag.Len()))
	}()

	ctx = trace.WithTracer(ctx, tracer)
	phase := &phaseRunner{observer: opts.Observer, tracer: tracer, parent: span.ID(), bag: bag}

	res.Table = symbols.NewTable(tableHints(units), nil, nil)
	phase.run(PhaseDeclare, func() string {
		for _, u := range units {
			res.Infos = append(res.Infos, res.Table.DeclareUnit(u, reporter))
		}
		return fmt.Sprintf("scopes=%d symbols=%d", res.Table.Scopes.Len(), res.Table.Symbols.Len())
	})
	phase.run(PhaseLink, func() string {
		n := NewImporter(res.Table, reporter).LinkAll(res.Infos)
		return fmt.Sprintf("imports=%d", n)
	})
	phase.run(PhaseSema, func() string {
		res.Sema = sema.NewChecker(res.Table, sema.Options{Reporter: reporter}).Check(ctx, res.Infos)
		return fmt.Sprintf("diagnostics=%d", bag.Len())
	})
	return res, nil
}

// tableHints sizes the symbol arenas from the node counts of the input.
func tableHints(units []*ast.Unit) symbols.Hints {
	var items, blocks uint
	for _, u := range units {
		items += uint(u.Items.Arena.Len())
		blocks += uint(u.Stmts.Arena.Len())
	}
	return symbols.Hints{Scopes: blocks + 1, Symbols: items * 2, Decls: items}
}

type phaseRunner struct {
	observer PhaseObserver
	tracer   trace.Tracer
	parent   uint64
	bag      *diag.Bag
}

// run reports the end of the phase even when fn aborts; the panic keeps
// unwinding to Check.
func (p *phaseRunner) run(name string, fn func() string) {
	p.notify(PhaseEvent{Name: name, Status: PhaseStart})
	span := trace.Begin(p.tracer, trace.ScopePass, name, p.parent)
	start := time.Now()
	detail := "aborted"
	defer func() {
		span.End(detail)
		p.notify(PhaseEvent{
			Name:        name,
			Status:      PhaseEnd,
			Elapsed:     time.Since(start),
			Diagnostics: p.bag.Len(),
			Failed:      detail == "aborted",
		})
	}()
	detail = fn()
}

func (p *phaseRunner) notify(ev PhaseEvent) {
	if p.observer != nil {
		p.observer(ev)
	}
}
