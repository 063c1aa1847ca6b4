package driver

import (
	"fmt"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/symbols"
)

// Importer links the package identifiers of declared units to the root scope of
// the module they name. Each import becomes a one-hop sibling of the importing
// unit's root.
type Importer struct {
	table    *symbols.Table
	reporter diag.Reporter
}

func NewImporter(tbl *symbols.Table, r diag.Reporter) *Importer {
	return &Importer{table: tbl, reporter: r}
}

// Resolve returns the root scope of a declared module.
func (im *Importer) Resolve(module string) (symbols.ScopeID, bool) {
	return im.table.ModuleRoot(module)
}

// Link wires every import of info. It returns the number of imports linked.
func (im *Importer) Link(info *symbols.UnitInfo) int {
	linked := 0
	u := info.Unit
	for _, item := range u.Imports() {
		it := u.Items.Get(item)
		sym := info.Items[item]
		if !sym.IsValid() {
			continue
		}
		if it.Path == u.Module {
			diag.ReportError(im.reporter, diag.ProjImportCycle, it.Span,
				fmt.Sprintf("module %q imports itself", it.Path)).Emit()
			continue
		}
		root, ok := im.Resolve(it.Path)
		if !ok {
			diag.ReportError(im.reporter, diag.ProjMissingModule, it.Span,
				fmt.Sprintf("module %q not found", it.Path)).Emit()
			continue
		}
		im.table.LinkPackage(sym, root)
		linked++
	}
	return linked
}

// LinkAll links every unit in order.
func (im *Importer) LinkAll(infos []*symbols.UnitInfo) int {
	n := 0
	for _, info := range infos {
		n += im.Link(info)
	}
	return n
}

// importGraph lists, per module, the modules it imports. Used for ordering
// reports only; cycles are legal since sibling lookup does not chain.
func importGraph(units []*ast.Unit) map[string][]string {
	g := make(map[string][]string, len(units))
	for _, u := range units {
		for _, id := range u.Imports() {
			g[u.Module] = append(g[u.Module], u.Items.Get(id).Path)
		}
	}
	return g
}
