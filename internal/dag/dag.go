// Package dag orders modules so that every module comes after the modules
// it imports. Import cycles are legal; their members are placed last.
package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type ModuleID uint32

// Module is one node: a module name and the modules it imports.
type Module struct {
	Name    string
	Imports []string
}

type Index struct {
	NameToID map[string]ModuleID
	IDToName []string
}

// BuildIndex раздаёт ID по отсортированным именам, включая импортируемые.
func BuildIndex(mods []Module) Index {
	seen := make(map[string]struct{}, len(mods))
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	for _, m := range mods {
		add(m.Name)
		for _, dep := range m.Imports {
			add(dep)
		}
	}
	slices.Sort(names)
	idx := Index{NameToID: make(map[string]ModuleID, len(names)), IDToName: names}
	for i, name := range names {
		idx.NameToID[name] = mustID(i)
	}
	return idx
}

// Graph points from a dependency to its importers.
type Graph struct {
	Edges   [][]ModuleID
	Indeg   []int  // число ещё не упорядоченных зависимостей
	Present []bool // модуль загружен, а не только упомянут в импорте
}

// BuildGraph drops self-imports, duplicate imports and imports of modules
// that were never loaded.
func BuildGraph(idx Index, mods []Module) Graph {
	n := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	for _, m := range mods {
		if id, ok := idx.NameToID[m.Name]; ok {
			g.Present[id] = true
		}
	}
	for _, m := range mods {
		to, ok := idx.NameToID[m.Name]
		if !ok {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(m.Imports))
		for _, dep := range m.Imports {
			from, ok := idx.NameToID[dep]
			if !ok || from == to || !g.Present[from] {
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			g.Edges[from] = append(g.Edges[from], to)
			g.Indeg[to]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g
}

type Topo struct {
	Order   []ModuleID   // зависимости раньше импортёров, циклы в конце
	Batches [][]ModuleID // волны модулей, не зависящих друг от друга
	Cyclic  bool
	Cycles  []ModuleID // модули, оставшиеся в цикле или зависящие от него
}

// ToposortKahn orders present modules. When the graph is cyclic the
// remaining modules form one final batch.
func ToposortKahn(g Graph) *Topo {
	n := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]ModuleID, 0, n)}

	active := 0
	var current []ModuleID
	for i := range n {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, mustID(i))
		}
	}

	for len(current) > 0 {
		topo.Batches = append(topo.Batches, current)
		var next []ModuleID
		for _, id := range current {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != active {
		topo.Cyclic = true
		for i := range n {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustID(i))
			}
		}
		topo.Order = append(topo.Order, topo.Cycles...)
		topo.Batches = append(topo.Batches, slices.Clone(topo.Cycles))
	}
	return topo
}

// Names maps ids back to module names.
func (idx Index) Names(ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[id]
	}
	return out
}

func mustID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}
