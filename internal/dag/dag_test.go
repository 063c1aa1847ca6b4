package dag

import (
	"testing"

	"github.com/nalgeon/be"
)

func order(mods []Module) (Index, *Topo) {
	idx := BuildIndex(mods)
	return idx, ToposortKahn(BuildGraph(idx, mods))
}

func TestBuildIndexIncludesImports(t *testing.T) {
	idx := BuildIndex([]Module{
		{Name: "main", Imports: []string{"math", "util"}},
		{Name: "util"},
	})
	be.Equal(t, idx.IDToName, []string{"main", "math", "util"})
	be.Equal(t, idx.NameToID["util"], ModuleID(2))
}

func TestDependenciesComeFirst(t *testing.T) {
	idx, topo := order([]Module{
		{Name: "app", Imports: []string{"net", "log"}},
		{Name: "net", Imports: []string{"log", "log"}},
		{Name: "log"},
		{Name: "tool", Imports: []string{"log"}},
	})
	be.True(t, !topo.Cyclic)
	be.Equal(t, idx.Names(topo.Order), []string{"log", "net", "tool", "app"})
	be.Equal(t, len(topo.Batches), 3)
	be.Equal(t, idx.Names(topo.Batches[1]), []string{"net", "tool"})
}

func TestMissingAndSelfImportsAreIgnored(t *testing.T) {
	idx, topo := order([]Module{
		{Name: "main", Imports: []string{"main", "nowhere"}},
	})
	be.True(t, !topo.Cyclic)
	be.Equal(t, idx.Names(topo.Order), []string{"main"})
}

func TestCyclesGoLast(t *testing.T) {
	idx, topo := order([]Module{
		{Name: "a", Imports: []string{"b"}},
		{Name: "b", Imports: []string{"a"}},
		{Name: "base"},
		{Name: "c", Imports: []string{"a", "base"}},
	})
	be.True(t, topo.Cyclic)
	be.Equal(t, idx.Names(topo.Cycles), []string{"a", "b", "c"})
	be.Equal(t, idx.Names(topo.Order), []string{"base", "a", "b", "c"})
	be.Equal(t, len(topo.Batches), 2)
}
