// Package vtable lays out dynamic dispatch: one table per class (inherited
// slots first, overrides in place, new methods appended) and one table per
// (interface, concrete type) pair, built on first conversion and cached.
package vtable

import (
	"fmt"
	"sort"

	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/symbols"
	"keel/internal/types"
)

// Table is the dispatch table of one (interface, concrete type) pair. Slot i
// implements the interface's i-th method.
type Table struct {
	Interface symbols.UserID
	Concrete  symbols.UserID
	Slots     []symbols.FnID
	Complete  bool
}

type pairKey struct {
	iface, concrete symbols.UserID
}

// Builder finalises class tables and owns the interface table cache of a run.
type Builder struct {
	t        *symbols.Table
	r        diag.Reporter
	pairs    map[pairKey]*Table
	building map[symbols.UserID]bool
}

func New(t *symbols.Table, r diag.Reporter) *Builder {
	return &Builder{
		t:        t,
		r:        r,
		pairs:    make(map[pairKey]*Table),
		building: make(map[symbols.UserID]bool),
	}
}

// Class returns the finalised dispatch table of a class, building it (and its
// bases first) on demand. Method signatures must already be resolved.
func (b *Builder) Class(id symbols.UserID) []symbols.FnID {
	user := b.t.Users.Get(id)
	if user == nil {
		return nil
	}
	if user.VTableBuilt {
		return user.VTable
	}
	if user.Kind == types.UserInterface {
		return b.Interface(id)
	}
	if b.building[id] {
		// inheritance cycle; reported by the validator
		return nil
	}
	b.building[id] = true
	defer delete(b.building, id)

	var slots []symbols.FnID
	if user.Base.IsValid() {
		slots = append(slots, b.Class(user.Base)...)
	}
	// only inherited slots can be overridden, each by at most one own method
	inherited := len(slots)
	claimed := make([]bool, inherited)
	for _, m := range user.Methods {
		fn := b.t.Fns.Get(m)
		if fn == nil || !fn.IsMethod() {
			continue
		}
		slot := b.overrideSlot(m, slots[:inherited], claimed)
		if slot >= 0 {
			claimed[slot] = true
		} else {
			slot = len(slots)
			slots = append(slots, m)
		}
		slots[slot] = m
		b.t.Fns.Get(m).VIndex = slot
	}

	user = b.t.Users.Get(id)
	user.VTable = slots
	user.VTableBuilt = true
	return slots
}

// Interface assigns slots to an interface's own methods in declaration order.
func (b *Builder) Interface(id symbols.UserID) []symbols.FnID {
	user := b.t.Users.Get(id)
	if user == nil {
		return nil
	}
	if user.VTableBuilt {
		return user.VTable
	}
	slots := make([]symbols.FnID, 0, len(user.Methods))
	for _, m := range user.Methods {
		b.t.Fns.Get(m).VIndex = len(slots)
		slots = append(slots, m)
	}
	user.VTable = slots
	user.VTableBuilt = true
	return slots
}

// ForPair returns the table converting concrete to iface, building it the first
// time the pair is seen. Missing methods are reported once, at the conversion
// that triggered the build; the returned table is then incomplete.
func (b *Builder) ForPair(iface, concrete symbols.UserID, at source.Span) *Table {
	key := pairKey{iface: iface, concrete: concrete}
	if tbl, ok := b.pairs[key]; ok {
		return tbl
	}
	want := b.Interface(iface)
	tbl := &Table{Interface: iface, Concrete: concrete, Slots: make([]symbols.FnID, len(want)), Complete: true}
	candidates := b.methodsOf(concrete)
	for i, m := range want {
		impl := symbols.NoFnID
		for _, c := range candidates {
			if b.compatible(c, m) {
				impl = c
				break
			}
		}
		if !impl.IsValid() {
			tbl.Complete = false
			ifn := b.t.Fns.Get(m)
			diag.ReportError(b.r, diag.SemaMissingIfaceMethod, at, fmt.Sprintf("%s does not implement %s.%s",
				b.userName(concrete), b.userName(iface), b.t.Strings.MustLookup(ifn.Name))).
				WithNote(ifn.Span, "interface method declared here").
				Emit()
			continue
		}
		tbl.Slots[i] = impl
	}
	b.pairs[key] = tbl
	return tbl
}

// Pairs lists every interface table built so far in a stable order.
func (b *Builder) Pairs() []*Table {
	out := make([]*Table, 0, len(b.pairs))
	for _, tbl := range b.pairs {
		out = append(out, tbl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Interface != out[j].Interface {
			return out[i].Interface < out[j].Interface
		}
		return out[i].Concrete < out[j].Concrete
	})
	return out
}

// methodsOf lists the methods a concrete type offers: the class table when it has
// one (overrides already applied), otherwise own methods then base methods.
func (b *Builder) methodsOf(id symbols.UserID) []symbols.FnID {
	user := b.t.Users.Get(id)
	if user == nil {
		return nil
	}
	if user.Kind == types.UserClass {
		return b.Class(id)
	}
	var out []symbols.FnID
	seen := make(map[symbols.UserID]bool)
	for cur := id; cur.IsValid() && !seen[cur]; {
		seen[cur] = true
		u := b.t.Users.Get(cur)
		out = append(out, u.Methods...)
		cur = u.Base
	}
	return out
}

func (b *Builder) userName(id symbols.UserID) string {
	if u := b.t.Users.Get(id); u != nil {
		return b.t.Strings.MustLookup(u.Name)
	}
	return "?"
}
