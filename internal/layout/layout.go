package layout

import (
	"keel/internal/types"
)

// Fixed sizes of the runtime representations.
const (
	PointerSize = 8
	// ClassHeaderSize covers the vtable pointer and the reference count that
	// precede every class's members.
	ClassHeaderSize = 16
	// InterfaceSize is a fat pointer: object pointer plus table pointer.
	InterfaceSize = 16
	// DynArraySize is the element pointer plus the 8-byte length.
	DynArraySize = 16
)

// FieldSlot is one laid-out member of a user type, base members included.
type FieldSlot struct {
	Name   string
	Type   types.TypeID
	Offset int
}

// TypeLayout is the memory layout of a type.
type TypeLayout struct {
	Size  int
	Align int

	// User types only: flattened members in layout order.
	Fields []FieldSlot
}

// FieldOffset finds a member by name.
func (l TypeLayout) FieldOffset(name string) (int, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

// LayoutEngine computes memory layout for types. Computed layouts are immutable
// and cached per TypeID.
type LayoutEngine struct {
	Types *types.Interner

	cache *cache
}

// New creates a new LayoutEngine over typesIn.
func New(typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{
		Types: typesIn,
		cache: newCache(),
	}
}

// Size is a convenience wrapper around LayoutOf.
func (e *LayoutEngine) Size(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// Cached reports whether t already has a layout, without computing one.
func (e *LayoutEngine) Cached(t types.TypeID) bool {
	_, ok := e.cache.get(t)
	return ok
}
