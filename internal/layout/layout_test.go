package layout

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"keel/internal/types"
)

func newEngine() (*LayoutEngine, *types.Interner) {
	in := types.NewInterner()
	return New(in), in
}

func TestPrimitiveAndDerivedLayouts(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	cases := []struct {
		typ         types.TypeID
		size, align int
	}{
		{b.Char, 1, 1},
		{b.Short, 2, 2},
		{b.Int, 4, 4},
		{b.Long, 8, 8},
		{b.Double, 8, 8},
		{b.VoidPtr, 8, 8},
		{in.DynArrayOf(b.Char), 16, 8},
		{in.ArrayOf(b.Short, 5), 10, 2},
		{in.TupleOf(b.Char, b.Long), 16, 8},
		{in.FnOf(b.Void, nil, false), 8, 8},
	}
	for _, tc := range cases {
		l, err := e.LayoutOf(tc.typ)
		be.Err(t, err, nil)
		if l.Size != tc.size || l.Align != tc.align {
			t.Fatalf("%s: got %d/%d, want %d/%d", in.Label(tc.typ), l.Size, l.Align, tc.size, tc.align)
		}
	}
}

func TestStructPadding(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	s := in.RegisterUser(types.UserStruct, "S", 1)
	in.SetUserBody(s, types.NoTypeID, []types.Field{{Name: "c", Type: b.Char}, {Name: "i", Type: b.Int}})

	l, err := e.LayoutOf(s)
	be.Err(t, err, nil)
	be.Equal(t, l.Size, 8)
	be.Equal(t, l.Align, 4)
	off, ok := l.FieldOffset("i")
	be.True(t, ok)
	be.Equal(t, off, 4)
}

func TestUnionLayout(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	u := in.RegisterUser(types.UserUnion, "U", 1)
	in.SetUserBody(u, types.NoTypeID, []types.Field{{Name: "c", Type: in.ArrayOf(b.Char, 5)}, {Name: "i", Type: b.Int}})

	l, err := e.LayoutOf(u)
	be.Err(t, err, nil)
	be.Equal(t, l.Size, 8)
	be.Equal(t, l.Align, 4)
}

func TestClassHeaderAndInheritance(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	empty := in.RegisterUser(types.UserClass, "Empty", 1)
	in.SetUserBody(empty, types.NoTypeID, nil)
	l, err := e.LayoutOf(empty)
	be.Err(t, err, nil)
	be.Equal(t, l.Size, 16)
	be.Equal(t, l.Align, 8)

	base := in.RegisterUser(types.UserClass, "Base", 2)
	in.SetUserBody(base, types.NoTypeID, []types.Field{{Name: "x", Type: b.Int}})
	derived := in.RegisterUser(types.UserClass, "Derived", 3)
	in.SetUserBody(derived, base, []types.Field{{Name: "y", Type: b.Char}})

	l, err = e.LayoutOf(derived)
	be.Err(t, err, nil)
	x, _ := l.FieldOffset("x")
	y, _ := l.FieldOffset("y")
	be.Equal(t, x, 16)
	be.Equal(t, y, 24)
	be.Equal(t, l.Size, 32)
}

func TestInterfaceIsFatPointer(t *testing.T) {
	e, in := newEngine()
	i := in.RegisterUser(types.UserInterface, "I", 1)
	l, err := e.LayoutOf(i)
	be.Err(t, err, nil)
	be.Equal(t, l.Size, 16)
}

func TestRecursiveValueTypeIsRejected(t *testing.T) {
	e, in := newEngine()
	node := in.RegisterUser(types.UserStruct, "Node", 1)
	in.SetUserBody(node, types.NoTypeID, []types.Field{{Name: "next", Type: node}})

	_, err := e.LayoutOf(node)
	var le *LayoutError
	be.True(t, errors.As(err, &le))
	be.Equal(t, le.Kind, LayoutErrRecursiveUnsized)

	// through a pointer the same shape is fine
	list := in.RegisterUser(types.UserStruct, "List", 2)
	in.SetUserBody(list, types.NoTypeID, []types.Field{{Name: "next", Type: in.PointerTo(list)}})
	size, err := e.Size(list)
	be.Err(t, err, nil)
	be.Equal(t, size, 8)
}

func TestUnresolvedUserType(t *testing.T) {
	e, in := newEngine()
	fwd := in.RegisterUser(types.UserStruct, "Fwd", 1)
	_, err := e.LayoutOf(fwd)
	var le *LayoutError
	be.True(t, errors.As(err, &le))
	be.Equal(t, le.Kind, LayoutErrUnresolved)
	be.True(t, !e.Cached(fwd))
}
