package layout

import (
	"fmt"

	"fortio.org/safecast"

	"keel/internal/types"
)

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	st := &layoutState{index: make(map[types.TypeID]int, 16)}
	return e.layoutOf(t, st)
}

func (e *LayoutEngine) layoutOf(t types.TypeID, st *layoutState) (TypeLayout, error) {
	if l, ok := e.cache.get(t); ok {
		return l, nil
	}
	if at, ok := st.index[t]; ok {
		cycle := append(append([]types.TypeID(nil), st.stack[at:]...), t)
		return TypeLayout{}, &LayoutError{Kind: LayoutErrRecursiveUnsized, Type: t, Cycle: cycle}
	}
	st.index[t] = len(st.stack)
	st.stack = append(st.stack, t)
	defer func() {
		st.stack = st.stack[:len(st.stack)-1]
		delete(st.index, t)
	}()

	l, err := e.compute(t, st)
	if err != nil {
		return TypeLayout{}, err
	}
	e.cache.put(t, l)
	return l, nil
}

func (e *LayoutEngine) compute(t types.TypeID, st *layoutState) (TypeLayout, error) {
	tt, ok := e.Types.Lookup(t)
	if !ok {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrInvalid, Type: t}
	}
	switch tt.Kind {
	case types.KindVoid:
		return TypeLayout{Size: 0, Align: 1}, nil
	case types.KindPointer, types.KindFn:
		return TypeLayout{Size: PointerSize, Align: PointerSize}, nil
	case types.KindDynArray:
		return TypeLayout{Size: DynArraySize, Align: PointerSize}, nil
	case types.KindArray:
		el, err := e.layoutOf(tt.Elem, st)
		if err != nil {
			return TypeLayout{}, err
		}
		size, err := mulSize(el.Size, tt.Count)
		if err != nil {
			return TypeLayout{}, &LayoutError{Kind: LayoutErrOverflow, Type: t, Err: err}
		}
		return TypeLayout{Size: size, Align: el.Align}, nil
	case types.KindTuple:
		info, _ := e.Types.TupleInfo(t)
		fields := make([]types.Field, len(info.Elems))
		for i, el := range info.Elems {
			fields[i] = types.Field{Name: fmt.Sprintf("%d", i), Type: el}
		}
		return e.sequential(nil, 0, 1, fields, st)
	case types.KindUser:
		return e.userLayout(t, st)
	}
	if size := tt.Kind.PrimSize(); size > 0 {
		return TypeLayout{Size: int(size), Align: int(size)}, nil
	}
	return TypeLayout{}, &LayoutError{Kind: LayoutErrInvalid, Type: t}
}

func (e *LayoutEngine) userLayout(t types.TypeID, st *layoutState) (TypeLayout, error) {
	info, _ := e.Types.UserInfo(t)
	if info.Kind == types.UserInterface {
		return TypeLayout{Size: InterfaceSize, Align: PointerSize}, nil
	}
	if !info.Resolved {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrUnresolved, Type: t}
	}
	if info.Kind == types.UserUnion {
		return e.union(info.Fields, st)
	}

	start, align := 0, 1
	if info.Kind == types.UserClass {
		start, align = ClassHeaderSize, PointerSize
	}
	var inherited []FieldSlot
	if info.Base != types.NoTypeID {
		base, err := e.layoutOf(info.Base, st)
		if err != nil {
			return TypeLayout{}, err
		}
		// base members keep their relative placement after our own header
		baseStart := 0
		if e.Types.IsUserKind(info.Base, types.UserClass) {
			baseStart = ClassHeaderSize
		}
		for _, f := range base.Fields {
			inherited = append(inherited, FieldSlot{Name: f.Name, Type: f.Type, Offset: f.Offset - baseStart + start})
		}
		start += base.Size - baseStart
		align = max(align, base.Align)
	}
	return e.sequential(inherited, start, align, info.Fields, st)
}

// sequential lays out fields in order, each at a multiple of its own alignment,
// and rounds the total size up to the overall alignment.
func (e *LayoutEngine) sequential(prefix []FieldSlot, offset, align int, fields []types.Field, st *layoutState) (TypeLayout, error) {
	out := TypeLayout{Align: align, Fields: prefix}
	for _, f := range fields {
		fl, err := e.layoutOf(f.Type, st)
		if err != nil {
			return TypeLayout{}, err
		}
		offset = alignTo(offset, fl.Align)
		out.Fields = append(out.Fields, FieldSlot{Name: f.Name, Type: f.Type, Offset: offset})
		offset += fl.Size
		out.Align = max(out.Align, fl.Align)
	}
	out.Size = alignTo(offset, out.Align)
	return out, nil
}

func (e *LayoutEngine) union(fields []types.Field, st *layoutState) (TypeLayout, error) {
	out := TypeLayout{Align: 1}
	for _, f := range fields {
		fl, err := e.layoutOf(f.Type, st)
		if err != nil {
			return TypeLayout{}, err
		}
		out.Fields = append(out.Fields, FieldSlot{Name: f.Name, Type: f.Type})
		out.Size = max(out.Size, fl.Size)
		out.Align = max(out.Align, fl.Align)
	}
	out.Size = alignTo(out.Size, out.Align)
	return out, nil
}

func alignTo(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

func mulSize(elem int, count uint32) (int, error) {
	n, err := safecast.Conv[int](count)
	if err != nil {
		return 0, err
	}
	if elem != 0 && n > (1<<62)/elem {
		return 0, fmt.Errorf("%d x %d bytes", n, elem)
	}
	return elem * n, nil
}
