package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types and a few frequent derivations.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Char    TypeID
	UChar   TypeID
	Short   TypeID
	UShort  TypeID
	Int     TypeID
	UInt    TypeID
	Long    TypeID
	ULong   TypeID
	Float   TypeID
	Double  TypeID
	VoidPtr TypeID
	CharPtr TypeID
}

// Interner canonicalises derived types: every structural descriptor maps to
// exactly one TypeID, so identity comparison is type equality. User types are
// nominal and never deduplicated.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	tupleIdx map[string]TypeID
	fnIdx    map[string]TypeID
	tuples   []TupleInfo
	fns      []FnInfo
	users    []UserInfo
	builtins Builtins
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Payload uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 64),
		tupleIdx: make(map[string]TypeID),
		fnIdx:    make(map[string]TypeID),
	}
	// reserve 0 as invalid sentinel in every side table
	in.tuples = append(in.tuples, TupleInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.users = append(in.users, UserInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.UChar = in.Intern(Type{Kind: KindUChar})
	in.builtins.Short = in.Intern(Type{Kind: KindShort})
	in.builtins.UShort = in.Intern(Type{Kind: KindUShort})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.UInt = in.Intern(Type{Kind: KindUInt})
	in.builtins.Long = in.Intern(Type{Kind: KindLong})
	in.builtins.ULong = in.Intern(Type{Kind: KindULong})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.Double = in.Intern(Type{Kind: KindDouble})
	in.builtins.VoidPtr = in.PointerTo(in.builtins.Void)
	in.builtins.CharPtr = in.PointerTo(in.builtins.Char)
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Primitive maps a source spelling to its builtin type.
func (in *Interner) Primitive(name string) (TypeID, bool) {
	b := in.builtins
	switch name {
	case "void":
		return b.Void, true
	case "bool":
		return b.Bool, true
	case "char":
		return b.Char, true
	case "uchar":
		return b.UChar, true
	case "short":
		return b.Short, true
	case "ushort":
		return b.UShort, true
	case "int":
		return b.Int, true
	case "uint":
		return b.UInt, true
	case "long":
		return b.Long, true
	case "ulong":
		return b.ULong, true
	case "float":
		return b.Float, true
	case "double":
		return b.Double, true
	}
	return NoTypeID, false
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[typeKey(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	if t.Kind != KindUser {
		in.index[typeKey(t)] = id
	}
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id, KindInvalid for unknown handles.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// Len returns the number of interned types including the sentinel.
func (in *Interner) Len() int { return len(in.types) }

func (in *Interner) PointerTo(elem TypeID) TypeID {
	if elem == NoTypeID {
		return NoTypeID
	}
	return in.Intern(Type{Kind: KindPointer, Elem: elem})
}

func (in *Interner) ArrayOf(elem TypeID, count uint32) TypeID {
	if elem == NoTypeID {
		return NoTypeID
	}
	return in.Intern(Type{Kind: KindArray, Elem: elem, Count: count})
}

func (in *Interner) DynArrayOf(elem TypeID) TypeID {
	if elem == NoTypeID {
		return NoTypeID
	}
	return in.Intern(Type{Kind: KindDynArray, Elem: elem})
}

// Elem returns the element type of a pointer or array.
func (in *Interner) Elem(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	switch tt.Kind {
	case KindPointer, KindArray, KindDynArray:
		return tt.Elem
	}
	return NoTypeID
}

// TupleInfo lists the members of a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// TupleOf returns the canonical tuple of elems; equal sequences share one ID.
func (in *Interner) TupleOf(elems ...TypeID) TypeID {
	key := idsKey(elems)
	if id, ok := in.tupleIdx[key]; ok {
		return id
	}
	slot := in.appendTuple(TupleInfo{Elems: append([]TypeID(nil), elems...)})
	id := in.internRaw(Type{Kind: KindTuple, Payload: slot})
	in.tupleIdx[key] = id
	return id
}

func (in *Interner) appendTuple(info TupleInfo) uint32 {
	n, err := safecast.Conv[uint32](len(in.tuples))
	if err != nil {
		panic(fmt.Errorf("tuple info overflow: %w", err))
	}
	in.tuples = append(in.tuples, info)
	return n
}

// TupleInfo returns member info for a tuple type.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple || int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

// FnInfo is a function signature. Receiver is set for methods.
type FnInfo struct {
	Result   TypeID
	Params   []TypeID
	Variadic bool
	Receiver TypeID
}

// FnOf returns the canonical function type.
func (in *Interner) FnOf(result TypeID, params []TypeID, variadic bool) TypeID {
	return in.MethodOf(NoTypeID, result, params, variadic)
}

// MethodOf returns the canonical function type with a receiver.
func (in *Interner) MethodOf(recv, result TypeID, params []TypeID, variadic bool) TypeID {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(recv), 10))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatUint(uint64(result), 10))
	sb.WriteByte('|')
	sb.WriteString(idsKey(params))
	if variadic {
		sb.WriteString("...")
	}
	key := sb.String()
	if id, ok := in.fnIdx[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	in.fns = append(in.fns, FnInfo{
		Result:   result,
		Params:   append([]TypeID(nil), params...),
		Variadic: variadic,
		Receiver: recv,
	})
	id := in.internRaw(Type{Kind: KindFn, Payload: n})
	in.fnIdx[key] = id
	return id
}

// FnInfo returns the signature of a function type.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

func idsKey(ids []TypeID) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}
