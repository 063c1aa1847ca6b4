package types

// Priority ranks a type for binary-operand promotion; the operand with the higher
// priority decides the result type. The order is fixed and total over kinds:
//
//	user > tuple > array > pointer > bool > uchar > char > ushort > short >
//	uint > int > ulong > long > float > double
//
// Static and dynamic arrays share a rank; function values rank with pointers.
func (in *Interner) Priority(id TypeID) int {
	switch in.KindOf(id) {
	case KindUser:
		return 14
	case KindTuple:
		return 13
	case KindArray, KindDynArray:
		return 12
	case KindPointer, KindFn:
		return 11
	case KindBool:
		return 10
	case KindUChar:
		return 9
	case KindChar:
		return 8
	case KindUShort:
		return 7
	case KindShort:
		return 6
	case KindUInt:
		return 5
	case KindInt:
		return 4
	case KindULong:
		return 3
	case KindLong:
		return 2
	case KindFloat:
		return 1
	case KindDouble:
		return 0
	}
	return -1
}

// Promote returns the result type of a binary expression over a and b.
// Operands of equal priority keep the left operand's type.
func (in *Interner) Promote(a, b TypeID) TypeID {
	if a == b {
		return a
	}
	if in.Priority(b) > in.Priority(a) {
		return b
	}
	return a
}

// VariadicPromote applies the C default argument promotions to an argument
// bound to a variadic tail: float -> double, integers narrower than int -> int,
// char arrays -> char*, other arrays -> element pointer.
func (in *Interner) VariadicPromote(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindFloat:
		return in.builtins.Double
	case KindBool, KindChar, KindUChar, KindShort, KindUShort:
		return in.builtins.Int
	case KindArray, KindDynArray:
		return in.PointerTo(tt.Elem)
	}
	return id
}
