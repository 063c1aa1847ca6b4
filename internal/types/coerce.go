package types

// CoercesTo reports whether a value of type from converts implicitly to type to,
// as at assignment and argument binding sites.
func (in *Interner) CoercesTo(from, to TypeID) bool {
	if from == NoTypeID || to == NoTypeID {
		return false
	}
	if from == to {
		return true
	}
	a, _ := in.Lookup(from)
	b, _ := in.Lookup(to)

	switch {
	case a.Kind.IsNumeric() && b.Kind.IsNumeric():
		return true
	case a.Kind == KindPointer && b.Kind == KindPointer:
		return in.pointerCoerces(a, b)
	case a.Kind == KindArray && b.Kind == KindPointer:
		return b.Elem == a.Elem || b.Elem == in.builtins.Void
	case a.Kind == KindArray && b.Kind == KindDynArray:
		return in.elemCompatible(a.Elem, b.Elem)
	case a.Kind == KindTuple:
		return in.tupleCoerces(from, to, in.CoercesTo)
	case a.Kind == KindUser && b.Kind == KindUser:
		return in.DerivesFrom(from, to)
	}
	return false
}

// pointerCoerces: void* converts both ways with any pointer, and a pointer to a
// derived struct/class converts to a pointer to any of its bases.
func (in *Interner) pointerCoerces(a, b Type) bool {
	void := in.builtins.Void
	if a.Elem == void || b.Elem == void {
		return true
	}
	return in.DerivesFrom(a.Elem, b.Elem)
}

// elemCompatible is identity, or void* meeting another pointer.
func (in *Interner) elemCompatible(a, b TypeID) bool {
	if a == b {
		return true
	}
	ta, _ := in.Lookup(a)
	tb, _ := in.Lookup(b)
	return ta.Kind == KindPointer && tb.Kind == KindPointer && in.pointerCoerces(ta, tb)
}

// tupleCoerces accepts a tuple or static array of the same arity whose members
// pairwise satisfy rel.
func (in *Interner) tupleCoerces(from, to TypeID, rel func(a, b TypeID) bool) bool {
	src, ok := in.TupleInfo(from)
	if !ok {
		return false
	}
	tt, _ := in.Lookup(to)
	switch tt.Kind {
	case KindTuple:
		dst, _ := in.TupleInfo(to)
		if len(dst.Elems) != len(src.Elems) {
			return false
		}
		for i, e := range src.Elems {
			if !rel(e, dst.Elems[i]) {
				return false
			}
		}
		return true
	case KindArray:
		if int(tt.Count) != len(src.Elems) {
			return false
		}
		for _, e := range src.Elems {
			if !rel(e, tt.Elem) {
				return false
			}
		}
		return true
	}
	return false
}

// CastsTo reports whether an explicit cast from -> to is legal. Numeric and
// pointer reinterpretation is permissive; aggregates are restricted. A cast from
// a base class to a derived class is accepted as an unchecked down-cast, and a
// class (or pointer to class) may be cast to an interface it is checked against
// at the cast site.
func (in *Interner) CastsTo(from, to TypeID) bool {
	if in.CoercesTo(from, to) {
		return true
	}
	if from == NoTypeID || to == NoTypeID {
		return false
	}
	a, _ := in.Lookup(from)
	b, _ := in.Lookup(to)

	switch {
	case b.Kind == KindVoid:
		return true
	case a.Kind == KindPointer && b.Kind == KindPointer,
		a.Kind == KindPointer && b.Kind == KindFn,
		a.Kind == KindFn && b.Kind == KindPointer:
		return true
	case a.Kind == KindPointer && (b.Kind.IsInteger() || b.Kind == KindBool),
		(a.Kind.IsInteger() || a.Kind == KindBool) && b.Kind == KindPointer:
		return true
	case a.Kind == KindArray && b.Kind == KindPointer:
		return true
	case a.Kind == KindDynArray && b.Kind == KindPointer:
		return in.Elem(from) == b.Elem || b.Elem == in.builtins.Void
	case a.Kind == KindTuple:
		return in.tupleCoerces(from, to, in.CastsTo)
	case a.Kind == KindUser && b.Kind == KindUser:
		if in.DerivesFrom(to, from) {
			return true
		}
		return in.IsUserKind(to, UserInterface) && in.IsUserKind(from, UserClass)
	}
	if a.Kind == KindPointer && b.Kind == KindUser && in.IsUserKind(to, UserInterface) {
		return in.IsUserKind(a.Elem, UserClass)
	}
	return false
}

// Truncates reports an explicit numeric cast that drops range: a narrower
// target, or floating point to integer.
func (in *Interner) Truncates(from, to TypeID) bool {
	a := in.KindOf(from)
	b := in.KindOf(to)
	if !a.IsNumeric() || !b.IsNumeric() {
		return false
	}
	if a.IsFloat() && !b.IsFloat() {
		return true
	}
	return b.PrimSize() < a.PrimSize()
}
