package types

import (
	"testing"

	"github.com/nalgeon/be"
)

var numericKinds = []Kind{
	KindBool, KindChar, KindUChar, KindShort, KindUShort,
	KindInt, KindUInt, KindLong, KindULong, KindFloat, KindDouble,
}

func TestDerivedTypesAreCanonical(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	be.Equal(t, in.PointerTo(b.Int), in.PointerTo(b.Int))
	be.Equal(t, in.ArrayOf(b.Int, 5), in.ArrayOf(b.Int, 5))
	be.True(t, in.ArrayOf(b.Int, 5) != in.ArrayOf(b.Int, 6))
	be.Equal(t, in.DynArrayOf(b.Char), in.DynArrayOf(b.Char))

	elems := []TypeID{b.Int, in.PointerTo(b.Char)}
	t1 := in.TupleOf(elems...)
	t2 := in.TupleOf(b.Int, in.PointerTo(b.Char))
	be.Equal(t, t1, t2)
	be.True(t, in.TupleOf(b.Char, b.Int) != t1)

	f1 := in.FnOf(b.Void, []TypeID{b.Int}, false)
	be.Equal(t, f1, in.FnOf(b.Void, []TypeID{b.Int}, false))
	be.True(t, f1 != in.FnOf(b.Void, []TypeID{b.Int}, true))
}

func TestUserTypesAreNominal(t *testing.T) {
	in := NewInterner()
	a := in.RegisterUser(UserStruct, "P", 1)
	b := in.RegisterUser(UserStruct, "P", 2)
	be.True(t, a != b)
	be.True(t, !in.CoercesTo(a, b))
	be.True(t, !in.CoercesTo(in.Builtins().Int, a))
}

func TestNumericCoercionIsUnconditional(t *testing.T) {
	in := NewInterner()
	for _, ka := range numericKinds {
		for _, kb := range numericKinds {
			a := in.Intern(Type{Kind: ka})
			b := in.Intern(Type{Kind: kb})
			if !in.CoercesTo(a, b) {
				t.Fatalf("%s should coerce to %s", ka, kb)
			}
		}
	}
}

func TestVoidPointerCoercesBothWays(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	user := in.RegisterUser(UserClass, "C", 1)
	for _, p := range []TypeID{
		in.PointerTo(b.Int),
		in.PointerTo(in.PointerTo(b.Char)),
		in.PointerTo(user),
		in.PointerTo(in.TupleOf(b.Int, b.Int)),
	} {
		be.True(t, in.CoercesTo(b.VoidPtr, p))
		be.True(t, in.CoercesTo(p, b.VoidPtr))
	}
	be.True(t, !in.CoercesTo(in.PointerTo(b.Int), in.PointerTo(b.Long)))
}

func TestArrayAndTupleCoercion(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	arr := in.ArrayOf(b.Int, 3)

	be.True(t, in.CoercesTo(arr, in.PointerTo(b.Int)))
	be.True(t, in.CoercesTo(arr, in.DynArrayOf(b.Int)))
	be.True(t, !in.CoercesTo(arr, in.DynArrayOf(b.Long)))
	be.True(t, !in.CoercesTo(arr, in.PointerTo(b.Char)))

	tup := in.TupleOf(b.Int, b.Char, b.Short)
	be.True(t, in.CoercesTo(tup, arr))
	be.True(t, in.CoercesTo(tup, in.TupleOf(b.Long, b.Long, b.Long)))
	be.True(t, !in.CoercesTo(tup, in.ArrayOf(b.Int, 2)))
	be.True(t, !in.CoercesTo(in.TupleOf(b.Int, b.VoidPtr), in.TupleOf(b.Int, b.Int)))
}

func TestClassCoercesToBase(t *testing.T) {
	in := NewInterner()
	base := in.RegisterUser(UserClass, "Shape", 1)
	mid := in.RegisterUser(UserClass, "Poly", 2)
	leaf := in.RegisterUser(UserClass, "Square", 3)
	in.SetUserBody(base, NoTypeID, nil)
	in.SetUserBody(mid, base, nil)
	in.SetUserBody(leaf, mid, nil)

	be.True(t, in.CoercesTo(leaf, base))
	be.True(t, in.CoercesTo(in.PointerTo(leaf), in.PointerTo(base)))
	be.True(t, !in.CoercesTo(base, leaf))
	be.True(t, in.CastsTo(base, leaf))
	be.True(t, in.CastsTo(in.PointerTo(base), in.PointerTo(leaf)))
}

func TestCastRules(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	iface := in.RegisterUser(UserInterface, "Drawable", 1)
	cls := in.RegisterUser(UserClass, "Box", 2)
	st := in.RegisterUser(UserStruct, "Pt", 3)

	be.True(t, in.CastsTo(b.Long, in.PointerTo(b.Int)))
	be.True(t, in.CastsTo(in.PointerTo(b.Int), in.PointerTo(b.Double)))
	be.True(t, in.CastsTo(cls, iface))
	be.True(t, in.CastsTo(in.PointerTo(cls), iface))
	be.True(t, !in.CastsTo(st, iface))
	be.True(t, !in.CastsTo(b.Int, st))
	be.True(t, in.Truncates(b.Long, b.Short))
	be.True(t, in.Truncates(b.Double, b.Long))
	be.True(t, !in.Truncates(b.Int, b.Long))
}

func TestPromotionFollowsPriority(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	order := []TypeID{
		in.RegisterUser(UserStruct, "S", 1),
		in.TupleOf(b.Int),
		in.ArrayOf(b.Int, 2),
		b.VoidPtr,
		b.Bool, b.UChar, b.Char, b.UShort, b.Short,
		b.UInt, b.Int, b.ULong, b.Long, b.Float, b.Double,
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			hi, lo := order[i], order[j]
			if in.Priority(lo) >= in.Priority(hi) {
				t.Fatalf("priority(%s) must be below priority(%s)", in.Label(lo), in.Label(hi))
			}
			be.Equal(t, in.Promote(lo, hi), hi)
			be.Equal(t, in.Promote(hi, lo), hi)
		}
	}
}

func TestVariadicPromote(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	be.Equal(t, in.VariadicPromote(b.Float), b.Double)
	be.Equal(t, in.VariadicPromote(b.Short), b.Int)
	be.Equal(t, in.VariadicPromote(b.Long), b.Long)
	be.Equal(t, in.VariadicPromote(in.ArrayOf(b.Char, 6)), b.CharPtr)
}

func TestLabel(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	be.Equal(t, in.Label(in.PointerTo(in.ArrayOf(b.Int, 4))), "int[4]*")
	be.Equal(t, in.Label(in.TupleOf(b.Int, b.CharPtr)), "(int, char*)")
	be.Equal(t, in.Label(in.FnOf(b.Void, []TypeID{b.Int}, true)), "fn(int, ...) void")
}
