package vtable

import (
	"testing"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/source"
	"keel/internal/symbols"
	"keel/internal/types"
)

type fixture struct {
	t   *symbols.Table
	bag *diag.Bag
	b   *Builder
}

func newFixture() *fixture {
	tbl := symbols.NewTable(symbols.Hints{}, nil, nil)
	bag := diag.NewBag(32)
	return &fixture{t: tbl, bag: bag, b: New(tbl, diag.BagReporter{Bag: bag})}
}

func (f *fixture) user(kind types.UserKind, name string, base symbols.UserID) symbols.UserID {
	id := f.t.Users.New(symbols.User{Name: f.t.Strings.Intern(name), Kind: kind, Base: base})
	typ := f.t.Types.RegisterUser(kind, name, uint32(id))
	baseType := types.NoTypeID
	if base.IsValid() {
		baseType = f.t.Users.Get(base).Type
	}
	f.t.Types.SetUserBody(typ, baseType, nil)
	f.t.Users.Get(id).Type = typ
	return id
}

// method adds `result name(params...)` with a receiver to owner.
func (f *fixture) method(owner symbols.UserID, name string, result types.TypeID, params ...types.TypeID) symbols.FnID {
	recv := f.t.Vars.New(symbols.Var{Name: f.t.Strings.Intern("this"), Param: true, Owner: owner,
		Type: f.t.Types.PointerTo(f.t.Users.Get(owner).Type)})
	ps := []symbols.VarID{recv}
	for _, p := range params {
		ps = append(ps, f.t.Vars.New(symbols.Var{Param: true, Type: p}))
	}
	fn := f.t.Fns.New(symbols.Fn{Name: f.t.Strings.Intern(name), Owner: owner, Params: ps, Result: result})
	u := f.t.Users.Get(owner)
	u.Methods = append(u.Methods, fn)
	return fn
}

func TestOverrideReusesSlot(t *testing.T) {
	f := newFixture()
	b := f.t.Types.Builtins()
	base := f.user(types.UserClass, "Shape", symbols.NoUserID)
	draw := f.method(base, "draw", b.Void)
	area := f.method(base, "area", b.Double)

	derived := f.user(types.UserClass, "Circle", base)
	drawCircle := f.method(derived, "draw", b.Void)

	baseSlots := f.b.Class(base)
	slots := f.b.Class(derived)
	if f.t.Fns.Get(draw).VIndex != 0 || f.t.Fns.Get(area).VIndex != 1 {
		t.Fatal("base methods take slots in declaration order")
	}
	if got := f.t.Fns.Get(drawCircle).VIndex; got != 0 {
		t.Fatalf("override recorded slot %d, want 0", got)
	}
	if len(slots) != len(baseSlots) {
		t.Fatalf("derived table has %d slots, base %d", len(slots), len(baseSlots))
	}
	if slots[0] != drawCircle || slots[1] != area {
		t.Fatalf("unexpected derived table %v", slots)
	}
}

func TestNewMethodsAppendAndOverloadsDoNotOverride(t *testing.T) {
	f := newFixture()
	b := f.t.Types.Builtins()
	base := f.user(types.UserClass, "A", symbols.NoUserID)
	f.method(base, "f", b.Void, b.Int)
	derived := f.user(types.UserClass, "B", base)
	fPtr := f.method(derived, "f", b.Void, b.VoidPtr)
	g := f.method(derived, "g", b.Void)

	slots := f.b.Class(derived)
	if len(slots) != 3 {
		t.Fatalf("want 3 slots, got %d", len(slots))
	}
	if f.t.Fns.Get(fPtr).VIndex != 1 || f.t.Fns.Get(g).VIndex != 2 {
		t.Fatal("non-matching methods must be appended")
	}
}

func TestOwnOverloadsGetDistinctSlots(t *testing.T) {
	f := newFixture()
	b := f.t.Types.Builtins()
	cls := f.user(types.UserClass, "A", symbols.NoUserID)
	fInt := f.method(cls, "f", b.Void, b.Int)
	fLong := f.method(cls, "f", b.Void, b.Long)

	slots := f.b.Class(cls)
	if len(slots) != 2 {
		t.Fatalf("want 2 slots, got %d", len(slots))
	}
	if f.t.Fns.Get(fInt).VIndex != 0 || f.t.Fns.Get(fLong).VIndex != 1 {
		t.Fatalf("overloads share a slot: %v", slots)
	}
	if slots[0] != fInt || slots[1] != fLong {
		t.Fatalf("unexpected table %v", slots)
	}
}

func TestOverridePrefersExactParameters(t *testing.T) {
	f := newFixture()
	b := f.t.Types.Builtins()
	base := f.user(types.UserClass, "A", symbols.NoUserID)
	baseInt := f.method(base, "f", b.Void, b.Int)
	f.method(base, "f", b.Void, b.Long)
	derived := f.user(types.UserClass, "B", base)
	fLong := f.method(derived, "f", b.Void, b.Long)

	slots := f.b.Class(derived)
	if len(slots) != 2 {
		t.Fatalf("want 2 slots, got %d", len(slots))
	}
	if got := f.t.Fns.Get(fLong).VIndex; got != 1 {
		t.Fatalf("override took slot %d, want 1", got)
	}
	if slots[0] != baseInt || slots[1] != fLong {
		t.Fatalf("unexpected derived table %v", slots)
	}
}

func TestStaticMethodsStayOutOfTable(t *testing.T) {
	f := newFixture()
	b := f.t.Types.Builtins()
	cls := f.user(types.UserClass, "A", symbols.NoUserID)
	st := f.t.Fns.New(symbols.Fn{Name: f.t.Strings.Intern("make"), Owner: cls, Flags: ast.FnStatic, Result: b.Int})
	u := f.t.Users.Get(cls)
	u.Methods = append(u.Methods, st)
	if len(f.b.Class(cls)) != 0 {
		t.Fatal("static methods have no slot")
	}
}

func TestInterfacePairTablesAreCached(t *testing.T) {
	f := newFixture()
	b := f.t.Types.Builtins()
	iface := f.user(types.UserInterface, "Drawable", symbols.NoUserID)
	f.method(iface, "size", b.Int)
	f.method(iface, "draw", b.Void)

	cls := f.user(types.UserClass, "Box", symbols.NoUserID)
	draw := f.method(cls, "draw", b.Void)
	size := f.method(cls, "size", b.Int)

	tbl := f.b.ForPair(iface, cls, source.Span{})
	if !tbl.Complete || tbl.Slots[0] != size || tbl.Slots[1] != draw {
		t.Fatalf("unexpected pair table %+v", tbl)
	}
	if f.b.ForPair(iface, cls, source.Span{}) != tbl {
		t.Fatal("pair table must be cached")
	}
	// the class's own table keeps declaration order
	if f.t.Fns.Get(draw).VIndex != 0 {
		t.Fatal("class slots are independent of interface slots")
	}
}

func TestMissingInterfaceMethodIsReportedOnce(t *testing.T) {
	f := newFixture()
	b := f.t.Types.Builtins()
	iface := f.user(types.UserInterface, "Named", symbols.NoUserID)
	f.method(iface, "name", b.CharPtr)
	st := f.user(types.UserStruct, "Anon", symbols.NoUserID)

	tbl := f.b.ForPair(iface, st, source.Span{Line: 4})
	f.b.ForPair(iface, st, source.Span{Line: 9})
	if tbl.Complete {
		t.Fatal("table must be marked incomplete")
	}
	if f.bag.Len() != 1 || f.bag.Items()[0].Code != diag.SemaMissingIfaceMethod {
		t.Fatalf("unexpected diagnostics %v", f.bag.Items())
	}
	if len(f.b.Pairs()) != 1 {
		t.Fatal("pair must be listed once")
	}
}
