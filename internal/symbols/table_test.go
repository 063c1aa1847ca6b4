package symbols

import (
	"errors"
	"testing"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/source"
)

func newTestTable() *Table {
	return NewTable(Hints{}, nil, nil)
}

func TestLookupPrefersBoundParentOverLocalUnknown(t *testing.T) {
	tbl := newTestTable()
	root := tbl.Scopes.New(ScopeUnit, NoScopeID, ScopeOwner{}, source.Span{})
	inner := tbl.Scopes.New(ScopeBlock, root, ScopeOwner{}, source.Span{})
	name := tbl.Strings.Intern("f")

	use := tbl.Get(inner, name, source.Span{Line: 2})
	if tbl.Symbols.Get(use).Bound() {
		t.Fatal("forward use must start Unknown")
	}
	if tbl.Symbols.Get(use).Scope != inner {
		t.Fatal("Unknown identifier must live in the scope of the use")
	}

	decl := tbl.Local(root, name, source.Span{Line: 5})
	v := tbl.Vars.New(Var{Name: name})
	if err := tbl.Bind(decl, VarRef{ID: v}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got := tbl.Lookup(inner, name, false); got != decl {
		t.Fatalf("lookup returned %d, want parent's %d", got, decl)
	}
	if got := tbl.ResolveIdentifier(use); got != decl {
		t.Fatalf("ResolveIdentifier = %d, want %d", got, decl)
	}
	// memoised
	if tbl.Symbols.Get(use).Target != decl {
		t.Fatal("resolution should be recorded on the Unknown identifier")
	}
}

func TestSiblingLookupIsOneHop(t *testing.T) {
	tbl := newTestTable()
	a := tbl.Scopes.New(ScopeUnit, NoScopeID, ScopeOwner{}, source.Span{})
	b := tbl.Scopes.New(ScopeUnit, NoScopeID, ScopeOwner{}, source.Span{})
	c := tbl.Scopes.New(ScopeUnit, NoScopeID, ScopeOwner{}, source.Span{})
	tbl.Scopes.AddSibling(a, b)
	tbl.Scopes.AddSibling(b, c)

	inB := tbl.Strings.Intern("fromB")
	inC := tbl.Strings.Intern("fromC")
	bind := func(scope ScopeID, name source.StringID) SymbolID {
		id := tbl.Local(scope, name, source.Span{})
		if err := tbl.Bind(id, VarRef{ID: tbl.Vars.New(Var{Name: name})}); err != nil {
			t.Fatal(err)
		}
		return id
	}
	want := bind(b, inB)
	bind(c, inC)

	if got := tbl.Lookup(a, inB, true); got != want {
		t.Fatalf("sibling lookup = %d, want %d", got, want)
	}
	if got := tbl.Lookup(a, inB, false); got.IsValid() {
		t.Fatal("siblings must be ignored when not requested")
	}
	if got := tbl.Lookup(a, inC, true); got.IsValid() {
		t.Fatal("siblings of siblings must not be visible")
	}
}

func TestBindRules(t *testing.T) {
	tbl := newTestTable()
	root := tbl.Scopes.New(ScopeUnit, NoScopeID, ScopeOwner{}, source.Span{})
	name := tbl.Strings.Intern("x")
	id := tbl.Local(root, name, source.Span{})

	ext := tbl.Vars.New(Var{Name: name, Flags: ast.VarExternal})
	if err := tbl.Bind(id, VarRef{ID: ext}); err != nil {
		t.Fatal(err)
	}
	def := tbl.Vars.New(Var{Name: name})
	if err := tbl.Bind(id, VarRef{ID: def}); err != nil {
		t.Fatalf("an external declaration may be completed: %v", err)
	}
	again := tbl.Vars.New(Var{Name: name})
	if err := tbl.Bind(id, VarRef{ID: again}); !errors.Is(err, ErrRedefinition) {
		t.Fatalf("expected ErrRedefinition, got %v", err)
	}
	if err := tbl.Bind(id, FnRef{Head: tbl.Fns.New(Fn{Name: name})}); !errors.Is(err, ErrKindChange) {
		t.Fatalf("expected ErrKindChange, got %v", err)
	}
}

func TestFunctionsChainIntoOverloads(t *testing.T) {
	tbl := newTestTable()
	root := tbl.Scopes.New(ScopeUnit, NoScopeID, ScopeOwner{}, source.Span{})
	name := tbl.Strings.Intern("f")
	id := tbl.Local(root, name, source.Span{})

	var fns []FnID
	for range 3 {
		fn := tbl.Fns.New(Fn{Name: name})
		fns = append(fns, fn)
		if err := tbl.Bind(id, FnRef{Head: fn}); err != nil {
			t.Fatal(err)
		}
	}
	head := tbl.Symbols.Get(id).Payload.(FnRef).Head
	chain := tbl.Fns.Chain(head)
	if len(chain) != 3 || chain[0] != fns[0] || chain[2] != fns[2] {
		t.Fatalf("unexpected chain %v", chain)
	}
	tbl.RemoveOverload(&head, fns[1])
	if got := tbl.Fns.Chain(head); len(got) != 2 || got[1] != fns[2] {
		t.Fatalf("unexpected chain after removal %v", got)
	}
	if tbl.Fns.Get(fns[0]).VIndex != NoVIndex {
		t.Fatal("new functions start without a dispatch slot")
	}
}

func TestDeclareUnitForwardReference(t *testing.T) {
	b := ast.NewBuilder("main", "main.k")
	i := b.Named("int")
	// int g() { return f(); }   int f() { return 1; }
	g := b.Fn(ast.FnSpec{Name: "g", Result: i, Body: b.Block(b.Return(b.Call(b.Ident("f"))))})
	f := b.Fn(ast.FnSpec{Name: "f", Result: b.Named("int"), Body: b.Block(b.Return(b.Int(1)))})
	b.Decl(g, f)

	tbl := newTestTable()
	bag := diag.NewBag(16)
	info := tbl.DeclareUnit(b.Unit, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}

	var use SymbolID
	for _, sym := range info.Idents {
		use = sym
	}
	if tbl.Symbols.Get(use).Bound() {
		t.Fatal("f must be Unknown where g's body was walked")
	}
	resolved := tbl.ResolveIdentifier(use)
	if resolved != info.Items[f] {
		t.Fatalf("f resolved to %d, want %d", resolved, info.Items[f])
	}
	if tbl.Symbols.Get(resolved).Kind() != KindFunction {
		t.Fatalf("unexpected kind %s", tbl.Symbols.Get(resolved).Kind())
	}
}

func TestDeclareUnitReportsRedeclaration(t *testing.T) {
	b := ast.NewBuilder("main", "main.k")
	i := b.Named("int")
	b.At(1, 1)
	first := b.Var("x", i, ast.NoExprID)
	b.At(2, 1)
	second := b.Var("x", i, ast.NoExprID)
	b.At(3, 1)
	fn := b.Fn(ast.FnSpec{Name: "x"})
	b.Decl(first, second, fn)

	tbl := newTestTable()
	bag := diag.NewBag(16)
	tbl.DeclareUnit(b.Unit, diag.BagReporter{Bag: bag})
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", bag.Len(), bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.SemaDuplicateSymbol {
			t.Fatalf("unexpected code %s", d.Code.ID())
		}
	}
}

func TestDeclareUnitMembersAndLabels(t *testing.T) {
	b := ast.NewBuilder("main", "main.k")
	i := b.Named("int")
	field := b.Var("n", i, ast.NoExprID)
	body := b.Block(b.Goto("done"), b.Label("done"), b.Return(b.Ident("n")))
	method := b.Fn(ast.FnSpec{Name: "get", Result: b.Named("int"), Body: body})
	ctor := b.Fn(ast.FnSpec{Name: "Counter", Flags: ast.FnConstructor, Body: b.Block()})
	cls := b.Type(ast.UserClass, "Counter", ast.NoTypeExprID, field, method, ctor)
	b.Decl(cls)

	tbl := newTestTable()
	bag := diag.NewBag(16)
	info := tbl.DeclareUnit(b.Unit, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	user := tbl.Users.Get(info.Users[cls])
	if len(user.Fields) != 1 || len(user.Methods) != 1 || !user.Ctor.IsValid() {
		t.Fatalf("unexpected members: fields=%d methods=%d ctor=%d", len(user.Fields), len(user.Methods), user.Ctor)
	}
	get := tbl.Fns.Get(user.Methods[0])
	if len(get.Params) != 1 || tbl.Strings.MustLookup(tbl.Vars.Get(get.Params[0]).Name) != "this" {
		t.Fatal("methods take an implicit receiver")
	}
	for _, lbl := range info.Labels {
		if tbl.Symbols.Get(lbl).Kind() != KindLabel {
			t.Fatal("goto target must be bound to the label")
		}
	}
	if tbl.EnclosingUser(get.Scope) != info.Users[cls] {
		t.Fatal("method scope must see its class")
	}
}
