package symbols

import (
	"keel/internal/ast"
	"keel/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeUnit               // root of a translation unit
	ScopeType               // member scope of a struct/union/class/interface
	ScopeFunction           // parameters and labels
	ScopeBlock              // compound statement or loop header
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUnit:
		return "unit"
	case ScopeType:
		return "type"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// ScopeOwner references the AST construct that opened the scope.
type ScopeOwner struct {
	Unit *ast.Unit
	Item ast.ItemID
	Stmt ast.StmtID
	User UserID // member scopes
}

// Scope is one node of the scope tree. Each name maps to exactly one identifier;
// Siblings are imported unit roots, probed one hop deep and only as a fallback.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Owner    ScopeOwner
	Span     source.Span
	Names    map[source.StringID]SymbolID
	Symbols  []SymbolID // declaration order, for deterministic walks
	Siblings []ScopeID
	Children []ScopeID
}

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	a *arena[Scope]
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	return &Scopes{a: newArena[Scope]("scopes", capacity)}
}

// New allocates a new scope and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner ScopeOwner, span source.Span) ScopeID {
	id := ScopeID(s.a.push(Scope{
		Kind:   kind,
		Parent: parent,
		Owner:  owner,
		Span:   span,
		Names:  make(map[source.StringID]SymbolID),
	}))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	return s.a.get(uint32(id))
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return s.a.Len() }

// AddSibling links an imported root non-recursively. Self links and duplicates
// are ignored.
func (s *Scopes) AddSibling(scope, sibling ScopeID) {
	sc := s.Get(scope)
	if sc == nil || !sibling.IsValid() || scope == sibling {
		return
	}
	for _, have := range sc.Siblings {
		if have == sibling {
			return
		}
	}
	sc.Siblings = append(sc.Siblings, sibling)
}
