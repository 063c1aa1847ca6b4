package symbols

type (
	// ScopeID identifies a scope in the table arena.
	ScopeID uint32
	// SymbolID identifies an identifier in the table arena.
	SymbolID uint32
	// VarID, FnID and UserID identify declarations.
	VarID  uint32
	FnID   uint32
	UserID uint32
)

const (
	NoScopeID  ScopeID  = 0
	NoSymbolID SymbolID = 0
	NoVarID    VarID    = 0
	NoFnID     FnID     = 0
	NoUserID   UserID   = 0
)

func (id ScopeID) IsValid() bool  { return id != NoScopeID }
func (id SymbolID) IsValid() bool { return id != NoSymbolID }
func (id VarID) IsValid() bool    { return id != NoVarID }
func (id FnID) IsValid() bool     { return id != NoFnID }
func (id UserID) IsValid() bool   { return id != NoUserID }
