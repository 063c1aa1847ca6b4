package ast

type (
	// главные сущности
	ItemID     uint32
	StmtID     uint32
	ExprID     uint32
	TypeExprID uint32
)

const (
	NoItemID     ItemID     = 0
	NoStmtID     StmtID     = 0
	NoExprID     ExprID     = 0
	NoTypeExprID TypeExprID = 0
)

func (id ItemID) IsValid() bool     { return id != NoItemID }
func (id StmtID) IsValid() bool     { return id != NoStmtID }
func (id ExprID) IsValid() bool     { return id != NoExprID }
func (id TypeExprID) IsValid() bool { return id != NoTypeExprID }
