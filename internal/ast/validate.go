package ast

import "fmt"

// Validate checks that every node reachable from the declarations refers only
// to nodes that exist, and that no node is its own ancestor. Sharing a
// subtree between parents is allowed.
func (u *Unit) Validate() error {
	v := &validator{
		u:     u,
		items: make([]mark, u.Items.Arena.Len()+1),
		stmts: make([]mark, u.Stmts.Arena.Len()+1),
		exprs: make([]mark, u.Exprs.Arena.Len()+1),
		types: make([]mark, u.Types.Arena.Len()+1),
	}
	for _, id := range u.Decls {
		if !id.IsValid() {
			return fmt.Errorf("declaration list holds an empty item")
		}
		if err := v.item(id); err != nil {
			return err
		}
	}
	return nil
}

type mark uint8

const (
	unvisited mark = iota
	inProgress
	checked
)

type validator struct {
	u     *Unit
	items []mark
	stmts []mark
	exprs []mark
	types []mark
}

// enter returns done=true when the node was already checked.
func enter(marks []mark, id uint32, family string) (done bool, err error) {
	if int(id) >= len(marks) {
		return false, fmt.Errorf("%s %d out of range", family, id)
	}
	switch marks[id] {
	case inProgress:
		return false, fmt.Errorf("%s %d contains itself", family, id)
	case checked:
		return true, nil
	}
	marks[id] = inProgress
	return false, nil
}

func (v *validator) item(id ItemID) error {
	if !id.IsValid() {
		return nil
	}
	done, err := enter(v.items, uint32(id), "item")
	if done || err != nil {
		return err
	}
	it := v.u.Items.Get(id)
	if err := v.typeExpr(it.Type); err != nil {
		return err
	}
	if err := v.expr(it.Init); err != nil {
		return err
	}
	for _, p := range it.Params {
		if err := v.typeExpr(p.Type); err != nil {
			return err
		}
		if err := v.expr(p.Default); err != nil {
			return err
		}
	}
	if err := v.typeExpr(it.Result); err != nil {
		return err
	}
	if err := v.stmt(it.Body); err != nil {
		return err
	}
	if err := v.typeExpr(it.Base); err != nil {
		return err
	}
	for _, m := range it.Members {
		if !m.IsValid() {
			return fmt.Errorf("item %d has an empty member", id)
		}
		if err := v.item(m); err != nil {
			return err
		}
	}
	v.items[id] = checked
	return nil
}

func (v *validator) stmt(id StmtID) error {
	if !id.IsValid() {
		return nil
	}
	done, err := enter(v.stmts, uint32(id), "statement")
	if done || err != nil {
		return err
	}
	st := v.u.Stmts.Get(id)
	for _, s := range st.Body {
		if !s.IsValid() {
			return fmt.Errorf("statement %d has an empty child", id)
		}
		if err := v.stmt(s); err != nil {
			return err
		}
	}
	for _, s := range []StmtID{st.Then, st.Else, st.Init} {
		if err := v.stmt(s); err != nil {
			return err
		}
	}
	for _, e := range []ExprID{st.Cond, st.Post, st.Value} {
		if err := v.expr(e); err != nil {
			return err
		}
	}
	if err := v.item(st.Decl); err != nil {
		return err
	}
	v.stmts[id] = checked
	return nil
}

func (v *validator) expr(id ExprID) error {
	if !id.IsValid() {
		return nil
	}
	done, err := enter(v.exprs, uint32(id), "expression")
	if done || err != nil {
		return err
	}
	ex := v.u.Exprs.Get(id)
	if err := v.expr(ex.X); err != nil {
		return err
	}
	if err := v.expr(ex.Y); err != nil {
		return err
	}
	for _, a := range ex.Args {
		if !a.IsValid() {
			return fmt.Errorf("expression %d has an empty argument", id)
		}
		if err := v.expr(a); err != nil {
			return err
		}
	}
	if err := v.typeExpr(ex.Type); err != nil {
		return err
	}
	v.exprs[id] = checked
	return nil
}

func (v *validator) typeExpr(id TypeExprID) error {
	if !id.IsValid() {
		return nil
	}
	done, err := enter(v.types, uint32(id), "type expression")
	if done || err != nil {
		return err
	}
	te := v.u.Types.Get(id)
	if err := v.typeExpr(te.Elem); err != nil {
		return err
	}
	for _, e := range te.Elems {
		if err := v.typeExpr(e); err != nil {
			return err
		}
	}
	if err := v.expr(te.Len); err != nil {
		return err
	}
	v.types[id] = checked
	return nil
}
