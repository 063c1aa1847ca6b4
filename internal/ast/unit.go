package ast

import (
	"keel/internal/source"
)

// Unit is one parsed translation unit: the node arenas plus the top-level declarations
// in source order.
type Unit struct {
	Module string // name other units import it by
	Path   string
	Decls  []ItemID
	Items  *Items
	Stmts  *Stmts
	Exprs  *Exprs
	Types  *TypeExprs

	File source.FileID `msgpack:"-"`
}

// Hints are initial arena capacities; zero picks a default.
type Hints struct{ Items, Stmts, Exprs, Types uint }

func NewUnit(module, path string, hints Hints) *Unit {
	return &Unit{
		Module: module,
		Path:   path,
		Items:  NewItems(hints.Items),
		Stmts:  NewStmts(hints.Stmts),
		Exprs:  NewExprs(hints.Exprs),
		Types:  NewTypeExprs(hints.Types),
	}
}

// SetFile stamps every node span with the unit's file so diagnostics point at it.
func (u *Unit) SetFile(file source.FileID) {
	u.File = file
	for i := range u.Items.Arena.data {
		u.Items.Arena.data[i].Span.File = file
		for j := range u.Items.Arena.data[i].Params {
			u.Items.Arena.data[i].Params[j].Span.File = file
		}
	}
	for i := range u.Stmts.Arena.data {
		u.Stmts.Arena.data[i].Span.File = file
	}
	for i := range u.Exprs.Arena.data {
		u.Exprs.Arena.data[i].Span.File = file
	}
	for i := range u.Types.Arena.data {
		u.Types.Arena.data[i].Span.File = file
	}
}

// Imports lists the import items of the unit in source order.
func (u *Unit) Imports() []ItemID {
	var out []ItemID
	for _, id := range u.Decls {
		if it := u.Items.Get(id); it != nil && it.Kind == ItemImport {
			out = append(out, id)
		}
	}
	return out
}
