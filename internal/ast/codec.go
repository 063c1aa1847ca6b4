package ast

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// UnitSchemaVersion is bumped whenever the encoded node layout changes.
const UnitSchemaVersion uint16 = 1

const unitMagic = "KAST"

// ErrSchemaMismatch is returned when a unit was written by an incompatible parser.
var ErrSchemaMismatch = errors.New("unit schema mismatch")

type unitEnvelope struct {
	Magic  string
	Schema uint16
	Unit   *Unit
}

// EncodeUnit writes u in the msgpack interchange format produced by the parser.
func EncodeUnit(w io.Writer, u *Unit) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&unitEnvelope{Magic: unitMagic, Schema: UnitSchemaVersion, Unit: u})
}

// DecodeUnit reads a unit written by EncodeUnit.
func DecodeUnit(r io.Reader) (*Unit, error) {
	var env unitEnvelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode unit: %w", err)
	}
	if env.Magic != unitMagic {
		return nil, fmt.Errorf("decode unit: bad magic %q", env.Magic)
	}
	if env.Schema != UnitSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, env.Schema, UnitSchemaVersion)
	}
	u := env.Unit
	if u == nil {
		return nil, fmt.Errorf("decode unit: empty payload")
	}
	// missing arenas decode as nil; normalise so lookups stay safe
	if u.Items == nil || u.Items.Arena == nil {
		u.Items = NewItems(0)
	}
	if u.Stmts == nil || u.Stmts.Arena == nil {
		u.Stmts = NewStmts(0)
	}
	if u.Exprs == nil || u.Exprs.Arena == nil {
		u.Exprs = NewExprs(0)
	}
	if u.Types == nil || u.Types.Arena == nil {
		u.Types = NewTypeExprs(0)
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("decode unit: %w", err)
	}
	return u, nil
}
