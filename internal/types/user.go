package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Field is a by-value member of a struct, union or class.
type Field struct {
	Name string
	Type TypeID
}

// UserInfo describes a nominal type. Decl is the owning declaration handle in the
// symbol table; two user types are the same type iff they are the same TypeID.
type UserInfo struct {
	Kind     UserKind
	Name     string
	Decl     uint32
	Base     TypeID
	Fields   []Field
	Resolved bool // members and base are known; layout may be queried
}

// RegisterUser creates a fresh nominal type. It is never deduplicated.
func (in *Interner) RegisterUser(kind UserKind, name string, decl uint32) TypeID {
	n, err := safecast.Conv[uint32](len(in.users))
	if err != nil {
		panic(fmt.Errorf("user info overflow: %w", err))
	}
	in.users = append(in.users, UserInfo{Kind: kind, Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindUser, Payload: n})
}

// UserInfo returns the mutable info of a user type.
func (in *Interner) UserInfo(id TypeID) (*UserInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindUser || int(tt.Payload) >= len(in.users) {
		return nil, false
	}
	return &in.users[tt.Payload], true
}

// SetUserBody records base and fields and marks the type resolved.
func (in *Interner) SetUserBody(id TypeID, base TypeID, fields []Field) {
	info, ok := in.UserInfo(id)
	if !ok {
		return
	}
	info.Base = base
	info.Fields = append([]Field(nil), fields...)
	info.Resolved = true
}

// IsUserKind reports whether id is a user type of kind k.
func (in *Interner) IsUserKind(id TypeID, k UserKind) bool {
	info, ok := in.UserInfo(id)
	return ok && info.Kind == k
}

// DerivesFrom reports whether derived has base among its transitive bases.
// A type does not derive from itself. The walk is bounded so a malformed
// inheritance cycle terminates.
func (in *Interner) DerivesFrom(derived, base TypeID) bool {
	cur := derived
	for range len(in.users) {
		info, ok := in.UserInfo(cur)
		if !ok || info.Base == NoTypeID {
			return false
		}
		if info.Base == base {
			return true
		}
		cur = info.Base
	}
	return false
}
