package vtable

import (
	"keel/internal/symbols"
	"keel/internal/types"
)

// compatible reports whether impl can fill decl's slot: same name, same arity
// after the receiver, every declared parameter coerces to the implementing one,
// and the implementing result coerces to the declared result.
func (b *Builder) compatible(impl, decl symbols.FnID) bool {
	fi := b.t.Fns.Get(impl)
	fd := b.t.Fns.Get(decl)
	if fi == nil || fd == nil || fi.Name != fd.Name || fi.Variadic != fd.Variadic {
		return false
	}
	pi := b.paramTypes(fi)
	pd := b.paramTypes(fd)
	if len(pi) != len(pd) {
		return false
	}
	in := b.t.Types
	for k := range pi {
		if pi[k] != pd[k] && !in.CoercesTo(pd[k], pi[k]) {
			return false
		}
	}
	return fi.Result == fd.Result || in.CoercesTo(fi.Result, fd.Result)
}

// sameParams reports whether impl and decl take exactly the same parameters.
func (b *Builder) sameParams(impl, decl symbols.FnID) bool {
	fi := b.t.Fns.Get(impl)
	fd := b.t.Fns.Get(decl)
	if fi == nil || fd == nil || fi.Name != fd.Name || fi.Variadic != fd.Variadic {
		return false
	}
	pi := b.paramTypes(fi)
	pd := b.paramTypes(fd)
	if len(pi) != len(pd) {
		return false
	}
	for k := range pi {
		if pi[k] != pd[k] {
			return false
		}
	}
	return true
}

// overrideSlot picks the inherited slot m overrides: an exact parameter match
// first, then the first coercion-compatible one. Claimed slots are skipped.
// Returns -1 when m introduces a new slot.
func (b *Builder) overrideSlot(m symbols.FnID, inherited []symbols.FnID, claimed []bool) int {
	for i, decl := range inherited {
		if !claimed[i] && b.sameParams(m, decl) && b.compatible(m, decl) {
			return i
		}
	}
	for i, decl := range inherited {
		if !claimed[i] && b.compatible(m, decl) {
			return i
		}
	}
	return -1
}

// paramTypes drops the receiver.
func (b *Builder) paramTypes(fn *symbols.Fn) []types.TypeID {
	params := fn.Params
	if fn.IsMethod() && len(params) > 0 {
		params = params[1:]
	}
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		out[i] = b.t.Vars.Get(p).Type
	}
	return out
}
