package types

import (
	"strconv"
	"strings"
)

// Label renders a type the way it is spelled in source, for diagnostics.
func (in *Interner) Label(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindPointer:
		return in.Label(tt.Elem) + "*"
	case KindArray:
		return in.Label(tt.Elem) + "[" + strconv.FormatUint(uint64(tt.Count), 10) + "]"
	case KindDynArray:
		return in.Label(tt.Elem) + "[]"
	case KindTuple:
		info, _ := in.TupleInfo(id)
		return "(" + in.labels(info.Elems) + ")"
	case KindFn:
		info, _ := in.FnInfo(id)
		var sb strings.Builder
		sb.WriteString("fn")
		if info.Receiver != NoTypeID {
			sb.WriteString(" " + in.Label(info.Receiver) + ".")
		}
		sb.WriteString("(" + in.labels(info.Params))
		if info.Variadic {
			if len(info.Params) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
		sb.WriteString(") " + in.Label(info.Result))
		return sb.String()
	case KindUser:
		info, _ := in.UserInfo(id)
		return info.Name
	}
	return tt.Kind.String()
}

func (in *Interner) labels(ids []TypeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = in.Label(id)
	}
	return strings.Join(parts, ", ")
}
