package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type. It doubles as the invalid type so that
// a failed resolution never leaks a usable handle.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar
	KindUChar
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindFloat
	KindDouble
	KindPointer
	KindArray    // static array, Count elements
	KindDynArray // pointer + runtime length
	KindTuple
	KindFn
	KindUser
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindVoid:     "void",
	KindBool:     "bool",
	KindChar:     "char",
	KindUChar:    "uchar",
	KindShort:    "short",
	KindUShort:   "ushort",
	KindInt:      "int",
	KindUInt:     "uint",
	KindLong:     "long",
	KindULong:    "ulong",
	KindFloat:    "float",
	KindDouble:   "double",
	KindPointer:  "pointer",
	KindArray:    "array",
	KindDynArray: "dynarray",
	KindTuple:    "tuple",
	KindFn:       "fn",
	KindUser:     "user",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsNumeric covers bool, the integer kinds and the floating kinds.
func (k Kind) IsNumeric() bool { return k >= KindBool && k <= KindDouble }

// IsInteger covers char through ulong (bool excluded).
func (k Kind) IsInteger() bool { return k >= KindChar && k <= KindULong }

func (k Kind) IsFloat() bool { return k == KindFloat || k == KindDouble }

// IsSigned reports signed integer and floating kinds.
func (k Kind) IsSigned() bool {
	switch k {
	case KindChar, KindShort, KindInt, KindLong, KindFloat, KindDouble:
		return true
	}
	return false
}

// PrimSize is the fixed byte size of a primitive kind; 0 for non-primitives.
func (k Kind) PrimSize() uint32 {
	switch k {
	case KindBool, KindChar, KindUChar:
		return 1
	case KindShort, KindUShort:
		return 2
	case KindInt, KindUInt, KindFloat:
		return 4
	case KindLong, KindULong, KindDouble:
		return 8
	}
	return 0
}

// UserKind is the flavour of a nominal user type.
type UserKind uint8

const (
	UserStruct UserKind = iota + 1
	UserUnion
	UserClass
	UserInterface
)

func (k UserKind) String() string {
	switch k {
	case UserStruct:
		return "struct"
	case UserUnion:
		return "union"
	case UserClass:
		return "class"
	case UserInterface:
		return "interface"
	default:
		return "user"
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // pointer, array, dynarray
	Count   uint32 // static array length
	Payload uint32 // index into tuple/fn/user info tables
}
