package ast

// Op is the operator tag of unary and binary expressions.
type Op uint8

const (
	OpInvalid Op = iota

	// унарные
	OpNeg
	OpPlus
	OpNot
	OpBitNot
	OpDeref
	OpAddrOf
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec

	// бинарные
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLogAnd
	OpLogOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAssign

	// compound assignment, lowered to x = x op y
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpShlAssign
	OpShrAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign

	// x := y, lowered to x = (typeof x) y
	OpCoerceAssign
	// x as T, lowered to a cast
	OpAs
)

var opText = [...]string{
	OpInvalid: "<invalid>",
	OpNeg:     "-", OpPlus: "+", OpNot: "!", OpBitNot: "~",
	OpDeref: "*", OpAddrOf: "&",
	OpPreInc: "++", OpPreDec: "--", OpPostInc: "++", OpPostDec: "--",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpShl: "<<", OpShr: ">>",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^",
	OpLogAnd: "&&", OpLogOr: "||",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAssign:    "=",
	OpAddAssign: "+=", OpSubAssign: "-=", OpMulAssign: "*=", OpDivAssign: "/=", OpModAssign: "%=",
	OpShlAssign: "<<=", OpShrAssign: ">>=",
	OpAndAssign: "&=", OpOrAssign: "|=", OpXorAssign: "^=",
	OpCoerceAssign: ":=",
	OpAs:           "as",
}

func (op Op) String() string {
	if int(op) < len(opText) {
		return opText[op]
	}
	return opText[OpInvalid]
}

// CompoundBase maps a compound-assignment operator to its arithmetic operator.
func (op Op) CompoundBase() (Op, bool) {
	switch op {
	case OpAddAssign:
		return OpAdd, true
	case OpSubAssign:
		return OpSub, true
	case OpMulAssign:
		return OpMul, true
	case OpDivAssign:
		return OpDiv, true
	case OpModAssign:
		return OpMod, true
	case OpShlAssign:
		return OpShl, true
	case OpShrAssign:
		return OpShr, true
	case OpAndAssign:
		return OpBitAnd, true
	case OpOrAssign:
		return OpBitOr, true
	case OpXorAssign:
		return OpBitXor, true
	}
	return OpInvalid, false
}

func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

func (op Op) IsLogical() bool {
	return op == OpLogAnd || op == OpLogOr
}

// IsIntegral reports operators defined only on integer operands.
func (op Op) IsIntegral() bool {
	switch op {
	case OpMod, OpShl, OpShr, OpBitAnd, OpBitOr, OpBitXor:
		return true
	}
	return false
}
