package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Семантические
	SemaInfo                  Code = 3000
	SemaError                 Code = 3001
	SemaDuplicateSymbol       Code = 3002
	SemaUnresolvedSymbol      Code = 3005
	SemaDuplicateOverload     Code = 3006
	SemaNotAType              Code = 3007
	SemaAmbiguousOverload     Code = 3010
	SemaNoOverload            Code = 3011
	SemaTypeMismatch          Code = 3012
	SemaInvalidCast           Code = 3013
	SemaInvalidBase           Code = 3014
	SemaCyclicInheritance     Code = 3015
	SemaMissingConstructor    Code = 3016
	SemaUnknownMember         Code = 3017
	SemaMissingIfaceMethod    Code = 3018
	SemaNotCallable           Code = 3019
	SemaInvalidOperands       Code = 3020
	SemaInvalidIndex          Code = 3021
	SemaNotAssignable         Code = 3022
	SemaConstAssign           Code = 3023
	SemaBreakOutsideLoop      Code = 3024
	SemaContinueOutsideLoop   Code = 3025
	SemaCaseOutsideSwitch     Code = 3026
	SemaReturnMismatch        Code = 3027
	SemaMissingReturnValue    Code = 3028
	SemaDeleteNonPointer      Code = 3029
	SemaConditionNotScalar    Code = 3030
	SemaRecursiveUnsized      Code = 3031
	SemaSizeofUnsized         Code = 3032
	SemaNotAPackage           Code = 3033
	SemaVoidValue             Code = 3034
	SemaTruncatingCast        Code = 3035
	SemaOverride              Code = 3036
	SemaMissingDefault        Code = 3037

	// Внутренние
	IntInvariant     Code = 4000
	IntUnimplemented Code = 4001

	// Проектные
	ProjInfo          Code = 5000
	ProjMissingModule Code = 5001
	ProjImportCycle   Code = 5002
	ProjLoadError     Code = 5003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		SemaInfo:                "Semantic information",
		SemaError:               "Semantic error",
		SemaDuplicateSymbol:     "Redeclaration",
		SemaUnresolvedSymbol:    "Unresolved identifier",
		SemaDuplicateOverload:   "Overload duplicates an existing signature",
		SemaNotAType:            "Identifier does not name a type",
		SemaAmbiguousOverload:   "Ambiguous overload",
		SemaNoOverload:          "No matching overload",
		SemaTypeMismatch:        "Incompatible coercion",
		SemaInvalidCast:         "Invalid cast",
		SemaInvalidBase:         "Invalid inheritance",
		SemaCyclicInheritance:   "Cyclic inheritance",
		SemaMissingConstructor:  "Missing constructor",
		SemaUnknownMember:       "Unknown member",
		SemaMissingIfaceMethod:  "Type does not implement interface method",
		SemaNotCallable:         "Expression is not callable",
		SemaInvalidOperands:     "Invalid operands",
		SemaInvalidIndex:        "Invalid index expression",
		SemaNotAssignable:       "Expression is not assignable",
		SemaConstAssign:         "Assignment to const",
		SemaBreakOutsideLoop:    "break outside loop or switch",
		SemaContinueOutsideLoop: "continue outside loop",
		SemaCaseOutsideSwitch:   "case outside switch",
		SemaReturnMismatch:      "Return type mismatch",
		SemaMissingReturnValue:  "Missing return value",
		SemaDeleteNonPointer:    "delete of non-pointer",
		SemaConditionNotScalar:  "Condition is not a scalar",
		SemaRecursiveUnsized:    "recursive value type has infinite size",
		SemaSizeofUnsized:       "sizeof applied to unsized type",
		SemaNotAPackage:         "Identifier does not name a package",
		SemaVoidValue:           "void value used",
		SemaTruncatingCast:      "Cast truncates value",
		SemaOverride:            "Invalid override",
		SemaMissingDefault:      "Missing argument without default",
		IntInvariant:            "Compiler invariant violated",
		IntUnimplemented:        "Not implemented",
		ProjInfo:                "Project information",
		ProjMissingModule:       "Missing module",
		ProjImportCycle:         "Import cycle detected",
		ProjLoadError:           "Unit load error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("INT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
