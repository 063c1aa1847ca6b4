package layout

import (
	"fmt"
	"strings"

	"keel/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a type that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrUnresolved indicates a user type whose declaration was never completed.
	LayoutErrUnresolved
	// LayoutErrInvalid indicates the invalid type or an unknown handle.
	LayoutErrInvalid
	// LayoutErrOverflow indicates a size that does not fit.
	LayoutErrOverflow
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Cycle []types.TypeID // for LayoutErrRecursiveUnsized
	Err   error          // for LayoutErrOverflow
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		parts := make([]string, 0, len(e.Cycle))
		for _, id := range e.Cycle {
			parts = append(parts, fmt.Sprintf("type#%d", id))
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(parts, " -> "))
	case LayoutErrUnresolved:
		return fmt.Sprintf("layout of unresolved type#%d", e.Type)
	case LayoutErrInvalid:
		return fmt.Sprintf("layout of invalid type#%d", e.Type)
	case LayoutErrOverflow:
		return fmt.Sprintf("size of type#%d overflows: %v", e.Type, e.Err)
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}

func (e *LayoutError) Unwrap() error { return e.Err }
