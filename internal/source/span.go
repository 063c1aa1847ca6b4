package source

import (
	"fmt"
)

// Span is a translation-unit-relative location. The parser reports line and column;
// the semantic passes only carry it around for diagnostics.
type Span struct {
	File FileID
	Line uint32 // 1-based, 0 when unknown
	Col  uint32 // 1-based, 0 when unknown
}

// Known reports whether the span carries a real position.
func (s Span) Known() bool {
	return s.Line != 0
}

// Pos returns the line/column pair of the span.
func (s Span) Pos() LineCol {
	return LineCol{Line: s.Line, Col: s.Col}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d", s.File, s.Line, s.Col)
}

// Before orders spans by file, then line, then column.
func (s Span) Before(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Line != other.Line {
		return s.Line < other.Line
	}
	return s.Col < other.Col
}
