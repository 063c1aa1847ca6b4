package source

type (
	// FileID uniquely identifies a translation unit within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a translation unit.
	FileFlags uint8
)

// NoFileID marks spans that do not point into any unit (builtins, synthesized nodes).
const NoFileID FileID = 0

const (
	// FileVirtual indicates the unit was built in memory (tests, generated code).
	FileVirtual FileFlags = 1 << iota
	// FileImported marks units that were pulled in through an import rather than listed explicitly.
	FileImported
)

// File captures metadata for a single translation unit.
type File struct {
	ID    FileID
	Path  string
	Hash  [32]byte
	Flags FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
