package source

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet tracks the translation units of one compilation run.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates an empty set; ID 0 is reserved for NoFileID.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 1, 8),
		index: make(map[string]FileID),
	}
}

// Add registers a unit under path. Re-adding the same path returns the existing ID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	path = filepath.ToSlash(filepath.Clean(path))
	if id, ok := fs.index[path]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	fs.files = append(fs.files, File{
		ID:    id,
		Path:  path,
		Hash:  sha256.Sum256(content),
		Flags: flags,
	})
	fs.index[path] = id
	return id
}

// AddVirtual adds an in-memory unit.
func (fs *FileSet) AddVirtual(name string) FileID {
	return fs.Add(name, []byte(name), FileVirtual)
}

// Get returns the file metadata or nil for unknown IDs.
func (fs *FileSet) Get(id FileID) *File {
	if id == NoFileID || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup finds a unit by path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

// Path returns the unit path or "<unknown>".
func (fs *FileSet) Path(id FileID) string {
	if f := fs.Get(id); f != nil {
		return f.Path
	}
	return "<unknown>"
}

// Len reports the number of registered units.
func (fs *FileSet) Len() int { return len(fs.files) - 1 }
