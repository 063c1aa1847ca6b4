package driver

import (
	"crypto/sha256"

	"keel/internal/source"
)

// Digest identifies the exact inputs an export was produced from.
type Digest [32]byte

// combineDigest: H(d1 || d2 ...). Порядок входов важен.
func combineDigest(parts ...[32]byte) Digest {
	h := sha256.New()
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// InputDigest hashes the contents of every registered unit in registration order.
func InputDigest(fs *source.FileSet) Digest {
	parts := make([][32]byte, 0, fs.Len())
	for id := source.FileID(1); int(id) <= fs.Len(); id++ {
		if f := fs.Get(id); f != nil {
			parts = append(parts, f.Hash)
		}
	}
	return combineDigest(parts...)
}
