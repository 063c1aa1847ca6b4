package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"keel/internal/ast"
	"keel/internal/source"
)

// UnitExt is the extension of encoded translation units written by the parser.
const UnitExt = ".kast"

// LoadedUnit is one decoded translation unit registered in the file set.
type LoadedUnit struct {
	Path     string
	FileID   source.FileID
	Unit     *ast.Unit
	Imported bool // found through an import rather than listed
}

// LoadOptions controls LoadUnits.
type LoadOptions struct {
	Jobs        int
	SearchPaths []string // where units named by imports are looked up
}

// ErrNoUnits is returned when nothing was given to check.
var ErrNoUnits = errors.New("no translation units")

type decoded struct {
	path    string
	content []byte
	unit    *ast.Unit
}

// LoadUnits decodes the listed unit files in parallel and registers them in fs
// in listing order. Modules imported by the loaded units and not listed are then
// looked up in the search paths, round by round, until nothing new is found.
// Modules that cannot be found are left for the linker to report.
func LoadUnits(ctx context.Context, fs *source.FileSet, paths []string, opts LoadOptions) ([]LoadedUnit, error) {
	if len(paths) == 0 {
		return nil, ErrNoUnits
	}
	var out []LoadedUnit
	known := make(map[string]bool)
	seenPath := make(map[string]bool)

	batch := paths
	imported := false
	for len(batch) > 0 {
		units, err := decodeAll(ctx, batch, opts.Jobs)
		if err != nil {
			return out, err
		}
		for _, d := range units {
			if d.unit.Path == "" {
				d.unit.Path = filepath.ToSlash(d.path)
			}
			flags := source.FileFlags(0)
			if imported {
				flags |= source.FileImported
			}
			id := fs.Add(d.path, d.content, flags)
			d.unit.SetFile(id)
			known[d.unit.Module] = true
			seenPath[filepath.Clean(d.path)] = true
			out = append(out, LoadedUnit{Path: d.path, FileID: id, Unit: d.unit, Imported: imported})
		}
		batch = missingImports(out, known, seenPath, opts.SearchPaths)
		imported = true
	}
	return out, nil
}

func decodeAll(ctx context.Context, paths []string, jobs int) ([]decoded, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]decoded, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("load unit: %w", err)
			}
			u, err := ast.DecodeUnit(bytes.NewReader(content))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			// индекс i уникален, мьютекс не нужен
			results[i] = decoded{path: path, content: content, unit: u}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// missingImports finds unit files for imported modules not loaded yet.
func missingImports(loaded []LoadedUnit, known, seenPath map[string]bool, search []string) []string {
	var next []string
	queued := make(map[string]bool)
	for _, lu := range loaded {
		for _, id := range lu.Unit.Imports() {
			mod := lu.Unit.Items.Get(id).Path
			if known[mod] || queued[mod] {
				continue
			}
			if path, ok := findUnit(mod, search); ok && !seenPath[path] {
				queued[mod] = true
				next = append(next, path)
			}
		}
	}
	return next
}

func findUnit(module string, search []string) (string, bool) {
	rel := filepath.FromSlash(module) + UnitExt
	for _, dir := range search {
		candidate := filepath.Clean(filepath.Join(dir, rel))
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
