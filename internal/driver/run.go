package driver

import (
	"context"
	"time"

	"keel/internal/ast"
	"keel/internal/source"
)

// RunOptions describe a whole checking run from unit files.
type RunOptions struct {
	Units       []string
	SearchPaths []string
	Jobs        int
	Check       CheckOptions
}

// Run is a finished run over unit files.
type Run struct {
	FileSet *source.FileSet
	Loaded  []LoadedUnit
	Result  *CheckResult
}

// OptionsFromManifest turns keel.toml into run options.
func OptionsFromManifest(m *Manifest) RunOptions {
	return RunOptions{
		Units:       m.UnitPaths(),
		SearchPaths: m.SearchPaths(),
		Jobs:        m.Config.Build.Jobs,
		Check: CheckOptions{
			MaxDiagnostics:   m.Config.Diagnostics.Max,
			WarningsAsErrors: m.Config.Diagnostics.WarningsAsErrors,
		},
	}
}

// RunUnits loads the listed units (and whatever they import from the search
// paths) and checks them. Load errors are returned before anything is checked.
func RunUnits(ctx context.Context, opts RunOptions) (*Run, error) {
	fs := source.NewFileSet()
	run := &Run{FileSet: fs}
	notify := opts.Check.Observer
	if notify == nil {
		notify = func(PhaseEvent) {}
	}
	notify(PhaseEvent{Name: PhaseLoad, Status: PhaseStart})
	start := time.Now()
	loaded, err := LoadUnits(ctx, fs, opts.Units, LoadOptions{Jobs: opts.Jobs, SearchPaths: opts.SearchPaths})
	run.Loaded = loaded
	notify(PhaseEvent{Name: PhaseLoad, Status: PhaseEnd, Elapsed: time.Since(start), Failed: err != nil})
	if err != nil {
		return run, err
	}
	units := make([]*ast.Unit, len(loaded))
	for i, lu := range loaded {
		units[i] = lu.Unit
	}
	run.Result, err = Check(ctx, units, opts.Check)
	return run, err
}

// Export builds the code generation document of a successful run.
func (r *Run) Export() (*Export, error) {
	return BuildExport(r.Result, r.FileSet)
}
