package driver

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"keel/internal/ast"
	"keel/internal/dag"
	"keel/internal/source"
	"keel/internal/symbols"
	"keel/internal/types"
)

// ExportSchemaVersion is bumped whenever Export changes shape.
const ExportSchemaVersion uint16 = 1

const exportMagic = "KEXP"

// ErrExportSchema is returned when reading an export written by another version.
var ErrExportSchema = errors.New("export schema mismatch")

// Export is the resolved program handed to code generation.
type Export struct {
	Magic      string
	Schema     uint16
	Input      Digest
	Modules    []ExportModule
	Types      []ExportType
	Interfaces []ExportInterface
	Calls      []ExportCall
}

// ExportModule lists modules with dependencies first. Modules of one Wave
// do not import each other; members of import cycles share the last wave.
type ExportModule struct {
	Name    string
	Path    string
	Imports []string
	Wave    int
	Cyclic  bool `msgpack:",omitempty"`
}

type ExportField struct {
	Name   string
	Type   string
	Offset int
}

// ExportType is one user type. Size and Align are -1 when the layout failed.
type ExportType struct {
	Name   string
	Kind   string
	Base   string `msgpack:",omitempty"`
	Size   int
	Align  int
	Fields []ExportField
	VTable []string `msgpack:",omitempty"`
}

type ExportInterface struct {
	Interface string
	Concrete  string
	Slots     []string
	Complete  bool
}

type ExportCall struct {
	Unit        string
	Line        uint32
	Col         uint32
	Callee      string
	Args        int
	Virtual     bool `msgpack:",omitempty"`
	Interface   bool `msgpack:",omitempty"`
	Constructor bool `msgpack:",omitempty"`
}

// BuildExport collects layouts, tables and call sites from a finished run.
// fs may be nil for units built in memory.
func BuildExport(res *CheckResult, fs *source.FileSet) (*Export, error) {
	if res == nil || res.Sema == nil {
		return nil, errors.New("export: run did not reach validation")
	}
	if res.Failed() {
		return nil, errors.New("export: run has errors")
	}
	x := &exporter{tbl: res.Table, types: res.Table.Types}
	doc := &Export{Magic: exportMagic, Schema: ExportSchemaVersion}
	if fs != nil {
		doc.Input = InputDigest(fs)
	}

	doc.Modules = exportModules(res.Units)
	for id := symbols.UserID(1); int(id) <= x.tbl.Users.Len(); id++ {
		user := x.tbl.Users.Get(id)
		if !user.Resolved {
			continue
		}
		doc.Types = append(doc.Types, x.userType(res, user))
	}
	for _, pair := range res.Sema.VTables.Pairs() {
		doc.Interfaces = append(doc.Interfaces, ExportInterface{
			Interface: x.userName(pair.Interface),
			Concrete:  x.userName(pair.Concrete),
			Slots:     x.fnNames(pair.Slots),
			Complete:  pair.Complete,
		})
	}
	for _, u := range res.Units {
		doc.Calls = append(doc.Calls, x.calls(res, u)...)
	}
	return doc, nil
}

func exportModules(units []*ast.Unit) []ExportModule {
	graph := importGraph(units)
	mods := make([]dag.Module, len(units))
	byName := make(map[string]*ast.Unit, len(units))
	for i, u := range units {
		mods[i] = dag.Module{Name: u.Module, Imports: graph[u.Module]}
		byName[u.Module] = u
	}
	idx := dag.BuildIndex(mods)
	topo := dag.ToposortKahn(dag.BuildGraph(idx, mods))
	cyclic := make(map[dag.ModuleID]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		cyclic[id] = true
	}
	var out []ExportModule
	for wave, batch := range topo.Batches {
		for _, id := range batch {
			name := idx.IDToName[id]
			out = append(out, ExportModule{
				Name:    name,
				Path:    byName[name].Path,
				Imports: graph[name],
				Wave:    wave,
				Cyclic:  cyclic[id],
			})
		}
	}
	return out
}

type exporter struct {
	tbl   *symbols.Table
	types *types.Interner
}

func (x *exporter) userType(res *CheckResult, user *symbols.User) ExportType {
	et := ExportType{Name: x.name(user.Name), Kind: user.Kind.String(), Size: -1, Align: -1}
	if user.Base.IsValid() {
		et.Base = x.userName(user.Base)
	}
	if l, err := res.Sema.Layout.LayoutOf(user.Type); err == nil {
		et.Size, et.Align = l.Size, l.Align
		for _, f := range l.Fields {
			et.Fields = append(et.Fields, ExportField{Name: f.Name, Type: x.types.Label(f.Type), Offset: f.Offset})
		}
	}
	if user.VTableBuilt {
		et.VTable = x.fnNames(user.VTable)
	}
	return et
}

func (x *exporter) calls(res *CheckResult, u *ast.Unit) []ExportCall {
	ur := res.Sema.Unit(u)
	if ur == nil {
		return nil
	}
	ids := make([]ast.ExprID, 0, len(ur.CallTargets))
	for id := range ur.CallTargets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]ExportCall, 0, len(ids))
	for _, id := range ids {
		ct := ur.CallTargets[id]
		span := u.Exprs.Get(id).Span
		callee := "<indirect>"
		if ct.Fn.IsValid() {
			callee = x.fnName(ct.Fn)
		}
		out = append(out, ExportCall{
			Unit: u.Path, Line: span.Line, Col: span.Col,
			Callee: callee, Args: len(ct.Args),
			Virtual: ct.Virtual, Interface: ct.Interface, Constructor: ct.Constructor,
		})
	}
	return out
}

func (x *exporter) name(id source.StringID) string {
	if s, ok := x.tbl.Strings.Lookup(id); ok {
		return s
	}
	return "<anon>"
}

func (x *exporter) userName(id symbols.UserID) string {
	if u := x.tbl.Users.Get(id); u != nil {
		return x.name(u.Name)
	}
	return "<none>"
}

// fnName is Owner.name(signature) for methods and name(signature) otherwise.
func (x *exporter) fnName(id symbols.FnID) string {
	fn := x.tbl.Fns.Get(id)
	if fn == nil {
		return "<none>"
	}
	name := x.name(fn.Name)
	if fn.Owner.IsValid() {
		name = x.userName(fn.Owner) + "." + name
	}
	if fn.Sig != types.NoTypeID {
		name += " " + x.types.Label(fn.Sig)
	}
	return name
}

func (x *exporter) fnNames(ids []symbols.FnID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = x.fnName(id)
	}
	return out
}

// WriteExport encodes doc as msgpack.
func WriteExport(w io.Writer, doc *Export) error {
	if err := msgpack.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ReadExport decodes a document written by WriteExport.
func ReadExport(r io.Reader) (*Export, error) {
	var doc Export
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if doc.Magic != exportMagic {
		return nil, fmt.Errorf("read export: bad magic %q", doc.Magic)
	}
	if doc.Schema != ExportSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrExportSchema, doc.Schema, ExportSchemaVersion)
	}
	return &doc, nil
}
