package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/spf13/cobra"

	"keel/internal/ast"
	"keel/internal/diag"
	"keel/internal/driver"
	"keel/internal/observ"
	"keel/internal/source"
)

// testCommand wires a root with the persistent flags main registers.
func testCommand(t *testing.T, config string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "keel"}
	pf := root.PersistentFlags()
	pf.String("color", "off", "")
	pf.Bool("quiet", false, "")
	pf.Int("max-diagnostics", 0, "")
	pf.String("config", config, "")
	cmd := &cobra.Command{Use: "check"}
	addRunFlags(cmd)
	root.AddCommand(cmd)
	return cmd
}

func TestColorMode(t *testing.T) {
	var buf bytes.Buffer
	on, err := colorMode("on", &buf)
	be.Err(t, err, nil)
	be.True(t, on)
	on, err = colorMode("auto", &buf)
	be.Err(t, err, nil)
	be.True(t, !on)
	_, err = colorMode("sometimes", &buf)
	be.Err(t, err, "invalid --color")
}

func TestRunOptionsFromManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, driver.ManifestName)
	doc := "[package]\nname = \"demo\"\n[build]\nunits = [\"src/main.kast\"]\nimport_paths = [\"vendor\"]\njobs = 2\n[diagnostics]\nmax = 7\n"
	be.Err(t, os.WriteFile(manifest, []byte(doc), 0o600), nil)

	cmd := testCommand(t, manifest)
	be.Err(t, cmd.Flags().Set("import-path", "/extra"), nil)
	be.Err(t, cmd.Flags().Set("warnings-as-errors", "true"), nil)

	opts, err := runOptions(cmd, nil)
	be.Err(t, err, nil)
	be.Equal(t, opts.Units, []string{filepath.Join(dir, "src", "main.kast")})
	be.Equal(t, opts.SearchPaths, []string{"/extra", filepath.Join(dir, "vendor"), dir})
	be.Equal(t, opts.Jobs, 2)
	be.Equal(t, opts.Check.MaxDiagnostics, 7)
	be.True(t, opts.Check.WarningsAsErrors)
}

func TestRunOptionsArgsReplaceManifestUnits(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, driver.ManifestName)
	be.Err(t, os.WriteFile(manifest, []byte("[package]\nname = \"demo\"\n[build]\nunits = [\"a.kast\"]\n"), 0o600), nil)

	cmd := testCommand(t, manifest)
	be.Err(t, cmd.Root().PersistentFlags().Set("max-diagnostics", "3"), nil)
	opts, err := runOptions(cmd, []string{"x/one.kast", "x/two.kast", "y/three.kast"})
	be.Err(t, err, nil)
	be.Equal(t, len(opts.Units), 3)
	be.Equal(t, opts.SearchPaths, []string{"x", "y", dir})
	be.Equal(t, opts.Check.MaxDiagnostics, 3)
}

func TestRunOptionsWithoutManifest(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	_, err := runOptions(testCommand(t, missing), nil)
	be.Err(t, err)
}

func sampleExport() *driver.Export {
	return &driver.Export{
		Types: []driver.ExportType{
			{Name: "Shape", Kind: "interface", Size: 8, Align: 8},
			{
				Name: "Точка", Kind: "class", Base: "Base", Size: 16, Align: 8,
				Fields: []driver.ExportField{{Name: "x", Type: "int", Offset: 8}},
				VTable: []string{"Точка.area double()", "Base.name char*()"},
			},
			{Name: "Broken", Kind: "struct", Size: -1, Align: -1},
		},
		Interfaces: []driver.ExportInterface{
			{Interface: "Shape", Concrete: "Точка", Slots: []string{"Точка.area double()"}, Complete: true},
			{Interface: "Shape", Concrete: "Broken", Complete: false},
		},
	}
}

func TestRenderLayout(t *testing.T) {
	var buf bytes.Buffer
	be.Err(t, renderLayout(&buf, sampleExport(), true, 0), nil)
	lines := strings.Split(buf.String(), "\n")

	be.Equal(t, lines[0], "TYPE          KIND       SIZE  ALIGN  VTABLE")
	be.Equal(t, lines[1], "Shape         interface  8     8")
	be.Equal(t, lines[2], "Точка : Base  class      16    8      Точка.area, Base.name")
	be.Equal(t, lines[3], "  .x          int        @8")
	be.Equal(t, lines[4], "Broken        struct     ?     ?")
	be.True(t, strings.Contains(buf.String(), "Точка as Shape: Точка.area\n"))
	be.True(t, strings.Contains(buf.String(), "Broken as Shape (incomplete): \n"))
}

func TestTableAlignsWideRunes(t *testing.T) {
	tb := table{header: []string{"A", "B"}}
	tb.add("型", "x")
	tb.add("ab", "y")
	var buf bytes.Buffer
	be.Err(t, tb.write(&buf), nil)
	be.Equal(t, buf.String(), "A   B\n型  x\nab  y\n")
}

func TestTruncate(t *testing.T) {
	be.Equal(t, truncate("abcdef", 0), "abcdef")
	be.Equal(t, truncate("abcdef", 10), "abcdef")
	be.Equal(t, truncate("abcdef", 5), "ab...")
	be.Equal(t, truncate("abcdef", 2), "ab")
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	r := collectVersion(true)
	be.Err(t, writeVersionJSON(&buf, r), nil)

	var got versionReport
	be.Err(t, json.Unmarshal(buf.Bytes(), &got), nil)
	be.Equal(t, got.Tool, "keel")
	be.Equal(t, got.Schemas, schemas{Unit: ast.UnitSchemaVersion, Export: driver.ExportSchemaVersion})
	be.True(t, got.Build != nil)
	be.True(t, strings.Contains(got.Platform, "/"))

	buf.Reset()
	be.Err(t, writeVersionJSON(&buf, collectVersion(false)), nil)
	be.True(t, !strings.Contains(buf.String(), "\"build\""))
}

func TestVersionPretty(t *testing.T) {
	r := versionReport{
		Tool:     "keel",
		Version:  "1.2.3",
		Schemas:  schemas{Unit: 1, Export: 2},
		Go:       "go1.23.0",
		Platform: "linux/amd64",
		Build:    &buildStamp{Commit: "abc", Message: "fix slots\n\nlong body", Modified: true},
	}
	var buf bytes.Buffer
	be.Err(t, writeVersionPretty(&buf, r, false), nil)
	want := "COMPONENT      VERSION\n" +
		"keel           1.2.3\n" +
		"unit schema    1\n" +
		"export schema  2\n" +
		"go             go1.23.0 linux/amd64\n" +
		"commit         abc (modified)\n" +
		"built          unknown\n" +
		"message        fix slots\n"
	be.Equal(t, buf.String(), want)
}

func TestBuildStampPrefersLinkerValues(t *testing.T) {
	s := buildStamp{Commit: "linked"}.fillFrom([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "from-vcs"},
		{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	})
	be.Equal(t, s, buildStamp{Commit: "linked", Date: "2024-05-01T10:00:00Z", Modified: true})
}

func TestReadUIMode(t *testing.T) {
	m, err := readUIMode(" ON ")
	be.Err(t, err, nil)
	be.Equal(t, m, uiModeOn)
	m, err = readUIMode("")
	be.Err(t, err, nil)
	be.Equal(t, m, uiModeAuto)
	_, err = readUIMode("fancy")
	be.Err(t, err, "invalid --ui")

	be.True(t, shouldUseTUI(uiModeOn, "json"))
	be.True(t, !shouldUseTUI(uiModeOff, "pretty"))
	be.True(t, !shouldUseTUI(uiModeAuto, "json"))
}

func TestTimingObserver(t *testing.T) {
	timer := observ.NewTimer()
	obs := timingObserver(timer)
	obs(driver.PhaseEvent{Name: driver.PhaseLoad, Status: driver.PhaseStart})
	obs(driver.PhaseEvent{Name: driver.PhaseLoad, Status: driver.PhaseEnd, Elapsed: time.Millisecond})
	obs(driver.PhaseEvent{Name: driver.PhaseSema, Status: driver.PhaseEnd, Diagnostics: 2})
	obs(driver.PhaseEvent{Name: driver.PhaseLink, Status: driver.PhaseEnd, Failed: true})

	r := timer.Report()
	be.Equal(t, len(r.Phases), 3)
	be.Equal(t, r.Phases[0].Note, "")
	be.Equal(t, r.Phases[1].Note, "2 diagnostics")
	be.Equal(t, r.Phases[2].Note, "failed")
}

func TestPrintDiagnosticsShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("main.kast")
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: file, Line: 2, Col: 5}, "unresolved identifier 'x'"))

	cmd := testCommand(t, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	be.Err(t, printDiagnostics(cmd, bag, fs, "short"), nil)
	be.Equal(t, out.String(), "error SEM3005 main.kast:2:5 unresolved identifier 'x'\n")

	be.Err(t, printDiagnostics(cmd, bag, fs, "xml"), "unsupported format")
}
