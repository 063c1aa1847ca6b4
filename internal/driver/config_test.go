package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(`
[package]
name = "demo"

[build]
units = ["main.kast", "lib/util.kast"]
`)
	be.Err(t, err, nil)
	be.Equal(t, cfg.Package.Name, "demo")
	be.Equal(t, len(cfg.Build.Units), 2)
	be.Equal(t, cfg.Diagnostics.Max, defaultMaxDiagnostics)
	be.Equal(t, cfg.Trace.Level, "off")
	be.Equal(t, cfg.Trace.Mode, "stream")
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no package", "[build]\nunits = []\n", "missing [package]"},
		{"no name", "[package]\nname = \" \"\n", "missing [package].name"},
		{"unknown key", "[package]\nname = \"x\"\nversion = 2\n", "unknown key"},
		{"empty unit", "[package]\nname = \"x\"\n[build]\nunits = [\"\"]\n", "is empty"},
		{"bad toml", "[package\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.doc)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	doc := "[package]\nname = \"demo\"\n[build]\nunits = [\"main.kast\"]\nimport_paths = [\"vendor\"]\n"
	be.Err(t, os.WriteFile(filepath.Join(root, ManifestName), []byte(doc), 0o600), nil)
	nested := filepath.Join(root, "a", "b")
	be.Err(t, os.MkdirAll(nested, 0o755), nil)

	m, ok, err := LoadManifest("", nested)
	be.Err(t, err, nil)
	be.True(t, ok)
	be.Equal(t, m.UnitPaths(), []string{filepath.Join(m.Root, "main.kast")})
	be.Equal(t, m.SearchPaths(), []string{filepath.Join(m.Root, "vendor"), m.Root})

	_, ok, err = LoadManifest("", t.TempDir())
	be.Err(t, err, nil)
	be.True(t, !ok)
}
