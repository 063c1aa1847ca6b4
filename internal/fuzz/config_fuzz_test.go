package fuzztests

import (
	"testing"

	"keel/internal/driver"
)

func FuzzParseConfig(f *testing.F) {
	f.Add("[package]\nname = \"demo\"\n")
	f.Add("[package]\nname = \"demo\"\n[build]\nunits = [\"main.kast\"]\nimport_paths = [\"vendor\"]\njobs = 4\n")
	f.Add("[package]\nname = \"demo\"\n[diagnostics]\nmax = 10\nwarnings_as_errors = true\n[trace]\nlevel = \"phase\"\n")
	f.Add("[package\n")
	f.Fuzz(func(t *testing.T, doc string) {
		cfg, err := driver.ParseConfig(doc)
		if err != nil {
			return
		}
		if cfg.Package.Name == "" {
			t.Fatal("accepted a manifest without a package name")
		}
		if cfg.Diagnostics.Max <= 0 {
			t.Fatalf("accepted manifest has max diagnostics %d", cfg.Diagnostics.Max)
		}
		for _, u := range cfg.Build.Units {
			if u == "" {
				t.Fatal("accepted an empty unit path")
			}
		}
	})
}
