package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project file looked up from the working directory upwards.
const ManifestName = "keel.toml"

const defaultMaxDiagnostics = 100

// Manifest is a loaded keel.toml together with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors keel.toml.
type Config struct {
	Package     PackageConfig     `toml:"package"`
	Build       BuildConfig       `toml:"build"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Trace       TraceConfig       `toml:"trace"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig lists the translation units in checking order. Import paths are
// searched for units named by import items but not listed here.
type BuildConfig struct {
	Units       []string `toml:"units"`
	ImportPaths []string `toml:"import_paths"`
	Jobs        int      `toml:"jobs"`
}

type DiagnosticsConfig struct {
	Max              int  `toml:"max"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Mode   string `toml:"mode"` // stream, ring or both
}

// FindManifest walks up from startDir looking for keel.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest reads the manifest at path, or finds one from startDir when path
// is empty. ok is false when no manifest exists.
func LoadManifest(path, startDir string) (*Manifest, bool, error) {
	if path == "" {
		found, ok, err := FindManifest(startDir)
		if err != nil || !ok {
			return nil, ok, err
		}
		path = found
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig parses and validates one keel.toml, filling defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.validate(meta); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig is LoadConfig over an in-memory document.
func ParseConfig(data string) (Config, error) {
	var cfg Config
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.validate(meta); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate(meta toml.MetaData) error {
	if !meta.IsDefined("package") {
		return errors.New("missing [package]")
	}
	if strings.TrimSpace(c.Package.Name) == "" {
		return errors.New("missing [package].name")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if c.Diagnostics.Max <= 0 {
		c.Diagnostics.Max = defaultMaxDiagnostics
	}
	if c.Trace.Level == "" {
		c.Trace.Level = "off"
	}
	if c.Trace.Output == "" {
		c.Trace.Output = "-"
	}
	if c.Trace.Mode == "" {
		c.Trace.Mode = "stream"
	}
	for i, u := range c.Build.Units {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("[build].units[%d] is empty", i)
		}
	}
	return nil
}

// UnitPaths resolves the listed units against the manifest directory.
func (m *Manifest) UnitPaths() []string {
	out := make([]string, 0, len(m.Config.Build.Units))
	for _, u := range m.Config.Build.Units {
		out = append(out, m.abs(u))
	}
	return out
}

// SearchPaths resolves import paths against the manifest directory; the
// manifest directory itself is searched last.
func (m *Manifest) SearchPaths() []string {
	out := make([]string, 0, len(m.Config.Build.ImportPaths)+1)
	for _, p := range m.Config.Build.ImportPaths {
		out = append(out, m.abs(p))
	}
	return append(out, m.Root)
}

func (m *Manifest) abs(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}
