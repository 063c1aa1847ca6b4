package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"keel/internal/ast"
	"keel/internal/driver"
	"keel/internal/version"
)

// buildStamp is where the binary came from. ldflags win over the vcs settings
// the go tool embeds.
type buildStamp struct {
	Commit   string `json:"commit,omitempty"`
	Message  string `json:"message,omitempty"`
	Date     string `json:"date,omitempty"`
	Modified bool   `json:"modified,omitempty"`
}

// schemas are the on-disk formats this binary reads and writes; a parser or
// backend built against another pair must be rebuilt.
type schemas struct {
	Unit   uint16 `json:"unit"`
	Export uint16 `json:"export"`
}

type versionReport struct {
	Tool     string      `json:"tool"`
	Version  string      `json:"version"`
	Schemas  schemas     `json:"schemas"`
	Go       string      `json:"go"`
	Platform string      `json:"platform"`
	Build    *buildStamp `json:"build,omitempty"`
}

var (
	versionFormat string
	versionBuild  bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionBuild, "build", false, "include commit, build date and commit message")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the keel version and the unit/export schemas it speaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := collectVersion(versionBuild)
		switch strings.ToLower(strings.TrimSpace(versionFormat)) {
		case "json":
			return writeVersionJSON(cmd.OutOrStdout(), report)
		case "pretty":
			return writeVersionPretty(cmd.OutOrStdout(), report, wantColor(cmd, cmd.OutOrStdout()))
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func collectVersion(withBuild bool) versionReport {
	r := versionReport{
		Tool:     "keel",
		Version:  version.Current(),
		Schemas:  schemas{Unit: ast.UnitSchemaVersion, Export: driver.ExportSchemaVersion},
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if withBuild {
		stamp := stampFromLinker()
		if info, ok := debug.ReadBuildInfo(); ok {
			stamp = stamp.fillFrom(info.Settings)
		}
		r.Build = &stamp
	}
	return r
}

func stampFromLinker() buildStamp {
	return buildStamp{
		Commit:  strings.TrimSpace(version.GitCommit),
		Message: strings.TrimSpace(version.GitMessage),
		Date:    strings.TrimSpace(version.BuildDate),
	}
}

// fillFrom completes the blanks from the vcs.* build settings.
func (s buildStamp) fillFrom(settings []debug.BuildSetting) buildStamp {
	for _, kv := range settings {
		switch kv.Key {
		case "vcs.revision":
			if s.Commit == "" {
				s.Commit = kv.Value
			}
		case "vcs.time":
			if s.Date == "" {
				s.Date = kv.Value
			}
		case "vcs.modified":
			s.Modified, _ = strconv.ParseBool(kv.Value)
		}
	}
	return s
}

func writeVersionPretty(w io.Writer, r versionReport, colored bool) error {
	t := &table{header: []string{"COMPONENT", "VERSION"}}
	t.add(r.Tool, version.Colored(r.Version, colored))
	t.add("unit schema", strconv.Itoa(int(r.Schemas.Unit)))
	t.add("export schema", strconv.Itoa(int(r.Schemas.Export)))
	t.add("go", r.Go+" "+r.Platform)
	if b := r.Build; b != nil {
		commit := orUnknown(b.Commit)
		if b.Modified {
			commit += " (modified)"
		}
		t.add("commit", commit)
		t.add("built", orUnknown(b.Date))
		if b.Message != "" {
			t.add("message", truncate(firstLine(b.Message), 60))
		}
	}
	return t.write(w)
}

func writeVersionJSON(w io.Writer, r versionReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
