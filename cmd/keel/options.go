package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"keel/internal/driver"
)

const noManifestMessage = "no keel.toml found\nplease list the units explicitly, e.g.:\n  keel check main.kast"

// addRunFlags registers the flags shared by commands that run the checker.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("import-path", "I", nil, "directories searched for imported units")
	cmd.Flags().Int("jobs", 0, "max parallel unit decoders (0=auto)")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

// runOptions merges keel.toml with the command line. Units given as arguments
// replace the manifest's list.
func runOptions(cmd *cobra.Command, args []string) (driver.RunOptions, error) {
	var opts driver.RunOptions
	m, found, err := loadManifest(cmd)
	if err != nil {
		return opts, err
	}
	switch {
	case found:
		opts = driver.OptionsFromManifest(m)
	case len(args) == 0:
		return opts, errors.New(noManifestMessage)
	}
	if len(args) > 0 {
		opts.Units = args
		dirs := make([]string, 0, len(args))
		seen := make(map[string]bool)
		for _, a := range args {
			d := filepath.Dir(a)
			if !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
		opts.SearchPaths = append(dirs, opts.SearchPaths...)
	}
	if len(opts.Units) == 0 {
		return opts, fmt.Errorf("%s: [build].units is empty", m.Path)
	}

	extra, err := cmd.Flags().GetStringSlice("import-path")
	if err != nil {
		return opts, fmt.Errorf("failed to get import-path flag: %w", err)
	}
	opts.SearchPaths = append(extra, opts.SearchPaths...)

	if cmd.Flags().Changed("jobs") {
		if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return opts, err
		}
	}
	maxDiag, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiag > 0 {
		opts.Check.MaxDiagnostics = maxDiag
	}
	if cmd.Flags().Changed("warnings-as-errors") {
		if opts.Check.WarningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
			return opts, err
		}
	}
	return opts, nil
}
