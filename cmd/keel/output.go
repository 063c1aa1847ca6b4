package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"keel/internal/diag"
	"keel/internal/diagfmt"
	"keel/internal/source"
)

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorMode resolves --color against the stream the output goes to.
func colorMode(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		f, ok := w.(*os.File)
		return ok && isTerminal(f) && os.Getenv("NO_COLOR") == "", nil
	}
	return false, fmt.Errorf("invalid --color %q (expected auto|on|off)", mode)
}

func wantColor(cmd *cobra.Command, w io.Writer) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	on, err := colorMode(mode, w)
	return err == nil && on
}

func errorColor(f *os.File) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if !isTerminal(f) {
		c.DisableColor()
	}
	return c
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

// printDiagnostics writes the bag in the requested format.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, format string) error {
	out := cmd.OutOrStdout()
	bag.Sort()
	switch format {
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{IncludeNotes: true})
	case "short":
		if bag.Len() == 0 {
			return nil
		}
		_, err := fmt.Fprintln(out, diag.FormatGoldenDiagnostics(bag.Items(), fs, false))
		return err
	case "pretty", "":
		colored := wantColor(cmd, out)
		if err := diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{Color: colored, ShowNotes: true}); err != nil {
			return err
		}
		if quiet(cmd) || bag.Len() == 0 {
			return nil
		}
		return diagfmt.Summary(out, bag, colored)
	}
	return fmt.Errorf("unsupported format %q (must be pretty, short or json)", format)
}
