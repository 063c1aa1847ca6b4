package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"keel/internal/driver"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [flags] [unit.kast...]",
	Short: "Print sizes, alignments and dispatch tables of user types",
	RunE:  runLayout,
}

func init() {
	addRunFlags(layoutCmd)
	layoutCmd.Flags().Bool("fields", false, "list field offsets under each type")
	layoutCmd.Flags().Int("width", 48, "truncate the dispatch table column to this many cells (0 = no limit)")
}

func runLayout(cmd *cobra.Command, args []string) error {
	showFields, err := cmd.Flags().GetBool("fields")
	if err != nil {
		return err
	}
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return err
	}
	opts, err := runOptions(cmd, args)
	if err != nil {
		return err
	}
	run, err := driver.RunUnits(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if run.Result.Failed() {
		if err := printDiagnostics(cmd, run.Result.Bag, run.FileSet, "pretty"); err != nil {
			return err
		}
		return exitError{code: 1}
	}
	doc, err := run.Export()
	if err != nil {
		return err
	}
	if len(doc.Types) == 0 {
		return errors.New("no user types")
	}
	return renderLayout(cmd.OutOrStdout(), doc, showFields, width)
}

func renderLayout(w io.Writer, doc *driver.Export, showFields bool, width int) error {
	t := table{header: []string{"TYPE", "KIND", "SIZE", "ALIGN", "VTABLE"}}
	for _, et := range doc.Types {
		size, align := "?", "?"
		if et.Size >= 0 {
			size, align = strconv.Itoa(et.Size), strconv.Itoa(et.Align)
		}
		name := et.Name
		if et.Base != "" {
			name += " : " + et.Base
		}
		t.add(name, et.Kind, size, align, truncate(strings.Join(slotNames(et.VTable), ", "), width))
		if !showFields {
			continue
		}
		for _, f := range et.Fields {
			t.add("  ."+f.Name, f.Type, "@"+strconv.Itoa(f.Offset), "", "")
		}
	}
	if err := t.write(w); err != nil {
		return err
	}
	for _, pair := range doc.Interfaces {
		status := ""
		if !pair.Complete {
			status = " (incomplete)"
		}
		if _, err := fmt.Fprintf(w, "\n%s as %s%s: %s\n", pair.Concrete, pair.Interface, status, strings.Join(slotNames(pair.Slots), ", ")); err != nil {
			return err
		}
	}
	return nil
}

// slotNames drops signatures, keeping Owner.method.
func slotNames(slots []string) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		if j := strings.IndexByte(s, ' '); j >= 0 {
			s = s[:j]
		}
		out[i] = s
	}
	return out
}

// table aligns columns by display width, so wide runes in names line up.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) write(w io.Writer) error {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	for _, row := range append([][]string{t.header}, t.rows...) {
		var sb strings.Builder
		for i, c := range row {
			if i == len(row)-1 {
				sb.WriteString(c)
				break
			}
			sb.WriteString(runewidth.FillRight(c, widths[i]))
			sb.WriteString("  ")
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
