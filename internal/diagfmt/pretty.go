package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"keel/internal/diag"
	"keel/internal/source"
)

type palette struct {
	sev  map[diag.Severity]*color.Color
	code *color.Color
	loc  *color.Color
	note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevOutput:        color.New(color.FgWhite),
			diag.SevDebug:         color.New(color.FgCyan),
			diag.SevWarning:       color.New(color.FgYellow, color.Bold),
			diag.SevError:         color.New(color.FgRed, color.Bold),
			diag.SevFailure:       color.New(color.FgMagenta, color.Bold),
			diag.SevUnimplemented: color.New(color.FgMagenta),
			diag.SevFatal:         color.New(color.FgHiRed, color.Bold, color.Underline),
		},
		code: color.New(color.Faint),
		loc:  color.New(color.Bold),
		note: color.New(color.FgBlue),
	}
	all := []*color.Color{p.code, p.loc, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	    note: <path>:<line>:<col>: <Message>
//
// The bag is printed in its current order; call bag.Sort() first for a stable one.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		sev, ok := p.sev[d.Severity]
		if !ok {
			sev = p.code
		}
		_, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprint(location(d.Primary, fs, opts.PathMode)),
			sev.Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		if err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "    %s %s: %s\n", p.note.Sprint("note:"), location(n.Span, fs, opts.PathMode), n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary prints "N errors, M warnings" style totals.
func Summary(w io.Writer, bag *diag.Bag, colored bool) error {
	p := newPalette(colored)
	var errs, warns int
	for _, d := range bag.Items() {
		switch {
		case d.Severity.Failing():
			errs++
		case d.Severity == diag.SevWarning:
			warns++
		}
	}
	_, err := fmt.Fprintf(w, "%s, %s\n",
		p.sev[diag.SevError].Sprint(plural(errs, "error")),
		p.sev[diag.SevWarning].Sprint(plural(warns, "warning")))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func pathOf(fs *source.FileSet, id source.FileID, mode PathMode) string {
	if fs == nil || id == source.NoFileID {
		return "<builtin>"
	}
	path := fs.Path(id)
	if mode == PathModeBasename {
		path = filepath.Base(path)
	}
	return path
}

func location(sp source.Span, fs *source.FileSet, mode PathMode) string {
	path := pathOf(fs, sp.File, mode)
	if !sp.Known() {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, sp.Line, sp.Col)
}
