package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"perl2py/internal/diag"
	"perl2py/internal/source"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	code     *color.Color
	location *color.Color
	gutter   *color.Color
	marker   *color.Color
	note     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevConverted:    color.New(color.FgCyan),
			diag.SevPartial:      color.New(color.FgYellow, color.Bold),
			diag.SevUnrecognized: color.New(color.FgMagenta, color.Bold),
			diag.SevError:        color.New(color.FgRed, color.Bold),
		},
		code:     color.New(color.Bold),
		location: color.New(color.FgWhite, color.Bold),
		gutter:   color.New(color.FgBlue),
		marker:   color.New(color.FgRed, color.Bold),
		note:     color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.location, p.gutter, p.marker, p.note}
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

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message> [<Kind>]
//
// затем строки исходника с подчёркиванием ^~~~ по Span и, по опции, Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, &d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	f := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	line := start.Line
	if line == 0 {
		line = d.Line
	}
	path := displayPath(f, fs, opts.PathMode)

	msg := fmt.Sprintf("%s %s: %s [%s]", p.sev[d.Severity].Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message, d.Kind)
	header := p.location.Sprintf("%s:%d:%d:", path, line, start.Col) + " " + msg
	fmt.Fprintln(w, clip(header, opts.Width))

	if opts.Context >= 0 {
		excerpt(w, f, start, end, int(opts.Context), p)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), path, ns.Line, ns.Col, n.Msg)
		}
	}
}

// excerpt prints the primary line with ctx lines around it and a marker
// under the span.
func excerpt(w io.Writer, f *source.File, start, end source.LineCol, ctx int, p palette) {
	if start.Line == 0 {
		return
	}
	first := max(1, int(start.Line)-ctx)
	last := min(f.LineCount(), int(start.Line)+ctx)
	width := len(strconv.Itoa(last))
	for n := first; n <= last; n++ {
		text := strings.ReplaceAll(f.GetLine(uint32(n)), "\t", "    ")
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", width, n), text)
		if n != int(start.Line) {
			continue
		}
		raw := f.GetLine(start.Line)
		from := min(int(start.Col)-1, len(raw))
		to := len(raw)
		if end.Line == start.Line && int(end.Col)-1 > from {
			to = min(int(end.Col)-1, len(raw))
		}
		pad := runewidth.StringWidth(strings.ReplaceAll(raw[:max(from, 0)], "\t", "    "))
		span := runewidth.StringWidth(raw[max(from, 0):to])
		mark := "^" + strings.Repeat("~", max(span-1, 0))
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", pad), p.marker.Sprint(mark))
	}
}

// clip shortens s to width display columns; 0 disables clipping.
func clip(s string, width uint8) string {
	if width == 0 {
		return s
	}
	return runewidth.Truncate(s, int(width), "...")
}
