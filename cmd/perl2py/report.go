package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"perl2py/internal/diag"
	"perl2py/internal/diagfmt"
	"perl2py/internal/driver"
	"perl2py/internal/version"
)

func writeReport(w io.Writer, batch *driver.Batch, rep reportOptions) error {
	bag := batch.Diagnostics().Filter(rep.min)
	bag.Dedup()
	bag.Sort()
	pathMode, ok := diagfmt.ParsePathMode(rep.pathMode)
	if !ok {
		return fmt.Errorf("unknown path mode %q", rep.pathMode)
	}

	switch rep.format {
	case "json":
		return diagfmt.JSON(w, bag, batch.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     rep.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, batch.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "perl2py",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	case "short":
		return diagfmt.Short(w, bag, batch.FileSet)
	}

	diagfmt.Pretty(w, bag, batch.FileSet, diagfmt.PrettyOpts{
		Color:     rep.color,
		Context:   0,
		PathMode:  pathMode,
		ShowNotes: rep.withNotes,
	})
	if !rep.quiet {
		writeSummary(w, batch, rep.color)
	}
	return nil
}

// writeSummary prints one line per unit with its status and counts.
func writeSummary(w io.Writer, batch *driver.Batch, colored bool) {
	paint := func(c *color.Color, s string) string {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.Sprint(s)
	}
	for i := range batch.Units {
		u := &batch.Units[i]
		status := u.Status()
		label := paint(statusColor(status), fmt.Sprintf("%-12s", status.String()))
		switch {
		case u.Failed:
			fmt.Fprintf(w, "%s %s\n", label, u.Input.Path)
			continue
		case u.Result == nil:
			continue
		}
		st := u.Result.Stats
		detail := fmt.Sprintf("%d constructs: %d converted, %d partial, %d unrecognized",
			st.Total(), st.Constructs[diag.SevConverted], st.Constructs[diag.SevPartial], st.Constructs[diag.SevUnrecognized])
		dest := ""
		if u.Written {
			dest = " -> " + u.OutPath
		}
		if u.Cached {
			detail += ", cached"
		}
		fmt.Fprintf(w, "%s %s%s (%s)\n", label, u.Input.Path, dest, detail)
	}
}

func statusColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevConverted:
		return color.New(color.FgGreen)
	case diag.SevPartial, diag.SevUnrecognized:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
