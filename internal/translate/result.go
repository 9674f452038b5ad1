package translate

import (
	"maps"
	"slices"

	"perl2py/internal/diag"
)

// Line is one output line. Indent is relative to the depth the orchestrator
// places the result at. Text may span several physical lines when it holds a
// triple-quoted string; those are never re-indented.
type Line struct {
	Text   string
	Indent int
}

// Note is a diagnostic produced while translating one construct.
type Note struct {
	Severity diag.Severity
	Code     diag.Code
	Msg      string
}

// BlockOp is the effect a construct has on block nesting.
type BlockOp uint8

const (
	BlockNone BlockOp = iota
	// BlockOpen: the result lines are a header; the body is one level deeper.
	BlockOpen
	// BlockClose ends the innermost explicit block.
	BlockClose
	// BlockReopen ends the innermost block and opens a sibling (else, elif, except).
	BlockReopen
	// BlockWith opens an implicit scoped block owned by a file handle.
	BlockWith
	// BlockRelease ends the implicit block of Handle when it is innermost;
	// otherwise the result lines (an explicit close call) are emitted.
	BlockRelease
)

// Effect describes how the orchestrator adjusts its block stack.
type Effect struct {
	Op BlockOp
	// Transparent blocks (bare `{}`, `do {}` without a loop test) add no
	// Python nesting level.
	Transparent bool
	// Trailer lines end the body of the opened block, relative to body depth.
	Trailer []Line
	// After lines follow the closed block at header depth.
	After []Line
	// Handle names the file handle of BlockWith / BlockRelease.
	Handle string
	// Verbatim marks an opener whose whole body is passed through as comments.
	Verbatim bool
}

// Result is the translation of one construct.
type Result struct {
	Lines   []Line
	Imports map[string]struct{}
	Notes   []Note
	Effect  Effect
}

// ImportList returns the required import lines, sorted.
func (r *Result) ImportList() []string {
	return slices.Sorted(maps.Keys(r.Imports))
}

// Severity is the worst note severity, Converted when there are none.
func (r *Result) Severity() diag.Severity {
	sev := diag.SevConverted
	for _, n := range r.Notes {
		if n.Severity > sev {
			sev = n.Severity
		}
	}
	return sev
}

// Code returns every line's text at its relative indent, for tests and
// residue checks.
func (r *Result) Code() []string {
	out := make([]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, l.Text)
	}
	return out
}
