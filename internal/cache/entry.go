package cache

import (
	"perl2py/internal/construct"
	"perl2py/internal/dialect"
	"perl2py/internal/diag"
	"perl2py/internal/draft"
	"perl2py/internal/engine"
	"perl2py/internal/source"
)

// Entry is the cached form of an engine.Result. Spans are stored without
// their file ID and re-attached to the unit on load.
type Entry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	Output      string
	Lines       []LineEntry
	IndentWidth int
	Imports     []string
	Diagnostics []DiagEntry

	ByKind     map[uint8]int
	Constructs map[uint8]int
	Repairs    int

	Dialect dialect.Classification
}

// LineEntry is one draft line.
type LineEntry struct {
	Text  string
	Depth int
	Role  uint8
	Src   uint32
}

// DiagEntry is one diagnostic.
type DiagEntry struct {
	Severity uint8
	Code     uint16
	Kind     uint8
	Line     uint32
	Start    uint32
	End      uint32
	Message  string
	Notes    []NoteEntry
}

// NoteEntry is one diagnostic note.
type NoteEntry struct {
	Start uint32
	End   uint32
	Msg   string
}

// FromResult captures res for storage.
func FromResult(res *engine.Result) *Entry {
	e := &Entry{
		Path:        res.Path,
		Output:      res.Output,
		IndentWidth: res.Draft.IndentWidth,
		Imports:     append([]string(nil), res.Imports...),
		ByKind:      make(map[uint8]int, len(res.Stats.ByKind)),
		Constructs:  make(map[uint8]int, len(res.Stats.Constructs)),
		Repairs:     res.Stats.Repairs,
		Dialect:     res.Dialect,
	}
	for _, l := range res.Draft.Lines {
		e.Lines = append(e.Lines, LineEntry{Text: l.Text, Depth: l.Depth, Role: uint8(l.Role), Src: l.Src})
	}
	for _, d := range res.Diagnostics.Items() {
		de := DiagEntry{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Kind:     uint8(d.Kind),
			Line:     d.Line,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			de.Notes = append(de.Notes, NoteEntry{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		e.Diagnostics = append(e.Diagnostics, de)
	}
	for k, n := range res.Stats.ByKind {
		e.ByKind[uint8(k)] = n
	}
	for s, n := range res.Stats.Constructs {
		e.Constructs[uint8(s)] = n
	}
	return e
}

// Result rebuilds the engine result for unit. Timing stays empty: nothing
// was measured.
func (e *Entry) Result(unit *source.File) *engine.Result {
	buf := draft.New(e.IndentWidth)
	for _, l := range e.Lines {
		buf.Lines = append(buf.Lines, draft.Line{Text: l.Text, Depth: l.Depth, Role: draft.Role(l.Role), Src: l.Src})
	}
	bag := diag.NewBag(0)
	for _, de := range e.Diagnostics {
		d := diag.New(diag.Severity(de.Severity), diag.Code(de.Code),
			source.Span{File: unit.ID, Start: de.Start, End: de.End}, de.Message).
			WithKind(construct.Kind(de.Kind), de.Line)
		for _, n := range de.Notes {
			d = d.WithNote(source.Span{File: unit.ID, Start: n.Start, End: n.End}, n.Msg)
		}
		bag.Add(d)
	}
	stats := &engine.Stats{
		ByKind:     make(map[construct.Kind]int, len(e.ByKind)),
		Constructs: make(map[diag.Severity]int, len(e.Constructs)),
		Repairs:    e.Repairs,
		Lines:      len(e.Lines),
	}
	for k, n := range e.ByKind {
		stats.ByKind[construct.Kind(k)] = n
	}
	for s, n := range e.Constructs {
		stats.Constructs[diag.Severity(s)] = n
	}
	return &engine.Result{
		Path:        unit.Path,
		Output:      e.Output,
		Draft:       buf,
		Diagnostics: bag,
		Imports:     append([]string(nil), e.Imports...),
		Stats:       stats,
		Dialect:     e.Dialect,
	}
}
