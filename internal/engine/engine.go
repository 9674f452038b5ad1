package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"fortio.org/safecast"

	"perl2py/internal/construct"
	"perl2py/internal/dialect"
	"perl2py/internal/diag"
	"perl2py/internal/draft"
	"perl2py/internal/matcher"
	"perl2py/internal/normalize"
	"perl2py/internal/observ"
	"perl2py/internal/rules"
	"perl2py/internal/source"
	"perl2py/internal/trace"
	"perl2py/internal/translate"
)

// ErrStructural reports a unit whose matches do not tile its source. The
// unit is not converted; other units are unaffected.
var ErrStructural = errors.New("structural corruption")

// Stats summarizes one conversion.
type Stats struct {
	// ByKind counts matches per construct kind, trivia included.
	ByKind map[construct.Kind]int
	// Constructs counts non-trivia constructs by outcome.
	Constructs map[diag.Severity]int
	Repairs    int
	Lines      int
}

func newStats() *Stats {
	return &Stats{
		ByKind:     make(map[construct.Kind]int),
		Constructs: make(map[diag.Severity]int),
	}
}

func (s *Stats) count(m *construct.Match) { s.ByKind[m.Kind]++ }

// Total is the number of non-trivia constructs.
func (s *Stats) Total() int {
	n := 0
	for _, c := range s.Constructs {
		n += c
	}
	return n
}

// Result is the conversion of one unit.
type Result struct {
	Path   string
	Output string
	// Draft is the normalized buffer Output was rendered from.
	Draft       *draft.Buffer
	Diagnostics *diag.Bag
	Imports     []string
	Stats       *Stats
	Dialect     dialect.Classification
	Timing      observ.Report
}

// Status is the worst severity among the diagnostics.
func (r *Result) Status() diag.Severity {
	return r.Diagnostics.MaxSeverity()
}

// Translate converts one unit with table. The returned error is non-nil only
// for structural corruption (wrapping ErrStructural) or a cancelled context;
// everything a construct can go wrong with is a diagnostic.
func Translate(ctx context.Context, unit *source.File, table *rules.Table) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeUnit, "unit:"+unit.Path, trace.ParentID(ctx))
	defer span.End("")

	timer := observ.NewTimer()
	stats := newStats()
	bag := diag.NewBag(0)

	idx := timer.Begin("match")
	ph := trace.Begin(tr, trace.ScopePhase, "match", span.ID())
	matched := matcher.Match(unit)
	err := matcher.Verify(matched.Matches, len(unit.Content))
	ph.WithExtra("matches", fmt.Sprint(len(matched.Matches))).End("")
	timer.End(idx, fmt.Sprintf("%d matches", len(matched.Matches)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", unit.Path, ErrStructural, err)
	}
	for _, d := range matched.Problems {
		bag.Add(d)
	}

	cls := dialect.Classifier{}.Classify(dialect.Scan(unit))
	if cls.LooksForeign() {
		bag.Add(diag.New(diag.SevPartial, diag.DiaNotPerl, source.Span{File: unit.ID}, cls.Describe()).
			WithKind(construct.Unrecognized, 1))
	}

	idx = timer.Begin("translate")
	ph = trace.Begin(tr, trace.ScopePhase, "translate", span.ID())
	env := translate.NewEnv(table, matched.Subs)
	asm := newAssembler(env, stats)
	var last uint32
	for i := range matched.Matches {
		m := &matched.Matches[i]
		trace.Point(tr, trace.ScopeConstruct, m.Kind.String(), fmt.Sprintf("line %d rule %s", m.Line, m.Rule), ph.ID())
		asm.add(matched.Matches, i)
		last = m.Line
	}
	asm.finish(last)
	for _, d := range asm.diags {
		bag.Add(d)
	}
	buf := assemble(unit, table.Options(), asm)
	ph.End("")
	timer.End(idx, fmt.Sprintf("%d lines", len(buf.Lines)))

	idx = timer.Begin("normalize")
	ph = trace.Begin(tr, trace.ScopePhase, "normalize", span.ID())
	out, repairs := normalize.Run(buf)
	repairs = normalize.Unique(repairs)
	kinds := lineKinds(matched.Matches)
	for _, r := range repairs {
		bag.Add(diag.New(diag.SevConverted, r.Code, LineSpan(unit, r.Src), r.Pattern+": "+r.Message).
			WithKind(repairKind(kinds, r.Src), r.Src))
	}
	ph.WithExtra("repairs", fmt.Sprint(len(repairs))).End("")
	timer.End(idx, fmt.Sprintf("%d repairs", len(repairs)))

	bag.Sort()
	stats.Repairs = len(repairs)
	stats.Lines = len(out.Lines)
	return &Result{
		Path:        unit.Path,
		Output:      out.Render(),
		Draft:       out,
		Diagnostics: bag,
		Imports:     out.Imports(),
		Stats:       stats,
		Dialect:     cls,
		Timing:      timer.Report(),
	}, nil
}

// assemble builds the draft: header, sorted import block, then the code.
func assemble(unit *source.File, opts rules.Options, asm *assembler) *draft.Buffer {
	buf := draft.New(opts.Indent)
	if opts.EmitHeader {
		for _, text := range headerLines(filepath.Base(unit.Path)) {
			buf.Append(draft.Line{Text: text, Role: draft.RoleHeader})
		}
	}
	if len(asm.imports) > 0 {
		lines := make([]string, 0, len(asm.imports))
		for imp := range asm.imports {
			lines = append(lines, imp)
		}
		for _, imp := range draft.SortImports(lines) {
			buf.Append(draft.Line{Text: imp, Role: draft.RoleImport})
		}
		buf.Append(draft.Line{Role: draft.RoleImport})
	}
	buf.Append(asm.lines...)
	return buf
}

func headerLines(name string) []string {
	return []string{
		"#!/usr/bin/env python3",
		"# -*- coding: utf-8 -*-",
		"# Generated by perl2py from " + name,
		`# Review the converted code before use: lines marked "perl2py:" need attention.`,
		"",
	}
}

// lineKinds maps a source line to the kind of the first construct on it.
func lineKinds(matches []construct.Match) map[uint32]construct.Kind {
	out := make(map[uint32]construct.Kind, len(matches))
	for i := range matches {
		if _, ok := out[matches[i].Line]; !ok {
			out[matches[i].Line] = matches[i].Kind
		}
	}
	return out
}

// repairKind is the construct kind a repair is reported under. Generated
// lines (inserted shims, imports) have no source construct and count as
// Module support code.
func repairKind(kinds map[uint32]construct.Kind, src uint32) construct.Kind {
	if k, ok := kinds[src]; ok && src != 0 {
		return k
	}
	return construct.Module
}

// LineSpan covers source line n, or the start of the unit for n == 0.
func LineSpan(unit *source.File, n uint32) source.Span {
	sp := source.Span{File: unit.ID}
	switch {
	case n == 0:
		return sp
	case n > 1:
		if int(n-2) >= len(unit.LineIdx) {
			return sp
		}
		sp.Start = unit.LineIdx[n-2] + 1
	}
	width, err := safecast.Conv[uint32](len(unit.GetLine(n)))
	if err != nil {
		return sp
	}
	sp.End = sp.Start + width
	return sp
}
