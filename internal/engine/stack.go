package engine

import (
	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/draft"
	"perl2py/internal/translate"
)

// frame is one open block.
type frame struct {
	header int // depth of the header line
	body   int // depth of the body; equals header for transparent blocks
	// implicit frames are `with` blocks of a file handle; closers skip them.
	implicit bool
	handle   string
	// verbatim frames pass their body through as comments up to the match
	// with index pair (-1: to the end of the unit).
	verbatim bool
	pair     int
	sub      bool
	trailer  []translate.Line
	after    []translate.Line
}

// assembler lays translated matches out in a draft buffer.
type assembler struct {
	env     *translate.Env
	lines   []draft.Line
	stack   []frame
	imports map[string]struct{}
	diags   []diag.Diagnostic
	stats   *Stats
}

func newAssembler(env *translate.Env, stats *Stats) *assembler {
	return &assembler{env: env, imports: make(map[string]struct{}), stats: stats}
}

func (a *assembler) depth() int {
	if n := len(a.stack); n > 0 {
		return a.stack[n-1].body
	}
	return 0
}

func (a *assembler) top() *frame {
	if n := len(a.stack); n > 0 {
		return &a.stack[n-1]
	}
	return nil
}

func (a *assembler) inSub() bool {
	for i := range a.stack {
		if a.stack[i].sub {
			return true
		}
	}
	return false
}

func (a *assembler) emit(depth int, src uint32, lines []translate.Line) {
	for _, l := range lines {
		a.lines = append(a.lines, draft.Line{Text: l.Text, Depth: depth + l.Indent, Role: draft.RoleCode, Src: src})
	}
}

// add places match i of matches.
func (a *assembler) add(matches []construct.Match, i int) {
	m := &matches[i]
	a.stats.count(m)

	if f := a.top(); f != nil && f.verbatim {
		a.emit(f.body, m.Line, translate.Passthrough(m))
		if i == f.pair {
			if m.Opens && m.Pair >= 0 {
				// `} else {` keeps the region open up to its own closer
				f.pair = m.Pair
			} else {
				a.stack = a.stack[:len(a.stack)-1]
			}
		}
		return
	}

	a.env.InSub = a.inSub()
	res := translate.Translate(m, a.env)
	for imp := range res.Imports {
		a.imports[imp] = struct{}{}
	}
	for _, n := range res.Notes {
		a.diags = append(a.diags, diag.New(n.Severity, n.Code, m.Span, n.Msg).WithKind(m.Kind, m.Line))
	}
	if !m.IsTrivia() {
		a.stats.Constructs[res.Severity()]++
	}

	eff := res.Effect
	switch eff.Op {
	case translate.BlockOpen:
		d := a.depth()
		a.emit(d, m.Line, res.Lines)
		a.push(d, m, eff)
	case translate.BlockClose:
		d := a.closeExplicit(m.Line, true)
		a.emit(d, m.Line, res.Lines)
	case translate.BlockReopen:
		d := a.closeExplicit(m.Line, false)
		a.emit(d, m.Line, res.Lines)
		a.push(d, m, eff)
	case translate.BlockWith:
		d := a.depth()
		a.emit(d, m.Line, res.Lines)
		a.stack = append(a.stack, frame{header: d, body: d + 1, implicit: true, handle: eff.Handle, pair: -1})
	case translate.BlockRelease:
		if f := a.top(); f != nil && f.implicit && f.handle == eff.Handle {
			a.stack = a.stack[:len(a.stack)-1]
			return
		}
		a.emit(a.depth(), m.Line, res.Lines)
	default:
		a.emit(a.depth(), m.Line, res.Lines)
	}
}

func (a *assembler) push(d int, m *construct.Match, eff translate.Effect) {
	f := frame{
		header:  d,
		body:    d + 1,
		pair:    m.Pair,
		sub:     m.Kind == construct.FunctionDef,
		trailer: eff.Trailer,
		after:   eff.After,
	}
	if eff.Transparent || eff.Verbatim {
		f.body = d
	}
	if eff.Verbatim {
		f.verbatim = true
	}
	a.stack = append(a.stack, f)
}

// closeExplicit pops the innermost explicit frame together with the with
// blocks opened inside it, and returns the header depth the closer's own
// lines go to. After lines are emitted only when keepAfter is set. A closer
// with nothing to close leaves the stack alone; the matcher has already
// reported the imbalance.
func (a *assembler) closeExplicit(src uint32, keepAfter bool) int {
	idx := -1
	for i := len(a.stack) - 1; i >= 0; i-- {
		if !a.stack[i].implicit {
			idx = i
			break
		}
	}
	if idx < 0 {
		return a.depth()
	}
	f := a.stack[idx]
	a.stack = a.stack[:idx]
	a.emit(f.body, src, f.trailer)
	if keepAfter {
		a.emit(f.header, src, f.after)
	}
	return f.header
}

// finish closes every block still open at the end of the unit.
func (a *assembler) finish(src uint32) {
	for len(a.stack) > 0 {
		f := a.stack[len(a.stack)-1]
		a.stack = a.stack[:len(a.stack)-1]
		if f.verbatim {
			continue
		}
		a.emit(f.body, src, f.trailer)
		a.emit(f.header, src, f.after)
	}
}
