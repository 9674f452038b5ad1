package matcher

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/lexer"
	"perl2py/internal/source"
	"perl2py/internal/token"
)

// ErrCoverage reports matches that do not tile the source exactly.
var ErrCoverage = errors.New("matches do not tile the source")

// Result is the classified form of one source unit.
type Result struct {
	Matches []construct.Match
	// Subs holds the names of subs declared in the unit.
	Subs map[string]struct{}
	// Problems are lexical issues and unbalanced braces.
	Problems []diag.Diagnostic
}

type problemSink struct {
	file *source.File
	out  []diag.Diagnostic
}

func (p *problemSink) Report(kind string, pos uint32, msg string) {
	sp := source.Span{File: p.file.ID, Start: pos, End: pos}
	p.out = append(p.out, diag.New(diag.SevUnrecognized, diag.UnrUnbalanced, sp, msg).
		WithKind(construct.Unrecognized, p.file.LineOf(pos)).
		WithNote(sp, "lexer: "+kind))
}

// Match splits file into classified regions covering every byte in order.
func Match(file *source.File) *Result {
	sink := &problemSink{file: file}
	seg := newSegmenter(file.Content, sink)
	segs := seg.run()
	hds := seg.lx.Heredocs()

	res := &Result{Subs: make(map[string]struct{})}
	matches := make([]construct.Match, 0, len(segs))

	for i := 0; i < len(segs); i++ {
		s := &segs[i]
		v := newView(s, file.Content)
		kind, rule, groups := classify(v)

		m := construct.Match{
			Span:   source.Span{File: file.ID, Start: s.start, End: s.end},
			Line:   file.LineOf(s.codeStart),
			Kind:   kind,
			Rule:   rule,
			Groups: groups,
			Pair:   -1,
			Opens:  v.opens,
			Closes: s.kind == segClose,
		}

		names := heredocNames(v.toks, hds, &m)
		switch s.kind {
		case segPOD, segEnd, segComment:
			m.Text = strings.TrimRight(strings.Join(s.comments, "\n"), "\n")
		case segBlank:
		case segOpen:
			m.Text = joinTokens(file.Content, v.body(), names)
		default:
			m.Text = joinTokens(file.Content, v.toks, names)
		}
		if s.kind != segPOD && s.kind != segEnd && s.kind != segComment {
			m.Trailing = strings.Join(s.comments, "\n")
		}

		if rule == "sub-def" {
			if name := m.Group("name"); name != "" {
				res.Subs[name] = struct{}{}
			}
			i = absorbPrologue(segs, i, file.Content, &m)
		}
		matches = append(matches, m)
	}

	res.Problems = append(sink.out, pairBlocks(file, matches)...)
	markArgs(matches)
	res.Matches = matches
	return res
}

// heredocNames maps heredoc operators in toks to placeholders and records
// their bodies on m.
func heredocNames(toks []token.Token, hds []lexer.Heredoc, m *construct.Match) map[int]string {
	var names map[int]string
	for _, t := range toks {
		if t.Kind != token.Heredoc || t.Index < 0 || t.Index >= len(hds) {
			continue
		}
		if names == nil {
			names = make(map[int]string)
		}
		h := hds[t.Index]
		ph := fmt.Sprintf("__HEREDOC_%d__", t.Index)
		names[t.Index] = ph
		m.Heredocs = append(m.Heredocs, construct.Heredoc{
			Tag:         h.Tag,
			Body:        h.Body,
			Interpolate: h.Interpolate,
			Indented:    h.Indented,
			Placeholder: ph,
		})
	}
	return names
}

// pairBlocks links openers to closers. Unbalanced braces become problems;
// the orchestrator treats an unpaired opener as open until end of unit.
func pairBlocks(file *source.File, matches []construct.Match) []diag.Diagnostic {
	var out []diag.Diagnostic
	var stack []int
	for i := range matches {
		m := &matches[i]
		if m.Closes {
			if n := len(stack); n > 0 {
				open := stack[n-1]
				stack = stack[:n-1]
				m.Pair = open
				matches[open].Pair = i
				if m.Groups == nil {
					m.Groups = map[string]string{}
				}
				m.Groups["opener"] = matches[open].Rule
				if post := m.Group("continuation"); post == "while" || post == "until" {
					matches[open].PostTest = post + " " + m.Group("test")
				}
			} else {
				out = append(out, diag.New(diag.SevUnrecognized, diag.UnrUnbalanced, m.Span, "closing brace without an opener").
					WithKind(construct.ControlFlow, m.Line))
			}
		}
		if m.Opens {
			stack = append(stack, i)
		}
	}
	for _, open := range stack {
		m := &matches[open]
		out = append(out, diag.New(diag.SevUnrecognized, diag.UnrUnbalanced, m.Span, "block is never closed").
			WithKind(m.Kind, m.Line))
	}
	return out
}

// markArgs sets UsesArgs on sub openers whose body, past the absorbed
// prologue, touches @_, $_[N], a bare shift/pop or an &name call without
// parentheses (which passes @_ on).
func markArgs(matches []construct.Match) {
	for i := range matches {
		m := &matches[i]
		if m.Rule != "sub-def" || !m.Opens {
			continue
		}
		end := m.Pair
		if end < 0 {
			end = len(matches)
		}
		for j := i + 1; j < end && !m.UsesArgs; j++ {
			inner := &matches[j]
			if inner.Rule == "sub-def" && inner.Opens && inner.Pair > j {
				j = inner.Pair
				continue
			}
			if usesArgs(inner.Text) {
				m.UsesArgs = true
			}
		}
	}
}

func usesArgs(text string) bool {
	if !strings.ContainsAny(text, "_&") && !strings.Contains(text, "shift") && !strings.Contains(text, "pop") {
		return false
	}
	toks := lexer.Tokenize(text)
	for k, t := range toks {
		switch {
		case t.Kind == token.Array && t.Text == "_":
			return true
		case t.Kind == token.Scalar && t.Text == "_" && k+1 < len(toks) && toks[k+1].Kind == token.LBracket && !toks[k+1].Spaced:
			return true
		case t.Kind == token.FuncRef:
			if (k == 0 || toks[k-1].Kind != token.Backslash) && (k+1 >= len(toks) || toks[k+1].Kind != token.LParen) {
				return true
			}
		case t.Is("shift") || t.Is("pop"):
			if k+1 >= len(toks) {
				return true
			}
			switch toks[k+1].Kind {
			case token.Array, token.Cast, token.LParen:
			default:
				return true
			}
		}
	}
	return false
}

// Classify runs the precedence table over a single statement, as if it
// stood alone on its own line.
func Classify(text string) (construct.Kind, string, map[string]string) {
	toks := lexer.Tokenize(text)
	if n := len(toks); n > 0 && toks[n-1].Kind == token.Semicolon {
		toks = toks[:n-1]
	}
	return classify(&view{kind: segStmt, src: []byte(text), toks: toks})
}

// Verify checks that matches tile [0, length) with no gap or overlap.
func Verify(matches []construct.Match, length int) error {
	limit, err := safecast.Conv[uint32](length)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCoverage, err)
	}
	var pos uint32
	for i, m := range matches {
		if m.Span.Start != pos {
			if m.Span.Start > pos {
				return fmt.Errorf("%w: gap [%d, %d) before match %d", ErrCoverage, pos, m.Span.Start, i)
			}
			return fmt.Errorf("%w: match %d overlaps at %d", ErrCoverage, i, m.Span.Start)
		}
		if m.Span.End < m.Span.Start {
			return fmt.Errorf("%w: match %d has inverted span %s", ErrCoverage, i, m.Span)
		}
		pos = m.Span.End
	}
	if pos != limit {
		return fmt.Errorf("%w: %d of %d bytes covered", ErrCoverage, pos, limit)
	}
	return nil
}
