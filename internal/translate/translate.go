package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

// Func translates one classified construct.
type Func func(m *construct.Match, env *Env) Result

var dispatch = [construct.KindCount]Func{
	construct.Unrecognized:  unrecognized,
	construct.Variable:      simple,
	construct.ControlFlow:   controlFlow,
	construct.RegexOp:       simple,
	construct.Collection:    simple,
	construct.FunctionDef:   functionDef,
	construct.FunctionCall:  simple,
	construct.FileOp:        fileOp,
	construct.Literal:       literal,
	construct.Comment:       comment,
	construct.DocBlock:      docBlock,
	construct.Module:        module,
	construct.ErrorHandling: errorHandling,
}

// Translate renders one match. It never fails: constructs it cannot render
// come back as inert comments with a note.
func Translate(m *construct.Match, env *Env) Result {
	if m.Kind >= construct.KindCount {
		return unrecognized(m, env)
	}
	return dispatch[m.Kind](m, env)
}

// For returns the translator of kind k.
func For(k construct.Kind) Func {
	if k >= construct.KindCount {
		return unrecognized
	}
	return dispatch[k]
}

type stepFunc func(t *tx) ([]Line, Effect, error)

// run executes fn and applies the shared failure policy: errors, unused
// in-place substitutions and Perl residue all become a fallback comment.
func run(m *construct.Match, env *Env, fn stepFunc) Result {
	t := newTx(m, env)
	lines, eff, err := fn(t)
	if err == nil && t.pending != 0 {
		err = fmt.Errorf("%w: substitution used as a value", errUnsupported)
	}
	if err == nil {
		if frag, ok := residue(lines); ok {
			err = fmt.Errorf("%w: %s", errResidue, frag)
		}
	}
	if err != nil {
		res := t.fallback(err)
		switch {
		case m.Opens && m.Closes:
			res.Effect = Effect{Op: BlockReopen, Verbatim: true}
		case m.Opens:
			res.Effect = Effect{Op: BlockOpen, Verbatim: true}
		case m.Closes:
			res.Effect = Effect{Op: BlockClose}
		}
		return t.withTrailing(res)
	}
	res := t.result(lines)
	res.Effect = eff
	return t.withTrailing(res)
}

// withTrailing attaches the construct's same-line comments.
func (t *tx) withTrailing(res Result) Result {
	if t.m.Trailing == "" || !t.opts().PreserveComments {
		return res
	}
	comments := strings.Split(t.m.Trailing, "\n")
	indent := 0
	if n := len(res.Lines); n > 0 && !strings.Contains(res.Lines[n-1].Text, "\n") {
		last := &res.Lines[n-1]
		last.Text += "  " + comments[0]
		indent = last.Indent
		comments = comments[1:]
	}
	if res.Effect.Op == BlockOpen || res.Effect.Op == BlockReopen || res.Effect.Op == BlockWith {
		indent++
	}
	for _, c := range comments {
		res.Lines = append(res.Lines, Line{Text: c, Indent: indent})
	}
	return res
}

// tokens lexes the construct text without trailing semicolons.
func (t *tx) tokens() []token.Token {
	toks := lexer.Tokenize(t.m.Text)
	for len(toks) > 0 && toks[len(toks)-1].Kind == token.Semicolon {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func stmtStep(t *tx) ([]Line, Effect, error) {
	lines, err := t.statement(t.m.Text)
	return lines, Effect{}, err
}

// simple translates constructs that are one plain statement.
func simple(m *construct.Match, env *Env) Result {
	if m.Opens {
		return unrecognized(m, env)
	}
	return run(m, env, stmtStep)
}

func literal(m *construct.Match, env *Env) Result {
	if v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m.Text), ";")); v == "1" {
		// module return value
		return Result{Imports: map[string]struct{}{}}
	}
	return run(m, env, stmtStep)
}

// unrecognized passes the construct through as comments. An opener turns its
// whole body into a verbatim region.
func unrecognized(m *construct.Match, env *Env) Result {
	t := newTx(m, env)
	t.note(diag.SevUnrecognized, diag.UnrConstruct, "construct not recognized")
	res := t.result(commentLines("unrecognized", t.original()))
	switch {
	case m.Opens && m.Closes:
		res.Effect = Effect{Op: BlockReopen, Verbatim: true}
	case m.Opens:
		res.Effect = Effect{Op: BlockOpen, Verbatim: true}
		res.Notes[0].Code = diag.UnrBlock
	case m.Closes:
		res.Effect = Effect{Op: BlockClose}
	}
	return t.withTrailing(res)
}

// Passthrough renders a line inside a verbatim region.
func Passthrough(m *construct.Match) []Line {
	if m.Kind == construct.Comment {
		if m.Text == "" {
			return []Line{{}}
		}
		var out []Line
		for _, l := range strings.Split(m.Text, "\n") {
			out = append(out, Line{Text: l})
		}
		return out
	}
	t := &tx{m: m}
	lines := commentLines("verbatim", t.original())
	if m.Trailing != "" {
		lines[len(lines)-1].Text += "  " + strings.ReplaceAll(m.Trailing, "\n", " ")
	}
	return lines
}
