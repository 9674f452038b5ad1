package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

func module(m *construct.Match, env *Env) Result {
	if m.Rule == "package" {
		return run(m, env, (*tx).packageStmt)
	}
	return run(m, env, (*tx).useStmt)
}

func (t *tx) packageStmt() ([]Line, Effect, error) {
	var eff Effect
	if t.m.Opens {
		eff = Effect{Op: BlockOpen, Transparent: true}
	}
	return []Line{line(0, "# package %s", t.m.Group("name"))}, eff, nil
}

func (t *tx) useStmt() ([]Line, Effect, error) {
	verb, mod := t.m.Group("verb"), t.m.Group("module")
	switch {
	case mod == "perl", verb == "no":
		return nil, Effect{}, nil
	case t.m.Group("file") != "":
		t.note(diag.SevUnrecognized, diag.UnrModule, "require of file %s is not converted", mod)
		return commentLines("unknown module", t.original()), Effect{}, nil
	case mod == "constant":
		lines, err := t.constants(t.m.Group("args"))
		return lines, Effect{}, err
	case mod == "parent" || mod == "base":
		t.partial(diag.PrtInfo, "class inheritance from %s is not converted", strings.TrimSpace(t.m.Group("args")))
		return commentLines("dropped", t.original()), Effect{}, nil
	}
	if imp, ok := t.table().Module(mod); ok {
		t.need(imp)
		return nil, Effect{}, nil
	}
	t.note(diag.SevUnrecognized, diag.UnrModule, "unknown module %s", mod)
	return commentLines("unknown module", t.original()), Effect{}, nil
}

// constants renders `use constant NAME => value` and the hash form.
func (t *tx) constants(args string) ([]Line, error) {
	toks := lexer.Tokenize(args)
	for len(toks) > 0 && toks[len(toks)-1].Kind == token.Semicolon {
		toks = toks[:len(toks)-1]
	}
	braced := len(toks) >= 2 && toks[0].Kind == token.LBrace && toks[len(toks)-1].Kind == token.RBrace
	if braced {
		toks = toks[1 : len(toks)-1]
	}
	p := newParser(t, toks)
	p.list = true
	items, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("end of constant list")
	}
	if len(items) < 2 || !items[0].isStringLit() {
		return nil, fmt.Errorf("%w: constant declaration", errUnsupported)
	}
	if !braced {
		name := pyIdent(items[0].literal())
		if len(items) == 2 {
			return []Line{line(0, "%s = %s", name, items[1].text)}, nil
		}
		return []Line{line(0, "%s = %s", name, listValue(items[1:], false).text)}, nil
	}
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("%w: odd constant list", errUnsupported)
	}
	var out []Line
	for i := 0; i < len(items); i += 2 {
		if !items[i].isStringLit() {
			return nil, fmt.Errorf("%w: computed constant name", errUnsupported)
		}
		out = append(out, line(0, "%s = %s", pyIdent(items[i].literal()), items[i+1].text))
	}
	return out, nil
}

func comment(m *construct.Match, env *Env) Result {
	res := Result{Imports: map[string]struct{}{}}
	if m.Rule == "blank" {
		res.Lines = []Line{{}}
		return res
	}
	opts := env.Table.Options()
	if !opts.PreserveComments {
		return res
	}
	for i, l := range strings.Split(m.Text, "\n") {
		if i == 0 && m.Line == 1 && strings.HasPrefix(l, "#!") {
			// the header carries the interpreter line
			if !opts.EmitHeader {
				res.Lines = append(res.Lines, Line{Text: "#!/usr/bin/env python3"})
			}
			continue
		}
		res.Lines = append(res.Lines, Line{Text: l})
	}
	return res
}

// podDirectives keep their argument text in the docstring.
var podDirectives = []string{"=head1", "=head2", "=head3", "=head4", "=item", "=encoding", "=for", "=begin", "=end", "=over", "=back", "=pod"}

// docBlock renders POD as a docstring (or comments) and the __END__ tail as
// comments.
func docBlock(m *construct.Match, env *Env) Result {
	res := Result{Imports: map[string]struct{}{}}
	text := strings.TrimRight(m.Text, "\n")
	if m.Group("style") == "end" || !env.Table.Options().ConvertPODToDocstrings {
		for _, l := range strings.Split(text, "\n") {
			res.Lines = append(res.Lines, Line{Text: strings.TrimRight("# "+l, " ")})
		}
		return res
	}
	var body []string
	for _, l := range strings.Split(text, "\n") {
		if strings.HasPrefix(l, "=cut") {
			continue
		}
		for _, d := range podDirectives {
			if l == d || strings.HasPrefix(l, d+" ") {
				l = strings.TrimSpace(strings.TrimPrefix(l, d))
				break
			}
		}
		body = append(body, l)
	}
	for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}
	doc := strings.Join(body, "\n")
	doc = strings.ReplaceAll(doc, `\`, `\\`)
	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)
	res.Lines = []Line{{Text: `"""` + "\n" + doc + "\n" + `"""`}}
	return res
}

func errorHandling(m *construct.Match, env *Env) Result {
	if m.Rule == "eval-block" {
		return run(m, env, (*tx).evalBlock)
	}
	return simple(m, env)
}

// evalBlock opens try: and queues the except clause for the closer.
func (t *tx) evalBlock() ([]Line, Effect, error) {
	if t.m.Group("target") != "" {
		return nil, Effect{}, fmt.Errorf("%w: value of an eval block", errUnsupported)
	}
	return []Line{line(0, "eval_error = None"), line(0, "try:")}, Effect{
		Op: BlockOpen,
		After: []Line{
			line(0, "except Exception as exc:"),
			line(1, "eval_error = str(exc)"),
		},
	}, nil
}
