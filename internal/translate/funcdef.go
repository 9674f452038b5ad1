package translate

import (
	"fmt"
	"strconv"
	"strings"

	"perl2py/internal/construct"
	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

func functionDef(m *construct.Match, env *Env) Result {
	if !m.Opens {
		return unrecognized(m, env)
	}
	return run(m, env, (*tx).subDef)
}

type param struct {
	name string
	def  string
	// rest renders as *name
	rest bool
}

func (p param) String() string {
	switch {
	case p.rest:
		return "*" + p.name
	case p.def != "":
		return p.name + "=" + p.def
	}
	return p.name
}

// subDef renders `sub NAME {` (or `my $f = sub {`) with its folded
// parameter prologue as a def header.
func (t *tx) subDef() ([]Line, Effect, error) {
	name := pyIdent(t.m.Group("name"))
	var after []Line
	if name == "" {
		target := t.m.Group("target")
		if target == "" {
			return nil, Effect{}, fmt.Errorf("%w: anonymous sub passed as an argument", errUnsupported)
		}
		lhs, err := t.parseLHS(lexer.Tokenize(target))
		if err != nil {
			return nil, Effect{}, err
		}
		if lhs.name != "" && lhs.elem == nil && lhs.shape == shapeScalar {
			name = lhs.name
		} else {
			name = "anon_" + strconv.Itoa(int(t.m.Line))
			after = []Line{line(0, "%s = %s", lhs.text, name)}
		}
	}
	params, body, err := t.prologue()
	if err != nil {
		return nil, Effect{}, err
	}
	if t.m.UsesArgs {
		hasRest := len(params) > 0 && params[len(params)-1].rest
		if !hasRest {
			params = append(params, param{name: "args", rest: true})
			body = append(body, line(0, "args = list(args)"))
		}
	}
	rendered := make([]string, 0, len(params))
	defaulted := false
	for _, p := range params {
		if p.def != "" {
			defaulted = true
		} else if defaulted && !p.rest {
			p.def = "None"
		}
		rendered = append(rendered, p.String())
	}
	lines := []Line{line(0, "def %s(%s):", name, strings.Join(rendered, ", "))}
	for _, l := range body {
		lines = append(lines, Line{Text: l.Text, Indent: l.Indent + 1})
	}
	return lines, Effect{Op: BlockOpen, After: after}, nil
}

// prologue turns the absorbed unpacking statements into parameters plus the
// body lines that finish them (mutable defaults, `||` defaults, rest lists).
func (t *tx) prologue() ([]param, []Line, error) {
	var params []param
	var body []Line
	find := func(name string) *param {
		for i := range params {
			if params[i].name == name {
				return &params[i]
			}
		}
		return nil
	}
	setDefault := func(p *param, d value, definedOr bool) {
		switch {
		case definedOr && immutable(d):
			p.def = d.text
		case definedOr:
			p.def = "None"
			body = append(body, line(0, "if %s is None:", p.name), line(1, "%s = %s", p.name, d.text))
		default:
			p.def = "None"
			body = append(body, line(0, "%s = %s or %s", p.name, p.name, d.paren(pyNot)))
		}
	}
	for _, stmt := range t.m.Prologue {
		toks := lexer.Tokenize(stmt)
		for len(toks) > 0 && toks[len(toks)-1].Kind == token.Semicolon {
			toks = toks[:len(toks)-1]
		}
		switch {
		case len(toks) > 2 && toks[0].Is("my") && toks[1].Kind == token.LParen:
			for _, tok := range toks[2:] {
				if tok.Kind == token.RParen {
					break
				}
				switch tok.Kind {
				case token.Scalar:
					params = append(params, param{name: t.varName("$", tok.Text)})
				case token.Array:
					name := t.varName("@", tok.Text)
					params = append(params, param{name: name, rest: true})
					body = append(body, line(0, "%s = list(%s)", name, name))
				case token.Hash:
					name := t.varName("%", tok.Text)
					params = append(params, param{name: name, rest: true})
					body = append(body, line(0, "%s = dict(zip(%s[::2], %s[1::2]))", name, name, name))
				}
			}
		case len(toks) > 3 && toks[0].Is("my") && toks[1].Kind == token.Scalar && toks[2].Kind == token.Assign:
			params = append(params, param{name: t.varName("$", toks[1].Text)})
			rhs := toks[3:]
			if !rhs[0].Is("shift") {
				// $_[N]
				continue
			}
			rest := rhs[1:]
			if len(rest) > 0 && rest[0].Kind == token.Array {
				rest = rest[1:]
			}
			if len(rest) >= 2 {
				d, err := t.subValue(rest[1:])
				if err != nil {
					return nil, nil, err
				}
				setDefault(&params[len(params)-1], d, rest[0].Kind == token.DefinedOr)
			}
		case len(toks) > 2 && toks[0].Kind == token.Scalar && toks[1].Kind == token.OpAssign:
			p := find(t.varName("$", toks[0].Text))
			if p == nil {
				return nil, nil, fmt.Errorf("%w: default for unknown parameter %s", errSyntax, toks[0].Text)
			}
			d, err := t.subValue(toks[2:])
			if err != nil {
				return nil, nil, err
			}
			setDefault(p, d, toks[1].Text == "//")
		default:
			return nil, nil, fmt.Errorf("%w: parameter statement %q", errUnsupported, stmt)
		}
	}
	return params, body, nil
}

// immutable reports whether d is safe as a Python default value.
func immutable(d value) bool {
	if d.isStringLit() {
		return true
	}
	switch d.text {
	case "None", "True", "False":
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimPrefix(d.text, "-"), 64)
	return err == nil
}
