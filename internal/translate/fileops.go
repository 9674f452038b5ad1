package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/construct"
	"perl2py/internal/token"
)

// Python modes for Perl open modes, longest prefix first.
var openModes = []struct{ perl, py string }{
	{"+>>", "a+"}, {"+<", "r+"}, {"+>", "w+"}, {">>", "a"}, {"<", "r"}, {">", "w"},
}

type openCall struct {
	handle   string
	mode     string
	path     value
	encoding string
}

func (oc openCall) expr() string {
	args := []string{oc.path.paren(pyTernary)}
	if oc.mode != "r" || oc.encoding != "" {
		args = append(args, pyQuote(oc.mode, '"'))
	}
	if oc.encoding != "" {
		args = append(args, "encoding="+pyQuote(oc.encoding, '"'))
	}
	return "open(" + strings.Join(args, ", ") + ")"
}

// splitMode strips a leading mode from a two-argument open path.
func splitMode(s string) (mode, rest string, ok bool) {
	s = strings.TrimLeft(s, " ")
	if strings.HasPrefix(s, "|") || strings.HasSuffix(strings.TrimRight(s, " "), "|") {
		return "", "", false
	}
	for _, m := range openModes {
		if strings.HasPrefix(s, m.perl) {
			return m.py, strings.TrimLeft(s[len(m.perl):], " "), true
		}
	}
	return "r", s, true
}

// parseLayers reads "<:encoding(UTF-8)" or ">:raw".
func parseLayers(lit string) (mode, encoding string, err error) {
	base, layers, _ := strings.Cut(strings.TrimSpace(lit), ":")
	base = strings.TrimSpace(base)
	for _, m := range openModes {
		if base == m.perl {
			mode = m.py
		}
	}
	if mode == "" {
		return "", "", fmt.Errorf("%w: open mode %q", errUnsupported, lit)
	}
	for _, layer := range strings.Split(layers, ":") {
		layer = strings.TrimSpace(layer)
		switch {
		case layer == "":
		case layer == "raw" || layer == "bytes":
			mode += "b"
		case layer == "utf8":
			encoding = "utf-8"
		case strings.HasPrefix(layer, "encoding(") && strings.HasSuffix(layer, ")"):
			encoding = strings.ToLower(layer[len("encoding(") : len(layer)-1])
		case layer == "crlf":
		default:
			return "", "", fmt.Errorf("%w: I/O layer %q", errUnsupported, layer)
		}
	}
	return mode, encoding, nil
}

// parseHandle reads the handle operand of open/opendir/close.
func (p *parser) parseHandle() (string, error) {
	if tok := p.peek(); tok.Kind == token.Ident && !tok.Is("my") && !tok.Is("our") && !tok.Is("local") {
		p.next()
		return tok.Text, nil
	}
	p.lvalue = true
	h, err := p.parseExpr(precAssign)
	p.lvalue = false
	if err != nil {
		return "", err
	}
	if h.name == "" {
		return "", fmt.Errorf("%w: file handle %s", errUnsupported, h.text)
	}
	return h.name, nil
}

func (t *tx) parseOpen(toks []token.Token) (openCall, error) {
	p := newParser(t, toks)
	parens := p.accept(token.LParen)
	var oc openCall
	var err error
	if oc.handle, err = p.parseHandle(); err != nil {
		return oc, err
	}
	if err := p.expect(token.Comma); err != nil {
		return oc, err
	}
	first, err := p.parseExpr(precAssign)
	if err != nil {
		return oc, err
	}
	var rest []value
	if p.accept(token.Comma) {
		if rest, err = p.parseList(); err != nil {
			return oc, err
		}
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return oc, err
		}
	}
	if !p.atEnd() {
		return oc, p.unexpected("end of open")
	}
	switch len(rest) {
	case 0:
		oc.mode, oc.path = "r", first
		if len(first.parts) > 0 && !first.parts[0].isExpr {
			mode, lit, ok := splitMode(first.parts[0].lit)
			if !ok {
				return oc, fmt.Errorf("%w: piped open", errUnsupported)
			}
			parts := append([]fpart{{lit: lit}}, first.parts[1:]...)
			oc.mode, oc.path = mode, t.stringValue(mergeLits(parts))
		}
	case 1:
		if !first.isStringLit() {
			return oc, fmt.Errorf("%w: open mode is not a literal", errUnsupported)
		}
		if oc.mode, oc.encoding, err = parseLayers(first.literal()); err != nil {
			return oc, err
		}
		oc.path = rest[0]
	default:
		return oc, fmt.Errorf("%w: list form of open", errUnsupported)
	}
	return oc, nil
}

// splitGuard separates `CALL or STMT`.
func splitGuard(toks []token.Token) (call, rhs []token.Token, err error) {
	i := guardIndex(toks)
	if i < 0 {
		return toks, nil, nil
	}
	if toks[i].Is("and") || toks[i].Kind == token.AndAnd {
		return nil, nil, fmt.Errorf("%w: %s after a file operation", errUnsupported, toks[i].Text)
	}
	return toks[:i], toks[i+1:], nil
}

// guarded wraps body in try/except OSError running the guard statement.
func (t *tx) guarded(body []Line, rhs []token.Token) ([]Line, error) {
	saved := t.errName
	t.errName = "exc"
	defer func() { t.errName = saved }()
	var handler []Line
	if isDie(rhs) {
		raise, err := t.dieLine(rhs[1:])
		if err != nil {
			return nil, err
		}
		handler = []Line{line(0, raise+" from exc")}
	} else {
		var err error
		if handler, err = t.stmtTokens(rhs); err != nil {
			return nil, err
		}
	}
	out := []Line{line(0, "try:")}
	for _, l := range body {
		out = append(out, Line{Text: l.Text, Indent: l.Indent + 1})
	}
	out = append(out, line(0, "except OSError as exc:"))
	for _, l := range handler {
		out = append(out, Line{Text: l.Text, Indent: l.Indent + 1})
	}
	return out, nil
}

// fileOp translates open/close/opendir/closedir/binmode; other file
// operations are ordinary statements.
func fileOp(m *construct.Match, env *Env) Result {
	switch m.Group("op") {
	case "open":
		return run(m, env, (*tx).openStmt)
	case "opendir":
		return run(m, env, (*tx).opendirStmt)
	case "close":
		return run(m, env, (*tx).closeStmt)
	case "closedir", "binmode":
		return run(m, env, func(t *tx) ([]Line, Effect, error) {
			return nil, Effect{}, nil
		})
	}
	return simple(m, env)
}

func (t *tx) openStmt() ([]Line, Effect, error) {
	toks := t.tokens()
	call, rhs, err := splitGuard(toks)
	if err != nil {
		return nil, Effect{}, err
	}
	if len(call) == 0 || !call[0].Is("open") {
		return nil, Effect{}, fmt.Errorf("%w: open used as a value", errUnsupported)
	}
	oc, err := t.parseOpen(call[1:])
	if err != nil {
		return nil, Effect{}, err
	}
	h := pyIdent(oc.handle)
	eff := Effect{Op: BlockWith, Handle: h}
	if rhs == nil {
		return []Line{line(0, "with %s as %s:", oc.expr(), h)}, eff, nil
	}
	lines, err := t.guarded([]Line{line(0, "%s = %s", h, oc.expr())}, rhs)
	if err != nil {
		return nil, Effect{}, err
	}
	return append(lines, line(0, "with %s:", h)), eff, nil
}

func (t *tx) opendirStmt() ([]Line, Effect, error) {
	call, rhs, err := splitGuard(t.tokens())
	if err != nil {
		return nil, Effect{}, err
	}
	p := newParser(t, call[1:])
	parens := p.accept(token.LParen)
	h, err := p.parseHandle()
	if err != nil {
		return nil, Effect{}, err
	}
	if err := p.expect(token.Comma); err != nil {
		return nil, Effect{}, err
	}
	dir, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, Effect{}, err
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return nil, Effect{}, err
		}
	}
	t.need("os")
	body := []Line{line(0, "%s = os.listdir(%s)", pyIdent(h), dir.paren(pyTernary))}
	if rhs == nil {
		return body, Effect{}, nil
	}
	lines, err := t.guarded(body, rhs)
	return lines, Effect{}, err
}

// closeStmt releases the implicit with block of the handle; when that block
// is not innermost the explicit close call is kept.
func (t *tx) closeStmt() ([]Line, Effect, error) {
	call, rhs, err := splitGuard(t.tokens())
	if err != nil {
		return nil, Effect{}, err
	}
	p := newParser(t, call[1:])
	parens := p.accept(token.LParen)
	h, err := p.parseHandle()
	if err != nil {
		return nil, Effect{}, err
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return nil, Effect{}, err
		}
	}
	if !p.atEnd() {
		return nil, Effect{}, p.unexpected("end of close")
	}
	h = pyIdent(h)
	body := []Line{line(0, "%s.close()", h)}
	if rhs != nil {
		if body, err = t.guarded(body, rhs); err != nil {
			return nil, Effect{}, err
		}
	}
	return body, Effect{Op: BlockRelease, Handle: h}, nil
}

// parseFileCall renders readdir/readline/seek/tell/truncate/flock/fileno.
func (p *parser) parseFileCall(word string) (value, error) {
	args, err := p.parseArgs()
	if err != nil {
		return value{}, err
	}
	if len(args) == 0 {
		return value{}, fmt.Errorf("%w: %s without a handle", errUnsupported, word)
	}
	fh := args[0].paren(pyPrimary)
	rest := args[1:]
	switch word {
	case "readdir":
		return value{text: fh, prec: pyPrimary, shape: shapeList, name: plainName(fh)}, nil
	case "readline":
		if p.list {
			return value{text: fh + ".readlines()", prec: pyPrimary, shape: shapeList}, nil
		}
		return value{text: fh + ".readline()", prec: pyPrimary, shape: shapeString}, nil
	case "tell", "fileno":
		return value{text: fh + "." + word + "()", prec: pyPrimary, shape: shapeNumber}, nil
	case "seek", "truncate":
		return atom(fh + "." + word + "(" + joinArgs(rest) + ")"), nil
	case "flock":
		p.t.need("fcntl")
		if len(rest) != 1 {
			return value{}, fmt.Errorf("%w: flock arguments", errUnsupported)
		}
		op := strings.ReplaceAll(rest[0].text, "LOCK_", "fcntl.LOCK_")
		return atom("fcntl.flock(" + fh + ", " + op + ")"), nil
	}
	return value{}, fmt.Errorf("%w: %s", errUnsupported, word)
}
