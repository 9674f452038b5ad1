package translate

import (
	"fmt"
	"strconv"
	"strings"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

func controlFlow(m *construct.Match, env *Env) Result {
	switch m.Rule {
	case "block-close":
		return run(m, env, (*tx).closer)
	case "do-block":
		return run(m, env, (*tx).doBlock)
	case "control-header":
		return run(m, env, (*tx).header)
	case "statement-modifier":
		return run(m, env, (*tx).modifier)
	}
	return simple(m, env)
}

// closer handles `}`, `} else {`, `} elsif (...) {`, `} while (...);` and
// `} or do {` after eval.
func (t *tx) closer() ([]Line, Effect, error) {
	switch t.m.Group("continuation") {
	case "", "while", "until":
		return nil, Effect{Op: BlockClose}, nil
	case "else":
		return []Line{line(0, "else:")}, Effect{Op: BlockReopen}, nil
	case "elsif":
		cond, err := t.condition(lexer.Tokenize(t.m.Group("test")))
		if err != nil {
			return nil, Effect{}, err
		}
		return []Line{line(0, "elif %s:", cond.text)}, Effect{Op: BlockReopen}, nil
	case "or-do":
		if t.m.Group("opener") == "eval-block" {
			return []Line{
				line(0, "except Exception as exc:"),
				line(1, "eval_error = str(exc)"),
			}, Effect{Op: BlockReopen}, nil
		}
	}
	return nil, Effect{}, fmt.Errorf("%w: %s block", errUnsupported, t.m.Group("continuation"))
}

// parenBody returns the tokens inside a leading ( ... ) that spans toks.
func parenBody(toks []token.Token) ([]token.Token, bool) {
	if len(toks) < 2 || toks[0].Kind != token.LParen || toks[len(toks)-1].Kind != token.RParen {
		return nil, false
	}
	depth := 0
	for i, tok := range toks {
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
			if depth == 0 && i != len(toks)-1 {
				return nil, false
			}
		}
	}
	return toks[1 : len(toks)-1], true
}

// condition parses a whole token slice (with or without outer parens) as a
// boolean test.
func (t *tx) condition(toks []token.Token) (value, error) {
	if inner, ok := parenBody(toks); ok {
		toks = inner
	}
	if len(toks) == 0 {
		return atom("True"), nil
	}
	p := newParser(t, toks)
	v, err := p.parseExpr(precLowest)
	if err != nil {
		return value{}, err
	}
	if !p.atEnd() {
		return value{}, p.unexpected("end of condition")
	}
	if v.text == "1" {
		v = atom("True")
	}
	return v, nil
}

func (t *tx) header() ([]Line, Effect, error) {
	toks := t.tokens()
	if label := t.m.Group("label"); label != "" {
		t.partial(diag.PrtLabel, "label %s dropped", label)
		toks = toks[2:]
	}
	kw := t.m.Group("keyword")
	if kw == "block" {
		return nil, Effect{Op: BlockOpen, Transparent: true}, nil
	}
	rest := toks[1:]
	open := Effect{Op: BlockOpen}
	switch kw {
	case "if", "unless":
		cond, err := t.condition(rest)
		if err != nil {
			return nil, Effect{}, err
		}
		if kw == "unless" {
			cond = negate(cond)
		}
		return []Line{line(0, "if %s:", cond.text)}, open, nil
	case "while", "until":
		lines, eff, err := t.whileHeader(kw, rest)
		return lines, eff, err
	case "for", "foreach":
		return t.forHeader(rest)
	}
	return nil, Effect{}, fmt.Errorf("%w: %s block", errUnsupported, kw)
}

// readlineLoop recognises `[my] $x = <FH>`, `defined(...)` around it and a
// bare `<FH>`, returning the loop variable and the iterable.
func (t *tx) readlineLoop(toks []token.Token) (name, iter string, ok bool) {
	if len(toks) > 0 && toks[0].Is("defined") {
		if inner, ok := parenBody(toks[1:]); ok {
			toks = inner
		} else {
			toks = toks[1:]
		}
	}
	if len(toks) > 0 && (toks[0].Is("my") || toks[0].Is("our")) {
		toks = toks[1:]
	}
	var rl token.Token
	switch {
	case len(toks) == 1 && toks[0].Kind == token.Readline:
		name, rl = t.topic, toks[0]
	case len(toks) == 3 && toks[0].Kind == token.Scalar && toks[1].Kind == token.Assign && toks[2].Kind == token.Readline:
		name, rl = t.varName("$", toks[0].Text), toks[2]
	default:
		return "", "", false
	}
	if rl.Text == "" {
		t.need("fileinput")
		return name, "fileinput.input()", true
	}
	v, err := t.readlineValue(rl.Text, false)
	if err != nil {
		return "", "", false
	}
	return name, strings.TrimSuffix(v.text, ".readline()"), true
}

func (t *tx) whileHeader(kw string, rest []token.Token) ([]Line, Effect, error) {
	open := Effect{Op: BlockOpen}
	inner, ok := parenBody(rest)
	if !ok {
		return nil, Effect{}, fmt.Errorf("%w: %s without parentheses", errSyntax, kw)
	}
	if kw == "while" {
		if name, iter, ok := t.readlineLoop(inner); ok {
			return []Line{line(0, "for %s in %s:", name, iter)}, open, nil
		}
		if lines, ok, err := t.eachLoop(inner); ok || err != nil {
			return lines, open, err
		}
		if lines, ok, err := t.finditerLoop(inner); ok || err != nil {
			return lines, open, err
		}
	}
	cond, err := t.condition(inner)
	if err != nil {
		return nil, Effect{}, err
	}
	if kw == "until" {
		cond = negate(cond)
	}
	return []Line{line(0, "while %s:", cond.text)}, open, nil
}

// eachLoop: while (my ($k, $v) = each %h)
func (t *tx) eachLoop(toks []token.Token) ([]Line, bool, error) {
	i := topLevelAssign(toks)
	if i < 0 || i+1 >= len(toks) || !toks[i+1].Is("each") {
		return nil, false, nil
	}
	lhs, err := t.parseLHS(toks[:i])
	if err != nil || len(lhs.items) != 2 {
		return nil, false, err
	}
	p := newParser(t, toks[i+2:])
	h, _, err := p.parseNamedArg()
	if err != nil {
		return nil, true, err
	}
	return []Line{line(0, "for %s, %s in %s.items():", lhs.items[0].text, lhs.items[1].text, h.paren(pyPrimary))}, true, nil
}

// finditerLoop: while ($s =~ /re/g)
func (t *tx) finditerLoop(toks []token.Token) ([]Line, bool, error) {
	n := len(toks)
	if n < 1 || toks[n-1].Kind != token.Match || !strings.ContainsRune(toks[n-1].Flags, 'g') {
		return nil, false, nil
	}
	subject := atom(t.topic)
	if n > 1 {
		if n < 3 || toks[n-2].Kind != token.Bind {
			return nil, false, nil
		}
		p := newParser(t, toks[:n-2])
		v, err := p.parseExpr(precBind + 1)
		if err != nil {
			return nil, true, err
		}
		if !p.atEnd() {
			return nil, false, nil
		}
		subject = v
	}
	tok := toks[n-1]
	pat, err := t.convertPattern(tok.Pattern, tok.Delim)
	if err != nil {
		return nil, true, err
	}
	fl, err := t.regexFlags(tok.Flags, tok.Kind)
	if err != nil {
		return nil, true, err
	}
	t.need("re")
	return []Line{line(0, "for m in re.finditer(%s, %s%s):", pat.text, subject.paren(pyTernary), fl.arg())}, true, nil
}

func (t *tx) forHeader(rest []token.Token) ([]Line, Effect, error) {
	open := Effect{Op: BlockOpen}
	name := ""
	if len(rest) > 0 && (rest[0].Is("my") || rest[0].Is("our") || rest[0].Is("state")) {
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0].Kind == token.Scalar {
		name = t.varName("$", rest[0].Text)
		rest = rest[1:]
	}
	inner, ok := parenBody(rest)
	if !ok {
		return nil, Effect{}, fmt.Errorf("%w: for without a list", errSyntax)
	}
	if name == "" {
		var parts [][]token.Token
		start := 0
		depthScan(inner, func(i int, tok token.Token) bool {
			if tok.Kind == token.Semicolon {
				parts = append(parts, inner[start:i])
				start = i + 1
			}
			return false
		})
		if parts != nil {
			parts = append(parts, inner[start:])
			if len(parts) != 3 {
				return nil, Effect{}, fmt.Errorf("%w: for with %d clauses", errSyntax, len(parts))
			}
			return t.cFor(parts[0], parts[1], parts[2])
		}
		name = t.topic
	}
	p := newParser(t, inner)
	p.list = true
	v, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, Effect{}, err
	}
	if !p.atEnd() {
		return nil, Effect{}, p.unexpected("end of loop list")
	}
	return []Line{line(0, "for %s in %s:", name, loopIter(v))}, open, nil
}

// loopIter renders the list of a foreach loop.
func loopIter(v value) string {
	if strings.HasPrefix(v.text, "list(") && strings.HasSuffix(v.text, ".keys())") && matchBracket(v.text, 4) == len(v.text)-1 {
		return v.text[len("list(") : len(v.text)-len(".keys())")]
	}
	if v.items != nil && len(v.items) == 1 {
		return iterable(v.items[0])
	}
	return iterable(v)
}

// cFor renders for (init; cond; step) as a range loop when the counter
// moves by a constant step towards a bound, otherwise as a while loop.
func (t *tx) cFor(init, cond, step []token.Token) ([]Line, Effect, error) {
	if lines, ok, err := t.rangeFor(init, cond, step); ok || err != nil {
		return lines, Effect{Op: BlockOpen}, err
	}
	t.partial(diag.PrtLoopForm, "C-style for rendered as a while loop; next skips the step")
	var lines []Line
	if len(init) > 0 {
		l, err := t.stmtTokens(init)
		if err != nil {
			return nil, Effect{}, err
		}
		lines = append(lines, l...)
	}
	c, err := t.condition(cond)
	if err != nil {
		return nil, Effect{}, err
	}
	lines = append(lines, line(0, "while %s:", c.text))
	var trailer []Line
	if len(step) > 0 {
		if trailer, err = t.stmtTokens(step); err != nil {
			return nil, Effect{}, err
		}
	}
	return lines, Effect{Op: BlockOpen, Trailer: trailer}, nil
}

func (t *tx) rangeFor(init, cond, step []token.Token) ([]Line, bool, error) {
	if len(init) > 0 && init[0].Is("my") {
		init = init[1:]
	}
	if len(init) < 3 || init[0].Kind != token.Scalar || init[1].Kind != token.Assign {
		return nil, false, nil
	}
	counter := init[0].Text
	if len(cond) < 3 || cond[0].Kind != token.Scalar || cond[0].Text != counter {
		return nil, false, nil
	}
	delta, ok := stepOf(step, counter)
	if !ok {
		return nil, false, nil
	}
	start, err := t.subValue(init[2:])
	if err != nil {
		return nil, true, err
	}
	bound, err := t.subValue(cond[2:])
	if err != nil {
		return nil, true, err
	}
	start, bound = asCount(start), asCount(bound)
	var stop string
	switch op := cond[1].Kind; {
	case delta > 0 && (op == token.Lt || op == token.NotEq):
		stop = bound.text
	case delta > 0 && op == token.LtEq:
		stop = plusOne(bound)
	case delta < 0 && (op == token.Gt || op == token.NotEq):
		stop = bound.text
	case delta < 0 && op == token.GtEq:
		stop = minusOne(bound)
	default:
		return nil, false, nil
	}
	args := start.text + ", " + stop
	switch {
	case delta != 1:
		args += ", " + strconv.Itoa(delta)
	case start.text == "0":
		args = stop
	}
	return []Line{line(0, "for %s in range(%s):", t.varName("$", counter), args)}, true, nil
}

// stepOf reads $i++, ++$i, $i--, --$i, $i += N and $i -= N.
func stepOf(step []token.Token, counter string) (int, bool) {
	isCounter := func(tok token.Token) bool { return tok.Kind == token.Scalar && tok.Text == counter }
	switch {
	case len(step) == 2 && isCounter(step[0]) && step[1].Kind == token.Incr,
		len(step) == 2 && isCounter(step[1]) && step[0].Kind == token.Incr:
		return 1, true
	case len(step) == 2 && isCounter(step[0]) && step[1].Kind == token.Decr,
		len(step) == 2 && isCounter(step[1]) && step[0].Kind == token.Decr:
		return -1, true
	case len(step) == 3 && isCounter(step[0]) && step[1].Kind == token.OpAssign && step[2].Kind == token.Number:
		n, err := strconv.Atoi(step[2].Text)
		if err != nil || n == 0 {
			return 0, false
		}
		switch step[1].Text {
		case "+":
			return n, true
		case "-":
			return -n, true
		}
	}
	return 0, false
}

func minusOne(v value) string {
	if n, err := strconv.Atoi(v.text); err == nil {
		return strconv.Itoa(n - 1)
	}
	return v.paren(pyAdd) + " - 1"
}

// subValue parses a whole token slice as one expression.
func (t *tx) subValue(toks []token.Token) (value, error) {
	p := newParser(t, toks)
	v, err := p.parseExpr(precLowest)
	if err != nil {
		return value{}, err
	}
	if !p.atEnd() {
		return value{}, p.unexpected("end of expression")
	}
	return v, nil
}

// doBlock: `do {` opens `while True:` when the closer carries a loop test,
// otherwise a transparent block.
func (t *tx) doBlock() ([]Line, Effect, error) {
	post := t.m.PostTest
	if post == "" {
		return nil, Effect{Op: BlockOpen, Transparent: true}, nil
	}
	word, test, _ := strings.Cut(post, " ")
	cond, err := t.condition(lexer.Tokenize(strings.TrimSuffix(strings.TrimSpace(test), ";")))
	if err != nil {
		return nil, Effect{}, err
	}
	if word == "while" {
		cond = negate(cond)
	}
	return []Line{line(0, "while True:")}, Effect{
		Op:      BlockOpen,
		Trailer: []Line{line(0, "if %s:", cond.text), line(1, "break")},
	}, nil
}

// modifier renders STMT if/unless/while/until/for EXPR.
func (t *tx) modifier() ([]Line, Effect, error) {
	toks := t.tokens()
	idx := depthScan(toks, func(i int, tok token.Token) bool {
		return i > 0 && tok.Kind == token.Ident && token.IsModifierWord(tok.Text)
	})
	if idx < 0 {
		return nil, Effect{}, fmt.Errorf("%w: statement modifier", errSyntax)
	}
	word, stmt, rest := toks[idx].Text, toks[:idx], toks[idx+1:]
	var header string
	switch word {
	case "if", "unless", "while", "until":
		cond, err := t.condition(rest)
		if err != nil {
			return nil, Effect{}, err
		}
		if word == "unless" || word == "until" {
			cond = negate(cond)
		}
		kw := "if"
		if word == "while" || word == "until" {
			kw = "while"
		}
		header = kw + " " + cond.text + ":"
	default:
		p := newParser(t, rest)
		p.list = true
		v, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, Effect{}, err
		}
		if !p.atEnd() {
			return nil, Effect{}, p.unexpected("end of loop list")
		}
		body, err := t.stmtTokens(stmt)
		if err != nil {
			return nil, Effect{}, err
		}
		iter := loopIter(v)
		// s/// for @list rewrites the elements
		prefix := t.topic + " = "
		if len(body) == 1 && strings.HasPrefix(body[0].Text, prefix) && v.name != "" && v.shape == shapeList {
			expr := strings.TrimPrefix(body[0].Text, prefix)
			return []Line{line(0, "%s[:] = [%s for %s in %s]", v.text, expr, t.topic, v.text)}, Effect{}, nil
		}
		return indentUnder("for "+t.topic+" in "+iter+":", body), Effect{}, nil
	}
	body, err := t.stmtTokens(stmt)
	if err != nil {
		return nil, Effect{}, err
	}
	return indentUnder(header, body), Effect{}, nil
}

func indentUnder(header string, body []Line) []Line {
	out := []Line{line(0, header)}
	for _, l := range body {
		out = append(out, Line{Text: l.Text, Indent: l.Indent + 1})
	}
	return out
}
