package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/token"
)

// blockTokens returns the tokens up to the brace closing an already
// consumed `{`, without trailing semicolons.
func (p *parser) blockTokens() ([]token.Token, error) {
	start := p.pos
	depth := 1
	for !p.atEnd() {
		switch p.next().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				body := p.toks[start : p.pos-1]
				for len(body) > 0 && body[len(body)-1].Kind == token.Semicolon {
					body = body[:len(body)-1]
				}
				return body, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unterminated block", errSyntax)
}

// subExpr renders a whole token slice as one expression.
func (p *parser) subExpr(toks []token.Token) (value, error) {
	sub := newParser(p.t, toks)
	v, err := sub.parseExpr(precLowest)
	if err != nil {
		return value{}, err
	}
	if !sub.atEnd() {
		return value{}, fmt.Errorf("%w: block with several statements", errUnsupported)
	}
	return v, nil
}

// iterable renders v as the source of a for clause.
func iterable(v value) string {
	switch {
	case v.rng != nil, v.shape == shapeList, v.shape == shapeHash:
		return v.paren(pyOr)
	}
	return "[" + v.text + "]"
}

// parseBlockOrExpr parses the first operand of map/grep/sort: a block, or
// an expression followed by a comma.
func (p *parser) parseBlockOrExpr() (body []token.Token, expr *value, err error) {
	if p.at(token.LBrace) {
		save := p.pos
		p.next()
		body, err = p.blockTokens()
		if err != nil {
			return nil, nil, err
		}
		if !p.at(token.Comma) {
			return body, nil, nil
		}
		// `{ ... },` is an anonymous hash
		p.pos = save
	}
	v, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, nil, err
	}
	if err := p.expect(token.Comma); err != nil {
		return nil, nil, err
	}
	return nil, &v, nil
}

func (p *parser) parseMapGrep(word string) (value, error) {
	parens := p.accept(token.LParen)
	body, expr, err := p.parseBlockOrExpr()
	if err != nil {
		return value{}, err
	}
	items, err := p.parseList()
	if err != nil {
		return value{}, err
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return value{}, err
		}
	}
	src := listArg(items)
	if len(items) == 1 {
		src = iterable(items[0])
	}
	var fn value
	if expr != nil {
		fn = *expr
	} else if fn, err = p.subExpr(body); err != nil {
		return value{}, err
	}
	topic := p.t.topic
	if word == "grep" {
		return value{
			text:  "[" + topic + " for " + topic + " in " + src + " if " + fn.paren(pyOr) + "]",
			prec:  pyPrimary,
			shape: shapeList,
		}, nil
	}
	switch {
	case fn.items != nil && len(fn.items) == 2 && fn.fat:
		return value{
			text:  "{" + fn.items[0].paren(pyTernary) + ": " + fn.items[1].paren(pyTernary) + " for " + topic + " in " + src + "}",
			prec:  pyPrimary,
			shape: shapeHash,
		}, nil
	case fn.items != nil || fn.shape == shapeList:
		inner := fn.text
		if fn.items != nil {
			inner = "(" + joinArgs(fn.items) + ")"
		}
		return value{
			text:  "[x for " + topic + " in " + src + " for x in " + inner + "]",
			prec:  pyPrimary,
			shape: shapeList,
		}, nil
	case fn.text == topic:
		return value{text: "list(" + src + ")", prec: pyPrimary, shape: shapeList}, nil
	}
	return value{
		text:  "[" + fn.paren(pyTernary) + " for " + topic + " in " + src + "]",
		prec:  pyPrimary,
		shape: shapeList,
	}, nil
}

func (p *parser) parseSort() (value, error) {
	parens := p.accept(token.LParen)
	var body []token.Token
	if p.at(token.LBrace) {
		p.next()
		var err error
		if body, err = p.blockTokens(); err != nil {
			return value{}, err
		}
	} else if tok := p.peek(); tok.Kind == token.Ident && startsTerm(p.peekAt(1)) && p.t.env.isSub(tok.Text) {
		return value{}, fmt.Errorf("%w: sort with a named comparator", errUnsupported)
	}
	items, err := p.parseList()
	if err != nil {
		return value{}, err
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return value{}, err
		}
	}
	src := listArg(items)
	for _, suffix := range []string{".keys())"} {
		if strings.HasPrefix(src, "list(") && strings.HasSuffix(src, suffix) && matchBracket(src, 4) == len(src)-1 {
			src = src[len("list(") : len(src)-len(suffix)]
		}
	}
	sorted := func(extra string) value {
		return value{text: "sorted(" + src + extra + ")", prec: pyPrimary, shape: shapeList}
	}
	if body == nil {
		return sorted(""), nil
	}
	key, reverse, ok, err := p.sortKey(body)
	if err != nil {
		return value{}, err
	}
	if ok {
		extra := ""
		if key != "x" {
			extra = ", key=lambda x: " + key
		}
		if reverse {
			extra += ", reverse=True"
		}
		return sorted(extra), nil
	}
	cmp, err := p.withRename(map[string]string{"a": "a", "b": "b"}, func() (value, error) {
		return p.subExpr(body)
	})
	if err != nil {
		return value{}, err
	}
	p.t.need("functools")
	return sorted(", key=functools.cmp_to_key(lambda a, b: " + cmp.paren(pyTernary) + ")"), nil
}

// sortKey recognises comparators of the form F($a) <=> F($b) (or cmp),
// returning the key F(x). reverse is set when $b comes first.
func (p *parser) sortKey(body []token.Token) (key string, reverse, ok bool, err error) {
	split := -1
	depth := 0
	for i, tok := range body {
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		case token.Spaceship, token.OrOr:
			if depth == 0 {
				if tok.Kind == token.OrOr || split >= 0 {
					return "", false, false, nil
				}
				split = i
			}
		case token.Ident:
			if depth == 0 && (tok.Text == "cmp" || tok.Text == "or") {
				if tok.Text == "or" || split >= 0 {
					return "", false, false, nil
				}
				split = i
			}
		}
	}
	if split < 0 {
		return "", false, false, nil
	}
	left, right := body[:split], body[split+1:]
	first, second := "a", "b"
	if usesScalar(left, "b") && usesScalar(right, "a") {
		first, second, reverse = "b", "a", true
	}
	if usesScalar(left, second) || usesScalar(right, first) {
		return "", false, false, nil
	}
	l, err := p.withRename(map[string]string{first: "x"}, func() (value, error) { return p.subExpr(left) })
	if err != nil {
		return "", false, false, err
	}
	r, err := p.withRename(map[string]string{second: "x"}, func() (value, error) { return p.subExpr(right) })
	if err != nil {
		return "", false, false, err
	}
	if l.text != r.text {
		return "", false, false, nil
	}
	return l.paren(pyTernary), reverse, true, nil
}

func usesScalar(toks []token.Token, name string) bool {
	for _, tok := range toks {
		if tok.Kind == token.Scalar && tok.Text == name {
			return true
		}
	}
	return false
}

func (p *parser) withRename(rename map[string]string, fn func() (value, error)) (value, error) {
	saved := p.t.rename
	p.t.rename = rename
	defer func() { p.t.rename = saved }()
	return fn()
}

// parseSplit renders split /PATTERN/, EXPR, LIMIT.
func (p *parser) parseSplit() (value, error) {
	parens := p.accept(token.LParen)
	var patTok *token.Token
	var patExpr *value
	tok := p.peek()
	switch {
	case tok.Kind == token.Match || tok.Kind == token.QuoteRegex:
		p.next()
		patTok = &tok
	case (tok.Kind == token.String || tok.Kind == token.Interp) && (p.peekAt(1).Kind == token.Comma || p.peekAt(1).Kind == token.RParen):
		p.next()
		patTok = &tok
	case !p.listEnd():
		v, err := p.parseExpr(precAssign)
		if err != nil {
			return value{}, err
		}
		patExpr = &v
	}
	var args []value
	if p.accept(token.Comma) {
		var err error
		if args, err = p.parseList(); err != nil {
			return value{}, err
		}
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return value{}, err
		}
	}
	if patExpr != nil {
		subject := atom(p.t.topic)
		if len(args) > 0 {
			subject = args[0]
		}
		p.t.need("re")
		return value{text: "re.split(" + patExpr.paren(pyTernary) + ", " + subject.paren(pyTernary) + ")", prec: pyPrimary, shape: shapeList}, nil
	}
	if patTok == nil {
		// split with no arguments splits $_ on whitespace
		return value{text: p.t.topic + ".split()", prec: pyPrimary, shape: shapeList}, nil
	}
	return p.t.splitValue(args, patTok)
}
