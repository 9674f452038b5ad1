package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/diag"
	"perl2py/internal/token"
)

func (p *parser) parsePrimary() (value, error) {
	tok := p.next()
	switch tok.Kind {
	case token.Number:
		return numberValue(tok.Text), nil
	case token.String, token.Interp:
		return p.t.stringToken(tok)
	case token.Words:
		return p.t.wordsValue(tok.Text), nil
	case token.Command:
		return p.t.commandValue(tok.Text)
	case token.Match:
		return p.t.matchValue(tok, atom(p.t.topic), p.list)
	case token.Subst, token.Trans:
		return p.t.rewrite(tok, scalarVar(p.t.topic))
	case token.QuoteRegex:
		return p.t.qrValue(tok)
	case token.Readline:
		return p.t.readlineValue(tok.Text, p.list)
	case token.Scalar, token.Array, token.Hash, token.ArrayLast, token.Cast, token.FuncRef:
		return p.parseVariable(tok)
	case token.LParen:
		return p.parseParen()
	case token.LBracket:
		return p.parseAnonArray()
	case token.LBrace:
		return p.parseAnonHash()
	case token.Ident:
		return p.parseWord(tok)
	}
	p.pos--
	return value{}, p.unexpected("expected a term")
}

func numberValue(text string) value {
	v := value{text: text, prec: pyPrimary, shape: shapeNumber}
	if len(text) > 1 && text[0] == '0' && isDigits(strings.ReplaceAll(text, "_", "")) {
		v.text = "0o" + text[1:]
	}
	return v
}

// wordsValue renders qw(...) as a list of string literals.
func (t *tx) wordsValue(body string) value {
	fields := strings.Fields(body)
	items := make([]value, 0, len(fields))
	for _, f := range fields {
		items = append(items, t.stringValue([]fpart{{lit: f}}))
	}
	return listValue(items, false)
}

func (t *tx) commandValue(body string) (value, error) {
	parts, err := t.interpolate(body)
	if err != nil {
		return value{}, err
	}
	t.need("subprocess")
	cmd := t.stringValue(parts)
	return value{text: "subprocess.check_output(" + cmd.text + ", shell=True, text=True)", prec: pyPrimary, shape: shapeString}, nil
}

// readlineValue renders <$fh>, <STDIN>, <FH>, <> and <*.glob>.
func (t *tx) readlineValue(inner string, list bool) (value, error) {
	var fh string
	switch {
	case inner == "" || inner == "STDIN" || inner == "ARGV":
		t.need("sys")
		fh = "sys.stdin"
	case strings.HasPrefix(inner, "$") && isIdent(inner[1:]):
		fh = t.varName("$", inner[1:])
	case isIdent(inner):
		fh = inner
	default:
		t.need("glob")
		return value{text: "glob.glob(" + pyQuote(inner, t.quoteChar()) + ")", prec: pyPrimary, shape: shapeList}, nil
	}
	if list {
		return value{text: fh + ".readlines()", prec: pyPrimary, shape: shapeList}, nil
	}
	return value{text: fh + ".readline()", prec: pyPrimary, shape: shapeString}, nil
}

// parseParen parses ( ... ) in term position, with an optional list slice.
func (p *parser) parseParen() (value, error) {
	var v value
	if p.accept(token.RParen) {
		v = value{text: "[]", prec: pyPrimary, shape: shapeList, items: []value{}}
	} else {
		var err error
		if v, err = p.parseExpr(precLowest); err != nil {
			return value{}, err
		}
		if err := p.expect(token.RParen); err != nil {
			return value{}, err
		}
		v.grouped = true
	}
	if p.at(token.LBracket) {
		p.next()
		return p.subscript(v.paren(pyPrimary), false)
	}
	return v, nil
}

func (p *parser) parseAnonArray() (value, error) {
	if p.accept(token.RBracket) {
		return atom("[]"), nil
	}
	items, err := p.parseList()
	if err != nil {
		return value{}, err
	}
	if err := p.expect(token.RBracket); err != nil {
		return value{}, err
	}
	// [...] is a single scalar reference
	v := listValue(items, false)
	v.shape, v.items = shapeScalar, nil
	return v, nil
}

func (p *parser) parseAnonHash() (value, error) {
	if p.accept(token.RBrace) {
		return atom("{}"), nil
	}
	items, err := p.parseList()
	if err != nil {
		return value{}, err
	}
	if err := p.expect(token.RBrace); err != nil {
		return value{}, err
	}
	if v, ok := hashValue(items); ok {
		v.shape = shapeScalar
		return v, nil
	}
	if len(items) == 1 && items[0].shape == shapeList {
		return atom("dict(zip(" + items[0].text + "[::2], " + items[0].text + "[1::2]))"), nil
	}
	return value{}, fmt.Errorf("%w: hash built from an odd list", errUnsupported)
}

// parseVariable parses a sigiled variable and its subscripts.
func (p *parser) parseVariable(tok token.Token) (value, error) {
	switch tok.Kind {
	case token.Scalar:
		switch {
		case p.at(token.LBracket) && !p.peek().Spaced:
			p.next()
			return p.subscript(p.t.container("@", tok.Text), false)
		case p.at(token.LBrace) && !p.peek().Spaced:
			p.next()
			return p.subscript(p.t.container("%", tok.Text), true)
		}
		if text, sh, ok := p.t.special("$", tok.Text); ok {
			return value{text: text, prec: pyPrimary, shape: sh}, nil
		}
		return scalarVar(p.t.varName("$", tok.Text)), nil
	case token.Array:
		name := p.t.container("@", tok.Text)
		switch {
		case p.at(token.LBracket):
			p.next()
			return p.slice(name, false)
		case p.at(token.LBrace):
			p.next()
			return p.slice(p.t.container("%", tok.Text), true)
		}
		return value{text: name, prec: pyPrimary, shape: shapeList, name: plainName(name)}, nil
	case token.Hash:
		name := p.t.container("%", tok.Text)
		return value{text: name, prec: pyPrimary, shape: shapeHash, name: plainName(name)}, nil
	case token.ArrayLast:
		var inner string
		if tok.Text != "" {
			inner = p.t.container("@", tok.Text)
		} else {
			v, err := p.parseDerefTarget()
			if err != nil {
				return value{}, err
			}
			inner = v.text
		}
		return value{text: "len(" + inner + ") - 1", prec: pyAdd, shape: shapeNumber}, nil
	case token.FuncRef:
		name := pyIdent(tok.Text)
		if p.at(token.LParen) {
			p.next()
			return p.callArgs(name)
		}
		// &name без скобок вызывает sub с текущим @_
		if p.t.env.InSub {
			return atom(name + "(*args)"), nil
		}
		return atom(name + "()"), nil
	case token.Cast:
		return p.parseCast(tok.Text)
	}
	return value{}, p.unexpected("expected a variable")
}

// container renders the array or hash named by an element access.
func (t *tx) container(sigil, name string) string {
	if text, _, ok := t.special(sigil, name); ok {
		return text
	}
	return t.varName(sigil, name)
}

func plainName(text string) string {
	if isIdent(text) {
		return text
	}
	return ""
}

// parseDerefTarget parses what follows a cast sigil: {expr} or $name.
func (p *parser) parseDerefTarget() (value, error) {
	switch {
	case p.at(token.LBrace):
		p.next()
		v, err := p.parseExpr(precLowest)
		if err != nil {
			return value{}, err
		}
		if err := p.expect(token.RBrace); err != nil {
			return value{}, err
		}
		return v, nil
	case p.at(token.Scalar):
		tok := p.next()
		if text, sh, ok := p.t.special("$", tok.Text); ok {
			return value{text: text, prec: pyPrimary, shape: sh}, nil
		}
		return scalarVar(p.t.varName("$", tok.Text)), nil
	case p.at(token.Cast):
		tok := p.next()
		return p.parseCast(tok.Text)
	}
	return value{}, p.unexpected("expected a dereference target")
}

// parseCast handles @{...} @$x %$x ${...} $$x &$f.
func (p *parser) parseCast(sigil string) (value, error) {
	inner, err := p.parseDerefTarget()
	if err != nil {
		return value{}, err
	}
	target := inner.paren(pyPrimary)
	switch sigil {
	case "@":
		switch {
		case p.at(token.LBracket):
			p.next()
			return p.slice(target, false)
		case p.at(token.LBrace):
			p.next()
			return p.slice(target, true)
		}
		return value{text: target, prec: pyPrimary, shape: shapeList, name: inner.name, elem: inner.elem}, nil
	case "%":
		return value{text: target, prec: pyPrimary, shape: shapeHash, name: inner.name}, nil
	case "&":
		if p.at(token.LParen) {
			p.next()
			return p.callArgs(target)
		}
		return atom(target + "(*args)"), nil
	}
	switch {
	case p.at(token.LBracket):
		p.next()
		return p.subscript(target, false)
	case p.at(token.LBrace):
		p.next()
		return p.subscript(target, true)
	}
	p.t.partial(diag.PrtFallback, "scalar dereference of %s rendered as the reference", inner.text)
	return inner, nil
}

// subscript parses the index or key after an opening [ or { and renders
// the element of container.
func (p *parser) subscript(container string, hash bool) (value, error) {
	var key value
	var err error
	if hash {
		key, err = p.parseKey()
	} else {
		key, err = p.parseExpr(precLowest)
		if err == nil {
			err = p.expect(token.RBracket)
		}
	}
	if err != nil {
		return value{}, err
	}
	if !hash && (key.rng != nil || key.items != nil) {
		return p.t.sliceOf(container, key), nil
	}
	if !hash {
		key = asCount(key)
	}
	return p.t.element(container, key, hash, p.lvalue), nil
}

// element renders container[key]; %ENV lookups use .get outside lvalues.
func (t *tx) element(container string, key value, hash, lvalue bool) value {
	text := container + "[" + key.text + "]"
	switch {
	case container == "sys.argv[1:]" && isDigits(key.text):
		text = fmt.Sprintf("sys.argv[%s]", plusOne(key))
	case container == "os.environ" && !lvalue:
		text = container + ".get(" + key.text + ")"
	}
	return value{text: text, prec: pyPrimary, elem: &elemVal{container: container, key: key, hash: hash}}
}

// parseKey parses a hash key up to the closing brace. A bareword key is a
// string.
func (p *parser) parseKey() (value, error) {
	tok := p.peek()
	if tok.Kind == token.Ident && p.peekAt(1).Kind == token.RBrace {
		p.next()
		p.next()
		if v, ok, err := p.t.heredocValue(tok.Text); ok {
			return v, err
		}
		return p.t.stringValue([]fpart{{lit: tok.Text}}), nil
	}
	if tok.Kind == token.Minus && p.peekAt(1).Kind == token.Ident && p.peekAt(2).Kind == token.RBrace {
		p.pos += 3
		return p.t.stringValue([]fpart{{lit: "-" + p.toks[p.pos-2].Text}}), nil
	}
	key, err := p.parseExpr(precLowest)
	if err != nil {
		return value{}, err
	}
	if err := p.expect(token.RBrace); err != nil {
		return value{}, err
	}
	return key, nil
}

// slice parses @a[...] or @h{...}.
func (p *parser) slice(container string, hash bool) (value, error) {
	var key value
	var err error
	if hash {
		key, err = p.parseKey()
	} else {
		key, err = p.parseExpr(precLowest)
		if err == nil {
			err = p.expect(token.RBracket)
		}
	}
	if err != nil {
		return value{}, err
	}
	return p.t.sliceOf(container, key), nil
}

func (t *tx) sliceOf(container string, key value) value {
	if key.rng != nil {
		lo := key.rng.lo.text
		if lo == "0" {
			lo = ""
		}
		return value{text: container + "[" + lo + ":" + plusOne(key.rng.hi) + "]", prec: pyPrimary, shape: shapeList}
	}
	return value{text: "[" + container + "[k] for k in " + asList(key) + "]", prec: pyPrimary, shape: shapeList}
}

// parsePostfix parses -> chains and implicit-arrow subscripts.
func (p *parser) parsePostfix(v value) (value, error) {
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.LBracket && v.elem != nil:
			p.next()
			next, err := p.subscript(v.text, false)
			if err != nil {
				return value{}, err
			}
			v = next
		case tok.Kind == token.LBrace && v.elem != nil:
			p.next()
			next, err := p.subscript(v.text, true)
			if err != nil {
				return value{}, err
			}
			v = next
		case tok.Kind == token.Arrow:
			p.next()
			next, err := p.parseArrow(v)
			if err != nil {
				return value{}, err
			}
			v = next
		default:
			return v, nil
		}
	}
}

// parseArrow renders what follows ->.
func (p *parser) parseArrow(v value) (value, error) {
	target := v.paren(pyPrimary)
	tok := p.next()
	switch tok.Kind {
	case token.LBracket:
		return p.subscript(target, false)
	case token.LBrace:
		return p.subscript(target, true)
	case token.LParen:
		return p.callArgs(target)
	case token.Cast:
		// ->@* / ->%*
		if p.accept(token.Star) {
			sh := shapeList
			if tok.Text == "%" {
				sh = shapeHash
			}
			return value{text: target, prec: pyPrimary, shape: sh}, nil
		}
	case token.Array:
		if tok.Text == "" {
			return value{text: target, prec: pyPrimary, shape: shapeList}, nil
		}
	case token.Ident:
		if tok.Text == "new" && isClassName(v) {
			return p.methodCall(target, "")
		}
		return p.methodCall(target, tok.Text)
	case token.Scalar:
		name := p.t.varName("$", tok.Text)
		return p.methodCall("getattr("+target+", "+name+")", "")
	}
	p.pos--
	return value{}, p.unexpected("after ->")
}

func isClassName(v value) bool {
	return v.shape == shapeScalar && v.name == "" && v.prec == pyPrimary && v.parts == nil &&
		v.text != "" && v.text[0] >= 'A' && v.text[0] <= 'Z' && !strings.ContainsAny(v.text, "([\"'")
}

// methodCall renders target.method(args); method "" calls target itself.
func (p *parser) methodCall(target, method string) (value, error) {
	callee := target
	if method != "" {
		callee = target + "." + method
	}
	if p.at(token.LParen) {
		p.next()
		return p.callArgs(callee)
	}
	return atom(callee + "()"), nil
}

// callArgs parses arguments up to the closing paren and renders a call.
func (p *parser) callArgs(callee string) (value, error) {
	var items []value
	if !p.accept(token.RParen) {
		var err error
		if items, err = p.parseList(); err != nil {
			return value{}, err
		}
		if err := p.expect(token.RParen); err != nil {
			return value{}, err
		}
	}
	return atom(callee + "(" + joinArgs(items) + ")"), nil
}

// joinArgs renders call arguments; list arguments spread, pairs become
// keyword-free positional pairs.
func joinArgs(items []value) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, spread(it))
	}
	return strings.Join(parts, ", ")
}
