package translate

import (
	"fmt"
	"strconv"
	"strings"

	"perl2py/internal/diag"
	"perl2py/internal/token"
)

// parser is a Pratt parser over the tokens of one Perl expression. It renders
// Python text directly; there is no intermediate tree.
type parser struct {
	t    *tx
	toks []token.Token
	pos  int
	// list: the expression is evaluated in list context.
	list bool
	// lvalue: hash elements render as plain subscripts.
	lvalue bool
}

func newParser(t *tx, toks []token.Token) *parser {
	return &parser{t: t, toks: toks}
}

func (p *parser) peek() token.Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) token.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return token.Token{Kind: token.EOF}
}

func (p *parser) next() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *parser) accept(k token.Kind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(k token.Kind) error {
	if p.accept(k) {
		return nil
	}
	return p.unexpected("expected " + k.String())
}

func (p *parser) unexpected(ctx string) error {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return fmt.Errorf("%w: unexpected end of expression (%s)", errSyntax, ctx)
	}
	text := tok.Text
	if text == "" {
		text = tok.Kind.String()
	}
	return fmt.Errorf("%w: %q (%s)", errSyntax, text, ctx)
}

// listEnd reports whether no further list element follows.
func (p *parser) listEnd() bool {
	tok := p.peek()
	switch tok.Kind {
	case token.EOF, token.RParen, token.RBracket, token.RBrace, token.Semicolon, token.Colon:
		return true
	case token.Ident:
		switch tok.Text {
		case "or", "and", "xor", "if", "unless", "while", "until", "for", "foreach":
			return true
		}
	}
	return false
}

// argsEnd reports whether a named operator at this point has no operand.
func (p *parser) argsEnd() bool {
	if p.listEnd() {
		return true
	}
	tok := p.peek()
	switch tok.Kind {
	case token.Comma, token.FatArrow, token.Question, token.Assign, token.OpAssign:
		return true
	case token.Minus, token.Plus, token.Lt, token.Star, token.Percent, token.Amp:
		// print -1 против shift - 1
		if p.pos > 0 {
			if prev := p.toks[p.pos-1]; prev.Kind == token.Ident && token.TakesTerm(prev.Text) {
				return false
			}
		}
		return true
	case token.Ident:
		prec, _ := binaryPrec(tok)
		return prec >= 0
	}
	prec, _ := binaryPrec(tok)
	return prec >= 0
}

// parseExpr parses operators binding at least as tightly as minPrec.
func (p *parser) parseExpr(minPrec int) (value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return value{}, err
	}
	for {
		tok := p.peek()
		prec, right := binaryPrec(tok)
		if prec < 0 || prec < minPrec {
			return left, nil
		}
		if prec == precList {
			left, err = p.parseCommaList(left)
			if err != nil {
				return value{}, err
			}
			continue
		}
		p.next()
		next := prec + 1
		if right {
			next = prec
		}
		switch tok.Kind {
		case token.Question:
			left, err = p.parseTernary(left)
		case token.Assign:
			var rhs value
			if rhs, err = p.parseExpr(precAssign); err == nil {
				left, err = p.t.walrus(left, rhs)
			}
		case token.OpAssign:
			var rhs value
			if rhs, err = p.parseExpr(precAssign); err == nil {
				left, err = p.t.opWalrus(tok.Text, left, rhs)
			}
		case token.Bind, token.NotBind:
			left, err = p.parseBind(left, tok.Kind == token.NotBind)
		case token.Range:
			var hi value
			if hi, err = p.parseExpr(next); err == nil {
				left, err = p.t.rangeValue(left, hi)
			}
		default:
			var rhs value
			if rhs, err = p.parseExpr(next); err == nil {
				left, err = p.t.binary(tok, left, rhs)
			}
		}
		if err != nil {
			return value{}, err
		}
	}
}

// parseCommaList collects `a, b => c, ...` into one list value.
func (p *parser) parseCommaList(first value) (value, error) {
	items := []value{first}
	fat := false
	for p.at(token.Comma) || p.at(token.FatArrow) {
		if p.next().Kind == token.FatArrow {
			fat = true
		}
		for p.accept(token.Comma) {
		}
		if p.listEnd() {
			break
		}
		v, err := p.parseExpr(precAssign)
		if err != nil {
			return value{}, err
		}
		items = append(items, v)
	}
	return listValue(items, fat), nil
}

// parseList parses a comma list and always returns its elements.
func (p *parser) parseList() ([]value, error) {
	if p.listEnd() {
		return nil, nil
	}
	v, err := p.parseExpr(precList)
	if err != nil {
		return nil, err
	}
	if v.items != nil {
		return v.items, nil
	}
	return []value{v}, nil
}

func (p *parser) parseTernary(cond value) (value, error) {
	a, err := p.parseExpr(precAssign)
	if err != nil {
		return value{}, err
	}
	if err := p.expect(token.Colon); err != nil {
		return value{}, err
	}
	b, err := p.parseExpr(precTernary)
	if err != nil {
		return value{}, err
	}
	return value{
		text:  a.paren(pyOr) + " if " + cond.paren(pyOr) + " else " + b.paren(pyTernary),
		prec:  pyTernary,
		shape: a.shape,
	}, nil
}

// walrus renders an assignment used as a value.
func (t *tx) walrus(lhs, rhs value) (value, error) {
	if lhs.name == "" || lhs.shape != shapeScalar {
		return value{}, fmt.Errorf("%w: assignment to %s inside an expression", errUnsupported, lhs.text)
	}
	return value{text: "(" + lhs.name + " := " + rhs.paren(pyTernary) + ")", prec: pyPrimary, shape: rhs.shape}, nil
}

func (t *tx) opWalrus(op string, lhs, rhs value) (value, error) {
	if lhs.name == "" {
		return value{}, fmt.Errorf("%w: %s= inside an expression", errUnsupported, op)
	}
	var v value
	switch op {
	case ".":
		v = t.concat(lhs, rhs)
	case "||":
		v = value{text: lhs.text + " or " + rhs.paren(pyAnd), prec: pyOr}
	case "&&":
		v = value{text: lhs.text + " and " + rhs.paren(pyNot), prec: pyAnd}
	case "//":
		v = definedOr(lhs, rhs)
	default:
		py := op
		if mapped, ok := t.table().Operator(op); ok {
			py = mapped
		}
		prec := pyOpPrec(py)
		v = value{text: lhs.text + " " + py + " " + rhs.paren(prec+1), prec: prec}
	}
	return t.walrus(lhs, v)
}

func definedOr(a, b value) value {
	return value{
		text:  a.paren(pyOr) + " if " + a.paren(pyCompare+1) + " is not None else " + b.paren(pyTernary),
		prec:  pyTernary,
		shape: a.shape,
	}
}

// binary renders an infix operator through the RuleTable.
func (t *tx) binary(tok token.Token, l, r value) (value, error) {
	op := operatorText(tok)
	switch op {
	case ".":
		return t.concat(l, r), nil
	case "x":
		return t.repeat(l, r), nil
	case "<=>", "cmp":
		return value{text: "perl_cmp(" + l.paren(pyTernary) + ", " + r.paren(pyTernary) + ")", prec: pyPrimary, shape: shapeNumber}, nil
	case "//":
		return definedOr(l, r), nil
	case "xor":
		return value{text: "bool(" + l.text + ") != bool(" + r.text + ")", prec: pyCompare}, nil
	}
	py, ok := t.table().Operator(op)
	if !ok {
		py = op
	}
	switch op {
	case "+", "-", "*", "/", "%", "**", "<", ">", "<=", ">=", "==", "!=":
		l, r = asCount(l), asCount(r)
	}
	prec := pyOpPrec(py)
	var lt, rt string
	switch prec {
	case pyCompare:
		lt, rt = l.paren(pyCompare+1), r.paren(pyCompare+1)
	case pyPow:
		lt, rt = l.paren(pyPrimary), r.paren(pyUnary)
	case pyLambda:
		return value{}, fmt.Errorf("%w: operator %s", errUnsupported, op)
	default:
		lt, rt = l.paren(prec), r.paren(prec+1)
	}
	v := value{text: lt + " " + py + " " + rt, prec: prec}
	switch prec {
	case pyCompare:
		if n, ok := negatedCompare[py]; ok {
			v.neg = lt + " " + n + " " + rt
		}
	case pyAdd, pyMul, pyPow:
		v.shape = shapeNumber
		if py == "+" && l.shape == shapeString {
			v.shape = shapeString
		}
	case pyOr, pyAnd:
		if l.shape == r.shape {
			v.shape = l.shape
		}
	}
	return v, nil
}

// concat renders Perl's `.`: f-string parts are merged when possible.
func (t *tx) concat(l, r value) value {
	if op, ok := t.table().Operator("."); ok && op != "+" {
		prec := pyOpPrec(op)
		return value{text: l.paren(prec) + " " + op + " " + r.paren(prec+1), prec: prec, shape: shapeString}
	}
	if plainConcat(l) || plainConcat(r) {
		return value{text: strOperand(l) + " + " + strOperand(r), prec: pyAdd, shape: shapeString}
	}
	parts := append(concatParts(l), concatParts(r)...)
	return t.stringValue(parts)
}

func concatParts(v value) []fpart {
	if v.parts != nil {
		return v.parts
	}
	v = asCount(v)
	return []fpart{{expr: v.paren(pyTernary), isExpr: true}}
}

// plainConcat: v cannot be placed inside an f-string replacement field.
func plainConcat(v value) bool {
	if v.parts != nil {
		return strings.HasPrefix(v.text, `"""`) || strings.HasPrefix(v.text, `f"""`)
	}
	return strings.ContainsAny(v.text, "\"\\\n'{") || v.prec < pyTernary
}

func strOperand(v value) string {
	if v.shape == shapeString {
		return v.paren(pyAdd)
	}
	return "str(" + asCount(v).text + ")"
}

// repeat renders `x`: a parenthesized list repeats as a list.
func (t *tx) repeat(l, r value) value {
	r = asCount(r)
	if l.items != nil || l.grouped && l.shape != shapeString {
		lv := l
		if l.items == nil {
			lv = listValue([]value{l}, false)
		}
		return value{text: lv.text + " * " + r.paren(pyMul+1), prec: pyMul, shape: shapeList}
	}
	return value{text: l.paren(pyMul) + " * " + r.paren(pyMul+1), prec: pyMul, shape: shapeString}
}

// rangeValue renders lo..hi as range(); single letters expand via chr/ord.
func (t *tx) rangeValue(lo, hi value) (value, error) {
	if lo.isStringLit() && hi.isStringLit() {
		a, b := lo.literal(), hi.literal()
		if len(a) != 1 || len(b) != 1 {
			return value{}, fmt.Errorf("%w: string range %q..%q", errUnsupported, a, b)
		}
		text := "[chr(c) for c in range(ord(" + lo.text + "), ord(" + hi.text + ") + 1)]"
		return value{text: text, prec: pyPrimary, shape: shapeList}, nil
	}
	lo, hi = asCount(lo), asCount(hi)
	stop := plusOne(hi)
	text := "range(" + lo.text + ", " + stop + ")"
	if lo.text == "0" {
		text = "range(" + stop + ")"
	}
	return value{text: text, prec: pyPrimary, shape: shapeList, rng: &rangeVal{lo: lo, hi: hi}}, nil
}

// plusOne renders hi + 1, folding literals and a trailing "- 1".
func plusOne(v value) string {
	if n, err := strconv.Atoi(v.text); err == nil {
		return strconv.Itoa(n + 1)
	}
	if v.prec == pyAdd && strings.HasSuffix(v.text, " - 1") {
		return strings.TrimSuffix(v.text, " - 1")
	}
	return v.paren(pyAdd) + " + 1"
}

// parseBind handles the right side of =~ and !~.
func (p *parser) parseBind(subject value, negated bool) (value, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Match:
		p.next()
		v, err := p.t.matchValue(tok, subject, p.list && !negated)
		if err != nil || !negated {
			return v, err
		}
		return negate(v), nil
	case token.Subst, token.Trans:
		p.next()
		if negated {
			return value{}, fmt.Errorf("%w: !~ with %s", errUnsupported, tok.Kind)
		}
		return p.t.rewrite(tok, subject)
	}
	rhs, err := p.parseExpr(precBind + 1)
	if err != nil {
		return value{}, err
	}
	p.t.need("re")
	v := value{text: "re.search(" + rhs.paren(pyTernary) + ", " + subject.paren(pyTernary) + ")", prec: pyPrimary}
	v.neg = "not " + v.text
	if negated {
		return negate(v), nil
	}
	return v, nil
}

// rewrite renders s/// and tr/// applied to subject. Unless the operator
// returns its result (/r, tr counting), the value carries the lvalue to
// assign back to.
func (t *tx) rewrite(tok token.Token, subject value) (value, error) {
	var v value
	var err error
	if tok.Kind == token.Subst {
		v, err = t.substValue(tok, subject)
	} else {
		v, err = t.transValue(tok, subject)
	}
	if err != nil {
		return value{}, err
	}
	if strings.ContainsRune(tok.Flags, 'r') || v.shape == shapeNumber {
		return v, nil
	}
	v.inplace = subject.text
	t.pending++
	return v, nil
}

// parseUnary handles prefix operators, then a primary with its postfix chain.
func (p *parser) parseUnary() (value, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Bang:
		p.next()
		v, err := p.parseExpr(precUnary)
		if err != nil {
			return value{}, err
		}
		return negate(v), nil
	case token.Minus:
		p.next()
		if w := p.peek(); w.Kind == token.Ident && (p.peekAt(1).Kind == token.FatArrow || p.peekAt(1).Kind == token.RBrace) {
			p.next()
			return p.t.stringValue([]fpart{{lit: "-" + w.Text}}), nil
		}
		v, err := p.parseExpr(precUnary)
		if err != nil {
			return value{}, err
		}
		v = asCount(v)
		return value{text: "-" + v.paren(pyUnary), prec: pyUnary, shape: shapeNumber}, nil
	case token.Plus:
		p.next()
		return p.parseExpr(precUnary)
	case token.Tilde:
		p.next()
		v, err := p.parseExpr(precUnary)
		if err != nil {
			return value{}, err
		}
		return value{text: "~" + v.paren(pyUnary), prec: pyUnary, shape: shapeNumber}, nil
	case token.Backslash:
		p.next()
		if p.at(token.FuncRef) {
			// \&name is the function itself
			return atom(pyIdent(p.next().Text)), nil
		}
		v, err := p.parseExpr(precUnary)
		if err != nil {
			return value{}, err
		}
		if v.shape == shapeScalar && v.name != "" {
			p.t.partial(diag.PrtFallback, "reference to scalar %s rendered as its value", v.name)
		}
		v.decl = false
		if v.shape == shapeList || v.shape == shapeHash {
			// \@a is a scalar holding the container
			v.shape, v.items = shapeScalar, nil
		}
		return v, nil
	case token.Incr, token.Decr:
		p.next()
		v, err := p.parseExpr(precIncr)
		if err != nil {
			return value{}, err
		}
		op := "+"
		if tok.Kind == token.Decr {
			op = "-"
		}
		if v.name == "" {
			return value{}, fmt.Errorf("%w: prefix %s on %s", errUnsupported, tok.Kind, v.text)
		}
		return value{text: "(" + v.name + " := " + v.name + " " + op + " 1)", prec: pyPrimary, shape: shapeNumber}, nil
	case token.FileTest:
		p.next()
		arg, ok, err := p.parseNamedArg()
		if err != nil {
			return value{}, err
		}
		if !ok {
			arg = atom(p.t.topic)
		}
		return p.t.fileTest(tok.Text, arg)
	case token.Ident:
		if tok.Text == "not" {
			p.next()
			if p.listEnd() {
				return atom("True"), nil
			}
			v, err := p.parseExpr(precLowNot)
			if err != nil {
				return value{}, err
			}
			return negate(v), nil
		}
	}
	v, err := p.parsePrimary()
	if err != nil {
		return value{}, err
	}
	v, err = p.parsePostfix(v)
	if err != nil {
		return value{}, err
	}
	if p.at(token.Incr) || p.at(token.Decr) {
		return value{}, fmt.Errorf("%w: postfix %s inside an expression", errUnsupported, p.peek().Kind)
	}
	return v, nil
}

// parseNamedArg parses the single operand of a named unary operator.
// ok=false when the operand is omitted.
func (p *parser) parseNamedArg() (value, bool, error) {
	if p.at(token.LParen) {
		p.next()
		if p.accept(token.RParen) {
			return value{}, false, nil
		}
		v, err := p.parseExpr(precLowest)
		if err != nil {
			return value{}, false, err
		}
		if err := p.expect(token.RParen); err != nil {
			return value{}, false, err
		}
		return v, true, nil
	}
	if p.argsEnd() {
		return value{}, false, nil
	}
	v, err := p.parseExpr(precNamedUnary + 1)
	return v, err == nil, err
}

func (t *tx) fileTest(letter string, arg value) (value, error) {
	t.need("os")
	a := arg.paren(pyTernary)
	call := func(f string) value {
		return value{text: f + "(" + a + ")", prec: pyPrimary}
	}
	switch letter {
	case "e":
		return call("os.path.exists"), nil
	case "f":
		return call("os.path.isfile"), nil
	case "d":
		return call("os.path.isdir"), nil
	case "l":
		return call("os.path.islink"), nil
	case "s":
		v := call("os.path.getsize")
		v.shape = shapeNumber
		return v, nil
	case "z":
		return value{text: "os.path.getsize(" + a + ") == 0", prec: pyCompare, neg: "os.path.getsize(" + a + ") != 0"}, nil
	case "r", "w", "x":
		return value{text: "os.access(" + a + ", os." + strings.ToUpper(letter) + "_OK)", prec: pyPrimary}, nil
	case "M":
		t.need("time")
		return value{text: "(time.time() - os.path.getmtime(" + a + ")) / 86400", prec: pyMul, shape: shapeNumber}, nil
	}
	return value{}, fmt.Errorf("%w: file test -%s", errUnsupported, letter)
}
