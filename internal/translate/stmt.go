package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/diag"
	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

// statement renders one simple Perl statement (no block) as Python lines.
func (t *tx) statement(text string) ([]Line, error) {
	toks := lexer.Tokenize(text)
	for len(toks) > 0 && toks[len(toks)-1].Kind == token.Semicolon {
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 0 {
		return nil, nil
	}
	lines, err := t.stmtTokens(toks)
	if err != nil {
		return nil, err
	}
	if t.pending != 0 {
		return nil, fmt.Errorf("%w: substitution used as a value", errUnsupported)
	}
	return lines, nil
}

// statementWords start a statement that can follow `or`/`and` in a guard.
var statementWords = map[string]bool{
	"die": true, "croak": true, "confess": true, "return": true, "next": true,
	"last": true, "redo": true, "exit": true, "warn": true, "print": true,
	"printf": true, "say": true, "push": true, "unshift": true, "carp": true,
	"cluck": true,
}

// osCalls raise OSError in Python where Perl returns false.
var osCalls = map[string]bool{
	"open": true, "close": true, "opendir": true, "mkdir": true, "rmdir": true,
	"unlink": true, "rename": true, "chdir": true, "chmod": true, "copy": true,
	"move": true, "make_path": true, "mkpath": true, "binmode": true,
}

func (t *tx) stmtTokens(toks []token.Token) ([]Line, error) {
	if i := guardIndex(toks); i >= 0 {
		return t.guard(toks[:i], toks[i], toks[i+1:])
	}
	first := toks[0]
	if first.Kind == token.Range && len(toks) == 1 {
		return []Line{line(0, "...")}, nil
	}
	if first.Kind == token.Ident {
		switch first.Text {
		case "die", "croak", "confess":
			return t.dieStmt(toks[1:])
		case "return":
			return t.returnStmt(toks[1:])
		case "next", "last", "redo":
			return t.loopControl(first.Text, toks[1:])
		case "push", "unshift":
			return t.pushStmt(first.Text, toks[1:])
		case "splice":
			return t.spliceStmt(toks[1:])
		case "chomp", "chop":
			return t.chompStmt(first.Text, toks[1:])
		case "undef":
			if len(toks) > 1 {
				return t.undefStmt(toks[1:])
			}
		case "delete":
			return t.exprLines(toks)
		case "GetOptions":
			return t.getOptions(toks[1:])
		case "carp", "cluck":
			return t.stmtTokens(append([]token.Token{{Kind: token.Ident, Text: "warn"}}, toks[1:]...))
		case "my", "our", "state", "local":
			if topLevelAssign(toks) < 0 {
				return t.declStmt(toks)
			}
		}
	}
	if first.Kind == token.LParen {
		if lines, ok, err := t.copyThenModify(toks); ok {
			return lines, err
		}
	}
	if i := topLevelAssign(toks); i >= 0 {
		return t.assignStmt(toks[:i], toks[i], toks[i+1:])
	}
	if last := toks[len(toks)-1]; last.Kind == token.Incr || last.Kind == token.Decr {
		return t.incrStmt(toks[:len(toks)-1], last.Kind == token.Incr)
	}
	if first.Kind == token.Incr || first.Kind == token.Decr {
		return t.incrStmt(toks[1:], first.Kind == token.Incr)
	}
	return t.exprLines(toks)
}

// exprLines renders an expression statement.
func (t *tx) exprLines(toks []token.Token) ([]Line, error) {
	p := newParser(t, toks)
	v, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("end of statement")
	}
	if v.inplace != "" {
		t.pending--
		return []Line{line(0, "%s = %s", v.inplace, v.text)}, nil
	}
	return []Line{line(0, v.text)}, nil
}

// depthScan walks toks at bracket depth zero.
func depthScan(toks []token.Token, fn func(i int, tok token.Token) bool) int {
	depth := 0
	for i, tok := range toks {
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		default:
			if depth == 0 && fn(i, tok) {
				return i
			}
		}
	}
	return -1
}

func topLevelAssign(toks []token.Token) int {
	return depthScan(toks, func(_ int, tok token.Token) bool {
		return tok.Kind == token.Assign || tok.Kind == token.OpAssign
	})
}

// guardIndex finds `A or STMT` / `A || STMT`: the last top-level low
// precedence or/and, or a ||/&& followed by a statement word.
func guardIndex(toks []token.Token) int {
	idx := -1
	depthScan(toks, func(i int, tok token.Token) bool {
		if i == 0 || i+1 >= len(toks) {
			return false
		}
		next := toks[i+1]
		switch {
		case tok.Is("or") || tok.Is("and"):
			if idx < 0 || !toks[idx].Is("or") && !toks[idx].Is("and") {
				idx = i
			}
		case tok.Kind == token.OrOr || tok.Kind == token.AndAnd:
			if next.Kind == token.Ident && statementWords[next.Text] && idx < 0 {
				idx = i
			}
		}
		return false
	})
	if idx < 0 {
		return -1
	}
	// `$x = $a || $b` stays an expression unless a statement follows
	if next := toks[idx+1]; next.Kind == token.Ident && statementWords[next.Text] {
		return idx
	}
	if toks[idx].Is("or") || toks[idx].Is("and") {
		return idx
	}
	return -1
}

// guard renders `A or STMT` as `if not A:` / `    STMT`. OS calls guarded by
// die become try/except OSError.
func (t *tx) guard(lhs []token.Token, op token.Token, rhs []token.Token) ([]Line, error) {
	orForm := op.Is("or") || op.Kind == token.OrOr
	if orForm && len(lhs) > 0 && lhs[0].Is("GetOptions") {
		t.note(diag.SevConverted, diag.CvtInfo, "argparse reports usage errors itself")
		return t.getOptions(lhs[1:])
	}
	if orForm && len(lhs) > 0 && lhs[0].Kind == token.Ident && osCalls[lhs[0].Text] && isDie(rhs) {
		body, err := t.stmtTokens(lhs)
		if err != nil {
			return nil, err
		}
		saved := t.errName
		t.errName = "exc"
		raise, err := t.dieLine(rhs[1:])
		t.errName = saved
		if err != nil {
			return nil, err
		}
		out := []Line{line(0, "try:")}
		for _, l := range body {
			out = append(out, Line{Text: l.Text, Indent: l.Indent + 1})
		}
		out = append(out, line(0, "except OSError as exc:"), line(1, raise+" from exc"))
		return out, nil
	}
	p := newParser(t, lhs)
	cond, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("guard condition")
	}
	body, err := t.stmtTokens(rhs)
	if err != nil {
		return nil, err
	}
	if orForm {
		cond = negate(cond)
	}
	out := []Line{line(0, "if %s:", cond.text)}
	for _, l := range body {
		out = append(out, Line{Text: l.Text, Indent: l.Indent + 1})
	}
	return out, nil
}

func isDie(toks []token.Token) bool {
	return len(toks) > 0 && (toks[0].Is("die") || toks[0].Is("croak") || toks[0].Is("confess"))
}

func (t *tx) dieStmt(args []token.Token) ([]Line, error) {
	raise, err := t.dieLine(args)
	if err != nil {
		return nil, err
	}
	return []Line{line(0, raise)}, nil
}

func (t *tx) dieLine(args []token.Token) (string, error) {
	p := newParser(t, args)
	items, err := p.parseArgs()
	if err != nil {
		return "", err
	}
	if !p.atEnd() {
		return "", p.unexpected("die arguments")
	}
	msg := t.message(items, "Died")
	return "raise Exception(" + msg.paren(pyTernary) + ")", nil
}

func (t *tx) returnStmt(args []token.Token) ([]Line, error) {
	if len(args) == 0 {
		return []Line{line(0, "return")}, nil
	}
	p := newParser(t, args)
	v, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("return value")
	}
	if v.items != nil {
		if len(v.items) == 0 {
			return []Line{line(0, "return []")}, nil
		}
		return []Line{line(0, "return %s", joinArgs(v.items))}, nil
	}
	return []Line{line(0, "return %s", v.text)}, nil
}

func (t *tx) loopControl(word string, rest []token.Token) ([]Line, error) {
	if len(rest) > 0 && rest[0].Kind == token.Ident {
		t.partial(diag.PrtLabel, "%s %s: loop labels are not supported, the innermost loop is used", word, rest[0].Text)
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %s with an expression", errUnsupported, word)
	}
	switch word {
	case "next":
		return []Line{line(0, "continue")}, nil
	case "last":
		return []Line{line(0, "break")}, nil
	}
	return nil, fmt.Errorf("%w: redo", errUnsupported)
}

// listTarget renders the array operand of push/unshift/splice.
func (t *tx) listTarget(p *parser) (string, error) {
	v, err := p.parseExpr(precAssign)
	if err != nil {
		return "", err
	}
	if v.elem != nil && v.elem.hash && v.shape == shapeList {
		return v.elem.container + ".setdefault(" + v.elem.key.text + ", [])", nil
	}
	if v.text == "sys.argv[1:]" {
		return "", fmt.Errorf("%w: modifying @ARGV", errUnsupported)
	}
	return v.paren(pyPrimary), nil
}

func (t *tx) pushStmt(word string, toks []token.Token) ([]Line, error) {
	p := newParser(t, toks)
	parens := p.accept(token.LParen)
	target, err := t.listTarget(p)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	items, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return nil, err
		}
	}
	if !p.atEnd() {
		return nil, p.unexpected("end of " + word)
	}
	single := len(items) == 1 && items[0].shape != shapeList && items[0].shape != shapeHash && items[0].items == nil
	switch {
	case word == "push" && single:
		return []Line{line(0, "%s.append(%s)", target, items[0].paren(pyTernary))}, nil
	case word == "push":
		return []Line{line(0, "%s.extend(%s)", target, listArg(items))}, nil
	case single:
		return []Line{line(0, "%s.insert(0, %s)", target, items[0].paren(pyTernary))}, nil
	}
	return []Line{line(0, "%s[0:0] = %s", target, listArg(items))}, nil
}

func (t *tx) spliceStmt(toks []token.Token) ([]Line, error) {
	p := newParser(t, toks)
	parens := p.accept(token.LParen)
	target, err := t.listTarget(p)
	if err != nil {
		return nil, err
	}
	var args []value
	if p.accept(token.Comma) {
		if args, err = p.parseList(); err != nil {
			return nil, err
		}
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return nil, err
		}
	}
	if len(args) == 0 {
		return []Line{line(0, "%s.clear()", target)}, nil
	}
	off := asCount(args[0])
	slice := off.text + ":"
	if len(args) > 1 {
		slice += off.paren(pyAdd) + " + " + asCount(args[1]).paren(pyAdd+1)
		if off.text == "0" {
			slice = ":" + args[1].text
		}
	}
	if len(args) > 2 {
		return []Line{line(0, "%s[%s] = %s", target, slice, listArg(args[2:]))}, nil
	}
	return []Line{line(0, "del %s[%s]", target, slice)}, nil
}

// chompStmt assigns the stripped value back.
func (t *tx) chompStmt(word string, toks []token.Token) ([]Line, error) {
	if len(toks) > 1 && toks[0].Kind == token.LParen && toks[len(toks)-1].Kind == token.RParen {
		toks = toks[1 : len(toks)-1]
	}
	strip := func(v value) value {
		if word == "chop" {
			return value{text: v.paren(pyPrimary) + "[:-1]", prec: pyPrimary, shape: shapeString}
		}
		return value{text: v.paren(pyPrimary) + `.rstrip("\n")`, prec: pyPrimary, shape: shapeString}
	}
	if i := topLevelAssign(toks); i >= 0 && toks[i].Kind == token.Assign {
		return t.assignWith(toks[:i], toks[i+1:], strip)
	}
	if len(toks) == 0 {
		toks = []token.Token{{Kind: token.Scalar, Text: "_"}}
	}
	p := newParser(t, toks)
	p.lvalue = true
	v, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("chomp operand")
	}
	if v.shape == shapeList {
		return []Line{line(0, "%s = [%s for s in %s]", v.text, strip(scalarVar("s")).text, v.text)}, nil
	}
	return []Line{line(0, "%s = %s", v.text, strip(v).text)}, nil
}

func (t *tx) undefStmt(toks []token.Token) ([]Line, error) {
	p := newParser(t, toks)
	p.lvalue = true
	v, _, err := p.parseNamedArg()
	if err != nil {
		return nil, err
	}
	return []Line{line(0, "%s = %s", v.text, emptyOf(v))}, nil
}

func emptyOf(v value) string {
	switch v.shape {
	case shapeList:
		return "[]"
	case shapeHash:
		return "{}"
	}
	return "None"
}

// declStmt renders `my $x;`, `my @a;`, `my ($a, $b);`.
func (t *tx) declStmt(toks []token.Token) ([]Line, error) {
	p := newParser(t, toks)
	v, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("declaration")
	}
	if v.items != nil {
		names := make([]string, 0, len(v.items))
		vals := make([]string, 0, len(v.items))
		for _, it := range v.items {
			names = append(names, it.text)
			vals = append(vals, emptyOf(it))
		}
		return []Line{line(0, "%s = %s", strings.Join(names, ", "), strings.Join(vals, ", "))}, nil
	}
	if v.text == "None" {
		return t.droppedSpecial(), nil
	}
	return []Line{line(0, "%s = %s", v.text, emptyOf(v))}, nil
}

// droppedSpecial comments out an assignment to a special variable that has
// no Python counterpart.
func (t *tx) droppedSpecial() []Line {
	return commentLines("dropped", t.original())
}

// copyThenModify handles `(my $copy = $orig) =~ s/a/b/;`.
func (t *tx) copyThenModify(toks []token.Token) ([]Line, bool, error) {
	closeAt := -1
	depth := 0
	for i, tok := range toks {
		switch tok.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				closeAt = i
			}
		}
		if closeAt >= 0 {
			break
		}
	}
	if closeAt < 0 || closeAt+2 >= len(toks) || toks[closeAt+1].Kind != token.Bind {
		return nil, false, nil
	}
	inner := toks[1:closeAt]
	i := topLevelAssign(inner)
	if i < 0 || inner[i].Kind != token.Assign {
		return nil, false, nil
	}
	lines, err := t.assignStmt(inner[:i], inner[i], inner[i+1:])
	if err != nil {
		return nil, true, err
	}
	target := inner[:i]
	if len(target) > 0 && target[0].Kind == token.Ident {
		target = target[1:]
	}
	rest, err := t.stmtTokens(append(append([]token.Token(nil), target...), toks[closeAt+1:]...))
	if err != nil {
		return nil, true, err
	}
	return append(lines, rest...), true, nil
}

// incrStmt renders $i++ / ++$i / $h{$k}++.
func (t *tx) incrStmt(toks []token.Token, incr bool) ([]Line, error) {
	p := newParser(t, toks)
	p.lvalue = true
	v, err := p.parseExpr(precIncr)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("increment operand")
	}
	op := "+"
	if !incr {
		op = "-"
	}
	if v.elem != nil && v.elem.hash {
		return []Line{line(0, "%s = %s.get(%s, 0) %s 1", v.text, v.elem.container, v.elem.key.text, op)}, nil
	}
	return []Line{line(0, "%s %s= 1", v.text, op)}, nil
}

func (t *tx) assignStmt(lhsToks []token.Token, op token.Token, rhsToks []token.Token) ([]Line, error) {
	if op.Kind == token.OpAssign {
		return t.opAssignStmt(lhsToks, op.Text, rhsToks)
	}
	return t.assignWith(lhsToks, rhsToks, nil)
}

func (t *tx) parseLHS(toks []token.Token) (value, error) {
	p := newParser(t, toks)
	p.lvalue = true
	v, err := p.parseExpr(precAssign + 1)
	if err != nil {
		return value{}, err
	}
	if !p.atEnd() {
		return value{}, p.unexpected("assignment target")
	}
	return v, nil
}

// assignWith renders LHS = RHS; wrap post-processes the right side.
func (t *tx) assignWith(lhsToks, rhsToks []token.Token, wrap func(value) value) ([]Line, error) {
	targets := [][]token.Token{lhsToks}
	for {
		i := topLevelAssign(rhsToks)
		if i < 0 || rhsToks[i].Kind != token.Assign {
			break
		}
		targets = append(targets, rhsToks[:i])
		rhsToks = rhsToks[i+1:]
	}
	lhs, err := t.parseLHS(targets[0])
	if err != nil {
		return nil, err
	}
	if lhs.text == "None" {
		return t.droppedSpecial(), nil
	}
	p := newParser(t, rhsToks)
	p.list = lhs.items != nil || lhs.shape == shapeList || lhs.shape == shapeHash
	rhs, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("end of assignment")
	}
	if rhs.inplace != "" {
		return nil, fmt.Errorf("%w: substitution result assigned", errUnsupported)
	}
	if wrap != nil {
		rhs = wrap(rhs)
	}
	if len(targets) > 1 {
		names := []string{lhs.text}
		for _, tt := range targets[1:] {
			v, err := t.parseLHS(tt)
			if err != nil {
				return nil, err
			}
			names = append(names, v.text)
		}
		return []Line{line(0, "%s = %s", strings.Join(names, " = "), rhs.text)}, nil
	}
	switch {
	case lhs.items != nil:
		return t.listAssign(lhs, rhs)
	case lhs.shape == shapeList:
		return []Line{line(0, "%s = %s", lhs.text, arrayRHS(rhs))}, nil
	case lhs.shape == shapeHash:
		return t.hashAssign(lhs, rhs)
	}
	if rhs.shape == shapeList && rhs.items == nil && rhs.rng == nil {
		rhs = asCount(rhs)
	} else if rhs.items != nil && len(rhs.items) > 0 {
		// scalar = (a, b, c) keeps the last element
		rhs = rhs.items[len(rhs.items)-1]
	}
	return []Line{line(0, "%s = %s", lhs.text, rhs.text)}, nil
}

// arrayRHS renders the right side of an array assignment.
func arrayRHS(rhs value) string {
	switch {
	case rhs.items != nil:
		return rhs.text
	case rhs.rng != nil:
		return "list(" + rhs.text + ")"
	case rhs.shape == shapeList && rhs.name != "":
		return "list(" + rhs.text + ")"
	case rhs.shape == shapeList:
		return rhs.text
	case rhs.shape == shapeHash:
		return "[x for kv in " + rhs.paren(pyPrimary) + ".items() for x in kv]"
	}
	return "[" + rhs.text + "]"
}

func (t *tx) hashAssign(lhs, rhs value) ([]Line, error) {
	switch {
	case rhs.items != nil:
		items := rhs.items
		if len(items) >= 2 && items[0].shape == shapeHash && items[0].text == lhs.text {
			rest, ok := hashValue(items[1:])
			if !ok {
				return nil, fmt.Errorf("%w: hash assignment from an odd list", errUnsupported)
			}
			return []Line{line(0, "%s.update(%s)", lhs.text, rest.text)}, nil
		}
		v, ok := hashValue(items)
		if !ok {
			return nil, fmt.Errorf("%w: hash assignment from an odd list", errUnsupported)
		}
		return []Line{line(0, "%s = %s", lhs.text, v.text)}, nil
	case rhs.shape == shapeHash && rhs.name != "":
		return []Line{line(0, "%s = dict(%s)", lhs.text, rhs.text)}, nil
	case rhs.shape == shapeHash:
		return []Line{line(0, "%s = %s", lhs.text, rhs.text)}, nil
	case rhs.shape == shapeList:
		r := rhs.paren(pyPrimary)
		return []Line{line(0, "%s = dict(zip(%s[::2], %s[1::2]))", lhs.text, r, r)}, nil
	}
	return []Line{line(0, "%s = %s", lhs.text, rhs.text)}, nil
}

// listAssign renders (a, b, @rest) = SRC with undef padding.
func (t *tx) listAssign(lhs, rhs value) ([]Line, error) {
	var names []string
	rest := ""
	for i, it := range lhs.items {
		switch {
		case it.shape == shapeHash:
			return nil, fmt.Errorf("%w: hash in a list assignment", errUnsupported)
		case it.shape == shapeList:
			if i != len(lhs.items)-1 {
				return nil, fmt.Errorf("%w: array before the end of a list assignment", errUnsupported)
			}
			rest = it.text
		case it.text == "None":
			names = append(names, "_")
		default:
			names = append(names, it.text)
		}
	}
	n := len(names)
	target := strings.Join(names, ", ")
	if rest != "" {
		if n > 0 {
			target += ", "
		}
		target += "*" + rest
	}
	spreadsList := false
	for _, it := range rhs.items {
		if it.shape == shapeList || it.shape == shapeHash {
			spreadsList = true
		}
	}
	switch {
	case rhs.items != nil && !spreadsList && rest == "":
		vals := make([]string, 0, n)
		for i := 0; i < n; i++ {
			if i < len(rhs.items) {
				vals = append(vals, rhs.items[i].paren(pyTernary))
			} else {
				vals = append(vals, "None")
			}
		}
		if n == 1 {
			return []Line{line(0, "%s = %s", names[0], vals[0])}, nil
		}
		return []Line{line(0, "%s = %s", target, strings.Join(vals, ", "))}, nil
	case rhs.shape != shapeList && rhs.items == nil && rhs.rng == nil:
		if rest != "" {
			return []Line{line(0, "%s = [%s]", target, rhs.text)}, nil
		}
		vals := []string{rhs.text}
		for i := 1; i < n; i++ {
			vals = append(vals, "None")
		}
		return []Line{line(0, "%s = %s", target, strings.Join(vals, ", "))}, nil
	}
	src := rhs.paren(pyAdd)
	if rhs.rng != nil {
		src = "list(" + rhs.text + ")"
	}
	if rest != "" {
		if n == 0 {
			return []Line{line(0, "%s = list(%s)", rest, rhs.text)}, nil
		}
		return []Line{line(0, "%s = %s + [None] * (%d - len(%s))", target, src, n, rhs.text)}, nil
	}
	if n == 1 {
		return []Line{line(0, "%s = (%s + [None])[0]", names[0], src)}, nil
	}
	return []Line{line(0, "%s = (%s + [None] * %d)[:%d]", target, src, n, n)}, nil
}

// opAssignStmt renders compound assignment.
func (t *tx) opAssignStmt(lhsToks []token.Token, op string, rhsToks []token.Token) ([]Line, error) {
	lhs, err := t.parseLHS(lhsToks)
	if err != nil {
		return nil, err
	}
	if lhs.text == "None" {
		return t.droppedSpecial(), nil
	}
	p := newParser(t, rhsToks)
	p.list = lhs.shape == shapeList
	rhs, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.unexpected("end of assignment")
	}
	hashElem := lhs.elem != nil && lhs.elem.hash
	get := func(def string) string {
		return lhs.elem.container + ".get(" + lhs.elem.key.text + def + ")"
	}
	switch op {
	case ".":
		if hashElem {
			sum := t.concat(atom(get(`, ""`)), rhs)
			return []Line{line(0, "%s = %s", lhs.text, sum.text)}, nil
		}
		if rhs.shape != shapeString && rhs.parts == nil {
			rhs = t.concat(t.stringValue(nil), rhs)
		}
		return []Line{line(0, "%s += %s", lhs.text, rhs.text)}, nil
	case "||", "&&":
		cur := lhs.text
		if hashElem {
			cur = get("")
		}
		word := map[string]string{"||": "or", "&&": "and"}[op]
		return []Line{line(0, "%s = %s %s %s", lhs.text, cur, word, rhs.paren(pyNot))}, nil
	case "//":
		if hashElem {
			return []Line{line(0, "%s.setdefault(%s, %s)", lhs.elem.container, lhs.elem.key.text, rhs.paren(pyTernary))}, nil
		}
		return []Line{line(0, "if %s is None:", lhs.text), line(1, "%s = %s", lhs.text, rhs.text)}, nil
	case "x":
		return []Line{line(0, "%s *= %s", lhs.text, asCount(rhs).text)}, nil
	}
	py := op
	if mapped, ok := t.table().Operator(op); ok {
		py = mapped
	}
	rhs = asCount(rhs)
	if lhs.shape == shapeList && py == "+" {
		return []Line{line(0, "%s.extend(%s)", lhs.text, asList(rhs))}, nil
	}
	if hashElem && (py == "+" || py == "-") {
		return []Line{line(0, "%s = %s %s %s", lhs.text, get(", 0"), py, rhs.paren(pyAdd+1))}, nil
	}
	return []Line{line(0, "%s %s= %s", lhs.text, py, rhs.text)}, nil
}
