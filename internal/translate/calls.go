package translate

import (
	"fmt"
	"strconv"
	"strings"

	"perl2py/internal/diag"
	"perl2py/internal/rules"
	"perl2py/internal/token"
)

// namedUnary operators take a single operand that binds tighter than
// comparison: `length $s > 3` is `length($s) > 3`.
var namedUnary = map[string]bool{
	"defined": true, "ref": true, "scalar": true, "lc": true, "uc": true,
	"lcfirst": true, "ucfirst": true, "length": true, "chr": true, "ord": true,
	"hex": true, "oct": true, "abs": true, "int": true, "sqrt": true, "sin": true,
	"cos": true, "exp": true, "log": true, "quotemeta": true, "exists": true,
	"delete": true, "undef": true, "rand": true, "srand": true, "chdir": true,
	"rmdir": true, "readline": true, "close": true, "exit": true, "sleep": true,
	"localtime": true, "gmtime": true, "alarm": true, "caller": true, "lock": true,
	"fc": true, "each": true, "keys": true, "values": true, "shift": true,
	"pop": true, "chomp": true, "chop": true, "basename": true, "dirname": true,
}

// listShaped builtins return Python lists.
var listShaped = map[string]bool{
	"keys": true, "values": true, "reverse": true, "uniq": true, "shuffle": true,
	"localtime": true, "gmtime": true,
}

// parseWord renders a bareword in term position: declarations, named
// operators, builtins, sub calls and barewords.
func (p *parser) parseWord(tok token.Token) (value, error) {
	word := tok.Text
	if p.at(token.FatArrow) {
		return p.t.stringValue([]fpart{{lit: word}}), nil
	}
	if v, ok, err := p.t.heredocValue(word); ok {
		return v, err
	}
	switch word {
	case "my", "our", "local", "state":
		return p.parseDecl(word)
	case "__PACKAGE__":
		return atom("__name__"), nil
	case "__FILE__":
		return atom("__file__"), nil
	case "__LINE__":
		return numberValue(strconv.Itoa(int(p.t.m.Line))), nil
	case "undef":
		if !p.argsEnd() {
			if _, _, err := p.parseNamedArg(); err != nil {
				return value{}, err
			}
		}
		return atom("None"), nil
	case "defined":
		return p.parseDefined()
	case "exists", "delete":
		return p.parseExistsDelete(word)
	case "scalar":
		arg, ok, err := p.parseNamedArg()
		if err != nil {
			return value{}, err
		}
		if !ok {
			return value{}, p.unexpected("scalar needs an operand")
		}
		if arg.text == "time.localtime()" {
			return value{text: "time.ctime()", prec: pyPrimary, shape: shapeString}, nil
		}
		return asCount(arg), nil
	case "map", "grep":
		return p.parseMapGrep(word)
	case "sort":
		return p.parseSort()
	case "split":
		return p.parseSplit()
	case "shift", "pop":
		return p.parseShiftPop(word)
	case "print", "say", "printf":
		return p.parsePrint(word)
	case "warn":
		args, err := p.parseArgs()
		if err != nil {
			return value{}, err
		}
		p.t.need("sys")
		msg := p.t.message(args, "Warning: something's wrong")
		return atom("print(" + msg.paren(pyTernary) + ", file=sys.stderr)"), nil
	case "substr":
		return p.parseSubstr()
	case "readdir", "readline", "seek", "tell", "truncate", "flock", "fileno":
		return p.parseFileCall(word)
	case "reverse":
		args, err := p.parseArgs()
		if err != nil {
			return value{}, err
		}
		if len(args) == 1 && args[0].shape != shapeList && args[0].shape != shapeHash && args[0].items == nil {
			return value{text: args[0].paren(pyPrimary) + "[::-1]", prec: pyPrimary, shape: shapeString}, nil
		}
		if b, ok := p.t.table().Builtin("reverse"); ok {
			return p.t.applyBuiltin("reverse", b, args)
		}
		return value{text: "list(reversed(" + listArg(args) + "))", prec: pyPrimary, shape: shapeList}, nil
	case "sprintf":
		args, err := p.parseArgs()
		if err != nil {
			return value{}, err
		}
		if len(args) == 1 {
			return args[0], nil
		}
		if b, ok := p.t.table().Builtin("sprintf"); ok {
			return p.t.applyBuiltin("sprintf", b, args)
		}
		return atom("perl_builtin(" + pyQuote("sprintf", p.t.quoteChar()) + ", " + joinArgs(args) + ")"), nil
	case "sub", "do", "eval", "return", "die", "croak", "confess", "open", "push",
		"unshift", "splice", "next", "last", "redo", "goto":
		return value{}, fmt.Errorf("%w: %s inside an expression", errUnsupported, word)
	case "STDIN", "STDOUT", "STDERR":
		if text, ok := p.t.stdHandle(word); ok {
			return atom(text), nil
		}
	}
	if p.at(token.Arrow) {
		// Class->method
		return atom(strings.ReplaceAll(word, "::", ".")), nil
	}
	if b, ok := p.t.table().Builtin(word); ok {
		var args []value
		var err error
		if namedUnary[word] {
			var arg value
			var has bool
			arg, has, err = p.parseNamedArg()
			if has {
				args = argItems(arg)
			}
		} else {
			args, err = p.parseArgs()
		}
		if err != nil {
			return value{}, err
		}
		return p.t.applyBuiltin(word, b, args)
	}
	if rules.Unsupported(word) {
		args, err := p.parseArgs()
		if err != nil {
			return value{}, err
		}
		p.t.partial(diag.PrtUnsupportedBuiltin, "%s has no Python counterpart; routed to perl_builtin", word)
		call := "perl_builtin(" + pyQuote(word, p.t.quoteChar())
		if len(args) > 0 {
			call += ", " + joinArgs(args)
		}
		return atom(call + ")"), nil
	}

	callee := pyIdent(word)
	if strings.Contains(word, "::") {
		callee = strings.ReplaceAll(word, "::", ".")
	}
	if p.at(token.LParen) {
		p.next()
		return p.callArgs(callee)
	}
	if p.argsEnd() {
		if p.t.env.isSub(word) {
			return atom(callee + "()"), nil
		}
		return atom(callee), nil
	}
	args, err := p.parseList()
	if err != nil {
		return value{}, err
	}
	return atom(callee + "(" + joinArgs(args) + ")"), nil
}

func argItems(v value) []value {
	if v.items != nil {
		return v.items
	}
	return []value{v}
}

// parseArgs parses the arguments of a list operator, with or without
// parentheses.
func (p *parser) parseArgs() ([]value, error) {
	if p.at(token.LParen) {
		p.next()
		if p.accept(token.RParen) {
			return nil, nil
		}
		items, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return items, p.expect(token.RParen)
	}
	if p.argsEnd() {
		return nil, nil
	}
	return p.parseList()
}

func (p *parser) parseDecl(word string) (value, error) {
	if word == "local" {
		p.t.partial(diag.PrtLocal, "local is rendered as a plain assignment")
	}
	if p.accept(token.LParen) {
		var items []value
		if !p.at(token.RParen) {
			var err error
			if items, err = p.parseList(); err != nil {
				return value{}, err
			}
		}
		if err := p.expect(token.RParen); err != nil {
			return value{}, err
		}
		for i := range items {
			items[i].decl = true
		}
		v := listValue(items, false)
		v.decl = true
		return v, nil
	}
	tok := p.next()
	switch tok.Kind {
	case token.Scalar, token.Array, token.Hash:
	default:
		p.pos--
		return value{}, p.unexpected(word + " needs a variable")
	}
	v, err := p.parseVariable(tok)
	if err != nil {
		return value{}, err
	}
	v.decl = true
	return v, nil
}

func (p *parser) parseDefined() (value, error) {
	arg, ok, err := p.parseNamedArg()
	if err != nil {
		return value{}, err
	}
	if !ok {
		arg = atom(p.t.topic)
	}
	switch {
	case arg.elem != nil && arg.elem.hash:
		get := arg.elem.container + ".get(" + arg.elem.key.text + ")"
		return value{text: get + " is not None", prec: pyCompare, neg: get + " is None"}, nil
	case arg.shape == shapeList || arg.shape == shapeHash:
		return value{text: "len(" + arg.text + ") > 0", prec: pyCompare, neg: "len(" + arg.text + ") == 0"}, nil
	}
	x := arg.paren(pyCompare + 1)
	return value{text: x + " is not None", prec: pyCompare, neg: x + " is None"}, nil
}

func (p *parser) parseExistsDelete(word string) (value, error) {
	arg, ok, err := p.parseNamedArg()
	if err != nil {
		return value{}, err
	}
	if !ok || arg.elem == nil {
		return value{}, fmt.Errorf("%w: %s without an element", errUnsupported, word)
	}
	e := arg.elem
	if word == "delete" {
		if !e.hash {
			return value{}, fmt.Errorf("%w: delete on an array element", errUnsupported)
		}
		return atom(e.container + ".pop(" + e.key.text + ", None)"), nil
	}
	if e.hash {
		k := e.key.paren(pyCompare + 1)
		return value{text: k + " in " + e.container, prec: pyCompare, neg: k + " not in " + e.container}, nil
	}
	k := e.key.paren(pyCompare + 1)
	return value{text: k + " < len(" + e.container + ")", prec: pyCompare, neg: k + " >= len(" + e.container + ")"}, nil
}

func (p *parser) parseShiftPop(word string) (value, error) {
	arg, ok, err := p.parseNamedArg()
	if err != nil {
		return value{}, err
	}
	idx := ""
	if word == "shift" {
		idx = "0"
	}
	if !ok {
		if p.t.env.InSub {
			return atom("args.pop(" + idx + ")"), nil
		}
		p.t.need("sys")
		if word == "shift" {
			return atom("sys.argv.pop(1)"), nil
		}
		return atom("sys.argv.pop()"), nil
	}
	target := arg.paren(pyPrimary)
	if target == "sys.argv[1:]" {
		p.t.need("sys")
		target = "sys.argv"
		if idx == "0" {
			idx = "1"
		}
	}
	return atom(target + ".pop(" + idx + ")"), nil
}

func (p *parser) parseSubstr() (value, error) {
	args, err := p.parseArgs()
	if err != nil {
		return value{}, err
	}
	switch len(args) {
	case 2:
		return value{text: args[0].paren(pyPrimary) + "[" + args[1].text + ":]", prec: pyPrimary, shape: shapeString}, nil
	case 3:
		off := args[1]
		end := off.paren(pyAdd) + " + " + args[2].paren(pyAdd+1)
		switch {
		case off.text == "0":
			end = args[2].text
		case isDigits(off.text) && isDigits(args[2].text):
			a, _ := strconv.Atoi(off.text)
			b, _ := strconv.Atoi(args[2].text)
			end = strconv.Itoa(a + b)
		}
		lo := off.text
		if lo == "0" {
			lo = ""
		}
		return value{text: args[0].paren(pyPrimary) + "[" + lo + ":" + end + "]", prec: pyPrimary, shape: shapeString}, nil
	}
	return value{}, fmt.Errorf("%w: substr with %d arguments", errUnsupported, len(args))
}

// applyBuiltin renders a call through its RuleTable template.
func (t *tx) applyBuiltin(name string, b rules.Builtin, args []value) (value, error) {
	tmpl := b.Template
	switch {
	case len(args) == 0 && b.Nullary != "":
		tmpl = b.Nullary
	case len(args) > 1 && b.Variadic != "":
		tmpl = b.Variadic
	}
	if len(args) == 0 && strings.Contains(tmpl, "{0}") {
		args = []value{atom(t.topic)}
	}
	text, err := renderTemplate(tmpl, args)
	if err != nil {
		return value{}, fmt.Errorf("%s: %w", name, err)
	}
	for _, imp := range b.Imports {
		t.need(imp)
	}
	v := value{text: text, prec: templatePrec(tmpl)}
	switch {
	case listShaped[name]:
		v.shape = shapeList
	case name == "length" || name == "index" || name == "rindex" || name == "ord" || name == "int" || name == "hex" || name == "oct":
		v.shape = shapeNumber
	case name == "lc" || name == "uc" || name == "join" || name == "sprintf" || name == "chr" || name == "ucfirst" || name == "lcfirst":
		v.shape = shapeString
	}
	return v, nil
}

// renderTemplate substitutes {N}, {args}, {rest}, {list0} and {list1}.
func renderTemplate(tmpl string, args []value) (string, error) {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		name := tmpl[i+1 : i+end]
		var prev, next byte
		if i > 0 {
			prev = tmpl[i-1]
		}
		if i+end+1 < len(tmpl) {
			next = tmpl[i+end+1]
		}
		bare := (prev == '(' || prev == ' ' && i >= 2 && tmpl[i-2] == ',') && (next == ')' || next == ',')
		switch {
		case isDigits(name):
			n, _ := strconv.Atoi(name)
			if n >= len(args) {
				return "", fmt.Errorf("%w: missing argument %d", errUnsupported, n)
			}
			if bare {
				b.WriteString(args[n].paren(pyTernary))
			} else {
				b.WriteString(args[n].paren(pyPrimary))
			}
		case name == "args":
			b.WriteString(joinArgs(args))
		case name == "rest":
			if len(args) > 1 {
				b.WriteString(joinArgs(args[1:]))
			}
		case name == "list0" || name == "list1":
			from := int(name[4] - '0')
			if from > len(args) {
				from = len(args)
			}
			b.WriteString(listArg(args[from:]))
		default:
			b.WriteString(tmpl[i : i+end+1])
		}
		i += end
	}
	return b.String(), nil
}

// listArg renders arguments as one iterable.
func listArg(args []value) string {
	if len(args) == 1 {
		a := args[0]
		if a.items == nil && (a.shape == shapeList || a.shape == shapeHash || a.rng != nil) {
			return a.text
		}
	}
	return listValue(args, false).text
}

// templatePrec is the precedence of a rendered template: the loosest
// top-level operator outside brackets and quotes.
func templatePrec(tmpl string) int {
	prec := pyPrimary
	depth := 0
	var quote byte
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case depth == 0 && c == ' ' && i+2 < len(tmpl):
			rest := tmpl[i+1:]
			for _, op := range []string{"if ", "or ", "and ", "not ", "== ", "!= ", "+ ", "- ", "* ", "% ", "/ "} {
				if !strings.HasPrefix(rest, op) {
					continue
				}
				switch op {
				case "if ":
					prec = min(prec, pyTernary)
				case "not ":
					prec = min(prec, pyNot)
				default:
					prec = min(prec, pyOpPrec(strings.TrimSpace(op)))
				}
			}
		}
	}
	return prec
}

// parseFileHandle recognises the filehandle of print/printf/say:
// STDERR, FH, {$fh} or $fh followed directly by a term.
func (p *parser) parseFileHandle() (string, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		if (tok.Text == "STDERR" || tok.Text == "STDOUT" || isBarewordHandle(tok.Text)) && !p.t.env.isSub(tok.Text) {
			next := p.peekAt(1)
			if next.Kind == token.Comma || next.Kind == token.LParen || next.Kind == token.Arrow || next.Kind == token.FatArrow {
				return "", nil
			}
			if prec, _ := binaryPrec(next); prec >= 0 && next.Kind != token.EOF {
				return "", nil
			}
			p.next()
			if text, ok := p.t.stdHandle(tok.Text); ok {
				return text, nil
			}
			return tok.Text, nil
		}
	case token.LBrace:
		p.next()
		v, err := p.parseExpr(precLowest)
		if err != nil {
			return "", err
		}
		return v.text, p.expect(token.RBrace)
	case token.Scalar:
		if startsTerm(p.peekAt(1)) {
			p.next()
			return p.t.varName("$", tok.Text), nil
		}
	}
	return "", nil
}

func isBarewordHandle(w string) bool {
	if !isIdent(w) {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] >= 'a' && w[i] <= 'z' {
			return false
		}
	}
	return true
}

// startsTerm reports whether tok can begin an operand (and is not an
// operator continuing the previous one).
func startsTerm(tok token.Token) bool {
	switch tok.Kind {
	case token.String, token.Interp, token.Scalar, token.Array, token.Hash, token.Number,
		token.Words, token.Heredoc, token.Cast, token.ArrayLast:
		return true
	case token.Ident:
		prec, _ := binaryPrec(tok)
		switch tok.Text {
		case "if", "unless", "while", "until", "for", "foreach":
			return false
		}
		return prec < 0
	}
	return false
}

// parsePrint renders print/say/printf as a Python expression.
func (p *parser) parsePrint(word string) (value, error) {
	parens := p.accept(token.LParen)
	fh, err := p.parseFileHandle()
	if err != nil {
		return value{}, err
	}
	var args []value
	if !(parens && p.at(token.RParen)) && !p.listEnd() {
		if args, err = p.parseList(); err != nil {
			return value{}, err
		}
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return value{}, err
		}
	}
	return p.t.printValue(word, fh, args)
}

// printValue renders print/say/printf to stdout, stderr or a handle.
func (t *tx) printValue(word, fh string, args []value) (value, error) {
	newline := word == "say"
	var content value
	var spreadArgs string
	if word == "printf" {
		if len(args) == 0 {
			return value{}, fmt.Errorf("%w: printf without a format", errSyntax)
		}
		format := args[0]
		if fh == "" || fh == "sys.stderr" || fh == "sys.stdout" {
			if f, ok := t.stripNewline(format); ok {
				format, newline = f, true
			}
		}
		content = format
		if len(args) > 1 {
			content = value{text: format.paren(pyMul) + " % (" + joinArgs(args[1:]) + ",)", prec: pyMul, shape: shapeString}
		}
	} else {
		if len(args) == 0 {
			args = []value{atom(t.topic)}
		}
		list := false
		for _, a := range args {
			if a.shape == shapeList || a.shape == shapeHash || a.items != nil {
				list = true
			}
		}
		if list {
			spreadArgs = joinArgs(args)
		} else {
			content = args[0]
			for _, a := range args[1:] {
				content = t.concat(content, a)
			}
		}
	}

	switch fh {
	case "", "sys.stdout", "sys.stderr":
		var call []string
		if spreadArgs != "" {
			call = append(call, spreadArgs, `sep=""`)
		} else {
			if word != "printf" && !newline {
				if c, ok := t.stripNewline(content); ok {
					content, newline = c, true
				}
			}
			call = append(call, content.paren(pyTernary))
		}
		if !newline {
			call = append(call, `end=""`)
		}
		if fh == "sys.stderr" {
			call = append(call, "file=sys.stderr")
		}
		return atom("print(" + strings.Join(call, ", ") + ")"), nil
	}
	if spreadArgs != "" {
		content = value{text: `"".join(map(str, [` + spreadArgs + `]))`, prec: pyPrimary, shape: shapeString}
	}
	if content.shape != shapeString && content.parts == nil {
		content = value{text: "str(" + content.text + ")", prec: pyPrimary, shape: shapeString}
	}
	if newline {
		content = t.concat(content, t.stringValue([]fpart{{lit: "\n"}}))
	}
	return atom(fh + ".write(" + content.paren(pyTernary) + ")"), nil
}

// stripNewline drops a trailing "\n" from a string value.
func (t *tx) stripNewline(v value) (value, bool) {
	if len(v.parts) == 0 {
		return v, false
	}
	last := v.parts[len(v.parts)-1]
	if last.isExpr || !strings.HasSuffix(last.lit, "\n") {
		return v, false
	}
	parts := append([]fpart(nil), v.parts...)
	parts[len(parts)-1].lit = strings.TrimSuffix(last.lit, "\n")
	return t.stringValue(parts), true
}

// message renders die/warn arguments as one string without the trailing
// newline.
func (t *tx) message(args []value, fallback string) value {
	if len(args) == 0 {
		return t.stringValue([]fpart{{lit: fallback}})
	}
	msg := args[0]
	for _, a := range args[1:] {
		msg = t.concat(msg, a)
	}
	if m, ok := t.stripNewline(msg); ok {
		return m
	}
	return msg
}
