package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/diag"
	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

// pattern is a Perl regex rewritten for Python's re module.
type pattern struct {
	text     string // Python literal, r"..." or rf"..."
	captures int
	plain    string // the pattern itself when it has no metacharacters
	empty    bool
}

var posixClasses = map[string]string{
	"[:alpha:]":  "a-zA-Z",
	"[:digit:]":  "0-9",
	"[:alnum:]":  "a-zA-Z0-9",
	"[:upper:]":  "A-Z",
	"[:lower:]":  "a-z",
	"[:space:]":  `\s`,
	"[:word:]":   `\w`,
	"[:xdigit:]": "0-9a-fA-F",
}

// convertPattern rewrites the regex body; Perl variables become f-string
// replacement fields.
func (t *tx) convertPattern(body string, delim byte) (pattern, error) {
	var b strings.Builder
	var fields bool
	p := pattern{empty: body == ""}
	inClass := false
	lit := true
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			n := body[i+1]
			i++
			switch n {
			case 'z':
				b.WriteString(`\Z`)
			case 'Z':
				b.WriteString(`(?=\n?\Z)`)
			case 'h':
				b.WriteString(`[ \t]`)
			case 'K', 'G':
				return p, fmt.Errorf("%w: \\%c in regex", errUnsupported, n)
			case 'k':
				if i+1 < len(body) && (body[i+1] == '<' || body[i+1] == '{' || body[i+1] == '\'') {
					end := strings.IndexByte(body[i+1:], closing(body[i+1]))
					if end < 0 {
						return p, fmt.Errorf("%w: bad \\k", errUnsupported)
					}
					b.WriteString("(?P=" + body[i+2:i+1+end] + ")")
					i += 1 + end
					continue
				}
				b.WriteString(`\k`)
			case 'Q':
				end := strings.Index(body[i+1:], `\E`)
				quoted := body[i+1:]
				if end >= 0 {
					quoted = body[i+1 : i+1+end]
				}
				qv, err := t.quotedRegexPart(quoted)
				if err != nil {
					return p, err
				}
				b.WriteString(qv)
				fields = true
				if end >= 0 {
					i += 1 + end + 1
				} else {
					i = len(body)
				}
			case delim:
				if strings.IndexByte(`.*+?()[]{}|^$\/`, n) >= 0 {
					b.WriteByte('\\')
				}
				b.WriteByte(n)
			default:
				if n != '/' && n != '-' && n != '"' && n != ' ' {
					lit = false
				}
				b.WriteByte('\\')
				b.WriteByte(n)
			}
		case c == '[':
			if inClass && strings.HasPrefix(body[i:], "[:") {
				if end := strings.Index(body[i:], ":]"); end > 0 {
					cls := body[i : i+end+2]
					repl, ok := posixClasses[cls]
					if !ok {
						return p, fmt.Errorf("%w: POSIX class %s", errUnsupported, cls)
					}
					b.WriteString(repl)
					i += end + 1
					continue
				}
			}
			inClass = true
			lit = false
			b.WriteByte(c)
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		case c == '(':
			lit = false
			rest := body[i+1:]
			switch {
			case strings.HasPrefix(rest, "?<") && len(rest) > 2 && rest[2] != '=' && rest[2] != '!':
				b.WriteString("(?P<")
				i += 2
				p.captures++
				continue
			case strings.HasPrefix(rest, "?'"):
				end := strings.IndexByte(rest[2:], '\'')
				if end < 0 {
					return p, fmt.Errorf("%w: bad named group", errUnsupported)
				}
				b.WriteString("(?P<" + rest[2:2+end] + ">")
				i += 2 + end + 1
				p.captures++
				continue
			case strings.HasPrefix(rest, "?|"):
				return p, fmt.Errorf("%w: branch reset group", errUnsupported)
			case strings.HasPrefix(rest, "?P<"):
				p.captures++
			case !strings.HasPrefix(rest, "?") && !inClass:
				p.captures++
			}
			b.WriteByte(c)
		case c == '$' && i+1 < len(body) && (isWordStart(body[i+1]) || body[i+1] == '{'):
			end, ok := scanInterpVar(body, i)
			if !ok {
				b.WriteByte(c)
				continue
			}
			expr, err := t.interpExpr(body[i:end])
			if err != nil {
				return p, err
			}
			b.WriteString("{" + expr + "}")
			fields = true
			lit = false
			i = end - 1
		case c == '"':
			b.WriteString(`\"`)
		case c == '{' || c == '}':
			lit = false
			b.WriteByte(0) // placeholder for a brace, resolved below
			b.WriteByte(c)
		default:
			if strings.IndexByte(`.*+?^$|)`, c) >= 0 {
				lit = false
			}
			if c < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	body = b.String()
	if fields {
		body = strings.NewReplacer("\x00{", "{{", "\x00}", "}}").Replace(body)
		p.text = `rf"` + body + `"`
		return p, nil
	}
	body = strings.NewReplacer("\x00{", "{", "\x00}", "}").Replace(body)
	if lit {
		p.plain = strings.NewReplacer(`\/`, "/", `\-`, "-", `\"`, `"`, `\ `, " ").Replace(body)
	}
	p.text = `r"` + body + `"`
	return p, nil
}

// quotedRegexPart renders \Q...\E: a single variable becomes re.escape(var).
func (t *tx) quotedRegexPart(src string) (string, error) {
	src = strings.TrimSpace(src)
	if end, ok := scanInterpVar(src, 0); ok && end == len(src) && src != "" && src[0] == '$' {
		expr, err := t.interpExpr(src)
		if err != nil {
			return "", err
		}
		t.need("re")
		return "{re.escape(" + expr + ")}", nil
	}
	if !strings.ContainsAny(src, "$@") {
		return "{re.escape(" + pyQuote(src, '\'') + ")}", nil
	}
	return "", fmt.Errorf("%w: \\Q with mixed content", errUnsupported)
}

type reFlags struct {
	py     []string
	global bool
	ret    bool // s///r, tr///r
	eval   bool // s///e
	del    bool // tr///d
	count  bool
}

func (f reFlags) arg() string {
	if len(f.py) == 0 {
		return ""
	}
	return ", flags=" + strings.Join(f.py, " | ")
}

func (t *tx) regexFlags(flags string, kind token.Kind) (reFlags, error) {
	var f reFlags
	seen := map[byte]bool{}
	for i := 0; i < len(flags); i++ {
		c := flags[i]
		if seen[c] && c != 'e' {
			continue
		}
		seen[c] = true
		switch {
		case kind == token.Trans:
			switch c {
			case 'd':
				f.del = true
			case 'r':
				f.ret = true
			default:
				return f, fmt.Errorf("%w: tr///%c", errRegexFlags, c)
			}
		case c == 'i':
			f.py = append(f.py, "re.I")
		case c == 'm':
			f.py = append(f.py, "re.M")
		case c == 's':
			f.py = append(f.py, "re.S")
		case c == 'x':
			f.py = append(f.py, "re.X")
		case c == 'a':
			f.py = append(f.py, "re.A")
		case c == 'g':
			f.global = true
		case c == 'r' && kind == token.Subst:
			f.ret = true
		case c == 'e' && kind == token.Subst:
			if f.eval {
				return f, fmt.Errorf("%w: s///ee", errRegexFlags)
			}
			f.eval = true
		case c == 'o' || c == 'c' || c == 'u' || c == 'l' || c == 'd' || c == 'p' || c == 'n':
		default:
			return f, fmt.Errorf("%w: /%c", errRegexFlags, c)
		}
	}
	return f, nil
}

// matchValue renders subject =~ m//. list selects list context.
func (t *tx) matchValue(tok token.Token, subject value, list bool) (value, error) {
	t.need("re")
	pat, err := t.convertPattern(tok.Pattern, tok.Delim)
	if err != nil {
		return value{}, err
	}
	fl, err := t.regexFlags(tok.Flags, token.Match)
	if err != nil {
		return value{}, err
	}
	subj := subject.paren(pyTernary + 1)
	if list {
		if fl.global {
			return value{text: "re.findall(" + pat.text + ", " + subj + fl.arg() + ")", prec: pyPrimary, shape: shapeList}, nil
		}
		if pat.captures > 0 {
			call := "re.search(" + pat.text + ", " + subj + fl.arg() + ")"
			return value{text: "list(m.groups()) if (m := " + call + ") else []", prec: pyTernary, shape: shapeList}, nil
		}
	}
	call := "re.search(" + pat.text + ", " + subj + fl.arg() + ")"
	if pat.captures > 0 {
		call = "(m := " + call + ")"
	}
	return value{text: call, prec: pyPrimary, neg: "not " + call}, nil
}

// substValue renders subject =~ s///. Without /r the caller assigns the
// result back to the subject.
func (t *tx) substValue(tok token.Token, subject value) (value, error) {
	t.need("re")
	pat, err := t.convertPattern(tok.Pattern, tok.Delim)
	if err != nil {
		return value{}, err
	}
	fl, err := t.regexFlags(tok.Flags, token.Subst)
	if err != nil {
		return value{}, err
	}
	repl, err := t.replacement(tok, fl)
	if err != nil {
		return value{}, err
	}
	count := ", count=1"
	if fl.global {
		count = ""
	}
	text := "re.sub(" + pat.text + ", " + repl + ", " + subject.paren(pyTernary+1) + count + fl.arg() + ")"
	return value{text: text, prec: pyPrimary, shape: shapeString}, nil
}

// replacement renders the s/// replacement: a template with \g<N> group
// references, or a lambda when it needs more than group references.
func (t *tx) replacement(tok token.Token, fl reFlags) (string, error) {
	if fl.eval {
		saved := t.inFString
		t.inFString = false
		defer func() { t.inFString = saved }()
		p := newParser(t, lexer.Tokenize(tok.Replacement))
		v, err := p.parseExpr(precLowest)
		if err != nil {
			return "", err
		}
		return "lambda m: str(" + v.text + ")", nil
	}
	var parts []fpart
	if tok.Delim == '\'' {
		parts = []fpart{{lit: tok.Replacement}}
	} else {
		var err error
		parts, err = t.interpolate(tok.Replacement)
		if err != nil {
			return "", err
		}
	}
	var tmpl strings.Builder
	groupsOnly := true
	for _, p := range parts {
		if !p.isExpr {
			tmpl.WriteString(strings.ReplaceAll(p.lit, `\`, `\\`))
			continue
		}
		if n, ok := groupRef(p.expr); ok {
			tmpl.WriteString(`\g<` + n + `>`)
			continue
		}
		groupsOnly = false
	}
	if groupsOnly {
		s := tmpl.String()
		if !strings.ContainsAny(s, "\"\n\r\t") && !strings.HasSuffix(s, `\`) && strings.Contains(s, `\`) {
			return `r"` + s + `"`, nil
		}
		return pyQuote(s, '"'), nil
	}
	saved := t.inFString
	t.inFString = false
	v := t.stringValue(parts)
	t.inFString = saved
	return "lambda m: " + v.text, nil
}

func groupRef(expr string) (string, bool) {
	if !strings.HasPrefix(expr, "m.group(") || !strings.HasSuffix(expr, ")") {
		return "", false
	}
	n := expr[len("m.group(") : len(expr)-1]
	return n, isDigits(n)
}

// transValue renders tr/// as str.translate, or the counting form.
func (t *tx) transValue(tok token.Token, subject value) (value, error) {
	fl, err := t.regexFlags(tok.Flags, token.Trans)
	if err != nil {
		return value{}, err
	}
	from, err := expandTr(tok.Pattern)
	if err != nil {
		return value{}, err
	}
	to, err := expandTr(tok.Replacement)
	if err != nil {
		return value{}, err
	}
	subj := subject.paren(pyPrimary)
	if to == "" && !fl.del {
		// counting form: $n = ($s =~ tr/a-z//)
		return value{
			text:  "sum(" + subj + ".count(c) for c in " + pyQuote(from, t.quoteChar()) + ")",
			prec:  pyPrimary,
			shape: shapeNumber,
		}, nil
	}
	var table string
	fr, tr := []rune(from), []rune(to)
	switch {
	case fl.del && len(tr) < len(fr):
		table = "str.maketrans(" + pyQuote(string(fr[:len(tr)]), '"') + ", " + pyQuote(to, '"') + ", " + pyQuote(string(fr[len(tr):]), '"') + ")"
	default:
		for len(tr) < len(fr) {
			tr = append(tr, tr[len(tr)-1])
		}
		table = "str.maketrans(" + pyQuote(from, '"') + ", " + pyQuote(string(tr[:len(fr)]), '"') + ")"
	}
	return value{text: subj + ".translate(" + table + ")", prec: pyPrimary, shape: shapeString}, nil
}

// expandTr expands a-z ranges and escapes of a tr/// list.
func expandTr(s string) (string, error) {
	var chars []rune
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		if c == '\\' && i+1 < len(rs) {
			i++
			switch rs[i] {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			case 'r':
				c = '\r'
			case '\\', '-', '/':
				c = rs[i]
			default:
				return "", fmt.Errorf("%w: tr escape \\%c", errUnsupported, rs[i])
			}
			chars = append(chars, c)
			continue
		}
		if c == '-' && len(chars) > 0 && i+1 < len(rs) {
			lo, hi := chars[len(chars)-1], rs[i+1]
			if hi < lo {
				return "", fmt.Errorf("%w: tr range %c-%c", errUnsupported, lo, hi)
			}
			for r := lo + 1; r <= hi; r++ {
				chars = append(chars, r)
			}
			i++
			continue
		}
		chars = append(chars, c)
	}
	return string(chars), nil
}

// splitValue renders split PATTERN, EXPR, LIMIT.
func (t *tx) splitValue(args []value, patTok *token.Token) (value, error) {
	subject := atom(t.topic)
	if len(args) > 0 {
		subject = args[0]
	}
	limit := ""
	if len(args) > 1 {
		if isDigits(args[1].text) && args[1].text != "0" {
			n := 0
			fmt.Sscanf(args[1].text, "%d", &n)
			if n > 1 {
				limit = fmt.Sprintf(", maxsplit=%d", n-1)
			}
		} else {
			t.partial(diag.PrtFallback, "split limit %s kept as maxsplit", args[1].text)
			limit = ", maxsplit=" + args[1].text + " - 1"
		}
	}
	subj := subject.paren(pyPrimary)
	list := func(text string) value { return value{text: text, prec: pyPrimary, shape: shapeList} }
	if patTok == nil {
		return list(subj + ".split(" + strings.TrimPrefix(limit, ", ") + ")"), nil
	}
	switch patTok.Kind {
	case token.String, token.Interp:
		body := patTok.Text
		if body == " " {
			if limit != "" {
				return list(subj + ".split(None" + limit + ")"), nil
			}
			return list(subj + ".split()"), nil
		}
		if patTok.Kind == token.String {
			body = singleQuoted(body, patTok.Delim)
		}
		tok := token.Token{Kind: token.Match, Pattern: body, Delim: '/'}
		patTok = &tok
	}
	pat, err := t.convertPattern(patTok.Pattern, patTok.Delim)
	if err != nil {
		return value{}, err
	}
	fl, err := t.regexFlags(patTok.Flags, token.Match)
	if err != nil {
		return value{}, err
	}
	switch {
	case pat.empty:
		return list("list(" + subject.text + ")"), nil
	case pat.plain != "" && len(fl.py) == 0:
		if pat.plain == " " && limit == "" {
			return list(subj + ".split(\" \")"), nil
		}
		return list(subj + ".split(" + pyQuote(pat.plain, t.quoteChar()) + limit + ")"), nil
	case patTok.Pattern == `\s+` && limit == "":
		return list(subj + ".split()"), nil
	}
	t.need("re")
	return list("re.split(" + pat.text + ", " + subject.text + limit + fl.arg() + ")"), nil
}

// qrValue renders qr//.
func (t *tx) qrValue(tok token.Token) (value, error) {
	t.need("re")
	pat, err := t.convertPattern(tok.Pattern, tok.Delim)
	if err != nil {
		return value{}, err
	}
	fl, err := t.regexFlags(tok.Flags, token.Match)
	if err != nil {
		return value{}, err
	}
	args := pat.text
	if len(fl.py) > 0 {
		args += ", " + strings.Join(fl.py, " | ")
	}
	return atom("re.compile(" + args + ")"), nil
}
