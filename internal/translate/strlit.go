package translate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"perl2py/internal/diag"
	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

// quoteChar is the quote used for string literals at the current position:
// inside an f-string replacement field it must differ from the outer quote.
func (t *tx) quoteChar() byte {
	if t.inFString {
		return '\''
	}
	return '"'
}

// escapeLit escapes s for a Python literal quoted with q. In f-strings,
// braces are doubled.
func escapeLit(s string, q byte, fstring bool) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '{' && fstring:
			b.WriteString("{{")
		case r == '}' && fstring:
			b.WriteString("}}")
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func pyQuote(s string, q byte) string {
	return string(q) + escapeLit(s, q, false) + string(q)
}

// singleQuoted decodes a '...' / q() body: only \\ and \<delim> are escapes.
func singleQuoted(body string, delim byte) string {
	if !strings.Contains(body, `\`) {
		return body
	}
	closer := closing(delim)
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			n := body[i+1]
			if n == '\\' || n == delim || n == closer {
				b.WriteByte(n)
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func closing(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return open
}

// stringValue renders collected parts: a plain literal, an f-string or, with
// f-strings disabled, a str() concatenation.
func (t *tx) stringValue(parts []fpart) value {
	parts = mergeLits(parts)
	if len(parts) == 0 {
		parts = []fpart{{lit: ""}}
	}
	q := t.quoteChar()
	v := value{prec: pyPrimary, shape: shapeString, parts: parts}
	if !v.hasExpr() {
		v.text = pyQuote(v.literal(), q)
		return v
	}
	if !t.opts().FStringInterpolation {
		var pieces []string
		for _, p := range parts {
			if p.isExpr {
				pieces = append(pieces, "str("+p.expr+")")
			} else if p.lit != "" {
				pieces = append(pieces, pyQuote(p.lit, q))
			}
		}
		v.text = strings.Join(pieces, " + ")
		v.prec = pyAdd
		return v
	}
	var b strings.Builder
	b.WriteByte('f')
	b.WriteByte(q)
	for i, p := range parts {
		if p.isExpr {
			b.WriteByte('{')
			b.WriteString(p.expr)
			b.WriteByte('}')
			continue
		}
		lit := escapeLit(p.lit, q, true)
		if strings.HasSuffix(lit, "$") && i+1 < len(parts) {
			// "${" would read as Perl syntax
			lit = strings.TrimSuffix(lit, "$") + `\x24`
		}
		b.WriteString(lit)
	}
	b.WriteByte(q)
	v.text = b.String()
	return v
}

func mergeLits(parts []fpart) []fpart {
	out := parts[:0:0]
	for _, p := range parts {
		if !p.isExpr && len(out) > 0 && !out[len(out)-1].isExpr {
			out[len(out)-1].lit += p.lit
			continue
		}
		if !p.isExpr && p.lit == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// interpolate decodes a double-quoted body into literal and expression parts.
func (t *tx) interpolate(body string) ([]fpart, error) {
	var parts []fpart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, fpart{lit: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			n, adv := t.unescape(body[i+1:])
			lit.WriteString(n)
			i += 1 + adv
		case c == '$' && i+1 < len(body):
			end, ok := scanInterpVar(body, i)
			if !ok {
				lit.WriteByte(c)
				i++
				continue
			}
			src := body[i:end]
			if strings.HasPrefix(src, "${\\") || strings.HasPrefix(src, "${ \\") {
				return nil, fmt.Errorf("%w: %s", errNested, src)
			}
			expr, err := t.interpExpr(src)
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, fpart{expr: expr, isExpr: true})
			i = end
		case c == '@' && i+1 < len(body) && (isWordStart(body[i+1]) || body[i+1] == '{' || body[i+1] == '$'):
			if i > 0 && isWordByte(body[i-1]) {
				// user@example.com
				lit.WriteByte(c)
				i++
				continue
			}
			if strings.HasPrefix(body[i:], "@{[") {
				return nil, fmt.Errorf("%w: %s", errNested, body[i:min(len(body), i+12)])
			}
			end, ok := scanInterpVar(body, i)
			if !ok {
				lit.WriteByte(c)
				i++
				continue
			}
			expr, err := t.interpExprShape(body[i:end])
			if err != nil {
				return nil, err
			}
			flush()
			if expr.shape == shapeList {
				sep := pyQuote(" ", '\'')
				expr = atom(sep + ".join(map(str, " + expr.text + "))")
			}
			parts = append(parts, fpart{expr: expr.text, isExpr: true})
			i = end
		default:
			_, size := utf8.DecodeRuneInString(body[i:])
			lit.WriteString(body[i : i+size])
			i += size
		}
	}
	flush()
	return parts, nil
}

// unescape decodes one escape after a backslash; adv is the bytes used.
func (t *tx) unescape(s string) (string, int) {
	switch s[0] {
	case 'n':
		return "\n", 1
	case 't':
		return "\t", 1
	case 'r':
		return "\r", 1
	case '0':
		return "\x00", 1
	case 'a':
		return "\a", 1
	case 'e':
		return "\x1b", 1
	case 'f':
		return "\f", 1
	case 'x':
		if len(s) > 1 && s[1] == '{' {
			if end := strings.IndexByte(s, '}'); end > 0 {
				if n, err := strconv.ParseUint(s[2:end], 16, 32); err == nil {
					return string(rune(n)), end + 1
				}
			}
			return "x", 1
		}
		j := 1
		for j < len(s) && j < 3 && isHex(s[j]) {
			j++
		}
		if n, err := strconv.ParseUint(s[1:j], 16, 8); err == nil {
			return string(rune(n)), j
		}
		return "x", 1
	case 'N':
		if strings.HasPrefix(s, "N{U+") {
			if end := strings.IndexByte(s, '}'); end > 0 {
				if n, err := strconv.ParseUint(s[4:end], 16, 32); err == nil {
					return string(rune(n)), end + 1
				}
			}
		}
		return "N", 1
	case 'u', 'l', 'U', 'L', 'Q', 'E':
		t.partial(diag.PrtFormat, "case escape \\%c is not converted", s[0])
		return "", 1
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size], size
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isWordStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isWordByte(c byte) bool {
	return isWordStart(c) || c >= '0' && c <= '9'
}

// scanInterpVar finds the end of a variable expression starting at body[i]
// ('$' or '@'): the name, then subscripts and -> chains the way Perl
// interpolates them.
func scanInterpVar(body string, i int) (int, bool) {
	j := i + 1
	switch {
	case j < len(body) && body[j] == '{':
		end := matchBracket(body, j)
		if end < 0 {
			return 0, false
		}
		j = end + 1
	case j < len(body) && body[j] == '$' && j+1 < len(body) && isWordStart(body[j+1]):
		j++
		for j < len(body) && (isWordByte(body[j]) || body[j] == ':' && j+2 < len(body) && body[j+1] == ':' && isWordStart(body[j+2])) {
			if body[j] == ':' {
				j++
			}
			j++
		}
	case j < len(body) && isWordStart(body[j]):
		for j < len(body) && (isWordByte(body[j]) || body[j] == ':' && j+2 < len(body) && body[j+1] == ':' && isWordStart(body[j+2])) {
			if body[j] == ':' {
				j++
			}
			j++
		}
	case j < len(body) && body[i] == '$' && (body[j] >= '0' && body[j] <= '9'):
		for j < len(body) && body[j] >= '0' && body[j] <= '9' {
			j++
		}
		return j, true
	case j < len(body) && body[i] == '$' && strings.IndexByte("&@!0", body[j]) >= 0:
		return j + 1, true
	default:
		return 0, false
	}
	for j < len(body) {
		switch {
		case body[j] == '[' && subscriptLooksIndex(body[j+1:]):
			end := matchBracket(body, j)
			if end < 0 {
				return j, true
			}
			j = end + 1
		case body[j] == '{' && body[i] == '$':
			end := matchBracket(body, j)
			if end < 0 {
				return j, true
			}
			j = end + 1
		case strings.HasPrefix(body[j:], "->[") || strings.HasPrefix(body[j:], "->{"):
			end := matchBracket(body, j+2)
			if end < 0 {
				return j, true
			}
			j = end + 1
		default:
			return j, true
		}
	}
	return j, true
}

// subscriptLooksIndex decides whether "[...]" after an interpolated name is
// an element access ($a[0], $a[$i], $a[-1]) or literal text.
func subscriptLooksIndex(rest string) bool {
	if rest == "" {
		return false
	}
	c := rest[0]
	return c == '$' || c == '-' || c >= '0' && c <= '9'
}

func matchBracket(s string, open int) int {
	o := s[open]
	c := closing(o)
	depth := 0
	for k := open; k < len(s); k++ {
		switch s[k] {
		case '\\':
			k++
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return -1
}

// interpExpr translates an interpolated variable expression for an f-string
// replacement field.
func (t *tx) interpExpr(src string) (string, error) {
	v, err := t.interpExprShape(src)
	if err != nil {
		return "", err
	}
	return v.text, nil
}

func (t *tx) interpExprShape(src string) (value, error) {
	// "${name}" is the braced form of "$name"
	if len(src) > 3 && src[1] == '{' && src[len(src)-1] == '}' {
		inner := strings.TrimSpace(src[2 : len(src)-1])
		if isIdent(inner) {
			src = src[:1] + inner
		}
	}
	saved := t.inFString
	t.inFString = true
	defer func() { t.inFString = saved }()
	p := newParser(t, lexer.Tokenize(src))
	v, err := p.parseExpr(precNamedUnary)
	if err != nil {
		return value{}, err
	}
	if !p.atEnd() {
		return value{}, fmt.Errorf("%w: %q in interpolation", errSyntax, src)
	}
	return v, nil
}

func isIdent(s string) bool {
	if s == "" || !isWordStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

// stringToken renders a string-like token.
func (t *tx) stringToken(tok token.Token) (value, error) {
	switch tok.Kind {
	case token.String:
		return t.stringValue([]fpart{{lit: singleQuoted(tok.Text, tok.Delim)}}), nil
	case token.Interp:
		parts, err := t.interpolate(tok.Text)
		if err != nil {
			return value{}, err
		}
		return t.stringValue(parts), nil
	}
	return value{}, fmt.Errorf("%w: %s", errSyntax, tok.Kind)
}

// heredocValue renders a here-document body; multi-line bodies become
// triple-quoted literals.
func (t *tx) heredocValue(placeholder string) (value, bool, error) {
	h, ok := t.heredocs[placeholder]
	if !ok {
		return value{}, false, nil
	}
	parts := []fpart{{lit: h.Body}}
	if h.Interpolate {
		var err error
		parts, err = t.interpolate(h.Body)
		if err != nil {
			return value{}, true, err
		}
	}
	v := t.stringValue(parts)
	if t.inFString || !strings.Contains(h.Body, "\n") || strings.Count(h.Body, "\n") == 1 {
		return v, true, nil
	}
	// triple-quoted: keep real newlines
	var b strings.Builder
	if v.hasExpr() && t.opts().FStringInterpolation {
		b.WriteByte('f')
	}
	b.WriteString(`"""`)
	for _, p := range mergeLits(parts) {
		if p.isExpr {
			if !t.opts().FStringInterpolation {
				return v, true, nil
			}
			b.WriteString("{" + p.expr + "}")
			continue
		}
		lit := strings.ReplaceAll(p.lit, `\`, `\\`)
		lit = strings.ReplaceAll(lit, `"""`, `\"\"\"`)
		if v.hasExpr() {
			lit = strings.NewReplacer("{", "{{", "}", "}}").Replace(lit)
		}
		b.WriteString(lit)
	}
	text := b.String()
	if strings.HasSuffix(text, `"`) {
		text = text[:len(text)-1] + `\"`
	}
	v.text = text + `"""`
	return v, true, nil
}
