package normalize

import "strings"

// strLit is a single-line Python string literal inside a line.
type strLit struct {
	start, end int // [start, end) including prefix and quotes
	prefix     string
	quote      byte
	body       string
}

func (s strLit) isF() bool   { return strings.ContainsAny(s.prefix, "fF") }
func (s strLit) isBytes() bool {
	return strings.ContainsAny(s.prefix, "bB")
}

// scan walks a single line of Python, calling code for every byte outside
// strings and comments and lit for every string literal. It stops at a
// comment and returns its start, or len(s).
func scan(s string, code func(i int), lit func(l strLit)) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '#':
			return i
		case c == '"' || c == '\'':
			start := i
			for start > 0 && i-start < 2 && isPrefixByte(s[start-1]) {
				start--
			}
			if start < i && start > 0 && isWordByte(s[start-1]) {
				// an identifier ending in r/f/b, not a prefix
				start = i
			}
			end := stringEnd(s, i)
			if lit != nil {
				body := ""
				if end-1 > i {
					body = s[i+1 : end-1]
				}
				if strings.HasPrefix(s[i:], `"""`) || strings.HasPrefix(s[i:], `'''`) {
					body = ""
				}
				lit(strLit{start: start, end: end, prefix: s[start:i], quote: c, body: body})
			}
			i = end - 1
		default:
			if code != nil {
				code(i)
			}
		}
	}
	return len(s)
}

func stringEnd(s string, i int) int {
	q := s[i]
	triple := strings.Repeat(string(q), 3)
	if strings.HasPrefix(s[i:], triple) {
		if end := strings.Index(s[i+3:], triple); end >= 0 {
			return i + 3 + end + 3
		}
		return len(s)
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j + 1
		}
	}
	return len(s)
}

func isPrefixByte(c byte) bool {
	switch c {
	case 'r', 'R', 'f', 'F', 'b', 'B', 'u', 'U':
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// splitComment separates code from a trailing comment (with its spacing).
func splitComment(s string) (code, comment string) {
	at := scan(s, nil, nil)
	code = strings.TrimRight(s[:at], " \t")
	return code, s[len(code):]
}

// literals returns the string literals of a line.
func literals(s string) []strLit {
	var out []strLit
	scan(s, nil, func(l strLit) { out = append(out, l) })
	return out
}

// matchParen returns the index of the bracket closing s[open], skipping
// strings, or -1.
func matchParen(s string, open int) int {
	depth := 0
	res := -1
	done := false
	scan(s[open:], func(i int) {
		if done {
			return
		}
		switch s[open+i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				res = open + i
				done = true
			}
		}
	}, nil)
	return res
}

// outerParens strips one pair of parentheses wrapping all of s.
func outerParens(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || matchParen(s, 0) != len(s)-1 {
		return s, false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

// topLevel returns the positions of op at bracket depth zero outside
// strings. Word operators must stand alone.
func topLevel(s, op string) []int {
	var out []int
	depth := 0
	word := isWordByte(op[0])
	scan(s, func(i int) {
		switch s[i] {
		case '(', '[', '{':
			depth++
			return
		case ')', ']', '}':
			depth--
			return
		}
		if depth != 0 || !strings.HasPrefix(s[i:], op) {
			return
		}
		if word {
			if i > 0 && isWordByte(s[i-1]) {
				return
			}
			if j := i + len(op); j < len(s) && isWordByte(s[j]) {
				return
			}
		}
		out = append(out, i)
	}, nil)
	return out
}

// header splits `kw cond:` block headers with a condition.
type header struct {
	kw      string
	cond    string
	comment string
}

var condKeywords = []string{"if", "elif", "while"}

func parseHeader(text string) (header, bool) {
	code, comment := splitComment(strings.TrimLeft(text, " \t"))
	if !strings.HasSuffix(code, ":") {
		return header{}, false
	}
	for _, kw := range condKeywords {
		if strings.HasPrefix(code, kw+" ") || strings.HasPrefix(code, kw+"(") {
			cond := strings.TrimSpace(code[len(kw) : len(code)-1])
			return header{kw: kw, cond: cond, comment: comment}, true
		}
	}
	return header{}, false
}

func (h header) String() string {
	return h.kw + " " + h.cond + ":" + h.comment
}

// blockOpener reports whether the code part of text opens a block.
func blockOpener(text string) bool {
	code, _ := splitComment(strings.TrimLeft(text, " \t"))
	if !strings.HasSuffix(code, ":") {
		return false
	}
	first := code
	if i := strings.IndexAny(code, " (:"); i >= 0 {
		first = code[:i]
	}
	switch first {
	case "if", "elif", "else", "for", "while", "def", "class", "try", "except", "finally", "with", "async":
		return true
	}
	return false
}
