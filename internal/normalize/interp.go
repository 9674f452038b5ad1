package normalize

import (
	"strings"

	"perl2py/internal/draft"
)

// fixInterpolation repairs f-strings only: Perl `${name}` / `{$name}` left
// inside them, and f-strings with nothing to interpolate. Plain strings are
// literal text and never gain an f prefix.
func fixInterpolation(b *draft.Buffer) []Repair {
	var out []Repair
	for i := range b.Lines {
		l := &b.Lines[i]
		if !isCode(*l) {
			continue
		}
		lits := literals(l.Text)
		text := l.Text
		var msgs []string
		for j := len(lits) - 1; j >= 0; j-- {
			s := lits[j]
			if s.isBytes() || s.body == "" && s.end-s.start > len(s.prefix)+2 {
				continue
			}
			repl, msg := repairLiteral(s)
			if msg == "" {
				continue
			}
			text = text[:s.start] + repl + text[s.end:]
			msgs = append(msgs, msg)
		}
		if len(msgs) == 0 {
			continue
		}
		l.Text = text
		for _, m := range msgs {
			out = append(out, repair(*l, m))
		}
	}
	return out
}

func repairLiteral(s strLit) (string, string) {
	if !s.isF() {
		return "", ""
	}
	q := string(s.quote)
	if body, ok := dropPerlSigils(s.body); ok {
		return s.prefix + q + body + q, "perl interpolation syntax in f-string"
	}
	if !strings.ContainsAny(s.body, "{}") {
		prefix := strings.NewReplacer("f", "", "F", "").Replace(s.prefix)
		return prefix + q + s.body + q, "f-string without placeholders"
	}
	return "", ""
}

// dropPerlSigils rewrites ${name} and {$name} fields.
func dropPerlSigils(body string) (string, bool) {
	var b strings.Builder
	changed := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '$' && i+1 < len(body) && body[i+1] == '{' && (i+2 >= len(body) || body[i+2] != '{'):
			changed = true
			continue
		case c == '{' && i+1 < len(body) && body[i+1] == '$' && (i == 0 || body[i-1] != '{'):
			b.WriteByte('{')
			i++
			changed = true
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), changed
}

func isIdentifier(s string) bool {
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

// boundNames collects names assigned, iterated over or declared as
// parameters anywhere in the translated code.
func boundNames(b *draft.Buffer) map[string]struct{} {
	names := make(map[string]struct{})
	add := func(list string) {
		for _, n := range strings.Split(list, ",") {
			n = strings.TrimSpace(n)
			n = strings.TrimLeft(n, "*")
			if i := strings.IndexAny(n, "=:"); i >= 0 {
				n = strings.TrimSpace(n[:i])
			}
			if isIdentifier(n) {
				names[n] = struct{}{}
			}
		}
	}
	for _, l := range b.Lines {
		if !isCode(l) || l.Role == draft.RoleShim {
			continue
		}
		code, _ := splitComment(l.Text)
		switch {
		case strings.HasPrefix(code, "for "):
			if in := strings.Index(code, " in "); in > 0 {
				add(code[4:in])
			}
		case strings.HasPrefix(code, "def "):
			open := strings.IndexByte(code, '(')
			if open > 0 {
				if end := matchParen(code, open); end > open {
					add(code[open+1 : end])
				}
			}
		case strings.Contains(code, " as ") && strings.HasSuffix(code, ":"):
			as := strings.LastIndex(code, " as ")
			add(strings.TrimSuffix(code[as+4:], ":"))
		default:
			for _, at := range topLevel(code, "=") {
				if at+1 < len(code) && code[at+1] == '=' || at > 0 && strings.IndexByte("=!<>+-*/%&|^:", code[at-1]) >= 0 {
					continue
				}
				if lhs := code[:at]; !strings.ContainsAny(lhs, "[.(") {
					add(lhs)
				}
				break
			}
		}
	}
	return names
}
