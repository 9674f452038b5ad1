package normalize

import (
	"strings"

	"perl2py/internal/draft"
)

// fixConditionals repairs block headers: `else if` becomes `elif`, stray
// `{`/`;` before the colon go away and a condition wrapped whole in
// parentheses loses them.
func fixConditionals(b *draft.Buffer) []Repair {
	var out []Repair
	for i := range b.Lines {
		l := &b.Lines[i]
		if !isCode(*l) {
			continue
		}
		code, comment := splitComment(l.Text)
		if strings.HasPrefix(code, "else if ") && strings.HasSuffix(code, ":") {
			l.Text = "elif " + strings.TrimPrefix(code, "else if ") + comment
			out = append(out, repair(*l, "else if rewritten as elif"))
			continue
		}
		if stray := strings.TrimSuffix(code, ":"); stray != code {
			trimmed := strings.TrimRight(stray, " \t")
			if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, ";") {
				l.Text = strings.TrimRight(trimmed[:len(trimmed)-1], " \t") + ":" + comment
				out = append(out, repair(*l, "stray brace before block colon"))
				continue
			}
		}
		h, ok := parseHeader(l.Text)
		if !ok {
			continue
		}
		inner, wrapped := outerParens(h.cond)
		if !wrapped || inner == "" || len(topLevel(inner, ",")) > 0 {
			continue
		}
		h.cond = inner
		l.Text = h.String()
		out = append(out, repair(*l, "redundant parentheses around condition"))
	}
	return out
}
