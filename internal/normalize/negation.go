package normalize

import (
	"strings"

	"perl2py/internal/draft"
)

// negated comparisons flip into their positive counterparts.
var flips = []struct{ op, neg string }{
	{" is not ", " is "},
	{" is ", " is not "},
	{" not in ", " in "},
	{" == ", " != "},
	{" != ", " == "},
}

// fixNegations simplifies the conditions `unless`/`until` rewriting leaves
// behind: double negation and a negated single comparison.
func fixNegations(b *draft.Buffer) []Repair {
	var out []Repair
	for i := range b.Lines {
		l := &b.Lines[i]
		if !isCode(*l) {
			continue
		}
		h, ok := parseHeader(l.Text)
		if !ok {
			continue
		}
		cond, changed := simplifyNot(h.cond)
		if !changed {
			continue
		}
		h.cond = cond
		l.Text = h.String()
		out = append(out, repair(*l, "negated condition simplified"))
	}
	return out
}

func simplifyNot(cond string) (string, bool) {
	rest, ok := strings.CutPrefix(cond, "not ")
	if !ok {
		return cond, false
	}
	rest = strings.TrimSpace(rest)
	// not not X
	if x, ok := strings.CutPrefix(rest, "not "); ok && wholeOperand(x) {
		return strings.TrimSpace(x), true
	}
	inner, wrapped := outerParens(rest)
	if !wrapped {
		return cond, false
	}
	// not (not X)
	if x, ok := strings.CutPrefix(inner, "not "); ok && wholeOperand(x) {
		return strings.TrimSpace(x), true
	}
	if hasBoolOp(inner) {
		return cond, false
	}
	for _, f := range flips {
		at := topLevel(inner, f.op)
		if len(at) != 1 || f.op == " is " && strings.HasPrefix(inner[at[0]:], " is not ") {
			continue
		}
		if len(comparisons(inner)) != 1 {
			return cond, false
		}
		return inner[:at[0]] + f.neg + inner[at[0]+len(f.op):], true
	}
	return cond, false
}

// wholeOperand: x has no boolean operator outside brackets.
func wholeOperand(x string) bool {
	return !hasBoolOp(x)
}

func hasBoolOp(s string) bool {
	return len(topLevel(s, "and")) > 0 || len(topLevel(s, "or")) > 0 ||
		len(topLevel(s, "if")) > 0 || len(topLevel(s, "lambda")) > 0
}

// comparisons lists top-level comparison operators of s.
func comparisons(s string) []int {
	var at []int
	for _, op := range []string{" == ", " != ", " < ", " > ", " <= ", " >= "} {
		at = append(at, topLevel(s, op)...)
	}
	// `is not` contains `is`; `not in` contains `in`
	is := topLevel(s, " is ")
	at = append(at, is...)
	in := topLevel(s, " in ")
	notIn := topLevel(s, " not in ")
	if len(notIn) > 0 {
		at = append(at, notIn...)
	} else {
		at = append(at, in...)
	}
	return at
}
