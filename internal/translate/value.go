package translate

import "strings"

// Python precedence, lowest first. Rendering parenthesizes an operand whose
// precedence is below what its position needs.
const (
	pyLambda = iota + 1
	pyTernary
	pyOr
	pyAnd
	pyNot
	pyCompare
	pyBitOr
	pyBitXor
	pyBitAnd
	pyShift
	pyAdd
	pyMul
	pyUnary
	pyPow
	pyPrimary
)

type shape uint8

const (
	shapeScalar shape = iota
	shapeList
	shapeHash
	shapeString
	shapeNumber
)

// fpart is one piece of a string under construction: literal text or an
// expression to interpolate.
type fpart struct {
	lit    string
	expr   string
	isExpr bool
}

// value is a rendered Python expression.
type value struct {
	text  string
	prec  int
	shape shape
	// neg is the rendered negation when it is simpler than `not (...)`.
	neg string
	// parts is set for string literals and concatenations; text is derived
	// from them by finish().
	parts []fpart
	// rng is set for Perl ranges (lo..hi).
	rng *rangeVal
	// name is set for plain variables (the Python identifier).
	name string
	// pair marks a `k => v` element inside a list.
	pair *pairVal
	// decl marks a value introduced by my/our/local/state.
	decl bool
	// items holds the elements of a comma list; fat is set when `=>` was used.
	items []value
	fat   bool
	// elem is set for a single subscript access, for exists/delete/defined.
	elem *elemVal
	// inplace is the lvalue an s/// or tr/// result must be assigned back to.
	inplace string
	// grouped marks an expression written in parentheses.
	grouped bool
}

type elemVal struct {
	container string
	key       value
	hash      bool
}

type rangeVal struct {
	lo, hi value
}

type pairVal struct {
	key, val value
}

// listValue renders a comma list as a Python list, spreading list items.
func listValue(items []value, fat bool) value {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, spread(it))
	}
	return value{
		text:  "[" + strings.Join(parts, ", ") + "]",
		prec:  pyPrimary,
		shape: shapeList,
		items: items,
		fat:   fat,
	}
}

// hashValue renders key/value items as a dict display; hash items spread
// with **.
func hashValue(items []value) (value, bool) {
	parts := make([]string, 0, len(items)/2)
	for i := 0; i < len(items); i++ {
		it := items[i]
		switch {
		case it.shape == shapeHash:
			parts = append(parts, "**"+it.paren(pyPrimary))
			continue
		case it.shape == shapeList || i+1 == len(items):
			return value{}, false
		}
		parts = append(parts, it.paren(pyTernary)+": "+items[i+1].paren(pyTernary))
		i++
	}
	return value{text: "{" + strings.Join(parts, ", ") + "}", prec: pyPrimary, shape: shapeHash}, true
}

// spread renders a list element; nested lists flatten the way Perl lists do.
func spread(v value) string {
	switch {
	case v.items != nil:
		parts := make([]string, 0, len(v.items))
		for _, it := range v.items {
			parts = append(parts, spread(it))
		}
		return strings.Join(parts, ", ")
	case v.shape == shapeList:
		return "*" + v.paren(pyPrimary)
	case v.shape == shapeHash:
		return "*" + v.paren(pyPrimary) + ".items()"
	}
	return v.paren(pyTernary)
}

func atom(text string) value {
	return value{text: text, prec: pyPrimary}
}

func scalarVar(name string) value {
	return value{text: name, prec: pyPrimary, name: name}
}

// paren renders v for a position that needs at least prec.
func (v value) paren(prec int) string {
	if v.prec < prec {
		return "(" + v.text + ")"
	}
	return v.text
}

func (v value) isStringLit() bool {
	return v.parts != nil && !v.hasExpr()
}

func (v value) hasExpr() bool {
	for _, p := range v.parts {
		if p.isExpr {
			return true
		}
	}
	return false
}

// literal returns the plain text of a string literal.
func (v value) literal() string {
	var b strings.Builder
	for _, p := range v.parts {
		b.WriteString(p.lit)
	}
	return b.String()
}

// negate renders `not v` with the cheap forms first.
func negate(v value) value {
	if v.neg != "" {
		return value{text: v.neg, prec: pyCompare, neg: v.text}
	}
	return value{text: "not " + v.paren(pyNot), prec: pyNot, neg: v.text}
}

// asCount renders a list in numeric context as its length.
func asCount(v value) value {
	for _, suffix := range []string{".keys())", ".values())"} {
		if strings.HasPrefix(v.text, "list(") && strings.HasSuffix(v.text, suffix) && matchBracket(v.text, 4) == len(v.text)-1 {
			return value{text: "len(" + v.text[len("list("):len(v.text)-len(suffix)] + ")", prec: pyPrimary, shape: shapeNumber}
		}
	}
	if v.shape == shapeList || v.shape == shapeHash {
		return value{text: "len(" + v.text + ")", prec: pyPrimary, shape: shapeNumber}
	}
	return v
}

// asList renders v where a Python list is required.
func asList(v value) string {
	switch {
	case v.rng != nil:
		return "list(" + v.text + ")"
	case v.shape == shapeList:
		return v.text
	case v.shape == shapeHash:
		return "list(" + v.text + ".items())"
	}
	return "[" + v.text + "]"
}
