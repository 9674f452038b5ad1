package normalize

import (
	"strings"

	"perl2py/internal/draft"
)

type shim struct {
	name string
	body []string // depth encoded as leading tabs
}

// shims back helpers that translated code calls but Python lacks.
var shims = []shim{
	{"looks_like_number", []string{
		"def looks_like_number(value):",
		"\ttry:",
		"\t\tfloat(value)",
		"\t\treturn True",
		"\texcept (TypeError, ValueError):",
		"\t\treturn False",
	}},
	{"perl_ref", []string{
		"def perl_ref(value):",
		"\tif isinstance(value, dict):",
		"\t\treturn \"HASH\"",
		"\tif isinstance(value, list):",
		"\t\treturn \"ARRAY\"",
		"\tif callable(value):",
		"\t\treturn \"CODE\"",
		"\treturn \"\"",
	}},
	{"perl_blessed", []string{
		"def perl_blessed(value):",
		"\tif value is None or isinstance(value, (dict, list, str, int, float)):",
		"\t\treturn None",
		"\treturn type(value).__name__",
	}},
	{"perl_builtin", []string{
		"def perl_builtin(name, *args):",
		"\tif name == \"sprintf\":",
		"\t\treturn args[0] % tuple(args[1:])",
		"\traise NotImplementedError(\"perl builtin \" + name + \" has no Python equivalent\")",
	}},
	{"perl_cmp", []string{
		"def perl_cmp(a, b):",
		"\treturn (a > b) - (a < b)",
	}},
}

// ShimNames lists the helpers normalization can supply.
func ShimNames() []string {
	out := make([]string, len(shims))
	for i, s := range shims {
		out[i] = s.name
	}
	return out
}

// fixShims inserts each referenced helper exactly once after the imports.
func fixShims(b *draft.Buffer) []Repair {
	var out []Repair
	for _, s := range shims {
		if !calls(b, s.name) || defines(b, s.name) {
			continue
		}
		at := b.AfterImports()
		lines := make([]draft.Line, 0, len(s.body)+1)
		for _, src := range s.body {
			text := strings.TrimLeft(src, "\t")
			lines = append(lines, draft.Line{Text: text, Depth: len(src) - len(text), Role: draft.RoleShim})
		}
		lines = append(lines, draft.Line{Role: draft.RoleShim}, draft.Line{Role: draft.RoleShim})
		b.Insert(at, lines...)
		out = append(out, Repair{Message: "inserted helper " + s.name})
	}
	return out
}

// calls reports whether code outside the shims calls name(...).
func calls(b *draft.Buffer, name string) bool {
	for _, l := range b.Lines {
		if l.Role == draft.RoleShim || !isCode(l) {
			continue
		}
		if len(identUses(l.Text, name, "(")) > 0 {
			return true
		}
	}
	return false
}

func defines(b *draft.Buffer, name string) bool {
	for _, l := range b.Lines {
		if strings.HasPrefix(l.Text, "def "+name+"(") {
			return true
		}
	}
	return false
}

// identUses finds name used as an identifier followed by next, outside
// strings and comments and not as an attribute.
func identUses(text, name, next string) []int {
	var at []int
	scan(text, func(i int) {
		if !strings.HasPrefix(text[i:], name+next) {
			return
		}
		if i > 0 && (isWordByte(text[i-1]) || text[i-1] == '.') {
			return
		}
		if strings.HasSuffix(strings.TrimRight(text[:i], " "), "def") {
			return
		}
		at = append(at, i)
	}, nil)
	return at
}
