package translate

import (
	"strings"

	"perl2py/internal/diag"
	"perl2py/internal/rules"
)

var pyKeywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// module names the translation imports; a Perl variable of the same name
// would shadow them.
var reservedModules = map[string]struct{}{
	"re": {}, "os": {}, "sys": {}, "json": {}, "math": {}, "time": {},
	"random": {}, "shutil": {}, "subprocess": {}, "copy": {}, "pprint": {},
	"argparse": {}, "io": {}, "fileinput": {}, "functools": {}, "fcntl": {},
	"signal": {},
}

// builtins the generated code calls by name. `$str` or `$list` bound as a
// variable would break the next str(...) / list(...) in the same scope.
var pyBuiltins = map[string]struct{}{
	"abs": {}, "all": {}, "any": {}, "bool": {}, "callable": {}, "chr": {},
	"dict": {}, "enumerate": {}, "filter": {}, "float": {}, "format": {},
	"getattr": {}, "hex": {}, "input": {}, "int": {}, "isinstance": {},
	"iter": {}, "len": {}, "list": {}, "map": {}, "max": {}, "min": {},
	"next": {}, "oct": {}, "open": {}, "ord": {}, "print": {}, "range": {},
	"repr": {}, "reversed": {}, "round": {}, "set": {}, "sorted": {},
	"str": {}, "sum": {}, "tuple": {}, "type": {}, "vars": {}, "zip": {},
}

// pyIdent turns a Perl name into a Python identifier.
func pyIdent(name string) string {
	name = strings.TrimPrefix(name, "main::")
	name = strings.ReplaceAll(name, "::", "_")
	for _, reserved := range []map[string]struct{}{pyKeywords, reservedModules, pyBuiltins} {
		if _, ok := reserved[name]; ok {
			return name + "_"
		}
	}
	return name
}

// varName renders a sigiled variable name using the table's sigil strategy.
// sigil is the container sigil ("$", "@", "%"), not the access sigil.
func (t *tx) varName(sigil, name string) string {
	if sigil == "$" && t.rename != nil {
		if r, ok := t.rename[name]; ok {
			return r
		}
	}
	id := pyIdent(name)
	st := t.table().Sigil(sigil)
	if st.Mode == rules.SigilSuffix && st.Suffix != "" {
		id += st.Suffix
	}
	return id
}

// special renders Perl's punctuation and well-known variables. ok=false
// means name is an ordinary variable.
func (t *tx) special(sigil, name string) (string, shape, bool) {
	switch sigil + name {
	case "$_":
		return t.topic, shapeScalar, true
	case "@_":
		return "args", shapeList, true
	case "@ARGV":
		t.need("sys")
		return "sys.argv[1:]", shapeList, true
	case "$0":
		t.need("sys")
		return "sys.argv[0]", shapeScalar, true
	case "%ENV":
		t.need("os")
		return "os.environ", shapeHash, true
	case "$@":
		return "eval_error", shapeScalar, true
	case "$!":
		if t.errName != "" {
			return t.errName, shapeScalar, true
		}
		t.need("sys")
		return "sys.exc_info()[1]", shapeScalar, true
	case "$&":
		return "m.group(0)", shapeScalar, true
	case "$$":
		t.need("os")
		return "os.getpid()", shapeScalar, true
	case "$;", "$,", "$/", "$\\", "$|", "$\"", "$?", "$^W", "$^O", "$^T", "$^X":
		if sigil+name == "$^O" {
			t.need("sys")
			return "sys.platform", shapeScalar, true
		}
		if sigil+name == "$?" {
			return "exit_status", shapeScalar, true
		}
		t.partial(diag.UnrSpecialVar, "special variable %s%s has no Python counterpart", sigil, name)
		return "None", shapeScalar, true
	case "@INC":
		t.need("sys")
		return "sys.path", shapeList, true
	case "%INC":
		t.need("sys")
		return "sys.modules", shapeHash, true
	case "STDIN":
		t.need("sys")
		return "sys.stdin", shapeScalar, true
	}
	if sigil == "$" && name != "" && name[0] >= '1' && name[0] <= '9' && isDigits(name) {
		return "m.group(" + name + ")", shapeScalar, true
	}
	return "", shapeScalar, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// stdHandle maps a bareword filehandle to its Python stream.
func (t *tx) stdHandle(name string) (string, bool) {
	switch name {
	case "STDIN":
		t.need("sys")
		return "sys.stdin", true
	case "STDOUT":
		t.need("sys")
		return "sys.stdout", true
	case "STDERR":
		t.need("sys")
		return "sys.stderr", true
	}
	return "", false
}
