package rules

import (
	"maps"
	"slices"
)

// Builtin describes how a Perl builtin or library function call is rendered.
//
// Templates use positional placeholders: {0}, {1}, ... for single arguments,
// {args} for all arguments joined with ", ", {rest} for arguments from the
// second on, and {list0} / {list1} for the arguments from that position
// rendered as one iterable (a single array argument stays bare, several become
// a Python list literal).
type Builtin struct {
	Template string
	// Nullary is used instead of Template for a call without arguments. When
	// empty, a missing {0} defaults to the topic variable.
	Nullary string
	// Variadic is used instead of Template when more than one argument is given.
	Variadic string
	// Imports are Python modules the rendered call needs.
	Imports []string
	// Mutates marks builtins that modify their first argument in place
	// (chomp, chop); in statement position the result is assigned back.
	Mutates bool
}

func (b Builtin) clone() Builtin {
	b.Imports = slices.Clone(b.Imports)
	return b
}

// SigilMode selects how a sigiled name becomes a Python identifier.
type SigilMode string

const (
	SigilStrip  SigilMode = "strip"
	SigilSuffix SigilMode = "suffix"
)

// SigilStrategy is the naming strategy for one sigil ("$", "@" or "%").
type SigilStrategy struct {
	Mode   SigilMode
	Suffix string
}

// Options are the conversion switches.
type Options struct {
	PreserveComments        bool
	ConvertPODToDocstrings  bool
	EmitHeader              bool
	FStringInterpolation    bool
	StrictFallback          bool
	// Indent is the number of spaces per block level.
	Indent int
}

// Table is the immutable rule set threaded through one conversion run. All
// accessors return copies, so a Table is safe to share between goroutines.
type Table struct {
	builtins  map[string]Builtin
	modules   map[string]string
	operators map[string]string
	sigils    map[string]SigilStrategy
	options   Options
}

// Builtin looks up the rendering rule for a function name.
func (t *Table) Builtin(name string) (Builtin, bool) {
	b, ok := t.builtins[name]
	if !ok {
		return Builtin{}, false
	}
	return b.clone(), true
}

// Module returns the Python import line for a Perl module. An empty line with
// ok=true means the module is dropped without replacement.
func (t *Table) Module(name string) (line string, ok bool) {
	line, ok = t.modules[name]
	return line, ok
}

// Operator maps a Perl operator token to its Python spelling.
func (t *Table) Operator(tok string) (string, bool) {
	op, ok := t.operators[tok]
	return op, ok
}

// Sigil returns the naming strategy for a sigil, defaulting to strip.
func (t *Table) Sigil(sigil string) SigilStrategy {
	if s, ok := t.sigils[sigil]; ok {
		return s
	}
	return SigilStrategy{Mode: SigilStrip}
}

func (t *Table) Options() Options {
	return t.options
}

// Builtins returns a copy of the builtin map.
func (t *Table) Builtins() map[string]Builtin {
	out := make(map[string]Builtin, len(t.builtins))
	for k, v := range t.builtins {
		out[k] = v.clone()
	}
	return out
}

func (t *Table) Modules() map[string]string {
	return maps.Clone(t.modules)
}

func (t *Table) Operators() map[string]string {
	return maps.Clone(t.operators)
}

func (t *Table) Sigils() map[string]SigilStrategy {
	return maps.Clone(t.sigils)
}

// Unsupported reports whether name is a recognized Perl builtin without a
// Python counterpart. Such calls are routed through the perl_builtin shim.
func Unsupported(name string) bool {
	_, ok := unsupportedBuiltins[name]
	return ok
}

var unsupportedBuiltins = map[string]struct{}{
	"wantarray": {}, "caller": {}, "local": {}, "tie": {}, "untie": {},
	"tied": {}, "dump": {}, "goto": {}, "formline": {}, "study": {},
	"reset": {}, "prototype": {}, "lock": {}, "select": {}, "vec": {},
	"pos": {}, "syscall": {}, "dbmopen": {}, "dbmclose": {}, "format": {},
	"bless": {}, "eof": {},
}
