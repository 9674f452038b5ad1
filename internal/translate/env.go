package translate

import (
	"errors"
	"fmt"
	"strings"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/rules"
)

// Env is the per-unit context shared by all translators of one unit.
type Env struct {
	Table *rules.Table
	// Subs are the subs declared in the unit.
	Subs map[string]struct{}
	// InSub is maintained by the orchestrator: true inside a sub body.
	InSub bool
}

// NewEnv builds the environment for one unit.
func NewEnv(table *rules.Table, subs map[string]struct{}) *Env {
	if subs == nil {
		subs = map[string]struct{}{}
	}
	return &Env{Table: table, Subs: subs}
}

func (e *Env) isSub(name string) bool {
	_, ok := e.Subs[name]
	return ok
}

var (
	errUnsupported = errors.New("unsupported construct")
	errNested      = errors.New("nested interpolation")
	errRegexFlags  = errors.New("regex flags")
	errSyntax      = errors.New("unexpected token")
	errResidue     = errors.New("perl syntax left in output")
)

// tx is the state of one translator call.
type tx struct {
	env      *Env
	m        *construct.Match
	imports  map[string]struct{}
	notes    []Note
	heredocs map[string]construct.Heredoc

	// errName is bound to the OS error inside an `except OSError as ...`.
	errName string
	// rename overrides scalar names (sort blocks bind $a/$b).
	rename map[string]string
	// inFString: string literals render with single quotes.
	inFString bool
	// topic is what $_ renders as.
	topic string
	// pending counts in-place s/// and tr/// values not yet assigned back.
	pending int
}

func newTx(m *construct.Match, env *Env) *tx {
	t := &tx{
		env:     env,
		m:       m,
		imports: make(map[string]struct{}),
		topic:   "item",
	}
	if len(m.Heredocs) > 0 {
		t.heredocs = make(map[string]construct.Heredoc, len(m.Heredocs))
		for _, h := range m.Heredocs {
			t.heredocs[h.Placeholder] = h
		}
	}
	return t
}

func (t *tx) table() *rules.Table { return t.env.Table }

func (t *tx) opts() rules.Options { return t.env.Table.Options() }

// need records a required module ("re") or a full import line.
func (t *tx) need(mod string) {
	if mod == "" {
		return
	}
	if !strings.HasPrefix(mod, "import ") && !strings.HasPrefix(mod, "from ") {
		mod = "import " + mod
	}
	t.imports[mod] = struct{}{}
}

func (t *tx) note(sev diag.Severity, code diag.Code, format string, args ...any) {
	t.notes = append(t.notes, Note{Severity: sev, Code: code, Msg: fmt.Sprintf(format, args...)})
}

func (t *tx) partial(code diag.Code, format string, args ...any) {
	t.note(diag.SevPartial, code, format, args...)
}

func (t *tx) result(lines []Line) Result {
	return Result{Lines: lines, Imports: t.imports, Notes: t.notes}
}

// fallback keeps the original construct as inert comments.
func (t *tx) fallback(err error) Result {
	code := diag.PrtFallback
	switch {
	case errors.Is(err, errNested):
		code = diag.PrtNestedInterpolation
	case errors.Is(err, errRegexFlags):
		code = diag.PrtRegexFlags
	case errors.Is(err, errResidue):
		code = diag.PrtResidue
	}
	sev := diag.SevPartial
	if t.opts().StrictFallback {
		sev = diag.SevUnrecognized
		code = diag.UnrConstruct
	}
	return Result{
		Lines:   commentLines("partial", t.original()),
		Imports: map[string]struct{}{},
		Notes:   []Note{{Severity: sev, Code: code, Msg: err.Error()}},
	}
}

// original is the construct's code as written, with heredoc bodies restored.
func (t *tx) original() string {
	text := t.m.Text
	for _, h := range t.m.Heredocs {
		text = strings.Replace(text, h.Placeholder, "<<"+h.Tag, 1)
	}
	return text
}

// commentLines renders text as `# perl2py: <label>: ...` comment lines.
func commentLines(label, text string) []Line {
	var out []Line
	for i, l := range strings.Split(text, "\n") {
		prefix := "# perl2py: " + label + ": "
		if i > 0 {
			prefix = "# "
		}
		out = append(out, Line{Text: strings.TrimRight(prefix+l, " ")})
	}
	return out
}

func line(indent int, format string, args ...any) Line {
	if len(args) == 0 {
		return Line{Text: format, Indent: indent}
	}
	return Line{Text: fmt.Sprintf(format, args...), Indent: indent}
}
