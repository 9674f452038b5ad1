package normalize

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perl2py/internal/draft"
)

// buf builds a buffer from "depth|text" lines.
func buf(lines ...string) *draft.Buffer {
	b := draft.New(4)
	for _, l := range lines {
		depth := 0
		for strings.HasPrefix(l, ">") {
			depth++
			l = l[1:]
		}
		b.Append(draft.Line{Text: l, Depth: depth})
	}
	return b
}

func TestPatternOrder(t *testing.T) {
	var names []string
	for _, p := range Patterns() {
		names = append(names, p.Name)
	}
	want := []string{
		"malformed-conditional", "bad-unless-negation", "broken-interpolation",
		"empty-block", "missing-shim", "missing-import", "indentation",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("pattern order (-want +got):\n%s", diff)
	}
}

func TestRepairs(t *testing.T) {
	cases := []struct {
		name string
		in   *draft.Buffer
		want string
	}{
		{
			"else if",
			buf("if a:", ">x = 1", "else if b:", ">x = 2"),
			"if a:\n    x = 1\nelif b:\n    x = 2\n",
		},
		{
			"outer parens",
			buf("if (a and b):", ">pass"),
			"if a and b:\n    pass\n",
		},
		{
			"tuple parens kept",
			buf("while (a, b):", ">pass"),
			"while (a, b):\n    pass\n",
		},
		{
			"stray brace",
			buf("else {:", ">pass"),
			"else:\n    pass\n",
		},
		{
			"double not",
			buf("if not not ready:", ">go()"),
			"if ready:\n    go()\n",
		},
		{
			"negated is None",
			buf("if not (value is None):", ">use(value)"),
			"if value is not None:\n    use(value)\n",
		},
		{
			"negated equality",
			buf("while not (a == b):", ">step()"),
			"while a != b:\n    step()\n",
		},
		{
			"negation of a conjunction kept",
			buf("if not (a == b and c):", ">step()"),
			"if not (a == b and c):\n    step()\n",
		},
		{
			"empty block",
			buf("for x in items:", "# nothing", "done = True"),
			"for x in items:\n    pass\n# nothing\ndone = True\n",
		},
		{
			"perl sigil in f-string",
			buf("name = 'x'", "print(f\"hi ${name}\")"),
			"name = 'x'\nprint(f\"hi {name}\")\n",
		},
		{
			"f-string without placeholders",
			buf("print(f\"plain\")"),
			"print(\"plain\")\n",
		},
		{
			"plain string with braces stays literal",
			buf("count = 3", "print(\"n={count}\")"),
			"count = 3\nprint(\"n={count}\")\n",
		},
		{
			"format string untouched",
			buf("count = 3", "print(\"n={count}\".format(count=count))"),
			"count = 3\nprint(\"n={count}\".format(count=count))\n",
		},
		{
			"indentation clamped",
			buf("x = 1", ">>>y = 2", "if x:", ">>>z = 3"),
			"x = 1\ny = 2\nif x:\n    z = 3\n",
		},
		{
			"leading whitespace folded",
			buf("  x = 1"),
			"x = 1\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := Run(tc.in)
			if diff := cmp.Diff(tc.want, out.Render()); diff != "" {
				t.Fatalf("render mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMissingImportAndShim(t *testing.T) {
	b := draft.New(4)
	b.Append(
		draft.Line{Text: "#!/usr/bin/env python3", Role: draft.RoleHeader},
		draft.Line{Text: "", Role: draft.RoleHeader},
		draft.Line{Text: "import sys", Role: draft.RoleImport},
		draft.Line{Text: "import sys", Role: draft.RoleImport},
		draft.Line{Role: draft.RoleImport},
		draft.Line{Text: "if looks_like_number(sys.argv[1]):"},
		draft.Line{Text: "m = re.search(r\"x\", os.getcwd())", Depth: 1},
	)
	out, repairs := Run(b)
	text := out.Render()

	assert.Equal(t, 1, strings.Count(text, "import sys\n"))
	assert.Contains(t, text, "import os\nimport re\nimport sys\n")
	assert.Equal(t, 1, strings.Count(text, "def looks_like_number(value):"))
	assert.Less(t, strings.Index(text, "import sys"), strings.Index(text, "def looks_like_number"))
	assert.Less(t, strings.Index(text, "def looks_like_number"), strings.Index(text, "if looks_like_number"))

	var patterns []string
	for _, r := range Unique(repairs) {
		patterns = append(patterns, r.Pattern)
	}
	assert.Contains(t, patterns, "missing-import")
	assert.Contains(t, patterns, "missing-shim")
}

func TestShadowedModuleNotImported(t *testing.T) {
	out, _ := Run(buf("time = now()", "print(time.hour)"))
	assert.NotContains(t, out.Render(), "import time")
}

func TestRunDoesNotMutateInput(t *testing.T) {
	in := buf("if (x):", "y = 1")
	before := in.Render()
	_, _ = Run(in)
	require.Equal(t, before, in.Render())
}

func TestIdempotent(t *testing.T) {
	inputs := []*draft.Buffer{
		buf("if (a):", "else if not (b is None):", "print(f\"${a}\")", ">>q = perl_cmp(a, b)"),
		buf("count = 1", "print(\"{count}\")", "for x in y:", "while not not z:", ">>>sys.exit(perl_builtin(\"wantarray\"))"),
		buf("def f(name):", ">return f\"{{literal}}\"", "x = perl_ref(f)", "  if x:"),
	}
	for i, in := range inputs {
		once, _ := Run(in)
		twice, repairs := Run(once)
		if diff := cmp.Diff(once.Render(), twice.Render()); diff != "" {
			t.Fatalf("input %d not idempotent (-once +twice):\n%s", i, diff)
		}
		if len(repairs) != 0 {
			t.Fatalf("input %d: second run repaired %v", i, repairs)
		}
	}
}
