package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/draft"
	"perl2py/internal/rules"
	"perl2py/internal/source"
	"perl2py/internal/translate"
)

func unit(name, src string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual(name, []byte(src)))
}

func bare(t *testing.T) *rules.Table {
	t.Helper()
	off := false
	tbl, err := rules.Merge(rules.Defaults(), &rules.Overrides{
		Options: rules.OptionOverrides{EmitHeader: &off},
	})
	require.NoError(t, err)
	return tbl
}

// code returns the non-blank rendered lines.
func code(res *Result) []string {
	var out []string
	for _, l := range strings.Split(res.Output, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func convert(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Translate(context.Background(), unit("script.pl", src), bare(t))
	require.NoError(t, err)
	return res
}

func TestScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []string
	}{
		{
			"if block",
			"if ($verbose) {\n    print \"yes\\n\";\n}\n",
			[]string{"if verbose:", `    print("yes")`},
		},
		{
			"next unless in loop",
			"foreach my $i (1..3) {\n    next unless defined $i;\n    $total++;\n}\n",
			[]string{"for i in range(1, 4):", "    if i is None:", "        continue", "    total += 1"},
		},
		{
			"else branch",
			"if ($ok) {\n    $n++;\n} else {\n    --$n;\n}\n",
			[]string{"if ok:", "    n += 1", "else:", "    n -= 1"},
		},
		{
			"nested blocks",
			"if ($a) {\n    if ($b) {\n        $c++;\n    }\n    $d++;\n}\n$e++;\n",
			[]string{"if a:", "    if b:", "        c += 1", "    d += 1", "e += 1"},
		},
		{
			"sub with parameters",
			"sub bump {\n    my ($n) = @_;\n    return $n;\n}\n",
			[]string{"def bump(n):", "    return n"},
		},
		{
			"empty block gets pass",
			"if ($x) {\n}\n",
			[]string{"if x:", "    pass"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := convert(t, tc.src)
			if diff := cmp.Diff(tc.want, code(res)); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s\nfull output:\n%s", diff, res.Output)
			}
		})
	}
}

func TestSubstitutionImportsRe(t *testing.T) {
	res, err := Translate(context.Background(), unit("tool.pl", "$text =~ s/Hello/Hi/;\n$text =~ s/a/b/g;\n"), rules.Defaults())
	require.NoError(t, err)

	lines := strings.Split(res.Output, "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "#!/usr/bin/env python3", lines[0])
	assert.Equal(t, "# Generated by perl2py from tool.pl", lines[2])
	assert.Equal(t, []string{"import re"}, res.Imports)
	assert.Contains(t, res.Output, "import re\n\ntext = re.sub(r\"Hello\", \"Hi\", text, count=1)\n")
	assert.Contains(t, res.Output, "text = re.sub(r\"a\", \"b\", text)\n")
	assert.Equal(t, 1, strings.Count(res.Output, "import re\n"))
}

func TestEvalBlockGetsExcept(t *testing.T) {
	res := convert(t, "eval {\n    $n++;\n};\n")
	assert.Equal(t, []string{
		"eval_error = None",
		"try:",
		"    n += 1",
		"except Exception as exc:",
		"    eval_error = str(exc)",
	}, code(res))
}

func TestUnclosedBlockClosedAtEnd(t *testing.T) {
	res := convert(t, "eval {\n    $n++;\n")
	got := code(res)
	require.NotEmpty(t, got)
	assert.Equal(t, "    eval_error = str(exc)", got[len(got)-1])
	assert.GreaterOrEqual(t, res.Diagnostics.Count(diag.SevUnrecognized), 1)
}

func TestDiagnosticsCarryKindAndLine(t *testing.T) {
	res := convert(t, "$i++;\nprint \"@{[ $x ]}\";\n")
	var found bool
	for _, d := range res.Diagnostics.Items() {
		if d.Code == diag.PrtNestedInterpolation {
			found = true
			assert.Equal(t, uint32(2), d.Line)
			assert.NotEqual(t, construct.Comment, d.Kind)
			assert.Equal(t, diag.SevPartial, d.Severity)
		}
	}
	assert.True(t, found, "no nested-interpolation diagnostic in %v", res.Diagnostics.Items())
	assert.Equal(t, diag.SevPartial, res.Status())
	assert.Equal(t, 1, res.Stats.Constructs[diag.SevPartial])
	assert.Equal(t, 1, res.Stats.Constructs[diag.SevConverted])
}

func TestFallbackIsInert(t *testing.T) {
	res := convert(t, "print \"Total: @{[ $x + 1 ]}\\n\";\n$s =~ s/a/b/ee;\n")
	for _, l := range code(res) {
		if strings.ContainsAny(l, "$@") {
			assert.True(t, strings.HasPrefix(strings.TrimSpace(l), "#"), "live Perl residue: %q", l)
		}
	}
}

func TestForeignUnitWarned(t *testing.T) {
	src := "import os\n\ndef main():\n    if x is None:\n        return True\n    elif y:\n        return False\n"
	res := convert(t, src)
	var codes []diag.Code
	for _, d := range res.Diagnostics.Items() {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, diag.DiaNotPerl)
	assert.True(t, res.Dialect.LooksForeign())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Translate(ctx, unit("a.pl", "$i++;\n"), rules.Defaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrStructural))
}

func TestTimingPhases(t *testing.T) {
	res := convert(t, "$i++;\n")
	var names []string
	for _, p := range res.Timing.Phases {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"match", "translate", "normalize"}, names)
}

func TestVerbatimRegion(t *testing.T) {
	matches := []construct.Match{
		{Kind: construct.Unrecognized, Text: "format STDOUT", Opens: true, Pair: 2, Line: 1},
		{Kind: construct.Variable, Text: "$x = 1", Pair: -1, Line: 2},
		{Kind: construct.ControlFlow, Rule: "block-close", Text: "}", Closes: true, Pair: 0, Line: 3},
		{Kind: construct.Variable, Text: "$y = 2", Pair: -1, Line: 4},
	}
	asm := newAssembler(translate.NewEnv(rules.Defaults(), nil), newStats())
	for i := range matches {
		asm.add(matches, i)
	}
	asm.finish(4)
	want := []draft.Line{
		{Text: "# perl2py: unrecognized: format STDOUT", Src: 1},
		{Text: "# perl2py: verbatim: $x = 1", Src: 2},
		{Text: "# perl2py: verbatim: }", Src: 3},
		{Text: "y = 2", Src: 4},
	}
	if diff := cmp.Diff(want, asm.lines); diff != "" {
		t.Fatalf("verbatim region (-want +got):\n%s", diff)
	}
	require.Len(t, asm.diags, 1)
	assert.Equal(t, diag.UnrBlock, asm.diags[0].Code)
	assert.Empty(t, asm.stack)
}

func TestCloseSkipsWithFrames(t *testing.T) {
	asm := newAssembler(translate.NewEnv(rules.Defaults(), nil), newStats())
	asm.stack = []frame{{header: 0, body: 1, implicit: true, handle: "fh", pair: -1}}
	assert.Equal(t, 1, asm.depth())
	assert.Equal(t, 1, asm.closeExplicit(1, true), "closer without an explicit frame")
	assert.Len(t, asm.stack, 1)

	asm.stack = append([]frame{{header: 0, body: 1, pair: -1, after: []translate.Line{{Text: "done()"}}}},
		frame{header: 1, body: 2, implicit: true, handle: "fh", pair: -1})
	assert.Equal(t, 0, asm.closeExplicit(5, true))
	assert.Empty(t, asm.stack)
	assert.Equal(t, []draft.Line{{Text: "done()", Src: 5}}, asm.lines)
}

func TestInSubTracksFunctionFrames(t *testing.T) {
	asm := newAssembler(translate.NewEnv(rules.Defaults(), nil), newStats())
	assert.False(t, asm.inSub())
	asm.push(0, &construct.Match{Kind: construct.FunctionDef, Pair: -1}, translate.Effect{Op: translate.BlockOpen})
	asm.push(1, &construct.Match{Kind: construct.ControlFlow, Pair: -1}, translate.Effect{Op: translate.BlockOpen})
	assert.True(t, asm.inSub())
	assert.Equal(t, 2, asm.depth())
	asm.finish(9)
	assert.False(t, asm.inSub())
}

func TestLiteralBracesStayLiteral(t *testing.T) {
	res := convert(t, "my $name = 'x';\nprint '{name}';\nprint \"{name}\\n\";\n")
	assert.Equal(t, []string{
		`name = "x"`,
		`print("{name}", end="")`,
		`print("{name}")`,
	}, code(res))
}

func TestBuiltinNamesNotShadowed(t *testing.T) {
	res := convert(t, "my $str = 'a';\nmy %h;\n$h{k} .= 'y';\nmy $list = join(',', @items);\n")
	got := code(res)
	require.NotEmpty(t, got)
	assert.Equal(t, `str_ = "a"`, got[0])
	for _, l := range got {
		assert.False(t, strings.HasPrefix(l, "str ="), "builtin str rebound: %q", l)
		assert.False(t, strings.HasPrefix(l, "list ="), "builtin list rebound: %q", l)
	}
	assert.Contains(t, res.Output, `str(h.get("k", ""))`)
	assert.Contains(t, res.Output, "list_ = ")
}

func TestAmpersandCallKeepsCall(t *testing.T) {
	res := convert(t, "sub f { return 1 }\nmy $v = f();\n&f;\n")
	got := code(res)
	require.NotEmpty(t, got)
	assert.Equal(t, "f()", got[len(got)-1])

	res = convert(t, "sub g {\n    &f;\n}\nmy $cb = \\&g;\n")
	got = code(res)
	assert.Contains(t, got, "def g(*args):")
	assert.Contains(t, got, "    f(*args)")
	assert.Equal(t, "cb = g", got[len(got)-1])
}

func TestShimRepairReportedAsModule(t *testing.T) {
	res := convert(t, "if (looks_like_number($x)) {\n    $n++;\n}\n")
	var found bool
	for _, d := range res.Diagnostics.Items() {
		if d.Code != diag.NrmShim {
			continue
		}
		found = true
		assert.Equal(t, construct.Module, d.Kind)
		assert.Equal(t, uint32(0), d.Line)
		assert.Equal(t, diag.SevConverted, d.Severity)
	}
	assert.True(t, found, "no shim repair in %v", res.Diagnostics.Items())
}
