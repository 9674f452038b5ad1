package translate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/matcher"
	"perl2py/internal/rules"
	"perl2py/internal/source"
)

// firstCode translates the first non-trivia construct of src.
func firstCode(t *testing.T, src string) Result {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("unit.pl", []byte(src)))
	res := matcher.Match(f)
	env := NewEnv(rules.Defaults(), res.Subs)
	for i := range res.Matches {
		m := &res.Matches[i]
		if m.Kind == construct.Comment {
			continue
		}
		return Translate(m, env)
	}
	t.Fatalf("no code in %q", src)
	return Result{}
}

// indented renders lines with four spaces per relative indent.
func indented(r Result) string {
	var b strings.Builder
	for _, l := range r.Lines {
		b.WriteString(strings.Repeat("    ", l.Indent))
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestStatements(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"increment", "$i++;", "i += 1\n"},
		{"decrement", "--$n;", "n -= 1\n"},
		{"hash counter", "$seen{$w}++;", "seen[w] = seen.get(w, 0) + 1\n"},
		{"subst once", "$text =~ s/Hello/Hi/;", "text = re.sub(r\"Hello\", \"Hi\", text, count=1)\n"},
		{"subst global", "$text =~ s/Hello/Hi/g;", "text = re.sub(r\"Hello\", \"Hi\", text)\n"},
		{"print interpolated", "print \"Hello, $name\\n\";", "print(f\"Hello, {name}\")\n"},
		{"print no newline", "print $x;", "print(x, end=\"\")\n"},
		{"die", "die \"bad input\\n\";", "raise Exception(\"bad input\")\n"},
		{"next unless", "next unless defined $value;", "if value is None:\n    continue\n"},
		{"last if", "last if $done;", "if done:\n    break\n"},
		{"return", "return;", "return\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := firstCode(t, tc.src)
			if got := indented(r); got != tc.want {
				t.Fatalf("%s:\ngot:\n%swant:\n%s", tc.src, got, tc.want)
			}
			if sev := r.Severity(); sev != diag.SevConverted {
				t.Fatalf("%s: severity %v, notes %v", tc.src, sev, r.Notes)
			}
		})
	}
}

func TestSubstitutionNeedsRe(t *testing.T) {
	r := firstCode(t, "$text =~ s/a/b/;")
	assert.Equal(t, []string{"import re"}, r.ImportList())
}

func TestIfHeaderOpensBlock(t *testing.T) {
	r := firstCode(t, "if ($verbose) {\n    print 1;\n}\n")
	assert.Equal(t, []string{"if verbose:"}, r.Code())
	assert.Equal(t, BlockOpen, r.Effect.Op)
	assert.False(t, r.Effect.Transparent)
}

func TestUnlessHeaderNegates(t *testing.T) {
	r := firstCode(t, "unless ($ok) {\n}\n")
	assert.Equal(t, []string{"if not ok:"}, r.Code())
}

func TestForeachRange(t *testing.T) {
	r := firstCode(t, "foreach my $i (1..10) {\n}\n")
	assert.Equal(t, []string{"for i in range(1, 11):"}, r.Code())
	assert.Equal(t, BlockOpen, r.Effect.Op)
}

func TestSubWithPrologue(t *testing.T) {
	r := firstCode(t, "sub greet {\n    my ($name, $greeting) = @_;\n    print $greeting;\n}\n")
	require.NotEmpty(t, r.Lines)
	assert.Equal(t, "def greet(name, greeting):", r.Lines[0].Text)
	assert.Equal(t, BlockOpen, r.Effect.Op)
}

func TestEvalBlockQueuesExcept(t *testing.T) {
	r := firstCode(t, "eval {\n    risky();\n};\n")
	assert.Equal(t, []string{"eval_error = None", "try:"}, r.Code())
	require.Len(t, r.Effect.After, 2)
	assert.Equal(t, "except Exception as exc:", r.Effect.After[0].Text)
}

func TestModules(t *testing.T) {
	r := firstCode(t, "use strict;\n")
	assert.Empty(t, r.Lines)
	assert.Empty(t, r.Notes)

	r = firstCode(t, "use Data::Dumper;\n")
	assert.Empty(t, r.Lines)
	assert.Equal(t, []string{"import pprint"}, r.ImportList())

	r = firstCode(t, "use Some::Unknown::Thing;\n")
	require.NotEmpty(t, r.Lines)
	assert.True(t, strings.HasPrefix(r.Lines[0].Text, "# perl2py: unknown module: "))
	assert.Equal(t, diag.SevUnrecognized, r.Severity())
}

func TestNestedInterpolationFallsBack(t *testing.T) {
	r := firstCode(t, "print \"Total: @{[ $x + 1 ]}\\n\";")
	require.NotEmpty(t, r.Lines)
	assert.True(t, strings.HasPrefix(r.Lines[0].Text, "# perl2py: partial: print"), r.Lines[0].Text)
	require.Len(t, r.Notes, 1)
	assert.Equal(t, diag.PrtNestedInterpolation, r.Notes[0].Code)
	assert.Equal(t, diag.SevPartial, r.Severity())
}

func TestUnknownRegexFlagFallsBack(t *testing.T) {
	r := firstCode(t, "$s =~ s/a/b/ee;")
	require.Len(t, r.Notes, 1)
	assert.Equal(t, diag.PrtRegexFlags, r.Notes[0].Code)
	for _, l := range r.Lines {
		assert.True(t, strings.HasPrefix(l.Text, "#"), "fallback line %q is not a comment", l.Text)
	}
}

func TestStrictFallbackMarksUnrecognized(t *testing.T) {
	strict := true
	tbl, err := rules.Merge(rules.Defaults(), &rules.Overrides{
		Options: rules.OptionOverrides{StrictFallback: &strict},
	})
	require.NoError(t, err)
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("unit.pl", []byte("print \"@{[ 1 ]}\";")))
	res := matcher.Match(f)
	r := Translate(&res.Matches[0], NewEnv(tbl, res.Subs))
	assert.Equal(t, diag.SevUnrecognized, r.Severity())
}

func TestUnrecognizedOpenerIsVerbatim(t *testing.T) {
	m := &construct.Match{Kind: construct.Unrecognized, Text: "format STDOUT", Opens: true, Pair: -1}
	r := Translate(m, NewEnv(rules.Defaults(), nil))
	assert.Equal(t, []string{"# perl2py: unrecognized: format STDOUT"}, r.Code())
	assert.Equal(t, BlockOpen, r.Effect.Op)
	assert.True(t, r.Effect.Verbatim)
	assert.Equal(t, diag.UnrBlock, r.Notes[0].Code)
}

func TestPassthrough(t *testing.T) {
	code := Passthrough(&construct.Match{Kind: construct.Variable, Text: "my $x = 1", Trailing: "# keep"})
	assert.Equal(t, []Line{{Text: "# perl2py: verbatim: my $x = 1  # keep"}}, code)

	code = Passthrough(&construct.Match{Kind: construct.Comment, Text: "# note"})
	assert.Equal(t, []Line{{Text: "# note"}}, code)
}

func TestTrailingCommentInlined(t *testing.T) {
	r := firstCode(t, "$i++; # bump\n")
	assert.Equal(t, []string{"i += 1  # bump"}, r.Code())
}

func TestDocBlockDocstring(t *testing.T) {
	r := firstCode(t, "=head1 NAME\n\nTool - does things\n\n=cut\n")
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "\"\"\"\nNAME\n\nTool - does things\n\"\"\"", r.Lines[0].Text)
}

func TestLiteralOneDropped(t *testing.T) {
	r := firstCode(t, "1;\n")
	assert.Empty(t, r.Lines)
}

func TestForKindTable(t *testing.T) {
	for k := construct.Kind(0); k < construct.KindCount; k++ {
		if For(k) == nil {
			t.Fatalf("no translator for %v", k)
		}
	}
}

func TestAmpersandCall(t *testing.T) {
	r := firstCode(t, "&refresh;")
	assert.Equal(t, []string{"refresh()"}, r.Code())
	assert.Empty(t, r.Notes)

	env := NewEnv(rules.Defaults(), nil)
	env.InSub = true
	r = Translate(&construct.Match{Kind: construct.FunctionCall, Text: "&refresh", Pair: -1}, env)
	assert.Equal(t, []string{"refresh(*args)"}, r.Code())

	r = firstCode(t, "my $cb = \\&refresh;")
	assert.Equal(t, []string{"cb = refresh"}, r.Code())
}
