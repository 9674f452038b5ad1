package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perl2py/internal/diag"
	"perl2py/internal/draft"
	"perl2py/internal/engine"
	"perl2py/internal/rules"
	"perl2py/internal/source"
)

func TestParseValid(t *testing.T) {
	probs, err := Parse(context.Background(), []byte("import re\n\nif x:\n    y = re.sub(r\"a\", \"b\", y)\n"))
	require.NoError(t, err)
	assert.Empty(t, probs)
}

func TestParseReportsError(t *testing.T) {
	probs, err := Parse(context.Background(), []byte("x = 1\ny = $z ->\n"))
	require.NoError(t, err)
	require.NotEmpty(t, probs)
	assert.Equal(t, uint32(1), probs[0].Row)
}

func TestCheckMapsToSourceLine(t *testing.T) {
	fs := source.NewFileSet()
	unit := fs.Get(fs.AddVirtual("unit.pl", []byte("my $x = 1;\nmy $y = $x;\nmy $z = 3;\n")))
	buf := draft.New(4)
	buf.Append(
		draft.Line{Text: "x = 1", Src: 1},
		draft.Line{Text: "y = (x", Src: 2},
		draft.Line{Text: "z = 3 ]", Src: 3},
	)
	res := &engine.Result{Output: buf.Render(), Draft: buf, Diagnostics: diag.NewBag(0)}

	n, err := Check(context.Background(), res, unit)
	require.NoError(t, err)
	require.Positive(t, n)
	items := res.Diagnostics.Items()
	require.Len(t, items, n)
	for _, d := range items {
		assert.Contains(t, []diag.Code{diag.VerSyntax, diag.VerMissing}, d.Code)
		assert.GreaterOrEqual(t, d.Line, uint32(2))
		assert.Equal(t, diag.SevError, d.Severity)
	}
}

func TestConvertedOutputParses(t *testing.T) {
	fs := source.NewFileSet()
	unit := fs.Get(fs.AddVirtual("unit.pl", []byte(`#!/usr/bin/perl
use strict;
my $total = 0;
foreach my $n (1..10) {
    next unless $n % 2;
    $total += $n;
}
if ($total > 10) {
    print "big: $total\n";
} else {
    print "small\n";
}
`)))
	res, err := engine.Translate(context.Background(), unit, rules.Defaults())
	require.NoError(t, err)
	n, err := Check(context.Background(), res, unit)
	require.NoError(t, err)
	assert.Zero(t, n, res.Output)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b", snippet("  a b\nc"))
	long := "0123456789012345678901234567890123456789xyz"
	assert.Equal(t, long[:40]+"...", snippet(long))
}
