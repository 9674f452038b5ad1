package engine

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perl2py/internal/draft"
	"perl2py/internal/normalize"
	"perl2py/internal/rules"
	"perl2py/internal/source"
)

var corpus = map[string]string{
	"greet.pl": `#!/usr/bin/perl
use strict;
use warnings;

# greet everyone
sub greet {
    my ($name) = @_;
    print "Hello, $name\n";
}

foreach my $who (@ARGV) {
    next unless defined $who;
    greet($who);
}
`,
	"count.pl": `my %seen;
my $total = 0;
foreach my $w (@words) {
    $seen{$w}++;
    $total++;
}
if ($total > 10) {
    print "many\n";
} elsif ($total) {
    print "some\n";
} else {
    print "none\n";
}
`,
	"subst.pl": `my $text = "Hello world";
$text =~ s/Hello/Hi/;
$text =~ s/o/0/g;
print "$text\n";
`,
	"eval.pl": `eval {
    risky();
};
if ($@) {
    die "failed: $@";
}
sub risky {
    return 1;
}
`,
	"partial.pl": `print "Sum: @{[ $a + $b ]}\n";
$i++;
`,
}

func corpusUnits() []*source.File {
	fs := source.NewFileSet()
	var units []*source.File
	for _, name := range slices.Sorted(maps.Keys(corpus)) {
		units = append(units, fs.Get(fs.AddVirtual(name, []byte(corpus[name]))))
	}
	return units
}

func TestNormalizationIdempotent(t *testing.T) {
	for _, u := range corpusUnits() {
		res, err := Translate(context.Background(), u, rules.Defaults())
		require.NoError(t, err, u.Path)
		again, repairs := normalize.Run(res.Draft)
		assert.Empty(t, repairs, "%s: second normalization repaired", u.Path)
		assert.Equal(t, res.Output, again.Render(), u.Path)
	}
}

func TestOrderPreserved(t *testing.T) {
	for _, u := range corpusUnits() {
		res, err := Translate(context.Background(), u, rules.Defaults())
		require.NoError(t, err, u.Path)
		var last uint32
		for _, l := range res.Draft.Lines {
			if l.Role != draft.RoleCode || l.Src == 0 {
				continue
			}
			if l.Src < last {
				t.Fatalf("%s: line from source %d after source %d: %q", u.Path, l.Src, last, l.Text)
			}
			last = l.Src
		}
	}
}

var moduleUse = regexp.MustCompile(`\b(re|os|sys|glob|shutil|time|json|math|pprint|argparse)\.[a-zA-Z_]`)

func TestImportsSound(t *testing.T) {
	for _, u := range corpusUnits() {
		res, err := Translate(context.Background(), u, rules.Defaults())
		require.NoError(t, err, u.Path)
		for _, l := range res.Draft.Lines {
			if l.Role != draft.RoleCode || strings.HasPrefix(strings.TrimSpace(l.Text), "#") {
				continue
			}
			for _, m := range moduleUse.FindAllStringSubmatch(l.Text, -1) {
				imp := "import " + m[1]
				assert.True(t, res.Draft.HasImport(imp), "%s: %q used without %q", u.Path, l.Text, imp)
			}
		}
		for _, imp := range res.Imports {
			assert.Equal(t, 1, strings.Count(res.Output, imp+"\n"), "%s: %s", u.Path, imp)
		}
	}
}

func TestEveryConstructAccounted(t *testing.T) {
	for _, u := range corpusUnits() {
		res, err := Translate(context.Background(), u, rules.Defaults())
		require.NoError(t, err, u.Path)
		total := 0
		for _, n := range res.Stats.ByKind {
			total += n
		}
		assert.Positive(t, total, u.Path)
		assert.LessOrEqual(t, res.Stats.Total(), total, u.Path)
	}
}

func TestConcurrentEqualsSequential(t *testing.T) {
	units := corpusUnits()
	table := rules.Defaults()

	want := make(map[string]string, len(units))
	for _, u := range units {
		res, err := Translate(context.Background(), u, table)
		require.NoError(t, err)
		want[u.Path] = render(res)
	}
	for _, jobs := range []int{1, 3, 0} {
		outs, err := TranslateAll(context.Background(), units, table, jobs)
		require.NoError(t, err)
		require.Len(t, outs, len(units))
		got := make(map[string]string, len(outs))
		for i, o := range outs {
			require.NoError(t, o.Err)
			assert.Same(t, units[i], o.Unit)
			got[o.Unit.Path] = render(o.Result)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("jobs=%d differs from sequential (-want +got):\n%s", jobs, diff)
		}
	}
}

func TestTranslateAllEmpty(t *testing.T) {
	outs, err := TranslateAll(context.Background(), nil, rules.Defaults(), 4)
	require.NoError(t, err)
	assert.Empty(t, outs)
}

// render flattens a result for comparison.
func render(res *Result) string {
	var b strings.Builder
	b.WriteString(res.Output)
	for _, d := range res.Diagnostics.Items() {
		fmt.Fprintf(&b, "%s %s %d %s\n", d.Severity, d.Code.ID(), d.Line, d.Message)
	}
	return b.String()
}
