package matcher

import (
	"errors"
	"strings"
	"testing"

	"perl2py/internal/construct"
	"perl2py/internal/source"
)

func matchText(t *testing.T, src string) (*source.File, *Result) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("unit.pl", []byte(src))
	f := fs.Get(id)
	res := Match(f)
	if err := Verify(res.Matches, len(f.Content)); err != nil {
		t.Fatalf("coverage: %v", err)
	}
	return f, res
}

func rulesOf(ms []construct.Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Rule
	}
	return out
}

func TestMatchTilesStatements(t *testing.T) {
	src := "my $x = 1; # one\n\nif ($x) {\n    print $x;\n}\n"
	f, res := matchText(t, src)

	want := []string{"variable", "blank", "control-header", "function-call", "block-close"}
	if got := rulesOf(res.Matches); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rules = %v, want %v", got, want)
	}
	first := res.Matches[0]
	if first.Text != "my $x = 1" || first.Trailing != "# one" {
		t.Fatalf("first match text=%q trailing=%q", first.Text, first.Trailing)
	}
	if f.Slice(first.Span) != "my $x = 1; # one\n" {
		t.Fatalf("first span covers %q", f.Slice(first.Span))
	}
	hdr := res.Matches[2]
	if !hdr.Opens || hdr.Pair != 4 || res.Matches[4].Pair != 2 {
		t.Fatalf("pairing: opener pair=%d closer pair=%d", hdr.Pair, res.Matches[4].Pair)
	}
	if hdr.Group("keyword") != "if" || hdr.Line != 3 {
		t.Fatalf("header groups=%v line=%d", hdr.Groups, hdr.Line)
	}
	if len(res.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", res.Problems)
	}
}

func TestMatchPODAndEndMarker(t *testing.T) {
	src := "=pod\n\nHello\n\n=cut\nprint 1;\n__END__\ndata here\n"
	_, res := matchText(t, src)
	want := []string{"doc-block", "function-call", "end-marker"}
	if got := rulesOf(res.Matches); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rules = %v, want %v", got, want)
	}
	if !strings.Contains(res.Matches[0].Text, "Hello") {
		t.Fatalf("pod text %q", res.Matches[0].Text)
	}
	if res.Matches[0].Kind != construct.DocBlock {
		t.Fatalf("pod kind %v", res.Matches[0].Kind)
	}
}

func TestMatchHeredocAttachesToStatement(t *testing.T) {
	src := "print <<EOT;\nhello $name\nEOT\nprint 2;\n"
	f, res := matchText(t, src)
	if len(res.Matches) != 2 {
		t.Fatalf("want 2 matches, got %v", rulesOf(res.Matches))
	}
	m := res.Matches[0]
	if m.Text != "print __HEREDOC_0__" {
		t.Fatalf("text = %q", m.Text)
	}
	if len(m.Heredocs) != 1 || m.Heredocs[0].Tag != "EOT" || !m.Heredocs[0].Interpolate {
		t.Fatalf("heredocs = %+v", m.Heredocs)
	}
	if !strings.Contains(m.Heredocs[0].Body, "hello $name") {
		t.Fatalf("body = %q", m.Heredocs[0].Body)
	}
	if !strings.HasSuffix(f.Slice(m.Span), "EOT\n") {
		t.Fatalf("heredoc body must belong to the statement span: %q", f.Slice(m.Span))
	}
}

func TestMatchElsifChain(t *testing.T) {
	src := "if ($a) {\n  x();\n} elsif ($b) {\n  y();\n} else {\n  z();\n}\n"
	_, res := matchText(t, src)
	var closers []construct.Match
	for _, m := range res.Matches {
		if m.Closes {
			closers = append(closers, m)
		}
	}
	if len(closers) != 3 {
		t.Fatalf("want 3 closers, got %d", len(closers))
	}
	if closers[0].Group("continuation") != "elsif" || closers[0].Group("test") != "($b)" || !closers[0].Opens {
		t.Fatalf("elsif closer: %+v", closers[0])
	}
	if closers[1].Group("continuation") != "else" || !closers[1].Opens {
		t.Fatalf("else closer: %+v", closers[1])
	}
	if closers[2].Opens {
		t.Fatalf("final closer must not reopen")
	}
	if len(res.Problems) != 0 {
		t.Fatalf("problems: %v", res.Problems)
	}
}

func TestMatchDoWhileRecordsPostTest(t *testing.T) {
	src := "do {\n  $i++;\n} while ($i < 3);\n"
	_, res := matchText(t, src)
	open := res.Matches[0]
	if open.Rule != "do-block" {
		t.Fatalf("opener rule %q", open.Rule)
	}
	if open.PostTest != "while ($i < 3)" {
		t.Fatalf("post test %q", open.PostTest)
	}
}

func TestMatchSubPrologue(t *testing.T) {
	src := "sub add {\n    my ($a, $b) = @_;\n    my $c = shift // 0;\n    return $a + $b;\n}\n"
	_, res := matchText(t, src)
	sub := res.Matches[0]
	if sub.Rule != "sub-def" || sub.Group("name") != "add" {
		t.Fatalf("sub match %+v", sub)
	}
	if len(sub.Prologue) != 2 || sub.Prologue[0] != "my ($a, $b) = @_" {
		t.Fatalf("prologue %q", sub.Prologue)
	}
	if sub.UsesArgs {
		t.Fatalf("body past the prologue does not touch @_")
	}
	if _, ok := res.Subs["add"]; !ok {
		t.Fatalf("sub name not collected: %v", res.Subs)
	}
	if res.Matches[1].Rule != "loop-control" {
		t.Fatalf("after prologue: %v", rulesOf(res.Matches))
	}
}

func TestAmpersandCallPassesArgs(t *testing.T) {
	cases := map[string]bool{
		"&helper;":            true,
		"&helper();":          false,
		"my $cb = \\&helper;": false,
		"helper(1);":          false,
	}
	for text, want := range cases {
		if got := usesArgs(text); got != want {
			t.Fatalf("usesArgs(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestMatchModifierAndFallback(t *testing.T) {
	src := "next unless defined $value;\nBEGIN {\n  x();\n}\n"
	_, res := matchText(t, src)
	if m := res.Matches[0]; m.Rule != "statement-modifier" || m.Group("modifier") != "unless" || m.Group("index") != "1" {
		t.Fatalf("modifier match %+v", m)
	}
	if m := res.Matches[1]; m.Kind != construct.Unrecognized || !m.Opens {
		t.Fatalf("BEGIN block must be an unrecognized opener: %+v", m)
	}
}

func TestMatchUnbalancedCloser(t *testing.T) {
	_, res := matchText(t, "print 1;\n}\n")
	if len(res.Problems) != 1 {
		t.Fatalf("want one problem, got %v", res.Problems)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		rule string
		kind construct.Kind
	}{
		{"$h{key} = 1", "collection", construct.Collection},
		{"$text =~ s/Hello/Hi/", "regex-op", construct.RegexOp},
		{"open(my $fh, '<', $f) or die \"x\"", "file-op", construct.FileOp},
		{"print $fh \"line\"", "file-op", construct.FileOp},
		{"die \"bad\"", "error-handling", construct.ErrorHandling},
		{"my @list = (1, 2)", "variable", construct.Variable},
		{"$i++", "variable", construct.Variable},
		{"frobnicate $x", "function-call", construct.FunctionCall},
		{"use POSIX qw(floor)", "use-require", construct.Module},
		{"push @a, 1", "collection", construct.Collection},
		{"last", "loop-control", construct.ControlFlow},
		{"1", "literal", construct.Literal},
	}
	for _, tt := range tests {
		kind, rule, _ := Classify(tt.text)
		if rule != tt.rule || kind != tt.kind {
			t.Errorf("Classify(%q) = %v/%s, want %v/%s", tt.text, kind, rule, tt.kind, tt.rule)
		}
	}
}

func TestVerifyDetectsGaps(t *testing.T) {
	ms := []construct.Match{
		{Span: source.Span{Start: 0, End: 4}},
		{Span: source.Span{Start: 5, End: 8}},
	}
	if err := Verify(ms, 8); !errors.Is(err, ErrCoverage) {
		t.Fatalf("gap not reported: %v", err)
	}
	if err := Verify(ms[:1], 8); !errors.Is(err, ErrCoverage) {
		t.Fatalf("short coverage not reported: %v", err)
	}
	if err := Verify(nil, 0); err != nil {
		t.Fatalf("empty unit: %v", err)
	}
}

func TestPrecedenceOrder(t *testing.T) {
	p := Precedence()
	if p[0].Name != "doc-block" || p[len(p)-1].Name != "literal" {
		t.Fatalf("precedence ends: %v", p)
	}
	idx := map[string]int{}
	for i, r := range p {
		idx[r.Name] = i
	}
	if idx["collection"] > idx["variable"] {
		t.Fatalf("element access must outrank bare variables")
	}
	if idx["comment"] > idx["control-header"] {
		t.Fatalf("comments must be tried before control flow")
	}
}
