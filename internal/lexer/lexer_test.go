package lexer

import (
	"testing"

	"perl2py/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeVariables(t *testing.T) {
	toks := Tokenize(`my ($a, @b, %c) = ($#d, $_, $1, ${name}, $$ref, @{$x});`)
	want := []token.Kind{
		token.Ident, token.LParen, token.Scalar, token.Comma, token.Array, token.Comma, token.Hash, token.RParen,
		token.Assign, token.LParen, token.ArrayLast, token.Comma, token.Scalar, token.Comma, token.Scalar,
		token.Comma, token.Scalar, token.Comma, token.Cast, token.Scalar, token.Comma, token.Cast,
		token.LBrace, token.Scalar, token.RBrace, token.RParen, token.Semicolon,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s (%q)", i, got[i], want[i], toks[i].Text)
		}
	}
	if toks[10].Text != "d" || toks[12].Text != "_" || toks[16].Text != "name" {
		t.Fatalf("unexpected names: %q %q %q", toks[10].Text, toks[12].Text, toks[16].Text)
	}
}

func TestRegexVersusDivide(t *testing.T) {
	toks := Tokenize(`$x = $a / 2; @p = split /,\s*/, $s; $t =~ s{a}{b}gi; $n =~ tr/a-z/A-Z/;`)
	var quoted []token.Token
	slashes := 0
	for _, tk := range toks {
		if tk.IsQuoteLike() {
			quoted = append(quoted, tk)
		}
		if tk.Kind == token.Slash {
			slashes++
		}
	}
	if slashes != 1 {
		t.Fatalf("expected one division, got %d", slashes)
	}
	if len(quoted) != 3 {
		t.Fatalf("expected 3 regex tokens, got %d", len(quoted))
	}
	if quoted[0].Kind != token.Match || quoted[0].Pattern != `,\s*` {
		t.Fatalf("split pattern: %+v", quoted[0])
	}
	if quoted[1].Kind != token.Subst || quoted[1].Pattern != "a" || quoted[1].Replacement != "b" || quoted[1].Flags != "gi" {
		t.Fatalf("subst: %+v", quoted[1])
	}
	if quoted[2].Kind != token.Trans || quoted[2].Pattern != "a-z" || quoted[2].Replacement != "A-Z" {
		t.Fatalf("trans: %+v", quoted[2])
	}
}

func TestHashKeysAndMethodsAreBarewords(t *testing.T) {
	toks := Tokenize(`$h{s} = $obj->y(1); %opts = (q => 1);`)
	for _, tk := range toks {
		if tk.IsQuoteLike() || tk.Kind == token.String {
			t.Fatalf("unexpected quote-like token %s %q", tk.Kind, tk.Text)
		}
	}
}

func TestQuoteLikeStrings(t *testing.T) {
	toks := Tokenize(`print qq{a {nested} b}, q(x), qw/one two/, "say \"hi\"";`)
	var got []string
	for _, tk := range toks {
		switch tk.Kind {
		case token.Interp, token.String, token.Words:
			got = append(got, tk.Text)
		}
	}
	want := []string{"a {nested} b", "x", "one two", `say \"hi\"`}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestTermAfterFunctionName(t *testing.T) {
	toks := Tokenize(`for my $k (keys %h) { }`)
	found := false
	for _, tk := range toks {
		if tk.Kind == token.Hash && tk.Text == "h" {
			found = true
		}
	}
	if !found {
		t.Fatalf("keys %%h did not lex a hash: %v", kinds(toks))
	}
}

func TestReadlineAndFileTests(t *testing.T) {
	toks := Tokenize(`while (my $l = <$fh>) { print if -e $f; }`)
	var sawReadline, sawTest bool
	for _, tk := range toks {
		if tk.Kind == token.Readline && tk.Text == "$fh" {
			sawReadline = true
		}
		if tk.Kind == token.FileTest && tk.Text == "e" {
			sawTest = true
		}
	}
	if !sawReadline || !sawTest {
		t.Fatalf("readline=%v filetest=%v: %v", sawReadline, sawTest, kinds(toks))
	}
}

func TestProgramTrivia(t *testing.T) {
	src := "print <<\"EOT\";\nHello $name\nEOT\n=pod\n\ndocs\n\n=cut\n# note\nexit;\n__END__\ntrailing\n"
	lx := New([]byte(src), Options{Program: true})

	var toks []token.Token
	for {
		tk := lx.Next()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	hd := lx.Heredocs()
	if len(hd) != 1 || hd[0].Tag != "EOT" || hd[0].Body != "Hello $name\n" || !hd[0].Terminated {
		t.Fatalf("heredocs: %+v", hd)
	}

	var exitTok token.Token
	for _, tk := range toks {
		if tk.Is("exit") {
			exitTok = tk
		}
	}
	var kindsSeen []token.TriviaKind
	for _, tr := range exitTok.Leading {
		kindsSeen = append(kindsSeen, tr.Kind)
	}
	want := []token.TriviaKind{token.TriviaNewline, token.TriviaHeredoc, token.TriviaPOD, token.TriviaComment, token.TriviaNewline}
	if len(kindsSeen) != len(want) {
		t.Fatalf("leading trivia of exit: %v", kindsSeen)
	}
	for i := range want {
		if kindsSeen[i] != want[i] {
			t.Fatalf("trivia %d: got %d want %d", i, kindsSeen[i], want[i])
		}
	}

	eof := toks[len(toks)-1]
	last := eof.Leading[len(eof.Leading)-1]
	if last.Kind != token.TriviaEnd || last.Text != "__END__\ntrailing\n" {
		t.Fatalf("end trivia: %+v", last)
	}
}

func TestIndentedHeredoc(t *testing.T) {
	src := "my $t = <<~EOT;\n    a\n      b\n    EOT\n"
	lx := New([]byte(src), Options{Program: true})
	for lx.Next().Kind != token.EOF {
	}
	hd := lx.Heredocs()
	if len(hd) != 1 || hd[0].Body != "a\n  b\n" {
		t.Fatalf("indented heredoc: %+v", hd)
	}
}
