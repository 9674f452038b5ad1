package dialect

import (
	"strings"

	"perl2py/internal/lexer"
	"perl2py/internal/source"
	"perl2py/internal/token"
)

// maxSigilHints caps evidence from plain sigiled variables, so a long unit
// does not drown every other signal.
const maxSigilHints = 32

// ObserveTokenPair records token-pattern evidence using a sliding 2-token
// window. The caller feeds tokens in source order.
func ObserveTokenPair(e *Evidence, prev, tok token.Token, span source.Span) {
	if e == nil {
		return
	}
	switch tok.Kind {
	case token.Bind, token.NotBind:
		e.Add(Hint{Dialect: Perl, Score: 4, Reason: "perl binding operator `=~`", Span: span})
	case token.Subst, token.Trans:
		e.Add(Hint{Dialect: Perl, Score: 4, Reason: "perl substitution operator", Span: span})
	case token.Arrow:
		if prev.Kind == token.Scalar {
			e.Add(Hint{Dialect: Perl, Score: 2, Reason: "perl dereference `$x->`", Span: span})
		}
	case token.Ident:
		if strings.Contains(tok.Text, "::") {
			e.Add(Hint{Dialect: Perl, Score: 2, Reason: "package-qualified name", Span: span})
		}
	case token.Colon:
		// `def f():` / `if x:` at a line end
		if prev.Kind == token.RParen || prev.Kind == token.Ident {
			e.Add(Hint{Dialect: Python, Score: 1, Reason: "python block colon", Span: span})
		}
	}
	if prev.Kind == token.Ident && prev.Text == "my" && tok.IsVariable() {
		e.Add(Hint{Dialect: Perl, Score: 3, Reason: "perl `my $var` declaration", Span: span})
	}
}

// Scan lexes the unit and collects its evidence.
func Scan(f *source.File) *Evidence {
	e := NewEvidence()
	if f == nil {
		return e
	}
	toks := lexer.Tokenize(string(f.Content))
	sigils := 0
	var prev token.Token
	for _, tok := range toks {
		span := source.Span{File: f.ID, Start: tok.Pos, End: tok.End}
		switch {
		case tok.Kind == token.Ident:
			RecordIdent(e, tok.Text, span)
		case tok.IsVariable() && sigils < maxSigilHints:
			sigils++
			e.Add(Hint{Dialect: Perl, Score: 1, Reason: "sigiled variable", Span: span})
		}
		ObserveTokenPair(e, prev, tok, span)
		prev = tok
	}
	return e
}
