package token

// Token is one lexeme of Perl source. Pos/End are byte offsets into the
// lexed input.
type Token struct {
	Kind Kind
	Text string
	Pos  uint32
	End  uint32
	// Spaced is set when whitespace or a comment precedes the token.
	Spaced  bool
	Leading []Trivia

	// quote-like operators
	Pattern     string
	Replacement string
	Flags       string
	Delim       byte

	// Index is the heredoc index for Heredoc tokens.
	Index int
}

// Is reports whether the token is the bareword w.
func (t Token) Is(w string) bool {
	return t.Kind == Ident && t.Text == w
}

// IsVariable reports whether the token is a sigiled variable.
func (t Token) IsVariable() bool {
	switch t.Kind {
	case Scalar, Array, Hash, ArrayLast:
		return true
	default:
		return false
	}
}

// IsLiteral reports whether the token is a number or string-like literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Number, String, Interp, Words, Heredoc:
		return true
	default:
		return false
	}
}

// IsQuoteLike reports whether the token is a regex-family operator.
func (t Token) IsQuoteLike() bool {
	switch t.Kind {
	case Match, Subst, Trans, QuoteRegex:
		return true
	default:
		return false
	}
}

// EndsOperand reports whether, after this token, a following '/' or '<'
// is an infix operator rather than the start of a regex or readline.
func (t Token) EndsOperand() bool {
	switch t.Kind {
	case Scalar, Array, Hash, ArrayLast, Number, String, Interp, Words, Command,
		Match, Subst, Trans, QuoteRegex, Readline, Heredoc,
		RParen, RBracket, RBrace, Incr, Decr:
		return true
	case Ident:
		return !TakesTerm(t.Text)
	default:
		return false
	}
}
