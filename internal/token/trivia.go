package token

// TriviaKind classifies non-code text around tokens.
type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaComment
	// TriviaPOD is a =word ... =cut documentation block.
	TriviaPOD
	// TriviaEnd is an __END__ / __DATA__ marker and everything after it.
	TriviaEnd
	// TriviaHeredoc is a here-document body including its terminator line.
	TriviaHeredoc
)

// Trivia is a run of non-code text attached to the following token.
type Trivia struct {
	Kind  TriviaKind
	Start uint32
	End   uint32
	Text  string
}
