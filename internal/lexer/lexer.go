package lexer

import (
	"unicode/utf8"

	"perl2py/internal/token"
)

// Heredoc is a here-document introduced by a <<TAG operator.
type Heredoc struct {
	Tag         string
	Interpolate bool
	Indented    bool
	Body        string
	// Start/End delimit the body and terminator line in the input.
	Start, End uint32
	Terminated bool
}

type Lexer struct {
	src    []byte
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
	prev   token.Token    // последний значимый токен

	heredocs []Heredoc
	pending  []int
}

func New(src []byte, opts Options) *Lexer {
	return &Lexer{
		src:    src,
		cursor: NewCursor(src),
		opts:   opts,
	}
}

// Tokenize lexes a statement fragment into significant tokens, EOF excluded.
func Tokenize(text string) []token.Token {
	lx := New([]byte(text), Options{})
	out := make([]token.Token, 0, len(text)/3+1)
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return out
		}
		out = append(out, tok)
	}
}

// Heredocs returns the here-documents seen so far, in order of appearance.
func (lx *Lexer) Heredocs() []Heredoc {
	return lx.heredocs
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF; его Leading хранит хвостовые trivia.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{
			Kind:    token.EOF,
			Pos:     lx.cursor.Off,
			End:     lx.cursor.Off,
			Leading: lx.hold,
			Spaced:  len(lx.hold) > 0,
		}
		lx.hold = nil
		return tok
	}

	start := lx.cursor.Off
	ch := lx.cursor.Peek()
	operand := lx.prev.EndsOperand()
	if operand && (ch == '%' || ch == '&' || ch == '/' || ch == '<' || ch == '-') && lx.termAfterWord() {
		operand = false
	}
	var tok token.Token

	switch {
	case isIdentStartByte(ch) || ch >= utf8.RuneSelf:
		tok = lx.scanWord(operand)
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '.' && lx.isNumberAfterDot() && !operand:
		tok = lx.scanNumber()
	case ch == '$':
		tok = lx.scanScalar()
	case ch == '@':
		tok = lx.scanArray()
	case ch == '%' && !operand && lx.sigilFollows():
		tok = lx.scanHash()
	case ch == '&' && !operand && lx.sigilFollows():
		tok = lx.scanFuncRef()
	case ch == '"':
		lx.cursor.Bump()
		tok = lx.scanQuoted(token.Interp, '"')
	case ch == '\'':
		lx.cursor.Bump()
		tok = lx.scanQuoted(token.String, '\'')
	case ch == '`':
		lx.cursor.Bump()
		tok = lx.scanQuoted(token.Command, '`')
	case ch == '/' && !operand:
		lx.cursor.Bump()
		tok = lx.scanQuoted(token.Match, '/')
	case ch == '<' && (!operand || lx.heredocAfterOperand()):
		tok = lx.scanAngle()
	case ch == '-' && !operand && lx.isFileTest():
		lx.cursor.Bump()
		letter := lx.cursor.Bump()
		tok = token.Token{Kind: token.FileTest, Text: string(letter)}
	default:
		tok = lx.scanOperatorOrPunct(operand)
	}

	tok.Pos = start
	tok.End = lx.cursor.Off
	tok.Leading = lx.hold
	tok.Spaced = len(lx.hold) > 0
	lx.hold = nil
	lx.prev = tok
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}
