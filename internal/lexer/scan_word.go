package lexer

import (
	"perl2py/internal/token"
)

// scanWord reads a bareword. Quote-like operators (q qq qw qx m qr s tr y)
// continue into their delimited bodies when a delimiter follows.
func (lx *Lexer) scanWord(operand bool) token.Token {
	word := lx.readIdent()
	if word == "" {
		lx.bumpRune()
		lx.report("char", lx.cursor.Off, "unexpected character")
		return token.Token{Kind: token.Invalid}
	}

	if kind, ok := token.QuoteOps[word]; ok && lx.quoteContext() {
		if _, ok := lx.quoteDelimiter(); ok {
			lx.skipInlineSpace()
			open := lx.cursor.Bump()
			return lx.scanQuoted(kind, open)
		}
	}

	// "x=" repetition-assign after an operand
	if word == "x" && operand && lx.cursor.Peek() == '=' {
		next := lx.cursor.PeekAt(1)
		if next != '=' && next != '~' && next != '>' {
			lx.cursor.Bump()
			return token.Token{Kind: token.OpAssign, Text: "x"}
		}
	}
	return token.Token{Kind: token.Ident, Text: word}
}

// quoteContext rules out method names ($x->s) and hash keys ($h{s}).
func (lx *Lexer) quoteContext() bool {
	switch lx.prev.Kind {
	case token.Arrow:
		return false
	case token.LBrace:
		j := uint32(0)
		for isSpace(lx.cursor.PeekAt(j)) {
			j++
		}
		if lx.cursor.PeekAt(j) == '}' {
			return false
		}
	}
	return true
}

// quoteDelimiter checks the byte after optional spaces without consuming.
func (lx *Lexer) quoteDelimiter() (byte, bool) {
	j := uint32(0)
	for isSpace(lx.cursor.PeekAt(j)) {
		j++
	}
	d := lx.cursor.PeekAt(j)
	switch {
	case d == 0 || d == '\n':
		return 0, false
	case isIdentContinueByte(d):
		return 0, false
	case d == ',' || d == ';' || d == ')' || d == ']' || d == '}' || d == '>' || d == '=':
		return 0, false
	case d == '#' && j > 0:
		return 0, false
	case d == '-' && lx.cursor.PeekAt(j+1) == '>':
		return 0, false
	}
	return d, true
}

func (lx *Lexer) skipInlineSpace() {
	for isSpace(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}
