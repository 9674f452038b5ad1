package lexer

import "perl2py/internal/token"

// scanNumber reads 123, 1_000, 0x1F, 0b101, 017, 1.5, 1e10, .5
// A '.' followed by another '.' is a range, not a fraction.
func (lx *Lexer) scanNumber() token.Token {
	m := lx.cursor.Mark()
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'x' || b1 == 'X' || b1 == 'b' || b1 == 'B') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
		return token.Token{Kind: token.Number, Text: lx.cursor.TextFrom(m)}
	}
	lx.digits()
	if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) != '.' && isDec(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		lx.digits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
			lx.cursor.Bump()
			if next == '+' || next == '-' {
				lx.cursor.Bump()
			}
			lx.digits()
		}
	}
	return token.Token{Kind: token.Number, Text: lx.cursor.TextFrom(m)}
}

func (lx *Lexer) digits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}
