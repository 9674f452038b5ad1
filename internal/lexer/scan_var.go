package lexer

import "perl2py/internal/token"

const scalarPunct = "@!&0.,;/\\|?+-"

// scanScalar handles $name, ${name}, $1, $_, $@, $#name, $$ref and ${ expr }.
func (lx *Lexer) scanScalar() token.Token {
	lx.cursor.Bump() // '$'
	b := lx.cursor.Peek()
	switch {
	case b == '#':
		next := lx.cursor.PeekAt(1)
		if next == '{' || next == '$' {
			lx.cursor.Bump()
			return token.Token{Kind: token.ArrayLast}
		}
		if isIdentStartByte(next) {
			lx.cursor.Bump()
			return token.Token{Kind: token.ArrayLast, Text: lx.readIdent()}
		}
		lx.cursor.Bump()
		return token.Token{Kind: token.Scalar, Text: "#"}
	case isIdentStartByte(b):
		return token.Token{Kind: token.Scalar, Text: lx.readIdent()}
	case b == ':' && lx.cursor.PeekAt(1) == ':':
		lx.cursor.Bump()
		lx.cursor.Bump()
		return token.Token{Kind: token.Scalar, Text: "main::" + lx.readIdent()}
	case isDec(b):
		m := lx.cursor.Mark()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		return token.Token{Kind: token.Scalar, Text: lx.cursor.TextFrom(m)}
	case b == '{':
		if name, ok := lx.bracedName(); ok {
			return token.Token{Kind: token.Scalar, Text: name}
		}
		return token.Token{Kind: token.Cast, Text: "$"}
	case b == '$':
		next := lx.cursor.PeekAt(1)
		if isIdentStartByte(next) || next == '{' || next == '$' || next == ':' {
			return token.Token{Kind: token.Cast, Text: "$"}
		}
		lx.cursor.Bump()
		return token.Token{Kind: token.Scalar, Text: "$"}
	case b == '^' && lx.cursor.PeekAt(1) >= 'A' && lx.cursor.PeekAt(1) <= 'Z':
		lx.cursor.Bump()
		return token.Token{Kind: token.Scalar, Text: "^" + string(lx.cursor.Bump())}
	case b != 0 && indexByte(scalarPunct, b):
		lx.cursor.Bump()
		return token.Token{Kind: token.Scalar, Text: string(b)}
	}
	lx.report("sigil", lx.cursor.Off, "stray '$'")
	return token.Token{Kind: token.Invalid, Text: "$"}
}

// bracedName consumes {name} after a sigil when the braces hold a plain name.
func (lx *Lexer) bracedName() (string, bool) {
	m := lx.cursor.Mark()
	lx.cursor.Bump() // '{'
	lx.skipInlineSpace()
	if !isIdentStartByte(lx.cursor.Peek()) {
		lx.cursor.Reset(m)
		return "", false
	}
	name := lx.readIdent()
	lx.skipInlineSpace()
	if !lx.cursor.Eat('}') {
		lx.cursor.Reset(m)
		return "", false
	}
	return name, true
}

func (lx *Lexer) scanArray() token.Token {
	lx.cursor.Bump() // '@'
	b := lx.cursor.Peek()
	switch {
	case isIdentStartByte(b):
		return token.Token{Kind: token.Array, Text: lx.readIdent()}
	case b == ':' && lx.cursor.PeekAt(1) == ':':
		lx.cursor.Bump()
		lx.cursor.Bump()
		return token.Token{Kind: token.Array, Text: "main::" + lx.readIdent()}
	case b == '{':
		if name, ok := lx.bracedName(); ok {
			return token.Token{Kind: token.Array, Text: name}
		}
		return token.Token{Kind: token.Cast, Text: "@"}
	case b == '$':
		return token.Token{Kind: token.Cast, Text: "@"}
	case b == '-' || b == '+':
		lx.cursor.Bump()
		return token.Token{Kind: token.Array, Text: string(b)}
	}
	lx.report("sigil", lx.cursor.Off, "stray '@'")
	return token.Token{Kind: token.Invalid, Text: "@"}
}

func (lx *Lexer) scanHash() token.Token {
	lx.cursor.Bump() // '%'
	b := lx.cursor.Peek()
	switch {
	case isIdentStartByte(b):
		return token.Token{Kind: token.Hash, Text: lx.readIdent()}
	case b == ':' && lx.cursor.PeekAt(1) == ':':
		lx.cursor.Bump()
		lx.cursor.Bump()
		return token.Token{Kind: token.Hash, Text: "main::" + lx.readIdent()}
	case b == '{':
		if name, ok := lx.bracedName(); ok {
			return token.Token{Kind: token.Hash, Text: name}
		}
		return token.Token{Kind: token.Cast, Text: "%"}
	case b == '^':
		lx.cursor.Bump()
		return token.Token{Kind: token.Hash, Text: "^" + string(lx.cursor.Bump())}
	}
	return token.Token{Kind: token.Cast, Text: "%"}
}

func (lx *Lexer) scanFuncRef() token.Token {
	lx.cursor.Bump() // '&'
	if isIdentStartByte(lx.cursor.Peek()) || lx.cursor.Peek() == ':' {
		return token.Token{Kind: token.FuncRef, Text: lx.readIdent()}
	}
	return token.Token{Kind: token.Cast, Text: "&"}
}

func indexByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}
