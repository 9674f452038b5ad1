package lexer

import (
	"strings"

	"perl2py/internal/token"
)

// scanQuoted reads the body (or bodies, for s/// and tr///) of a quote-like
// construct whose opening delimiter has already been consumed, then any
// trailing regex flags.
func (lx *Lexer) scanQuoted(kind token.Kind, open byte) token.Token {
	start := lx.cursor.Off
	body, ok := lx.readDelimited(open)
	if !ok {
		lx.report("quote", start, "unterminated "+kind.String())
		return token.Token{Kind: token.Invalid, Text: body}
	}

	tok := token.Token{Kind: kind, Delim: open}
	switch kind {
	case token.Subst, token.Trans:
		second := open
		if closingDelim(open) != open {
			for isSpace(lx.cursor.Peek()) || lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			second = lx.cursor.Bump()
		}
		repl, ok := lx.readDelimited(second)
		if !ok {
			lx.report("quote", start, "unterminated replacement")
			return token.Token{Kind: token.Invalid, Text: body}
		}
		tok.Pattern = body
		tok.Replacement = repl
		tok.Flags = lx.readFlags()
	case token.Match, token.QuoteRegex:
		tok.Pattern = body
		tok.Flags = lx.readFlags()
	default:
		tok.Text = body
	}
	return tok
}

// readDelimited reads up to the closing delimiter, honouring backslash
// escapes and nesting for bracketing pairs. The delimiter is not included.
func (lx *Lexer) readDelimited(open byte) (string, bool) {
	closer := closingDelim(open)
	nests := closer != open
	depth := 1
	var b strings.Builder
	for !lx.cursor.EOF() {
		c := lx.cursor.Bump()
		switch {
		case c == '\\':
			b.WriteByte(c)
			if !lx.cursor.EOF() {
				b.WriteByte(lx.cursor.Bump())
			}
			continue
		case nests && c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return b.String(), true
			}
		}
		b.WriteByte(c)
	}
	return b.String(), false
}

func (lx *Lexer) readFlags() string {
	m := lx.cursor.Mark()
	for b := lx.cursor.Peek(); (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z'); b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
	return lx.cursor.TextFrom(m)
}

// scanAngle handles '<' in term position: heredoc openers and readline.
func (lx *Lexer) scanAngle() token.Token {
	if lx.cursor.PeekAt(1) == '<' {
		if tok, ok := lx.scanHeredocOpener(); ok {
			return tok
		}
		return lx.scanOperatorOrPunct(false)
	}
	m := lx.cursor.Mark()
	lx.cursor.Bump() // '<'
	inner := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '>' {
			text := lx.cursor.TextFrom(inner)
			lx.cursor.Bump()
			return token.Token{Kind: token.Readline, Text: text}
		}
		if isSpace(b) || b == '\n' || b == '<' || b == '=' || b == ';' || b == '(' || b == ')' {
			break
		}
		lx.cursor.Bump()
	}
	lx.cursor.Reset(m)
	return lx.scanOperatorOrPunct(false)
}

// scanHeredocOpener reads <<"TAG", <<'TAG', <<TAG and <<~TAG.
func (lx *Lexer) scanHeredocOpener() (token.Token, bool) {
	m := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	h := Heredoc{Interpolate: true}
	if lx.cursor.Eat('~') {
		h.Indented = true
	}
	switch b := lx.cursor.Peek(); {
	case b == '"' || b == '\'':
		lx.cursor.Bump()
		tag, ok := lx.readDelimited(b)
		if !ok || tag == "" {
			lx.cursor.Reset(m)
			return token.Token{}, false
		}
		h.Tag = tag
		h.Interpolate = b == '"'
	case isIdentStartByte(b):
		h.Tag = lx.readIdent()
	default:
		lx.cursor.Reset(m)
		return token.Token{}, false
	}
	idx := len(lx.heredocs)
	lx.heredocs = append(lx.heredocs, h)
	lx.pending = append(lx.pending, idx)
	return token.Token{Kind: token.Heredoc, Text: h.Tag, Index: idx}, true
}
