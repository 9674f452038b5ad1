package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"perl2py/internal/token"
)

// ===== Классификаторы =====

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}
func isIdentContinueRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'f') ||
		(b >= 'A' && b <= 'F')
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\f' }

// Проверка для кейса ".5": текущая точка, дальше цифра?
func (lx *Lexer) isNumberAfterDot() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '.' && isDec(b1)
}

// sigilFollows: after '%' or '&', does a name, block or scalar follow?
func (lx *Lexer) sigilFollows() bool {
	b := lx.cursor.PeekAt(1)
	return isIdentStartByte(b) || b == '{' || b == '$' || b == ':' || b == '^'
}

// -e/-f/... file test: a single letter not followed by a name character.
func (lx *Lexer) isFileTest() bool {
	letter := lx.cursor.PeekAt(1)
	if letter == 0 || !isFileTestLetter(letter) {
		return false
	}
	next := lx.cursor.PeekAt(2)
	if isIdentContinueByte(next) {
		return false
	}
	// -e => 1 is a string key
	if next == ' ' || next == '=' {
		j := uint32(2)
		for lx.cursor.PeekAt(j) == ' ' {
			j++
		}
		if lx.cursor.PeekAt(j) == '=' && lx.cursor.PeekAt(j+1) == '>' {
			return false
		}
	}
	return true
}

func isFileTestLetter(b byte) bool {
	switch b {
	case 'e', 'f', 'd', 's', 'z', 'r', 'w', 'x', 'l', 'p', 'o', 'S', 'b', 'c', 'M', 'A', 'C':
		return true
	}
	return false
}

// readIdent consumes an identifier with optional Package:: segments.
func (lx *Lexer) readIdent() string {
	m := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isIdentContinueByte(b) {
			lx.cursor.Bump()
			continue
		}
		if b == ':' && lx.cursor.PeekAt(1) == ':' && isIdentStartByte(lx.cursor.PeekAt(2)) {
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		}
		if b >= utf8.RuneSelf {
			r, sz := utf8.DecodeRune(lx.src[lx.cursor.Off:])
			if isIdentContinueRune(r) {
				lx.advance(sz)
				continue
			}
		}
		break
	}
	return lx.cursor.TextFrom(m)
}

func closingDelim(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return open
}

// bumpRune перемещает курсор на размер текущей руны
func (lx *Lexer) bumpRune() {
	if lx.cursor.EOF() {
		return
	}
	_, sz := utf8.DecodeRune(lx.src[lx.cursor.Off:])
	lx.advance(sz)
}

func (lx *Lexer) advance(sz int) {
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("advance overflow: %w", err))
	}
	lx.cursor.Off += usz
}

// termAfterWord: after a plain function name, "keys %h" or "foo -e $f" put
// a term, not an infix operator, in front of us. Whitespace before the
// operator character and none after it is the signal.
func (lx *Lexer) termAfterWord() bool {
	if lx.prev.Kind != token.Ident || len(lx.hold) == 0 {
		return false
	}
	next := lx.cursor.PeekAt(1)
	return next != 0 && !isSpace(next) && next != '\n' && next != '='
}

// heredocAfterOperand covers print $fh <<EOF and print $fh <<"EOF".
func (lx *Lexer) heredocAfterOperand() bool {
	if lx.cursor.PeekAt(1) != '<' {
		return false
	}
	switch b := lx.cursor.PeekAt(2); {
	case b == '"' || b == '\'' || b == '~':
		return true
	case b >= 'A' && b <= 'Z':
		return lx.prev.Kind == token.Scalar && len(lx.hold) > 0
	}
	return false
}
