package lexer

import "perl2py/internal/token"

var ops3 = map[string]token.Kind{
	"<=>": token.Spaceship,
	"**=": token.OpAssign,
	"||=": token.OpAssign,
	"//=": token.OpAssign,
	"&&=": token.OpAssign,
	"<<=": token.OpAssign,
	">>=": token.OpAssign,
	"...": token.Range,
}

var ops2 = map[string]token.Kind{
	"=>": token.FatArrow,
	"->": token.Arrow,
	"++": token.Incr,
	"--": token.Decr,
	"**": token.Pow,
	"=~": token.Bind,
	"!~": token.NotBind,
	"==": token.EqEq,
	"!=": token.NotEq,
	"<=": token.LtEq,
	">=": token.GtEq,
	"&&": token.AndAnd,
	"||": token.OrOr,
	"//": token.DefinedOr,
	"..": token.Range,
	"<<": token.Shl,
	">>": token.Shr,
	"+=": token.OpAssign,
	"-=": token.OpAssign,
	"*=": token.OpAssign,
	"/=": token.OpAssign,
	".=": token.OpAssign,
	"%=": token.OpAssign,
	"|=": token.OpAssign,
	"&=": token.OpAssign,
	"^=": token.OpAssign,
}

var ops1 = map[byte]token.Kind{
	'(': token.LParen, ')': token.RParen,
	'[': token.LBracket, ']': token.RBracket,
	'{': token.LBrace, '}': token.RBrace,
	';': token.Semicolon, ',': token.Comma,
	'?': token.Question, ':': token.Colon,
	'\\': token.Backslash, '=': token.Assign,
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
	'%': token.Percent, '.': token.Dot, '!': token.Bang, '~': token.Tilde,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret, '<': token.Lt, '>': token.Gt,
}

// scanOperatorOrPunct — жадный разбор операторов: 3, затем 2, затем 1 байт.
func (lx *Lexer) scanOperatorOrPunct(operand bool) token.Token {
	if b0, b1, b2, ok := lx.cursor.Peek3(); ok {
		s := string([]byte{b0, b1, b2})
		if k, ok := ops3[s]; ok {
			lx.cursor.Off += 3
			return opToken(k, s)
		}
	}
	if b0, b1, ok := lx.cursor.Peek2(); ok {
		s := string([]byte{b0, b1})
		if k, ok := ops2[s]; ok && !(s == "//" && !operand) {
			lx.cursor.Off += 2
			return opToken(k, s)
		}
	}
	b := lx.cursor.Bump()
	if k, ok := ops1[b]; ok {
		return token.Token{Kind: k, Text: string(b)}
	}
	lx.report("char", lx.cursor.Off-1, "unexpected character "+string(b))
	return token.Token{Kind: token.Invalid, Text: string(b)}
}

func opToken(k token.Kind, s string) token.Token {
	if k == token.OpAssign {
		return token.Token{Kind: k, Text: s[:len(s)-1]}
	}
	return token.Token{Kind: k, Text: s}
}
