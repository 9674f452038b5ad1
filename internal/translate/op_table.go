package translate

import "perl2py/internal/token"

// Таблица приоритетов Perl, от низшего к высшему
const (
	precLowest         = 0
	precLowOr          = 1  // or xor
	precLowAnd         = 2  // and
	precLowNot         = 3  // not
	precList           = 4  // , =>
	precAssign         = 5  // = += -= .= //= ...
	precTernary        = 6  // ?:
	precRange          = 7  // .. ...
	precOrOr           = 8  // || //
	precAndAnd         = 9  // &&
	precBitOr          = 10 // | ^
	precBitAnd         = 11 // &
	precEquality       = 12 // == != <=> eq ne cmp
	precRelational     = 13 // < > <= >= lt gt le ge
	precNamedUnary     = 14 // defined ref lc -e ...
	precShift          = 15 // << >>
	precAdditive       = 16 // + - .
	precMultiplicative = 17 // * / % x
	precBind           = 18 // =~ !~
	precUnary          = 19 // ! ~ \ унарный минус
	precPow            = 20 // **
	precIncr           = 21 // ++ --
)

// binaryPrec возвращает приоритет и правую ассоциативность инфиксного
// оператора; -1 если токен не бинарный оператор.
func binaryPrec(tok token.Token) (int, bool) {
	switch tok.Kind {
	case token.Comma, token.FatArrow:
		return precList, false
	case token.Assign, token.OpAssign:
		return precAssign, true
	case token.Question:
		return precTernary, true
	case token.Range:
		return precRange, false
	case token.OrOr, token.DefinedOr:
		return precOrOr, false
	case token.AndAnd:
		return precAndAnd, false
	case token.Pipe, token.Caret:
		return precBitOr, false
	case token.Amp:
		return precBitAnd, false
	case token.EqEq, token.NotEq, token.Spaceship:
		return precEquality, false
	case token.Lt, token.Gt, token.LtEq, token.GtEq:
		return precRelational, false
	case token.Shl, token.Shr:
		return precShift, false
	case token.Plus, token.Minus, token.Dot:
		return precAdditive, false
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative, false
	case token.Bind, token.NotBind:
		return precBind, false
	case token.Pow:
		return precPow, true
	case token.Ident:
		switch tok.Text {
		case "or", "xor":
			return precLowOr, false
		case "and":
			return precLowAnd, false
		case "eq", "ne", "cmp":
			return precEquality, false
		case "lt", "gt", "le", "ge":
			return precRelational, false
		case "x":
			return precMultiplicative, false
		}
	}
	return -1, false
}

// operatorText is the Perl spelling used as the RuleTable key.
func operatorText(tok token.Token) string {
	if tok.Kind == token.Ident {
		return tok.Text
	}
	return tok.Kind.String()
}

// negatedCompare maps a Python comparison to its negation.
var negatedCompare = map[string]string{
	"==": "!=", "!=": "==",
	"<": ">=", ">=": "<",
	">": "<=", "<=": ">",
}

// pyOpPrec is the precedence of a rendered Python binary operator.
func pyOpPrec(op string) int {
	switch op {
	case "or":
		return pyOr
	case "and":
		return pyAnd
	case "==", "!=", "<", ">", "<=", ">=", "in", "not in", "is", "is not":
		return pyCompare
	case "|":
		return pyBitOr
	case "^":
		return pyBitXor
	case "&":
		return pyBitAnd
	case "<<", ">>":
		return pyShift
	case "+", "-":
		return pyAdd
	case "*", "/", "//", "%", "@":
		return pyMul
	case "**":
		return pyPow
	}
	return pyLambda
}
