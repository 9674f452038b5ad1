package token

// wordOps are barewords that act as operators or statement keywords; a term
// is expected after them.
var wordOps = map[string]struct{}{
	"eq": {}, "ne": {}, "lt": {}, "gt": {}, "le": {}, "ge": {}, "cmp": {},
	"x": {}, "and": {}, "or": {}, "not": {}, "xor": {},
	"if": {}, "unless": {}, "while": {}, "until": {}, "for": {}, "foreach": {},
	"elsif": {}, "return": {}, "split": {}, "grep": {}, "map": {}, "join": {},
	"push": {}, "unshift": {}, "print": {}, "say": {}, "die": {}, "warn": {},
	"when": {}, "my": {}, "our": {}, "local": {}, "defined": {}, "ref": {},
	"scalar": {}, "lc": {}, "uc": {}, "length": {},
}

// TakesTerm reports whether a bareword expects an operand after it.
func TakesTerm(word string) bool {
	_, ok := wordOps[word]
	return ok
}

// QuoteOps are the quote-like operator words.
var QuoteOps = map[string]Kind{
	"q":  String,
	"qq": Interp,
	"qw": Words,
	"qx": Command,
	"m":  Match,
	"qr": QuoteRegex,
	"s":  Subst,
	"tr": Trans,
	"y":  Trans,
}

// ControlWords open a control-flow block header.
var ControlWords = map[string]struct{}{
	"if": {}, "elsif": {}, "unless": {}, "while": {}, "until": {},
	"for": {}, "foreach": {}, "else": {}, "continue": {},
}

// ModifierWords may trail a simple statement.
var ModifierWords = map[string]struct{}{
	"if": {}, "unless": {}, "while": {}, "until": {}, "for": {}, "foreach": {},
}

// IsControlWord reports whether w opens a control block.
func IsControlWord(w string) bool {
	_, ok := ControlWords[w]
	return ok
}

// IsModifierWord reports whether w is a statement modifier keyword.
func IsModifierWord(w string) bool {
	_, ok := ModifierWords[w]
	return ok
}
