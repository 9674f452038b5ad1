package token

// Kind represents the category of a Perl token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the input.
	EOF

	// Ident is a bareword, package-qualified name or word operator (eq, x, and...).
	Ident
	// Scalar is $name; Text holds the name without sigil ("_" for $_, "1" for $1).
	Scalar
	// Array is @name.
	Array
	// Hash is %name.
	Hash
	// ArrayLast is $#name; an empty Text means $#{...} or $#$ref follows.
	ArrayLast
	// Cast is a sigil applied to a block or scalar: ${...} @{...} %{...} @$x.
	Cast
	// FuncRef is &name.
	FuncRef

	Number
	// String is a non-interpolating literal ('...', q()).
	String
	// Interp is an interpolating literal ("...", qq()).
	Interp
	// Words is qw().
	Words
	// Command is `...` or qx().
	Command
	// Match is m// or a bare //; Pattern and Flags are set.
	Match
	// Subst is s///; Pattern, Replacement and Flags are set.
	Subst
	// Trans is tr/// or y///.
	Trans
	// QuoteRegex is qr//.
	QuoteRegex
	// Readline is <$fh>, <STDIN>, <FH>, <>; Text is the inner text.
	Readline
	// Heredoc is <<TAG; Index refers to the lexer's heredoc list.
	Heredoc

	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	LBrace   // {
	RBrace   // }

	Semicolon // ;
	Comma     // ,
	FatArrow  // =>
	Arrow     // ->
	Question  // ?
	Colon     // :
	Backslash // \

	Assign   // =
	OpAssign // += -= .= ||= //= ... ; Text holds the operator without '='
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Percent  // %
	Pow      // **
	Dot      // .
	Incr     // ++
	Decr     // --

	EqEq      // ==
	NotEq     // !=
	Lt        // <
	Gt        // >
	LtEq      // <=
	GtEq      // >=
	Spaceship // <=>

	AndAnd    // &&
	OrOr      // ||
	DefinedOr // //
	Bang      // !
	Tilde     // ~
	Amp       // &
	Pipe      // |
	Caret     // ^
	Shl       // <<
	Shr       // >>

	Bind    // =~
	NotBind // !~
	Range   // .. and ...

	// FileTest is -e, -f, -d ...; Text is the letter.
	FileTest
)

var kindNames = [...]string{
	Invalid: "Invalid", EOF: "EOF", Ident: "Ident", Scalar: "Scalar", Array: "Array",
	Hash: "Hash", ArrayLast: "ArrayLast", Cast: "Cast", FuncRef: "FuncRef",
	Number: "Number", String: "String", Interp: "Interp", Words: "Words",
	Command: "Command", Match: "Match", Subst: "Subst", Trans: "Trans",
	QuoteRegex: "QuoteRegex", Readline: "Readline", Heredoc: "Heredoc",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Semicolon: ";", Comma: ",", FatArrow: "=>", Arrow: "->", Question: "?", Colon: ":",
	Backslash: "\\", Assign: "=", OpAssign: "op=", Plus: "+", Minus: "-", Star: "*",
	Slash: "/", Percent: "%", Pow: "**", Dot: ".", Incr: "++", Decr: "--",
	EqEq: "==", NotEq: "!=", Lt: "<", Gt: ">", LtEq: "<=", GtEq: ">=", Spaceship: "<=>",
	AndAnd: "&&", OrOr: "||", DefinedOr: "//", Bang: "!", Tilde: "~", Amp: "&",
	Pipe: "|", Caret: "^", Shl: "<<", Shr: ">>", Bind: "=~", NotBind: "!~",
	Range: "..", FileTest: "-X",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
