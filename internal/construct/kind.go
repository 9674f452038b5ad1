package construct

// Kind is the closed set of construct categories the matcher can assign.
type Kind uint8

const (
	Unrecognized Kind = iota
	Variable
	ControlFlow
	RegexOp
	Collection
	FunctionDef
	FunctionCall
	FileOp
	Literal
	Comment
	DocBlock
	Module
	ErrorHandling

	// KindCount sizes per-kind dispatch tables.
	KindCount
)

var kindNames = [KindCount]string{
	Unrecognized:  "Unrecognized",
	Variable:      "Variable",
	ControlFlow:   "ControlFlow",
	RegexOp:       "RegexOp",
	Collection:    "Collection",
	FunctionDef:   "FunctionDef",
	FunctionCall:  "FunctionCall",
	FileOp:        "FileOp",
	Literal:       "Literal",
	Comment:       "Comment",
	DocBlock:      "DocBlock",
	Module:        "Module",
	ErrorHandling: "ErrorHandling",
}

func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, KindCount)
	for k := Kind(0); k < KindCount; k++ {
		out = append(out, k)
	}
	return out
}
