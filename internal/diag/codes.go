package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Converted
	CvtInfo         Code = 1000
	CvtConstruct    Code = 1001
	CvtDropped      Code = 1002
	CvtModuleImport Code = 1003
	CvtDocstring    Code = 1004

	// PartiallyConverted
	PrtInfo                Code = 2000
	PrtFallback            Code = 2001
	PrtNestedInterpolation Code = 2002
	PrtRegexFlags          Code = 2003
	PrtResidue             Code = 2004
	PrtLoopForm            Code = 2005
	PrtUnsupportedBuiltin  Code = 2006
	PrtLocal               Code = 2007
	PrtLabel               Code = 2008
	PrtFormat              Code = 2009

	// Unrecognized
	UnrInfo       Code = 3000
	UnrConstruct  Code = 3001
	UnrModule     Code = 3002
	UnrBlock      Code = 3003
	UnrSpecialVar Code = 3004
	UnrUnbalanced Code = 3005

	// Verification of produced output
	VerInfo    Code = 4000
	VerSyntax  Code = 4001
	VerMissing Code = 4002

	// Normalization repairs
	NrmInfo          Code = 5000
	NrmConditional   Code = 5001
	NrmNegation      Code = 5002
	NrmInterpolation Code = 5003
	NrmEmptyBlock    Code = 5004
	NrmShim          Code = 5005
	NrmImport        Code = 5006
	NrmIndent        Code = 5007

	// Dialect evidence
	DiaInfo    Code = 6000
	DiaNotPerl Code = 6001

	// IO / structural
	IOInfo          Code = 7000
	IOLoadFileError Code = 7001
	IOStructural    Code = 7002
	IOWriteError    Code = 7003
)

var (
	codeDescription = map[Code]string{
		UnknownCode: "Unknown error",

		CvtInfo:         "Conversion information",
		CvtConstruct:    "Construct converted",
		CvtDropped:      "Construct has no Python counterpart and was dropped",
		CvtModuleImport: "Perl module mapped to a Python import",
		CvtDocstring:    "POD converted to a docstring",

		PrtInfo:                "Partial conversion information",
		PrtFallback:            "Construct kept as an inert comment",
		PrtNestedInterpolation: "Nested interpolation is not converted",
		PrtRegexFlags:          "Regex flags have no Python counterpart",
		PrtResidue:             "Perl syntax left in converted line",
		PrtLoopForm:            "Loop form only partially converted",
		PrtUnsupportedBuiltin:  "Builtin routed to the perl_builtin shim",
		PrtLocal:               "'local' has no dynamic-scope counterpart",
		PrtLabel:               "Loop labels are not supported",
		PrtFormat:              "printf/sprintf format kept as %-formatting",

		UnrInfo:       "Unrecognized construct information",
		UnrConstruct:  "Unrecognized construct passed through",
		UnrModule:     "Unknown Perl module",
		UnrBlock:      "Unrecognized block passed through verbatim",
		UnrSpecialVar: "Unsupported special variable",
		UnrUnbalanced: "Unbalanced block delimiter",

		VerInfo:    "Verification information",
		VerSyntax:  "Converted output does not parse as Python",
		VerMissing: "Converted output has a missing token",

		NrmInfo:          "Normalization information",
		NrmConditional:   "Malformed conditional repaired",
		NrmNegation:      "Double negation simplified",
		NrmInterpolation: "Broken interpolation repaired",
		NrmEmptyBlock:    "Empty block filled with pass",
		NrmShim:          "Helper shim inserted",
		NrmImport:        "Missing import added",
		NrmIndent:        "Indentation re-derived",

		DiaInfo:    "Dialect information",
		DiaNotPerl: "Source does not look like Perl",

		IOInfo:          "IO information",
		IOLoadFileError: "Failed to load file",
		IOStructural:    "Structural corruption, unit not converted",
		IOWriteError:    "Failed to write output",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CVT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PRT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("UNR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("VER%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("NRM%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("DIA%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Codes returns every known code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		out = append(out, c)
	}
	sortCodes(out)
	return out
}
