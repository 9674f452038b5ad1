package normalize

import (
	"perl2py/internal/diag"
	"perl2py/internal/draft"
)

// Repair records one applied fix.
type Repair struct {
	Pattern string
	Code    diag.Code
	// Src is the source line of the repaired draft line, 0 for generated ones.
	Src     uint32
	Message string
}

// Pattern is one repair. Apply edits the buffer in place and returns what it
// changed; an empty result means the buffer is at the pattern's fixed point.
type Pattern struct {
	Name  string
	Code  diag.Code
	Apply func(b *draft.Buffer) []Repair
}

// maxRounds bounds the fixed-point loop of a single pattern.
const maxRounds = 16

var patterns = []Pattern{
	{Name: "malformed-conditional", Code: diag.NrmConditional, Apply: fixConditionals},
	{Name: "bad-unless-negation", Code: diag.NrmNegation, Apply: fixNegations},
	{Name: "broken-interpolation", Code: diag.NrmInterpolation, Apply: fixInterpolation},
	{Name: "empty-block", Code: diag.NrmEmptyBlock, Apply: fixEmptyBlocks},
	{Name: "missing-shim", Code: diag.NrmShim, Apply: fixShims},
	{Name: "missing-import", Code: diag.NrmImport, Apply: fixImports},
	{Name: "indentation", Code: diag.NrmIndent, Apply: fixIndentation},
}

// Patterns returns the repairs in application order.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// Run applies every pattern in order to a copy of buf.
func Run(buf *draft.Buffer) (*draft.Buffer, []Repair) {
	out := buf.Clone()
	var repairs []Repair
	for _, p := range patterns {
		for range maxRounds {
			rs := p.Apply(out)
			if len(rs) == 0 {
				break
			}
			for i := range rs {
				rs[i].Pattern = p.Name
				rs[i].Code = p.Code
			}
			repairs = append(repairs, rs...)
		}
	}
	return out, repairs
}

// Unique drops repeated repairs of the same pattern and message.
func Unique(repairs []Repair) []Repair {
	seen := make(map[string]struct{}, len(repairs))
	out := repairs[:0:0]
	for _, r := range repairs {
		key := r.Pattern + "\x00" + r.Message
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func repair(l draft.Line, msg string) Repair {
	return Repair{Src: l.Src, Message: msg}
}

// isCode reports whether l takes part in code repairs: generated header
// lines and multi-line texts (docstrings) are left alone.
func isCode(l draft.Line) bool {
	if l.Role == draft.RoleHeader || l.Blank() {
		return false
	}
	for i := 0; i < len(l.Text); i++ {
		if l.Text[i] == '\n' {
			return false
		}
	}
	return true
}
