package matcher

import (
	"strings"

	"perl2py/internal/token"
)

// view is what a precedence rule sees: the code tokens of one tile with the
// terminating ';' removed.
type view struct {
	kind  segKind
	src   []byte
	toks  []token.Token
	opens bool
	cont  string
}

func newView(seg *segment, src []byte) *view {
	toks := seg.toks
	if seg.kind == segStmt && len(toks) > 0 && toks[len(toks)-1].Kind == token.Semicolon {
		toks = toks[:len(toks)-1]
	}
	return &view{
		kind:  seg.kind,
		src:   src,
		toks:  toks,
		opens: seg.kind == segOpen || seg.reopens,
		cont:  seg.cont,
	}
}

func (v *view) at(i int) token.Token {
	if i < 0 || i >= len(v.toks) {
		return token.Token{Kind: token.EOF}
	}
	return v.toks[i]
}

// word returns the bareword at i, or "".
func (v *view) word(i int) string {
	t := v.at(i)
	if t.Kind == token.Ident {
		return t.Text
	}
	return ""
}

// body returns the tokens before the block-opening brace.
func (v *view) body() []token.Token {
	if v.opens && len(v.toks) > 0 && v.toks[len(v.toks)-1].Kind == token.LBrace {
		return v.toks[:len(v.toks)-1]
	}
	return v.toks
}

// text renders toks[i:j] from source, single spaces where trivia was.
func (v *view) text(i, j int) string {
	return joinTokens(v.src, v.toks[i:j], nil)
}

// topLevel returns the index of the first depth-0 token satisfying pred.
func (v *view) topLevel(from int, pred func(token.Token) bool) int {
	depth := 0
	for i := from; i < len(v.toks); i++ {
		t := v.toks[i]
		if depth == 0 && pred(t) {
			return i
		}
		switch t.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth > 0 {
				depth--
			}
		}
	}
	return -1
}

// assignIndex is the first top-level '=' or compound assignment.
func (v *view) assignIndex() int {
	return v.topLevel(0, func(t token.Token) bool {
		return t.Kind == token.Assign || t.Kind == token.OpAssign
	})
}

// joinTokens renders tokens from source; heredoc openers become placeholders
// looked up in names (by lexer index).
func joinTokens(src []byte, toks []token.Token, names map[int]string) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && t.Spaced {
			b.WriteByte(' ')
		}
		if t.Kind == token.Heredoc {
			if name, ok := names[t.Index]; ok {
				b.WriteString(name)
				continue
			}
		}
		b.Write(src[t.Pos:t.End])
	}
	return b.String()
}
