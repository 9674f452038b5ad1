package normalize

import (
	"strings"

	"perl2py/internal/draft"
)

// statement reports whether l is a body statement: a comment-only line is
// not, a docstring is.
func statement(l draft.Line) bool {
	if l.Role == draft.RoleHeader || l.Blank() {
		return false
	}
	if strings.Contains(l.Text, "\n") {
		return true
	}
	code, _ := splitComment(l.Text)
	return strings.TrimSpace(code) != ""
}

// fixEmptyBlocks gives block headers without a body a `pass`.
func fixEmptyBlocks(b *draft.Buffer) []Repair {
	var out []Repair
	for i := 0; i < len(b.Lines); i++ {
		h := b.Lines[i]
		if !isCode(h) || !blockOpener(h.Text) {
			continue
		}
		empty := true
		for j := i + 1; j < len(b.Lines); j++ {
			if statement(b.Lines[j]) {
				empty = b.Lines[j].Depth <= h.Depth
				break
			}
		}
		if !empty {
			continue
		}
		b.Insert(i+1, draft.Line{Text: "pass", Depth: h.Depth + 1, Src: h.Src})
		out = append(out, repair(h, "empty block filled with pass"))
		i++
	}
	return out
}

// fixIndentation re-derives every statement's depth from the block
// structure: a line is at most one level below a header and never deeper
// than the statement before it otherwise. Leading whitespace in the text is
// folded away.
func fixIndentation(b *draft.Buffer) []Repair {
	var out []Repair
	prevDepth, prevOpens, seen := 0, false, false
	for i := range b.Lines {
		l := &b.Lines[i]
		if l.Role == draft.RoleHeader || l.Blank() {
			continue
		}
		if trimmed := strings.TrimLeft(l.Text, " \t"); trimmed != l.Text {
			l.Text = trimmed
			out = append(out, repair(*l, "leading whitespace removed"))
		}
		if !statement(*l) {
			continue
		}
		limit := 0
		if seen {
			limit = prevDepth
			if prevOpens {
				limit++
			}
		}
		if l.Depth > limit {
			l.Depth = limit
			out = append(out, repair(*l, "indentation re-derived from block depth"))
		}
		if l.Depth < 0 {
			l.Depth = 0
		}
		prevDepth, prevOpens, seen = l.Depth, isCode(*l) && blockOpener(l.Text), true
	}
	return out
}
