// Package verify parses converted output with the tree-sitter Python
// grammar and reports what does not parse.
package verify

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"perl2py/internal/construct"
	"perl2py/internal/diag"
	"perl2py/internal/engine"
	"perl2py/internal/source"
)

// maxProblems caps findings per unit; one broken line tends to cascade.
const maxProblems = 20

// Problem is one parse failure in Python text. Row and Col are 0-based.
type Problem struct {
	Row, Col uint32
	// Missing is set when the parser inserted a token the text lacks.
	Missing bool
	// Node is the node type for missing tokens, the offending text otherwise.
	Node string
}

func (p Problem) String() string {
	if p.Missing {
		return fmt.Sprintf("%d:%d: missing %s", p.Row+1, p.Col+1, p.Node)
	}
	return fmt.Sprintf("%d:%d: unexpected %q", p.Row+1, p.Col+1, p.Node)
}

// Parse returns the parse problems of src, outermost first.
func Parse(ctx context.Context, src []byte) ([]Problem, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse output: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	var out []Problem
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if len(out) >= maxProblems {
			return
		}
		switch {
		case n.IsMissing():
			p := n.StartPoint()
			out = append(out, Problem{Row: p.Row, Col: p.Column, Missing: true, Node: n.Type()})
			return
		case n.IsError():
			p := n.StartPoint()
			out = append(out, Problem{Row: p.Row, Col: p.Column, Node: snippet(n.Content(src))})
			// вложенные ошибки не интересны
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out, nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}

// Check parses res.Output and adds one diagnostic per problem to
// res.Diagnostics, positioned at the source line the offending output line
// came from. It returns the number of problems found.
func Check(ctx context.Context, res *engine.Result, unit *source.File) (int, error) {
	probs, err := Parse(ctx, []byte(res.Output))
	if err != nil {
		return 0, err
	}
	// одинаковые находки схлопываются
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: res.Diagnostics})
	for _, p := range probs {
		var src uint32
		if res.Draft != nil {
			if l, ok := res.Draft.LineAt(int(p.Row)); ok {
				src = l.Src
			}
		}
		code := diag.VerSyntax
		if p.Missing {
			code = diag.VerMissing
		}
		diag.ReportError(rep, code, engine.LineSpan(unit, src), "output line "+p.String()).
			WithKind(construct.Unrecognized, src).
			Emit()
	}
	if len(probs) > 0 {
		res.Diagnostics.Sort()
	}
	return len(probs), nil
}
