package matcher

import (
	"strconv"

	"perl2py/internal/construct"
	"perl2py/internal/token"
)

type ruleFunc func(v *view) (map[string]string, bool)

type rule struct {
	name string
	kind construct.Kind
	// openers restricts the rule to tiles that open a block (true) or to
	// tiles that do not (false); trivia rules ignore it.
	openers bool
	match   ruleFunc
}

// RuleInfo names one entry of the classification precedence.
type RuleInfo struct {
	Name string
	Kind construct.Kind
}

// Precedence returns the ordered classification table. The first rule that
// accepts a tile decides its kind; tiles nothing accepts are Unrecognized.
func Precedence() []RuleInfo {
	out := make([]RuleInfo, len(precedence))
	for i, r := range precedence {
		out[i] = RuleInfo{Name: r.name, Kind: r.kind}
	}
	return out
}

var precedence = []rule{
	{"doc-block", construct.DocBlock, false, segIs(segPOD, "style", "pod")},
	{"end-marker", construct.DocBlock, false, segIs(segEnd, "style", "end")},
	{"comment", construct.Comment, false, segIs(segComment, "", "")},
	{"blank", construct.Comment, false, segIs(segBlank, "", "")},
	{"block-close", construct.ControlFlow, false, matchClose},
	{"sub-def", construct.FunctionDef, true, matchSubDef},
	{"package", construct.Module, false, matchPackage},
	{"use-require", construct.Module, false, matchUse},
	{"eval-block", construct.ErrorHandling, true, matchEvalBlock},
	{"do-block", construct.ControlFlow, true, matchDoBlock},
	{"control-header", construct.ControlFlow, true, matchControlHeader},
	{"statement-modifier", construct.ControlFlow, false, matchModifier},
	{"loop-control", construct.ControlFlow, false, matchLoopControl},
	{"file-op", construct.FileOp, false, matchFileOp},
	{"error-handling", construct.ErrorHandling, false, matchErrorHandling},
	{"regex-op", construct.RegexOp, false, matchRegexOp},
	{"collection", construct.Collection, false, matchCollection},
	{"variable", construct.Variable, false, matchVariable},
	{"function-call", construct.FunctionCall, false, matchFunctionCall},
	{"literal", construct.Literal, false, matchLiteral},
}

func isTriviaSeg(k segKind) bool {
	return k == segPOD || k == segEnd || k == segComment || k == segBlank
}

// classify runs the precedence table over one tile.
func classify(v *view) (construct.Kind, string, map[string]string) {
	for _, r := range precedence {
		if !isTriviaSeg(v.kind) && v.kind != segClose && r.openers != v.opens {
			// package blocks ("package Foo {") are the one opener the
			// package rule takes
			if !(r.name == "package" && v.opens) {
				continue
			}
		}
		if groups, ok := r.match(v); ok {
			return r.kind, r.name, groups
		}
	}
	return construct.Unrecognized, "unrecognized", nil
}

func segIs(kind segKind, key, val string) ruleFunc {
	return func(v *view) (map[string]string, bool) {
		if v.kind != kind {
			return nil, false
		}
		if key == "" {
			return nil, true
		}
		return map[string]string{key: val}, true
	}
}

func matchClose(v *view) (map[string]string, bool) {
	if v.kind != segClose {
		return nil, false
	}
	g := map[string]string{"continuation": v.cont}
	if v.cont == "while" || v.cont == "until" || v.cont == "elsif" {
		// tokens after "} while" / "} elsif", minus the brace and ';'
		end := len(v.toks)
		for end > 0 && (v.toks[end-1].Kind == token.Semicolon || v.toks[end-1].Kind == token.LBrace) {
			end--
		}
		if end > 2 {
			g["test"] = v.text(2, end)
		}
	}
	return g, true
}

func matchSubDef(v *view) (map[string]string, bool) {
	b := v.body()
	if len(b) >= 2 && b[0].Is("sub") && b[1].Kind == token.Ident {
		return map[string]string{"name": b[1].Text}, true
	}
	if n := len(b); n >= 1 && b[n-1].Is("sub") {
		g := map[string]string{"anon": "1"}
		if ai := v.assignIndex(); ai > 0 && ai < n {
			g["target"] = v.text(0, ai)
		}
		return g, true
	}
	return nil, false
}

func matchPackage(v *view) (map[string]string, bool) {
	if v.word(0) != "package" || v.at(1).Kind != token.Ident {
		return nil, false
	}
	return map[string]string{"name": v.at(1).Text}, true
}

func matchUse(v *view) (map[string]string, bool) {
	verb := v.word(0)
	if verb != "use" && verb != "no" && verb != "require" {
		return nil, false
	}
	g := map[string]string{"verb": verb}
	t := v.at(1)
	switch t.Kind {
	case token.Ident:
		g["module"] = t.Text
	case token.Number:
		g["module"] = "perl"
		g["version"] = t.Text
	case token.String, token.Interp:
		g["module"] = t.Text
		g["file"] = "1"
	default:
		return nil, false
	}
	if len(v.toks) > 2 {
		g["args"] = v.text(2, len(v.toks))
	}
	return g, true
}

func matchEvalBlock(v *view) (map[string]string, bool) {
	b := v.body()
	n := len(b)
	if n == 0 || !b[n-1].Is("eval") {
		return nil, false
	}
	g := map[string]string{}
	if ai := v.assignIndex(); ai > 0 && ai < n {
		g["target"] = v.text(0, ai)
	}
	return g, true
}

func matchDoBlock(v *view) (map[string]string, bool) {
	b := v.body()
	if len(b) == 1 && b[0].Is("do") {
		return nil, true
	}
	return nil, false
}

func matchControlHeader(v *view) (map[string]string, bool) {
	b := v.body()
	if len(b) == 0 {
		return map[string]string{"keyword": "block"}, true
	}
	g := map[string]string{}
	k := 0
	if len(b) >= 2 && b[0].Kind == token.Ident && b[1].Kind == token.Colon && isLabel(b[0].Text) {
		g["label"] = b[0].Text
		k = 2
	}
	w := v.word(k)
	if !token.IsControlWord(w) {
		if k == 2 && len(b) == 2 {
			g["keyword"] = "block"
			return g, true
		}
		return nil, false
	}
	g["keyword"] = w
	return g, true
}

func matchModifier(v *view) (map[string]string, bool) {
	if len(v.toks) == 0 || token.IsControlWord(v.word(0)) {
		return nil, false
	}
	idx := v.topLevel(1, func(t token.Token) bool {
		return t.Kind == token.Ident && token.IsModifierWord(t.Text)
	})
	if idx < 1 {
		return nil, false
	}
	return map[string]string{
		"modifier": v.toks[idx].Text,
		"index":    strconv.Itoa(idx),
	}, true
}

func matchLoopControl(v *view) (map[string]string, bool) {
	switch w := v.word(0); w {
	case "next", "last", "redo":
		g := map[string]string{"keyword": w}
		if t := v.at(1); t.Kind == token.Ident {
			g["label"] = t.Text
		}
		return g, true
	case "return":
		return map[string]string{"keyword": w}, true
	}
	return nil, false
}

var fileOps = map[string]struct{}{
	"open": {}, "close": {}, "opendir": {}, "readdir": {}, "closedir": {},
	"binmode": {}, "seek": {}, "tell": {}, "eof": {}, "flock": {}, "truncate": {},
	"unlink": {}, "mkdir": {}, "rmdir": {}, "rename": {},
}

func matchFileOp(v *view) (map[string]string, bool) {
	w := v.word(0)
	if _, ok := fileOps[w]; ok {
		return map[string]string{"op": w}, true
	}
	if (w == "print" || w == "printf" || w == "say") && hasFileHandle(v, 1) {
		return map[string]string{"op": w}, true
	}
	if ai := v.assignIndex(); ai > 0 && v.toks[ai].Kind == token.Assign {
		rhs := v.at(ai + 1)
		if rhs.Kind == token.Readline {
			return map[string]string{"op": "readline"}, true
		}
		if rhs.Kind == token.Ident {
			if _, ok := fileOps[rhs.Text]; ok {
				return map[string]string{"op": rhs.Text}, true
			}
		}
	}
	return nil, false
}

// hasFileHandle: print $fh LIST, print {$fh} LIST, print FH LIST.
func hasFileHandle(v *view, i int) bool {
	t := v.at(i)
	if t.Kind == token.LParen {
		i++
		t = v.at(i)
	}
	next := v.at(i + 1)
	switch t.Kind {
	case token.LBrace:
		return v.at(i+1).Kind == token.Scalar && v.at(i+2).Kind == token.RBrace
	case token.Scalar:
		return startsTerm(next) && next.Spaced
	case token.Ident:
		if t.Text == "STDOUT" || t.Text == "STDERR" {
			return false
		}
		return isLabel(t.Text) && startsTerm(next)
	}
	return false
}

func startsTerm(t token.Token) bool {
	switch t.Kind {
	case token.Scalar, token.Array, token.Hash, token.Number, token.String, token.Interp,
		token.Heredoc, token.Words, token.Cast, token.ArrayLast:
		return true
	case token.Ident:
		return !token.TakesTerm(t.Text) || t.Text == "join" || t.Text == "scalar"
	}
	return false
}

var dieWords = map[string]struct{}{
	"die": {}, "warn": {}, "croak": {}, "confess": {}, "carp": {}, "cluck": {},
}

func matchErrorHandling(v *view) (map[string]string, bool) {
	w := v.word(0)
	if _, ok := dieWords[w]; ok {
		return map[string]string{"op": w}, true
	}
	idx := v.topLevel(0, func(t token.Token) bool {
		return t.Is("or") || t.Kind == token.OrOr
	})
	if idx > 0 {
		if _, ok := dieWords[v.word(idx+1)]; ok && v.word(idx+1) != "warn" {
			return map[string]string{"op": "or-die"}, true
		}
	}
	return nil, false
}

func matchRegexOp(v *view) (map[string]string, bool) {
	if idx := v.topLevel(0, func(t token.Token) bool {
		return t.Kind == token.Bind || t.Kind == token.NotBind
	}); idx >= 0 {
		return map[string]string{"op": "bind"}, true
	}
	start := 0
	if ai := v.assignIndex(); ai >= 0 && v.toks[ai].Kind == token.Assign {
		start = ai + 1
	}
	t := v.at(start)
	switch {
	case t.Kind == token.Subst:
		return map[string]string{"op": "subst"}, true
	case t.Kind == token.Trans:
		return map[string]string{"op": "trans"}, true
	case t.Kind == token.Match:
		return map[string]string{"op": "match"}, true
	case t.Kind == token.QuoteRegex:
		return map[string]string{"op": "qr"}, true
	case t.Is("split"):
		return map[string]string{"op": "split"}, true
	}
	return nil, false
}

var collectionOps = map[string]struct{}{
	"push": {}, "unshift": {}, "pop": {}, "shift": {}, "splice": {}, "delete": {}, "exists": {},
}

func matchCollection(v *view) (map[string]string, bool) {
	w := v.word(0)
	if _, ok := collectionOps[w]; ok {
		return map[string]string{"op": w}, true
	}
	first, second := v.at(0), v.at(1)
	ai := v.topLevel(0, func(t token.Token) bool {
		return t.Kind == token.Assign || t.Kind == token.OpAssign || t.Kind == token.Incr || t.Kind == token.Decr
	})
	if ai <= 1 {
		return nil, false
	}
	switch {
	case first.Kind == token.Scalar && (second.Kind == token.LBracket || second.Kind == token.LBrace || second.Kind == token.Arrow) && !second.Spaced:
		return map[string]string{"op": "element"}, true
	case first.Kind == token.Array && (second.Kind == token.LBrace || second.Kind == token.LBracket) && !second.Spaced:
		return map[string]string{"op": "slice"}, true
	case first.Kind == token.Cast:
		return map[string]string{"op": "deref"}, true
	}
	return nil, false
}

func matchVariable(v *view) (map[string]string, bool) {
	switch w := v.word(0); w {
	case "my", "our", "local", "state":
		return map[string]string{"decl": w}, true
	}
	first, second := v.at(0), v.at(1)
	switch first.Kind {
	case token.Scalar, token.Array, token.Hash:
		switch second.Kind {
		case token.Assign, token.OpAssign, token.Incr, token.Decr:
			return map[string]string{"decl": ""}, true
		}
	case token.Incr, token.Decr:
		if second.Kind == token.Scalar {
			return map[string]string{"decl": ""}, true
		}
	case token.LParen:
		if ai := v.assignIndex(); ai > 0 && v.at(ai-1).Kind == token.RParen {
			return map[string]string{"decl": "", "list": "1"}, true
		}
	}
	return nil, false
}

func matchFunctionCall(v *view) (map[string]string, bool) {
	first := v.at(0)
	switch first.Kind {
	case token.Ident:
		if v.at(1).Kind == token.Arrow {
			return map[string]string{"name": first.Text, "method": v.word(2)}, true
		}
		return map[string]string{"name": first.Text}, true
	case token.FuncRef:
		return map[string]string{"name": first.Text}, true
	case token.Scalar:
		if v.at(1).Kind == token.Arrow {
			return map[string]string{"name": "$" + first.Text, "method": v.word(2)}, true
		}
	case token.Cast:
		if first.Text == "&" {
			return map[string]string{"name": "&"}, true
		}
	}
	return nil, false
}

func matchLiteral(v *view) (map[string]string, bool) {
	if len(v.toks) != 1 {
		return nil, false
	}
	switch v.toks[0].Kind {
	case token.Number, token.String, token.Interp, token.Words:
		return map[string]string{"value": v.text(0, 1)}, true
	}
	return nil, false
}
