package matcher

import (
	"strings"

	"perl2py/internal/lexer"
	"perl2py/internal/token"
)

type segKind uint8

const (
	segStmt segKind = iota
	segOpen
	segClose
	segBlank
	segComment
	segPOD
	segEnd
)

// segment is one tile of the source before classification.
type segment struct {
	kind      segKind
	start     uint32
	end       uint32
	codeStart uint32
	toks      []token.Token
	comments  []string
	// closers: the continuation word (else, elsif, continue, while, until,
	// or-do) and whether the closer opens a new block.
	cont     string
	reopens  bool
	prologue []string
}

// segmenter splits a token stream into statement, block and trivia tiles.
// Leading trivia belongs to the next tile; after a terminator the rest of
// the line (spaces, a trailing comment, the newline and any here-document
// bodies it releases) stays with the finished tile.
type segmenter struct {
	src   []byte
	lx    *lexer.Lexer
	queue []token.Token
	segs  []segment

	pos   uint32
	cur   *segment
	trail int
	paren int
	brace int
	// open block stack; true marks a do-block
	blocks []bool
}

func newSegmenter(src []byte, rep lexer.Reporter) *segmenter {
	return &segmenter{
		src:   src,
		lx:    lexer.New(src, lexer.Options{Program: true, Reporter: rep}),
		trail: -1,
	}
}

func (s *segmenter) next() token.Token {
	if len(s.queue) > 0 {
		t := s.queue[0]
		s.queue = s.queue[1:]
		return t
	}
	return s.lx.Next()
}

func (s *segmenter) peek(n int) token.Token {
	for len(s.queue) <= n {
		s.queue = append(s.queue, s.lx.Next())
	}
	return s.queue[n]
}

func (s *segmenter) run() []segment {
	for {
		tok := s.next()
		if s.cur != nil {
			atCloser := tok.Kind == token.RBrace && s.paren == 0 && s.brace == 0
			if atCloser || tok.Kind == token.EOF {
				s.finishStmt()
			}
		}
		s.absorbLeading(tok)
		if tok.Kind == token.EOF {
			break
		}
		s.feed(tok)
	}
	s.finalize()
	return s.segs
}

func (s *segmenter) absorbLeading(tok token.Token) {
	triv := tok.Leading
	if s.cur != nil {
		for _, t := range triv {
			if t.Kind == token.TriviaComment {
				s.cur.comments = append(s.cur.comments, t.Text)
			}
		}
		return
	}
	i := 0
	if s.trail >= 0 {
		i = s.takeTrailing(triv)
		s.trail = -1
	}
	for ; i < len(triv); i++ {
		t := triv[i]
		switch t.Kind {
		case token.TriviaSpace:
		case token.TriviaNewline:
			s.emitTrivia(segBlank, t.End, "")
		case token.TriviaComment:
			end := t.End
			if i+1 < len(triv) && triv[i+1].Kind == token.TriviaNewline {
				end = triv[i+1].End
				i++
			}
			s.emitTrivia(segComment, end, t.Text)
		case token.TriviaPOD:
			s.emitTrivia(segPOD, t.End, t.Text)
		case token.TriviaEnd:
			s.emitTrivia(segEnd, t.End, t.Text)
		case token.TriviaHeredoc:
			if n := len(s.segs); n > 0 {
				s.segs[n-1].end = t.End
				s.pos = t.End
			}
		}
	}
}

// takeTrailing commits the rest of the finished tile's line and returns the
// index of the first trivia it did not take.
func (s *segmenter) takeTrailing(triv []token.Trivia) int {
	seg := &s.segs[s.trail]
	var comment string
	commit := -1
	j := 0
loop:
	for ; j < len(triv); j++ {
		switch triv[j].Kind {
		case token.TriviaSpace:
		case token.TriviaComment:
			comment = triv[j].Text
			commit = j
		case token.TriviaNewline:
			commit = j
			for j+1 < len(triv) && triv[j+1].Kind == token.TriviaHeredoc {
				j++
				commit = j
			}
			break loop
		default:
			break loop
		}
	}
	if commit < 0 {
		return 0
	}
	if comment != "" {
		seg.comments = append(seg.comments, comment)
	}
	seg.end = triv[commit].End
	s.pos = seg.end
	return commit + 1
}

func (s *segmenter) emitTrivia(kind segKind, end uint32, text string) {
	seg := segment{kind: kind, start: s.pos, end: end, codeStart: s.pos}
	for seg.codeStart < end && (s.src[seg.codeStart] == ' ' || s.src[seg.codeStart] == '\t') {
		seg.codeStart++
	}
	if text != "" {
		seg.comments = []string{text}
	}
	s.segs = append(s.segs, seg)
	s.pos = end
}

func (s *segmenter) feed(tok token.Token) {
	if s.cur == nil {
		if tok.Kind == token.RBrace {
			s.closer(tok)
			return
		}
		s.cur = &segment{kind: segStmt, start: s.pos, codeStart: tok.Pos}
		s.paren, s.brace = 0, 0
	}

	switch tok.Kind {
	case token.LParen, token.LBracket:
		s.paren++
	case token.RParen, token.RBracket:
		if s.paren > 0 {
			s.paren--
		}
	case token.LBrace:
		if s.paren == 0 && s.brace == 0 && isBlockOpener(s.cur.toks) {
			s.cur.toks = append(s.cur.toks, tok)
			s.cur.kind = segOpen
			s.blocks = append(s.blocks, len(s.cur.toks) == 2 && s.cur.toks[0].Is("do"))
			s.finishStmt()
			return
		}
		s.brace++
	case token.RBrace:
		if s.brace > 0 {
			s.brace--
		}
	case token.Semicolon:
		if s.paren == 0 && s.brace == 0 {
			s.cur.toks = append(s.cur.toks, tok)
			s.finishStmt()
			return
		}
	}
	s.cur.toks = append(s.cur.toks, tok)
}

func (s *segmenter) finishStmt() {
	seg := s.cur
	s.cur = nil
	if seg == nil || len(seg.toks) == 0 {
		return
	}
	seg.end = seg.toks[len(seg.toks)-1].End
	s.segs = append(s.segs, *seg)
	s.trail = len(s.segs) - 1
	s.pos = seg.end
}

// closer reads a block-closing brace plus its continuation.
func (s *segmenter) closer(tok token.Token) {
	seg := segment{kind: segClose, start: s.pos, codeStart: tok.Pos, toks: []token.Token{tok}}
	wasDo := false
	if n := len(s.blocks); n > 0 {
		wasDo = s.blocks[n-1]
		s.blocks = s.blocks[:n-1]
	}

	take := func() {
		t := s.next()
		for _, tr := range t.Leading {
			if tr.Kind == token.TriviaComment {
				seg.comments = append(seg.comments, tr.Text)
			}
		}
		seg.toks = append(seg.toks, t)
	}
	opensAfter := func() {
		if s.peek(0).Kind == token.LBrace {
			take()
			seg.reopens = true
			s.blocks = append(s.blocks, false)
		}
	}

	t1 := s.peek(0)
	switch {
	case t1.Is("else") || t1.Is("continue"):
		seg.cont = t1.Text
		take()
		opensAfter()
	case t1.Is("elsif"):
		seg.cont = "elsif"
		take()
		if s.peek(0).Kind == token.LParen {
			depth := 0
			for {
				t := s.peek(0)
				if t.Kind == token.EOF {
					break
				}
				take()
				if t.Kind == token.LParen {
					depth++
				} else if t.Kind == token.RParen {
					depth--
					if depth == 0 {
						break
					}
				}
			}
		}
		opensAfter()
	case wasDo && (t1.Is("while") || t1.Is("until")):
		seg.cont = t1.Text
		depth := 0
		for {
			t := s.peek(0)
			if t.Kind == token.EOF || t.Kind == token.RBrace && depth == 0 {
				break
			}
			take()
			switch t.Kind {
			case token.LParen, token.LBracket, token.LBrace:
				depth++
			case token.RParen, token.RBracket, token.RBrace:
				depth--
			}
			if t.Kind == token.Semicolon && depth == 0 {
				break
			}
		}
	case (t1.Is("or") || t1.Kind == token.OrOr) && s.peek(1).Is("do") && s.peek(2).Kind == token.LBrace:
		seg.cont = "or-do"
		take()
		take()
		opensAfter()
	case t1.Kind == token.Semicolon:
		take()
	}

	seg.end = seg.toks[len(seg.toks)-1].End
	s.segs = append(s.segs, seg)
	s.trail = len(s.segs) - 1
	s.pos = seg.end
}

func (s *segmenter) finalize() {
	limit := uint32(len(s.src)) // #nosec G115 -- the lexer already checked the length
	if s.pos >= limit {
		return
	}
	if n := len(s.segs); n > 0 {
		s.segs[n-1].end = limit
	} else {
		s.segs = append(s.segs, segment{kind: segBlank, start: s.pos, end: limit, codeStart: s.pos})
	}
	s.pos = limit
}

// isBlockOpener decides whether a '{' at statement level, preceded by toks,
// opens a block rather than an expression (anon hash, subscript, map block).
func isBlockOpener(toks []token.Token) bool {
	n := len(toks)
	if n == 0 {
		return true
	}
	k := 0
	if n >= 2 && toks[0].Kind == token.Ident && toks[1].Kind == token.Colon && isLabel(toks[0].Text) {
		k = 2
	}
	if k < n && toks[k].Kind == token.Ident {
		switch toks[k].Text {
		case "if", "elsif", "unless", "while", "until", "for", "foreach":
			return toks[n-1].Kind == token.RParen
		case "else", "continue", "do", "eval", "BEGIN", "END", "INIT", "CHECK", "UNITCHECK":
			if n == k+1 {
				return true
			}
		case "sub":
			if n >= k+2 && (toks[n-1].Kind == token.Ident || toks[n-1].Kind == token.RParen) {
				return true
			}
		case "package":
			if n == k+2 {
				return true
			}
		}
	}
	last := toks[n-1]
	return last.Is("sub") || last.Is("do") || last.Is("eval")
}

func isLabel(s string) bool {
	if s == "" || strings.ToUpper(s) != s {
		return false
	}
	return s[0] < '0' || s[0] > '9'
}
