package lexer

import (
	"bytes"
	"strings"

	"perl2py/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
//   - ' ' и '\t' коалесцируются в один TriviaSpace
//   - каждый '\n' отдельный TriviaNewline; after it pending heredoc bodies are read
//   - '#' до \n -> TriviaComment
//   - in program mode, '=word' at line start up to '=cut' -> TriviaPOD and
//     __END__ / __DATA__ -> TriviaEnd (rest of input)
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Off
		b := lx.cursor.Peek()

		if lx.opts.Program && lx.cursor.AtLineStart() {
			if b == '=' && isIdentStartByte(lx.cursor.PeekAt(1)) {
				lx.scanPOD()
				lx.push(token.TriviaPOD, start)
				continue
			}
			if b == '_' && lx.atEndMarker() {
				lx.cursor.Off = lx.cursor.Limit
				lx.push(token.TriviaEnd, start)
				continue
			}
		}

		switch {
		case isSpace(b):
			for isSpace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.push(token.TriviaSpace, start)
		case b == '\n':
			lx.cursor.Bump()
			lx.push(token.TriviaNewline, start)
			if lx.opts.Program && len(lx.pending) > 0 {
				lx.readHeredocBodies()
			}
		case b == '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.push(token.TriviaComment, start)
		default:
			return
		}
	}
}

func (lx *Lexer) push(kind token.TriviaKind, start uint32) {
	lx.hold = append(lx.hold, token.Trivia{
		Kind:  kind,
		Start: start,
		End:   lx.cursor.Off,
		Text:  string(lx.src[start:lx.cursor.Off]),
	})
}

// scanPOD consumes lines up to and including the =cut line.
func (lx *Lexer) scanPOD() {
	for !lx.cursor.EOF() {
		line := lx.currentLine()
		lx.skipLine()
		if bytes.HasPrefix(line, []byte("=cut")) && (len(line) == 4 || !isIdentContinueByte(line[4])) {
			return
		}
	}
}

func (lx *Lexer) atEndMarker() bool {
	line := strings.TrimRight(string(lx.currentLine()), " \t")
	return line == "__END__" || line == "__DATA__"
}

// currentLine returns the bytes from the cursor to the next newline.
func (lx *Lexer) currentLine() []byte {
	rest := lx.src[lx.cursor.Off:lx.cursor.Limit]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		return rest[:i]
	}
	return rest
}

func (lx *Lexer) skipLine() {
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() == '\n' {
			return
		}
	}
}

// readHeredocBodies consumes the bodies of every heredoc opened on the line
// that just ended, each as its own TriviaHeredoc.
func (lx *Lexer) readHeredocBodies() {
	pending := lx.pending
	lx.pending = nil
	for _, idx := range pending {
		h := &lx.heredocs[idx]
		start := lx.cursor.Off
		h.Start = start
		var lines []string
		for !lx.cursor.EOF() {
			line := string(lx.currentLine())
			lx.skipLine()
			check := line
			if h.Indented {
				check = strings.TrimLeft(line, " \t")
			}
			if check == h.Tag {
				h.Terminated = true
				if h.Indented {
					indent := line[:len(line)-len(check)]
					for i, l := range lines {
						lines[i] = strings.TrimPrefix(l, indent)
					}
				}
				break
			}
			lines = append(lines, line)
		}
		if !h.Terminated {
			lx.report("heredoc", start, "unterminated here-document "+h.Tag)
		}
		if len(lines) > 0 {
			h.Body = strings.Join(lines, "\n") + "\n"
		}
		h.End = lx.cursor.Off
		lx.push(token.TriviaHeredoc, start)
	}
}
