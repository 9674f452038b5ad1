package draft

import "strings"

// Writer accumulates rendered output and emits canonical indentation.
type Writer struct {
	buf         strings.Builder
	indentWidth int
}

// NewWriter creates a writer indenting indentWidth spaces per level.
func NewWriter(indentWidth int) *Writer {
	return &Writer{indentWidth: indentWidth}
}

// WriteLine writes text at depth followed by a newline. Empty text produces
// an empty line, never trailing whitespace.
func (w *Writer) WriteLine(depth int, text string) {
	text = strings.TrimRight(text, " \t")
	if text != "" && depth > 0 {
		w.buf.WriteString(strings.Repeat(" ", depth*w.indentWidth))
	}
	w.buf.WriteString(text)
	w.buf.WriteByte('\n')
}

// String returns the accumulated output.
func (w *Writer) String() string {
	return w.buf.String()
}

// Render returns the buffer as Python source text.
func (b *Buffer) Render() string {
	w := NewWriter(b.IndentWidth)
	for _, l := range b.Lines {
		w.WriteLine(l.Depth, l.Text)
	}
	return w.String()
}

// LineAt returns the draft line rendered at 0-based output row.
func (b *Buffer) LineAt(row int) (Line, bool) {
	if row < 0 {
		return Line{}, false
	}
	for _, l := range b.Lines {
		row -= strings.Count(l.Text, "\n") + 1
		if row < 0 {
			return l, true
		}
	}
	return Line{}, false
}
