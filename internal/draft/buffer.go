package draft

import (
	"sort"
	"strings"
)

// Role tells normalization passes what a line is for.
type Role uint8

const (
	RoleCode Role = iota
	RoleHeader
	RoleImport
	RoleShim
)

func (r Role) String() string {
	switch r {
	case RoleHeader:
		return "header"
	case RoleImport:
		return "import"
	case RoleShim:
		return "shim"
	default:
		return "code"
	}
}

// Line is one logical output line. Text never carries leading indentation;
// Depth is the block depth it renders at. A Text spanning several physical
// lines (a docstring) is indented on its first line only.
type Line struct {
	Text  string
	Depth int
	Role  Role
	// Src is the 1-based source line the text came from, 0 for generated lines.
	Src uint32
}

// Blank reports whether the line renders empty.
func (l Line) Blank() bool { return strings.TrimSpace(l.Text) == "" }

// Buffer is the draft of one output unit.
type Buffer struct {
	Lines []Line
	// IndentWidth is the number of spaces per depth level.
	IndentWidth int
}

// New returns an empty buffer rendering indentWidth spaces per level.
func New(indentWidth int) *Buffer {
	if indentWidth <= 0 {
		indentWidth = 4
	}
	return &Buffer{IndentWidth: indentWidth}
}

// Clone returns a deep copy; normalization works on its own copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{IndentWidth: b.IndentWidth, Lines: make([]Line, len(b.Lines))}
	copy(out.Lines, b.Lines)
	return out
}

// Append adds lines at the end.
func (b *Buffer) Append(lines ...Line) {
	b.Lines = append(b.Lines, lines...)
}

// Insert places lines before index i.
func (b *Buffer) Insert(i int, lines ...Line) {
	if i >= len(b.Lines) {
		b.Append(lines...)
		return
	}
	tail := append([]Line(nil), b.Lines[i:]...)
	b.Lines = append(append(b.Lines[:i], lines...), tail...)
}

// Imports returns the import lines in buffer order.
func (b *Buffer) Imports() []string {
	var out []string
	for _, l := range b.Lines {
		if l.Role == RoleImport {
			out = append(out, l.Text)
		}
	}
	return out
}

// HasImport reports whether the import block holds line.
func (b *Buffer) HasImport(line string) bool {
	for _, l := range b.Lines {
		if l.Role == RoleImport && l.Text == line {
			return true
		}
	}
	return false
}

// AddImport inserts line into the import block keeping it sorted. It
// reports false when the line is already there. A new block goes after the
// header and is followed by one blank line.
func (b *Buffer) AddImport(line string) bool {
	if b.HasImport(line) {
		return false
	}
	first, last := b.importRange()
	if first < 0 {
		at := b.headerEnd()
		b.Insert(at, Line{Text: line, Role: RoleImport}, Line{Role: RoleImport})
		return true
	}
	at := last
	for i := first; i < last; i++ {
		if b.Lines[i].Blank() {
			at = i
			break
		}
		if b.Lines[i].Text > line {
			at = i
			break
		}
	}
	b.Insert(at, Line{Text: line, Role: RoleImport})
	return true
}

// AfterImports returns the index of the first line past the header and the
// import block, blank separator included.
func (b *Buffer) AfterImports() int {
	_, last := b.importRange()
	if last >= 0 {
		return last
	}
	return b.headerEnd()
}

// importRange returns [first, last) of RoleImport lines, -1 when none.
func (b *Buffer) importRange() (int, int) {
	first, last := -1, -1
	for i, l := range b.Lines {
		if l.Role != RoleImport {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i + 1
	}
	return first, last
}

func (b *Buffer) headerEnd() int {
	i := 0
	for i < len(b.Lines) && b.Lines[i].Role == RoleHeader {
		i++
	}
	return i
}

// SortImports orders the non-blank import lines alphabetically, dropping
// duplicates.
func SortImports(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
