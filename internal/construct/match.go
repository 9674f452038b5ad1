package construct

import "perl2py/internal/source"

// Heredoc is a here-document body attached to the statement that opened it.
type Heredoc struct {
	Tag         string
	Body        string
	Interpolate bool
	Indented    bool // <<~TAG
	// Placeholder is the token substituted into Match.Text for the <<TAG operator.
	Placeholder string
}

// Match is one classified region of a source unit. Matches of one unit tile
// the whole source in order and are consumed exactly once by the orchestrator.
type Match struct {
	Span source.Span
	// Line is the 1-based line of the first code byte (after leading trivia).
	Line uint32
	Kind Kind
	// Rule names the precedence entry that classified the region.
	Rule string
	// Text is the code with comments and surrounding trivia removed.
	Text string
	// Trailing is a same-line `# comment` that followed the code, if any.
	Trailing string
	Groups   map[string]string
	Heredocs []Heredoc

	// Pair is the index of the matching opener/closer, -1 when none. A closer
	// that reopens (`} else {`) points at the closer of the block it opens.
	Pair   int
	Opens  bool
	Closes bool
	// PostTest holds the `while (...)`/`until (...)` carried by the closer of a
	// do-block, copied onto the opener.
	PostTest string
	// UsesArgs is set on sub openers whose body refers to @_ or shift.
	UsesArgs bool
	// Prologue holds parameter-unpacking statements absorbed into a sub opener.
	Prologue []string
}

// Group returns a captured sub-group or "".
func (m *Match) Group(name string) string {
	if m == nil || m.Groups == nil {
		return ""
	}
	return m.Groups[name]
}

// IsTrivia reports whether the match carries no code (blank or comment only).
func (m *Match) IsTrivia() bool {
	return m.Kind == Comment
}
