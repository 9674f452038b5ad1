package translate

import "strings"

// residue scans rendered lines for Perl syntax outside string literals and
// comments: sigiled names, =~ / !~, -> and Package::Name. It returns the
// offending fragment.
func residue(lines []Line) (string, bool) {
	for _, l := range lines {
		if frag, ok := lineResidue(l.Text); ok {
			return frag, true
		}
	}
	return "", false
}

func lineResidue(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '#':
			// comment to end of line
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case c == '"' || c == '\'':
			i = skipPyString(s, i) - 1
		case c == '$' && i+1 < len(s) && (isWordStart(s[i+1]) || s[i+1] == '{'):
			return fragment(s, i), true
		case c == '@' && i+1 < len(s) && (isWordStart(s[i+1]) || s[i+1] == '{' || s[i+1] == '$'):
			return fragment(s, i), true
		case (c == '=' || c == '!') && i+1 < len(s) && s[i+1] == '~':
			return fragment(s, i), true
		case c == '-' && i+1 < len(s) && s[i+1] == '>':
			return fragment(s, i), true
		case c == ':' && i > 0 && i+2 < len(s) && s[i+1] == ':' && isWordByte(s[i-1]) && isWordStart(s[i+2]):
			return fragment(s, i), true
		}
	}
	return "", false
}

// skipPyString returns the index after the string literal starting at i.
func skipPyString(s string, i int) int {
	q := s[i]
	triple := strings.Repeat(string(q), 3)
	if strings.HasPrefix(s[i:], triple) {
		if end := strings.Index(s[i+3:], triple); end >= 0 {
			return i + 3 + end + 3
		}
		return len(s)
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			// a backslash shields the next byte, raw strings included
			j++
		case q:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(s)
}

func fragment(s string, i int) string {
	end := i + 16
	if end > len(s) {
		end = len(s)
	}
	return strings.TrimSpace(s[i:end])
}
