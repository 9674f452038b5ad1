package matcher

import (
	"strings"

	"perl2py/internal/construct"
	"perl2py/internal/token"
)

// absorbPrologue folds the parameter-unpacking statements directly after a
// named sub opener into it. It returns the index of the last segment taken.
func absorbPrologue(segs []segment, i int, src []byte, m *construct.Match) int {
	if !m.Opens || m.Group("name") == "" && m.Group("anon") == "" {
		return i
	}
	params := map[string]bool{}
	j := i + 1
	for ; j < len(segs); j++ {
		s := &segs[j]
		if s.kind != segStmt {
			break
		}
		v := newView(s, src)
		if !prologueStmt(v, params) {
			break
		}
		m.Prologue = append(m.Prologue, v.text(0, len(v.toks)))
		m.Span.End = s.end
		if len(s.comments) > 0 {
			if m.Trailing != "" {
				m.Trailing += "\n"
			}
			m.Trailing += strings.Join(s.comments, "\n")
		}
	}
	return j - 1
}

// prologueStmt accepts
//
//	my ($a, $b, @rest) = @_;
//	my $x = shift;  my $x = shift // D;  my $x = shift || D;
//	my $x = $_[N];
//	$x //= D;  $x ||= D;   (x already a parameter)
func prologueStmt(v *view, params map[string]bool) bool {
	if len(v.toks) < 3 {
		return false
	}
	if v.word(0) != "my" {
		t := v.at(0)
		if t.Kind == token.Scalar && params[t.Text] && v.at(1).Kind == token.OpAssign &&
			(v.at(1).Text == "//" || v.at(1).Text == "||") {
			return true
		}
		return false
	}

	if v.at(1).Kind == token.LParen {
		k := 2
		var names []string
		for ; k < len(v.toks) && v.toks[k].Kind != token.RParen; k++ {
			switch t := v.toks[k]; t.Kind {
			case token.Scalar, token.Array, token.Hash:
				names = append(names, t.Text)
			case token.Comma:
			default:
				return false
			}
		}
		if k+2 != len(v.toks)-1 || v.at(k+1).Kind != token.Assign {
			return false
		}
		last := v.at(k + 2)
		if last.Kind != token.Array || last.Text != "_" {
			return false
		}
		for _, n := range names {
			params[n] = true
		}
		return len(names) > 0
	}

	name := v.at(1)
	if name.Kind != token.Scalar || v.at(2).Kind != token.Assign {
		return false
	}
	rhs := v.toks[3:]
	switch {
	case len(rhs) >= 1 && rhs[0].Is("shift"):
		rest := rhs[1:]
		if len(rest) > 0 && rest[0].Kind == token.Array && rest[0].Text == "_" {
			rest = rest[1:]
		}
		if len(rest) != 0 && !(len(rest) >= 2 && (rest[0].Kind == token.DefinedOr || rest[0].Kind == token.OrOr)) {
			return false
		}
	case len(rhs) == 4 && rhs[0].Kind == token.Scalar && rhs[0].Text == "_" &&
		rhs[1].Kind == token.LBracket && rhs[2].Kind == token.Number && rhs[3].Kind == token.RBracket:
	default:
		return false
	}
	params[name.Text] = true
	return true
}
