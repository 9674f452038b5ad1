package normalize

import (
	"strings"

	"perl2py/internal/draft"
)

// stdlibModules are the modules translated code reaches as `mod.attr`.
var stdlibModules = []string{
	"argparse", "collections", "copy", "datetime", "fcntl", "fileinput",
	"functools", "glob", "itertools", "json", "math", "os", "pprint",
	"random", "re", "shutil", "signal", "subprocess", "sys", "tempfile", "time",
}

// fixImports imports every referenced standard module exactly once.
func fixImports(b *draft.Buffer) []Repair {
	var out []Repair
	// duplicates first
	seen := make(map[string]bool)
	for i := 0; i < len(b.Lines); i++ {
		l := b.Lines[i]
		if l.Role != draft.RoleImport || l.Blank() {
			continue
		}
		if seen[l.Text] {
			b.Lines = append(b.Lines[:i], b.Lines[i+1:]...)
			out = append(out, Repair{Message: "duplicate " + l.Text + " removed"})
			i--
			continue
		}
		seen[l.Text] = true
	}
	bound := boundNames(b)
	for _, mod := range stdlibModules {
		if _, shadowed := bound[mod]; shadowed || imported(b, mod) || !references(b, mod) {
			continue
		}
		b.AddImport("import " + mod)
		out = append(out, Repair{Message: "added import " + mod})
	}
	return out
}

func imported(b *draft.Buffer, mod string) bool {
	for _, l := range b.Lines {
		if l.Role != draft.RoleImport {
			continue
		}
		rest, ok := strings.CutPrefix(l.Text, "import ")
		if !ok {
			continue
		}
		for _, part := range strings.Split(rest, ",") {
			name := strings.Fields(part)
			if len(name) > 0 && (name[0] == mod || strings.HasPrefix(name[0], mod+".")) {
				return true
			}
		}
	}
	return false
}

func references(b *draft.Buffer, mod string) bool {
	for _, l := range b.Lines {
		if l.Role == draft.RoleImport || !isCode(l) {
			continue
		}
		if len(identUses(l.Text, mod, ".")) > 0 {
			return true
		}
	}
	return false
}
