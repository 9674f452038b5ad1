package translate

import (
	"fmt"
	"strings"

	"perl2py/internal/token"
)

// optSpec is one Getopt::Long option specification ("file|f=s@").
type optSpec struct {
	names    []string
	kind     byte // 0 flag, '=' required value, ':' optional value, '!' negatable, '+' counter
	typ      byte // s i f o
	multiple bool
}

func parseOptSpec(spec string) (optSpec, error) {
	var o optSpec
	cut := strings.IndexAny(spec, "=:!+")
	names := spec
	if cut >= 0 {
		names = spec[:cut]
		o.kind = spec[cut]
		rest := spec[cut+1:]
		if o.kind == '=' || o.kind == ':' {
			if rest == "" {
				return o, fmt.Errorf("%w: option spec %q", errUnsupported, spec)
			}
			o.typ = rest[0]
			rest = rest[1:]
		}
		switch rest {
		case "":
		case "@":
			o.multiple = true
		default:
			return o, fmt.Errorf("%w: option spec %q", errUnsupported, spec)
		}
	}
	for _, n := range strings.Split(names, "|") {
		if n != "" {
			o.names = append(o.names, n)
		}
	}
	if len(o.names) == 0 {
		return o, fmt.Errorf("%w: option spec %q", errUnsupported, spec)
	}
	return o, nil
}

// addArgument renders the argparse call for one option.
func (o optSpec) addArgument(dest, def string) string {
	var args []string
	for _, n := range o.names {
		if len(n) == 1 {
			args = append(args, pyQuote("-"+n, '"'))
		} else {
			args = append(args, pyQuote("--"+n, '"'))
		}
	}
	args = append(args, "dest="+pyQuote(dest, '"'))
	switch o.kind {
	case 0:
		args = append(args, `action="store_true"`)
	case '!':
		args = append(args, "action=argparse.BooleanOptionalAction")
	case '+':
		args = append(args, `action="count"`)
	case '=', ':':
		switch o.typ {
		case 'i', 'o':
			args = append(args, "type=int")
		case 'f':
			args = append(args, "type=float")
		}
		if o.kind == ':' {
			args = append(args, `nargs="?"`)
			if o.typ == 's' {
				args = append(args, `const=""`)
			} else {
				args = append(args, "const=0")
			}
		}
		if o.multiple {
			args = append(args, `action="append"`)
		}
	}
	if def != "" {
		args = append(args, "default="+def)
	}
	return "arg_parser.add_argument(" + strings.Join(args, ", ") + ")"
}

// getOptions renders GetOptions(...) as an argparse parser. Each target
// variable keeps its previous value as the default.
func (t *tx) getOptions(toks []token.Token) ([]Line, error) {
	// targets are passed as references; the names are what matters
	plain := make([]token.Token, 0, len(toks))
	for i, tok := range toks {
		if tok.Kind == token.Backslash && i+1 < len(toks) {
			continue
		}
		plain = append(plain, tok)
	}
	p := newParser(t, plain)
	parens := p.accept(token.LParen)
	items, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if parens {
		if err := p.expect(token.RParen); err != nil {
			return nil, err
		}
	}
	if !p.atEnd() {
		return nil, p.unexpected("end of GetOptions")
	}
	var store string
	if len(items) > 0 && !items[0].isStringLit() {
		store = items[0].text
		items = items[1:]
	}
	t.need("argparse")
	lines := []Line{line(0, "arg_parser = argparse.ArgumentParser()")}
	var assigns []Line
	for i := 0; i < len(items); i++ {
		if !items[i].isStringLit() {
			return nil, fmt.Errorf("%w: computed option spec", errUnsupported)
		}
		o, err := parseOptSpec(items[i].literal())
		if err != nil {
			return nil, err
		}
		dest := pyIdent(strings.ReplaceAll(o.names[0], "-", "_"))
		def := ""
		if i+1 < len(items) && !items[i+1].isStringLit() {
			target := items[i+1]
			i++
			if target.name == "" {
				return nil, fmt.Errorf("%w: option target %s", errUnsupported, target.text)
			}
			dest, def = target.name, target.name
			if target.shape == shapeList {
				o.multiple = true
			}
			assigns = append(assigns, line(0, "%s = parsed_args.%s", target.name, dest))
		} else if store == "" {
			return nil, fmt.Errorf("%w: option %q without a target", errUnsupported, o.names[0])
		}
		lines = append(lines, line(0, o.addArgument(dest, def)))
	}
	lines = append(lines, line(0, "parsed_args = arg_parser.parse_args()"))
	if store != "" {
		lines = append(lines, line(0, "%s.update({k: v for k, v in vars(parsed_args).items() if v is not None})", store))
	}
	return append(lines, assigns...), nil
}
