package translate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"perl2py/internal/construct"
	"perl2py/internal/rules"
)

func newTestTx() *tx {
	return newTx(&construct.Match{Pair: -1}, NewEnv(rules.Defaults(), nil))
}

func TestLineResidue(t *testing.T) {
	cases := []struct {
		line string
		bad  bool
	}{
		{"x = y", false},
		{"x = $y", true},
		{`print("cost: $5")`, false},
		{"# $y was here", false},
		{"a = b->c", true},
		{"os.path.join(a, b)", false},
		{"Foo::Bar.new()", true},
		{"if x =~ y:", true},
		{`s = """$x"""`, false},
		{"items = @list", true},
		{"total = a @ b", false},
	}
	for _, tc := range cases {
		if _, bad := lineResidue(tc.line); bad != tc.bad {
			t.Fatalf("lineResidue(%q) = %v, want %v", tc.line, bad, tc.bad)
		}
	}
}

func TestPlusOne(t *testing.T) {
	cases := []struct {
		in   value
		want string
	}{
		{atom("10"), "11"},
		{value{text: "n - 1", prec: pyAdd}, "n"},
		{atom("n"), "n + 1"},
		{value{text: "a if b else c", prec: pyTernary}, "(a if b else c) + 1"},
	}
	for _, tc := range cases {
		if got := plusOne(tc.in); got != tc.want {
			t.Fatalf("plusOne(%q) = %q, want %q", tc.in.text, got, tc.want)
		}
	}
}

func TestParseOptSpec(t *testing.T) {
	cases := []struct {
		spec string
		want optSpec
	}{
		{"verbose", optSpec{names: []string{"verbose"}}},
		{"file|f=s", optSpec{names: []string{"file", "f"}, kind: '=', typ: 's'}},
		{"count:i", optSpec{names: []string{"count"}, kind: ':', typ: 'i'}},
		{"color!", optSpec{names: []string{"color"}, kind: '!'}},
		{"v+", optSpec{names: []string{"v"}, kind: '+'}},
		{"lib=s@", optSpec{names: []string{"lib"}, kind: '=', typ: 's', multiple: true}},
	}
	for _, tc := range cases {
		got, err := parseOptSpec(tc.spec)
		if err != nil {
			t.Fatalf("parseOptSpec(%q): %v", tc.spec, err)
		}
		if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(optSpec{})); diff != "" {
			t.Fatalf("parseOptSpec(%q) mismatch (-want +got):\n%s", tc.spec, diff)
		}
	}
	if _, err := parseOptSpec("=s"); err == nil {
		t.Fatalf("spec without a name accepted")
	}
	if _, err := parseOptSpec("x=s%"); err == nil {
		t.Fatalf("hash-valued spec accepted")
	}
}

func TestAddArgument(t *testing.T) {
	o, _ := parseOptSpec("verbose|v")
	got := o.addArgument("verbose", "verbose")
	want := `arg_parser.add_argument("--verbose", "-v", dest="verbose", action="store_true", default=verbose)`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
	o, _ = parseOptSpec("size=i")
	got = o.addArgument("size", "")
	want = `arg_parser.add_argument("--size", dest="size", type=int)`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestGetOptionsStatement(t *testing.T) {
	tx := newTestTx()
	lines, err := tx.statement(`GetOptions("verbose!" => \$verbose, "name=s" => \$name) or die "usage\n";`)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	want := []string{
		"arg_parser = argparse.ArgumentParser()",
		`arg_parser.add_argument("--verbose", dest="verbose", action=argparse.BooleanOptionalAction, default=verbose)`,
		`arg_parser.add_argument("--name", dest="name", default=name)`,
		"parsed_args = arg_parser.parse_args()",
		"verbose = parsed_args.verbose",
		"name = parsed_args.name",
	}
	got := make([]string, 0, len(lines))
	for _, l := range lines {
		got = append(got, l.Text)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("GetOptions mismatch (-want +got):\n%s", diff)
	}
	if _, ok := tx.imports["import argparse"]; !ok {
		t.Fatalf("argparse import not recorded: %v", tx.imports)
	}
}

func TestExpandTr(t *testing.T) {
	got, err := expandTr("a-e")
	if err != nil || got != "abcde" {
		t.Fatalf("expandTr(a-e) = %q, %v", got, err)
	}
}

func TestPyIdent(t *testing.T) {
	cases := map[string]string{
		"name":       "name",
		"class":      "class_",
		"Foo::bar":   "Foo_bar",
		"main::init": "init",
		"str":        "str_",
		"list":       "list_",
		"re":         "re_",
	}
	for in, want := range cases {
		if got := pyIdent(in); got != want {
			t.Fatalf("pyIdent(%q) = %q, want %q", in, got, want)
		}
	}
}
