package dialect

import (
	"testing"

	"perl2py/internal/source"
)

func classify(t *testing.T, src string) Classification {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("unit", []byte(src)))
	return Classifier{}.Classify(Scan(f))
}

func TestClassifyPerl(t *testing.T) {
	c := classify(t, "use strict;\nmy $x = shift;\nforeach my $y (@list) {\n    $x =~ s/a/b/;\n}\n")
	if c.Kind != Perl {
		t.Fatalf("kind = %v, want perl (%+v)", c.Kind, c)
	}
	if c.LooksForeign() {
		t.Fatalf("perl unit reported as foreign: %+v", c)
	}
}

func TestClassifyPython(t *testing.T) {
	c := classify(t, "import os\n\ndef main():\n    if x is None:\n        return True\n    elif y:\n        return False\n")
	if c.Kind != Python {
		t.Fatalf("kind = %v, want python (%+v)", c.Kind, c)
	}
	if !c.LooksForeign() {
		t.Fatalf("python unit not reported: %+v", c)
	}
	if c.Describe() == "" {
		t.Fatalf("empty description")
	}
}

func TestClassifyEmpty(t *testing.T) {
	c := Classifier{}.Classify(NewEvidence())
	if c.Kind != Unknown || c.LooksForeign() {
		t.Fatalf("empty evidence: %+v", c)
	}
}
