package testkit

import (
	"testing"

	"perl2py/internal/construct"
	"perl2py/internal/matcher"
	"perl2py/internal/source"
)

func TestMatcherSatisfiesInvariants(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("unit.pl", []byte("#!/usr/bin/perl\nuse strict;\n\nif ($x) {\n    print \"yes\\n\";\n} else {\n    print <<EOT;\nbody\nEOT\n}\n")))
	if err := CheckMatchInvariants(matcher.Match(f), f); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestDetectsGap(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("unit.pl", []byte("$i++;\n")))
	res := matcher.Match(f)
	res.Matches[0].Span.Start = 1
	if err := CheckMatchInvariants(res, f); err == nil {
		t.Fatalf("gap not detected")
	}
}

func TestDetectsSelfPair(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("unit.pl", []byte("$i++;\n")))
	res := &matcher.Result{Matches: []construct.Match{{
		Span: source.Span{File: f.ID, End: 6},
		Line: 1,
		Pair: 0,
	}}}
	if err := CheckMatchInvariants(res, f); err == nil {
		t.Fatalf("self pair not detected")
	}
}
