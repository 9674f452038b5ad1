package diag

import (
	"testing"

	"perl2py/internal/source"
)

func TestBagLimitAndSeverity(t *testing.T) {
	b := NewBag(2)
	if b.MaxSeverity() != SevConverted {
		t.Fatalf("empty bag severity = %v", b.MaxSeverity())
	}
	if !b.Add(New(SevPartial, PrtFallback, source.Span{}, "a")) {
		t.Fatalf("first add rejected")
	}
	b.Add(New(SevUnrecognized, UnrConstruct, source.Span{}, "b"))
	if b.Add(New(SevError, IOStructural, source.Span{}, "c")) {
		t.Fatalf("add past limit accepted")
	}
	if b.MaxSeverity() != SevUnrecognized || b.HasErrors() {
		t.Fatalf("unexpected severity %v", b.MaxSeverity())
	}
	if got := b.Filter(SevUnrecognized).Len(); got != 1 {
		t.Fatalf("filter kept %d", got)
	}
	if b.Count(SevPartial) != 1 {
		t.Fatalf("count partial = %d", b.Count(SevPartial))
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevPartial, PrtFallback, source.Span{Start: 10, End: 12}, "x"))
	b.Add(New(SevPartial, PrtFallback, source.Span{Start: 0, End: 2}, "y"))
	b.Add(New(SevPartial, PrtFallback, source.Span{Start: 10, End: 12}, "x"))
	b.Dedup()
	b.Sort()
	if b.Len() != 2 || b.Items()[0].Message != "y" {
		t.Fatalf("unexpected items %+v", b.Items())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	ReportPartial(r, PrtResidue, source.Span{Start: 1, End: 2}, "dup").Emit()
	ReportPartial(r, PrtResidue, source.Span{Start: 1, End: 2}, "dup").Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		CvtConstruct: "CVT1001",
		PrtFallback:  "PRT2001",
		UnrModule:    "UNR3002",
		VerSyntax:    "VER4001",
		NrmShim:      "NRM5005",
		DiaNotPerl:   "DIA6001",
		IOStructural: "IO7002",
	}
	for c, want := range cases {
		if c.ID() != want {
			t.Fatalf("%d: got %s want %s", c, c.ID(), want)
		}
	}
	if _, err := ParseSeverity("bogus"); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
}
