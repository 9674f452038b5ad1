package source

import "testing"

func TestSpanLen(t *testing.T) {
	s := Span{Start: 13, End: 17}
	if s.Start != 13 || s.End != 17 || s.Len() != 4 || s.Empty() {
		t.Fatalf("unexpected span %v", s)
	}
	if s.String() != "0:13-17" {
		t.Fatalf("String = %q", s.String())
	}
}
