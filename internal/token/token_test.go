package token

import "testing"

func TestEndsOperand(t *testing.T) {
	cases := []struct {
		tok  Token
		want bool
	}{
		{Token{Kind: Scalar, Text: "x"}, true},
		{Token{Kind: RParen}, true},
		{Token{Kind: Ident, Text: "split"}, false},
		{Token{Kind: Ident, Text: "foo"}, true},
		{Token{Kind: Comma}, false},
		{Token{Kind: Bind}, false},
	}
	for _, tc := range cases {
		if got := tc.tok.EndsOperand(); got != tc.want {
			t.Fatalf("%s %q: EndsOperand = %v, want %v", tc.tok.Kind, tc.tok.Text, got, tc.want)
		}
	}
}

func TestKindNames(t *testing.T) {
	for k := Invalid; k <= FileTest; k++ {
		if k.String() == "Kind(?)" {
			t.Fatalf("kind %d has no name", k)
		}
	}
}
