package construct

import "testing"

func TestKindStringsAreDistinct(t *testing.T) {
	seen := map[string]Kind{}
	for _, k := range Kinds() {
		name := k.String()
		if name == "" || name == "Kind(?)" {
			t.Fatalf("kind %d has no name", k)
		}
		if prev, ok := seen[name]; ok {
			t.Fatalf("kinds %d and %d share name %q", prev, k, name)
		}
		seen[name] = k
	}
	if KindCount.String() != "Kind(?)" {
		t.Fatalf("sentinel should not have a name")
	}
}
