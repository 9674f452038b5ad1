package draft

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestAddImportSorted(t *testing.T) {
	b := New(4)
	b.Append(
		Line{Text: "#!/usr/bin/env python3", Role: RoleHeader},
		Line{Text: "x = 1"},
	)
	assert.True(t, b.AddImport("import sys"))
	assert.True(t, b.AddImport("import os"))
	assert.True(t, b.AddImport("import re"))
	assert.False(t, b.AddImport("import os"), "duplicate import added")

	want := "#!/usr/bin/env python3\nimport os\nimport re\nimport sys\n\nx = 1\n"
	if diff := cmp.Diff(want, b.Render()); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"import os", "import re", "import sys"}, nonBlank(b.Imports()))
	assert.Equal(t, 5, b.AfterImports())
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestRenderDepths(t *testing.T) {
	b := New(4)
	b.Append(
		Line{Text: "if x:"},
		Line{Text: "y = 1", Depth: 1},
		Line{Text: "", Depth: 1},
		Line{Text: "\"\"\"\ndoc\n\"\"\"", Depth: 1},
	)
	want := "if x:\n    y = 1\n\n    \"\"\"\ndoc\n\"\"\"\n"
	if got := b.Render(); got != want {
		t.Fatalf("render:\n%q\nwant\n%q", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New(2)
	b.Append(Line{Text: "a = 1"})
	c := b.Clone()
	c.Lines[0].Text = "a = 2"
	assert.Equal(t, "a = 1", b.Lines[0].Text)
	assert.Equal(t, 2, c.IndentWidth)
}

func TestSortImports(t *testing.T) {
	got := SortImports([]string{"import sys", "", "from pathlib import Path", "import os", "import sys"})
	assert.Equal(t, []string{"from pathlib import Path", "import os", "import sys"}, got)
}

func TestLineAtSkipsDocstringRows(t *testing.T) {
	b := New(4)
	b.Append(
		Line{Text: "\"\"\"\ndoc\n\"\"\"", Src: 1},
		Line{Text: "x = 1", Src: 5},
	)
	l, ok := b.LineAt(1)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), l.Src)
	l, ok = b.LineAt(3)
	assert.True(t, ok)
	assert.Equal(t, uint32(5), l.Src)
	_, ok = b.LineAt(4)
	assert.False(t, ok)
}
