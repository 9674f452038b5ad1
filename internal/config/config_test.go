package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAllFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"c.toml": `
[conversion_options]
emit_header = false

[module_mappings]
"Data::Dumper" = "import json"

[builtin_mappings.length]
template = "size({0})"
`,
		"c.json": `{
  "conversion_options": {"emit_header": false},
  "module_mappings": {"Data::Dumper": "import json"},
  "builtin_mappings": {"length": {"template": "size({0})"}}
}`,
		"c.yaml": `
conversion_options:
  emit_header: false
module_mappings:
  "Data::Dumper": import json
builtin_mappings:
  length:
    template: "size({0})"
`,
		"c.hcl": `
conversion_options {
  emit_header = false
}
module_mappings = {
  "Data::Dumper" = "import json"
}
builtin "length" {
  template = "size({0})"
}
`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, name, content)
			tbl, err := LoadTable(path)
			require.NoError(t, err)

			assert.False(t, tbl.Options().EmitHeader)
			assert.True(t, tbl.Options().PreserveComments, "unset option keeps default")

			line, ok := tbl.Module("Data::Dumper")
			require.True(t, ok)
			assert.Equal(t, "import json", line)
			line, _ = tbl.Module("Getopt::Long")
			assert.Equal(t, "import argparse", line)

			b, ok := tbl.Builtin("length")
			require.True(t, ok)
			assert.Equal(t, "size({0})", b.Template)
		})
	}
}

func TestUnknownFormatAndKeys(t *testing.T) {
	_, err := DetectFormat("rules.ini")
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	_, err = Decode([]byte("bogus_section = 1\n"), FormatTOML, "x.toml")
	assert.True(t, errors.Is(err, ErrUnknownKey), "got %v", err)

	_, err = Decode([]byte(`{"bogus": 1}`), FormatJSON, "x.json")
	assert.True(t, errors.Is(err, ErrUnknownKey), "got %v", err)
}

func TestResolveRejectsInvalid(t *testing.T) {
	f, err := Decode([]byte(`
[sigil_strategies."@"]
mode = "suffix"
suffix = "_v"

[sigil_strategies."%"]
mode = "suffix"
suffix = "_v"
`), FormatTOML, "x.toml")
	require.NoError(t, err)
	_, err = Resolve(f)
	require.Error(t, err)
}

func TestEncodeRoundTripsThroughTable(t *testing.T) {
	tbl, err := LoadTable("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FromTable(tbl)))

	f, err := Decode(buf.Bytes(), FormatTOML, "dump.toml")
	require.NoError(t, err)
	again, err := Resolve(f)
	require.NoError(t, err)
	assert.Equal(t, tbl.Fingerprint(), again.Fingerprint())
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := writeFile(t, dir, DefaultName, "")

	t.Setenv(EnvConfig, "")
	t.Chdir(nested)

	got, err := Locate("", nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Locate("explicit.toml", nested)
	require.NoError(t, err)
	assert.Equal(t, "explicit.toml", got)

	t.Setenv(EnvConfig, "/etc/perl2py.toml")
	got, err = Locate("", nested)
	require.NoError(t, err)
	assert.Equal(t, "/etc/perl2py.toml", got)
}
