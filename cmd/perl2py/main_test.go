package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perl2py/internal/config"
	"perl2py/internal/diagfmt"
)

// run executes the CLI with args after resetting every flag to its default;
// flag values otherwise leak between executions of the shared commands.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func script(t *testing.T, name, text string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("invalid ui mode accepted")
	}
	assert.False(t, shouldUseTUI(uiModeOff, 10))
	assert.True(t, shouldUseTUI(uiModeOn, 1))
}

func TestUseColor(t *testing.T) {
	on, err := useColor("on", nil)
	require.NoError(t, err)
	assert.True(t, on)
	auto, err := useColor("auto", nil)
	require.NoError(t, err)
	assert.False(t, auto)
	_, err = useColor("rainbow", nil)
	assert.Error(t, err)
}

func TestConvertWritesPython(t *testing.T) {
	in := script(t, "count.pl", "my $i = 0;\n$i++;\nprint \"count: $i\\n\";\n")
	outDir := t.TempDir()

	out, err := run(t, "convert", "--ui", "off", "-o", outDir, in)
	require.NoError(t, err)
	assert.Contains(t, out, "count.pl")

	data, err := os.ReadFile(filepath.Join(outDir, "count.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "i += 1")
	assert.Contains(t, string(data), `print(f"count: {i}")`)
}

func TestConvertStdout(t *testing.T) {
	in := script(t, "hello.pl", "print \"hello\\n\";\n")
	out, err := run(t, "convert", "--stdout", "--quiet", in)
	require.NoError(t, err)
	assert.Contains(t, out, `print("hello")`)
	_, err = os.Stat(strings.TrimSuffix(in, ".pl") + ".py")
	assert.True(t, os.IsNotExist(err), "stdout mode writes no file")
}

func TestCheckJSON(t *testing.T) {
	in := script(t, "mods.pl", "use Some::Unknown::Thing;\nmy $x = 1;\n")
	out, err := run(t, "check", "--format", "json", in)
	require.NoError(t, err)

	var payload diagfmt.DiagnosticsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.NotZero(t, payload.Count)
	assert.Contains(t, payload.Diagnostics[0].Code, "3002")
	assert.Equal(t, uint32(1), payload.Diagnostics[0].Line)

	_, err = os.Stat(strings.TrimSuffix(in, ".pl") + ".py")
	assert.True(t, os.IsNotExist(err), "check writes no file")
}

func TestCheckRejectsUnknownFormat(t *testing.T) {
	in := script(t, "a.pl", "1;\n")
	_, err := run(t, "check", "--format", "xml", in)
	assert.ErrorContains(t, err, "unknown format")
}

func TestRulesDumpsTOML(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	var f config.File
	_, err = toml.Decode(out, &f)
	require.NoError(t, err)
	require.NotNil(t, f.ConversionOptions.Indent)
	assert.Equal(t, 4, *f.ConversionOptions.Indent)
	assert.NotEmpty(t, f.ModuleMappings)
}

func TestRulesHonoursConfig(t *testing.T) {
	cfg := script(t, "perl2py.toml", "[conversion_options]\nindent = 2\n")
	out, err := run(t, "--config", cfg, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "indent = 2")
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "version", "--format", "json")
	require.NoError(t, err)
	var p versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "perl2py", p.Tool)
	assert.NotEmpty(t, p.Version)
}
