package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perl2py/internal/cache"
	"perl2py/internal/diag"
	"perl2py/internal/rules"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func tree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pl"), "my $i = 0;\n$i++;\n")
	writeFile(t, filepath.Join(dir, "lib", "B.pm"), "package B;\nsub hello {\n    return 1;\n}\n1;\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not perl\n")
	return dir
}

func TestCollect(t *testing.T) {
	dir := tree(t)

	flat, err := Collect([]string{dir}, false)
	require.NoError(t, err)
	require.Len(t, flat, 1)
	assert.Equal(t, filepath.Join(dir, "a.pl"), flat[0].Path)

	deep, err := Collect([]string{dir, filepath.Join(dir, "a.pl")}, true)
	require.NoError(t, err)
	require.Len(t, deep, 2, "duplicates collapse")
	assert.Equal(t, filepath.Join(dir, "lib", "B.pm"), deep[1].Path)

	// a file argument is taken whatever its extension
	one, err := Collect([]string{filepath.Join(dir, "notes.txt")}, false)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = Collect([]string{filepath.Join(dir, "missing")}, false)
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	in := Input{Path: filepath.Join("src", "lib", "Tool.pm"), Root: "src"}
	assert.Equal(t, filepath.Join("src", "lib", "Tool.py"), OutputPath(in, ""))
	assert.Equal(t, filepath.Join("out", "lib", "Tool.py"), OutputPath(in, "out"))
}

func TestRunWritesOutputs(t *testing.T) {
	dir := tree(t)
	out := filepath.Join(t.TempDir(), "py")
	inputs, err := Collect([]string{dir}, true)
	require.NoError(t, err)

	var mu sync.Mutex
	kinds := map[EventKind]int{}
	batch, err := Run(context.Background(), inputs, rules.Defaults(), Options{
		Jobs:   2,
		OutDir: out,
		Verify: true,
		Observer: func(ev Event) {
			mu.Lock()
			kinds[ev.Kind]++
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	require.Len(t, batch.Units, 2)
	assert.Zero(t, batch.Failed())
	assert.Equal(t, map[EventKind]int{UnitQueued: 2, UnitStarted: 2, UnitDone: 2}, kinds)

	data, err := os.ReadFile(filepath.Join(out, "a.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "i += 1")
	_, err = os.Stat(filepath.Join(out, "lib", "B.py"))
	assert.NoError(t, err)

	for _, u := range batch.Units {
		assert.True(t, u.Written)
		assert.Zero(t, u.Bag.Count(diag.SevError), "%s: %v", u.Input.Path, u.Bag.Items())
	}
	names := map[string]bool{}
	for _, p := range batch.Timing.Phases {
		names[p.Name] = true
	}
	for _, want := range []string{"match", "translate", "normalize", "verify", "write"} {
		assert.True(t, names[want], "phase %s missing in %v", want, batch.Timing.Phases)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	dir := tree(t)
	inputs, err := Collect([]string{dir}, false)
	require.NoError(t, err)
	batch, err := Run(context.Background(), inputs, rules.Defaults(), Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, batch.Units, 1)
	assert.False(t, batch.Units[0].Written)
	assert.NotEmpty(t, batch.Units[0].Result.Output)
	_, err = os.Stat(filepath.Join(dir, "a.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestSecondRunHitsCache(t *testing.T) {
	dir := tree(t)
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	inputs, err := Collect([]string{dir}, true)
	require.NoError(t, err)
	opts := Options{DryRun: true, Cache: c, Version: "test"}

	first, err := Run(context.Background(), inputs, rules.Defaults(), opts)
	require.NoError(t, err)
	second, err := Run(context.Background(), inputs, rules.Defaults(), opts)
	require.NoError(t, err)
	for i := range second.Units {
		assert.False(t, first.Units[i].Cached)
		assert.True(t, second.Units[i].Cached)
		assert.Equal(t, first.Units[i].Result.Output, second.Units[i].Result.Output)
	}
}

func TestCancelledRun(t *testing.T) {
	dir := tree(t)
	inputs, err := Collect([]string{dir}, true)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, inputs, rules.Defaults(), Options{DryRun: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteTimings(t *testing.T) {
	dir := tree(t)
	inputs, err := Collect([]string{dir}, false)
	require.NoError(t, err)
	batch, err := Run(context.Background(), inputs, rules.Defaults(), Options{DryRun: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, batch.WriteTimings(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var last timingPayload
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
	assert.Equal(t, "batch", last.Kind)
}
