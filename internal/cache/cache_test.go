package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"perl2py/internal/engine"
	"perl2py/internal/rules"
	"perl2py/internal/source"
)

func convert(t *testing.T, src string) (*source.File, *engine.Result) {
	t.Helper()
	fs := source.NewFileSet()
	unit := fs.Get(fs.AddVirtual("unit.pl", []byte(src)))
	res, err := engine.Translate(context.Background(), unit, rules.Defaults())
	require.NoError(t, err)
	return unit, res
}

func TestKeyDependsOnInputs(t *testing.T) {
	a := sha(t, "$i++;")
	b := sha(t, "$j++;")
	assert.NotEqual(t, Key("1", "fp", a), Key("1", "fp", b))
	assert.NotEqual(t, Key("1", "fp", a), Key("2", "fp", a))
	assert.NotEqual(t, Key("1", "fp", a), Key("1", "other", a))
	assert.Equal(t, Key("1", "fp", a), Key("1", "fp", a))
}

func sha(t *testing.T, s string) [32]byte {
	t.Helper()
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("x.pl", []byte(s))).Hash
}

func TestRoundTripThroughDisk(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	unit, res := convert(t, "use strict;\n$text =~ s/a/b/;\nprint \"@{[ $x ]}\";\n")
	key := Key("test", rules.Defaults().Fingerprint(), unit.Hash)

	var miss Entry
	ok, err := c.Get(key, &miss)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, FromResult(res)))

	var e Entry
	ok, err = c.Get(key, &e)
	require.NoError(t, err)
	require.True(t, ok)

	got := e.Result(unit)
	assert.Equal(t, res.Output, got.Output)
	assert.Equal(t, res.Imports, got.Imports)
	assert.Equal(t, res.Draft.Render(), got.Draft.Render())
	if diff := cmp.Diff(res.Diagnostics.Items(), got.Diagnostics.Items(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("diagnostics differ (-want +got):\n%s", diff)
	}
	assert.Equal(t, res.Stats.Constructs, got.Stats.Constructs)
	assert.Equal(t, res.Stats.ByKind, got.Stats.ByKind)
	assert.Equal(t, res.Dialect, got.Dialect)
}

func TestSchemaMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&Entry{Schema: schemaVersion + 1}))
	var e Entry
	ok, err := decode(&buf, &e)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	c, err := Open(dir)
	require.NoError(t, err)
	unit, res := convert(t, "$i++;\n")
	key := Key("v", "fp", unit.Hash)
	require.NoError(t, c.Put(key, FromResult(res)))

	require.NoError(t, c.DropAll())
	var e Entry
	ok, err := c.Get(key, &e)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = os.Stat(dir)
	assert.NoError(t, err, "cache dir recreated")
}

func TestNilCache(t *testing.T) {
	var c *Cache
	assert.NoError(t, c.Put(Digest{}, &Entry{}))
	ok, err := c.Get(Digest{}, &Entry{})
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, c.DropAll())
}
