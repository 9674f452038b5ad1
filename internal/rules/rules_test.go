package rules

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	tbl := Defaults()

	b, ok := tbl.Builtin("length")
	require.True(t, ok)
	assert.Equal(t, "len({0})", b.Template)

	line, ok := tbl.Module("strict")
	require.True(t, ok)
	assert.Empty(t, line, "strict is dropped")

	line, ok = tbl.Module("Data::Dumper")
	require.True(t, ok)
	assert.Equal(t, "import pprint", line)

	op, ok := tbl.Operator("eq")
	require.True(t, ok)
	assert.Equal(t, "==", op)

	opts := tbl.Options()
	assert.True(t, opts.PreserveComments)
	assert.True(t, opts.EmitHeader)
	assert.False(t, opts.StrictFallback)
	assert.Equal(t, 4, opts.Indent)
}

func TestAccessorsReturnCopies(t *testing.T) {
	tbl := Defaults()
	b, _ := tbl.Builtin("sqrt")
	b.Imports[0] = "cmath"

	again, _ := tbl.Builtin("sqrt")
	assert.Equal(t, []string{"math"}, again.Imports)

	mods := tbl.Modules()
	mods["strict"] = "import strict"
	line, _ := tbl.Module("strict")
	assert.Empty(t, line)
}

func TestMergeKeepsUntouchedDefaults(t *testing.T) {
	defaults := Defaults()
	off := false
	merged, err := Merge(defaults, &Overrides{
		Modules:   map[string]string{"Data::Dumper": "import json"},
		Operators: map[string]string{".": "+"},
		Builtins:  map[string]Builtin{"length": {Template: "size({0})"}},
		Options:   OptionOverrides{EmitHeader: &off},
	})
	require.NoError(t, err)

	line, _ := merged.Module("Data::Dumper")
	assert.Equal(t, "import json", line)
	line, _ = merged.Module("Getopt::Long")
	assert.Equal(t, "import argparse", line, "unrelated default survives")

	b, _ := merged.Builtin("length")
	assert.Equal(t, "size({0})", b.Template)
	b, _ = merged.Builtin("uc")
	assert.Equal(t, "{0}.upper()", b.Template)

	assert.False(t, merged.Options().EmitHeader)
	assert.True(t, merged.Options().PreserveComments)

	// inputs untouched
	line, _ = defaults.Module("Data::Dumper")
	assert.Equal(t, "import pprint", line)
	assert.True(t, defaults.Options().EmitHeader)
}

func TestMergeValidation(t *testing.T) {
	cases := []struct {
		name string
		o    Overrides
		want error
	}{
		{"empty module key", Overrides{Modules: map[string]string{"": "import x"}}, ErrEmptyKey},
		{"empty template", Overrides{Builtins: map[string]Builtin{"foo": {}}}, ErrInvalidTemplate},
		{"unknown sigil", Overrides{Sigils: map[string]SigilStrategy{"&": {Mode: SigilStrip}}}, ErrUnknownSigil},
		{"suffix clash", Overrides{Sigils: map[string]SigilStrategy{
			"@": {Mode: SigilSuffix, Suffix: "_x"},
			"%": {Mode: SigilSuffix, Suffix: "_x"},
		}}, ErrSigilConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Merge(Defaults(), &tc.o)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Defaults().Fingerprint()
	b := Defaults().Fingerprint()
	assert.Equal(t, a, b)

	merged, err := Merge(Defaults(), &Overrides{Modules: map[string]string{"Foo": "import foo"}})
	require.NoError(t, err)
	assert.NotEqual(t, a, merged.Fingerprint())
}

func TestUnsupported(t *testing.T) {
	assert.True(t, Unsupported("wantarray"))
	assert.True(t, Unsupported("local"))
	assert.False(t, Unsupported("length"))
}

func TestConcurrentReads(t *testing.T) {
	tbl := Defaults()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = tbl.Builtin("join")
				_ = tbl.Fingerprint()
			}
		}()
	}
	wg.Wait()
}
