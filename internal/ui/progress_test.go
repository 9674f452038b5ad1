package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"perl2py/internal/diag"
	"perl2py/internal/driver"
)

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		ev   driver.Event
		want string
	}{
		{driver.Event{Kind: driver.UnitQueued}, "queued"},
		{driver.Event{Kind: driver.UnitStarted}, "converting"},
		{driver.Event{Kind: driver.UnitDone, Status: diag.SevConverted}, "converted"},
		{driver.Event{Kind: driver.UnitDone, Status: diag.SevPartial}, "partial"},
		{driver.Event{Kind: driver.UnitDone, Status: diag.SevPartial, Cached: true}, "cached"},
		{driver.Event{Kind: driver.UnitDone, Status: diag.SevError, Failed: true}, "failed"},
	}
	for _, tc := range cases {
		if got := statusLabel(tc.ev); got != tc.want {
			t.Fatalf("statusLabel(%+v) = %q, want %q", tc.ev, got, tc.want)
		}
	}
}

func TestApplyEventUpdatesView(t *testing.T) {
	m := NewProgressModel("converting", []string{"a.pl", "b.pl"}, nil).(*progressModel)
	m.applyEvent(driver.Event{Kind: driver.UnitDone, Path: "a.pl", Status: diag.SevConverted})
	m.applyEvent(driver.Event{Kind: driver.UnitStarted, Path: "b.pl"})
	m.applyEvent(driver.Event{Kind: driver.UnitDone, Path: "unknown.pl"})

	view := m.View()
	assert.Contains(t, view, "(1/2)")
	assert.True(t, strings.Contains(view, "converted") && strings.Contains(view, "converting"), view)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
