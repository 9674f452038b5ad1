package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelGatesScopes(t *testing.T) {
	assert.True(t, LevelPhase.ShouldEmit(ScopePhase))
	assert.False(t, LevelPhase.ShouldEmit(ScopeUnit))
	assert.True(t, LevelDetail.ShouldEmit(ScopeUnit))
	assert.False(t, LevelDetail.ShouldEmit(ScopeConstruct))
	assert.True(t, LevelDebug.ShouldEmit(ScopeConstruct))
	assert.False(t, LevelError.ShouldEmit(ScopeDriver))
	assert.True(t, LevelError.Records(ScopeConstruct))
}

func TestStreamSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf})
	require.NoError(t, err)

	root := Begin(tr, ScopeDriver, "convert", 0)
	phase := Begin(tr, ScopePhase, "match", root.ID())
	unit := Begin(tr, ScopeUnit, "unit:a.pl", phase.ID())
	unit.End("")
	phase.WithExtra("matches", "3").End("ok")
	root.End("")

	out := buf.String()
	assert.Contains(t, out, "→ convert")
	assert.Contains(t, out, "← match (ok) {matches=3}")
	assert.NotContains(t, out, "unit:a.pl")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestNDJSONByExtension(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Output: &buf, OutputPath: "run.ndjson"})
	require.NoError(t, err)
	Point(tr, ScopeConstruct, "Conditional", "line 3", 0)
	assert.True(t, strings.HasPrefix(buf.String(), `{"time":`), buf.String())
	assert.Contains(t, buf.String(), `"scope":"construct"`)
}

func TestRingKeepsLast(t *testing.T) {
	r := NewRingTracer(2, LevelError)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeUnit, name, "", 0)
	}
	got := r.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "c", got[1].Name)

	var buf bytes.Buffer
	require.NoError(t, r.Dump(&buf, FormatText))
	assert.Contains(t, buf.String(), "• c")
}

func TestBothModeFindsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	require.NoError(t, err)
	multi, ok := tr.(*MultiTracer)
	require.True(t, ok)
	Begin(tr, ScopePhase, "normalize", 0).End("")
	require.NotNil(t, multi.Ring())
	assert.Len(t, multi.Ring().Snapshot(), 2)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Nop, FromContext(ctx))
	ring := NewRingTracer(4, LevelDebug)
	ctx = WithTracer(ctx, ring)
	span := Begin(FromContext(ctx), ScopeUnit, "unit", 0)
	ctx = WithSpan(ctx, span)
	assert.Equal(t, span.ID(), ParentID(ctx))
	assert.Zero(t, ParentID(context.Background()))
}

func TestOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.False(t, tr.Enabled())
	s := Begin(tr, ScopeDriver, "x", 0)
	assert.Zero(t, s.ID())
	assert.Zero(t, s.End(""))
	assert.Nil(t, StartHeartbeat(tr, 1))
}

func TestParse(t *testing.T) {
	l, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	assert.Equal(t, LevelDetail, l)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
	m, err := ParseMode("both")
	require.NoError(t, err)
	assert.Equal(t, ModeBoth, m)
	f, err := ParseFormat("ndjson")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)
}

func TestHeartbeatBeatsUntilStopped(t *testing.T) {
	r := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond)
	require.NotNil(t, h)
	require.Eventually(t, func() bool { return len(r.Snapshot()) >= 2 }, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()

	got := r.Snapshot()
	assert.Equal(t, KindHeartbeat, got[0].Kind)
	assert.True(t, strings.HasPrefix(got[0].Detail, "#1 at +"), got[0].Detail)
	n := len(got)
	time.Sleep(5 * time.Millisecond)
	assert.Len(t, r.Snapshot(), n, "beats after Stop")

	var nilBeat *Heartbeat
	nilBeat.Stop()
}

func TestModeNames(t *testing.T) {
	for _, m := range []StorageMode{ModeStream, ModeRing, ModeBoth} {
		got, err := ParseMode(strings.ToUpper(m.String()))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStream, m)
	_, err = ParseMode("disk")
	assert.Error(t, err)
	_, err = New(Config{Level: LevelPhase, Mode: StorageMode(9)})
	assert.Error(t, err)
}
