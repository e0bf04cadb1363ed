package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soroban-kit/tracedbg/core"
)

func startedSession(t *testing.T, e *Engine) *Session {
	s, err := e.Start(context.Background(), callModule(), "outer", "", nil, nil)
	require.NoError(t, err)
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	e := newTestEngine(&scriptedHost{events: callEvents()})
	s := startedSession(t, e)

	s.RegisterBreakpoint("inner")
	s.Step(core.StepInto)
	s.Step(core.StepInto)
	s.Step(core.StepOver)

	snap := s.Snapshot()
	require.Equal(t, uint32(SnapshotVersion), snap.Version)
	require.Equal(t, uint64(s.Position()), snap.Position)
	require.Equal(t, []string{"inner"}, snap.Breakpoints)

	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, snap, decoded)

	// Revive into a fresh session over the same module and function.
	e2 := newTestEngine(&scriptedHost{events: callEvents()})
	s2 := startedSession(t, e2)
	require.NoError(t, s2.RestoreSnapshot(decoded))

	require.Equal(t, s.Position(), s2.Position())
	require.Equal(t, core.StepOver, s2.cur.Mode())
	require.True(t, s2.Step(core.StepBack).Moved)
	require.Equal(t, []string{"inner"}, s2.ListBreakpoints())
}

func TestSnapshotVersionCheck(t *testing.T) {
	snap := &Snapshot{Version: 99}
	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)
	_, err = DecodeSnapshot(data)
	require.ErrorIs(t, err, ErrSnapshotVersion)

	e := newTestEngine(&scriptedHost{events: callEvents()})
	s := startedSession(t, e)
	require.ErrorIs(t, s.RestoreSnapshot(snap), ErrSnapshotVersion)
}

func TestSnapshotModuleMismatch(t *testing.T) {
	e := newTestEngine(&scriptedHost{events: callEvents()})
	s := startedSession(t, e)

	snap := s.Snapshot()
	snap.ModuleHash = "0xdeadbeef"
	require.Error(t, s.RestoreSnapshot(snap))

	snap = s.Snapshot()
	snap.Function = "other"
	require.Error(t, s.RestoreSnapshot(snap))
}
