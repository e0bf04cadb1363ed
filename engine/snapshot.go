package engine

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/soroban-kit/tracedbg/core"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
// Restore refuses snapshots from another version rather than guessing.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned for snapshots encoded by an
// incompatible version of this package.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the explicit, versioned capture of a session's mutable
// state. It crosses process boundaries serialized, never as an opaque
// in-memory object.
type Snapshot struct {
	Version     uint32
	SessionID   string
	ModuleHash  string
	Function    string
	Position    uint64
	Mode        uint8
	History     []uint64
	Breakpoints []string
}

// Snapshot captures the session's cursor and breakpoint state.
func (s *Session) Snapshot() *Snapshot {
	hist := s.cur.History()
	positions := make([]uint64, len(hist))
	for i, p := range hist {
		positions[i] = uint64(p)
	}
	return &Snapshot{
		Version:     SnapshotVersion,
		SessionID:   s.id,
		ModuleHash:  s.module,
		Function:    s.fn,
		Position:    uint64(s.cur.Position()),
		Mode:        uint8(s.cur.Mode()),
		History:     positions,
		Breakpoints: s.bps.List(),
	}
}

// RestoreSnapshot revives cursor and breakpoint state from a snapshot
// taken against the same module and function.
func (s *Session) RestoreSnapshot(snap *Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	if snap.ModuleHash != s.module {
		return errors.New("snapshot belongs to a different module")
	}
	if snap.Function != s.fn {
		return errors.New("snapshot belongs to a different invocation")
	}

	hist := make([]int, len(snap.History))
	for i, p := range snap.History {
		hist[i] = int(p)
	}
	s.cur.Restore(int(snap.Position), hist, core.StepMode(snap.Mode))

	for _, name := range snap.Breakpoints {
		s.bps.Register(name)
	}
	s.log.Debug("snapshot restored", "position", snap.Position,
		"history", len(snap.History))
	return nil
}

// EncodeSnapshot serializes a snapshot for storage or transport.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	return rlp.EncodeToBytes(snap)
}

// DecodeSnapshot deserializes a snapshot and validates its version.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := rlp.DecodeBytes(data, &snap); err != nil {
		return nil, err
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	return &snap, nil
}
