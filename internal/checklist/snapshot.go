package checklist

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// SnapshotVersion is the current snapshot envelope version.
const SnapshotVersion = 1

// Snapshot is the exportable form of a checked vector. Fingerprint and
// Count describe the list the vector was taken from.
type Snapshot struct {
	ExportedAt  time.Time `json:"exported_at"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Checked     []bool    `json:"checked"`
	Version     int       `json:"version"`
	Count       int       `json:"count"`
}

// MarshalSnapshot encodes the checked vector as a positional JSON array.
func (s *State) MarshalSnapshot() ([]byte, error) {
	data, err := json.Marshal(s.checked)
	if err != nil {
		return nil, fmt.Errorf("encoding checked vector: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a positional JSON array and restores it.
// A length mismatch leaves the state unchanged.
func (s *State) UnmarshalSnapshot(data []byte) error {
	checked, err := DecodeChecked(data)
	if err != nil {
		return err
	}
	return s.Restore(checked)
}

// Snapshot returns the envelope for the current state.
func (s *State) Snapshot(fingerprint string, now time.Time) Snapshot {
	return Snapshot{
		Version:     SnapshotVersion,
		Fingerprint: fingerprint,
		Count:       len(s.checked),
		Checked:     s.Checked(),
		ExportedAt:  now.UTC(),
	}
}

// EncodeSnapshot writes the envelope as indented JSON.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot accepts either an envelope object or a bare positional
// array of booleans.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty input", ErrInvalidSnapshot)
	}

	if trimmed[0] == '[' {
		checked, err := DecodeChecked(trimmed)
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Version: SnapshotVersion, Count: len(checked), Checked: checked}, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Checked == nil {
		return Snapshot{}, fmt.Errorf("%w: missing checked array", ErrInvalidSnapshot)
	}
	if snap.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	if snap.Count != 0 && snap.Count != len(snap.Checked) {
		return Snapshot{}, fmt.Errorf("%w: count %d disagrees with %d entries", ErrInvalidSnapshot, snap.Count, len(snap.Checked))
	}

	return snap, nil
}

// DecodeChecked decodes a bare positional JSON array of booleans.
func DecodeChecked(data []byte) ([]bool, error) {
	var checked []bool
	if err := json.Unmarshal(data, &checked); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if checked == nil {
		checked = []bool{}
	}
	return checked, nil
}
