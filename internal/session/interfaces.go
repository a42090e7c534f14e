package session

import (
	"github.com/AntoineGS/ticklist/internal/state"
)

// ProgressStore persists checked vectors between runs. *state.Store
// implements it.
type ProgressStore interface {
	SaveProgress(rec state.ProgressRecord) (int64, error)
	LatestProgress(fingerprint string) (*state.ProgressRecord, error)
	LatestForSource(sourcePath string) (*state.ProgressRecord, error)
	PruneHistory(fingerprint string, keepN int) error
}
