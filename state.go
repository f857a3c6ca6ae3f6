package immocrawl

import (
	"context"
	"time"
)

// RunState is the minimal data kept between runs to compute a Delta.
type RunState struct {
	PreviousIDs []string  `json:"previous_ids"`
	LastRunAt   time.Time `json:"last_run_at"`
}

// IDs returns the previous identifiers as a set.
// A nil state is treated as empty.
func (s *RunState) IDs() IDSet {
	if s == nil {
		return NewIDSet()
	}
	return NewIDSet(s.PreviousIDs...)
}

// StateStore loads and persists the RunState of one search.
type StateStore interface {
	// LoadState returns the stored state.
	// A missing state is not an error: an empty RunState is returned.
	// Returns ECORRUPT if stored state exists but cannot be read.
	LoadState(ctx context.Context) (*RunState, error)

	// SaveState replaces the stored state atomically. A failed save leaves
	// the previous state intact.
	SaveState(ctx context.Context, state *RunState) error
}
