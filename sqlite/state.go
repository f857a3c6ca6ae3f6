package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fwojciec/immocrawl"
)

// Compile-time interface verification.
var _ immocrawl.StateStore = (*StateStore)(nil)

// StateStore implements immocrawl.StateStore using SQLite. Each search URL
// has its own state.
type StateStore struct {
	db        *DB
	searchURL string
}

// NewStateStore creates a StateStore for the given search URL.
func NewStateStore(db *DB, searchURL string) *StateStore {
	return &StateStore{db: db, searchURL: searchURL}
}

// LoadState returns the state of the search. A search without state yields
// an empty state. Returns ECORRUPT if the stored timestamp cannot be read.
func (s *StateStore) LoadState(ctx context.Context) (*immocrawl.RunState, error) {
	var lastRunAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT last_run_at FROM run_states WHERE search_url = ?
	`, s.searchURL).Scan(&lastRunAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &immocrawl.RunState{PreviousIDs: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	state := &immocrawl.RunState{PreviousIDs: []string{}}
	state.LastRunAt, err = parseRFC3339(lastRunAt, "last_run_at")
	if err != nil {
		return nil, immocrawl.Errorf(immocrawl.ECORRUPT, "state for %s: %v", s.searchURL, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT listing_id FROM run_state_ids WHERE search_url = ? ORDER BY position
	`, s.searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load state ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan state id: %w", err)
		}
		state.PreviousIDs = append(state.PreviousIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate state ids: %w", err)
	}

	return state, nil
}

// SaveState replaces the state of the search in a single transaction.
func (s *StateStore) SaveState(ctx context.Context, state *immocrawl.RunState) error {
	if state == nil {
		return immocrawl.Errorf(immocrawl.EINVALID, "state required")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_states WHERE search_url = ?`, s.searchURL); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO run_states (search_url, last_run_at) VALUES (?, ?)
	`, s.searchURL, formatRFC3339(state.LastRunAt)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_state_ids (search_url, position, listing_id) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare state ids: %w", err)
	}
	defer stmt.Close()

	for i, id := range state.PreviousIDs {
		if _, err := stmt.ExecContext(ctx, s.searchURL, i, id); err != nil {
			return fmt.Errorf("failed to save state id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}
