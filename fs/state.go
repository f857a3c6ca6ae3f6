// Package fs provides file-based storage for run state and exported
// listings. Files are written to a temporary path and renamed into place so
// readers never observe a partial file.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/immocrawl"
)

// Ensure StateStore implements immocrawl.StateStore at compile time.
var _ immocrawl.StateStore = (*StateStore)(nil)

// StateStore keeps the RunState in a JSON file.
type StateStore struct {
	path      string
	searchURL string
}

// StateOption configures a StateStore.
type StateOption func(*StateStore)

// WithSearchURL keys the file by search URL. State saved for another search
// loads as empty instead of reporting all of its listings as removed.
func WithSearchURL(u string) StateOption {
	return func(s *StateStore) {
		s.searchURL = u
	}
}

// NewStateStore creates a StateStore backed by the file at path.
func NewStateStore(path string, opts ...StateOption) *StateStore {
	s := &StateStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stateFile is the on-disk shape: the RunState plus the search it belongs to.
type stateFile struct {
	SearchURL string `json:"search_url,omitempty"`
	immocrawl.RunState
}

// LoadState reads the state file. A missing file, or a file saved for a
// different search URL, yields an empty state.
// Returns ECORRUPT if the file cannot be decoded.
func (s *StateStore) LoadState(_ context.Context) (*immocrawl.RunState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &immocrawl.RunState{PreviousIDs: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var f stateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, immocrawl.Errorf(immocrawl.ECORRUPT, "state file %s: %v", s.path, err)
	}
	if s.searchURL != "" && f.SearchURL != "" && f.SearchURL != s.searchURL {
		return &immocrawl.RunState{PreviousIDs: []string{}}, nil
	}
	state := f.RunState
	if state.PreviousIDs == nil {
		state.PreviousIDs = []string{}
	}
	return &state, nil
}

// SaveState replaces the state file atomically.
func (s *StateStore) SaveState(_ context.Context, state *immocrawl.RunState) error {
	if state == nil {
		return immocrawl.Errorf(immocrawl.EINVALID, "state required")
	}
	data, err := json.MarshalIndent(stateFile{SearchURL: s.searchURL, RunState: *state}, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, append(data, '\n'))
}

// writeFileAtomic writes data to a temporary file next to path, then renames
// it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
