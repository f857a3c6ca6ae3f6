package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/immocrawl"
)

// Ensure LoggingStateStore implements immocrawl.StateStore.
var _ immocrawl.StateStore = (*LoggingStateStore)(nil)

// LoggingStateStore wraps a StateStore with logging.
type LoggingStateStore struct {
	next   immocrawl.StateStore
	logger *slog.Logger
}

// NewLoggingStateStore creates a new LoggingStateStore.
func NewLoggingStateStore(next immocrawl.StateStore, logger *slog.Logger) *LoggingStateStore {
	return &LoggingStateStore{next: next, logger: logger}
}

// LoadState delegates to the wrapped store and logs the operation.
func (s *LoggingStateStore) LoadState(ctx context.Context) (state *immocrawl.RunState, err error) {
	defer func(begin time.Time) {
		var ids int
		if state != nil {
			ids = len(state.PreviousIDs)
		}
		s.logger.Info("load state",
			"ids", ids,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadState(ctx)
}

// SaveState delegates to the wrapped store and logs the operation.
func (s *LoggingStateStore) SaveState(ctx context.Context, state *immocrawl.RunState) (err error) {
	defer func(begin time.Time) {
		var ids int
		if state != nil {
			ids = len(state.PreviousIDs)
		}
		s.logger.Info("save state",
			"ids", ids,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveState(ctx, state)
}
