package mock

import (
	"context"

	"github.com/fwojciec/immocrawl"
)

var _ immocrawl.StateStore = (*StateStore)(nil)

// StateStore is a mock implementation of immocrawl.StateStore.
type StateStore struct {
	LoadStateFn func(ctx context.Context) (*immocrawl.RunState, error)
	SaveStateFn func(ctx context.Context, state *immocrawl.RunState) error
}

func (s *StateStore) LoadState(ctx context.Context) (*immocrawl.RunState, error) {
	return s.LoadStateFn(ctx)
}

func (s *StateStore) SaveState(ctx context.Context, state *immocrawl.RunState) error {
	return s.SaveStateFn(ctx, state)
}
