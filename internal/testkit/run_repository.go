package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
)

// InMemoryRunRepository implements SliceRunRepository with in-memory storage.
// The server falls back to it when no database is configured.
type InMemoryRunRepository struct {
	runs map[core.RunID]*slicing.Run
	mu   sync.RWMutex
}

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*slicing.Run)}
}

func (s *InMemoryRunRepository) SaveRun(ctx context.Context, run *slicing.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *run
	stored.Results = append([]slicing.SliceComparisonResult(nil), run.Results...)
	s.runs[run.ID] = &stored
	return nil
}

func (s *InMemoryRunRepository) GetRun(ctx context.Context, id core.RunID) (*slicing.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	copied := *run
	copied.Results = append([]slicing.SliceComparisonResult(nil), run.Results...)
	return &copied, nil
}

func (s *InMemoryRunRepository) ListRuns(ctx context.Context, limit int) ([]*slicing.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*slicing.Run, 0, len(s.runs))
	for _, run := range s.runs {
		header := *run
		header.Results = nil
		runs = append(runs, &header)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
