package ports

import (
	"context"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
)

// SliceRunRepository defines persistence operations for slice-discovery runs
type SliceRunRepository interface {
	// SaveRun stores a run together with its ranked results
	SaveRun(ctx context.Context, run *slicing.Run) error

	// GetRun retrieves a run by ID, returning core.ErrRunNotFound when absent
	GetRun(ctx context.Context, id core.RunID) (*slicing.Run, error)

	// ListRuns returns runs newest first, without results; limit <= 0 means no limit
	ListRuns(ctx context.Context, limit int) ([]*slicing.Run, error)
}
