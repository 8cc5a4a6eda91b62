// Package store persists resolution results so repeated resolutions across
// runs skip external calls. Entries are created on first resolution and
// updated in place by photo backfill; nothing here ever deletes them.
package store

import (
	"context"

	"github.com/sells-group/placelist-cli/internal/model"
)

// Entry pairs a cache key with its stored result, for backfill sweeps.
type Entry struct {
	Key    string
	Result *model.ResolutionResult
}

// Stats summarizes cache contents.
type Stats struct {
	Total         int64 `json:"total"`
	Resolved      int64 `json:"resolved"`
	MissingPhotos int64 `json:"missing_photos"`
}

// Store defines the resolution cache interface. A missing key is
// (nil, nil) — a miss, not an error.
type Store interface {
	GetResolution(ctx context.Context, key string) (*model.ResolutionResult, error)
	PutResolution(ctx context.Context, key string, result *model.ResolutionResult) error

	// UpdatePhotoRefs replaces the photo references of an existing entry
	// without touching its score. Unknown keys are a no-op.
	UpdatePhotoRefs(ctx context.Context, key string, photoRefs []string) error

	// ListPhotoless returns resolved entries that have no photo references,
	// oldest first, capped at limit.
	ListPhotoless(ctx context.Context, limit int) ([]Entry, error)

	Stats(ctx context.Context) (Stats, error)
	Migrate(ctx context.Context) error
	Close() error
}
