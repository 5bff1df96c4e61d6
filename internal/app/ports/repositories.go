package ports

import (
	"context"

	"geohex/internal/domain/mining"
	"geohex/internal/domain/zone"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (mining.User, error)
	GetByUsername(ctx context.Context, username string) (mining.User, error)
	Create(ctx context.Context, user mining.User) error
	// SaveWithVersion persists the aggregate if the stored version still
	// equals expectedVersion, otherwise ErrConflict. Newly owned cells
	// are registered in the global ownership index atomically with the
	// save; a cell already owned by someone else yields ErrConflict.
	SaveWithVersion(ctx context.Context, user mining.User, expectedVersion int64) error
	// OwnerOf resolves the global ownership index. ErrNotFound means
	// the cell is unowned.
	OwnerOf(ctx context.Context, cell string) (string, error)
}

// ClassificationCacheRepository stores upstream-confirmed results only.
// Fallback classifications must never be written here.
type ClassificationCacheRepository interface {
	Get(ctx context.Context, cell string) (zone.Classification, error)
	Put(ctx context.Context, record zone.Classification) error
}

// CoastalBufferRepository is the persisted, append-only exclusion set.
type CoastalBufferRepository interface {
	Contains(ctx context.Context, cell string) (bool, error)
	// AddAll unions the cells into the set and reports how many were
	// actually new. Implementations persist only when added > 0.
	AddAll(ctx context.Context, cells []string) (added int, err error)
}

type MiningEventRepository interface {
	Append(ctx context.Context, events []mining.Event) error
	// ListByUserID returns the user's events, most recent first.
	ListByUserID(ctx context.Context, userID string, limit int) ([]mining.Event, error)
}

// TreasuryRepository is the system-side fee sink. Nothing in this
// server ever decrements it.
type TreasuryRepository interface {
	Balance(ctx context.Context) (int64, error)
	Add(ctx context.Context, amount int64) error
}
