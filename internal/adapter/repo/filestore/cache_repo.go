package filestore

import (
	"context"

	"geohex/internal/app/ports"
	"geohex/internal/domain/zone"
)

type CacheRepo struct {
	store *Store
}

func NewCacheRepo(store *Store) CacheRepo {
	return CacheRepo{store: store}
}

func (r CacheRepo) Get(_ context.Context, cell string) (zone.Classification, error) {
	r.store.cacheMu.RLock()
	defer r.store.cacheMu.RUnlock()
	rec, ok := r.store.cache[cell]
	if !ok {
		return zone.Classification{}, ports.ErrNotFound
	}
	return rec, nil
}

// Put is last-write-wins; the underlying truth is assumed
// time-invariant within a session.
func (r CacheRepo) Put(_ context.Context, rec zone.Classification) error {
	r.store.cacheMu.Lock()
	defer r.store.cacheMu.Unlock()
	r.store.cache[rec.Cell] = rec
	r.store.persistCache()
	return nil
}
