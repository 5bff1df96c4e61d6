package filestore

import (
	"context"

	"geohex/internal/domain/mining"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(ctx context.Context, events []mining.Event) error {
	if len(events) == 0 {
		return nil
	}
	defer r.store.lockFor(ctx)()
	r.store.events = append(r.store.events, events...)
	r.store.persistEvents()
	return nil
}

func (r EventRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]mining.Event, error) {
	defer r.store.rlockFor(ctx)()
	out := []mining.Event{}
	for i := len(r.store.events) - 1; i >= 0; i-- {
		if r.store.events[i].UserID != userID {
			continue
		}
		out = append(out, r.store.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
