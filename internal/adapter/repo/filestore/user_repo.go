package filestore

import (
	"context"

	"geohex/internal/app/ports"
	"geohex/internal/domain/mining"
)

type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) UserRepo {
	return UserRepo{store: store}
}

func (r UserRepo) GetByID(ctx context.Context, id string) (mining.User, error) {
	defer r.store.rlockFor(ctx)()
	u, ok := r.store.users[id]
	if !ok {
		return mining.User{}, ports.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r UserRepo) GetByUsername(ctx context.Context, username string) (mining.User, error) {
	defer r.store.rlockFor(ctx)()
	id, ok := r.store.byUsername[username]
	if !ok {
		return mining.User{}, ports.ErrNotFound
	}
	return cloneUser(r.store.users[id]), nil
}

func (r UserRepo) Create(ctx context.Context, user mining.User) error {
	defer r.store.lockFor(ctx)()
	if _, exists := r.store.users[user.ID]; exists {
		return ports.ErrConflict
	}
	if _, exists := r.store.byUsername[user.Username]; exists {
		return ports.ErrConflict
	}
	r.store.users[user.ID] = cloneUser(user)
	r.store.byUsername[user.Username] = user.ID
	for cell := range user.OwnedCells {
		r.store.ownerByCell[cell] = user.ID
	}
	r.store.persistUsers()
	return nil
}

func (r UserRepo) SaveWithVersion(ctx context.Context, user mining.User, expectedVersion int64) error {
	defer r.store.lockFor(ctx)()
	current, ok := r.store.users[user.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	// Newly owned cells must still be unowned globally: a cell belongs
	// to at most one user, ever.
	for cell := range user.OwnedCells {
		if current.Owns(cell) {
			continue
		}
		if owner, taken := r.store.ownerByCell[cell]; taken && owner != user.ID {
			return ports.ErrConflict
		}
	}
	for cell := range user.OwnedCells {
		r.store.ownerByCell[cell] = user.ID
	}
	r.store.users[user.ID] = cloneUser(user)
	r.store.persistUsers()
	return nil
}

func (r UserRepo) OwnerOf(ctx context.Context, cell string) (string, error) {
	defer r.store.rlockFor(ctx)()
	owner, ok := r.store.ownerByCell[cell]
	if !ok {
		return "", ports.ErrNotFound
	}
	return owner, nil
}
