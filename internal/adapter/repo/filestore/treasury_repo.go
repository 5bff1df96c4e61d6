package filestore

import "context"

type TreasuryRepo struct {
	store *Store
}

func NewTreasuryRepo(store *Store) TreasuryRepo {
	return TreasuryRepo{store: store}
}

func (r TreasuryRepo) Balance(ctx context.Context) (int64, error) {
	defer r.store.rlockFor(ctx)()
	return r.store.treasury, nil
}

func (r TreasuryRepo) Add(ctx context.Context, amount int64) error {
	defer r.store.lockFor(ctx)()
	r.store.treasury += amount
	r.store.persistTreasury()
	return nil
}
