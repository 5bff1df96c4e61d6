package filestore

import "context"

type BufferRepo struct {
	store *Store
}

func NewBufferRepo(store *Store) BufferRepo {
	return BufferRepo{store: store}
}

func (r BufferRepo) Contains(_ context.Context, cell string) (bool, error) {
	r.store.coastMu.RLock()
	defer r.store.coastMu.RUnlock()
	_, ok := r.store.coast[cell]
	return ok, nil
}

// AddAll unions, never overwrites: the buffer set only grows. It is
// persisted only when the union actually added something.
func (r BufferRepo) AddAll(_ context.Context, cells []string) (int, error) {
	r.store.coastMu.Lock()
	defer r.store.coastMu.Unlock()
	added := 0
	for _, cell := range cells {
		if _, ok := r.store.coast[cell]; !ok {
			r.store.coast[cell] = struct{}{}
			added++
		}
	}
	if added > 0 {
		r.store.persistCoast()
	}
	return added, nil
}
