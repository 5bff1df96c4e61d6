package ports

import "context"

// TxManager brackets one read-check-claim-write sequence. Ownership and
// balance reads inside fn see a consistent snapshot and the mutations
// commit atomically or not at all. Outbound network calls must happen
// before RunInTx, never inside it.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
