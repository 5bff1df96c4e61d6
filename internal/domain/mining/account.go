// Package mining holds the ownership domain: user accounts, claim
// reasons, GPS proofs, mining events and the economy tuning constants.
package mining

import (
	"sort"
	"time"
)

// User is the account aggregate: identity, the two currency balances
// and the owned-cell set. The owned set only grows; Version guards
// optimistic saves.
type User struct {
	ID           string
	Username     string
	PasswordSalt []byte
	PasswordHash []byte
	BalanceGHX   int64
	// BalanceGCX is the secondary currency. The exchange that moves it
	// lives outside this server; the balance is only carried here.
	BalanceGCX int64
	OwnedCells map[string]struct{}
	Version    int64
	CreatedAt  time.Time
}

func (u User) Owns(cell string) bool {
	_, ok := u.OwnedCells[cell]
	return ok
}

// Claim adds the cell to the owned set. Claiming an already owned cell
// is a no-op so callers stay idempotent.
func (u *User) Claim(cell string) {
	if u.OwnedCells == nil {
		u.OwnedCells = map[string]struct{}{}
	}
	u.OwnedCells[cell] = struct{}{}
}

// OwnedList returns the owned cells in stable order.
func (u User) OwnedList() []string {
	out := make([]string, 0, len(u.OwnedCells))
	for cell := range u.OwnedCells {
		out = append(out, cell)
	}
	sort.Strings(out)
	return out
}

// CloneOwned returns a copy of the owned set so repository snapshots do
// not alias live state.
func (u User) CloneOwned() map[string]struct{} {
	out := make(map[string]struct{}, len(u.OwnedCells))
	for cell := range u.OwnedCells {
		out[cell] = struct{}{}
	}
	return out
}
