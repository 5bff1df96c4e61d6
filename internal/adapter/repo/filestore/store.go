// Package filestore is the default persistence backend: one JSON
// document per concern under a data directory, loaded once at startup
// and rewritten on every mutation. An absent file means empty. With an
// empty directory path the store is purely in-memory, which is what the
// tests use.
//
// Durability is deliberately best-effort: a failed write is logged and
// swallowed and the in-memory state remains the source of truth.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"geohex/internal/domain/mining"
	"geohex/internal/domain/zone"

	"go.uber.org/zap"
)

const (
	usersDoc    = "users.json"
	cacheDoc    = "cache.json"
	coastDoc    = "coast.json"
	eventsDoc   = "events.json"
	treasuryDoc = "treasury.json"
)

type Store struct {
	dir string
	log *zap.Logger

	// mu guards users, ownership, events and the treasury. The
	// TxManager takes it for the whole read-check-claim-write sequence.
	mu          sync.RWMutex
	users       map[string]mining.User
	byUsername  map[string]string
	ownerByCell map[string]string
	events      []mining.Event
	treasury    int64

	// The cache and coastal buffer have their own locks: they are
	// touched on the classification path, which by design never runs
	// inside a claim transaction.
	cacheMu sync.RWMutex
	cache   map[string]zone.Classification

	coastMu sync.RWMutex
	coast   map[string]struct{}
}

// Open loads every document from dir. Missing files are empty state,
// not errors. An empty dir gives a volatile in-memory store.
func Open(dir string, log *zap.Logger) (*Store, error) {
	s := &Store{
		dir:         dir,
		log:         log,
		users:       map[string]mining.User{},
		byUsername:  map[string]string{},
		ownerByCell: map[string]string{},
		cache:       map[string]zone.Classification{},
		coast:       map[string]struct{}{},
	}
	if dir == "" {
		return s, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

type userDoc struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordSalt []byte    `json:"passwordSalt"`
	PasswordHash []byte    `json:"passwordHash"`
	BalanceGHX   int64     `json:"ghx"`
	BalanceGCX   int64     `json:"gcx"`
	OwnedCells   []string  `json:"ownedCells"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
}

type treasuryDocBody struct {
	Balance int64 `json:"balance"`
}

func (s *Store) load() error {
	var users []userDoc
	if err := s.readDoc(usersDoc, &users); err != nil {
		return err
	}
	for _, d := range users {
		u := mining.User{
			ID:           d.ID,
			Username:     d.Username,
			PasswordSalt: d.PasswordSalt,
			PasswordHash: d.PasswordHash,
			BalanceGHX:   d.BalanceGHX,
			BalanceGCX:   d.BalanceGCX,
			OwnedCells:   map[string]struct{}{},
			Version:      d.Version,
			CreatedAt:    d.CreatedAt,
		}
		for _, cell := range d.OwnedCells {
			u.OwnedCells[cell] = struct{}{}
			s.ownerByCell[cell] = d.ID
		}
		s.users[d.ID] = u
		s.byUsername[d.Username] = d.ID
	}

	var cached []zone.Classification
	if err := s.readDoc(cacheDoc, &cached); err != nil {
		return err
	}
	for _, rec := range cached {
		s.cache[rec.Cell] = rec
	}

	var coastCells []string
	if err := s.readDoc(coastDoc, &coastCells); err != nil {
		return err
	}
	for _, cell := range coastCells {
		s.coast[cell] = struct{}{}
	}

	if err := s.readDoc(eventsDoc, &s.events); err != nil {
		return err
	}

	var treasury treasuryDocBody
	if err := s.readDoc(treasuryDoc, &treasury); err != nil {
		return err
	}
	s.treasury = treasury.Balance
	return nil
}

func (s *Store) readDoc(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeDoc persists one document via tmp file and rename. Callers hold
// the lock that guards the marshalled state.
func (s *Store) writeDoc(name string, v any) {
	if s.dir == "" {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err == nil {
		tmp := filepath.Join(s.dir, name+".tmp")
		if err = os.WriteFile(tmp, data, 0o644); err == nil {
			err = os.Rename(tmp, filepath.Join(s.dir, name))
		}
	}
	if err != nil && s.log != nil {
		s.log.Warn("persist failed, keeping in-memory state",
			zap.String("doc", name), zap.Error(err))
	}
}

func (s *Store) persistUsers() {
	docs := make([]userDoc, 0, len(s.users))
	for _, u := range s.users {
		docs = append(docs, userDoc{
			ID:           u.ID,
			Username:     u.Username,
			PasswordSalt: u.PasswordSalt,
			PasswordHash: u.PasswordHash,
			BalanceGHX:   u.BalanceGHX,
			BalanceGCX:   u.BalanceGCX,
			OwnedCells:   u.OwnedList(),
			Version:      u.Version,
			CreatedAt:    u.CreatedAt,
		})
	}
	s.writeDoc(usersDoc, docs)
}

func (s *Store) persistCache() {
	recs := make([]zone.Classification, 0, len(s.cache))
	for _, rec := range s.cache {
		recs = append(recs, rec)
	}
	s.writeDoc(cacheDoc, recs)
}

func (s *Store) persistCoast() {
	cells := make([]string, 0, len(s.coast))
	for cell := range s.coast {
		cells = append(cells, cell)
	}
	s.writeDoc(coastDoc, cells)
}

func (s *Store) persistEvents() {
	s.writeDoc(eventsDoc, s.events)
}

func (s *Store) persistTreasury() {
	s.writeDoc(treasuryDoc, treasuryDocBody{Balance: s.treasury})
}

// Transaction marker: repositories skip their own locking when the
// TxManager already holds the store lock.
type txKeyType struct{}

var txKey = txKeyType{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey).(bool)
	return v
}

func (s *Store) lockFor(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlockFor(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func cloneUser(u mining.User) mining.User {
	out := u
	out.OwnedCells = u.CloneOwned()
	return out
}
