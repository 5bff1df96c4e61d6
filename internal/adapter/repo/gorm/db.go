// Package gormrepo is the postgres persistence backend. It is selected
// at startup when a database DSN is configured; the file-backed store
// is the default otherwise.
package gormrepo

import (
	"fmt"

	"geohex/internal/adapter/repo/gorm/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.OwnedCell{},
		&model.CachedClassification{},
		&model.CoastCell{},
		&model.MiningEvent{},
		&model.TreasuryLedger{},
	)
}
