// Package model holds the relational rows backing the postgres
// repositories. Ownership lives in its own table so the cell-uniqueness
// guarantee can ride on a primary key instead of application checks.
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey;size:64"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordSalt []byte
	PasswordHash []byte
	BalanceGHX   int64 `gorm:"column:balance_ghx;not null"`
	BalanceGCX   int64 `gorm:"column:balance_gcx;not null"`
	Version      int64 `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OwnedCell struct {
	Cell      string `gorm:"primaryKey;size:32"`
	UserID    string `gorm:"index;size:64;not null"`
	CreatedAt time.Time
}

type CachedClassification struct {
	Cell        string `gorm:"primaryKey;size:32"`
	Category    string `gorm:"size:32;not null"`
	Evidence    []byte
	RoadPresent bool
	RoadClass   string `gorm:"size:32"`
	UpdatedAt   time.Time
}

type CoastCell struct {
	Cell      string `gorm:"primaryKey;size:32"`
	CreatedAt time.Time
}

type MiningEvent struct {
	ID         string    `gorm:"primaryKey;size:64"`
	UserID     string    `gorm:"index;size:64;not null"`
	Cell       string    `gorm:"size:32;not null"`
	OccurredAt time.Time `gorm:"index"`
}

type TreasuryLedger struct {
	ID         int32 `gorm:"primaryKey"`
	BalanceGHX int64 `gorm:"column:balance_ghx;not null"`
	UpdatedAt  time.Time
}
