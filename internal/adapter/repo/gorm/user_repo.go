package gormrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"geohex/internal/adapter/repo/gorm/model"
	"geohex/internal/app/ports"
	"geohex/internal/domain/mining"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return UserRepo{db: db}
}

func (r UserRepo) GetByID(ctx context.Context, id string) (mining.User, error) {
	var row model.User
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mining.User{}, ports.ErrNotFound
		}
		return mining.User{}, err
	}
	return r.toDomain(ctx, row)
}

func (r UserRepo) GetByUsername(ctx context.Context, username string) (mining.User, error) {
	var row model.User
	if err := getDBFromCtx(ctx, r.db).Where("username = ?", username).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mining.User{}, ports.ErrNotFound
		}
		return mining.User{}, err
	}
	return r.toDomain(ctx, row)
}

func (r UserRepo) Create(ctx context.Context, user mining.User) error {
	row := model.User{
		ID:           user.ID,
		Username:     user.Username,
		PasswordSalt: user.PasswordSalt,
		PasswordHash: user.PasswordHash,
		BalanceGHX:   user.BalanceGHX,
		BalanceGCX:   user.BalanceGCX,
		Version:      user.Version,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := getDBFromCtx(ctx, r.db).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r UserRepo) SaveWithVersion(ctx context.Context, user mining.User, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)

	res := db.Model(&model.User{}).
		Where("id = ? AND version = ?", user.ID, expectedVersion).
		Updates(map[string]any{
			"balance_ghx": user.BalanceGHX,
			"balance_gcx": user.BalanceGCX,
			"version":     user.Version,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.User{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ports.ErrNotFound
		}
		return ports.ErrConflict
	}

	return r.syncOwnedCells(ctx, user)
}

// syncOwnedCells registers the aggregate's owned cells in the global
// index. The cell primary key carries the one-owner guarantee: an
// insert skipped because another user already holds the cell surfaces
// as ErrConflict and rolls the surrounding transaction back.
func (r UserRepo) syncOwnedCells(ctx context.Context, user mining.User) error {
	if len(user.OwnedCells) == 0 {
		return nil
	}
	db := getDBFromCtx(ctx, r.db)

	now := time.Now().UTC()
	rows := make([]model.OwnedCell, 0, len(user.OwnedCells))
	cells := make([]string, 0, len(user.OwnedCells))
	for cell := range user.OwnedCells {
		rows = append(rows, model.OwnedCell{Cell: cell, UserID: user.ID, CreatedAt: now})
		cells = append(cells, cell)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return err
	}

	var held int64
	if err := db.Model(&model.OwnedCell{}).
		Where("cell IN ? AND user_id = ?", cells, user.ID).
		Count(&held).Error; err != nil {
		return err
	}
	if held != int64(len(cells)) {
		return ports.ErrConflict
	}
	return nil
}

func (r UserRepo) OwnerOf(ctx context.Context, cell string) (string, error) {
	var row model.OwnedCell
	if err := getDBFromCtx(ctx, r.db).Where("cell = ?", cell).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ports.ErrNotFound
		}
		return "", err
	}
	return row.UserID, nil
}

func (r UserRepo) toDomain(ctx context.Context, row model.User) (mining.User, error) {
	var cells []model.OwnedCell
	if err := getDBFromCtx(ctx, r.db).Where("user_id = ?", row.ID).Find(&cells).Error; err != nil {
		return mining.User{}, err
	}
	owned := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		owned[c.Cell] = struct{}{}
	}
	return mining.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordSalt: row.PasswordSalt,
		PasswordHash: row.PasswordHash,
		BalanceGHX:   row.BalanceGHX,
		BalanceGCX:   row.BalanceGCX,
		OwnedCells:   owned,
		Version:      row.Version,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
