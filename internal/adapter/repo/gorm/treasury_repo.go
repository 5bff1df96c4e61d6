package gormrepo

import (
	"context"
	"errors"
	"time"

	"geohex/internal/adapter/repo/gorm/model"

	"gorm.io/gorm"
)

// treasuryRowID: the ledger is a single row, incremented in place.
const treasuryRowID = 1

type TreasuryRepo struct {
	db *gorm.DB
}

func NewTreasuryRepo(db *gorm.DB) TreasuryRepo {
	return TreasuryRepo{db: db}
}

func (r TreasuryRepo) Balance(ctx context.Context) (int64, error) {
	var row model.TreasuryLedger
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", treasuryRowID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.BalanceGHX, nil
}

func (r TreasuryRepo) Add(ctx context.Context, amount int64) error {
	db := getDBFromCtx(ctx, r.db)
	res := db.Model(&model.TreasuryLedger{}).
		Where("id = ?", treasuryRowID).
		Updates(map[string]any{
			"balance_ghx": gorm.Expr("balance_ghx + ?", amount),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	row := model.TreasuryLedger{ID: treasuryRowID, BalanceGHX: amount, UpdatedAt: time.Now().UTC()}
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			// lost the init race, retry as an increment
			return db.Model(&model.TreasuryLedger{}).
				Where("id = ?", treasuryRowID).
				Update("balance_ghx", gorm.Expr("balance_ghx + ?", amount)).Error
		}
		return err
	}
	return nil
}
