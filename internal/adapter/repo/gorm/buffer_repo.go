package gormrepo

import (
	"context"
	"time"

	"geohex/internal/adapter/repo/gorm/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BufferRepo struct {
	db *gorm.DB
}

func NewBufferRepo(db *gorm.DB) BufferRepo {
	return BufferRepo{db: db}
}

func (r BufferRepo) Contains(ctx context.Context, cell string) (bool, error) {
	var count int64
	err := getDBFromCtx(ctx, r.db).Model(&model.CoastCell{}).
		Where("cell = ?", cell).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r BufferRepo) AddAll(ctx context.Context, cells []string) (int, error) {
	if len(cells) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([]model.CoastCell, 0, len(cells))
	for _, cell := range cells {
		rows = append(rows, model.CoastCell{Cell: cell, CreatedAt: now})
	}
	res := getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
