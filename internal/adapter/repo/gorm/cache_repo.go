package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"geohex/internal/adapter/repo/gorm/model"
	"geohex/internal/app/ports"
	"geohex/internal/domain/zone"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CacheRepo struct {
	db *gorm.DB
}

func NewCacheRepo(db *gorm.DB) CacheRepo {
	return CacheRepo{db: db}
}

func (r CacheRepo) Get(ctx context.Context, cell string) (zone.Classification, error) {
	var row model.CachedClassification
	if err := getDBFromCtx(ctx, r.db).Where("cell = ?", cell).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zone.Classification{}, ports.ErrNotFound
		}
		return zone.Classification{}, err
	}
	var evidence []string
	if len(row.Evidence) > 0 {
		_ = json.Unmarshal(row.Evidence, &evidence)
	}
	return zone.Classification{
		Cell:        row.Cell,
		Category:    zone.Category(row.Category),
		Evidence:    evidence,
		RoadPresent: row.RoadPresent,
		RoadClass:   row.RoadClass,
	}, nil
}

func (r CacheRepo) Put(ctx context.Context, record zone.Classification) error {
	evidence, _ := json.Marshal(record.Evidence)
	row := model.CachedClassification{
		Cell:        record.Cell,
		Category:    string(record.Category),
		Evidence:    evidence,
		RoadPresent: record.RoadPresent,
		RoadClass:   record.RoadClass,
		UpdatedAt:   time.Now().UTC(),
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}
