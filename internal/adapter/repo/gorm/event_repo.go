package gormrepo

import (
	"context"

	"geohex/internal/adapter/repo/gorm/model"
	"geohex/internal/domain/mining"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []mining.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.MiningEvent, 0, len(events))
	for _, e := range events {
		rows = append(rows, model.MiningEvent{
			ID:         e.ID,
			UserID:     e.UserID,
			Cell:       e.Cell,
			OccurredAt: e.OccurredAt,
		})
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r EventRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]mining.Event, error) {
	rows := []model.MiningEvent{}
	query := getDBFromCtx(ctx, r.db).
		Where(&model.MiningEvent{UserID: userID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "occurred_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]mining.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, mining.Event{
			ID:         row.ID,
			UserID:     row.UserID,
			Cell:       row.Cell,
			OccurredAt: row.OccurredAt,
		})
	}
	return out, nil
}
