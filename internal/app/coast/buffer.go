// Package coast grows and consults the coastal safety buffer: the
// persisted set of cells forbidden for mining due to coastal proximity.
package coast

import (
	"context"

	"geohex/internal/app/ports"
	"geohex/internal/domain/geo"
	"geohex/internal/domain/mining"

	"go.uber.org/zap"
)

// Buffer wraps the buffer repository with the growth policy. The set is
// monotonically non-decreasing: cells are only ever added.
type Buffer struct {
	Repo ports.CoastalBufferRepository
	Log  *zap.Logger
}

// MarkAndExpand unions the full disk of radius CoastGrowRadius around a
// coastline observation into the buffer. Idempotent; the repository
// persists only when the set actually grew.
func (b Buffer) MarkAndExpand(ctx context.Context, cell string) error {
	cells, err := geo.Disk(cell, mining.CoastGrowRadius)
	if err != nil {
		return err
	}
	added, err := b.Repo.AddAll(ctx, cells)
	if err != nil {
		return err
	}
	if added > 0 && b.Log != nil {
		b.Log.Info("coastal buffer grew",
			zap.String("cell", cell),
			zap.Int("added", added))
	}
	return nil
}

// Contains reports whether the cell is forbidden for mining.
func (b Buffer) Contains(ctx context.Context, cell string) (bool, error) {
	return b.Repo.Contains(ctx, cell)
}
