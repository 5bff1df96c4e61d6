// Package classify turns a grid cell into a zone category using the
// external feature query service, the classification cache and the
// coastal safety buffer side effect.
package classify

import (
	"context"
	"errors"
	"math"

	"geohex/internal/app/coast"
	"geohex/internal/app/ports"
	"geohex/internal/domain/geo"
	"geohex/internal/domain/mining"
	"geohex/internal/domain/zone"

	"go.uber.org/zap"
)

var ErrInvalidRequest = errors.New("invalid classify request")

// fallbackLatitudeCutoff splits the deterministic fallback bands: at or
// above this absolute latitude an unreachable-upstream cell defaults to
// SEA, below it to INTERURBAN.
const fallbackLatitudeCutoff = 60.0

type UseCase struct {
	Features ports.FeatureQueryService
	Cache    ports.ClassificationCacheRepository
	Coast    coast.Buffer
	Log      *zap.Logger
}

// Lookup is the cache-first read used by GET /hex/{cell}: a cached
// record wins, otherwise the cell is classified with the area variant.
func (u UseCase) Lookup(ctx context.Context, cell string) (zone.Classification, error) {
	if !geo.IsValidCell(cell) {
		return zone.Classification{}, ErrInvalidRequest
	}
	rec, err := u.Cache.Get(ctx, cell)
	if err == nil {
		return u.widen(ctx, rec), nil
	}
	if !errors.Is(err, ports.ErrNotFound) && u.Log != nil {
		u.Log.Warn("classification cache read failed", zap.String("cell", cell), zap.Error(err))
	}
	return u.classify(ctx, cell, zone.VariantArea)
}

// ClassifyArea classifies the cell from a bounding-box feature query.
func (u UseCase) ClassifyArea(ctx context.Context, cell string) (zone.Classification, error) {
	if !geo.IsValidCell(cell) {
		return zone.Classification{}, ErrInvalidRequest
	}
	return u.classify(ctx, cell, zone.VariantArea)
}

// ClassifyLocal classifies the cell from a fixed-radius circle query.
func (u UseCase) ClassifyLocal(ctx context.Context, cell string) (zone.Classification, error) {
	if !geo.IsValidCell(cell) {
		return zone.Classification{}, ErrInvalidRequest
	}
	return u.classify(ctx, cell, zone.VariantLocal)
}

// LocalCached is the drive-mode path: cached record if present,
// otherwise a local-variant classification. The cache is consulted
// before any external query.
func (u UseCase) LocalCached(ctx context.Context, cell string) (zone.Classification, error) {
	if !geo.IsValidCell(cell) {
		return zone.Classification{}, ErrInvalidRequest
	}
	if rec, err := u.Cache.Get(ctx, cell); err == nil {
		return rec, nil
	}
	return u.classify(ctx, cell, zone.VariantLocal)
}

func (u UseCase) classify(ctx context.Context, cell string, variant zone.Variant) (zone.Classification, error) {
	region, err := queryRegion(cell, variant)
	if err != nil {
		return zone.Classification{}, err
	}

	features, err := u.Features.Query(ctx, region)
	if err != nil {
		if errors.Is(err, ports.ErrUpstreamUnavailable) {
			if u.Log != nil {
				u.Log.Warn("classification falling back", zap.String("cell", cell), zap.Error(err))
			}
			// Fallback results are never cached: the cache holds only
			// upstream-confirmed classifications.
			return u.fallback(cell), nil
		}
		return zone.Classification{}, err
	}

	scan := zone.ScanFeatures(features)
	rec := zone.Classification{
		Cell:        cell,
		Category:    zone.Resolve(scan, variant),
		Evidence:    scan.Evidence,
		RoadPresent: scan.RoadPresent,
		RoadClass:   scan.RoadClass,
	}
	if rec.Evidence == nil {
		rec.Evidence = []string{}
	}

	if rec.Category == zone.CategoryCoast {
		if err := u.Coast.MarkAndExpand(ctx, cell); err != nil && u.Log != nil {
			u.Log.Warn("coastal buffer expansion failed", zap.String("cell", cell), zap.Error(err))
		}
	}
	if err := u.Cache.Put(ctx, rec); err != nil && u.Log != nil {
		u.Log.Warn("classification cache write failed", zap.String("cell", cell), zap.Error(err))
	}

	if variant == zone.VariantArea {
		rec = u.widen(ctx, rec)
	}
	return rec, nil
}

// widen overrides the returned category to COAST when a cached COAST
// cell sits within the display ring. It reads the cache only and never
// writes anything back, so the widened result cannot re-seed the cache.
func (u UseCase) widen(ctx context.Context, rec zone.Classification) zone.Classification {
	if rec.Category == zone.CategoryCoast || rec.Category.HighPriority() {
		return rec
	}
	ring, err := geo.Disk(rec.Cell, mining.CoastWidenRadius)
	if err != nil {
		return rec
	}
	for _, neighbor := range ring {
		if neighbor == rec.Cell {
			continue
		}
		cached, err := u.Cache.Get(ctx, neighbor)
		if err != nil || cached.Category != zone.CategoryCoast {
			continue
		}
		rec.Category = zone.CategoryCoast
		rec.Evidence = append(append([]string{}, rec.Evidence...), "coast nearby: "+neighbor)
		return rec
	}
	return rec
}

func (u UseCase) fallback(cell string) zone.Classification {
	lat, _, _ := geo.CellCenter(cell)
	category := zone.CategoryInterurban
	if math.Abs(lat) >= fallbackLatitudeCutoff {
		category = zone.CategorySea
	}
	return zone.Classification{
		Cell:     cell,
		Category: category,
		Evidence: []string{"fallback: map data unavailable"},
	}
}

func queryRegion(cell string, variant zone.Variant) (ports.QueryRegion, error) {
	if variant == zone.VariantLocal {
		lat, lng, err := geo.CellCenter(cell)
		if err != nil {
			return ports.QueryRegion{}, err
		}
		return ports.QueryRegion{
			Kind:         ports.RegionAround,
			Lat:          lat,
			Lng:          lng,
			RadiusMeters: mining.LocalQueryRadiusMeters,
		}, nil
	}
	south, west, north, east, err := geo.BoundingBox(cell)
	if err != nil {
		return ports.QueryRegion{}, err
	}
	return ports.QueryRegion{
		Kind:  ports.RegionBBox,
		South: south,
		West:  west,
		North: north,
		East:  east,
	}, nil
}
