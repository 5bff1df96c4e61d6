package ports

import (
	"context"

	"geohex/internal/domain/zone"
)

// RegionKind selects the query geometry.
type RegionKind int

const (
	// RegionBBox is the bounding-box query used by the area variant.
	RegionBBox RegionKind = iota
	// RegionAround is the fixed-radius circle used by the local variant.
	RegionAround
)

// QueryRegion is the geometry handed to the feature query service.
type QueryRegion struct {
	Kind RegionKind

	// Bounding box, set when Kind == RegionBBox.
	South, West, North, East float64

	// Circle, set when Kind == RegionAround.
	Lat, Lng     float64
	RadiusMeters float64
}

// FeatureQueryService returns the tagged map features intersecting a
// region. Implementations own retry, failover and backoff; after
// exhausting those they fail with ErrUpstreamUnavailable.
type FeatureQueryService interface {
	Query(ctx context.Context, region QueryRegion) ([]zone.Feature, error)
}
