package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrUpstreamUnavailable means the map-data service exhausted its
	// retry budget. Callers recover with the deterministic fallback
	// classification; it is never surfaced as a hard failure.
	ErrUpstreamUnavailable = errors.New("map data upstream unavailable")
)
