package classify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"geohex/internal/app/coast"
	"geohex/internal/app/ports"
	"geohex/internal/domain/geo"
	"geohex/internal/domain/zone"
)

const testCell = "8b3f4dc1e26dfff"

type fakeFeatureService struct {
	features []zone.Feature
	err      error
	calls    int
}

func (f *fakeFeatureService) Query(_ context.Context, _ ports.QueryRegion) ([]zone.Feature, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.features, nil
}

type fakeCache struct {
	records map[string]zone.Classification
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: map[string]zone.Classification{}}
}

func (c *fakeCache) Get(_ context.Context, cell string) (zone.Classification, error) {
	rec, ok := c.records[cell]
	if !ok {
		return zone.Classification{}, ports.ErrNotFound
	}
	return rec, nil
}

func (c *fakeCache) Put(_ context.Context, rec zone.Classification) error {
	c.puts++
	c.records[rec.Cell] = rec
	return nil
}

type fakeBuffer struct {
	cells map[string]struct{}
}

func newFakeBuffer() *fakeBuffer { return &fakeBuffer{cells: map[string]struct{}{}} }

func (b *fakeBuffer) Contains(_ context.Context, cell string) (bool, error) {
	_, ok := b.cells[cell]
	return ok, nil
}

func (b *fakeBuffer) AddAll(_ context.Context, cells []string) (int, error) {
	added := 0
	for _, c := range cells {
		if _, ok := b.cells[c]; !ok {
			b.cells[c] = struct{}{}
			added++
		}
	}
	return added, nil
}

var (
	_ ports.FeatureQueryService           = (*fakeFeatureService)(nil)
	_ ports.ClassificationCacheRepository = (*fakeCache)(nil)
	_ ports.CoastalBufferRepository       = (*fakeBuffer)(nil)
)

func newUseCase(svc *fakeFeatureService, cache *fakeCache, buf *fakeBuffer) UseCase {
	return UseCase{
		Features: svc,
		Cache:    cache,
		Coast:    coast.Buffer{Repo: buf},
	}
}

func TestLookup_CacheFirst(t *testing.T) {
	svc := &fakeFeatureService{}
	cache := newFakeCache()
	cache.records[testCell] = zone.Classification{Cell: testCell, Category: zone.CategoryUrban, Evidence: []string{"building=yes"}}
	uc := newUseCase(svc, cache, newFakeBuffer())

	rec, err := uc.Lookup(context.Background(), testCell)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Category != zone.CategoryUrban {
		t.Fatalf("category = %s, want URBAN", rec.Category)
	}
	if svc.calls != 0 {
		t.Fatalf("cache hit must not query upstream, got %d calls", svc.calls)
	}
}

func TestClassify_DefaultAsymmetry(t *testing.T) {
	// No tagged features in either variant.
	svc := &fakeFeatureService{}
	uc := newUseCase(svc, newFakeCache(), newFakeBuffer())

	area, err := uc.ClassifyArea(context.Background(), testCell)
	if err != nil {
		t.Fatalf("ClassifyArea: %v", err)
	}
	if area.Category != zone.CategoryInterurban {
		t.Fatalf("area category = %s, want INTERURBAN", area.Category)
	}

	local, err := uc.ClassifyLocal(context.Background(), testCell)
	if err != nil {
		t.Fatalf("ClassifyLocal: %v", err)
	}
	if local.Category != zone.CategorySea {
		t.Fatalf("local category = %s, want SEA", local.Category)
	}
}

func TestClassify_FallbackNeverWritesCache(t *testing.T) {
	svc := &fakeFeatureService{err: fmt.Errorf("all endpoints down: %w", ports.ErrUpstreamUnavailable)}
	cache := newFakeCache()
	uc := newUseCase(svc, cache, newFakeBuffer())

	rec, err := uc.Lookup(context.Background(), testCell)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	lat, _, _ := geo.CellCenter(testCell)
	want := zone.CategoryInterurban
	if math.Abs(lat) >= 60 {
		want = zone.CategorySea
	}
	if rec.Category != want {
		t.Fatalf("fallback category = %s, want %s", rec.Category, want)
	}
	if cache.puts != 0 {
		t.Fatalf("fallback wrote %d cache entries", cache.puts)
	}
}

func TestClassify_OtherErrorsPropagate(t *testing.T) {
	wantErr := errors.New("bad request")
	svc := &fakeFeatureService{err: wantErr}
	uc := newUseCase(svc, newFakeCache(), newFakeBuffer())

	if _, err := uc.ClassifyArea(context.Background(), testCell); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestClassify_SuccessWritesCache(t *testing.T) {
	svc := &fakeFeatureService{features: []zone.Feature{{Type: "way", Tags: map[string]string{"highway": "motorway"}}}}
	cache := newFakeCache()
	uc := newUseCase(svc, cache, newFakeBuffer())

	rec, err := uc.ClassifyArea(context.Background(), testCell)
	if err != nil {
		t.Fatalf("ClassifyArea: %v", err)
	}
	if rec.Category != zone.CategoryMainRoad || !rec.RoadPresent || rec.RoadClass != "motorway" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if cache.puts != 1 {
		t.Fatalf("expected one cache write, got %d", cache.puts)
	}
}

func TestClassify_CoastGrowsBuffer(t *testing.T) {
	svc := &fakeFeatureService{features: []zone.Feature{{Type: "way", Tags: map[string]string{"natural": "coastline"}}}}
	buf := newFakeBuffer()
	uc := newUseCase(svc, newFakeCache(), buf)

	rec, err := uc.ClassifyArea(context.Background(), testCell)
	if err != nil {
		t.Fatalf("ClassifyArea: %v", err)
	}
	if rec.Category != zone.CategoryCoast {
		t.Fatalf("category = %s, want COAST", rec.Category)
	}
	if len(buf.cells) != 61 {
		t.Fatalf("buffer grew by %d cells, want full radius-4 disk of 61", len(buf.cells))
	}
}

func TestWiden_OverridesLowPriorityOnly(t *testing.T) {
	neighbors, err := geo.Disk(testCell, 1)
	if err != nil {
		t.Fatalf("Disk: %v", err)
	}
	var neighbor string
	for _, n := range neighbors {
		if n != testCell {
			neighbor = n
			break
		}
	}

	cache := newFakeCache()
	cache.records[neighbor] = zone.Classification{Cell: neighbor, Category: zone.CategoryCoast}

	svc := &fakeFeatureService{}
	uc := newUseCase(svc, cache, newFakeBuffer())

	rec, err := uc.ClassifyArea(context.Background(), testCell)
	if err != nil {
		t.Fatalf("ClassifyArea: %v", err)
	}
	if rec.Category != zone.CategoryCoast {
		t.Fatalf("widening should override INTERURBAN, got %s", rec.Category)
	}
	// The stored record keeps the base category: widening is a pure read.
	if stored := cache.records[testCell]; stored.Category != zone.CategoryInterurban {
		t.Fatalf("widening leaked into the cache: %s", stored.Category)
	}

	// High-priority categories are never overridden.
	svc.features = []zone.Feature{{Type: "way", Tags: map[string]string{"highway": "trunk"}}}
	rec, err = uc.ClassifyArea(context.Background(), testCell)
	if err != nil {
		t.Fatalf("ClassifyArea: %v", err)
	}
	if rec.Category != zone.CategoryMainRoad {
		t.Fatalf("widening must not override MAIN_ROAD, got %s", rec.Category)
	}
}

func TestLocalCached_PrefersCache(t *testing.T) {
	svc := &fakeFeatureService{}
	cache := newFakeCache()
	cache.records[testCell] = zone.Classification{Cell: testCell, Category: zone.CategoryMainRoad, RoadPresent: true}
	uc := newUseCase(svc, cache, newFakeBuffer())

	rec, err := uc.LocalCached(context.Background(), testCell)
	if err != nil {
		t.Fatalf("LocalCached: %v", err)
	}
	if rec.Category != zone.CategoryMainRoad || svc.calls != 0 {
		t.Fatalf("cached record not used: %+v calls=%d", rec, svc.calls)
	}
}

func TestClassify_InvalidCell(t *testing.T) {
	uc := newUseCase(&fakeFeatureService{}, newFakeCache(), newFakeBuffer())
	if _, err := uc.Lookup(context.Background(), "junk"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
