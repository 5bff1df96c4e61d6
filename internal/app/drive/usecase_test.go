package drive

import (
	"context"
	"errors"
	"testing"
	"time"

	"geohex/internal/adapter/repo/filestore"
	"geohex/internal/domain/geo"
	"geohex/internal/domain/mining"
	"geohex/internal/domain/zone"
)

var testNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

// roadMap classifies the cells in its set as main roads and everything
// else as empty interurban land.
type roadMap map[string]struct{}

var _ Classifier = roadMap{}

func (m roadMap) LocalCached(_ context.Context, cell string) (zone.Classification, error) {
	if _, ok := m[cell]; ok {
		return zone.Classification{Cell: cell, Category: zone.CategoryMainRoad, RoadPresent: true, RoadClass: "motorway"}, nil
	}
	return zone.Classification{Cell: cell, Category: zone.CategoryInterurban}, nil
}

type testEngine struct {
	store *filestore.Store
	roads roadMap
	uc    UseCase
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	store, err := filestore.Open("", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	e := &testEngine{store: store, roads: roadMap{}}
	e.uc = UseCase{
		Tx:         filestore.NewTxManager(store),
		Users:      filestore.NewUserRepo(store),
		Events:     filestore.NewEventRepo(store),
		Treasury:   filestore.NewTreasuryRepo(store),
		Classifier: e.roads,
		Now:        func() time.Time { return testNow },
	}
	return e
}

func (e *testEngine) seedUser(t *testing.T, id string, balance int64) {
	t.Helper()
	err := filestore.NewUserRepo(e.store).Create(context.Background(), mining.User{
		ID:         id,
		Username:   "user-" + id,
		BalanceGHX: balance,
		Version:    1,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func (e *testEngine) balance(t *testing.T, id string) int64 {
	t.Helper()
	u, err := filestore.NewUserRepo(e.store).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u.BalanceGHX
}

var (
	centerCell = geo.CellFromLatLng(41.3874, 2.1686)
	stepFrom   = geo.CellFromLatLng(41.3874, 2.1686)
	stepTo     = geo.CellFromLatLng(41.3920, 2.1686)
)

func TestSimulate_ClaimsRoadCellsInDisk(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 10)

	disk, err := geo.Disk(centerCell, mining.DriveDiskRadius)
	if err != nil {
		t.Fatalf("disk: %v", err)
	}
	for _, cell := range disk[:3] {
		e.roads[cell] = struct{}{}
	}

	res, err := e.uc.Simulate(context.Background(), SimulateRequest{UserID: "u1", CenterCell: centerCell})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !res.OK || res.AddedCells != 3 || len(res.ClaimedCells) != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Cost != mining.DriveSimulateCost {
		t.Fatalf("cost = %d", res.Cost)
	}
	// 3 cells at unit reward minus the flat cost nets out to zero.
	if res.NewBalance != 10 {
		t.Fatalf("balance = %d, want 10", res.NewBalance)
	}
	if bal, _ := filestore.NewTreasuryRepo(e.store).Balance(context.Background()); bal != mining.DriveSimulateCost {
		t.Fatalf("treasury = %d, want %d", bal, mining.DriveSimulateCost)
	}
	events, err := filestore.NewEventRepo(e.store).ListByUserID(context.Background(), "u1", 10)
	if err != nil || len(events) != 3 {
		t.Fatalf("events = %v, %v", events, err)
	}
}

func TestSimulate_NoRoadsMeansNoDebit(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 10)

	res, err := e.uc.Simulate(context.Background(), SimulateRequest{UserID: "u1", CenterCell: centerCell})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.OK || res.Reason != mining.ReasonNoRoadHexes {
		t.Fatalf("expected NO_ROAD_HEXES, got %+v", res)
	}
	if got := e.balance(t, "u1"); got != 10 {
		t.Fatalf("debited without claims: %d", got)
	}
}

func TestSimulate_InsufficientBalance(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", mining.DriveSimulateCost-1)
	e.roads[centerCell] = struct{}{}

	res, err := e.uc.Simulate(context.Background(), SimulateRequest{UserID: "u1", CenterCell: centerCell})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.OK || res.Reason != mining.ReasonInsufficientGHX {
		t.Fatalf("expected INSUFFICIENT_GHX, got %+v", res)
	}
}

func TestSimulate_SecondRunSkipsOwnedCells(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 20)
	e.roads[centerCell] = struct{}{}

	if _, err := e.uc.Simulate(context.Background(), SimulateRequest{UserID: "u1", CenterCell: centerCell}); err != nil {
		t.Fatalf("first Simulate: %v", err)
	}
	res, err := e.uc.Simulate(context.Background(), SimulateRequest{UserID: "u1", CenterCell: centerCell})
	if err != nil {
		t.Fatalf("second Simulate: %v", err)
	}
	if res.OK || res.Reason != mining.ReasonNoRoadHexes {
		t.Fatalf("owned cell reclaimed: %+v", res)
	}
}

func TestStep_ClaimsRoadCellsWithFee(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 10)

	path, err := geo.Path(stepFrom, stepTo)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if len(path) < 12 {
		t.Fatalf("path too short for this scenario: %d cells", len(path))
	}
	for _, cell := range path[:12] {
		e.roads[cell] = struct{}{}
	}

	res, err := e.uc.Step(context.Background(), StepRequest{UserID: "u1", FromCell: stepFrom, ToCell: stepTo})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !res.OK || res.Count != 12 || res.GrossReward != 12 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// floor(0.1 * 12) = 1
	if res.Fee != 1 || res.NetDelta != 11 || res.NewBalance != 21 {
		t.Fatalf("fee math wrong: %+v", res)
	}
	if bal, _ := filestore.NewTreasuryRepo(e.store).Balance(context.Background()); bal != 1 {
		t.Fatalf("treasury = %d, want 1", bal)
	}
}

func TestStep_SmallBatchPaysNoFee(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 10)

	path, err := geo.Path(stepFrom, stepTo)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if len(path) < 6 {
		t.Fatalf("path too short for this scenario: %d cells", len(path))
	}
	for _, cell := range path[:6] {
		e.roads[cell] = struct{}{}
	}

	res, err := e.uc.Step(context.Background(), StepRequest{UserID: "u1", FromCell: stepFrom, ToCell: stepTo})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	// floor(0.1 * 6) = 0: the whole gross reward is kept.
	if !res.OK || res.Count != 6 || res.Fee != 0 || res.NetDelta != 6 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := e.balance(t, "u1"); got != 16 {
		t.Fatalf("balance = %d, want 16", got)
	}
	if bal, _ := filestore.NewTreasuryRepo(e.store).Balance(context.Background()); bal != 0 {
		t.Fatalf("treasury = %d, want 0", bal)
	}
}

func TestStep_FallsBackToDestination(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 10)

	res, err := e.uc.Step(context.Background(), StepRequest{UserID: "u1", FromCell: stepFrom, ToCell: stepTo})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !res.OK || res.Count != 1 || len(res.ClaimedCells) != 1 || res.ClaimedCells[0] != stepTo {
		t.Fatalf("expected destination fallback, got %+v", res)
	}
	if res.Fee != 0 || res.NetDelta != mining.MineReward {
		t.Fatalf("fallback economics wrong: %+v", res)
	}
}

func TestStep_FallbackBlockedWhenDestinationOwned(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 10)
	e.seedUser(t, "u2", 10)

	if _, err := e.uc.Step(context.Background(), StepRequest{UserID: "u2", FromCell: stepFrom, ToCell: stepTo}); err != nil {
		t.Fatalf("u2 Step: %v", err)
	}
	res, err := e.uc.Step(context.Background(), StepRequest{UserID: "u1", FromCell: stepFrom, ToCell: stepTo})
	if err != nil {
		t.Fatalf("u1 Step: %v", err)
	}
	if res.OK || res.Reason != mining.ReasonNoRoadHexes {
		t.Fatalf("expected NO_ROAD_HEXES, got %+v", res)
	}
	if got := e.balance(t, "u1"); got != 10 {
		t.Fatalf("balance changed: %d", got)
	}
}

func TestStep_SameHex(t *testing.T) {
	e := newTestEngine(t)
	e.seedUser(t, "u1", 10)

	res, err := e.uc.Step(context.Background(), StepRequest{UserID: "u1", FromCell: stepFrom, ToCell: stepFrom})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.OK || res.Reason != mining.ReasonSameHex {
		t.Fatalf("expected SAME_HEX, got %+v", res)
	}
}

func TestDrive_InvalidRequests(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.uc.Simulate(context.Background(), SimulateRequest{UserID: "u1", CenterCell: "junk"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := e.uc.Step(context.Background(), StepRequest{UserID: "", FromCell: stepFrom, ToCell: stepTo}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
