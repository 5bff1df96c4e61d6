// Package drive implements movement-based batch claiming: disk
// simulation around a center cell and path stepping between two cells.
// Only road cells qualify, judged by the local classifier variant.
package drive

import (
	"context"
	"errors"
	"strings"
	"time"

	"geohex/internal/app/ports"
	"geohex/internal/domain/geo"
	"geohex/internal/domain/mining"
	"geohex/internal/domain/zone"

	"go.uber.org/zap"
)

var ErrInvalidRequest = errors.New("invalid drive request")

// Classifier is the slice of the classification engine drive mode
// needs: cache-first local-variant classification.
type Classifier interface {
	LocalCached(ctx context.Context, cell string) (zone.Classification, error)
}

type UseCase struct {
	Tx         ports.TxManager
	Users      ports.UserRepository
	Events     ports.MiningEventRepository
	Treasury   ports.TreasuryRepository
	Classifier Classifier
	Metrics    ports.ClaimMetrics
	Now        func() time.Time
	Log        *zap.Logger
}

// Simulate expands a disk around the center cell and claims every
// unowned road cell in it for a single flat cost. The cost is only
// debited when at least one cell is actually claimed.
func (u UseCase) Simulate(ctx context.Context, req SimulateRequest) (SimulateResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.CenterCell = strings.TrimSpace(req.CenterCell)
	if req.UserID == "" || !geo.IsValidCell(req.CenterCell) {
		return SimulateResult{}, ErrInvalidRequest
	}

	user, err := u.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return SimulateResult{}, err
	}
	if user.BalanceGHX < mining.DriveSimulateCost {
		u.record("drive_simulate", false, mining.ReasonInsufficientGHX, 0)
		return SimulateResult{Reason: mining.ReasonInsufficientGHX, NewBalance: user.BalanceGHX}, nil
	}

	cells, err := geo.Disk(req.CenterCell, mining.DriveDiskRadius)
	if err != nil {
		return SimulateResult{}, err
	}
	// Classification happens before the transaction: no ownership or
	// balance lock is held across the network suspension points.
	roadCells := u.roadCells(ctx, cells)
	if len(roadCells) == 0 {
		u.record("drive_simulate", false, mining.ReasonNoRoadHexes, 0)
		return SimulateResult{Reason: mining.ReasonNoRoadHexes, NewBalance: user.BalanceGHX}, nil
	}

	now := u.now()
	var out SimulateResult
	err = u.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := u.Users.GetByID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if user.BalanceGHX < mining.DriveSimulateCost {
			out = SimulateResult{Reason: mining.ReasonInsufficientGHX, NewBalance: user.BalanceGHX}
			return nil
		}
		claimed, err := u.filterUnowned(txCtx, user, roadCells)
		if err != nil {
			return err
		}
		if len(claimed) == 0 {
			out = SimulateResult{Reason: mining.ReasonNoRoadHexes, NewBalance: user.BalanceGHX}
			return nil
		}

		expected := user.Version
		events := make([]mining.Event, 0, len(claimed))
		for _, cell := range claimed {
			user.Claim(cell)
			events = append(events, mining.NewEvent(user.ID, cell, now))
		}
		user.BalanceGHX += int64(len(claimed))*mining.MineReward - mining.DriveSimulateCost
		user.Version++
		if err := u.Users.SaveWithVersion(txCtx, user, expected); err != nil {
			return err
		}
		if err := u.Treasury.Add(txCtx, mining.DriveSimulateCost); err != nil {
			return err
		}
		if err := u.Events.Append(txCtx, events); err != nil {
			return err
		}
		out = SimulateResult{
			OK:           true,
			AddedCells:   len(claimed),
			Cost:         mining.DriveSimulateCost,
			NewBalance:   user.BalanceGHX,
			ClaimedCells: claimed,
		}
		return nil
	})
	if err != nil {
		return SimulateResult{}, err
	}
	u.record("drive_simulate", out.OK, out.Reason, out.AddedCells)
	return out, nil
}

// Step claims the road cells along the shortest path between two cells.
// When the path has no claimable road cells it falls back to claiming
// the destination alone if unowned; that leniency keeps sparsely tagged
// rural roads playable.
func (u UseCase) Step(ctx context.Context, req StepRequest) (StepResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.FromCell = strings.TrimSpace(req.FromCell)
	req.ToCell = strings.TrimSpace(req.ToCell)
	if req.UserID == "" || !geo.IsValidCell(req.FromCell) || !geo.IsValidCell(req.ToCell) {
		return StepResult{}, ErrInvalidRequest
	}
	if req.FromCell == req.ToCell {
		u.record("drive_step", false, mining.ReasonSameHex, 0)
		return StepResult{Reason: mining.ReasonSameHex}, nil
	}

	path, err := geo.Path(req.FromCell, req.ToCell)
	if err != nil {
		return StepResult{}, err
	}
	roadCells := u.roadCells(ctx, path)

	now := u.now()
	var out StepResult
	err = u.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := u.Users.GetByID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		claimed, err := u.filterUnowned(txCtx, user, roadCells)
		if err != nil {
			return err
		}
		if len(claimed) == 0 {
			fallback, err := u.filterUnowned(txCtx, user, []string{req.ToCell})
			if err != nil {
				return err
			}
			claimed = fallback
		}
		if len(claimed) == 0 {
			out = StepResult{Reason: mining.ReasonNoRoadHexes, NewBalance: user.BalanceGHX}
			return nil
		}

		count := len(claimed)
		gross := int64(count) * mining.MineReward
		fee := int64(float64(count) * mining.DriveFeeRate)
		net := gross - fee

		expected := user.Version
		events := make([]mining.Event, 0, count)
		for _, cell := range claimed {
			user.Claim(cell)
			events = append(events, mining.NewEvent(user.ID, cell, now))
		}
		user.BalanceGHX += net
		user.Version++
		if err := u.Users.SaveWithVersion(txCtx, user, expected); err != nil {
			return err
		}
		if fee > 0 {
			if err := u.Treasury.Add(txCtx, fee); err != nil {
				return err
			}
		}
		if err := u.Events.Append(txCtx, events); err != nil {
			return err
		}
		out = StepResult{
			OK:           true,
			ClaimedCells: claimed,
			Count:        count,
			GrossReward:  gross,
			Fee:          fee,
			NetDelta:     net,
			NewBalance:   user.BalanceGHX,
		}
		return nil
	})
	if err != nil {
		return StepResult{}, err
	}
	u.record("drive_step", out.OK, out.Reason, out.Count)
	return out, nil
}

// roadCells local-classifies the cells and keeps those that are main
// roads or carry road presence. Classification errors skip the cell.
func (u UseCase) roadCells(ctx context.Context, cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		rec, err := u.Classifier.LocalCached(ctx, cell)
		if err != nil {
			if u.Log != nil {
				u.Log.Warn("drive classification failed", zap.String("cell", cell), zap.Error(err))
			}
			continue
		}
		if rec.Category == zone.CategoryMainRoad || rec.RoadPresent {
			out = append(out, cell)
		}
	}
	return out
}

// filterUnowned drops cells owned by the user or anyone else. This is
// what makes the batch operations idempotent: a cell is never reclaimed
// and never double-paid.
func (u UseCase) filterUnowned(ctx context.Context, user mining.User, cells []string) ([]string, error) {
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		if user.Owns(cell) {
			continue
		}
		if _, err := u.Users.OwnerOf(ctx, cell); err == nil {
			continue
		} else if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
		out = append(out, cell)
	}
	return out, nil
}

func (u UseCase) record(op string, ok bool, reason mining.Reason, cells int) {
	if u.Metrics == nil {
		return
	}
	if ok {
		u.Metrics.RecordClaim(op, cells)
	} else if reason != mining.ReasonNone {
		u.Metrics.RecordRejection(op, reason)
	}
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}
