// Package mine implements the single-cell claim operations: Mine
// (location-proved claiming for reward) and Spawn (paid relocation
// claiming).
package mine

import (
	"context"
	"errors"
	"strings"
	"time"

	"geohex/internal/app/coast"
	"geohex/internal/app/ports"
	"geohex/internal/domain/geo"
	"geohex/internal/domain/mining"

	"go.uber.org/zap"
)

var ErrInvalidRequest = errors.New("invalid mine request")

type UseCase struct {
	Tx       ports.TxManager
	Users    ports.UserRepository
	Events   ports.MiningEventRepository
	Treasury ports.TreasuryRepository
	Coast    coast.Buffer
	Metrics  ports.ClaimMetrics
	Now      func() time.Time
	Log      *zap.Logger
}

// Mine claims one cell for the user. Ownership conflicts, safety
// violations and GPS failures come back as structured results, not
// errors; the reward is paid exactly once per cell ever.
func (u UseCase) Mine(ctx context.Context, req Request) (Result, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Cell = strings.TrimSpace(req.Cell)
	if req.UserID == "" || !geo.IsValidCell(req.Cell) {
		return Result{}, ErrInvalidRequest
	}
	now := u.now()

	if reason := mining.ValidateGPS(req.GPS, req.Cell, now); reason != mining.ReasonNone {
		return u.finish("mine", rejected(reason)), nil
	}
	forbidden, err := u.Coast.Contains(ctx, req.Cell)
	if err != nil {
		return Result{}, err
	}
	if forbidden {
		return u.finish("mine", rejected(mining.ReasonForbiddenZone)), nil
	}

	var out Result
	err = u.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := u.Users.GetByID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if user.Owns(req.Cell) {
			out = resultFor(user, false, mining.ReasonAlreadyMined)
			return nil
		}
		owner, err := u.Users.OwnerOf(txCtx, req.Cell)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if err == nil && owner != user.ID {
			out = resultFor(user, false, mining.ReasonAlreadyOwnedByOther)
			return nil
		}

		expected := user.Version
		user.Claim(req.Cell)
		user.BalanceGHX += mining.MineReward
		user.Version++
		if err := u.Users.SaveWithVersion(txCtx, user, expected); err != nil {
			return err
		}
		if err := u.Events.Append(txCtx, []mining.Event{mining.NewEvent(user.ID, req.Cell, now)}); err != nil {
			return err
		}
		out = resultFor(user, true, mining.ReasonNone)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return u.finish("mine", out), nil
}

// Spawn claims one cell without adjacency to anything previously owned;
// it is the mechanism for opening a disconnected claim area. It costs
// SpawnCost GHX (credited to the treasury) and pays no reward.
func (u UseCase) Spawn(ctx context.Context, req Request) (Result, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Cell = strings.TrimSpace(req.Cell)
	if req.UserID == "" || !geo.IsValidCell(req.Cell) {
		return Result{}, ErrInvalidRequest
	}
	now := u.now()

	if reason := mining.ValidateGPS(req.GPS, req.Cell, now); reason != mining.ReasonNone {
		return u.finish("spawn", rejected(reason)), nil
	}
	forbidden, err := u.Coast.Contains(ctx, req.Cell)
	if err != nil {
		return Result{}, err
	}
	if forbidden {
		return u.finish("spawn", rejected(mining.ReasonForbiddenZone)), nil
	}

	var out Result
	err = u.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := u.Users.GetByID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if user.Owns(req.Cell) {
			out = resultFor(user, false, mining.ReasonAlreadyOwned)
			return nil
		}
		if owner, err := u.Users.OwnerOf(txCtx, req.Cell); err == nil && owner != user.ID {
			out = resultFor(user, false, mining.ReasonAlreadyOwned)
			return nil
		} else if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if user.BalanceGHX < mining.SpawnCost {
			out = resultFor(user, false, mining.ReasonInsufficientGHX)
			return nil
		}

		expected := user.Version
		user.Claim(req.Cell)
		user.BalanceGHX -= mining.SpawnCost
		user.Version++
		if err := u.Users.SaveWithVersion(txCtx, user, expected); err != nil {
			return err
		}
		if err := u.Treasury.Add(txCtx, mining.SpawnCost); err != nil {
			return err
		}
		if err := u.Events.Append(txCtx, []mining.Event{mining.NewEvent(user.ID, req.Cell, now)}); err != nil {
			return err
		}
		out = resultFor(user, true, mining.ReasonNone)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if out.OK && u.Log != nil {
		u.Log.Info("spawn claimed", zap.String("user", req.UserID), zap.String("cell", req.Cell))
	}
	return u.finish("spawn", out), nil
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func rejected(reason mining.Reason) Result {
	return Result{OK: false, Reason: reason}
}

func (u UseCase) finish(op string, res Result) Result {
	if u.Metrics == nil {
		return res
	}
	if res.OK {
		u.Metrics.RecordClaim(op, 1)
	} else if res.Reason != mining.ReasonNone {
		u.Metrics.RecordRejection(op, res.Reason)
	}
	return res
}

func resultFor(user mining.User, ok bool, reason mining.Reason) Result {
	return Result{
		OK:      ok,
		Reason:  reason,
		Balance: user.BalanceGHX,
		Owned:   len(user.OwnedCells),
	}
}
