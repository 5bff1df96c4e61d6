package history

import (
	"context"
	"errors"
	"strings"

	"geohex/internal/app/ports"
	"geohex/internal/domain/mining"
)

var ErrInvalidRequest = errors.New("invalid history request")

const defaultLimit = 50

type Request struct {
	UserID       string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

type Response struct {
	Events []mining.Event `json:"events"`
	Count  int            `json:"count"`
}

// UseCase lists a user's mining events newest first, optionally
// narrowed to a unix-seconds time window.
type UseCase struct {
	Events ports.MiningEventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	events, err := u.Events.ListByUserID(ctx, req.UserID, limit)
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	return Response{Events: events, Count: len(events)}, nil
}

func filterByTimeWindow(events []mining.Event, from, to int64) []mining.Event {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]mining.Event, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}
