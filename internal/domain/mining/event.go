package mining

import (
	"time"

	"github.com/google/uuid"
)

// Event is one append-only audit record of a successful claim. Never
// mutated after creation.
type Event struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Cell       string    `json:"cell"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(userID, cell string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		UserID:     userID,
		Cell:       cell,
		OccurredAt: at,
	}
}
