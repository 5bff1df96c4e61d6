package mine

import "geohex/internal/domain/mining"

type Request struct {
	UserID string
	Cell   string
	GPS    *mining.GPSProof
}

// Result is the structured claim outcome. Reason is empty on success.
type Result struct {
	OK      bool          `json:"ok"`
	Reason  mining.Reason `json:"reason,omitempty"`
	Balance int64         `json:"balance"`
	Owned   int           `json:"owned"`
}
