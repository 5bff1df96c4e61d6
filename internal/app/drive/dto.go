package drive

import "geohex/internal/domain/mining"

type SimulateRequest struct {
	UserID     string
	CenterCell string
}

type SimulateResult struct {
	OK           bool          `json:"ok"`
	Reason       mining.Reason `json:"reason,omitempty"`
	AddedCells   int           `json:"addedCells"`
	Cost         int64         `json:"cost"`
	NewBalance   int64         `json:"newBalance"`
	ClaimedCells []string      `json:"claimedCells"`
}

type StepRequest struct {
	UserID   string
	FromCell string
	ToCell   string
}

type StepResult struct {
	OK           bool          `json:"ok"`
	Reason       mining.Reason `json:"reason,omitempty"`
	ClaimedCells []string      `json:"claimedCells"`
	Count        int           `json:"count"`
	GrossReward  int64         `json:"grossReward"`
	Fee          int64         `json:"fee"`
	NetDelta     int64         `json:"netDelta"`
	NewBalance   int64         `json:"newBalance"`
}
