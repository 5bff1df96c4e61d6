package inmemory

import (
	"sync"

	"geohex/internal/app/ports"
	"geohex/internal/domain/mining"
)

var _ ports.ClaimMetrics = (*Recorder)(nil)

type Snapshot struct {
	ClaimTotal    uint64            `json:"claimTotal"`
	CellsClaimed  uint64            `json:"cellsClaimed"`
	RejectedTotal uint64            `json:"rejectedTotal"`
	ByOperation   map[string]uint64 `json:"byOperation"`
	ByReason      map[string]uint64 `json:"byReason"`
}

type Recorder struct {
	mu       sync.Mutex
	claims   uint64
	cells    uint64
	rejected uint64
	byOp     map[string]uint64
	byReason map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byOp:     map[string]uint64{},
		byReason: map[string]uint64{},
	}
}

func (r *Recorder) RecordClaim(op string, cells int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims++
	r.cells += uint64(cells)
	r.byOp[op]++
}

func (r *Recorder) RecordRejection(op string, reason mining.Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.byReason[string(reason)]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ClaimTotal:    r.claims,
		CellsClaimed:  r.cells,
		RejectedTotal: r.rejected,
		ByOperation:   make(map[string]uint64, len(r.byOp)),
		ByReason:      make(map[string]uint64, len(r.byReason)),
	}
	for k, v := range r.byOp {
		out.ByOperation[k] = v
	}
	for k, v := range r.byReason {
		out.ByReason[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
