package ports

import "geohex/internal/domain/mining"

// ClaimMetrics counts claim outcomes for the ops endpoint. Recording
// must never block or fail game flow.
type ClaimMetrics interface {
	RecordClaim(op string, cells int)
	RecordRejection(op string, reason mining.Reason)
}
