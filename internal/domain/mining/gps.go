package mining

import (
	"time"

	"geohex/internal/domain/geo"
)

// GPSProof is the client-supplied geolocation evidence for a claim.
type GPSProof struct {
	Lat            float64
	Lng            float64
	AccuracyMeters float64
	Timestamp      time.Time
}

// ValidateGPS checks a proof against the claimed cell. Order matters:
// presence, then age, then accuracy, then cell match.
func ValidateGPS(proof *GPSProof, cell string, now time.Time) Reason {
	if proof == nil || proof.Timestamp.IsZero() {
		return ReasonGPSRequired
	}
	age := now.Sub(proof.Timestamp)
	if age < 0 {
		age = -age
	}
	if age > GPSMaxAge {
		return ReasonGPSStale
	}
	if proof.AccuracyMeters <= 0 || proof.AccuracyMeters > GPSMaxAccuracyMeters {
		return ReasonGPSAccuracyLow
	}
	if geo.CellFromLatLng(proof.Lat, proof.Lng) != cell {
		return ReasonGPSMismatch
	}
	return ReasonNone
}
