package mining

// Reason is the machine-readable outcome code of a claim operation.
// These are expected game-flow results, not errors: clients render
// specific messaging from them without parsing error text.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonAlreadyMined        Reason = "ALREADY_MINED"
	ReasonAlreadyOwnedByOther Reason = "ALREADY_OWNED_BY_OTHER"
	ReasonAlreadyOwned        Reason = "ALREADY_OWNED"
	ReasonForbiddenZone       Reason = "FORBIDDEN_ZONE"
	ReasonGPSRequired         Reason = "GPS_REQUIRED"
	ReasonGPSStale            Reason = "GPS_STALE"
	ReasonGPSAccuracyLow      Reason = "GPS_ACCURACY_LOW"
	ReasonGPSMismatch         Reason = "GPS_MISMATCH"
	ReasonInsufficientGHX     Reason = "INSUFFICIENT_GHX"
	ReasonNoRoadHexes         Reason = "NO_ROAD_HEXES"
	ReasonSameHex             Reason = "SAME_HEX"
)
