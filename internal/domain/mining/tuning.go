package mining

import "time"

const (
	// MineReward is the GHX paid per newly claimed cell.
	MineReward = 1

	// SpawnCost is the GHX debited for opening a disconnected claim area.
	SpawnCost = 5

	// DriveSimulateCost is the flat GHX debit per simulate call,
	// regardless of how many cells it claims.
	DriveSimulateCost = 3

	// DriveFeeRate is the share of a drive-step gross reward collected
	// by the treasury, floored, no minimum.
	DriveFeeRate = 0.10

	// DriveDiskRadius is the disk expanded around the center cell by
	// drive simulation.
	DriveDiskRadius = 2

	// CoastGrowRadius is the disk unioned into the coastal buffer per
	// observed coastline cell. It is deliberately larger than
	// CoastWidenRadius so the persisted exclusion always covers the
	// display widening.
	CoastGrowRadius = 4

	// CoastWidenRadius is the read-only ring inspected at display time.
	CoastWidenRadius = 2

	// LocalQueryRadiusMeters bounds the around-style feature query of
	// the local classifier variant.
	LocalQueryRadiusMeters = 60

	GPSMaxAge            = 2 * time.Minute
	GPSMaxAccuracyMeters = 50

	// StartingBalance is the GHX granted at registration.
	StartingBalance = 10
)
