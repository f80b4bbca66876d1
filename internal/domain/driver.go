package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "offline"
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusOnTrip    DriverStatus = "on_trip"
)

// Tier is the service class a driver serves and a rider requests.
// It partitions the geo index and selects the fare table row.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
	TierXL       Tier = "xl"
)

// ParseTier validates a tier string. An empty tier defaults to standard.
func ParseTier(s string) (Tier, bool) {
	switch Tier(s) {
	case TierStandard, TierPremium, TierXL:
		return Tier(s), true
	case "":
		return TierStandard, true
	default:
		return "", false
	}
}

// Driver represents a driver in the system.
// Lat/Lng hold the last durably flushed position; a zero LocationUpdatedAt
// means no ping has ever been flushed.
type Driver struct {
	ID                string
	Name              string
	Phone             string
	Tier              Tier
	Status            DriverStatus
	Lat               float64
	Lng               float64
	LocationUpdatedAt time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
