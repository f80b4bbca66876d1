package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusPaused    TripStatus = "PAUSED"
	TripStatusCompleted TripStatus = "COMPLETED"
)

// Trip represents an active or completed trip. A trip is created when its
// ride is MATCHED; distance and the fare breakdown stay zero until the trip
// is COMPLETED.
type Trip struct {
	ID          string
	RideID      string
	DriverID    string
	RiderID     string
	Status      TripStatus
	DistanceKM  float64
	BaseFare    float64
	SurgeFare   float64
	TotalFare   float64
	StartedAt   time.Time
	EndedAt     time.Time
	PausedAt    time.Time
	TotalPaused time.Duration
}
