package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested      RideStatus = "REQUESTED"
	RideStatusMatched        RideStatus = "MATCHED"
	RideStatusDriverEnRoute  RideStatus = "DRIVER_EN_ROUTE"
	RideStatusTripStarted    RideStatus = "TRIP_STARTED"
	RideStatusTripPaused     RideStatus = "TRIP_PAUSED"
	RideStatusTripEnded      RideStatus = "TRIP_ENDED"
	RideStatusPaymentPending RideStatus = "PAYMENT_PENDING"
	RideStatusPaymentFailed  RideStatus = "PAYMENT_FAILED"
	RideStatusCompleted      RideStatus = "COMPLETED"
	RideStatusCancelled      RideStatus = "CANCELLED"
)

// PaymentMethod represents how the rider pays for a ride.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCash   PaymentMethod = "cash"
)

// ParsePaymentMethod validates a payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodCash:
		return PaymentMethod(s), true
	default:
		return "", false
	}
}

// Ride represents a ride request in the system.
// DriverID is empty until the ride is MATCHED. SurgeMultiplier is captured
// at creation and never changes for the lifetime of the ride.
type Ride struct {
	ID              string
	RiderID         string
	DriverID        string
	PickupLat       float64
	PickupLng       float64
	DestLat         float64
	DestLng         float64
	Tier            Tier
	Status          RideStatus
	PaymentMethod   PaymentMethod
	SurgeMultiplier float64
	IdempotencyKey  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
