package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Payment represents the settlement for a completed trip. ProviderRef is
// empty until the payment provider responds.
type Payment struct {
	ID             string
	TripID         string
	RiderID        string
	Amount         float64
	Currency       string
	Status         PaymentStatus
	ProviderRef    string
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
