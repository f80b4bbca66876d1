package repository

import (
	"context"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByTripID retrieves the payment belonging to a trip.
	GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error)

	// GetByIdempotencyKey retrieves a payment by its idempotency token.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)

	// SetIdempotencyKey records the client token on the payment row.
	SetIdempotencyKey(ctx context.Context, id, key string) error

	// UpdateStatus updates the status of a payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// MarkResult records the provider outcome: terminal status plus the
	// provider reference (empty on failure).
	MarkResult(ctx context.Context, id string, status domain.PaymentStatus, providerRef string) error
}
