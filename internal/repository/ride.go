package repository

import (
	"context"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// UpdateStatus updates the status of a ride.
	UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error

	// Assign sets the ride to MATCHED with the given driver.
	Assign(ctx context.Context, id, driverID string) error

	// LockByID locks the ride row unconditionally (FOR UPDATE).
	LockByID(ctx context.Context, id string) (*domain.Ride, error)

	// LockRequested locks the ride row with predicate status=REQUESTED.
	// Returns ErrNotFound when the ride left REQUESTED (cancelled or
	// already assigned).
	LockRequested(ctx context.Context, id string) (*domain.Ride, error)

	// LockMatchedFor locks the ride row with predicate status=MATCHED and
	// driver_id=driverID. Returns ErrNotFound when either predicate fails,
	// which covers both the wrong-state and the wrong-driver case.
	LockMatchedFor(ctx context.Context, id, driverID string) (*domain.Ride, error)
}
