package repository

import (
	"context"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByRideID retrieves the trip belonging to a ride.
	GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error)

	// LockByID locks the trip row (FOR UPDATE).
	LockByID(ctx context.Context, id string) (*domain.Trip, error)

	// Update persists status and pause bookkeeping.
	Update(ctx context.Context, trip *domain.Trip) error

	// Complete marks the trip COMPLETED with its measured distance and
	// fare breakdown.
	Complete(ctx context.Context, trip *domain.Trip) error
}
