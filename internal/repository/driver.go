package repository

import (
	"context"
	"time"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateLocation durably records a driver's last known position.
	// Writes are last-write-wins by timestamp: an older ping that arrives
	// after a newer one is dropped.
	UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error

	// LockAvailable locks the driver row with predicate status=available
	// using SKIP LOCKED. Returns ErrNotFound when the row is missing, not
	// available, or locked by another transaction. Only meaningful inside
	// a transaction-scoped repository.
	LockAvailable(ctx context.Context, id string) (*domain.Driver, error)
}
