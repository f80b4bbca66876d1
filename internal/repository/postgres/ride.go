package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, rider_id, driver_id, pickup_lat, pickup_lng, dest_lat, dest_lng, tier, status, payment_method, surge_multiplier, COALESCE(idempotency_key, ''), created_at, updated_at`

func scanRide(row *sql.Row) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&driverID,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.DestLat,
		&ride.DestLng,
		&ride.Tier,
		&ride.Status,
		&ride.PaymentMethod,
		&ride.SurgeMultiplier,
		&ride.IdempotencyKey,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}

	return &ride, nil
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, rider_id, pickup_lat, pickup_lng, dest_lat, dest_lng, tier, status, payment_method, surge_multiplier, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`

	var idempotencyKey sql.NullString
	if ride.IdempotencyKey != "" {
		idempotencyKey = sql.NullString{String: ride.IdempotencyKey, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		ride.PickupLat,
		ride.PickupLng,
		ride.DestLat,
		ride.DestLng,
		ride.Tier,
		ride.Status,
		ride.PaymentMethod,
		ride.SurgeMultiplier,
		idempotencyKey,
		ride.CreatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// UpdateStatus updates the status of a ride.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	query := `UPDATE rides SET status = $1, updated_at = now() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Assign sets the ride to MATCHED with the given driver.
func (r *RideRepository) Assign(ctx context.Context, id, driverID string) error {
	query := `UPDATE rides SET status = $1, driver_id = $2, updated_at = now() WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, domain.RideStatusMatched, driverID, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// LockByID locks the ride row unconditionally.
func (r *RideRepository) LockByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// LockRequested locks the ride row if it is still REQUESTED.
func (r *RideRepository) LockRequested(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 AND status = 'REQUESTED' FOR UPDATE`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// LockMatchedFor locks the ride row if it is MATCHED to the given driver.
func (r *RideRepository) LockMatchedFor(ctx context.Context, id, driverID string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 AND driver_id = $2 AND status = 'MATCHED' FOR UPDATE`
	return scanRide(r.q.QueryRowContext(ctx, query, id, driverID))
}
