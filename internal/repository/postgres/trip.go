package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, ride_id, driver_id, rider_id, status, distance_km, base_fare, surge_fare, total_fare, started_at, ended_at, paused_at, total_paused_seconds`

func scanTrip(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var endedAt, pausedAt sql.NullTime
	var totalPausedSeconds int64

	err := row.Scan(
		&trip.ID,
		&trip.RideID,
		&trip.DriverID,
		&trip.RiderID,
		&trip.Status,
		&trip.DistanceKM,
		&trip.BaseFare,
		&trip.SurgeFare,
		&trip.TotalFare,
		&trip.StartedAt,
		&endedAt,
		&pausedAt,
		&totalPausedSeconds,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if endedAt.Valid {
		trip.EndedAt = endedAt.Time
	}
	if pausedAt.Valid {
		trip.PausedAt = pausedAt.Time
	}
	trip.TotalPaused = time.Duration(totalPausedSeconds) * time.Second

	return &trip, nil
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, ride_id, driver_id, rider_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RideID,
		trip.DriverID,
		trip.RiderID,
		trip.Status,
		trip.StartedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return scanTrip(r.q.QueryRowContext(ctx, query, id))
}

// GetByRideID retrieves the trip belonging to a ride.
func (r *TripRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE ride_id = $1`
	return scanTrip(r.q.QueryRowContext(ctx, query, rideID))
}

// LockByID locks the trip row.
func (r *TripRepository) LockByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE`
	return scanTrip(r.q.QueryRowContext(ctx, query, id))
}

// Update persists status and pause bookkeeping.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET status = $1, paused_at = $2, total_paused_seconds = $3
		WHERE id = $4
	`

	var pausedAt sql.NullTime
	if !trip.PausedAt.IsZero() {
		pausedAt = sql.NullTime{Time: trip.PausedAt, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		trip.Status,
		pausedAt,
		int64(trip.TotalPaused/time.Second),
		trip.ID,
	)
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

// Complete marks the trip COMPLETED with its measured distance and fare
// breakdown.
func (r *TripRepository) Complete(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET status = $1, distance_km = $2, base_fare = $3, surge_fare = $4, total_fare = $5, ended_at = $6, paused_at = NULL, total_paused_seconds = $7
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.TripStatusCompleted,
		trip.DistanceKM,
		trip.BaseFare,
		trip.SurgeFare,
		trip.TotalFare,
		trip.EndedAt,
		int64(trip.TotalPaused/time.Second),
		trip.ID,
	)
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
