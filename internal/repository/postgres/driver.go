package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, name, phone, tier, status, COALESCE(lat, 0), COALESCE(lng, 0), COALESCE(location_updated_at, 'epoch'::timestamptz), created_at, updated_at`

func scanDriver(row *sql.Row) (*domain.Driver, error) {
	var driver domain.Driver
	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Tier,
		&driver.Status,
		&driver.Lat,
		&driver.Lng,
		&driver.LocationUpdatedAt,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, tier, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Tier,
		driver.Status,
		driver.CreatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return scanDriver(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`
	return scanDriver(r.q.QueryRowContext(ctx, query, phone))
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1, updated_at = now() WHERE id = $2`

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

// UpdateLocation records a driver's last known position. Last write wins by
// ping timestamp: if a fresher position is already stored the update is a
// no-op, not an error.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	query := `
		UPDATE drivers
		SET lat = $1, lng = $2, location_updated_at = $3, updated_at = now()
		WHERE id = $4 AND (location_updated_at IS NULL OR location_updated_at < $3)
	`
	_, err := r.q.ExecContext(ctx, query, lat, lng, at, id)
	return err
}

// LockAvailable locks the driver row if it is still available, skipping
// rows locked by concurrent matchers.
func (r *DriverRepository) LockAvailable(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1 AND status = 'available' FOR UPDATE SKIP LOCKED`
	return scanDriver(r.q.QueryRowContext(ctx, query, id))
}
