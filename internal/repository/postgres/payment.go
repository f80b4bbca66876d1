package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, trip_id, rider_id, amount, currency, status, COALESCE(provider_ref, ''), COALESCE(idempotency_key, ''), created_at, updated_at`

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.TripID,
		&payment.RiderID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.ProviderRef,
		&payment.IdempotencyKey,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, trip_id, rider_id, amount, currency, status, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`

	var idempotencyKey sql.NullString
	if payment.IdempotencyKey != "" {
		idempotencyKey = sql.NullString{String: payment.IdempotencyKey, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.TripID,
		payment.RiderID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		idempotencyKey,
		payment.CreatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.q.QueryRowContext(ctx, query, id))
}

// GetByTripID retrieves the payment belonging to a trip.
func (r *PaymentRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE trip_id = $1`
	return scanPayment(r.q.QueryRowContext(ctx, query, tripID))
}

// GetByIdempotencyKey retrieves a payment by its idempotency token.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = $1`
	return scanPayment(r.q.QueryRowContext(ctx, query, key))
}

// SetIdempotencyKey records the client token on the payment row.
func (r *PaymentRepository) SetIdempotencyKey(ctx context.Context, id, key string) error {
	query := `UPDATE payments SET idempotency_key = $1, updated_at = now() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, key, id)
	if err != nil {
		return mapError(err)
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

// UpdateStatus updates the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1, updated_at = now() WHERE id = $2`

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

// MarkResult records the provider outcome.
func (r *PaymentRepository) MarkResult(ctx context.Context, id string, status domain.PaymentStatus, providerRef string) error {
	query := `UPDATE payments SET status = $1, provider_ref = $2, updated_at = now() WHERE id = $3`

	var ref sql.NullString
	if providerRef != "" {
		ref = sql.NullString{String: providerRef, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query, status, ref, id)
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
