package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	"github.com/man2412/Ride-Hailing-Platform/internal/redis"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository/postgres"
)

const (
	chargeAttempts = 3
	// The client-presented amount must agree with the computed fare to the
	// cent; the provider is always charged the server-side total.
	amountTolerance = 0.01
)

// PaymentService settles completed trips against the payment provider.
type PaymentService struct {
	db          *sql.DB
	paymentRepo repository.PaymentRepository
	tripRepo    repository.TripRepository
	rideRepo    repository.RideRepository
	provider    Provider
	cache       redis.CacheStoreInterface

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	db *sql.DB,
	paymentRepo repository.PaymentRepository,
	tripRepo repository.TripRepository,
	rideRepo repository.RideRepository,
	provider Provider,
	cache redis.CacheStoreInterface,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		tripRepo:    tripRepo,
		rideRepo:    rideRepo,
		provider:    provider,
		cache:       cache,
		sleep:       time.Sleep,
	}
}

// PayRequest contains the parameters for settling a trip.
type PayRequest struct {
	TripID         string
	RiderID        string
	Method         string
	Amount         float64
	IdempotencyKey string
}

// Pay charges the rider for a completed trip. The operation is idempotent
// three ways: a replayed Idempotency-Key returns the stored payment, a trip
// already settled returns its payment, and the provider sees the payment ID
// as its idempotency token on every retry.
func (s *PaymentService) Pay(ctx context.Context, req PayRequest) (*domain.Payment, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if _, ok := domain.ParsePaymentMethod(req.Method); !ok {
		return nil, ErrInvalidPaymentMethod
	}

	if req.IdempotencyKey != "" {
		if existing, err := s.paymentRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if trip.RiderID != req.RiderID {
		return nil, ErrNotRideOwner
	}

	ride, err := s.rideRepo.GetByID(ctx, trip.RideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusPaymentPending && ride.Status != domain.RideStatusPaymentFailed {
		return nil, ErrPaymentNotDue
	}

	// The difference is rounded to the cent first so float representation
	// noise cannot tip an exact one-cent difference over the bound.
	if round2(math.Abs(req.Amount-trip.TotalFare)) > amountTolerance {
		return nil, ErrAmountOutOfRange
	}

	payment, err := s.preparePayment(ctx, trip, req)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentStatusSuccess {
		return payment, nil
	}

	ref, chargeErr := s.charge(ctx, ChargeRequest{
		PaymentID: payment.ID,
		Method:    req.Method,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
	})

	if chargeErr != nil {
		if err := s.finalize(ctx, payment.ID, ride.ID, domain.PaymentStatusFailed, "", domain.RideStatusPaymentFailed); err != nil {
			return nil, err
		}
		s.invalidateStatus(ctx, ride.ID)

		payment.Status = domain.PaymentStatusFailed
		logger.Get().Warn("payment failed after retries",
			zap.String("payment_id", payment.ID),
			zap.String("trip_id", trip.ID),
			zap.Error(chargeErr),
		)
		return payment, nil
	}

	if err := s.finalize(ctx, payment.ID, ride.ID, domain.PaymentStatusSuccess, ref, domain.RideStatusCompleted); err != nil {
		return nil, err
	}
	s.invalidateStatus(ctx, ride.ID)

	payment.Status = domain.PaymentStatusSuccess
	payment.ProviderRef = ref
	return payment, nil
}

// preparePayment loads the PENDING payment inserted when the trip ended.
// A missing row means the trip was never completed through the lifecycle. A
// row left FAILED by an earlier attempt is reset to PENDING for the retry.
func (s *PaymentService) preparePayment(ctx context.Context, trip *domain.Trip, req PayRequest) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByTripID(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentStatusSuccess {
		return payment, nil
	}

	if req.IdempotencyKey != "" && payment.IdempotencyKey != req.IdempotencyKey {
		if setErr := s.paymentRepo.SetIdempotencyKey(ctx, payment.ID, req.IdempotencyKey); setErr != nil {
			return nil, setErr
		}
		payment.IdempotencyKey = req.IdempotencyKey
	}

	if payment.Status != domain.PaymentStatusPending {
		if updErr := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusPending); updErr != nil {
			return nil, updErr
		}
		payment.Status = domain.PaymentStatusPending
	}
	return payment, nil
}

// finalize records the provider outcome and moves the ride in one
// transaction, so a crash cannot leave a settled payment on an unsettled
// ride.
func (s *PaymentService) finalize(ctx context.Context, paymentID, rideID string, status domain.PaymentStatus, providerRef string, rideStatus domain.RideStatus) error {
	return postgres.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := postgres.NewPaymentRepositoryWithTx(tx).MarkResult(ctx, paymentID, status, providerRef); err != nil {
			return err
		}
		return postgres.NewRideRepositoryWithTx(tx).UpdateStatus(ctx, rideID, rideStatus)
	})
}

// charge calls the provider with exponential backoff between attempts.
func (s *PaymentService) charge(ctx context.Context, req ChargeRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= chargeAttempts; attempt++ {
		ref, err := s.provider.Charge(ctx, req)
		if err == nil {
			return ref, nil
		}
		lastErr = err

		logger.Get().Warn("charge attempt failed",
			zap.String("payment_id", req.PaymentID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < chargeAttempts {
			s.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	return "", lastErr
}

// Get retrieves a payment by ID.
func (s *PaymentService) Get(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *PaymentService) invalidateStatus(ctx context.Context, rideID string) {
	if err := s.cache.InvalidateRideStatus(ctx, rideID); err != nil {
		logger.Get().Warn("ride status cache invalidation failed",
			zap.String("ride_id", rideID),
			zap.Error(err),
		)
	}
}
