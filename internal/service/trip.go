package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	"github.com/man2412/Ride-Hailing-Platform/internal/redis"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository/postgres"
)

// TripService drives a trip from acceptance to completion.
type TripService struct {
	db       *sql.DB
	rideRepo repository.RideRepository
	tripRepo repository.TripRepository
	pricing  *PricingService
	cache    redis.CacheStoreInterface
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	tripRepo repository.TripRepository,
	pricing *PricingService,
	cache redis.CacheStoreInterface,
) *TripService {
	return &TripService{
		db:       db,
		rideRepo: rideRepo,
		tripRepo: tripRepo,
		pricing:  pricing,
		cache:    cache,
	}
}

// Accept moves a MATCHED ride to DRIVER_EN_ROUTE on behalf of its assigned
// driver. The predicate lock requires both the MATCHED state and the driver
// identity, so a stranger or a stale accept fails atomically.
func (s *TripService) Accept(ctx context.Context, rideID, driverID string) (*domain.Trip, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var trip *domain.Trip
	err := postgres.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRideRepo := postgres.NewRideRepositoryWithTx(tx)
		txTripRepo := postgres.NewTripRepositoryWithTx(tx)

		ride, lockErr := txRideRepo.LockMatchedFor(ctx, rideID, driverID)
		if lockErr != nil {
			if errors.Is(lockErr, repository.ErrNotFound) {
				return s.diagnoseAcceptFailure(ctx, txRideRepo, rideID, driverID)
			}
			return lockErr
		}

		if updErr := txRideRepo.UpdateStatus(ctx, ride.ID, domain.RideStatusDriverEnRoute); updErr != nil {
			return updErr
		}

		var tripErr error
		trip, tripErr = txTripRepo.GetByRideID(ctx, rideID)
		return tripErr
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, rideID)
	return trip, nil
}

// diagnoseAcceptFailure turns a predicate miss into the precise error: the
// ride may not exist, belong to another driver, or have left MATCHED.
func (s *TripService) diagnoseAcceptFailure(ctx context.Context, rideRepo repository.RideRepository, rideID, driverID string) error {
	ride, err := rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != "" && ride.DriverID != driverID {
		return ErrDriverNotAssignedToRide
	}
	return ErrInvalidStateTransition
}

// Start moves the ride from DRIVER_EN_ROUTE to TRIP_STARTED when the rider
// is picked up.
func (s *TripService) Start(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	return s.transition(ctx, tripID, driverID, domain.RideStatusTripStarted, nil)
}

// Pause suspends a running trip.
func (s *TripService) Pause(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	return s.transition(ctx, tripID, driverID, domain.RideStatusTripPaused, func(trip *domain.Trip, now time.Time) error {
		if trip.Status != domain.TripStatusActive {
			return ErrTripNotActive
		}
		trip.Status = domain.TripStatusPaused
		trip.PausedAt = now
		return nil
	})
}

// Resume continues a paused trip, folding the pause into the total.
func (s *TripService) Resume(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	return s.transition(ctx, tripID, driverID, domain.RideStatusTripStarted, func(trip *domain.Trip, now time.Time) error {
		if trip.Status != domain.TripStatusPaused {
			return ErrTripNotPaused
		}
		trip.Status = domain.TripStatusActive
		trip.TotalPaused += now.Sub(trip.PausedAt)
		trip.PausedAt = time.Time{}
		return nil
	})
}

// transition applies one lifecycle step under locks on both the trip and
// its ride. mutate, when set, adjusts the trip's own state and bookkeeping.
func (s *TripService) transition(ctx context.Context, tripID, driverID string, target domain.RideStatus, mutate func(*domain.Trip, time.Time) error) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var trip *domain.Trip
	var rideID string

	err := postgres.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRideRepo := postgres.NewRideRepositoryWithTx(tx)
		txTripRepo := postgres.NewTripRepositoryWithTx(tx)

		var lockErr error
		trip, lockErr = txTripRepo.LockByID(ctx, tripID)
		if lockErr != nil {
			return lockErr
		}
		if trip.DriverID != driverID {
			return ErrDriverNotAssignedToRide
		}
		if trip.Status == domain.TripStatusCompleted {
			return ErrTripAlreadyEnded
		}

		ride, lockErr := txRideRepo.LockByID(ctx, trip.RideID)
		if lockErr != nil {
			return lockErr
		}
		rideID = ride.ID

		if !domain.CanTransition(ride.Status, target) {
			return ErrInvalidStateTransition
		}

		if mutate != nil {
			if mutErr := mutate(trip, time.Now()); mutErr != nil {
				return mutErr
			}
			if updErr := txTripRepo.Update(ctx, trip); updErr != nil {
				return updErr
			}
		}

		return txRideRepo.UpdateStatus(ctx, ride.ID, target)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, rideID)
	return trip, nil
}

// TripEndResult is the completed trip with its fare breakdown.
type TripEndResult struct {
	Trip          *domain.Trip
	Fare          FareBreakdown
	PaymentStatus domain.RideStatus
}

// End completes a trip at the final position. Distance is the straight-line
// kilometers from pickup to drop-off, priced under the multiplier captured
// at request time. The ride lands in PAYMENT_PENDING, a PENDING payment for
// the computed total is inserted, and the driver is released back to
// available, all in one transaction.
func (s *TripService) End(ctx context.Context, tripID, driverID string, finalLat, finalLng float64) (*TripEndResult, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !isValidLatitude(finalLat) || !isValidLongitude(finalLng) {
		return nil, ErrInvalidLocation
	}

	var result *TripEndResult
	var rideID string

	err := postgres.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRideRepo := postgres.NewRideRepositoryWithTx(tx)
		txTripRepo := postgres.NewTripRepositoryWithTx(tx)
		txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

		trip, lockErr := txTripRepo.LockByID(ctx, tripID)
		if lockErr != nil {
			return lockErr
		}
		if trip.DriverID != driverID {
			return ErrDriverNotAssignedToRide
		}
		if trip.Status == domain.TripStatusCompleted {
			return ErrTripAlreadyEnded
		}

		ride, lockErr := txRideRepo.LockByID(ctx, trip.RideID)
		if lockErr != nil {
			return lockErr
		}
		rideID = ride.ID

		switch ride.Status {
		case domain.RideStatusDriverEnRoute, domain.RideStatusTripStarted, domain.RideStatusTripPaused:
		default:
			return ErrInvalidStateTransition
		}

		now := time.Now()
		if trip.Status == domain.TripStatusPaused {
			trip.TotalPaused += now.Sub(trip.PausedAt)
			trip.PausedAt = time.Time{}
		}

		distance := HaversineKM(ride.PickupLat, ride.PickupLng, finalLat, finalLng)
		fare := s.pricing.CalculateFare(ride.Tier, distance, ride.SurgeMultiplier)

		trip.Status = domain.TripStatusCompleted
		trip.DistanceKM = distance
		trip.BaseFare = fare.BaseFare
		trip.SurgeFare = fare.SurgeFare
		trip.TotalFare = fare.TotalFare
		trip.EndedAt = now

		if updErr := txTripRepo.Complete(ctx, trip); updErr != nil {
			return updErr
		}
		if updErr := txRideRepo.UpdateStatus(ctx, ride.ID, domain.RideStatusPaymentPending); updErr != nil {
			return updErr
		}
		if updErr := txDriverRepo.UpdateStatus(ctx, trip.DriverID, domain.DriverStatusAvailable); updErr != nil {
			return updErr
		}

		payment := &domain.Payment{
			ID:        uuid.New().String(),
			TripID:    trip.ID,
			RiderID:   trip.RiderID,
			Amount:    fare.TotalFare,
			Currency:  "INR",
			Status:    domain.PaymentStatusPending,
			CreatedAt: now,
		}
		if createErr := postgres.NewPaymentRepositoryWithTx(tx).Create(ctx, payment); createErr != nil {
			return createErr
		}

		result = &TripEndResult{
			Trip:          trip,
			Fare:          fare,
			PaymentStatus: domain.RideStatusPaymentPending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, rideID)
	return result, nil
}

// Get retrieves a trip by ID.
func (s *TripService) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.tripRepo.GetByID(ctx, tripID)
}

func (s *TripService) invalidateStatus(ctx context.Context, rideID string) {
	if rideID == "" {
		return
	}
	if err := s.cache.InvalidateRideStatus(ctx, rideID); err != nil {
		logger.Get().Warn("ride status cache invalidation failed",
			zap.String("ride_id", rideID),
			zap.Error(err),
		)
	}
}
