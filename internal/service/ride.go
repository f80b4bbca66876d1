package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	"github.com/man2412/Ride-Hailing-Platform/internal/redis"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository/postgres"
)

// MatchSubmitter queues rides for asynchronous matching.
// This interface allows for testing with mock implementations.
type MatchSubmitter interface {
	Submit(task MatchTask) error
}

// Ensure MatchingService implements MatchSubmitter.
var _ MatchSubmitter = (*MatchingService)(nil)

// RideService handles the ride lifecycle outside of matching and trips.
type RideService struct {
	db         *sql.DB
	rideRepo   repository.RideRepository
	matcher    MatchSubmitter
	surgeSvc   *SurgeService
	pricing    *PricingService
	surgeStore redis.SurgeStoreInterface
	cache      redis.CacheStoreInterface
}

// NewRideService creates a new RideService.
func NewRideService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	matcher MatchSubmitter,
	surgeSvc *SurgeService,
	pricing *PricingService,
	surgeStore redis.SurgeStoreInterface,
	cache redis.CacheStoreInterface,
) *RideService {
	return &RideService{
		db:         db,
		rideRepo:   rideRepo,
		matcher:    matcher,
		surgeSvc:   surgeSvc,
		pricing:    pricing,
		surgeStore: surgeStore,
		cache:      cache,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	RiderID        string
	PickupLat      float64
	PickupLng      float64
	DestLat        float64
	DestLng        float64
	Tier           string
	PaymentMethod  string
	IdempotencyKey string
}

// CreateRideResponse contains the created ride and its fare quote.
type CreateRideResponse struct {
	Ride          *domain.Ride
	EstimatedFare FareRange
}

// CreateRide records a ride in REQUESTED state with the surge multiplier
// captured now, bumps the demand counter and queues the ride for matching.
// The caller gets the quote immediately; assignment happens asynchronously.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*CreateRideResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	tier, ok := domain.ParseTier(req.Tier)
	if !ok {
		return nil, ErrInvalidTier
	}

	var paymentMethod domain.PaymentMethod = domain.PaymentMethodCash
	if req.PaymentMethod != "" {
		paymentMethod, ok = domain.ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			return nil, ErrInvalidPaymentMethod
		}
	}

	// Demand is counted before pricing so this request's own pressure is
	// visible to its multiplier.
	if err := s.surgeStore.IncrementDemand(ctx, tier); err != nil {
		logger.Get().Warn("demand increment failed",
			zap.String("tier", string(tier)),
			zap.Error(err),
		)
	}

	surgeMultiplier := s.surgeSvc.Multiplier(ctx, tier)

	ride := &domain.Ride{
		ID:              uuid.New().String(),
		RiderID:         req.RiderID,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DestLat:         req.DestLat,
		DestLng:         req.DestLng,
		Tier:            tier,
		Status:          domain.RideStatusRequested,
		PaymentMethod:   paymentMethod,
		SurgeMultiplier: surgeMultiplier,
		IdempotencyKey:  req.IdempotencyKey,
		CreatedAt:       time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if err := s.matcher.Submit(MatchTask{
		RideID:    ride.ID,
		Tier:      tier,
		PickupLat: req.PickupLat,
		PickupLng: req.PickupLng,
	}); err != nil {
		// The ride stays REQUESTED; a stuck queue is an operational
		// problem, not a reason to fail the request.
		logger.Get().Error("match submit failed",
			zap.String("ride_id", ride.ID),
			zap.Error(err),
		)
	}

	estimate := s.pricing.EstimateFareRange(tier, req.PickupLat, req.PickupLng, req.DestLat, req.DestLng, surgeMultiplier)

	return &CreateRideResponse{
		Ride:          ride,
		EstimatedFare: estimate,
	}, nil
}

// StatusView is the cached read model served for ride status polls.
type StatusView struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	DriverID        string    `json:"driver_id,omitempty"`
	Tier            string    `json:"tier"`
	SurgeMultiplier float64   `json:"surge_multiplier"`
	CreatedAt       time.Time `json:"created_at"`
}

// GetRideStatus serves the ride's status view through the Redis cache. A
// cache failure falls back to Postgres rather than failing the poll.
func (s *RideService) GetRideStatus(ctx context.Context, rideID string) (*StatusView, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if payload, err := s.cache.GetRideStatus(ctx, rideID); err == nil && payload != "" {
		var view StatusView
		if unmarshalErr := json.Unmarshal([]byte(payload), &view); unmarshalErr == nil {
			return &view, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	view := &StatusView{
		ID:              ride.ID,
		Status:          string(ride.Status),
		DriverID:        ride.DriverID,
		Tier:            string(ride.Tier),
		SurgeMultiplier: ride.SurgeMultiplier,
		CreatedAt:       ride.CreatedAt,
	}

	if payload, marshalErr := json.Marshal(view); marshalErr == nil {
		if cacheErr := s.cache.SetRideStatus(ctx, rideID, string(payload)); cacheErr != nil {
			logger.Get().Warn("ride status cache write failed",
				zap.String("ride_id", rideID),
				zap.Error(cacheErr),
			)
		}
	}

	return view, nil
}

// CancelRide cancels a ride on behalf of its rider. A REQUESTED ride is
// cancelled under a predicate lock so a concurrent matcher loses cleanly; a
// MATCHED or DRIVER_EN_ROUTE ride also frees its driver. Anything past
// TRIP_STARTED can no longer be cancelled.
func (s *RideService) CancelRide(ctx context.Context, rideID, riderID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, ErrNotRideOwner
	}

	switch ride.Status {
	case domain.RideStatusCancelled:
		return nil, ErrRideAlreadyCancelled
	case domain.RideStatusRequested, domain.RideStatusMatched, domain.RideStatusDriverEnRoute:
	default:
		return nil, ErrRideCannotBeCancelled
	}

	err = postgres.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRideRepo := postgres.NewRideRepositoryWithTx(tx)
		txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

		locked, lockErr := txRideRepo.LockByID(ctx, rideID)
		if lockErr != nil {
			return lockErr
		}

		// Re-check under the lock: a matcher may have assigned, or the
		// ride may have progressed, between the read and here.
		switch locked.Status {
		case domain.RideStatusCancelled:
			return ErrRideAlreadyCancelled
		case domain.RideStatusRequested:
		case domain.RideStatusMatched, domain.RideStatusDriverEnRoute:
			if updErr := txDriverRepo.UpdateStatus(ctx, locked.DriverID, domain.DriverStatusAvailable); updErr != nil {
				return updErr
			}
		default:
			return ErrRideCannotBeCancelled
		}

		ride = locked
		return txRideRepo.UpdateStatus(ctx, rideID, domain.RideStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	// Only a still-queued ride holds a demand slot.
	if ride.Status == domain.RideStatusRequested {
		if decErr := s.surgeStore.DecrementDemand(ctx, ride.Tier); decErr != nil {
			logger.Get().Warn("demand decrement failed after cancellation",
				zap.String("ride_id", rideID),
				zap.Error(decErr),
			)
		}
	}

	if cacheErr := s.cache.InvalidateRideStatus(ctx, rideID); cacheErr != nil {
		logger.Get().Warn("ride status cache invalidation failed",
			zap.String("ride_id", rideID),
			zap.Error(cacheErr),
		)
	}

	ride.Status = domain.RideStatusCancelled
	return ride, nil
}

// GetRide retrieves a ride by ID without going through the cache.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

func (s *RideService) validateCreateRequest(req CreateRideRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.DestLat) || !isValidLongitude(req.DestLng) {
		return ErrInvalidDestinationLocation
	}
	return nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
