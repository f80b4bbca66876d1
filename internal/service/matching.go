package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	"github.com/man2412/Ride-Hailing-Platform/internal/redis"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository/postgres"
)

const (
	matchQueueSize   = 1024
	matchWorkerCount = 4
	matchTaskTimeout = 30 * time.Second
	candidatesPerTry = 5
)

// MatchTask is one ride waiting for a driver.
type MatchTask struct {
	RideID    string
	Tier      domain.Tier
	PickupLat float64
	PickupLng float64
}

// MatchingService assigns drivers to REQUESTED rides. Matching runs
// asynchronously: rides are queued and picked up by a worker pool.
//
// At-most-once assignment is enforced in two layers. The Redis driver lock
// keeps concurrent matchers off the same candidate cheaply; the database
// transaction with predicate row locks is the ground truth, so a lost or
// expired Redis lock can cause wasted work but never a double assignment.
type MatchingService struct {
	db        *sql.DB
	geoIndex  redis.GeoIndexInterface
	lockStore redis.LockStoreInterface
	surge     redis.SurgeStoreInterface
	cache     redis.CacheStoreInterface

	radiusKM   float64
	lockTTL    time.Duration
	maxRetries int

	queue chan MatchTask
	wg    sync.WaitGroup
	once  sync.Once
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(
	db *sql.DB,
	geoIndex redis.GeoIndexInterface,
	lockStore redis.LockStoreInterface,
	surge redis.SurgeStoreInterface,
	cache redis.CacheStoreInterface,
	radiusKM float64,
	lockTTL time.Duration,
	maxRetries int,
) *MatchingService {
	return &MatchingService{
		db:         db,
		geoIndex:   geoIndex,
		lockStore:  lockStore,
		surge:      surge,
		cache:      cache,
		radiusKM:   radiusKM,
		lockTTL:    lockTTL,
		maxRetries: maxRetries,
		queue:      make(chan MatchTask, matchQueueSize),
	}
}

// Start launches the matching workers.
func (s *MatchingService) Start() {
	for i := 0; i < matchWorkerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Stop closes the queue and waits for in-flight matches to finish.
func (s *MatchingService) Stop() {
	s.once.Do(func() { close(s.queue) })
	s.wg.Wait()
}

// Submit queues a ride for matching. A full queue is reported to the caller
// rather than blocking ride creation.
func (s *MatchingService) Submit(task MatchTask) error {
	select {
	case s.queue <- task:
		return nil
	default:
		return errors.New("matching queue full")
	}
}

func (s *MatchingService) worker() {
	defer s.wg.Done()

	for task := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), matchTaskTimeout)
		if err := s.Match(ctx, task); err != nil {
			logger.Get().Error("matching failed",
				zap.String("ride_id", task.RideID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Match walks nearby candidates in proximity order and assigns the first
// driver that survives both the Redis lock and the database predicate
// locks. When every candidate is exhausted the ride is cancelled.
func (s *MatchingService) Match(ctx context.Context, task MatchTask) error {
	limit := candidatesPerTry * s.maxRetries
	candidates, err := s.geoIndex.Nearby(ctx, task.Tier, task.PickupLat, task.PickupLng, s.radiusKM, limit)
	if err != nil {
		return err
	}

	for _, driverID := range candidates {
		assigned, abort, err := s.tryAssign(ctx, task, driverID)
		if err != nil {
			return err
		}
		if abort {
			// Ride left REQUESTED under us (cancelled or matched by a
			// competing worker). Nothing more to do.
			return nil
		}
		if assigned {
			logger.Get().Info("ride matched",
				zap.String("ride_id", task.RideID),
				zap.String("driver_id", driverID),
			)
			return nil
		}
	}

	return s.cancelUnmatched(ctx, task)
}

// tryAssign attempts one candidate. It reports (assigned, abort, err):
// abort means the ride itself is no longer matchable and the walk must stop.
func (s *MatchingService) tryAssign(ctx context.Context, task MatchTask, driverID string) (bool, bool, error) {
	locked, err := s.lockStore.AcquireDriverLock(ctx, driverID, task.RideID, s.lockTTL)
	if err != nil {
		return false, false, err
	}
	if !locked {
		// Candidate is being assigned by a competing worker.
		return false, false, nil
	}

	// Ground truth on the driver lives in assignTx: its row lock only
	// matches a driver still 'available', so a candidate who went offline
	// or on_trip since the geo read fails there.
	assigned, abort, err := s.assignTx(ctx, task, driverID)
	if err != nil || !assigned {
		_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
	}
	if err != nil {
		return false, false, err
	}
	if !assigned {
		return false, abort, nil
	}

	// Assigned: pull the driver out of the matchable set and settle the
	// demand counter. The driver lock is left to expire via TTL.
	if remErr := s.geoIndex.Remove(ctx, task.Tier, driverID); remErr != nil {
		logger.Get().Warn("geo index removal failed after assignment",
			zap.String("driver_id", driverID),
			zap.Error(remErr),
		)
	}
	if decErr := s.surge.DecrementDemand(ctx, task.Tier); decErr != nil {
		logger.Get().Warn("demand decrement failed after assignment",
			zap.String("ride_id", task.RideID),
			zap.Error(decErr),
		)
	}
	if cacheErr := s.cache.InvalidateRideStatus(ctx, task.RideID); cacheErr != nil {
		logger.Get().Warn("ride status cache invalidation failed",
			zap.String("ride_id", task.RideID),
			zap.Error(cacheErr),
		)
	}

	return true, false, nil
}

// assignTx performs the atomic assignment: driver row locked with predicate
// status=available (SKIP LOCKED), ride row locked with predicate
// status=REQUESTED, then driver to on_trip, ride to MATCHED, trip created
// ACTIVE. A driver predicate miss skips the candidate; a ride predicate
// miss aborts the walk.
func (s *MatchingService) assignTx(ctx context.Context, task MatchTask, driverID string) (assigned, abort bool, err error) {
	err = postgres.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)
		txRideRepo := postgres.NewRideRepositoryWithTx(tx)
		txTripRepo := postgres.NewTripRepositoryWithTx(tx)

		driver, lockErr := txDriverRepo.LockAvailable(ctx, driverID)
		if lockErr != nil {
			if errors.Is(lockErr, repository.ErrNotFound) {
				return nil
			}
			return lockErr
		}

		ride, lockErr := txRideRepo.LockRequested(ctx, task.RideID)
		if lockErr != nil {
			if errors.Is(lockErr, repository.ErrNotFound) {
				abort = true
				return nil
			}
			return lockErr
		}

		if updErr := txDriverRepo.UpdateStatus(ctx, driver.ID, domain.DriverStatusOnTrip); updErr != nil {
			return updErr
		}
		if updErr := txRideRepo.Assign(ctx, ride.ID, driver.ID); updErr != nil {
			return updErr
		}

		trip := &domain.Trip{
			ID:        uuid.New().String(),
			RideID:    ride.ID,
			DriverID:  driver.ID,
			RiderID:   ride.RiderID,
			Status:    domain.TripStatusActive,
			StartedAt: time.Now(),
		}
		if createErr := txTripRepo.Create(ctx, trip); createErr != nil {
			return createErr
		}

		assigned = true
		return nil
	})

	return assigned, abort, err
}

// cancelUnmatched cancels a ride whose candidate walk found no driver. The
// predicate lock makes the cancel a no-op if the ride moved on meanwhile.
func (s *MatchingService) cancelUnmatched(ctx context.Context, task MatchTask) error {
	cancelled := false
	err := postgres.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRideRepo := postgres.NewRideRepositoryWithTx(tx)

		ride, lockErr := txRideRepo.LockRequested(ctx, task.RideID)
		if lockErr != nil {
			if errors.Is(lockErr, repository.ErrNotFound) {
				return nil
			}
			return lockErr
		}

		if updErr := txRideRepo.UpdateStatus(ctx, ride.ID, domain.RideStatusCancelled); updErr != nil {
			return updErr
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return err
	}
	if !cancelled {
		return nil
	}

	logger.Get().Info("ride cancelled, no driver available",
		zap.String("ride_id", task.RideID),
		zap.String("tier", string(task.Tier)),
	)

	if decErr := s.surge.DecrementDemand(ctx, task.Tier); decErr != nil {
		logger.Get().Warn("demand decrement failed after cancellation",
			zap.String("ride_id", task.RideID),
			zap.Error(decErr),
		)
	}
	if cacheErr := s.cache.InvalidateRideStatus(ctx, task.RideID); cacheErr != nil {
		logger.Get().Warn("ride status cache invalidation failed",
			zap.String("ride_id", task.RideID),
			zap.Error(cacheErr),
		)
	}

	return nil
}
