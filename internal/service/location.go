package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	"github.com/man2412/Ride-Hailing-Platform/internal/redis"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
)

const (
	locationQueueSize    = 4096
	locationWorkerCount  = 4
	locationWriteTimeout = 5 * time.Second
)

// locationWrite is one durable position flush waiting for a worker.
type locationWrite struct {
	DriverID string
	Lat      float64
	Lng      float64
	At       time.Time
}

// LocationService ingests driver pings on a fast path (geo index and
// freshness key) and flushes them to Postgres on a buffered slow path.
type LocationService struct {
	driverRepo repository.DriverRepository
	geoIndex   redis.GeoIndexInterface
	cache      redis.CacheStoreInterface

	queue chan locationWrite
	wg    sync.WaitGroup
	once  sync.Once
}

// NewLocationService creates a new LocationService.
func NewLocationService(
	driverRepo repository.DriverRepository,
	geoIndex redis.GeoIndexInterface,
	cache redis.CacheStoreInterface,
) *LocationService {
	return &LocationService{
		driverRepo: driverRepo,
		geoIndex:   geoIndex,
		cache:      cache,
		queue:      make(chan locationWrite, locationQueueSize),
	}
}

// Start launches the slow-path flush workers.
func (s *LocationService) Start() {
	for i := 0; i < locationWorkerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Stop closes the queue and waits for queued writes to drain.
func (s *LocationService) Stop() {
	s.once.Do(func() { close(s.queue) })
	s.wg.Wait()
}

// Ingest handles one driver ping. The geo index and freshness key are
// updated synchronously; the durable write is queued and must never block
// the caller. A full queue drops the write, the next ping supersedes it.
func (s *LocationService) Ingest(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return ErrInvalidLocation
	}

	tier, err := s.resolveTier(ctx, driverID)
	if err != nil {
		return err
	}

	if err := s.geoIndex.Upsert(ctx, tier, driverID, lat, lng); err != nil {
		return err
	}

	write := locationWrite{DriverID: driverID, Lat: lat, Lng: lng, At: time.Now()}
	select {
	case s.queue <- write:
	default:
		logger.Get().Warn("location queue full, dropping write",
			zap.String("driver_id", driverID),
		)
	}

	return nil
}

// resolveTier looks up the driver's tier through the cache, falling back to
// Postgres on a miss and warming the cache on the way back.
func (s *LocationService) resolveTier(ctx context.Context, driverID string) (domain.Tier, error) {
	tier, err := s.cache.GetDriverTier(ctx, driverID)
	if err == nil && tier != "" {
		return tier, nil
	}
	if err != nil {
		logger.Get().Warn("driver tier cache read failed",
			zap.String("driver_id", driverID),
			zap.Error(err),
		)
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return "", err
	}

	if cacheErr := s.cache.SetDriverTier(ctx, driverID, driver.Tier); cacheErr != nil {
		logger.Get().Warn("driver tier cache write failed",
			zap.String("driver_id", driverID),
			zap.Error(cacheErr),
		)
	}

	return driver.Tier, nil
}

func (s *LocationService) worker() {
	defer s.wg.Done()

	for write := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), locationWriteTimeout)
		err := s.driverRepo.UpdateLocation(ctx, write.DriverID, write.Lat, write.Lng, write.At)
		cancel()

		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Get().Error("location flush failed",
				zap.String("driver_id", write.DriverID),
				zap.Error(err),
			)
		}
	}
}
