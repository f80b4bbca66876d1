package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	"github.com/man2412/Ride-Hailing-Platform/internal/redis"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
)

// DriverService handles driver registration and availability.
type DriverService struct {
	driverRepo repository.DriverRepository
	geoIndex   redis.GeoIndexInterface
	cache      redis.CacheStoreInterface
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	geoIndex redis.GeoIndexInterface,
	cache redis.CacheStoreInterface,
) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		geoIndex:   geoIndex,
		cache:      cache,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name  string
	Phone string
	Tier  string
}

// Register creates a new driver in offline state. Name must be 2-255
// characters and phone 10-20.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if len(req.Name) < 2 || len(req.Name) > 255 {
		return nil, ErrInvalidDriverProfile
	}
	if len(req.Phone) < 10 || len(req.Phone) > 20 {
		return nil, ErrInvalidDriverProfile
	}

	tier, ok := domain.ParseTier(req.Tier)
	if !ok {
		return nil, ErrInvalidTier
	}

	driver := &domain.Driver{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Tier:      tier,
		Status:    domain.DriverStatusOffline,
		CreatedAt: time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPhoneAlreadyRegistered
		}
		return nil, err
	}

	return driver, nil
}

// Get retrieves a driver by ID.
func (s *DriverService) Get(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// UpdateStatus toggles a driver between offline and available. on_trip is
// owned by the lifecycle machinery and cannot be requested directly; a
// driver currently on a trip cannot change availability at all.
func (s *DriverService) UpdateStatus(ctx context.Context, driverID string, status domain.DriverStatus) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if status != domain.DriverStatusOffline && status != domain.DriverStatusAvailable {
		return nil, ErrInvalidDriverStatus
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Status == domain.DriverStatusOnTrip {
		return nil, ErrDriverOnTrip
	}

	if driver.Status != status {
		if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
			return nil, err
		}
	}
	driver.Status = status

	switch status {
	case domain.DriverStatusAvailable:
		// Seed the geo index with the last durable position so the driver
		// is matchable before their first fresh ping.
		if !driver.LocationUpdatedAt.IsZero() {
			if geoErr := s.geoIndex.Upsert(ctx, driver.Tier, driverID, driver.Lat, driver.Lng); geoErr != nil {
				logger.Get().Warn("geo index seed failed",
					zap.String("driver_id", driverID),
					zap.Error(geoErr),
				)
			}
		}
		if cacheErr := s.cache.SetDriverTier(ctx, driverID, driver.Tier); cacheErr != nil {
			logger.Get().Warn("driver tier cache write failed",
				zap.String("driver_id", driverID),
				zap.Error(cacheErr),
			)
		}
	case domain.DriverStatusOffline:
		if geoErr := s.geoIndex.Remove(ctx, driver.Tier, driverID); geoErr != nil {
			logger.Get().Warn("geo index removal failed",
				zap.String("driver_id", driverID),
				zap.Error(geoErr),
			)
		}
	}

	return driver, nil
}
