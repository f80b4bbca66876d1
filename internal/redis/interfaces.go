package redis

import (
	"context"
	"time"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// GeoIndexInterface defines the tier-partitioned driver geo index.
type GeoIndexInterface interface {
	Upsert(ctx context.Context, tier domain.Tier, driverID string, lat, lng float64) error
	Nearby(ctx context.Context, tier domain.Tier, lat, lng, radiusKM float64, limit int) ([]string, error)
	Remove(ctx context.Context, tier domain.Tier, driverID string) error
	Supply(ctx context.Context, tier domain.Tier) (int64, error)
}

// LockStoreInterface defines the driver matcher lock.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID, rideID string, ttl time.Duration) (bool, error)
	ReleaseDriverLock(ctx context.Context, driverID string) error
}

// SurgeStoreInterface defines the per-tier demand counter.
type SurgeStoreInterface interface {
	IncrementDemand(ctx context.Context, tier domain.Tier) error
	DecrementDemand(ctx context.Context, tier domain.Tier) error
	Demand(ctx context.Context, tier domain.Tier) (int64, error)
}

// CacheStoreInterface defines the derived-state caches.
type CacheStoreInterface interface {
	GetRideStatus(ctx context.Context, rideID string) (string, error)
	SetRideStatus(ctx context.Context, rideID, payload string) error
	InvalidateRideStatus(ctx context.Context, rideID string) error
	GetDriverTier(ctx context.Context, driverID string) (domain.Tier, error)
	SetDriverTier(ctx context.Context, driverID string, tier domain.Tier) error
}

// Ensure concrete types implement interfaces.
var (
	_ GeoIndexInterface   = (*GeoIndex)(nil)
	_ LockStoreInterface  = (*LockStore)(nil)
	_ SurgeStoreInterface = (*SurgeStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
