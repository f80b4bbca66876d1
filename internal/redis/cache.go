package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// Cache TTL constants
const (
	RideStatusTTL = 60 * time.Second // invalidated on every transition anyway
	DriverTierTTL = 5 * time.Minute  // tier changes are rare
)

// CacheStore handles derived, reconstructable state in Redis: the ride
// status read-through cache and the driver tier cache used by the location
// fast path.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

func rideStatusKey(rideID string) string {
	return fmt.Sprintf("ride:%s:status", rideID)
}

func driverTierKey(driverID string) string {
	return fmt.Sprintf("driver:%s:tier", driverID)
}

// GetRideStatus returns the cached ride status payload, or "" on a miss.
func (s *CacheStore) GetRideStatus(ctx context.Context, rideID string) (string, error) {
	val, err := s.client.Get(ctx, rideStatusKey(rideID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetRideStatus caches a serialized ride status payload.
func (s *CacheStore) SetRideStatus(ctx context.Context, rideID, payload string) error {
	return s.client.Set(ctx, rideStatusKey(rideID), payload, RideStatusTTL).Err()
}

// InvalidateRideStatus drops the cached status. Called on every ride
// transition.
func (s *CacheStore) InvalidateRideStatus(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, rideStatusKey(rideID)).Err()
}

// GetDriverTier returns the cached tier for a driver, or "" on a miss.
func (s *CacheStore) GetDriverTier(ctx context.Context, driverID string) (domain.Tier, error) {
	val, err := s.client.Get(ctx, driverTierKey(driverID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return domain.Tier(val), err
}

// SetDriverTier caches a driver's tier for the location fast path.
func (s *CacheStore) SetDriverTier(ctx context.Context, driverID string, tier domain.Tier) error {
	return s.client.Set(ctx, driverTierKey(driverID), string(tier), DriverTierTTL).Err()
}
