package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore hands out short-lived driver locks so that two matchers never
// propose the same driver concurrently. The TTL bounds staleness if a
// matcher dies while holding a lock.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func lockKey(driverID string) string {
	return fmt.Sprintf("driver:%s:lock", driverID)
}

// AcquireDriverLock attempts to lock the driver for the given ride.
// Returns true if the lock was acquired, false if another matcher holds it.
func (s *LockStore) AcquireDriverLock(ctx context.Context, driverID, rideID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, lockKey(driverID), rideID, ttl).Result()
}

// ReleaseDriverLock releases the lock for the given driver.
func (s *LockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, lockKey(driverID)).Err()
}
