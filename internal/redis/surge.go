package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// Demand counters auto-expire so a stuck counter cannot pin surge forever.
const demandTTL = 120 * time.Second

// SurgeStore tracks the per-tier demand counter behind surge pricing.
type SurgeStore struct {
	client *redis.Client
}

// NewSurgeStore creates a new SurgeStore.
func NewSurgeStore(client *redis.Client) *SurgeStore {
	return &SurgeStore{client: client}
}

func demandKey(tier domain.Tier) string {
	return "surge:demand:" + string(tier)
}

// IncrementDemand records a new ride request for the tier.
func (s *SurgeStore) IncrementDemand(ctx context.Context, tier domain.Tier) error {
	key := demandKey(tier)
	if err := s.client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, demandTTL).Err()
}

// DecrementDemand records that a request left the queue (matched, cancelled
// or timed out). The counter never goes below zero.
func (s *SurgeStore) DecrementDemand(ctx context.Context, tier domain.Tier) error {
	key := demandKey(tier)
	current, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return err
	}
	if n, convErr := strconv.ParseInt(current, 10, 64); convErr != nil || n <= 0 {
		return nil
	}
	return s.client.Decr(ctx, key).Err()
}

// Demand returns the current demand counter for the tier.
func (s *SurgeStore) Demand(ctx context.Context, tier domain.Tier) (int64, error) {
	val, err := s.client.Get(ctx, demandKey(tier)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}
