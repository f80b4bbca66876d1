package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// Geo index freshness: a driver that has not pinged within LocationTTL is
// treated as unroutable and pruned from its partition on the next search.
const LocationTTL = 30 * time.Second

// GeoIndex maintains one geospatial set of available drivers per tier.
type GeoIndex struct {
	client *redis.Client
}

// NewGeoIndex creates a new GeoIndex.
func NewGeoIndex(client *redis.Client) *GeoIndex {
	return &GeoIndex{client: client}
}

func geoKey(tier domain.Tier) string {
	return "drivers:geo:" + string(tier)
}

func locKey(driverID string) string {
	return fmt.Sprintf("driver:%s:loc", driverID)
}

// Upsert inserts or refreshes the driver's position in the tier partition
// and renews the per-driver freshness key.
func (g *GeoIndex) Upsert(ctx context.Context, tier domain.Tier, driverID string, lat, lng float64) error {
	if err := g.client.GeoAdd(ctx, geoKey(tier), &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err(); err != nil {
		return err
	}

	return g.client.Set(ctx, locKey(driverID), fmt.Sprintf("%f,%f", lat, lng), LocationTTL).Err()
}

// Nearby returns up to limit driver IDs within radiusKM of the point,
// ordered by ascending distance. Members whose freshness key has expired
// are removed from the partition and excluded from the result.
func (g *GeoIndex) Nearby(ctx context.Context, tier domain.Tier, lat, lng, radiusKM float64, limit int) ([]string, error) {
	members, err := g.client.GeoSearch(ctx, geoKey(tier), &redis.GeoSearchQuery{
		Longitude:  lng,
		Latitude:   lat,
		Radius:     radiusKM,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      limit,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	pipe := g.client.Pipeline()
	checks := make([]*redis.IntCmd, len(members))
	for i, id := range members {
		checks[i] = pipe.Exists(ctx, locKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	fresh := make([]string, 0, len(members))
	for i, id := range members {
		if checks[i].Val() == 0 {
			// Stale entry, last ping older than LocationTTL.
			_ = g.client.ZRem(ctx, geoKey(tier), id).Err()
			continue
		}
		fresh = append(fresh, id)
	}

	return fresh, nil
}

// Remove deletes a driver from the tier partition.
func (g *GeoIndex) Remove(ctx context.Context, tier domain.Tier, driverID string) error {
	if err := g.client.ZRem(ctx, geoKey(tier), driverID).Err(); err != nil {
		return err
	}
	return g.client.Del(ctx, locKey(driverID)).Err()
}

// Supply returns the cardinality of the tier partition.
func (g *GeoIndex) Supply(ctx context.Context, tier domain.Tier) (int64, error) {
	return g.client.ZCard(ctx, geoKey(tier)).Result()
}
