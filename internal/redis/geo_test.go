package redis

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

func TestGeoIndex_Upsert(t *testing.T) {
	client, mock := redismock.NewClientMock()
	geo := NewGeoIndex(client)

	mock.ExpectGeoAdd("drivers:geo:standard", &redis.GeoLocation{
		Name:      "d1",
		Longitude: 77.59,
		Latitude:  12.97,
	}).SetVal(1)
	mock.ExpectSet("driver:d1:loc", "12.970000,77.590000", LocationTTL).SetVal("OK")

	err := geo.Upsert(context.Background(), domain.TierStandard, "d1", 12.97, 77.59)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeoIndex_NearbyReturnsFreshMembers(t *testing.T) {
	client, mock := redismock.NewClientMock()
	geo := NewGeoIndex(client)

	mock.ExpectGeoSearch("drivers:geo:standard", &redis.GeoSearchQuery{
		Longitude:  77.59,
		Latitude:   12.97,
		Radius:     5.0,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      10,
	}).SetVal([]string{"d1", "d2"})
	mock.ExpectExists("driver:d1:loc").SetVal(1)
	mock.ExpectExists("driver:d2:loc").SetVal(1)

	ids, err := geo.Nearby(context.Background(), domain.TierStandard, 12.97, 77.59, 5.0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeoIndex_NearbyPrunesStaleMembers(t *testing.T) {
	client, mock := redismock.NewClientMock()
	geo := NewGeoIndex(client)

	mock.ExpectGeoSearch("drivers:geo:standard", &redis.GeoSearchQuery{
		Longitude:  77.59,
		Latitude:   12.97,
		Radius:     5.0,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      10,
	}).SetVal([]string{"d1", "d2"})
	// d2's freshness key expired: it is pruned from the partition.
	mock.ExpectExists("driver:d1:loc").SetVal(1)
	mock.ExpectExists("driver:d2:loc").SetVal(0)
	mock.ExpectZRem("drivers:geo:standard", "d2").SetVal(1)

	ids, err := geo.Nearby(context.Background(), domain.TierStandard, 12.97, 77.59, 5.0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeoIndex_NearbyEmptyPartition(t *testing.T) {
	client, mock := redismock.NewClientMock()
	geo := NewGeoIndex(client)

	mock.ExpectGeoSearch("drivers:geo:xl", &redis.GeoSearchQuery{
		Longitude:  77.59,
		Latitude:   12.97,
		Radius:     5.0,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      10,
	}).SetVal([]string{})

	ids, err := geo.Nearby(context.Background(), domain.TierXL, 12.97, 77.59, 5.0, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeoIndex_Remove(t *testing.T) {
	client, mock := redismock.NewClientMock()
	geo := NewGeoIndex(client)

	mock.ExpectZRem("drivers:geo:premium", "d1").SetVal(1)
	mock.ExpectDel("driver:d1:loc").SetVal(1)

	err := geo.Remove(context.Background(), domain.TierPremium, "d1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeoIndex_Supply(t *testing.T) {
	client, mock := redismock.NewClientMock()
	geo := NewGeoIndex(client)

	mock.ExpectZCard("drivers:geo:standard").SetVal(7)

	supply, err := geo.Supply(context.Background(), domain.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, int64(7), supply)
	assert.NoError(t, mock.ExpectationsWereMet())
}
