package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

type rideFixture struct {
	svc        *RideService
	rideRepo   *MockRideRepository
	matcher    *MockSubmitter
	surgeStore *MockSurgeStore
	geoIndex   *MockGeoIndex
	cache      *MockCacheStore
}

func newRideFixture(db *sql.DB) *rideFixture {
	f := &rideFixture{
		rideRepo:   NewMockRideRepository(),
		matcher:    &MockSubmitter{},
		surgeStore: NewMockSurgeStore(),
		geoIndex:   NewMockGeoIndex(),
		cache:      NewMockCacheStore(),
	}
	surgeSvc := NewSurgeService(f.surgeStore, f.geoIndex, 5.0)
	f.svc = NewRideService(db, f.rideRepo, f.matcher, surgeSvc, NewPricingService(), f.surgeStore, f.cache)
	return f
}

func TestCreateRide_CapturesSurgeAndQueuesMatch(t *testing.T) {
	f := newRideFixture(nil)
	// demand 10 against supply 5: ratio 2.0 after this request's increment.
	f.surgeStore.SetDemand(domain.TierStandard, 9)
	f.geoIndex.SetMembers(domain.TierStandard, []string{"d1", "d2", "d3", "d4", "d5"})

	resp, err := f.svc.CreateRide(context.Background(), CreateRideRequest{
		RiderID:   "rider-1",
		PickupLat: 12.97, PickupLng: 77.59,
		DestLat: 13.08, DestLng: 80.27,
		Tier:          "standard",
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RideStatusRequested, resp.Ride.Status)
	assert.Equal(t, 3.0, resp.Ride.SurgeMultiplier)
	assert.Empty(t, resp.Ride.DriverID)
	assert.Equal(t, "INR", resp.EstimatedFare.Currency)
	assert.Less(t, resp.EstimatedFare.Min, resp.EstimatedFare.Max)

	// This request's own demand is counted before pricing.
	demand, _ := f.surgeStore.Demand(context.Background(), domain.TierStandard)
	assert.Equal(t, int64(10), demand)

	tasks := f.matcher.Submitted()
	require.Len(t, tasks, 1)
	assert.Equal(t, resp.Ride.ID, tasks[0].RideID)
	assert.Equal(t, domain.TierStandard, tasks[0].Tier)
}

func TestCreateRide_DefaultsTierAndMethod(t *testing.T) {
	f := newRideFixture(nil)

	resp, err := f.svc.CreateRide(context.Background(), CreateRideRequest{
		RiderID:   "rider-1",
		PickupLat: 1, PickupLng: 1, DestLat: 2, DestLng: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TierStandard, resp.Ride.Tier)
	assert.Equal(t, domain.PaymentMethodCash, resp.Ride.PaymentMethod)
	assert.Equal(t, 1.0, resp.Ride.SurgeMultiplier)
}

func TestCreateRide_Validation(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	_, err := f.svc.CreateRide(ctx, CreateRideRequest{PickupLat: 1, PickupLng: 1, DestLat: 2, DestLng: 2})
	assert.ErrorIs(t, err, ErrInvalidRiderID)

	_, err = f.svc.CreateRide(ctx, CreateRideRequest{RiderID: "r", PickupLat: 91, PickupLng: 1, DestLat: 2, DestLng: 2})
	assert.ErrorIs(t, err, ErrInvalidPickupLocation)

	_, err = f.svc.CreateRide(ctx, CreateRideRequest{RiderID: "r", PickupLat: 1, PickupLng: 1, DestLat: 2, DestLng: 181})
	assert.ErrorIs(t, err, ErrInvalidDestinationLocation)

	_, err = f.svc.CreateRide(ctx, CreateRideRequest{RiderID: "r", PickupLat: 1, PickupLng: 1, DestLat: 2, DestLng: 2, Tier: "luxury"})
	assert.ErrorIs(t, err, ErrInvalidTier)

	_, err = f.svc.CreateRide(ctx, CreateRideRequest{RiderID: "r", PickupLat: 1, PickupLng: 1, DestLat: 2, DestLng: 2, PaymentMethod: "cheque"})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestCreateRide_SubmitFailureLeavesRideRequested(t *testing.T) {
	f := newRideFixture(nil)
	f.matcher.SubmitError = assert.AnError

	resp, err := f.svc.CreateRide(context.Background(), CreateRideRequest{
		RiderID:   "rider-1",
		PickupLat: 1, PickupLng: 1, DestLat: 2, DestLng: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RideStatusRequested, resp.Ride.Status)
}

func TestGetRideStatus_CacheMissFallsThroughAndWarms(t *testing.T) {
	f := newRideFixture(nil)
	f.rideRepo.AddRide(&domain.Ride{
		ID:              "ride-1",
		RiderID:         "rider-1",
		Status:          domain.RideStatusMatched,
		DriverID:        "d1",
		Tier:            domain.TierStandard,
		SurgeMultiplier: 1.5,
		CreatedAt:       time.Now(),
	})

	view, err := f.svc.GetRideStatus(context.Background(), "ride-1")
	require.NoError(t, err)

	assert.Equal(t, "MATCHED", view.Status)
	assert.Equal(t, "d1", view.DriverID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.cache.SetStatusCallCount))
}

func TestGetRideStatus_CacheHitSkipsRepository(t *testing.T) {
	f := newRideFixture(nil)

	payload, _ := json.Marshal(StatusView{ID: "ride-1", Status: "REQUESTED", Tier: "standard", SurgeMultiplier: 1.0})
	_ = f.cache.SetRideStatus(context.Background(), "ride-1", string(payload))

	// Ride is absent from the repository: a hit must not touch it.
	view, err := f.svc.GetRideStatus(context.Background(), "ride-1")
	require.NoError(t, err)
	assert.Equal(t, "REQUESTED", view.Status)
}

var rideRowColumns = []string{
	"id", "rider_id", "driver_id", "pickup_lat", "pickup_lng", "dest_lat", "dest_lng",
	"tier", "status", "payment_method", "surge_multiplier", "idempotency_key", "created_at", "updated_at",
}

func rideRow(mock sqlmock.Sqlmock, id, riderID, driverID string, status domain.RideStatus) *sqlmock.Rows {
	return sqlmock.NewRows(rideRowColumns).AddRow(
		id, riderID, driverID, 12.97, 77.59, 13.08, 80.27,
		"standard", string(status), "card", 1.0, "", time.Now(), time.Now(),
	)
}

func TestCancelRide_Requested(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := newRideFixture(db)
	f.surgeStore.SetDemand(domain.TierStandard, 3)
	f.rideRepo.AddRide(&domain.Ride{
		ID:      "ride-1",
		RiderID: "rider-1",
		Status:  domain.RideStatusRequested,
		Tier:    domain.TierStandard,
	})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("ride-1").
		WillReturnRows(rideRow(mock, "ride-1", "rider-1", "", domain.RideStatusRequested))
	mock.ExpectExec("UPDATE rides SET status").
		WithArgs(string(domain.RideStatusCancelled), "ride-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ride, err := f.svc.CancelRide(context.Background(), "ride-1", "rider-1")
	require.NoError(t, err)

	assert.Equal(t, domain.RideStatusCancelled, ride.Status)
	assert.NoError(t, mock.ExpectationsWereMet())

	// A queued ride held a demand slot.
	demand, _ := f.surgeStore.Demand(context.Background(), domain.TierStandard)
	assert.Equal(t, int64(2), demand)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.cache.InvalidateCallCount))
}

func TestCancelRide_MatchedFreesDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := newRideFixture(db)
	f.surgeStore.SetDemand(domain.TierStandard, 3)
	f.rideRepo.AddRide(&domain.Ride{
		ID:       "ride-1",
		RiderID:  "rider-1",
		DriverID: "d1",
		Status:   domain.RideStatusMatched,
		Tier:     domain.TierStandard,
	})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("ride-1").
		WillReturnRows(rideRow(mock, "ride-1", "rider-1", "d1", domain.RideStatusMatched))
	mock.ExpectExec("UPDATE drivers SET status").
		WithArgs(string(domain.DriverStatusAvailable), "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rides SET status").
		WithArgs(string(domain.RideStatusCancelled), "ride-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ride, err := f.svc.CancelRide(context.Background(), "ride-1", "rider-1")
	require.NoError(t, err)

	assert.Equal(t, domain.RideStatusCancelled, ride.Status)
	assert.NoError(t, mock.ExpectationsWereMet())

	// A matched ride no longer holds a demand slot.
	demand, _ := f.surgeStore.Demand(context.Background(), domain.TierStandard)
	assert.Equal(t, int64(3), demand)
}

func TestCancelRide_Guards(t *testing.T) {
	f := newRideFixture(nil)
	f.rideRepo.AddRide(&domain.Ride{ID: "ride-1", RiderID: "rider-1", Status: domain.RideStatusTripStarted})
	f.rideRepo.AddRide(&domain.Ride{ID: "ride-2", RiderID: "rider-1", Status: domain.RideStatusCancelled})

	_, err := f.svc.CancelRide(context.Background(), "ride-1", "rider-1")
	assert.ErrorIs(t, err, ErrRideCannotBeCancelled)

	_, err = f.svc.CancelRide(context.Background(), "ride-2", "rider-1")
	assert.ErrorIs(t, err, ErrRideAlreadyCancelled)

	_, err = f.svc.CancelRide(context.Background(), "ride-1", "rider-2")
	assert.ErrorIs(t, err, ErrNotRideOwner)
}
