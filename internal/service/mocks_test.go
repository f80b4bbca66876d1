package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	CreateCallCount         int32
	UpdateStatusCallCount   int32
	UpdateLocationCallCount int32

	CreateError         error
	UpdateStatusError   error
	UpdateLocationError error
}

func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{drivers: make(map[string]*domain.Driver)}
}

func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.Phone == driver.Phone {
			return repository.ErrDuplicate
		}
	}
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	// Last write wins by timestamp.
	if !driver.LocationUpdatedAt.IsZero() && !driver.LocationUpdatedAt.Before(at) {
		return nil
	}
	driver.Lat = lat
	driver.Lng = lng
	driver.LocationUpdatedAt = at
	return nil
}

func (m *MockDriverRepository) LockAvailable(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok || driver.Status != domain.DriverStatusAvailable {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	CreateCallCount       int32
	UpdateStatusCallCount int32

	CreateError       error
	UpdateStatusError error
}

func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{rides: make(map[string]*domain.Ride)}
}

func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = status
	return nil
}

func (m *MockRideRepository) Assign(ctx context.Context, id, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = domain.RideStatusMatched
	ride.DriverID = driverID
	return nil
}

func (m *MockRideRepository) LockByID(ctx context.Context, id string) (*domain.Ride, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRideRepository) LockRequested(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != domain.RideStatusRequested {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) LockMatchedFor(ctx context.Context, id, driverID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != domain.RideStatusMatched || ride.DriverID != driverID {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	CompleteCallCount int32

	CompleteError error
}

func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, trip := range m.trips {
		if trip.RideID == rideID {
			copy := *trip
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTripRepository) LockByID(ctx context.Context, id string) (*domain.Trip, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) Complete(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CompleteCallCount, 1)
	if m.CompleteError != nil {
		return m.CompleteError
	}
	return m.Update(ctx, trip)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateCallCount     int32
	MarkResultCallCount int32

	CreateError     error
	MarkResultError error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TripID == tripID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.IdempotencyKey != "" && p.IdempotencyKey == key {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) SetIdempotencyKey(ctx context.Context, id, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.IdempotencyKey = key
	return nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

func (m *MockPaymentRepository) MarkResult(ctx context.Context, id string, status domain.PaymentStatus, providerRef string) error {
	atomic.AddInt32(&m.MarkResultCallCount, 1)
	if m.MarkResultError != nil {
		return m.MarkResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	payment.ProviderRef = providerRef
	return nil
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

type MockGeoIndex struct {
	mu      sync.RWMutex
	members map[domain.Tier][]string

	UpsertCallCount int32
	RemoveCallCount int32

	UpsertError error
	NearbyError error
	SupplyError error
}

func NewMockGeoIndex() *MockGeoIndex {
	return &MockGeoIndex{members: make(map[domain.Tier][]string)}
}

func (m *MockGeoIndex) SetMembers(tier domain.Tier, ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[tier] = ids
}

func (m *MockGeoIndex) Upsert(ctx context.Context, tier domain.Tier, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.members[tier] {
		if id == driverID {
			return nil
		}
	}
	m.members[tier] = append(m.members[tier], driverID)
	return nil
}

func (m *MockGeoIndex) Nearby(ctx context.Context, tier domain.Tier, lat, lng, radiusKM float64, limit int) ([]string, error) {
	if m.NearbyError != nil {
		return nil, m.NearbyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.members[tier]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *MockGeoIndex) Remove(ctx context.Context, tier domain.Tier, driverID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.members[tier]
	for i, id := range ids {
		if id == driverID {
			m.members[tier] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockGeoIndex) Supply(ctx context.Context, tier domain.Tier) (int64, error) {
	if m.SupplyError != nil {
		return 0, m.SupplyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.members[tier])), nil
}

type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]string

	AcquireCallCount int32
	ReleaseCallCount int32

	AcquireError error
}

func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]string)}
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[driverID]; held {
		return false, nil
	}
	m.locks[driverID] = rideID
	return true, nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, driverID)
	return nil
}

func (m *MockLockStore) Holder(driverID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[driverID]
}

type MockSurgeStore struct {
	mu     sync.Mutex
	demand map[domain.Tier]int64

	IncrementCallCount int32
	DecrementCallCount int32

	DemandError error
}

func NewMockSurgeStore() *MockSurgeStore {
	return &MockSurgeStore{demand: make(map[domain.Tier]int64)}
}

func (m *MockSurgeStore) SetDemand(tier domain.Tier, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demand[tier] = n
}

func (m *MockSurgeStore) IncrementDemand(ctx context.Context, tier domain.Tier) error {
	atomic.AddInt32(&m.IncrementCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demand[tier]++
	return nil
}

func (m *MockSurgeStore) DecrementDemand(ctx context.Context, tier domain.Tier) error {
	atomic.AddInt32(&m.DecrementCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.demand[tier] > 0 {
		m.demand[tier]--
	}
	return nil
}

func (m *MockSurgeStore) Demand(ctx context.Context, tier domain.Tier) (int64, error) {
	if m.DemandError != nil {
		return 0, m.DemandError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.demand[tier], nil
}

type MockCacheStore struct {
	mu     sync.Mutex
	status map[string]string
	tiers  map[string]domain.Tier

	SetStatusCallCount  int32
	InvalidateCallCount int32

	GetStatusError error
}

func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		status: make(map[string]string),
		tiers:  make(map[string]domain.Tier),
	}
}

func (m *MockCacheStore) GetRideStatus(ctx context.Context, rideID string) (string, error) {
	if m.GetStatusError != nil {
		return "", m.GetStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status[rideID], nil
}

func (m *MockCacheStore) SetRideStatus(ctx context.Context, rideID, payload string) error {
	atomic.AddInt32(&m.SetStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[rideID] = payload
	return nil
}

func (m *MockCacheStore) InvalidateRideStatus(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.status, rideID)
	return nil
}

func (m *MockCacheStore) GetDriverTier(ctx context.Context, driverID string) (domain.Tier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tiers[driverID], nil
}

func (m *MockCacheStore) SetDriverTier(ctx context.Context, driverID string, tier domain.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers[driverID] = tier
	return nil
}

// ──────────────────────────────────────────────
// MOCK PROVIDER AND SUBMITTER
// ──────────────────────────────────────────────

// MockProvider fails the first FailCount charges, then succeeds.
type MockProvider struct {
	mu        sync.Mutex
	FailCount int
	Ref       string

	ChargeCallCount int32
	Requests        []ChargeRequest
}

func (m *MockProvider) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.FailCount > 0 {
		m.FailCount--
		return "", context.DeadlineExceeded
	}
	if m.Ref != "" {
		return m.Ref, nil
	}
	return "PSP-AB12CD34EF56", nil
}

type MockSubmitter struct {
	mu    sync.Mutex
	Tasks []MatchTask

	SubmitError error
}

func (m *MockSubmitter) Submit(task MatchTask) error {
	if m.SubmitError != nil {
		return m.SubmitError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks = append(m.Tasks, task)
	return nil
}

func (m *MockSubmitter) Submitted() []MatchTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MatchTask, len(m.Tasks))
	copy(out, m.Tasks)
	return out
}
