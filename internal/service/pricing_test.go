package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

func TestCalculateFare_TierTable(t *testing.T) {
	pricing := NewPricingService()

	cases := []struct {
		tier     domain.Tier
		distance float64
		want     float64
	}{
		{domain.TierStandard, 10, 130},  // 30 + 10*10
		{domain.TierPremium, 10, 210},   // 60 + 15*10
		{domain.TierXL, 10, 280},        // 80 + 20*10
		{domain.TierStandard, 0, 30},    // flag fall only
		{domain.TierPremium, 2.5, 97.5}, // 60 + 15*2.5
	}

	for _, tc := range cases {
		fare := pricing.CalculateFare(tc.tier, tc.distance, 1.0)
		assert.Equal(t, tc.want, fare.BaseFare, "base fare for %s at %.1fkm", tc.tier, tc.distance)
		assert.Equal(t, 0.0, fare.SurgeFare)
		assert.Equal(t, tc.want, fare.TotalFare)
	}
}

func TestCalculateFare_SurgeOnExcessOnly(t *testing.T) {
	pricing := NewPricingService()

	fare := pricing.CalculateFare(domain.TierStandard, 10, 2.0)
	assert.Equal(t, 130.0, fare.BaseFare)
	assert.Equal(t, 130.0, fare.SurgeFare) // base * (2.0 - 1.0)
	assert.Equal(t, 260.0, fare.TotalFare)

	fare = pricing.CalculateFare(domain.TierStandard, 10, 1.5)
	assert.Equal(t, 65.0, fare.SurgeFare)
	assert.Equal(t, 195.0, fare.TotalFare)
}

func TestCalculateFare_RoundsToTwoDecimals(t *testing.T) {
	pricing := NewPricingService()

	fare := pricing.CalculateFare(domain.TierStandard, 3.333, 1.5)
	assert.Equal(t, 63.33, fare.BaseFare)
	assert.Equal(t, 31.67, fare.SurgeFare)
	assert.Equal(t, 95.0, fare.TotalFare)
}

func TestCalculateFare_UnknownTierFallsBackToStandard(t *testing.T) {
	pricing := NewPricingService()

	fare := pricing.CalculateFare(domain.Tier("luxury"), 10, 1.0)
	assert.Equal(t, 130.0, fare.TotalFare)
}

func TestHaversineKM(t *testing.T) {
	// Bangalore to Chennai, roughly 290 km great-circle.
	dist := HaversineKM(12.9716, 77.5946, 13.0827, 80.2707)
	assert.InDelta(t, 290.4, dist, 1.0)

	// Same point.
	assert.Equal(t, 0.0, HaversineKM(12.9716, 77.5946, 12.9716, 77.5946))
}

func TestEstimateFareRange(t *testing.T) {
	pricing := NewPricingService()

	// ~1.11 km due north of the equator origin.
	rng := pricing.EstimateFareRange(domain.TierStandard, 0, 0, 0.01, 0, 1.0)

	assert.Equal(t, "INR", rng.Currency)
	assert.Less(t, rng.Min, rng.Max)
	assert.InDelta(t, rng.Min/0.9, rng.Max/1.1, 0.02)
}

func TestEstimateFareRange_ZeroDistance(t *testing.T) {
	pricing := NewPricingService()

	rng := pricing.EstimateFareRange(domain.TierXL, 10, 10, 10, 10, 1.0)
	assert.Equal(t, 72.0, rng.Min) // 80 * 0.9
	assert.Equal(t, 88.0, rng.Max) // 80 * 1.1
}
