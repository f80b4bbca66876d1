package service

import (
	"math"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
)

// tierRate is the fare table row for one service class.
type tierRate struct {
	BaseFee float64
	PerKM   float64
}

var tierRates = map[domain.Tier]tierRate{
	domain.TierStandard: {BaseFee: 30, PerKM: 10},
	domain.TierPremium:  {BaseFee: 60, PerKM: 15},
	domain.TierXL:       {BaseFee: 80, PerKM: 20},
}

// FareBreakdown is the priced result for a trip distance.
type FareBreakdown struct {
	BaseFare  float64
	SurgeFare float64
	TotalFare float64
}

// FareRange is the estimate quoted before the trip is driven.
type FareRange struct {
	Min      float64
	Max      float64
	Currency string
}

// PricingService computes fares from the static tier table.
type PricingService struct{}

// NewPricingService creates a new PricingService.
func NewPricingService() *PricingService {
	return &PricingService{}
}

// CalculateFare prices a driven distance under the surge multiplier captured
// at request time. The base fare is the tier's flag fall plus its per-km
// rate; surge is charged only on the excess above 1.0.
func (s *PricingService) CalculateFare(tier domain.Tier, distanceKM, surgeMultiplier float64) FareBreakdown {
	rate, ok := tierRates[tier]
	if !ok {
		rate = tierRates[domain.TierStandard]
	}

	base := rate.BaseFee + rate.PerKM*distanceKM
	surge := base * (surgeMultiplier - 1.0)

	return FareBreakdown{
		BaseFare:  round2(base),
		SurgeFare: round2(surge),
		TotalFare: round2(base + surge),
	}
}

// EstimateFareRange quotes a +/-10% band around the straight-line fare
// between pickup and destination.
func (s *PricingService) EstimateFareRange(tier domain.Tier, pickupLat, pickupLng, destLat, destLng, surgeMultiplier float64) FareRange {
	distance := HaversineKM(pickupLat, pickupLng, destLat, destLng)
	fare := s.CalculateFare(tier, distance, surgeMultiplier)

	return FareRange{
		Min:      round2(fare.TotalFare * 0.9),
		Max:      round2(fare.TotalFare * 1.1),
		Currency: "INR",
	}
}

// HaversineKM returns the great-circle distance between two points in
// kilometers.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKM = 6371.0

	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
