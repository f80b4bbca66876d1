package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/man2412/Ride-Hailing-Platform/internal/domain"
	"github.com/man2412/Ride-Hailing-Platform/internal/logger"
	"github.com/man2412/Ride-Hailing-Platform/internal/redis"
)

// SurgeService derives the surge multiplier from live demand and supply.
type SurgeService struct {
	surgeStore    redis.SurgeStoreInterface
	geoIndex      redis.GeoIndexInterface
	maxMultiplier float64
}

// NewSurgeService creates a new SurgeService.
func NewSurgeService(surgeStore redis.SurgeStoreInterface, geoIndex redis.GeoIndexInterface, maxMultiplier float64) *SurgeService {
	return &SurgeService{
		surgeStore:    surgeStore,
		geoIndex:      geoIndex,
		maxMultiplier: maxMultiplier,
	}
}

// Multiplier returns the surge multiplier for the tier. Pricing must never
// block ride creation, so any store failure degrades to 1.0.
func (s *SurgeService) Multiplier(ctx context.Context, tier domain.Tier) float64 {
	demand, err := s.surgeStore.Demand(ctx, tier)
	if err != nil {
		logger.Get().Warn("surge demand read failed, defaulting multiplier",
			zap.String("tier", string(tier)),
			zap.Error(err),
		)
		return 1.0
	}

	supply, err := s.geoIndex.Supply(ctx, tier)
	if err != nil {
		logger.Get().Warn("surge supply read failed, defaulting multiplier",
			zap.String("tier", string(tier)),
			zap.Error(err),
		)
		return 1.0
	}

	return s.computeMultiplier(demand, supply)
}

// computeMultiplier maps the demand/supply ratio to a stepped multiplier.
// Supply is floored at one so an empty partition reads as scarce, not
// infinite.
func (s *SurgeService) computeMultiplier(demand, supply int64) float64 {
	if supply < 1 {
		supply = 1
	}
	ratio := float64(demand) / float64(supply)

	var multiplier float64
	switch {
	case ratio < 0.5:
		multiplier = 1.0
	case ratio < 1.0:
		multiplier = 1.5
	case ratio < 2.0:
		multiplier = 2.0
	case ratio < 3.0:
		multiplier = 3.0
	default:
		multiplier = ratio
	}

	if multiplier > s.maxMultiplier {
		multiplier = s.maxMultiplier
	}

	return round2(multiplier)
}
