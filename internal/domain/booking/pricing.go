package booking

import (
	"context"
	"math"

	"github.com/towline/service-towing/internal/common/domain"
)

// RateCard is the fixed pricing for one tow truck class. All amounts are in cents.
type RateCard struct {
	BasePriceCents      int64 `json:"base_price_cents"`
	PerKmRateCents      int64 `json:"per_km_rate_cents"`
	ManeuverChargeCents int64 `json:"maneuver_charge_cents"`
}

// RateCardProvider supplies the rate card for a tow truck class. The booking
// core only ever reads rate cards; editing them is an administrative concern.
type RateCardProvider interface {
	RateCard(ctx context.Context, class TowTruckClass) (RateCard, error)
}

// DefaultRateCards holds the built-in rate table per tow truck class.
var DefaultRateCards = map[TowTruckClass]RateCard{
	TruckClassA: {BasePriceCents: 52869, PerKmRateCents: 1882, ManeuverChargeCents: 121955},
	TruckClassC: {BasePriceCents: 79304, PerKmRateCents: 2823, ManeuverChargeCents: 182933},
	TruckClassD: {BasePriceCents: 105738, PerKmRateCents: 3764, ManeuverChargeCents: 243910},
}

// StaticRateCardProvider serves the built-in rate table.
type StaticRateCardProvider struct{}

// NewStaticRateCardProvider creates a provider backed by DefaultRateCards.
func NewStaticRateCardProvider() *StaticRateCardProvider {
	return &StaticRateCardProvider{}
}

// RateCard returns the built-in rate card for the class.
func (p *StaticRateCardProvider) RateCard(_ context.Context, class TowTruckClass) (RateCard, error) {
	card, ok := DefaultRateCards[class]
	if !ok {
		return RateCard{}, domain.NewNotFoundError("RateCard", string(class))
	}
	return card, nil
}

// Quote is a computed price estimate. It is a pure function of its inputs and
// is snapshotted onto a booking at creation time.
type Quote struct {
	DistanceKm       float64       `json:"distance_km"`
	TowTruckClass    TowTruckClass `json:"tow_truck_class"`
	RequiresManeuver bool          `json:"requires_maneuver"`
	TotalCostCents   int64         `json:"total_cost_cents"`
}

// ComputeQuote calculates the total tow cost in cents:
// base price + distance charge + optional maneuver surcharge. The per-km
// component is rounded half-up to the nearest cent.
func ComputeQuote(distanceKm float64, class TowTruckClass, requiresManeuver bool, card RateCard) (Quote, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return Quote{}, domain.NewValidationError("distance must be a finite number")
	}
	if distanceKm < 0 {
		return Quote{}, domain.NewValidationError("distance cannot be negative")
	}
	if !class.IsValid() {
		return Quote{}, domain.NewValidationError("unknown tow truck class: " + string(class))
	}

	total := card.BasePriceCents + roundHalfUpCents(distanceKm*float64(card.PerKmRateCents))
	if requiresManeuver {
		total += card.ManeuverChargeCents
	}

	return Quote{
		DistanceKm:       distanceKm,
		TowTruckClass:    class,
		RequiresManeuver: requiresManeuver,
		TotalCostCents:   total,
	}, nil
}

// roundHalfUpCents rounds a fractional cent amount half-up to a whole cent.
func roundHalfUpCents(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
