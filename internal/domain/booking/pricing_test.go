package booking

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towline/service-towing/internal/common/domain"
)

func TestComputeQuote_ClassA(t *testing.T) {
	card := DefaultRateCards[TruckClassA]

	quote, err := ComputeQuote(10.0, TruckClassA, false, card)
	require.NoError(t, err)

	// 528.69 + 10 * 18.82 = 716.89
	assert.Equal(t, int64(71689), quote.TotalCostCents)
	assert.Equal(t, TruckClassA, quote.TowTruckClass)
	assert.False(t, quote.RequiresManeuver)
}

func TestComputeQuote_ClassAWithManeuver(t *testing.T) {
	card := DefaultRateCards[TruckClassA]

	quote, err := ComputeQuote(10.0, TruckClassA, true, card)
	require.NoError(t, err)

	// 716.89 + 1219.55 = 1936.44
	assert.Equal(t, int64(193644), quote.TotalCostCents)
	assert.True(t, quote.RequiresManeuver)
}

func TestComputeQuote_ZeroDistance(t *testing.T) {
	card := DefaultRateCards[TruckClassD]

	quote, err := ComputeQuote(0, TruckClassD, false, card)
	require.NoError(t, err)

	assert.Equal(t, card.BasePriceCents, quote.TotalCostCents)
}

func TestComputeQuote_FractionalDistanceRoundsHalfUp(t *testing.T) {
	card := RateCard{BasePriceCents: 0, PerKmRateCents: 100, ManeuverChargeCents: 0}

	// 0.005 km * 100 cents = 0.5 cents, rounds up to 1.
	quote, err := ComputeQuote(0.005, TruckClassA, false, card)
	require.NoError(t, err)
	assert.Equal(t, int64(1), quote.TotalCostCents)

	// 0.004 km * 100 cents = 0.4 cents, rounds down to 0.
	quote, err = ComputeQuote(0.004, TruckClassA, false, card)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.TotalCostCents)
}

func TestComputeQuote_InvalidInputs(t *testing.T) {
	card := DefaultRateCards[TruckClassA]

	tests := []struct {
		name       string
		distanceKm float64
		class      TowTruckClass
	}{
		{"negative distance", -1, TruckClassA},
		{"NaN distance", math.NaN(), TruckClassA},
		{"positive infinity", math.Inf(1), TruckClassA},
		{"negative infinity", math.Inf(-1), TruckClassA},
		{"unknown class", 5, TowTruckClass("B")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeQuote(tt.distanceKm, tt.class, false, card)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestComputeQuote_MonotonicInDistance(t *testing.T) {
	card := DefaultRateCards[TruckClassC]

	var prev int64 = -1
	for km := 0.0; km <= 100; km += 2.5 {
		quote, err := ComputeQuote(km, TruckClassC, false, card)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, quote.TotalCostCents, prev, "total decreased at %.1f km", km)
		prev = quote.TotalCostCents
	}
}

func TestComputeQuote_RandomDistancesMatchRateCard(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for class, card := range DefaultRateCards {
		for i := 0; i < 200; i++ {
			distance := rng.Float64() * 500
			maneuver := rng.Intn(2) == 1

			quote, err := ComputeQuote(distance, class, maneuver, card)
			require.NoError(t, err)

			expected := card.BasePriceCents + int64(math.Floor(distance*float64(card.PerKmRateCents)+0.5))
			if maneuver {
				expected += card.ManeuverChargeCents
			}
			assert.Equal(t, expected, quote.TotalCostCents,
				"class=%s distance=%v maneuver=%v", class, distance, maneuver)
		}
	}
}

func TestComputeQuote_ManeuverAddsExactSurcharge(t *testing.T) {
	for class, card := range DefaultRateCards {
		without, err := ComputeQuote(17.3, class, false, card)
		require.NoError(t, err)
		with, err := ComputeQuote(17.3, class, true, card)
		require.NoError(t, err)

		assert.Equal(t, card.ManeuverChargeCents, with.TotalCostCents-without.TotalCostCents)
	}
}

func TestStaticRateCardProvider(t *testing.T) {
	provider := NewStaticRateCardProvider()

	card, err := provider.RateCard(context.Background(), TruckClassA)
	require.NoError(t, err)
	assert.Equal(t, DefaultRateCards[TruckClassA], card)

	_, err = provider.RateCard(context.Background(), TowTruckClass("Z"))
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
