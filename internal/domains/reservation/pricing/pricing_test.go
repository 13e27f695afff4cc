package pricing_test

import (
	"testing"
	"time"

	"hotel/internal/domains/reservation/pricing"
	"hotel/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rates = pricing.Rates{Breakfast: 1500, Spa: 3000, Tolerance: 0.01}

func TestNights(t *testing.T) {
	checkIn := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	nights, err := pricing.Nights(checkIn, checkIn.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, nights)

	_, err = pricing.Nights(checkIn, checkIn)
	assert.True(t, failure.IsKind(err, failure.KindInvalidDateRange))

	_, err = pricing.Nights(checkIn, checkIn.AddDate(0, 0, -1))
	assert.True(t, failure.IsKind(err, failure.KindInvalidDateRange))
}

func TestRates_Price(t *testing.T) {
	tests := []struct {
		name string
		stay pricing.Stay
		want pricing.Breakdown
	}{
		{
			name: "room only",
			stay: pricing.Stay{BasePrice: 15000, Nights: 2, Guests: 2},
			want: pricing.Breakdown{Nights: 2, Room: 30000, Total: 30000},
		},
		{
			name: "breakfast per guest per night",
			stay: pricing.Stay{BasePrice: 15000, Nights: 2, Guests: 2, IncludeBreakfast: true},
			want: pricing.Breakdown{Nights: 2, Room: 30000, Breakfast: 6000, Total: 36000},
		},
		{
			name: "spa once per guest",
			stay: pricing.Stay{BasePrice: 15000, Nights: 3, Guests: 2, IncludeSpa: true},
			want: pricing.Breakdown{Nights: 3, Room: 45000, Spa: 6000, Total: 51000},
		},
		{
			name: "bundled services are free",
			stay: pricing.Stay{
				BasePrice: 20000, Nights: 1, Guests: 3,
				IncludeBreakfast: true, IncludeSpa: true,
				TypeIncludesBreakfast: true, TypeIncludesSpa: true,
			},
			want: pricing.Breakdown{Nights: 1, Room: 20000, Total: 20000},
		},
		{
			name: "fractional base price rounds to cents",
			stay: pricing.Stay{BasePrice: 33.333, Nights: 3, Guests: 1},
			want: pricing.Breakdown{Nights: 3, Room: 100, Total: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rates.Price(tt.stay)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, rates.Price(tt.stay), "same inputs, same total")
		})
	}
}

func TestRates_Matches(t *testing.T) {
	assert.True(t, rates.Matches(30000, 30000))
	assert.True(t, rates.Matches(30000, 30000.01))
	assert.True(t, rates.Matches(30000, 29999.99))
	assert.False(t, rates.Matches(30000, 29999))
	assert.False(t, rates.Matches(30000, 30000.02))
}
