package pricing

import (
	"math"
	"time"

	"hotel/config"
	"hotel/shared"
	"hotel/shared/constant"
	"hotel/shared/failure"
)

// Rates holds the add-on prices and the tolerance used to compare declared totals.
type Rates struct {
	Breakfast float64
	Spa       float64
	Tolerance float64
}

func RatesFromConfig(cfg *config.Config) Rates {
	return Rates{
		Breakfast: cfg.Booking.BreakfastRate,
		Spa:       cfg.Booking.SpaRate,
		Tolerance: cfg.Booking.PriceTolerance,
	}
}

type Stay struct {
	BasePrice             float64
	Nights                int
	Guests                int
	IncludeBreakfast      bool
	IncludeSpa            bool
	TypeIncludesBreakfast bool
	TypeIncludesSpa       bool
}

type Breakdown struct {
	Nights    int
	Room      float64
	Breakfast float64
	Spa       float64
	Total     float64
}

// Nights counts whole days between the two calendar dates.
func Nights(checkIn, checkOut time.Time) (int, error) {
	hours := checkOut.Sub(checkIn).Hours()
	nights := int(math.Round(hours / constant.HoursInOneDay))

	if nights < 1 {
		return 0, failure.InvalidDateRange("check-out must be at least one night after check-in")
	}

	return nights, nil
}

// Price is pure: breakfast is charged per guest per night, spa once per guest,
// each only when the room type does not already bundle it.
func (r Rates) Price(stay Stay) Breakdown {
	res := Breakdown{
		Nights: stay.Nights,
		Room:   shared.RoundMoney(stay.BasePrice * float64(stay.Nights)),
	}

	if stay.IncludeBreakfast && !stay.TypeIncludesBreakfast {
		res.Breakfast = shared.RoundMoney(r.Breakfast * float64(stay.Nights) * float64(stay.Guests))
	}

	if stay.IncludeSpa && !stay.TypeIncludesSpa {
		res.Spa = shared.RoundMoney(r.Spa * float64(stay.Guests))
	}

	res.Total = shared.RoundMoney(res.Room + res.Breakfast + res.Spa)

	return res
}

// Matches reports whether a declared total is within tolerance of the computed one.
func (r Rates) Matches(computed, declared float64) bool {
	return math.Abs(computed-declared) <= r.Tolerance+1e-9 //nolint:mnd
}
