package timezone

import (
	"fmt"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"hotel/config"

	"github.com/rs/zerolog/log"
)

var location atomic.Pointer[time.Location]

func init() {
	name := config.Get().App.Timezone

	if err := Load(name); err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, hotel clock stays on UTC")
	}
}

// Load switches the hotel clock to an IANA zone. An empty name selects UTC;
// an unknown one leaves the clock unchanged.
func Load(name string) error {
	if name == "" {
		location.Store(time.UTC)

		return nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		if location.Load() == nil {
			location.Store(time.UTC)
		}

		return fmt.Errorf("loading timezone %q: %w", name, err)
	}

	location.Store(loc)
	log.Debug().Str("timezone", loc.String()).Msg("Hotel clock set")

	return nil
}

func Location() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

func Now() time.Time {
	return time.Now().In(Location())
}

// In expresses t on the hotel clock.
func In(t time.Time) time.Time {
	return t.In(Location())
}

func Format(t time.Time, layout string) string {
	return In(t).Format(layout)
}

// Parse reads value as a wall-clock time on the hotel clock.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, Location())
}

// Today is the current hotel calendar date as midnight UTC.
func Today() time.Time {
	return DateOf(Now())
}

// DateOf keeps the calendar date of t as seen in t's own location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
