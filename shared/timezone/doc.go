// Package timezone pins the hotel's wall clock.
//
// APP_TIMEZONE names the IANA zone the property operates in ("Europe/Madrid",
// "UTC"); it is loaded once when the package is imported and falls back to UTC.
//
// Stays are calendar days, not instants. Today and DateOf reduce a moment to
// the date seen on the hotel's clock and return it as midnight UTC, which is
// how DATE columns are scanned, so "is the check-in today" is a plain Equal:
//
//	timezone.DateOf(reservation.CheckIn).Equal(timezone.Today())
//
// Now, In, Format and Parse work on the hotel clock for audit timestamps;
// Load switches the clock, which tests use to pin a zone.
package timezone
