// Package deadline resolves the authoritative contest cutoff instant.
package deadline

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the literal deadline format, interpreted as UTC.
// Example for round 5: "2023-05-03_23:59".
const Layout = "2006-01-02_15:04"

// ErrMalformedDeadline is returned when an explicit deadline string
// does not match Layout.
var ErrMalformedDeadline = errors.New("malformed deadline string")

// Resolve computes the contest deadline from spec. An empty spec means
// "use the default rule": the most recent Wednesday at 23:59:00 UTC,
// inclusive of today if today is Wednesday. The result is always UTC.
func Resolve(spec string, now func() time.Time) (time.Time, error) {
	if spec == "" {
		today := now().UTC().Truncate(24 * time.Hour)

		offset := (int(today.Weekday()) - int(time.Wednesday) + 7) % 7
		prevWed := today.AddDate(0, 0, -offset)

		return time.Date(prevWed.Year(), prevWed.Month(), prevWed.Day(),
			23, 59, 0, 0, time.UTC), nil
	}

	dt, err := time.ParseInLocation(Layout, spec, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (want %s)", ErrMalformedDeadline, spec, Layout)
	}

	return dt, nil
}
