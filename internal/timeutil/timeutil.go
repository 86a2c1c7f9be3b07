// Package timeutil converts between UTC instants and epoch seconds.
// Instants without an explicit UTC zone are rejected so that every
// timestamp entering the pipeline is unambiguous.
package timeutil

import (
	"errors"
	"time"
)

// ErrNaiveTime is returned when an instant is not explicitly in UTC.
var ErrNaiveTime = errors.New("instant must be in UTC")

// ToEpochSeconds converts a UTC instant to integer seconds since epoch.
// Fails with ErrNaiveTime if the instant's zone is not UTC.
func ToEpochSeconds(t time.Time) (int64, error) {
	if t.Location() != time.UTC {
		return 0, ErrNaiveTime
	}
	return t.Unix(), nil
}

// FromEpochSeconds converts epoch seconds to a UTC instant. Total for
// any integer input.
func FromEpochSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
