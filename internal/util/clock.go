package util

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package-level time source so tests can freeze "today".
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}

// Today returns the current local date as DD.MM.YYYY.
func Today() string {
	return FormatPeriod(clock.Now())
}
