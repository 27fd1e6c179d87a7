// Package service implements the reservation lifecycle on top of the
// repository layer: claiming seats, cancelling claims, sweeping expired
// claims and computing live seat status.  Handlers talk to this package so
// that the core stays testable without an HTTP harness.
package service

import (
	"strconv"
	"strings"
	"time"
)

// Open reports whether a venue with the given open/close times of day is
// open at the instant now.  Both times are "HH:MM" strings anchored to now's
// calendar date.  When close is after open the window is a normal same-day
// one (09:00-18:00); otherwise it crosses midnight (18:00-02:00) and the
// venue is open from the open time until the close time on the next day.
// Malformed time strings are a caller contract violation and parse as 00:00.
func Open(openTime, closeTime string, now time.Time) bool {
	openH, openM := parseClock(openTime)
	closeH, closeM := parseClock(closeTime)

	y, m, d := now.Date()
	open := time.Date(y, m, d, openH, openM, 0, 0, now.Location())
	close := time.Date(y, m, d, closeH, closeM, 0, 0, now.Location())

	if close.After(open) {
		return !now.Before(open) && !now.After(close)
	}
	// Overnight window.
	return !now.Before(open) || !now.After(close)
}

func parseClock(s string) (hour, minute int) {
	h, m, _ := strings.Cut(s, ":")
	hour, _ = strconv.Atoi(strings.TrimSpace(h))
	minute, _ = strconv.Atoi(strings.TrimSpace(m))
	return hour, minute
}
