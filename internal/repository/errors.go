// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// service and handlers to distinguish between failure scenarios: a missing
// entity maps to HTTP 404, a seat conflict to HTTP 409, and so on.
package repository

import "errors"

// ErrSeatConflict is returned when a seat claim cannot proceed because the
// seat already has a live reservation or its stored status is not
// "available".  Handlers should translate this into an HTTP 409 response.
var ErrSeatConflict = errors.New("seat already reserved or unavailable")

// ErrSeatExists is returned when creating a seat that collides with an
// existing (venue, row, col) triple.
var ErrSeatExists = errors.New("seat already exists")

// ErrEmailExists is returned when registering with an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")

// Not-found sentinels, one per entity.
var (
	ErrVenueNotFound       = errors.New("venue not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrReservationNotFound = errors.New("reservation not found")
)
