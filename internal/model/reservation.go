package model

import "time"

// Reservation lifecycle states.  "active" is the only mutable state; the
// sweeper moves overdue active reservations to "expired" and cancellation
// moves them to "cancelled".  Both terminal states are final.
const (
	ReservationStatusActive    = "active"
	ReservationStatusExpired   = "expired"
	ReservationStatusCancelled = "cancelled"
)

// AllowedDurations are the only reservation lengths accepted at the wire
// boundary, in minutes.
var AllowedDurations = []int{15, 30, 45}

// Reservation records a user's time-bounded, exclusive claim on one seat.
// EndTime is StartTime plus DurationMinutes.  A reservation is "live" at
// time T when Status is active and EndTime is after T; at most one live
// reservation may reference a seat at any instant.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  VenueID         – venue containing the seat.
//  SeatID          – seat being claimed.
//  StartTime       – creation instant.
//  EndTime         – StartTime + DurationMinutes.
//  DurationMinutes – requested duration (15, 30 or 45).
//  Status          – active, expired or cancelled.
//  CreatedAt       – creation timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	UserID          uint64    // reservations.user_id
	VenueID         uint64    // reservations.venue_id
	SeatID          uint64    // reservations.seat_id
	StartTime       time.Time // reservations.start_time
	EndTime         time.Time // reservations.end_time
	DurationMinutes int       // reservations.duration_minutes
	Status          string    // reservations.status
	CreatedAt       time.Time // reservations.created_at
}

// Live reports whether the reservation is the current claim on its seat at
// the given instant.
func (r *Reservation) Live(now time.Time) bool {
	return r.Status == ReservationStatusActive && r.EndTime.After(now)
}
