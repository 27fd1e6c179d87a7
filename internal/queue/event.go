// Package queue defines reservation lifecycle events exchanged over the
// message broker, a publisher for emitting them and a background consumer
// that appends them to an audit log.
package queue

// Event types carried in ReservationEvent.Type.
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationExpired   = "reservation.expired"
)

// reservationQueueName is the durable queue all lifecycle events go to.
const reservationQueueName = "reservation.events"

// ReservationEvent is published whenever a reservation changes state.  It
// carries enough information for downstream consumers to log, notify or feed
// analytics without querying the primary database.
type ReservationEvent struct {
	Type            string `json:"type"`
	ReservationID   uint64 `json:"reservationId"`
	UserID          uint64 `json:"userId"`
	VenueID         uint64 `json:"venueId"`
	SeatID          uint64 `json:"seatId"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	OccurredAt      string `json:"occurredAt"`
}
