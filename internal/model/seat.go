package model

import "time"

// Seat types persisted in seats.seat_type.
const (
	SeatTypeStandard   = "standard"
	SeatTypePremium    = "premium"
	SeatTypeAccessible = "accessible"
)

// Stored seat statuses.  "occupied" is written by the claim transaction;
// "disabled" is an admin-controlled maintenance state.  Whether a seat is
// currently booked is derived from the existence of a live reservation, not
// from this field alone.
const (
	SeatStatusAvailable = "available"
	SeatStatusOccupied  = "occupied"
	SeatStatusDisabled  = "disabled"
)

// Seat describes a bookable unit inside a venue.  Seats are uniquely
// identified by their venue, row label and column label.  The
// ActiveReservationID/ReservedUntil pair is a denormalized pointer to the
// seat's current active reservation; every write path (claim, cancel,
// expire) must keep it consistent with the reservations table.
//
// Fields:
//  ID                  – primary key identifier.
//  VenueID             – venue to which this seat belongs.
//  RowLabel            – row designation (e.g. "A").
//  ColLabel            – column designation within the row (e.g. "3").
//  SeatType            – standard, premium or accessible.
//  Status              – available, occupied or disabled.
//  ActiveReservationID – cached id of the current active reservation.
//  ReservedUntil       – cached expiry instant of that reservation.
//  X, Y                – optional grid coordinates for rendering.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Seat struct {
	ID                  uint64     // seats.id
	VenueID             uint64     // seats.venue_id
	RowLabel            string     // seats.row_label
	ColLabel            string     // seats.col_label
	SeatType            string     // seats.seat_type
	Status              string     // seats.status
	ActiveReservationID *uint64    // seats.active_reservation_id (nullable)
	ReservedUntil       *time.Time // seats.reserved_until (nullable)
	X                   *int32     // seats.x (nullable)
	Y                   *int32     // seats.y (nullable)
	CreatedAt           time.Time  // seats.created_at
	UpdatedAt           time.Time  // seats.updated_at
}
