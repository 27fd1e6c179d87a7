package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/seatgrid/venue-reservation/internal/model"
	"github.com/seatgrid/venue-reservation/internal/queue"
	"github.com/seatgrid/venue-reservation/internal/repository"
)

// ErrInvalidDuration is returned when a requested reservation length is not
// one of the allowed values.
var ErrInvalidDuration = errors.New("duration must be 15, 30 or 45 minutes")

// Identity is the request-scoped caller identity, passed explicitly into
// every operation that needs authorization.
type Identity struct {
	UserID uint64
	Role   string
}

// Admin reports whether the identity carries the admin role.
func (i Identity) Admin() bool { return i.Role == model.RoleAdmin }

// ReservationStore is the persistence surface the service needs for the
// reservation lifecycle.  *repository.ReservationRepo satisfies it.
type ReservationStore interface {
	Claim(ctx context.Context, userID, venueID, seatID uint64, durationMinutes int, now time.Time) (*model.Reservation, error)
	Cancel(ctx context.Context, id uint64, now time.Time) (*model.Reservation, error)
	ExpireDue(ctx context.Context, now time.Time) ([]model.Reservation, error)
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ActiveByUser(ctx context.Context, userID uint64, now time.Time) ([]repository.ActiveReservation, error)
	ActiveByVenue(ctx context.Context, venueID uint64, now time.Time) ([]model.Reservation, error)
}

// SeatStore provides read access to a venue's seats.
type SeatStore interface {
	ByVenue(ctx context.Context, venueID uint64) ([]model.Seat, error)
}

// VenueStore provides the venue lookups the service needs.
type VenueStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
}

// EventPublisher publishes reservation lifecycle events.  May be nil when no
// broker is configured.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// ReservationService coordinates seat claims, cancellations and expiry.  It
// owns no state beyond its dependencies; the no-double-booking invariant is
// enforced by the store's atomic claim.
type ReservationService struct {
	reservations ReservationStore
	seats        SeatStore
	venues       VenueStore
	events       EventPublisher
	now          func() time.Time
}

// NewReservationService constructs the service.  events may be nil.
func NewReservationService(reservations ReservationStore, seats SeatStore, venues VenueStore, events EventPublisher) *ReservationService {
	if reservations == nil || seats == nil || venues == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{
		reservations: reservations,
		seats:        seats,
		venues:       venues,
		events:       events,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock.  Intended for tests.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

func validDuration(minutes int) bool {
	for _, d := range model.AllowedDurations {
		if minutes == d {
			return true
		}
	}
	return false
}

// Reserve claims a seat for the user for the given number of minutes.  The
// duration is restricted to the allowed values; the actual claim is a single
// atomic store operation, so concurrent attempts on the same seat cannot
// both succeed.
func (s *ReservationService) Reserve(ctx context.Context, userID, venueID, seatID uint64, durationMinutes int) (*model.Reservation, error) {
	if !validDuration(durationMinutes) {
		return nil, ErrInvalidDuration
	}
	res, err := s.reservations.Claim(ctx, userID, venueID, seatID, durationMinutes, s.now())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.EventReservationConfirmed, res)
	return res, nil
}

// Cancel cancels an active reservation.  Non-admin callers may only cancel
// their own reservations; a foreign or absent reservation is reported as
// ErrReservationNotFound rather than leaking its existence.
func (s *ReservationService) Cancel(ctx context.Context, ident Identity, id uint64) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ident.Admin() && res.UserID != ident.UserID {
		return nil, repository.ErrReservationNotFound
	}
	cancelled, err := s.reservations.Cancel(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.EventReservationCancelled, cancelled)
	return cancelled, nil
}

// ActiveForUser returns the caller's live reservations with venue and seat
// labels.
func (s *ReservationService) ActiveForUser(ctx context.Context, userID uint64) ([]repository.ActiveReservation, error) {
	return s.reservations.ActiveByUser(ctx, userID, s.now())
}

// SweepExpired expires every overdue active reservation and frees the
// affected seats.  Safe to invoke repeatedly and concurrently.  Returns the
// number of reservations expired.
func (s *ReservationService) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.reservations.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for i := range expired {
		s.publish(ctx, queue.EventReservationExpired, &expired[i])
	}
	return len(expired), nil
}

// SeatStatus is a seat overlaid with its live reservation state.
type SeatStatus struct {
	Seat          model.Seat
	Status        string // displayed status: "occupied" overrides the stored one while a live reservation exists
	IsReserved    bool
	ReservedUntil *time.Time
}

// VenueSeats returns the venue's seat grid with live reservation status and
// the server time the overlay was computed at.  Overdue reservations are
// swept first, so a grid read never shows a stale hold (lazy expiry).
func (s *ReservationService) VenueSeats(ctx context.Context, venueID uint64) ([]SeatStatus, time.Time, error) {
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return nil, time.Time{}, err
	}
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, time.Time{}, err
	}
	now := s.now()
	seats, err := s.seats.ByVenue(ctx, venueID)
	if err != nil {
		return nil, time.Time{}, err
	}
	active, err := s.reservations.ActiveByVenue(ctx, venueID, now)
	if err != nil {
		return nil, time.Time{}, err
	}
	return OverlaySeats(seats, active, now), now, nil
}

// OverlaySeats computes each seat's live status from the set of reservations
// that are active in the venue.  A seat with a live reservation is displayed
// as occupied regardless of its stored status; everything else keeps the
// stored status (so "disabled" stays disabled).
func OverlaySeats(seats []model.Seat, active []model.Reservation, now time.Time) []SeatStatus {
	bySeat := make(map[uint64]*model.Reservation, len(active))
	for i := range active {
		if active[i].Live(now) {
			bySeat[active[i].SeatID] = &active[i]
		}
	}
	out := make([]SeatStatus, 0, len(seats))
	for _, seat := range seats {
		st := SeatStatus{Seat: seat, Status: seat.Status}
		if res, ok := bySeat[seat.ID]; ok {
			st.Status = model.SeatStatusOccupied
			st.IsReserved = true
			until := res.EndTime
			st.ReservedUntil = &until
		}
		out = append(out, st)
	}
	return out
}

// publish sends a lifecycle event to the broker, if one is configured.
// Publishing is best-effort: a broker outage must not fail the request.
func (s *ReservationService) publish(ctx context.Context, eventType string, res *model.Reservation) {
	if s.events == nil {
		return
	}
	ev := queue.ReservationEvent{
		Type:            eventType,
		ReservationID:   res.ID,
		UserID:          res.UserID,
		VenueID:         res.VenueID,
		SeatID:          res.SeatID,
		StartTime:       res.StartTime.UTC().Format(time.RFC3339),
		EndTime:         res.EndTime.UTC().Format(time.RFC3339),
		DurationMinutes: res.DurationMinutes,
		OccurredAt:      s.now().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("reservation-events: publish %s failed: %v", eventType, err)
	}
}
