package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatgrid/venue-reservation/internal/model"
	"github.com/seatgrid/venue-reservation/internal/queue"
	"github.com/seatgrid/venue-reservation/internal/repository"
)

// fakeStore is an in-memory stand-in for the MySQL repositories.  It mimics
// the repository contract: one live reservation per seat, conditional seat
// release, sentinel errors.
type fakeStore struct {
	mu           sync.Mutex
	nextID       uint64
	venues       map[uint64]*model.Venue
	seats        map[uint64]*model.Seat
	reservations map[uint64]*model.Reservation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		venues:       map[uint64]*model.Venue{},
		seats:        map[uint64]*model.Seat{},
		reservations: map[uint64]*model.Reservation{},
	}
}

func (f *fakeStore) addVenue(id uint64) *model.Venue {
	v := &model.Venue{ID: id, Name: "Venue", OpenTime: "09:00", CloseTime: "22:00", Category: model.CategoryTech}
	f.venues[id] = v
	return v
}

func (f *fakeStore) addSeat(id, venueID uint64, status string) *model.Seat {
	s := &model.Seat{ID: id, VenueID: venueID, RowLabel: "A", ColLabel: "1", SeatType: model.SeatTypeStandard, Status: status}
	f.seats[id] = s
	return s
}

func (f *fakeStore) Claim(_ context.Context, userID, venueID, seatID uint64, durationMinutes int, now time.Time) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatID]
	if !ok || seat.VenueID != venueID {
		return nil, repository.ErrSeatNotFound
	}
	if seat.Status != model.SeatStatusAvailable {
		return nil, repository.ErrSeatConflict
	}
	for _, r := range f.reservations {
		if r.SeatID == seatID && r.Live(now) {
			return nil, repository.ErrSeatConflict
		}
	}
	f.nextID++
	res := &model.Reservation{
		ID:              f.nextID,
		UserID:          userID,
		VenueID:         venueID,
		SeatID:          seatID,
		StartTime:       now,
		EndTime:         now.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes: durationMinutes,
		Status:          model.ReservationStatusActive,
	}
	f.reservations[res.ID] = res
	seat.Status = model.SeatStatusOccupied
	id := res.ID
	until := res.EndTime
	seat.ActiveReservationID = &id
	seat.ReservedUntil = &until
	return res, nil
}

func (f *fakeStore) Cancel(_ context.Context, id uint64, now time.Time) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.reservations[id]
	if !ok || res.Status != model.ReservationStatusActive {
		return nil, repository.ErrReservationNotFound
	}
	res.Status = model.ReservationStatusCancelled
	f.releaseSeatLocked(res)
	return res, nil
}

func (f *fakeStore) ExpireDue(_ context.Context, now time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, res := range f.reservations {
		if res.Status == model.ReservationStatusActive && !res.EndTime.After(now) {
			res.Status = model.ReservationStatusExpired
			f.releaseSeatLocked(res)
			out = append(out, *res)
		}
	}
	return out, nil
}

// releaseSeatLocked frees the seat only when it still points at this
// reservation, matching the conditional UPDATE in the SQL repository.
func (f *fakeStore) releaseSeatLocked(res *model.Reservation) {
	seat, ok := f.seats[res.SeatID]
	if !ok || seat.ActiveReservationID == nil || *seat.ActiveReservationID != res.ID {
		return
	}
	seat.Status = model.SeatStatusAvailable
	seat.ActiveReservationID = nil
	seat.ReservedUntil = nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeStore) ActiveByUser(_ context.Context, userID uint64, now time.Time) ([]repository.ActiveReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.ActiveReservation, 0)
	for _, r := range f.reservations {
		if r.UserID == userID && r.Live(now) {
			out = append(out, repository.ActiveReservation{
				ID: r.ID, VenueID: r.VenueID, SeatID: r.SeatID,
				StartTime: r.StartTime, EndTime: r.EndTime,
				DurationMinutes: r.DurationMinutes, Status: r.Status,
			})
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveByVenue(_ context.Context, venueID uint64, now time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.VenueID == venueID && r.Live(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ByVenue(_ context.Context, venueID uint64) ([]model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Seat
	for _, s := range f.seats {
		if s.VenueID == venueID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// fakeVenues adapts fakeStore to the VenueStore interface.
type fakeVenues struct{ s *fakeStore }

func (f fakeVenues) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v, ok := f.s.venues[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

// recordingPublisher captures published lifecycle events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func newTestService(t *testing.T) (*ReservationService, *fakeStore, *recordingPublisher, *time.Time) {
	t.Helper()
	store := newFakeStore()
	pub := &recordingPublisher{}
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := NewReservationService(store, store, fakeVenues{store}, pub).
		WithClock(func() time.Time { return now })
	return svc, store, pub, &now
}

func TestReserve(t *testing.T) {
	svc, store, pub, now := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), res.UserID)
	assert.Equal(t, model.ReservationStatusActive, res.Status)
	assert.Equal(t, now.Add(30*time.Minute), res.EndTime)

	seat := store.seats[10]
	assert.Equal(t, model.SeatStatusOccupied, seat.Status)
	require.NotNil(t, seat.ActiveReservationID)
	assert.Equal(t, res.ID, *seat.ActiveReservationID)
	assert.Equal(t, []string{queue.EventReservationConfirmed}, pub.types())
}

func TestReserveInvalidDuration(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	for _, minutes := range []int{0, -15, 10, 20, 60} {
		_, err := svc.Reserve(context.Background(), 7, 1, 10, minutes)
		assert.ErrorIs(t, err, ErrInvalidDuration, "duration %d", minutes)
	}
}

func TestReserveConflict(t *testing.T) {
	svc, store, pub, _ := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	_, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), 8, 1, 10, 15)
	assert.ErrorIs(t, err, repository.ErrSeatConflict)
	assert.Len(t, pub.types(), 1, "no event for a failed claim")
}

func TestReserveDisabledSeat(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusDisabled)

	_, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	assert.ErrorIs(t, err, repository.ErrSeatConflict)
}

func TestReserveSeatInOtherVenue(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.addVenue(1)
	store.addVenue(2)
	store.addSeat(10, 2, model.SeatStatusAvailable)

	_, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
}

func TestCancelOwn(t *testing.T) {
	svc, store, pub, _ := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), Identity{UserID: 7, Role: model.RoleUser}, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, cancelled.Status)

	seat := store.seats[10]
	assert.Equal(t, model.SeatStatusAvailable, seat.Status)
	assert.Nil(t, seat.ActiveReservationID)
	assert.Equal(t, []string{queue.EventReservationConfirmed, queue.EventReservationCancelled}, pub.types())
}

func TestCancelForeignReservation(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), Identity{UserID: 99, Role: model.RoleUser}, res.ID)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound, "foreign reservation must look absent")
	assert.Equal(t, model.SeatStatusOccupied, store.seats[10].Status)
}

func TestCancelAsAdmin(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), Identity{UserID: 1, Role: model.RoleAdmin}, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, model.SeatStatusAvailable, store.seats[10].Status)
}

func TestCancelTwice(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	ident := Identity{UserID: 7, Role: model.RoleUser}
	_, err = svc.Cancel(context.Background(), ident, res.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), ident, res.ID)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}

func TestSweepExpired(t *testing.T) {
	svc, store, pub, now := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	*now = now.Add(16 * time.Minute)

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.ReservationStatusExpired, store.reservations[res.ID].Status)
	assert.Equal(t, model.SeatStatusAvailable, store.seats[10].Status)
	assert.Equal(t, []string{queue.EventReservationConfirmed, queue.EventReservationExpired}, pub.types())

	// Idempotent: nothing left to expire.
	n, err = svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepLeavesResoldSeatAlone(t *testing.T) {
	svc, store, _, now := newTestService(t)
	store.addVenue(1)
	seat := store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	// Simulate the seat having been released and re-claimed out of band: the
	// seat pointer now belongs to a newer reservation.
	newerID := res.ID + 100
	seat.ActiveReservationID = &newerID

	*now = now.Add(16 * time.Minute)
	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The stale reservation expired but the seat, owned by someone else now,
	// was not freed.
	assert.Equal(t, model.SeatStatusOccupied, seat.Status)
	require.NotNil(t, seat.ActiveReservationID)
	assert.Equal(t, newerID, *seat.ActiveReservationID)
}

func TestVenueSeatsSweepsLazily(t *testing.T) {
	svc, store, _, now := newTestService(t)
	store.addVenue(1)
	store.addSeat(10, 1, model.SeatStatusAvailable)

	res, err := svc.Reserve(context.Background(), 7, 1, 10, 15)
	require.NoError(t, err)

	*now = now.Add(time.Hour)

	statuses, serverTime, err := svc.VenueSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, *now, serverTime)
	require.Len(t, statuses, 1)
	assert.Equal(t, model.SeatStatusAvailable, statuses[0].Status)
	assert.False(t, statuses[0].IsReserved)
	assert.Equal(t, model.ReservationStatusExpired, store.reservations[res.ID].Status)
}

func TestVenueSeatsUnknownVenue(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, _, err := svc.VenueSeats(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrVenueNotFound)
}

func TestOverlaySeats(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	seats := []model.Seat{
		{ID: 1, Status: model.SeatStatusAvailable},
		{ID: 2, Status: model.SeatStatusAvailable},
		{ID: 3, Status: model.SeatStatusDisabled},
	}
	active := []model.Reservation{
		{ID: 100, SeatID: 2, Status: model.ReservationStatusActive, EndTime: now.Add(10 * time.Minute)},
		// Already past its end: must not mark the seat.
		{ID: 101, SeatID: 1, Status: model.ReservationStatusActive, EndTime: now.Add(-time.Minute)},
	}

	out := OverlaySeats(seats, active, now)
	require.Len(t, out, 3)

	assert.Equal(t, model.SeatStatusAvailable, out[0].Status)
	assert.False(t, out[0].IsReserved)

	assert.Equal(t, model.SeatStatusOccupied, out[1].Status)
	assert.True(t, out[1].IsReserved)
	require.NotNil(t, out[1].ReservedUntil)
	assert.Equal(t, now.Add(10*time.Minute), *out[1].ReservedUntil)

	assert.Equal(t, model.SeatStatusDisabled, out[2].Status)
	assert.False(t, out[2].IsReserved)
}
