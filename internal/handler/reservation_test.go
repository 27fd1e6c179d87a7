package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatgrid/venue-reservation/internal/model"
	"github.com/seatgrid/venue-reservation/internal/repository"
	"github.com/seatgrid/venue-reservation/internal/service"
)

// stubStores back the handler tests with canned behavior per method.
type stubReservations struct {
	claim  func(userID, venueID, seatID uint64, minutes int) (*model.Reservation, error)
	get    func(id uint64) (*model.Reservation, error)
	cancel func(id uint64) (*model.Reservation, error)
}

func (s stubReservations) Claim(_ context.Context, userID, venueID, seatID uint64, minutes int, _ time.Time) (*model.Reservation, error) {
	return s.claim(userID, venueID, seatID, minutes)
}
func (s stubReservations) Cancel(_ context.Context, id uint64, _ time.Time) (*model.Reservation, error) {
	return s.cancel(id)
}
func (s stubReservations) ExpireDue(_ context.Context, _ time.Time) ([]model.Reservation, error) {
	return nil, nil
}
func (s stubReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	return s.get(id)
}
func (s stubReservations) ActiveByUser(_ context.Context, _ uint64, _ time.Time) ([]repository.ActiveReservation, error) {
	return nil, nil
}
func (s stubReservations) ActiveByVenue(_ context.Context, _ uint64, _ time.Time) ([]model.Reservation, error) {
	return nil, nil
}

type stubSeats struct{}

func (stubSeats) ByVenue(_ context.Context, _ uint64) ([]model.Seat, error) { return nil, nil }

type stubVenues struct{}

func (stubVenues) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	return &model.Venue{ID: id}, nil
}

func newCreateRequest(t *testing.T, body string, userID interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
		c.Set("role", model.RoleUser)
	}
	return c, rec
}

func handlerWith(stores stubReservations) *ReservationHandler {
	svc := service.NewReservationService(stores, stubSeats{}, stubVenues{}, nil)
	return NewReservationHandler(svc)
}

func TestCreateReservationCreated(t *testing.T) {
	h := handlerWith(stubReservations{
		claim: func(userID, venueID, seatID uint64, minutes int) (*model.Reservation, error) {
			assert.Equal(t, uint64(7), userID)
			assert.Equal(t, uint64(1), venueID)
			assert.Equal(t, uint64(10), seatID)
			assert.Equal(t, 30, minutes)
			return &model.Reservation{
				ID: 5, UserID: userID, VenueID: venueID, SeatID: seatID,
				DurationMinutes: minutes, Status: model.ReservationStatusActive,
			}, nil
		},
	})
	// JWT numeric claims land in context as float64.
	c, rec := newCreateRequest(t, `{"venueId":1,"seatId":10,"durationMinutes":30}`, float64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Reservation reservationResp `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(5), body.Reservation.ID)
	assert.Equal(t, model.ReservationStatusActive, body.Reservation.Status)
}

func TestCreateReservationInvalidDuration(t *testing.T) {
	h := handlerWith(stubReservations{
		claim: func(_, _, _ uint64, _ int) (*model.Reservation, error) {
			t.Fatal("claim must not be reached for an invalid duration")
			return nil, nil
		},
	})
	c, rec := newCreateRequest(t, `{"venueId":1,"seatId":10,"durationMinutes":20}`, float64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservationConflict(t *testing.T) {
	h := handlerWith(stubReservations{
		claim: func(_, _, _ uint64, _ int) (*model.Reservation, error) {
			return nil, repository.ErrSeatConflict
		},
	})
	c, rec := newCreateRequest(t, `{"venueId":1,"seatId":10,"durationMinutes":15}`, float64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateReservationSeatNotFound(t *testing.T) {
	h := handlerWith(stubReservations{
		claim: func(_, _, _ uint64, _ int) (*model.Reservation, error) {
			return nil, repository.ErrSeatNotFound
		},
	})
	c, rec := newCreateRequest(t, `{"venueId":1,"seatId":99,"durationMinutes":15}`, float64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReservationUnauthenticated(t *testing.T) {
	h := handlerWith(stubReservations{})
	c, rec := newCreateRequest(t, `{"venueId":1,"seatId":10,"durationMinutes":15}`, nil)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancelReservationNotFound(t *testing.T) {
	h := handlerWith(stubReservations{
		get: func(_ uint64) (*model.Reservation, error) {
			return nil, repository.ErrReservationNotFound
		},
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/reservations/:id")
	c.SetParamNames("id")
	c.SetParamValues("12")
	c.Set("user_id", float64(7))
	c.Set("role", model.RoleUser)

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelReservationOwned(t *testing.T) {
	h := handlerWith(stubReservations{
		get: func(id uint64) (*model.Reservation, error) {
			return &model.Reservation{ID: id, UserID: 7, Status: model.ReservationStatusActive}, nil
		},
		cancel: func(id uint64) (*model.Reservation, error) {
			return &model.Reservation{ID: id, UserID: 7, Status: model.ReservationStatusCancelled}, nil
		},
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/reservations/:id")
	c.SetParamNames("id")
	c.SetParamValues("12")
	c.Set("user_id", float64(7))
	c.Set("role", model.RoleUser)

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reservation reservationResp `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.ReservationStatusCancelled, body.Reservation.Status)
}
