package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/model"
	"github.com/seatgrid/venue-reservation/internal/repository"
	"github.com/seatgrid/venue-reservation/internal/service"
)

// ReservationHandler serves the authenticated reservation endpoints.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	VenueID         uint64 `json:"venueId"`
	SeatID          uint64 `json:"seatId"`
	DurationMinutes int    `json:"durationMinutes"`
}

type reservationResp struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"userId"`
	VenueID         uint64    `json:"venueId"`
	SeatID          uint64    `json:"seatId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
}

func reservationRespOf(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:              r.ID,
		UserID:          r.UserID,
		VenueID:         r.VenueID,
		SeatID:          r.SeatID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		Status:          r.Status,
	}
}

// Create claims a seat for the caller. A seat already held by a live
// reservation, or disabled by an admin, yields 409.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
	}

	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.VenueID == 0 || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "venueId and seatId are required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Reserve(ctx, uid, req.VenueID, req.SeatID, req.DurationMinutes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDuration):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Duration must be 15, 30 or 45 minutes"})
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Seat not found"})
		case errors.Is(err, repository.ErrSeatConflict):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Seat is not available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create reservation"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": reservationRespOf(res)})
}

// ListActive returns the caller's live reservations with venue and seat
// labels for display.
func (h *ReservationHandler) ListActive(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Svc.ActiveForUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": items})
}

// Cancel cancels one of the caller's active reservations and frees the seat.
// A reservation that does not exist, is not active, or belongs to someone
// else is reported as not found.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid reservation id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Cancel(ctx, ident, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not cancel reservation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": reservationRespOf(res)})
}
