package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/repository"
)

// ListVenueReservations returns every reservation for a venue in any state,
// joined with the reserving user, newest first.
func (h *AdminHandler) ListVenueReservations(c echo.Context) error {
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid venue id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load venue"})
	}

	items, err := h.Reservations.ListByVenue(ctx, venueID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": items})
}

// CancelReservation force-cancels any user's active reservation and frees
// the seat. Reached only through the admin route group, so the caller's
// role is already verified.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
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
