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

// PublicHandler serves the read-only venue browsing endpoints.
type PublicHandler struct {
	Venues *repository.VenueRepo
	Svc    *service.ReservationService
}

func NewPublicHandler(venues *repository.VenueRepo, svc *service.ReservationService) *PublicHandler {
	if venues == nil || svc == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Venues: venues, Svc: svc}
}

// venueResp is the wire shape of a venue. OccupiedSeats and IsOpen are
// computed per request, never stored.
type venueResp struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Description   *string `json:"description"`
	Capacity      uint32  `json:"capacity"`
	OpenTime      string  `json:"openTime"`
	CloseTime     string  `json:"closeTime"`
	ImageURL      *string `json:"imageUrl"`
	Category      string  `json:"category"`
	OccupiedSeats uint32  `json:"occupiedSeats"`
	IsOpen        bool    `json:"isOpen"`
}

func venueRespOf(v *model.Venue, now time.Time) venueResp {
	return venueResp{
		ID:            v.ID,
		Name:          v.Name,
		Location:      v.Location,
		Description:   v.Description,
		Capacity:      v.Capacity,
		OpenTime:      v.OpenTime,
		CloseTime:     v.CloseTime,
		ImageURL:      v.ImageURL,
		Category:      v.Category,
		OccupiedSeats: v.OccupiedSeats,
		IsOpen:        service.Open(v.OpenTime, v.CloseTime, now),
	}
}

// seatResp is the wire shape of a seat with its live reservation overlay.
type seatResp struct {
	ID            uint64     `json:"id"`
	VenueID       uint64     `json:"venueId"`
	RowLabel      string     `json:"rowLabel"`
	ColLabel      string     `json:"colLabel"`
	SeatType      string     `json:"seatType"`
	Status        string     `json:"status"`
	IsReserved    bool       `json:"isReserved"`
	ReservedUntil *time.Time `json:"reservedUntil"`
	X             *int32     `json:"x"`
	Y             *int32     `json:"y"`
}

func seatRespOf(st service.SeatStatus) seatResp {
	return seatResp{
		ID:            st.Seat.ID,
		VenueID:       st.Seat.VenueID,
		RowLabel:      st.Seat.RowLabel,
		ColLabel:      st.Seat.ColLabel,
		SeatType:      st.Seat.SeatType,
		Status:        st.Status,
		IsReserved:    st.IsReserved,
		ReservedUntil: st.ReservedUntil,
		X:             st.Seat.X,
		Y:             st.Seat.Y,
	}
}

// ListVenues returns all venues with their current occupancy and open state.
func (h *PublicHandler) ListVenues(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	now := time.Now().UTC()
	venues, err := h.Venues.ListWithOccupancy(ctx, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load venues"})
	}
	out := make([]venueResp, 0, len(venues))
	for i := range venues {
		out = append(out, venueRespOf(&venues[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": out})
}

// GetVenue returns a single venue by id.
func (h *PublicHandler) GetVenue(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid venue id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load venue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"venue": venueRespOf(v, time.Now().UTC())})
}

// VenueSeats returns the venue's seat grid overlaid with live reservation
// state, plus the server time the overlay was computed at so clients can
// render countdowns without trusting their local clock.
func (h *PublicHandler) VenueSeats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid venue id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	statuses, serverTime, err := h.Svc.VenueSeats(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load seats"})
	}
	seats := make([]seatResp, 0, len(statuses))
	for _, st := range statuses {
		seats = append(seats, seatRespOf(st))
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats, "serverTime": serverTime})
}
