package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/model"
	"github.com/seatgrid/venue-reservation/internal/repository"
)

type createSeatReq struct {
	RowLabel string `json:"rowLabel"`
	ColLabel string `json:"colLabel"`
	SeatType string `json:"seatType"`
	X        *int32 `json:"x"`
	Y        *int32 `json:"y"`
}

type createSeatGridReq struct {
	Rows        int    `json:"rows"`
	SeatsPerRow int    `json:"seatsPerRow"`
	SeatType    string `json:"seatType"`
}

type updateSeatReq struct {
	RowLabel *string `json:"rowLabel"`
	ColLabel *string `json:"colLabel"`
	SeatType *string `json:"seatType"`
	Status   *string `json:"status"`
	X        *int32  `json:"x"`
	Y        *int32  `json:"y"`
}

func validSeatType(t string) bool {
	switch t {
	case model.SeatTypeStandard, model.SeatTypePremium, model.SeatTypeAccessible:
		return true
	}
	return false
}

// validAdminSeatStatus covers the statuses an admin may set directly.
// "occupied" is owned by the claim path and cannot be assigned by hand.
func validAdminSeatStatus(s string) bool {
	return s == model.SeatStatusAvailable || s == model.SeatStatusDisabled
}

// storedSeatResp renders a seat with its stored status and no live overlay.
// Admin writes happen inside a transaction-free path where the overlay would
// be stale anyway; clients re-read the grid for live state.
func storedSeatResp(s *model.Seat) seatResp {
	return seatResp{
		ID:            s.ID,
		VenueID:       s.VenueID,
		RowLabel:      s.RowLabel,
		ColLabel:      s.ColLabel,
		SeatType:      s.SeatType,
		Status:        s.Status,
		ReservedUntil: s.ReservedUntil,
		IsReserved:    s.ActiveReservationID != nil,
		X:             s.X,
		Y:             s.Y,
	}
}

// rowLabelOf converts a zero-based row index to an alphabetical label:
// 0 -> A, 25 -> Z, 26 -> AA.
func rowLabelOf(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}

// CreateSeat adds one seat to a venue. The (row, col) pair must be unique
// within the venue.
func (h *AdminHandler) CreateSeat(c echo.Context) error {
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid venue id"})
	}
	var req createSeatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	req.RowLabel = strings.TrimSpace(req.RowLabel)
	req.ColLabel = strings.TrimSpace(req.ColLabel)
	if req.RowLabel == "" || req.ColLabel == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rowLabel and colLabel are required"})
	}
	if req.SeatType == "" {
		req.SeatType = model.SeatTypeStandard
	}
	if !validSeatType(req.SeatType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "seatType must be standard, premium or accessible"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load venue"})
	}

	seat := &model.Seat{
		VenueID:  venueID,
		RowLabel: req.RowLabel,
		ColLabel: req.ColLabel,
		SeatType: req.SeatType,
		Status:   model.SeatStatusAvailable,
		X:        req.X,
		Y:        req.Y,
	}
	if err := h.Seats.Create(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrSeatExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Seat already exists at that position"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create seat"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"seat": storedSeatResp(seat)})
}

// CreateSeatGrid bulk-creates a rectangular grid of seats: rows A, B, C...
// with columns 1..seatsPerRow. Fails as a whole if any position collides
// with an existing seat.
func (h *AdminHandler) CreateSeatGrid(c echo.Context) error {
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid venue id"})
	}
	var req createSeatGridReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.Rows < 1 || req.SeatsPerRow < 1 || req.Rows*req.SeatsPerRow > 2000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rows and seatsPerRow must be positive and the grid at most 2000 seats"})
	}
	if req.SeatType == "" {
		req.SeatType = model.SeatTypeStandard
	}
	if !validSeatType(req.SeatType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "seatType must be standard, premium or accessible"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load venue"})
	}

	seats := make([]model.Seat, 0, req.Rows*req.SeatsPerRow)
	for r := 0; r < req.Rows; r++ {
		for col := 1; col <= req.SeatsPerRow; col++ {
			x := int32(col - 1)
			y := int32(r)
			seats = append(seats, model.Seat{
				VenueID:  venueID,
				RowLabel: rowLabelOf(r),
				ColLabel: strconv.Itoa(col),
				SeatType: req.SeatType,
				Status:   model.SeatStatusAvailable,
				X:        &x,
				Y:        &y,
			})
		}
	}
	if err := h.Seats.CreateBulk(ctx, seats); err != nil {
		if errors.Is(err, repository.ErrSeatExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Seat already exists at that position"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create seats"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": len(seats)})
}

// UpdateSeat applies a partial update to a seat. Admins can relabel a seat,
// change its type, or toggle it between available and disabled.
func (h *AdminHandler) UpdateSeat(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid seat id"})
	}
	var req updateSeatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.SeatType != nil && !validSeatType(*req.SeatType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "seatType must be standard, premium or accessible"})
	}
	if req.Status != nil && !validAdminSeatStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "status must be available or disabled"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	seat, err := h.Seats.Update(ctx, id, repository.SeatUpdate{
		RowLabel: req.RowLabel,
		ColLabel: req.ColLabel,
		SeatType: req.SeatType,
		Status:   req.Status,
		X:        req.X,
		Y:        req.Y,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Seat not found"})
		case errors.Is(err, repository.ErrSeatExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Seat already exists at that position"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update seat"})
	}
	return c.JSON(http.StatusOK, echo.Map{"seat": storedSeatResp(seat)})
}
