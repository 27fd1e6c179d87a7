package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/config"
	"github.com/seatgrid/venue-reservation/internal/model"
	"github.com/seatgrid/venue-reservation/internal/repository"
	"github.com/seatgrid/venue-reservation/internal/service"
)

// AdminHandler bundles dependencies for the admin management endpoints.
type AdminHandler struct {
	Venues         *repository.VenueRepo
	Seats          *repository.SeatRepo
	Reservations   *repository.ReservationRepo
	Svc            *service.ReservationService
	UploadDir      string
	MaxUploadBytes int64
}

func NewAdminHandler(cfg config.Config, venues *repository.VenueRepo, seats *repository.SeatRepo, reservations *repository.ReservationRepo, svc *service.ReservationService) *AdminHandler {
	if venues == nil || seats == nil || reservations == nil || svc == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Venues:         venues,
		Seats:          seats,
		Reservations:   reservations,
		Svc:            svc,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
}

type createVenueReq struct {
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Description *string `json:"description"`
	Capacity    uint32  `json:"capacity"`
	OpenTime    string  `json:"openTime"`
	CloseTime   string  `json:"closeTime"`
	Category    string  `json:"category"`
}

type updateVenueReq struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Capacity    *uint32 `json:"capacity"`
	OpenTime    *string `json:"openTime"`
	CloseTime   *string `json:"closeTime"`
	Category    *string `json:"category"`
}

func validCategory(c string) bool {
	switch c {
	case model.CategoryTech, model.CategoryCafe, model.CategoryRestaurant:
		return true
	}
	return false
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// CreateVenue creates a venue. Open/close times default to 09:00-22:00 and
// the category to tech when omitted.
func (h *AdminHandler) CreateVenue(c echo.Context) error {
	var req createVenueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name and location are required"})
	}
	if req.OpenTime == "" {
		req.OpenTime = "09:00"
	}
	if req.CloseTime == "" {
		req.CloseTime = "22:00"
	}
	if !validClock(req.OpenTime) || !validClock(req.CloseTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "openTime and closeTime must be HH:MM"})
	}
	if req.Category == "" {
		req.Category = model.CategoryTech
	}
	if !validCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Category must be tech, cafe or restaurant"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v := &model.Venue{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Capacity:    req.Capacity,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
		Category:    req.Category,
	}
	if err := h.Venues.Create(ctx, v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create venue"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"venue": venueRespOf(v, time.Now().UTC())})
}

// UpdateVenue applies a partial update. Only the fields present in the body
// are changed.
func (h *AdminHandler) UpdateVenue(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid venue id"})
	}
	var req updateVenueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name cannot be empty"})
	}
	if req.OpenTime != nil && !validClock(*req.OpenTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "openTime must be HH:MM"})
	}
	if req.CloseTime != nil && !validClock(*req.CloseTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "closeTime must be HH:MM"})
	}
	if req.Category != nil && !validCategory(*req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Category must be tech, cafe or restaurant"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Venues.Update(ctx, id, repository.VenueUpdate{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Capacity:    req.Capacity,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update venue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"venue": venueRespOf(v, time.Now().UTC())})
}
