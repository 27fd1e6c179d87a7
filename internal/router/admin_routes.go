package router

import (
	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/handler"
	"github.com/seatgrid/venue-reservation/internal/middleware"
	"github.com/seatgrid/venue-reservation/internal/model"
)

// RegisterAdmin registers the venue and seat management endpoints. Every
// route requires the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/venues", h.CreateVenue)
	g.PUT("/venues/:id", h.UpdateVenue)
	g.POST("/venues/:id/upload-image", h.UploadVenueImage)
	g.POST("/venues/:id/seats", h.CreateSeat)
	g.POST("/venues/:id/seats/grid", h.CreateSeatGrid)
	g.PUT("/seats/:id", h.UpdateSeat)
	g.GET("/venues/:id/reservations", h.ListVenueReservations)
	g.POST("/reservations/:id/cancel", h.CancelReservation)
}
