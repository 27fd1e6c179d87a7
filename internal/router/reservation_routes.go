package router

import (
	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/handler"
	"github.com/seatgrid/venue-reservation/internal/middleware"
	"github.com/seatgrid/venue-reservation/internal/model"
)

// RegisterReservations registers the reservation endpoints. All routes
// require a valid access token; both roles may reserve.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/api/reservations",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	g.POST("", h.Create)
	g.GET("/me/active", h.ListActive)
	g.POST("/:id/cancel", h.Cancel)
}
