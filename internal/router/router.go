// Package router wires HTTP routes to handlers and per-group middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/handler"
)

// RegisterRoutes registers routes that carry no authentication. Currently
// only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", handler.Health)
}
