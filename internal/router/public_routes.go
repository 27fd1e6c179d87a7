package router

import (
	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints. The cache
// middleware is optional; pass nil to serve uncached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{}
	if cache != nil {
		mw = append(mw, cache)
	}
	g := e.Group("/api/venues", mw...)
	g.GET("", p.ListVenues)
	g.GET("/:id", p.GetVenue)
	g.GET("/:id/seats", p.VenueSeats)
}
