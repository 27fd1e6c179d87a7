package router

import (
	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/handler"
	"github.com/seatgrid/venue-reservation/internal/middleware"
)

// RegisterAuth registers the session endpoints. Register, login and refresh
// are open; logout and the profile endpoint require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/api/auth", middleware.JWTAuth(jwtSecret))
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
}
