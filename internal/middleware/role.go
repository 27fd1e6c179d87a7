package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole aborts the request unless the role stored in the context by
// JWTAuth is one of the allowed roles. An insufficient role is reported as
// 401, the same as a missing identity.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Admin access required"})
			}
			return next(c)
		}
	}
}
