package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user identifier from the context,
// or "anon" for unauthenticated requests. Used by the rate limiter to build
// per-user bucket keys.
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	}
	return "anon"
}
