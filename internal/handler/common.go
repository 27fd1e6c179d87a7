package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/model"
	"github.com/seatgrid/venue-reservation/internal/service"
)

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID extracts the user_id set by the JWT middleware and converts it
// to uint64. JWT numeric claims arrive as float64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// callerIdentity builds the service-layer identity from the claims the JWT
// middleware stored in context.
func callerIdentity(c echo.Context) (service.Identity, error) {
	uid, err := getUserID(c)
	if err != nil {
		return service.Identity{}, err
	}
	role, _ := c.Get("role").(string)
	if role == "" {
		role = model.RoleUser
	}
	return service.Identity{UserID: uid, Role: role}, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
