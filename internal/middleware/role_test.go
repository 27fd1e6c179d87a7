package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithRole(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, RequireRole(allowed...)(next)(c))
	return rec
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, runWithRole(t, "admin", "admin").Code)
	assert.Equal(t, http.StatusOK, runWithRole(t, "user", "user", "admin").Code)
	assert.Equal(t, http.StatusUnauthorized, runWithRole(t, "user", "admin").Code)
	assert.Equal(t, http.StatusUnauthorized, runWithRole(t, nil, "admin").Code)
	assert.Equal(t, http.StatusUnauthorized, runWithRole(t, 42, "admin").Code, "non-string role is rejected")
}
