package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRequest(t *testing.T, e *echo.Echo, rl *RateLimiter, path string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	handler := rl.RateLimit()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec.Code
}

// The login budget must apply no matter which endpoint an IP touches first.
func TestRateLimiterEndpointBudgetIsPerPath(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter()

	// Seed the IP's default bucket with a generous-budget request first
	assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, rl, "/api/tickets"))

	// Login still gets its own strict bucket: burst of 5, then rejection
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, rl, "/api/auth/login"))
	}
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(t, e, rl, "/api/auth/login"))

	// Exhausting the login budget blocks the IP everywhere
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(t, e, rl, "/api/tickets"))
}

func TestRateLimiterDefaultBudgetUnaffectedByStrictEndpoints(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter()

	// A few login attempts within budget must not eat into the default bucket
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, rl, "/api/auth/login"))
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, rl, "/api/tickets"))
	}
}

func TestRateLimiterSkipsUploads(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter()

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedRequest(t, e, rl, "/uploads/visas/photo.jpg"))
	}
}
