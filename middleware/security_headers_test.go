package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cspFor(t *testing.T, config SecurityConfig) string {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SecurityHeadersWithConfig(config)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	return rec.Header().Get("Content-Security-Policy")
}

func TestBuildCSPScriptSources(t *testing.T) {
	tests := []struct {
		name      string
		config    SecurityConfig
		scriptSrc string
	}{
		{"locked down", SecurityConfig{}, "script-src 'self'"},
		{"inline scripts allowed", SecurityConfig{AllowInlineJS: true}, "script-src 'self' 'unsafe-inline'"},
		{"eval allowed", SecurityConfig{AllowEval: true}, "script-src 'self' 'unsafe-eval'"},
		{"both allowed", SecurityConfig{AllowInlineJS: true, AllowEval: true}, "script-src 'self' 'unsafe-inline' 'unsafe-eval'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csp := cspFor(t, tt.config)

			var got string
			for _, directive := range strings.Split(csp, "; ") {
				if strings.HasPrefix(directive, "script-src") {
					got = directive
				}
			}
			assert.Equal(t, tt.scriptSrc, got)
		})
	}

	t.Run("connect-src lists allowed domains", func(t *testing.T) {
		csp := cspFor(t, SecurityConfig{AllowedDomains: []string{"https://api.example.com"}})
		assert.Contains(t, csp, "connect-src 'self' https://api.example.com")
	})
}

func TestSecurityHeadersSet(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SecurityHeadersWithConfig(SecurityConfig{})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
