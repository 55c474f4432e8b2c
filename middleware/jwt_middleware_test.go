package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldclasstravels/wct_backend/models"
)

func setTestSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-secret-for-tests")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret-for-tests")
}

func TestGenerateAndParseUserToken(t *testing.T) {
	setTestSecrets(t)

	token, err := GenerateJWT("64a1f0d2e4b0c93f1a2b3c4d", "user@example.com")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64a1f0d2e4b0c93f1a2b3c4d", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Empty(t, claims.Role)
}

func TestGenerateAndParseAdminToken(t *testing.T) {
	setTestSecrets(t)

	token, err := GenerateAdminJWT("1", models.RoleSuperAdmin)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
	assert.Equal(t, models.RoleSuperAdmin, claims.Role)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	setTestSecrets(t)

	token, err := GenerateJWT("64a1f0d2e4b0c93f1a2b3c4d", "user@example.com")
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)

	_, err = ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestUserTokenIsNotAnAdminToken(t *testing.T) {
	setTestSecrets(t)

	admin := &models.AdminPrincipal{ID: "1", Email: "admin@example.com", Role: models.RoleSuperAdmin}

	token, err := GenerateJWT("1", "user@example.com")
	require.NoError(t, err)
	claims, err := ParseToken(token)
	require.NoError(t, err)

	// No role claim, so Protect takes the user branch, never the admin one
	assert.Empty(t, claims.Role)

	principal := &Principal{Admin: admin}
	assert.True(t, principal.IsAdmin())
	assert.False(t, (&Principal{User: &models.User{}}).IsAdmin())
	assert.False(t, (&Principal{}).IsAdmin())
}

func TestProtectAdminTokenWithoutDatabase(t *testing.T) {
	setTestSecrets(t)

	admin := &models.AdminPrincipal{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: models.RoleSuperAdmin}
	token, err := GenerateAdminJWT(admin.ID, admin.Role)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// A nil client proves the admin path does zero database work
	handler := Protect(nil, admin)(func(c echo.Context) error {
		principal := GetPrincipal(c)
		require.NotNil(t, principal)
		require.NotNil(t, principal.Admin)
		assert.Equal(t, admin.Email, principal.Admin.Email)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectAdminTokenViaXAuthTokenHeader(t *testing.T) {
	setTestSecrets(t)

	admin := &models.AdminPrincipal{ID: "1", Email: "admin@example.com", Role: models.RoleSuperAdmin}
	token, err := GenerateAdminJWT(admin.ID, admin.Role)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("x-auth-token", token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Protect(nil, admin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectRejectsMissingToken(t *testing.T) {
	setTestSecrets(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Protect(nil, nil)(func(c echo.Context) error {
		t.Fatal("handler should not run")
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectRejectsAdminClaimForUnknownAdmin(t *testing.T) {
	setTestSecrets(t)

	admin := &models.AdminPrincipal{ID: "1", Email: "admin@example.com", Role: models.RoleSuperAdmin}
	token, err := GenerateAdminJWT("2", models.RoleAdmin)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Protect(nil, admin)(func(c echo.Context) error {
		t.Fatal("handler should not run")
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()

	t.Run("no principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := RequireAdmin()(func(c echo.Context) error {
			t.Fatal("handler should not run")
			return nil
		})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("user principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(principalContextKey, &Principal{User: &models.User{}})

		handler := RequireAdmin()(func(c echo.Context) error {
			t.Fatal("handler should not run")
			return nil
		})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(principalContextKey, &Principal{Admin: &models.AdminPrincipal{ID: "1", Role: models.RoleSuperAdmin}})

		handler := RequireAdmin()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
