package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldclasstravels/wct_backend/models"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func testAdmin() *models.AdminPrincipal {
	return &models.AdminPrincipal{
		ID:       "1",
		Name:     "Admin User",
		Email:    "admin@worldclasstravels.com",
		Password: "super-secret",
		Role:     models.RoleSuperAdmin,
	}
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAdminLoginSuccess(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-secret-for-tests")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret-for-tests")

	e := newTestEcho()
	adc := NewAdminController(testAdmin())

	c, rec := postJSON(e, "/api/admin/login",
		`{"email":"admin@worldclasstravels.com","password":"super-secret"}`)
	require.NoError(t, adc.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AdminResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)

	adminData, ok := resp.Admin.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "admin@worldclasstravels.com", adminData["email"])
	assert.Equal(t, models.RoleSuperAdmin, adminData["role"])
}

func TestAdminLoginCaseInsensitiveEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-secret-for-tests")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret-for-tests")

	e := newTestEcho()
	adc := NewAdminController(testAdmin())

	c, rec := postJSON(e, "/api/admin/login",
		`{"email":"Admin@WorldClassTravels.com","password":"super-secret"}`)
	require.NoError(t, adc.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEcho()
	adc := NewAdminController(testAdmin())

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"email":"admin@worldclasstravels.com","password":"nope"}`},
		{name: "wrong email", body: `{"email":"intruder@example.com","password":"super-secret"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := postJSON(e, "/api/admin/login", tt.body)
			require.NoError(t, adc.Login(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var resp models.AdminResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Empty(t, resp.Token)
		})
	}
}

func TestAdminLoginRejectsMissingFields(t *testing.T) {
	e := newTestEcho()
	adc := NewAdminController(testAdmin())

	c, rec := postJSON(e, "/api/admin/login", `{"email":"admin@worldclasstravels.com"}`)
	require.NoError(t, adc.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminLogout(t *testing.T) {
	e := newTestEcho()
	adc := NewAdminController(testAdmin())

	c, rec := postJSON(e, "/api/admin/logout", ``)
	require.NoError(t, adc.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
