// controllers/admin_controller.go
package controllers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
)

// AdminController authenticates the configured admin identity. No admin data
// lives in the database; every check runs against the in-memory principal.
type AdminController struct {
	Admin  *models.AdminPrincipal
	logger *log.Logger
}

// NewAdminController creates a new admin controller
func NewAdminController(admin *models.AdminPrincipal) *AdminController {
	return &AdminController{
		Admin:  admin,
		logger: log.New(os.Stdout, "[ADMIN] ", log.LstdFlags),
	}
}

// Login checks the submitted credentials against the configured pair and
// mints an admin token. A mismatch touches no other system.
func (adc *AdminController) Login(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.AdminResponse{
			Success: false,
			Message: "Email and password are required",
		})
	}

	emailMatch := strings.EqualFold(req.Email, adc.Admin.Email)
	passwordMatch := subtle.ConstantTimeCompare([]byte(req.Password), []byte(adc.Admin.Password)) == 1
	if !emailMatch || !passwordMatch {
		adc.logger.Printf("Failed admin login attempt from %s", c.RealIP())
		return c.JSON(http.StatusUnauthorized, models.AdminResponse{
			Success: false,
			Message: "Invalid credentials",
		})
	}

	token, err := middleware.GenerateAdminJWT(adc.Admin.ID, adc.Admin.Role)
	if err != nil {
		adc.logger.Printf("Failed to generate admin token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.AdminResponse{
			Success: false,
			Message: "Failed to log in",
		})
	}

	return c.JSON(http.StatusOK, models.AdminResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		Admin: map[string]interface{}{
			"id":    adc.Admin.ID,
			"name":  adc.Admin.Name,
			"email": adc.Admin.Email,
			"role":  adc.Admin.Role,
		},
	})
}

// Me returns the admin profile for the dashboard session check.
func (adc *AdminController) Me(c echo.Context) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil || principal.Admin == nil {
		return c.JSON(http.StatusNotFound, models.AdminResponse{
			Success: false,
			Message: "Admin not found",
		})
	}

	return c.JSON(http.StatusOK, models.AdminResponse{
		Success: true,
		Admin: map[string]interface{}{
			"id":    principal.Admin.ID,
			"name":  principal.Admin.Name,
			"email": principal.Admin.Email,
			"role":  principal.Admin.Role,
		},
	})
}

// Logout acknowledges a dashboard logout. Tokens are stateless; the client
// discards its copy.
func (adc *AdminController) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, models.AdminResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}
