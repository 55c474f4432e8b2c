// models/admin.go
package models

import (
	"errors"
	"os"
)

// Admin roles carried in token claims.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// AdminPrincipal is the single configured admin identity. It is never stored
// in the database; credentials come from the environment at startup.
type AdminPrincipal struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

// LoadAdminPrincipal builds the configured admin from ADMIN_EMAIL and
// ADMIN_PASSWORD. Both must be set.
func LoadAdminPrincipal() (*AdminPrincipal, error) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD environment variables are required")
	}
	return &AdminPrincipal{
		ID:       "1",
		Name:     "Admin User",
		Email:    email,
		Password: password,
		Role:     RoleSuperAdmin,
	}, nil
}

// AdminLoginRequest is the body of POST /api/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminResponse is the admin-flavored JSON envelope kept for the dashboard.
type AdminResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	Admin   interface{} `json:"admin,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
