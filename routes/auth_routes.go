package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worldclasstravels/wct_backend/controllers"
	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
)

// RegisterAuthRoutes sets up registration, session and password-reset routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, admin *models.AdminPrincipal, authController *controllers.AuthController, passwordController *controllers.PasswordController) {
	// Public authentication routes
	e.POST("/api/auth/register", authController.Register)
	e.POST("/api/auth/verify-otp", authController.VerifyOTP)
	e.POST("/api/auth/resend-otp", authController.ResendOTP)
	e.POST("/api/auth/login", authController.Login)
	e.GET("/api/auth/validate-token", authController.ValidateToken)

	// Public password-reset routes
	e.POST("/api/auth/forgot-password", passwordController.ForgotPassword)
	e.POST("/api/auth/verify-password-otp", passwordController.VerifyPasswordOTP)
	e.PATCH("/api/auth/reset-password", passwordController.ResetPassword)

	// Routes requiring a valid session
	protected := e.Group("/api/auth", middleware.Protect(db, admin))
	protected.PATCH("/update-account", authController.UpdateAccount)
	protected.DELETE("/delete-account", authController.DeleteAccount)
}
