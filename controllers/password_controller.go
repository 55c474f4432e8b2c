// controllers/password_controller.go
package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worldclasstravels/wct_backend/models"
	"github.com/worldclasstravels/wct_backend/repositories"
	"github.com/worldclasstravels/wct_backend/utils"
)

const resetTokenValidity = 1 * time.Hour

// PasswordController handles the forgot/verify/reset password flow
type PasswordController struct {
	users  *repositories.UserRepository
	Mailer *utils.Mailer
	Redis  *redis.Client
	logger *log.Logger
}

// NewPasswordController creates a new password controller
func NewPasswordController(db *mongo.Client, mailer *utils.Mailer, rdb *redis.Client) *PasswordController {
	return &PasswordController{
		users:  repositories.NewUserRepository(db),
		Mailer: mailer,
		Redis:  rdb,
		logger: log.New(os.Stdout, "[PASSWORD] ", log.LstdFlags),
	}
}

// genericResetMessage is returned for every forgot-password request so the
// endpoint cannot be used to probe which addresses have accounts.
const genericResetMessage = "If an account with that email exists, a password reset code has been sent."

// ForgotPassword stores a hashed reset code on the account and mails it.
func (pc *PasswordController) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email is required",
		})
	}

	email, err := utils.NormalizeEmail(req.Email)
	if err != nil {
		// Same generic answer; a malformed address has no account either
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: genericResetMessage,
		})
	}

	user, err := pc.users.FindByEmail(ctx, email)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			pc.logger.Printf("Forgot-password lookup failed: %v", err)
		}
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: genericResetMessage,
		})
	}

	otp, otpExpires, err := utils.GenerateOTP()
	if err != nil {
		pc.logger.Printf("Failed to generate reset OTP: %v", err)
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: genericResetMessage,
		})
	}
	otpHash, err := utils.HashOTP(otp)
	if err != nil {
		pc.logger.Printf("Failed to hash reset OTP: %v", err)
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: genericResetMessage,
		})
	}

	if err := pc.users.SetPasswordResetOTP(ctx, email, otpHash, otpExpires); err != nil {
		pc.logger.Printf("Failed to store reset OTP for %s: %v", utils.MaskEmail(email), err)
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: genericResetMessage,
		})
	}

	if err := pc.Mailer.SendPasswordResetOTP(email, user.FirstName, otp); err != nil {
		pc.logger.Printf("Failed to send reset email to %s: %v", utils.MaskEmail(email), err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: genericResetMessage,
	})
}

// VerifyPasswordOTP exchanges a valid reset code for an opaque reset token.
// Only the token's digest is stored.
func (pc *PasswordController) VerifyPasswordOTP(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.VerifyPasswordOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and a 6-digit OTP are required",
		})
	}

	email, err := utils.NormalizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or expired OTP",
		})
	}

	if err := utils.ValidateOTPAttempts(email, pc.Redis); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many verification attempts. Please try again later.",
		})
	}

	user, err := pc.users.FindByEmail(ctx, email)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			pc.logger.Printf("OTP verification lookup failed: %v", err)
		}
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or expired OTP",
		})
	}

	if !utils.VerifyOTP(user.OTP, user.OTPExpires, req.OTP, time.Now()) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or expired OTP",
		})
	}

	token, digest, err := utils.GenerateResetToken()
	if err != nil {
		pc.logger.Printf("Failed to generate reset token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify OTP",
		})
	}

	if err := pc.users.SetResetToken(ctx, email, digest, time.Now().Add(resetTokenValidity)); err != nil {
		pc.logger.Printf("Failed to store reset token for %s: %v", utils.MaskEmail(email), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify OTP",
		})
	}

	utils.ClearOTPAttempts(email, pc.Redis)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "OTP verified. Use the reset token to set a new password.",
		"resetToken": token,
	})
}

// ResetPassword sets a new password for the holder of a valid reset token.
func (pc *PasswordController) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Token and a password of at least 8 characters are required",
		})
	}

	user, err := pc.users.FindByResetToken(ctx, utils.HashResetToken(req.Token))
	if err != nil {
		if err != mongo.ErrNoDocuments {
			pc.logger.Printf("Reset token lookup failed: %v", err)
		}
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or expired reset token",
		})
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		pc.logger.Printf("Failed to hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reset password",
		})
	}

	if err := pc.users.ResetPassword(ctx, user.ID, passwordHash); err != nil {
		pc.logger.Printf("Failed to reset password for %s: %v", utils.MaskEmail(user.Email), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reset password",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password reset successfully. Please log in with your new password.",
	})
}
