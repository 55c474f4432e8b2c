// controllers/auth_controller.go
package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/worldclasstravels/wct_backend/config"
	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
	"github.com/worldclasstravels/wct_backend/utils"
)

// AuthController handles registration, verification and session logic
type AuthController struct {
	DB     *mongo.Client
	Mailer *utils.Mailer
	Redis  *redis.Client
	logger *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, mailer *utils.Mailer, rdb *redis.Client) *AuthController {
	return &AuthController{
		DB:     db,
		Mailer: mailer,
		Redis:  rdb,
		logger: log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// Register stages a new account and mails a verification code. A repeated
// registration for the same email supersedes the previous staging record; the
// swap happens inside one transaction so no window exists with zero or two
// pending records.
func (ac *AuthController) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Please provide valid firstName, lastName, email, password (min 8 characters) and a 10-digit phone number",
		})
	}

	email, err := utils.NormalizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}
	phone, err := utils.SanitizePhone(req.PhoneNumber)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone number must be 10 digits",
		})
	}

	// A verified account owns the address for good
	count, err := config.GetCollection(ac.DB, "users").CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		ac.logger.Printf("Failed to check existing user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email already registered. Please log in instead.",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		ac.logger.Printf("Failed to hash password: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}

	otp, otpExpires, err := utils.GenerateOTP()
	if err != nil {
		ac.logger.Printf("Failed to generate OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}
	otpHash, err := utils.HashOTP(otp)
	if err != nil {
		ac.logger.Printf("Failed to hash OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}

	tempUser := models.TempUser{
		FirstName:   utils.SanitizeInput(req.FirstName),
		LastName:    utils.SanitizeInput(req.LastName),
		Email:       email,
		Password:    hashedPassword,
		PhoneNumber: phone,
		OTP:         otpHash,
		OTPExpires:  otpExpires,
		CreatedAt:   time.Now(),
	}

	session, err := ac.DB.StartSession()
	if err != nil {
		ac.logger.Printf("Failed to start session: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}
	defer session.EndSession(ctx)

	tempColl := config.GetCollection(ac.DB, "tempusers")
	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := tempColl.DeleteMany(sc, bson.M{"email": email}); err != nil {
			return nil, err
		}
		return tempColl.InsertOne(sc, tempUser)
	})
	if err != nil {
		ac.logger.Printf("Registration transaction failed for %s: %v", utils.MaskEmail(email), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}
	insertResult := result.(*mongo.InsertOneResult)

	// The mail goes out only after the staging record is durable. A delivery
	// failure does not undo the registration; resend-otp recovers it.
	if err := ac.Mailer.SendVerificationOTP(email, tempUser.FirstName, otp); err != nil {
		ac.logger.Printf("Failed to send verification email to %s: %v", utils.MaskEmail(email), err)
	}

	tempUserID, _ := insertResult.InsertedID.(primitive.ObjectID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     http.StatusOK,
		"message":    "Registration initiated. Please check your email for the verification code.",
		"tempUserId": tempUserID.Hex(),
	})
}

// VerifyOTP promotes a staged registration to a verified account. The delete
// of the staging record and the insert of the user commit together.
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.VerifyOTPRequest
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
			Message: "Invalid email format",
		})
	}

	if err := utils.ValidateOTPAttempts(email, ac.Redis); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many verification attempts. Please try again later.",
		})
	}

	tempColl := config.GetCollection(ac.DB, "tempusers")
	userColl := config.GetCollection(ac.DB, "users")

	var tempUser models.TempUser
	err = tempColl.FindOne(ctx, bson.M{"email": email}).Decode(&tempUser)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish a finished verification from a stale or bogus code
			count, countErr := userColl.CountDocuments(ctx, bson.M{"email": email})
			if countErr == nil && count > 0 {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Email already verified. Please log in.",
				})
			}
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid or expired OTP",
			})
		}
		ac.logger.Printf("Failed to look up staging record: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify OTP",
		})
	}

	if !utils.VerifyOTP(tempUser.OTP, tempUser.OTPExpires, req.OTP, time.Now()) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or expired OTP",
		})
	}

	now := time.Now()
	user := models.User{
		FirstName:   tempUser.FirstName,
		LastName:    tempUser.LastName,
		Email:       tempUser.Email,
		Password:    tempUser.Password,
		PhoneNumber: tempUser.PhoneNumber,
		IsVerified:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	session, err := ac.DB.StartSession()
	if err != nil {
		ac.logger.Printf("Failed to start session: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify OTP",
		})
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		delResult, err := tempColl.DeleteOne(sc, bson.M{"_id": tempUser.ID})
		if err != nil {
			return nil, err
		}
		if delResult.DeletedCount == 0 {
			// Lost a race with a concurrent verification; abort cleanly
			return nil, mongo.ErrNoDocuments
		}
		return userColl.InsertOne(sc, user)
	})
	if err != nil {
		if err == mongo.ErrNoDocuments || mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Email already verified. Please log in.",
			})
		}
		ac.logger.Printf("Verification transaction failed for %s: %v", utils.MaskEmail(email), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify OTP",
		})
	}

	utils.ClearOTPAttempts(email, ac.Redis)

	insertResult := result.(*mongo.InsertOneResult)
	user.ID = insertResult.InsertedID.(primitive.ObjectID)

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email)
	if err != nil {
		ac.logger.Printf("Failed to generate token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Account verified but failed to create session. Please log in.",
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":  http.StatusCreated,
		"message": "Email verified successfully",
		"token":   token,
		"user":    user.Public(),
	})
}

// ResendOTP issues a fresh code for a still-pending registration.
func (ac *AuthController) ResendOTP(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.ResendOTPRequest
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
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	userColl := config.GetCollection(ac.DB, "users")
	count, err := userColl.CountDocuments(ctx, bson.M{"email": email})
	if err == nil && count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email already verified. Please log in.",
		})
	}

	tempColl := config.GetCollection(ac.DB, "tempusers")
	var tempUser models.TempUser
	err = tempColl.FindOne(ctx, bson.M{"email": email}).Decode(&tempUser)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No pending registration found for this email. Please register first.",
			})
		}
		ac.logger.Printf("Failed to look up staging record: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to resend OTP",
		})
	}

	otp, otpExpires, err := utils.GenerateOTP()
	if err != nil {
		ac.logger.Printf("Failed to generate OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to resend OTP",
		})
	}
	otpHash, err := utils.HashOTP(otp)
	if err != nil {
		ac.logger.Printf("Failed to hash OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to resend OTP",
		})
	}

	_, err = tempColl.UpdateOne(ctx, bson.M{"_id": tempUser.ID}, bson.M{
		"$set": bson.M{
			"otp":        otpHash,
			"otpExpires": otpExpires,
		},
	})
	if err != nil {
		ac.logger.Printf("Failed to refresh OTP for %s: %v", utils.MaskEmail(email), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to resend OTP",
		})
	}

	if err := ac.Mailer.SendVerificationOTP(email, tempUser.FirstName, otp); err != nil {
		ac.logger.Printf("Failed to resend verification email to %s: %v", utils.MaskEmail(email), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send verification email. Please try again.",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "A new verification code has been sent to your email.",
	})
}

// Login authenticates a verified user and mints a session token.
func (ac *AuthController) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	email, err := utils.NormalizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	var user models.User
	err = config.GetCollection(ac.DB, "users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid credentials",
			})
		}
		ac.logger.Printf("Login lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to log in",
		})
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if !user.IsVerified {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please verify your email before logging in.",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email)
	if err != nil {
		ac.logger.Printf("Failed to generate token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to log in",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Login successful",
		"token":   token,
		"data": map[string]interface{}{
			"user": user.Public(),
		},
	})
}

// ValidateToken reports whether the presented token is still usable. The SPA
// calls this on boot to decide between the app shell and the login screen.
func (ac *AuthController) ValidateToken(c echo.Context) error {
	tokenString := c.Request().Header.Get(echo.HeaderAuthorization)
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		tokenString = c.Request().Header.Get("x-auth-token")
	}
	if tokenString == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "No token provided",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data: map[string]interface{}{
			"valid":  true,
			"userId": claims.UserID,
		},
	})
}

// UpdateAccount edits profile fields of the authenticated user. Email changes
// are refused outright since the address anchors verification.
func (ac *AuthController) UpdateAccount(c echo.Context) error {
	ctx := c.Request().Context()

	principal := middleware.GetPrincipal(c)
	if principal == nil || principal.User == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "You are not logged in. Please log in to get access.",
		})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if _, hasEmail := raw["email"]; hasEmail {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email cannot be changed",
		})
	}

	var req models.UpdateAccountRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid field values",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.FirstName != "" {
		update["firstName"] = utils.SanitizeInput(req.FirstName)
	}
	if req.LastName != "" {
		update["lastName"] = utils.SanitizeInput(req.LastName)
	}
	if req.PhoneNumber != "" {
		phone, err := utils.SanitizePhone(req.PhoneNumber)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Phone number must be 10 digits",
			})
		}
		update["phoneNumber"] = phone
	}

	userColl := config.GetCollection(ac.DB, "users")

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Current password is required to set a new password",
			})
		}

		// The principal carries no hash; fetch it for the comparison
		var stored models.User
		if err := userColl.FindOne(ctx, bson.M{"_id": principal.User.ID}).Decode(&stored); err != nil {
			ac.logger.Printf("Failed to load user for password change: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update account",
			})
		}
		if err := utils.CheckPassword(stored.Password, req.CurrentPassword); err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Current password is incorrect",
			})
		}

		newHash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			ac.logger.Printf("Failed to hash password: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update account",
			})
		}
		update["password"] = newHash
	}

	var updated models.User
	err = userColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": principal.User.ID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		ac.logger.Printf("Failed to update account: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update account",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Account updated successfully",
		Data:    map[string]interface{}{"user": updated.Public()},
	})
}

// DeleteAccount removes the authenticated user after a password confirmation.
func (ac *AuthController) DeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()

	principal := middleware.GetPrincipal(c)
	if principal == nil || principal.User == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "You are not logged in. Please log in to get access.",
		})
	}

	var req models.DeleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Password confirmation is required",
		})
	}

	userColl := config.GetCollection(ac.DB, "users")

	var stored models.User
	if err := userColl.FindOne(ctx, bson.M{"_id": principal.User.ID}).Decode(&stored); err != nil {
		ac.logger.Printf("Failed to load user for deletion: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete account",
		})
	}
	if err := utils.CheckPassword(stored.Password, req.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Incorrect password",
		})
	}

	if _, err := userColl.DeleteOne(ctx, bson.M{"_id": principal.User.ID}); err != nil {
		ac.logger.Printf("Failed to delete account: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete account",
		})
	}

	return c.NoContent(http.StatusNoContent)
}
