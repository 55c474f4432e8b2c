// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a permanent, verified (or verifiable) account record.
// The password and OTP fields are never serialized into responses.
type User struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName           string             `json:"firstName" bson:"firstName"`
	LastName            string             `json:"lastName" bson:"lastName"`
	Email               string             `json:"email" bson:"email"`
	Password            string             `json:"-" bson:"password"`
	PhoneNumber         string             `json:"phoneNumber" bson:"phoneNumber"`
	IsVerified          bool               `json:"isVerified" bson:"isVerified"`
	OTP                 string             `json:"-" bson:"otp,omitempty"`
	OTPExpires          time.Time          `json:"-" bson:"otpExpires,omitempty"`
	ResetPasswordToken  string             `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetTokenExpiresAt time.Time          `json:"-" bson:"resetTokenExpiresAt,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TempUser stages a registration until the OTP is verified. A TTL index on
// createdAt reaps stale records after 10 minutes; promotion and supersede
// delete them explicitly.
type TempUser struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName   string             `json:"firstName" bson:"firstName"`
	LastName    string             `json:"lastName" bson:"lastName"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"`
	PhoneNumber string             `json:"phoneNumber" bson:"phoneNumber"`
	OTP         string             `json:"-" bson:"otp"`
	OTPExpires  time.Time          `json:"-" bson:"otpExpires"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// PublicUser is the shape returned to clients after verification/login.
type PublicUser struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Public strips a User down to its client-visible fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID.Hex(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=50"`
	LastName    string `json:"lastName" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
}

// VerifyOTPRequest is the body of POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResendOTPRequest is the body of POST /api/auth/resend-otp.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountRequest is the body of PATCH /api/auth/update-account.
// Email changes are rejected outright; the raw body is inspected for the key.
type UpdateAccountRequest struct {
	FirstName       string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName        string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	PhoneNumber     string `json:"phoneNumber,omitempty" validate:"omitempty,max=20"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty" validate:"omitempty,min=8"`
}

// DeleteAccountRequest is the body of DELETE /api/auth/delete-account.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyPasswordOTPRequest is the body of POST /api/auth/verify-password-otp.
type VerifyPasswordOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest is the body of PATCH /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// Response is the standard JSON envelope.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
