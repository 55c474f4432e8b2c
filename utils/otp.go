// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

// OTPValidity is how long a one-time code stays usable.
const OTPValidity = 10 * time.Minute

// GenerateOTP returns a uniformly random 6-digit code (leading zeros allowed)
// and its expiry timestamp.
func GenerateOTP() (string, time.Time, error) {
	const digits = "0123456789"
	result := make([]byte, 6)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", time.Time{}, err
		}
		result[i] = digits[num.Int64()]
	}
	return string(result), time.Now().Add(OTPValidity), nil
}

// HashOTP hashes a code for storage. Codes are kept hashed at rest in both the
// registration and password-reset flows.
func HashOTP(otp string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyOTP checks a submitted code against the stored hash and expiry.
// Mismatch and expiry collapse into one failure; callers report a generic
// "invalid or expired" outcome.
func VerifyOTP(storedHash string, storedExpiry time.Time, submitted string, now time.Time) bool {
	if storedHash == "" || !now.Before(storedExpiry) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(submitted)) == nil
}

// ValidateOTPAttempts throttles verification attempts per email address.
// A nil client disables throttling.
func ValidateOTPAttempts(email string, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}

	key := "otp_attempts:" + email
	attempts, err := rdb.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		rdb.Expire(context.Background(), key, 1*time.Hour)
	}

	// Limit to 5 attempts per hour
	if attempts > 5 {
		return errors.New("too many OTP attempts")
	}

	return nil
}

// ClearOTPAttempts resets the attempt counter after a successful verification.
func ClearOTPAttempts(email string, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	rdb.Del(context.Background(), "otp_attempts:"+email)
}

// GenerateResetToken returns a random opaque token for the password-reset
// flow and the sha256 hex digest stored in its place.
func GenerateResetToken() (token string, digest string, err error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", "", err
	}
	token = base64.URLEncoding.EncodeToString(b)
	return token, HashResetToken(token), nil
}

// HashResetToken digests a reset token for storage or lookup.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
