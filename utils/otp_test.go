package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	otp, expires, err := GenerateOTP()
	require.NoError(t, err)
	assert.Len(t, otp, 6)
	assert.Regexp(t, `^\d{6}$`, otp)
	assert.WithinDuration(t, time.Now().Add(OTPValidity), expires, 2*time.Second)
}

func TestVerifyOTP(t *testing.T) {
	otp, expires, err := GenerateOTP()
	require.NoError(t, err)
	hash, err := HashOTP(otp)
	require.NoError(t, err)

	now := time.Now()

	t.Run("matching code within validity", func(t *testing.T) {
		assert.True(t, VerifyOTP(hash, expires, otp, now))
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if otp == wrong {
			wrong = "111111"
		}
		assert.False(t, VerifyOTP(hash, expires, wrong, now))
	})

	t.Run("matching code after expiry", func(t *testing.T) {
		assert.False(t, VerifyOTP(hash, expires, otp, expires.Add(time.Second)))
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		assert.False(t, VerifyOTP(hash, expires, otp, expires))
	})

	t.Run("empty stored hash", func(t *testing.T) {
		assert.False(t, VerifyOTP("", expires, otp, now))
	})
}

func TestGenerateResetToken(t *testing.T) {
	token, digest, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, HashResetToken(token))

	token2, digest2, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
	assert.NotEqual(t, digest, digest2)
}
