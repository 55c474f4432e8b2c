package models

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserJSONOmitsSecrets(t *testing.T) {
	user := User{
		ID:                 primitive.NewObjectID(),
		FirstName:          "Jane",
		Email:              "jane@example.com",
		Password:           "bcrypt-hash",
		OTP:                "otp-hash",
		ResetPasswordToken: "token-digest",
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.NotContains(t, decoded, "password")
	assert.NotContains(t, decoded, "otp")
	assert.NotContains(t, decoded, "resetPasswordToken")
	assert.Equal(t, "jane@example.com", decoded["email"])
}

// Formatted phone numbers must survive struct validation; normalization to
// bare digits happens afterwards in the handler.
func TestRegisterRequestAcceptsFormattedPhone(t *testing.T) {
	v := validator.New()

	req := RegisterRequest{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Password:    "longenough",
		PhoneNumber: "(555) 123-4567",
	}
	assert.NoError(t, v.Struct(req))

	update := UpdateAccountRequest{PhoneNumber: "555-123-4567"}
	assert.NoError(t, v.Struct(update))

	// Unbounded garbage still fails
	req.PhoneNumber = "(555) 123-4567 extension 99887"
	assert.Error(t, v.Struct(req))
}

func TestUserPublic(t *testing.T) {
	id := primitive.NewObjectID()
	user := User{
		ID:          id,
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		PhoneNumber: "5551234567",
		Password:    "secret-hash",
	}

	pub := user.Public()
	assert.Equal(t, id.Hex(), pub.ID)
	assert.Equal(t, "Jane", pub.FirstName)
	assert.Equal(t, "Doe", pub.LastName)
	assert.Equal(t, "jane@example.com", pub.Email)
	assert.Equal(t, "5551234567", pub.PhoneNumber)
}
