package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
)

func TestParseBookingDate(t *testing.T) {
	t.Run("ISO timestamp", func(t *testing.T) {
		got, err := parseBookingDate("2026-09-15T10:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC), got)
	})

	t.Run("calendar date", func(t *testing.T) {
		got, err := parseBookingDate("2026-09-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseBookingDate("15/09/2026")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseBookingDate("")
		assert.Error(t, err)
	})
}

func bookingBody(userID, tripType, departureDate, returnDate string) string {
	body := fmt.Sprintf(`{
		"userID": %q,
		"userFirstName": "Jane",
		"userLastName": "Doe",
		"userPhoneNumber": "5551234567",
		"userEmail": "jane@example.com",
		"tripType": %q,
		"departureLocation": "New York",
		"arrivalLocation": "London",
		"departureDate": %q,
		"cabinType": "economy",
		"passengers": 2`, userID, tripType, departureDate)
	if returnDate != "" {
		body += fmt.Sprintf(`, "returnDate": %q`, returnDate)
	}
	return body + "}"
}

// The return-date rules run before any persistence, so a nil client proves
// the rejected requests never touch the database.
func TestCreateTicketReturnDateRules(t *testing.T) {
	e := newTestEcho()
	tc := NewTicketController(nil, nil, nil)

	userID := primitive.NewObjectID()

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "round trip without return date",
			body:    bookingBody(userID.Hex(), models.TripRoundTrip, "2026-10-01", ""),
			message: "return date is required",
		},
		{
			name:    "one-way with return date",
			body:    bookingBody(userID.Hex(), models.TripOneWay, "2026-10-01", "2026-10-08"),
			message: "only valid for round-trip",
		},
		{
			name:    "return date before departure",
			body:    bookingBody(userID.Hex(), models.TripRoundTrip, "2026-10-08", "2026-10-01"),
			message: "must be after the departure date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := postJSON(e, "/api/tickets", tt.body)
			c.Set("principal", &middleware.Principal{User: &models.User{ID: userID}})

			require.NoError(t, tc.CreateTicket(c))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp models.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Message, tt.message)
		})
	}
}

func TestCreateTicketRejectsForeignUserID(t *testing.T) {
	e := newTestEcho()
	tc := NewTicketController(nil, nil, nil)

	c, rec := postJSON(e, "/api/tickets",
		bookingBody(primitive.NewObjectID().Hex(), models.TripOneWay, "2026-10-01", ""))
	c.Set("principal", &middleware.Principal{User: &models.User{ID: primitive.NewObjectID()}})

	require.NoError(t, tc.CreateTicket(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
