// controllers/ticket_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/worldclasstravels/wct_backend/config"
	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
	"github.com/worldclasstravels/wct_backend/utils"
	ws "github.com/worldclasstravels/wct_backend/websocket"
)

var errBookingUserMissing = errors.New("booking user no longer exists")

// TicketController manages flight booking requests
type TicketController struct {
	DB     *mongo.Client
	Mailer *utils.Mailer
	Hub    *ws.Hub
	logger *log.Logger
}

// NewTicketController creates a new ticket controller
func NewTicketController(db *mongo.Client, mailer *utils.Mailer, hub *ws.Hub) *TicketController {
	return &TicketController{
		DB:     db,
		Mailer: mailer,
		Hub:    hub,
		logger: log.New(os.Stdout, "[TICKET] ", log.LstdFlags),
	}
}

// parseBookingDate accepts the date shapes the SPA sends: full ISO timestamps
// or bare calendar dates.
func parseBookingDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// CreateTicket validates and stores a booking request. Validation runs in
// full before anything is persisted; the user-existence check shares the
// insert's transaction so a concurrently deleted account cannot end up owning
// a fresh booking.
func (tc *TicketController) CreateTicket(c echo.Context) error {
	ctx := c.Request().Context()

	principal := middleware.GetPrincipal(c)
	if principal == nil || principal.User == nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only registered users can submit booking requests",
		})
	}

	var req models.TicketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing or invalid booking fields",
		})
	}

	if req.UserID != principal.User.ID.Hex() {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You can only create bookings for your own account",
		})
	}

	if !models.ValidTripType(req.TripType) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Trip type must be one-way, round-trip or multi-city",
		})
	}
	if !models.ValidCabinType(req.CabinType) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cabin type must be economy, premium economy, business or first class",
		})
	}

	departureDate, err := parseBookingDate(req.DepartureDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid departure date",
		})
	}

	// Return date and round trips imply each other
	var returnDate *time.Time
	switch {
	case req.TripType == models.TripRoundTrip && req.ReturnDate == "":
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A return date is required for round-trip bookings",
		})
	case req.TripType != models.TripRoundTrip && req.ReturnDate != "":
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A return date is only valid for round-trip bookings",
		})
	case req.ReturnDate != "":
		parsed, err := parseBookingDate(req.ReturnDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid return date",
			})
		}
		if !parsed.After(departureDate) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Return date must be after the departure date",
			})
		}
		returnDate = &parsed
	}

	email, err := utils.NormalizeEmail(req.UserEmail)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid contact email",
		})
	}

	now := time.Now()
	ticket := models.Ticket{
		UserID:            principal.User.ID,
		UserFirstName:     utils.SanitizeInput(req.UserFirstName),
		UserLastName:      utils.SanitizeInput(req.UserLastName),
		UserPhoneNumber:   req.UserPhoneNumber,
		UserEmail:         email,
		TripType:          req.TripType,
		DepartureLocation: utils.SanitizeInput(req.DepartureLocation),
		ArrivalLocation:   utils.SanitizeInput(req.ArrivalLocation),
		DepartureDate:     departureDate,
		ReturnDate:        returnDate,
		CabinType:         req.CabinType,
		Passengers:        req.Passengers,
		Status:            models.TicketPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	session, err := tc.DB.StartSession()
	if err != nil {
		tc.logger.Printf("Failed to start session: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create booking request",
		})
	}
	defer session.EndSession(ctx)

	userColl := config.GetCollection(tc.DB, "users")
	ticketColl := config.GetCollection(tc.DB, "tickets")

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := userColl.CountDocuments(sc, bson.M{"_id": ticket.UserID})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, errBookingUserMissing
		}
		return ticketColl.InsertOne(sc, ticket)
	})
	if err != nil {
		if err == errBookingUserMissing {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User account not found",
			})
		}
		tc.logger.Printf("Booking transaction failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create booking request",
		})
	}
	ticket.ID = result.(*mongo.InsertOneResult).InsertedID.(primitive.ObjectID)

	// The confirmation mail is a courtesy; the booking stands even if it
	// never arrives
	go func(t models.Ticket) {
		if err := tc.Mailer.SendTicketConfirmation(&t); err != nil {
			tc.logger.Printf("Failed to send confirmation email for booking %s: %v", t.ID.Hex(), err)
		}
	}(ticket)

	if tc.Hub != nil {
		tc.Hub.NotifyTicketCreated(ticket)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Booking request created successfully. A confirmation email is on its way.",
		"ticket":  ticket,
	})
}

// GetAllTickets lists every booking request, newest first. Admin only.
func (tc *TicketController) GetAllTickets(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := config.GetCollection(tc.DB, "tickets").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		tc.logger.Printf("Failed to list tickets: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch booking requests",
		})
	}
	defer cursor.Close(ctx)

	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		tc.logger.Printf("Failed to decode tickets: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch booking requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking requests fetched successfully",
		Data:    tickets,
	})
}

// GetTicketsByUser lists one user's bookings. Users see only their own;
// admins see anyone's.
func (tc *TicketController) GetTicketsByUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	principal := middleware.GetPrincipal(c)
	if principal == nil || (!principal.IsAdmin() && (principal.User == nil || principal.User.ID != userID)) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Not authorized to view these booking requests",
		})
	}

	cursor, err := config.GetCollection(tc.DB, "tickets").Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		tc.logger.Printf("Failed to list tickets for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch booking requests",
		})
	}
	defer cursor.Close(ctx)

	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		tc.logger.Printf("Failed to decode tickets: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch booking requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking requests fetched successfully",
		Data:    tickets,
	})
}

// GetTicketByID fetches a single booking, owner or admin only.
func (tc *TicketController) GetTicketByID(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	var ticket models.Ticket
	err = config.GetCollection(tc.DB, "tickets").FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Booking request not found",
			})
		}
		tc.logger.Printf("Failed to fetch ticket: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch booking request",
		})
	}

	principal := middleware.GetPrincipal(c)
	if principal == nil || (!principal.IsAdmin() && (principal.User == nil || principal.User.ID != ticket.UserID)) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Not authorized to view this booking request",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking request fetched successfully",
		Data:    ticket,
	})
}

// UpdateTicketStatus moves a booking through its lifecycle. Admin only.
func (tc *TicketController) UpdateTicketStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	var req models.TicketStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil || !models.ValidTicketStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be pending, processing, confirmed or cancelled",
		})
	}

	var updated models.Ticket
	err = config.GetCollection(tc.DB, "tickets").FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Booking request not found",
			})
		}
		tc.logger.Printf("Failed to update ticket status: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update booking status",
		})
	}

	if tc.Hub != nil {
		tc.Hub.NotifyTicketStatus(updated)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking status updated successfully",
		Data:    updated,
	})
}
