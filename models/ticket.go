// models/ticket.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trip types accepted on booking requests.
const (
	TripOneWay    = "one-way"
	TripRoundTrip = "round-trip"
	TripMultiCity = "multi-city"
)

// Cabin classes accepted on booking requests.
const (
	CabinEconomy        = "economy"
	CabinPremiumEconomy = "premium economy"
	CabinBusiness       = "business"
	CabinFirstClass     = "first class"
)

// Ticket statuses. Transitions are admin-only.
const (
	TicketPending    = "pending"
	TicketProcessing = "processing"
	TicketConfirmed  = "confirmed"
	TicketCancelled  = "cancelled"
)

// ValidTripType reports whether t is one of the accepted trip types.
func ValidTripType(t string) bool {
	return t == TripOneWay || t == TripRoundTrip || t == TripMultiCity
}

// ValidCabinType reports whether c is one of the accepted cabin classes.
func ValidCabinType(c string) bool {
	return c == CabinEconomy || c == CabinPremiumEconomy || c == CabinBusiness || c == CabinFirstClass
}

// ValidTicketStatus reports whether s is one of the accepted statuses.
func ValidTicketStatus(s string) bool {
	return s == TicketPending || s == TicketProcessing || s == TicketConfirmed || s == TicketCancelled
}

// Ticket is a flight booking request. Contact fields are denormalized from the
// owning user at submission time so later profile edits don't rewrite history.
type Ticket struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID            primitive.ObjectID `json:"userID" bson:"userId"`
	UserFirstName     string             `json:"userFirstName" bson:"userFirstName"`
	UserLastName      string             `json:"userLastName" bson:"userLastName"`
	UserPhoneNumber   string             `json:"userPhoneNumber" bson:"userPhoneNumber"`
	UserEmail         string             `json:"userEmail" bson:"userEmail"`
	TripType          string             `json:"tripType" bson:"tripType"`
	DepartureLocation string             `json:"departureLocation" bson:"departureLocation"`
	ArrivalLocation   string             `json:"arrivalLocation" bson:"arrivalLocation"`
	DepartureDate     time.Time          `json:"departureDate" bson:"departureDate"`
	ReturnDate        *time.Time         `json:"returnDate,omitempty" bson:"returnDate,omitempty"`
	CabinType         string             `json:"cabinType" bson:"cabinType"`
	Passengers        int                `json:"passengers" bson:"passengers"`
	Status            string             `json:"status" bson:"status"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TicketRequest is the body of POST /api/tickets. Dates arrive as ISO 8601
// strings; the handler parses them and enforces the round-trip rule.
type TicketRequest struct {
	UserID            string `json:"userID" validate:"required"`
	UserFirstName     string `json:"userFirstName" validate:"required,max=50"`
	UserLastName      string `json:"userLastName" validate:"required,max=50"`
	UserPhoneNumber   string `json:"userPhoneNumber" validate:"required,min=10,max=15,numeric"`
	UserEmail         string `json:"userEmail" validate:"required,email"`
	TripType          string `json:"tripType" validate:"required"`
	DepartureLocation string `json:"departureLocation" validate:"required"`
	ArrivalLocation   string `json:"arrivalLocation" validate:"required"`
	DepartureDate     string `json:"departureDate" validate:"required"`
	ReturnDate        string `json:"returnDate,omitempty"`
	CabinType         string `json:"cabinType" validate:"required"`
	Passengers        int    `json:"passengers" validate:"required,min=1,max=10"`
}

// TicketStatusRequest is the body of PUT /api/tickets/:id.
type TicketStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
