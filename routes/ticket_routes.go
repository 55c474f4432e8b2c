package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worldclasstravels/wct_backend/controllers"
	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
)

// RegisterTicketRoutes sets up flight booking routes. Every route needs a
// session; listing all bookings and changing statuses need the admin role.
func RegisterTicketRoutes(e *echo.Echo, db *mongo.Client, admin *models.AdminPrincipal, ticketController *controllers.TicketController) {
	tickets := e.Group("/api/tickets", middleware.Protect(db, admin))
	tickets.POST("", ticketController.CreateTicket)
	tickets.GET("/user/:userId", ticketController.GetTicketsByUser)
	tickets.GET("/:id", ticketController.GetTicketByID)

	adminOnly := e.Group("/api/tickets", middleware.Protect(db, admin), middleware.RequireAdmin())
	adminOnly.GET("", ticketController.GetAllTickets)
	adminOnly.PUT("/:id", ticketController.UpdateTicketStatus)
}
