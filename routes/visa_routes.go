package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worldclasstravels/wct_backend/controllers"
	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
)

// RegisterVisaRoutes sets up visa listing routes. Reads are public; every
// mutation is admin only.
func RegisterVisaRoutes(e *echo.Echo, db *mongo.Client, admin *models.AdminPrincipal, visaController *controllers.VisaController) {
	e.GET("/api/visas", visaController.GetAllVisas)
	e.GET("/api/visas/country/:country", visaController.GetVisaByCountry)

	adminOnly := e.Group("/api/visas", middleware.Protect(db, admin), middleware.RequireAdmin())
	adminOnly.POST("", visaController.CreateVisa)
	adminOnly.PUT("/:id", visaController.UpdateVisa)
	adminOnly.DELETE("/:id", visaController.DeleteVisa)
}
