package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/worldclasstravels/wct_backend/controllers"
	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
	ws "github.com/worldclasstravels/wct_backend/websocket"
)

// RegisterAdminRoutes sets up the admin dashboard routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client, admin *models.AdminPrincipal, adminController *controllers.AdminController, hub *ws.Hub) {
	e.POST("/api/admin/login", adminController.Login)

	adminGroup := e.Group("/api/admin", middleware.Protect(db, admin), middleware.RequireAdmin())
	adminGroup.GET("/me", adminController.Me)
	adminGroup.POST("/logout", adminController.Logout)
	adminGroup.GET("/ws", ws.HandleWebSocket(hub))
}
