package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/worldclasstravels/wct_backend/config"
	"github.com/worldclasstravels/wct_backend/controllers"
	"github.com/worldclasstravels/wct_backend/middleware"
	"github.com/worldclasstravels/wct_backend/models"
	"github.com/worldclasstravels/wct_backend/routes"
	"github.com/worldclasstravels/wct_backend/utils"
	"github.com/worldclasstravels/wct_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Admin credentials and SMTP settings are required up front
	admin, err := models.LoadAdminPrincipal()
	if err != nil {
		log.Fatal(err)
	}

	mailer, err := utils.NewMailerFromEnv()
	if err != nil {
		log.Fatal("Mailer configuration error: ", err)
	}

	if err := utils.InitializeStorage(); err != nil {
		log.Fatal(err)
	}

	// Connect to Redis (optional) and the database
	rdb := config.ConnectRedis()
	client := config.ConnectDB()

	// Create WebSocket hub for the admin dashboard
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowInlineJS: false,
		AllowEval:     false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "WorldClassTravels Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Serve visa cover images
	e.Static("/uploads", "uploads")

	// Initialize controllers
	authController := controllers.NewAuthController(client, mailer, rdb)
	passwordController := controllers.NewPasswordController(client, mailer, rdb)
	adminController := controllers.NewAdminController(admin)
	visaController := controllers.NewVisaController(client)
	ticketController := controllers.NewTicketController(client, mailer, wsHub)

	// Register routes
	routes.RegisterAuthRoutes(e, client, admin, authController, passwordController)
	routes.RegisterAdminRoutes(e, client, admin, adminController, wsHub)
	routes.RegisterVisaRoutes(e, client, admin, visaController)
	routes.RegisterTicketRoutes(e, client, admin, ticketController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
