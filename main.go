package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/justda2ofus/memories_backend/config"
	"github.com/justda2ofus/memories_backend/controllers"
	"github.com/justda2ofus/memories_backend/middleware"
	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/repositories"
	"github.com/justda2ofus/memories_backend/routes"
	"github.com/justda2ofus/memories_backend/services"
	"github.com/justda2ofus/memories_backend/utils"
	"github.com/justda2ofus/memories_backend/websocket"
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
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (selection sets degrade to memory without it)
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DatabaseName())

	// Ensure local storage for previews, thumbnails and exports
	if err := utils.InitializeStorage(); err != nil {
		log.Fatal("Storage setup error:", err)
	}

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Initialize repositories
	postRepo := repositories.NewPostRepository(db)
	letterRepo := repositories.NewLetterRepository(db)

	// Initialize services
	mediaHost := services.NewMediaHostService()
	composer := services.NewComposerService(mediaHost, postRepo)
	feed := services.NewFeedService(postRepo)
	exporter := services.NewExportService()
	selection := services.NewSelectionService(config.GetRedisClient())

	// Start the live feed and bridge it onto the WebSocket hub
	feedCtx, cancelFeed := context.WithCancel(context.Background())
	defer cancelFeed()
	feed.Start(feedCtx)
	feed.Subscribe(func(posts []models.Post) {
		wsHub.BroadcastFeed(posts)
	})

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  true,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Memories Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Feed WebSocket endpoint
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, wsHub, feed.Latest)
	})

	// Initialize controllers
	composerController := controllers.NewComposerController(composer, wsHub)
	postController := controllers.NewPostController(postRepo)
	albumController := controllers.NewAlbumController(postRepo)
	letterController := controllers.NewLetterController(letterRepo)
	selectionController := controllers.NewSelectionController(selection)
	exportController := controllers.NewExportController(selection, exporter)

	// Setup routes
	routes.SetupRoutes(e, composerController, postController, albumController, letterController, selectionController, exportController)
	routes.RegisterFileRoutes(e)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
