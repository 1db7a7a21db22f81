package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/justda2ofus/memories_backend/controllers"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	e *echo.Echo,
	composerController *controllers.ComposerController,
	postController *controllers.PostController,
	albumController *controllers.AlbumController,
	letterController *controllers.LetterController,
	selectionController *controllers.SelectionController,
	exportController *controllers.ExportController,
) {
	api := e.Group("/api")

	// Composer pipeline
	api.POST("/composer/sessions", composerController.OpenSession)
	api.POST("/composer/sessions/:id/files", composerController.SelectFiles)
	api.POST("/composer/sessions/:id/submit", composerController.Submit)
	api.DELETE("/composer/sessions/:id", composerController.CloseSession)

	// Feed
	api.GET("/posts", postController.GetPosts)
	api.DELETE("/posts/:id", postController.DeletePost)

	// Derived albums
	api.GET("/albums", albumController.GetAlbums)
	api.GET("/albums/:name/qr", albumController.GetAlbumQR)

	// Letters
	api.POST("/letters/:album", letterController.SaveLetter)
	api.GET("/letters/:album/latest", letterController.GetLatestLetter)

	// Download selection and bulk export
	api.POST("/selection/:session/toggle", selectionController.Toggle)
	api.GET("/selection/:session", selectionController.List)
	api.DELETE("/selection/:session", selectionController.Clear)
	api.POST("/export/:session", exportController.ExportSelected)
}
