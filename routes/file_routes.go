package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/justda2ofus/memories_backend/models"
)

// RegisterFileRoutes sets up serving of previews, thumbnails and exports
func RegisterFileRoutes(e *echo.Echo) {
	e.GET("/uploads/*", ServeFile)
}

// ServeFile handles serving local files with proper security checks
func ServeFile(c echo.Context) error {
	path := c.Param("*")
	if path == "" {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "File not found - no path provided",
		})
	}

	// Clean the path to prevent directory traversal
	cleanPath := filepath.Clean(path)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, "../") {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Access denied - invalid path",
		})
	}

	// Construct full file path
	fullPath := filepath.Join("uploads", cleanPath)

	// Check if file exists
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "File not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Error accessing file",
		})
	}

	// Don't allow directory listing
	if info.IsDir() {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Access denied - directory listing not allowed",
		})
	}

	// Previews are transient; exports and thumbnails can be cached briefly
	if strings.HasPrefix(cleanPath, "previews"+string(os.PathSeparator)) || strings.HasPrefix(cleanPath, "previews/") {
		c.Response().Header().Set("Cache-Control", "no-store")
	} else {
		c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		c.Response().Header().Set("Expires", time.Now().Add(time.Hour).Format(time.RFC1123))
	}

	// Serve the file
	return c.File(fullPath)
}
