package controllers

import (
	"bytes"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"

	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/repositories"
)

// AllAlbums is the synthetic pseudo-album covering every post.
const AllAlbums = "All Albums"

type AlbumController struct {
	Posts     *repositories.PostRepository
	publicURL string

	mu          sync.Mutex
	fingerprint string
	cached      []string
}

func NewAlbumController(posts *repositories.PostRepository) *AlbumController {
	publicURL := os.Getenv("PUBLIC_URL")
	if publicURL == "" {
		publicURL = "http://localhost:8080"
	}
	return &AlbumController{
		Posts:     posts,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// GetAlbums returns the derived album list (GET /api/albums). The list is
// a pure function of the current posts, memoized by content.
func (ac *AlbumController) GetAlbums(c echo.Context) error {
	names, err := ac.Posts.AlbumNames(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch albums",
		})
	}

	ac.mu.Lock()
	fp := strings.Join(names, "\x00")
	if fp != ac.fingerprint {
		ac.fingerprint = fp
		ac.cached = append([]string{AllAlbums}, names...)
	}
	albums := ac.cached
	ac.mu.Unlock()

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Albums fetched successfully",
		Data:    albums,
	})
}

// GetAlbumQR renders a share QR code for one album as a PNG
// (GET /api/albums/:name/qr)
func (ac *AlbumController) GetAlbumQR(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Album name is required",
		})
	}

	content := ac.publicURL + "/albums/" + url.PathEscape(name)

	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	// Scale the QR code to a reasonable size (300x300 pixels)
	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code",
		})
	}

	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
