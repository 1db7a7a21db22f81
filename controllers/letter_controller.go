package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/repositories"
	"github.com/justda2ofus/memories_backend/utils"
)

type LetterController struct {
	Letters *repositories.LetterRepository
}

func NewLetterController(letters *repositories.LetterRepository) *LetterController {
	return &LetterController{Letters: letters}
}

// albumParam normalizes the album path parameter; letters without an
// album land under "General".
func albumParam(c echo.Context) string {
	name := strings.TrimSpace(c.Param("album"))
	if name == "" {
		name = "General"
	}
	return name
}

// SaveLetter stores one letter for an album (POST /api/letters/:album)
func (lc *LetterController) SaveLetter(c echo.Context) error {
	var req models.LetterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	body := utils.SanitizeInput(req.Body)
	if body == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Write something first",
		})
	}

	letter, err := lc.Letters.Insert(c.Request().Context(), albumParam(c), body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save letter",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Letter saved",
		Data:    letter,
	})
}

// GetLatestLetter returns the newest letter for an album
// (GET /api/letters/:album/latest)
func (lc *LetterController) GetLatestLetter(c echo.Context) error {
	letter, err := lc.Letters.Latest(c.Request().Context(), albumParam(c))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "No letters yet for this album",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load letter",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Letter fetched successfully",
		Data:    letter,
	})
}
