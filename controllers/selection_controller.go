package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/services"
)

type SelectionController struct {
	Selection *services.SelectionService
}

func NewSelectionController(selection *services.SelectionService) *SelectionController {
	return &SelectionController{Selection: selection}
}

// ToggleRequest model for flipping one URL's selection state
type ToggleRequest struct {
	URL string `json:"url" validate:"required"`
}

// Toggle flips one media URL in the session's selection
// (POST /api/selection/:session/toggle)
func (sc *SelectionController) Toggle(c echo.Context) error {
	var req ToggleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A media URL is required",
		})
	}

	selected, err := sc.Selection.Toggle(c.Request().Context(), c.Param("session"), req.URL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update selection",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Selection updated",
		Data:    echo.Map{"url": req.URL, "selected": selected},
	})
}

// List returns the session's selection in selection order
// (GET /api/selection/:session)
func (sc *SelectionController) List(c echo.Context) error {
	urls, err := sc.Selection.List(c.Request().Context(), c.Param("session"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load selection",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Selection fetched successfully",
		Data:    urls,
	})
}

// Clear empties the session's selection (DELETE /api/selection/:session)
func (sc *SelectionController) Clear(c echo.Context) error {
	if err := sc.Selection.Clear(c.Request().Context(), c.Param("session")); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to clear selection",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Selection cleared",
	})
}
