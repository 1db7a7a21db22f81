package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/services"
)

type ExportController struct {
	Selection *services.SelectionService
	Exporter  *services.ExportService
}

func NewExportController(selection *services.SelectionService, exporter *services.ExportService) *ExportController {
	return &ExportController{Selection: selection, Exporter: exporter}
}

// ExportSelected downloads every selected URL, in selection order
// (POST /api/export/:session)
func (ec *ExportController) ExportSelected(c echo.Context) error {
	session := c.Param("session")

	urls, err := ec.Selection.List(c.Request().Context(), session)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load selection",
		})
	}
	if len(urls) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No files selected for download",
		})
	}

	results := ec.Exporter.ExportSelected(c.Request().Context(), urls)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Export finished",
		Data:    results,
	})
}
