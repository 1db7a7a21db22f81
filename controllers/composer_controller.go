package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/services"
	"github.com/justda2ofus/memories_backend/websocket"
)

type ComposerController struct {
	Composer *services.ComposerService
	Hub      *websocket.Hub
}

func NewComposerController(composer *services.ComposerService, hub *websocket.Hub) *ComposerController {
	return &ComposerController{Composer: composer, Hub: hub}
}

// OpenSession creates a new composer session (POST /api/composer/sessions)
func (cc *ComposerController) OpenSession(c echo.Context) error {
	id := cc.Composer.OpenSession()
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Composer session created",
		Data:    echo.Map{"session": id},
	})
}

// SelectFiles replaces the session's pending batch
// (POST /api/composer/sessions/:id/files, multipart field "files")
func (cc *ComposerController) SelectFiles(c echo.Context) error {
	sessionID := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Multipart form with a 'files' field is required",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No files selected",
		})
	}

	files := make([]services.LocalFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Could not open uploaded file " + fh.Filename,
			})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Could not read uploaded file " + fh.Filename,
			})
		}
		files = append(files, services.LocalFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	previews, err := cc.Composer.SelectFiles(sessionID, files)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Files selected",
		Data:    previews,
	})
}

// Submit publishes the pending batch as one post
// (POST /api/composer/sessions/:id/submit)
func (cc *ComposerController) Submit(c echo.Context) error {
	sessionID := c.Param("id")

	var req models.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Please type an album name first",
		})
	}

	post, err := cc.Composer.Submit(c.Request().Context(), sessionID, req, func(progress int) {
		cc.Hub.BroadcastProgress(sessionID, progress)
	})
	if err != nil {
		status := http.StatusBadRequest
		var configErr *services.ConfigError
		var transformErr *services.TransformError
		var uploadErr *services.UploadError
		var commitErr *services.CommitError
		var canceledErr *services.CanceledError
		switch {
		case errors.As(err, &configErr):
			status = http.StatusInternalServerError
		case errors.As(err, &transformErr):
			status = http.StatusUnprocessableEntity
		case errors.As(err, &uploadErr):
			status = http.StatusBadGateway
		case errors.As(err, &commitErr):
			status = http.StatusInternalServerError
		case errors.As(err, &canceledErr):
			status = http.StatusConflict
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post published",
		Data:    post,
	})
}

// CloseSession tears the session down, canceling an in-flight batch
// (DELETE /api/composer/sessions/:id)
func (cc *ComposerController) CloseSession(c echo.Context) error {
	cc.Composer.CloseSession(c.Param("id"))
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Composer session closed",
	})
}
