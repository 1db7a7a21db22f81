package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/repositories"
)

type PostController struct {
	Posts *repositories.PostRepository
}

func NewPostController(posts *repositories.PostRepository) *PostController {
	return &PostController{Posts: posts}
}

// GetPosts returns every post, newest first (GET /api/posts)
func (pc *PostController) GetPosts(c echo.Context) error {
	posts, err := pc.Posts.FindAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch posts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Posts fetched successfully",
		Data:    posts,
	})
}

// DeletePost removes one post as a whole (DELETE /api/posts/:id)
func (pc *PostController) DeletePost(c echo.Context) error {
	err := pc.Posts.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Post not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete post",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post deleted successfully",
	})
}
