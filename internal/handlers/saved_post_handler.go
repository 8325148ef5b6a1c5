package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paperbird/backend/internal/repositories"
	"github.com/paperbird/backend/internal/services"
)

// SavedPostHandler handles saving and unsaving posts
type SavedPostHandler struct {
	postService    *services.PostService
	postRepository repositories.PostRepository
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(postService *services.PostService, postRepo repositories.PostRepository) *SavedPostHandler {
	return &SavedPostHandler{
		postService:    postService,
		postRepository: postRepo,
	}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/post/:post/save", h.SavePost)
	g.DELETE("/post/:post/save", h.UnsavePost)
	g.GET("/saved", h.GetSavedPosts)
}

// SavePost saves a post for the acting user. Saving an already-saved post is
// a no-op and still succeeds.
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	post, err := resolvePost(c, h.postRepository)
	if err != nil {
		return err
	}

	if err := h.postService.Save(c.Request().Context(), post, currentUser(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": true}})
}

// UnsavePost removes a post from the acting user's saved posts
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	post, err := resolvePost(c, h.postRepository)
	if err != nil {
		return err
	}

	if err := h.postService.Unsave(c.Request().Context(), post, currentUser(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": false}})
}

// GetSavedPosts lists every post the acting user has saved
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	posts, err := h.postRepository.GetPostsSavedBy(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}
