package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/internal/repositories"
	"github.com/paperbird/backend/internal/services"
	"github.com/paperbird/backend/validators"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService    *services.PostService
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{
		postService:    postService,
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterPostRoutes registers the authenticated post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.PUT("/post/:post", h.EditPost)
	g.DELETE("/post/:post", h.DeletePost)
}

// RegisterPublicPostRoutes registers the read-only post routes
func (h *PostHandler) RegisterPublicPostRoutes(g *echo.Group) {
	g.GET("/post/:post", h.GetPost)
	g.GET("/user/:id/posts", h.GetPostsByUser)
}

// CreatePost creates a new post from pre-validated content and tags
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.PostInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	content, tags, fieldErrs := validators.ValidatePostInput(&req)
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrs})
	}

	if err := h.postService.Create(c.Request().Context(), currentUser(c), content, tags); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

// EditPost replaces a post's content and tags. Existence and authorship are
// checked before the input is validated, so a non-author gets a 403 even
// with a malformed body.
func (h *PostHandler) EditPost(c echo.Context) error {
	post, err := resolvePost(c, h.postRepository)
	if err != nil {
		return err
	}
	if err := requireAuthor(c, post); err != nil {
		return err
	}

	var req models.PostInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	content, tags, fieldErrs := validators.ValidatePostInput(&req)
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrs})
	}

	if err := h.postService.Edit(c.Request().Context(), post, content, tags); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

// DeletePost deletes a post, cascading to its tag references and comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	post, err := resolvePost(c, h.postRepository)
	if err != nil {
		return err
	}
	if err := requireAuthor(c, post); err != nil {
		return err
	}

	if err := h.postService.Delete(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := resolvePost(c, h.postRepository)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// GetPostsByUser retrieves every post a user has authored
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User could not be found.")
	}

	if _, err := h.userRepository.GetUserByID(uint(userID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User could not be found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// TODO: limit the returned fields; saved_by exposes every saver's user ID
	return c.JSON(http.StatusOK, posts)
}
