package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paperbird/backend/internal/repositories"
)

// TagHandler exposes the read-only tag query surface
type TagHandler struct {
	tagRepository  repositories.TagRepository
	postRepository repositories.PostRepository
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagRepo repositories.TagRepository, postRepo repositories.PostRepository) *TagHandler {
	return &TagHandler{
		tagRepository:  tagRepo,
		postRepository: postRepo,
	}
}

// RegisterTagRoutes registers tag-related routes
func (h *TagHandler) RegisterTagRoutes(g *echo.Group) {
	g.GET("/tags", h.GetTags)
	g.GET("/tag/:name/posts", h.GetPostsByTag)
}

// GetTags lists every tag with its live-post count
func (h *TagHandler) GetTags(c echo.Context) error {
	tags, err := h.tagRepository.ListTags(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tags)
}

// GetPostsByTag lists every live post carrying the tag
func (h *TagHandler) GetPostsByTag(c echo.Context) error {
	name := c.Param("name")

	tag, err := h.tagRepository.GetTag(c.Request().Context(), name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if tag == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tag could not be found.")
	}

	posts, err := h.postRepository.GetPostsByTag(c.Request().Context(), name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}
