package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paperbird/backend/internal/middleware"
	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/internal/repositories"
)

// currentUser returns the acting user resolved by the auth middleware
func currentUser(c echo.Context) *models.User {
	user, _ := c.Get(middleware.AuthUserKey).(*models.User)
	return user
}

// resolvePost loads the post named by the :post route param. An ID that does
// not resolve to a live post yields a 404; mutating handlers run this before
// touching anything.
func resolvePost(c echo.Context, posts repositories.PostRepository) (*models.Post, error) {
	post, err := posts.GetPostByID(c.Request().Context(), c.Param("post"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Post could not be found.")
	}
	return post, nil
}

// requireAuthor rejects with a 403 unless the acting user authored the post
func requireAuthor(c echo.Context, post *models.Post) error {
	user := currentUser(c)
	if user == nil || user.ID != post.AuthorID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not the author of this post.")
	}
	return nil
}
