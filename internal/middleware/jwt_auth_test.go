package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/paperbird/backend/internal/middleware"
	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uint, secret string) string {
	t.Helper()
	claims := &models.JwtCustomClaims{UserID: userID}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func gateServer(users *testutil.FakeUserRepository) *echo.Echo {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		user := c.Get(middleware.AuthUserKey).(*models.User)
		return c.JSON(http.StatusOK, echo.Map{"id": user.ID})
	}, middleware.JWTAuthMiddleware(users, testSecret))
	return e
}

func TestJWTAuthResolvesActingUser(t *testing.T) {
	users := testutil.NewFakeUserRepository(&models.User{ID: 42, Name: "test-0"})
	e := gateServer(users)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, testSecret))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":42}`, rec.Body.String())
}

func TestJWTAuthRejections(t *testing.T) {
	users := testutil.NewFakeUserRepository(&models.User{ID: 42})
	e := gateServer(users)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer format", header: "Token abc"},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "wrong signing secret", header: "Bearer " + signToken(t, 42, "other-secret")},
		{name: "token for unknown user", header: "Bearer " + signToken(t, 7, testSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
