package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/freelancehub/internal/auth"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(okHandler)(c)
	require.NoError(t, err)
	return rec, c
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := auth.IssueToken("user-42", "freelancer")
	require.NoError(t, err)

	rec, c := doRequest(t, JWTMiddleware, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", c.Get("user_id"))
	assert.Equal(t, "freelancer", c.Get("role"))
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rec, _ := doRequest(t, JWTMiddleware, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareBadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rec, _ := doRequest(t, JWTMiddleware, "Bearer bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWTAnonymous(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	rec, c := doRequest(t, OptionalJWT, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.Get("user_id"))
}

func TestOptionalJWTWithToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := auth.IssueToken("user-7", "client")
	require.NoError(t, err)

	rec, c := doRequest(t, OptionalJWT, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", c.Get("user_id"))
	assert.Equal(t, "client", c.Get("role"))
}

func TestRequireRoles(t *testing.T) {
	e := echo.New()

	run := func(role string, allowed ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}
		err := RequireRoles(allowed...)(okHandler)(c)
		require.NoError(t, err)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(auth.RoleClient, auth.RoleClient))
	assert.Equal(t, http.StatusOK, run(auth.RoleFreelancer, auth.RoleClient, auth.RoleFreelancer))
	assert.Equal(t, http.StatusForbidden, run(auth.RoleFreelancer, auth.RoleClient))
	assert.Equal(t, http.StatusForbidden, run("", auth.RoleClient))
}
