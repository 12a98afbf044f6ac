package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// RequireRoles gates a route to callers whose token role is in the
// allowed set. It runs after JWTMiddleware, which stores the role in
// the request context; an absent role means the guard was misordered
// and the request is refused.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" || !lo.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "access denied"})
			}
			return next(c)
		}
	}
}
