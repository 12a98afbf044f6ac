package utils

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

// ServerError renders a 500 without leaking internals. Error details are
// only attached when APP_ENV=development.
func ServerError(c echo.Context, msg string, err error) error {
	body := echo.Map{"message": msg}
	if os.Getenv("APP_ENV") == "development" && err != nil {
		body["details"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}
