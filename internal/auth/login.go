package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns a bearer token.
func Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	var (
		userID   string
		name     string
		password string
		userType string
		isActive bool
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT id, name, password, user_type, is_active FROM users WHERE email = $1
	`, req.Email).Scan(&userID, &name, &password, &userType, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
		}
		return utils.ServerError(c, "failed to fetch account", err)
	}

	if !isActive {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "account deactivated"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	token, err := IssueToken(userID, userType)
	if err != nil {
		return utils.ServerError(c, "token generation failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": AuthUser{
			ID:       userID,
			Name:     name,
			Email:    req.Email,
			UserType: userType,
		},
	})
}
