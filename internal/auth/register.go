package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	UserType string `json:"user_type" validate:"required,oneof=client freelancer"`
}

type AuthUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// Register creates an account and returns a bearer token.
func Register(c echo.Context) error {
	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ServerError(c, "server error", err)
	}

	userID := uuid.New().String()
	_, err = db.Conn.Exec(context.Background(), `
		INSERT INTO users (id, name, email, password, user_type)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, req.Name, req.Email, string(hashed), req.UserType)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		}
		return utils.ServerError(c, "failed to create account", err)
	}

	token, err := IssueToken(userID, req.UserType)
	if err != nil {
		return utils.ServerError(c, "token generation failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"token": token,
		"user": AuthUser{
			ID:       userID,
			Name:     req.Name,
			Email:    req.Email,
			UserType: req.UserType,
		},
	})
}
