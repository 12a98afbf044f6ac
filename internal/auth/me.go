package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

// Me returns the caller's own record.
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var (
		name         string
		email        string
		userType     string
		bio          string
		skills       []string
		hourlyRate   float64
		location     string
		website      string
		avatarURL    string
		rating       float64
		totalReviews int
		createdAt    time.Time
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT name, email, user_type, bio, skills, hourly_rate, location, website,
		       avatar_url, rating, total_reviews, created_at
		FROM users WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&name, &email, &userType, &bio, &skills, &hourlyRate, &location,
		&website, &avatarURL, &rating, &totalReviews, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return utils.ServerError(c, "failed to fetch user", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": echo.Map{
		"id":            userID,
		"name":          name,
		"email":         email,
		"user_type":     userType,
		"bio":           bio,
		"skills":        skills,
		"hourly_rate":   hourlyRate,
		"location":      location,
		"website":       website,
		"avatar_url":    avatarURL,
		"rating":        rating,
		"total_reviews": totalReviews,
		"created_at":    createdAt,
	}})
}
