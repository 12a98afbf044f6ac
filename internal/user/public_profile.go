package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

// GetPublicProfile returns a user's public profile. Deactivated accounts
// are indistinguishable from missing ones.
func GetPublicProfile(c echo.Context) error {
	userID := c.Param("id")
	if _, err := uuid.Parse(userID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	var p PublicProfile
	err := db.Conn.QueryRow(context.Background(), `
		SELECT id, name, bio, skills, hourly_rate, location, website,
		       avatar_url, rating, total_reviews, user_type, created_at
		FROM users WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&p.ID, &p.Name, &p.Bio, &p.Skills, &p.HourlyRate, &p.Location,
		&p.Website, &p.AvatarURL, &p.Rating, &p.TotalReviews, &p.UserType, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return utils.ServerError(c, "failed to fetch user", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": p})
}
