package bid

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

type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// LeaveFeedback lets the project owner rate an accepted bid once.
func LeaveFeedback(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	bidID := c.Param("id")
	if _, err := uuid.Parse(bidID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid bid id"})
	}

	req := new(FeedbackRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	var (
		clientID    string
		status      string
		hasFeedback bool
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT p.client_id, b.status, b.feedback_at IS NOT NULL
		FROM bids b JOIN projects p ON p.id = b.project_id
		WHERE b.id = $1
	`, bidID).Scan(&clientID, &status, &hasFeedback)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "bid not found"})
		}
		return utils.ServerError(c, "failed to fetch bid", err)
	}
	if clientID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to review this bid"})
	}
	if status != StatusAccepted {
		return c.JSON(http.StatusConflict, echo.Map{"message": "feedback is only allowed on accepted bids"})
	}
	if hasFeedback {
		return c.JSON(http.StatusConflict, echo.Map{"message": "feedback already submitted"})
	}

	if _, err := db.Conn.Exec(context.Background(), `
		UPDATE bids SET client_rating = $1, client_comment = $2, feedback_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`, req.Rating, req.Comment, bidID); err != nil {
		return utils.ServerError(c, "failed to save feedback", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "feedback submitted successfully"})
}
