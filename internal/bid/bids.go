package bid

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/project"
	"github.com/sudo-init-do/freelancehub/internal/user"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

type SubmitRequest struct {
	ProjectID    string  `json:"project_id" validate:"required,uuid4"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	Proposal     string  `json:"proposal" validate:"required"`
	TimelineDays int     `json:"timeline_days" validate:"required,min=1"`
	Message      string  `json:"message"`
}

// Submit places a bid on an open project. The bid row and the project's
// bid counter move in one transaction.
func Submit(c echo.Context) error {
	freelancerID, ok := c.Get("user_id").(string)
	if !ok || freelancerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	req := new(SubmitRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := context.Background()

	var (
		status               string
		isActive             bool
		budgetMin, budgetMax float64
	)
	err := db.Conn.QueryRow(ctx,
		`SELECT status, is_active, budget_min, budget_max FROM projects WHERE id = $1`,
		req.ProjectID).Scan(&status, &isActive, &budgetMin, &budgetMax)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
		}
		return utils.ServerError(c, "failed to fetch project", err)
	}
	if !isActive {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
	}
	if status != project.StatusOpen {
		return c.JSON(http.StatusConflict, echo.Map{"message": "project is not accepting bids"})
	}
	if !withinBudget(req.Amount, budgetMin, budgetMax) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": budgetRangeMessage(budgetMin, budgetMax)})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return utils.ServerError(c, "transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	b := Bid{
		ID:           uuid.New().String(),
		ProjectID:    req.ProjectID,
		FreelancerID: freelancerID,
		Amount:       req.Amount,
		Proposal:     req.Proposal,
		TimelineDays: req.TimelineDays,
		Message:      req.Message,
		Status:       StatusPending,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO bids (id, project_id, freelancer_id, amount, proposal, timeline_days, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, b.ID, b.ProjectID, b.FreelancerID, b.Amount, b.Proposal, b.TimelineDays, b.Message).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.JSON(http.StatusConflict, echo.Map{"message": "you have already bid on this project"})
		}
		return utils.ServerError(c, "failed to create bid", err)
	}

	if err := project.AdjustBidCount(ctx, tx, req.ProjectID, 1); err != nil {
		return utils.ServerError(c, "failed to update bid counter", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return utils.ServerError(c, "commit failed", err)
	}

	summaries, err := user.SummariesByID(ctx, []string{freelancerID})
	if err == nil {
		if s, ok := summaries[freelancerID]; ok {
			b.Freelancer = &s
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "bid submitted successfully",
		"bid":     b,
	})
}

// ListForProject returns all bids on a project, owner only, newest first.
func ListForProject(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	projectID := c.Param("projectId")
	if _, err := uuid.Parse(projectID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid project id"})
	}

	var clientID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT client_id FROM projects WHERE id = $1`, projectID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
		}
		return utils.ServerError(c, "failed to fetch project", err)
	}
	if clientID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to view bids for this project"})
	}

	rows, err := db.Conn.Query(context.Background(), `
		SELECT b.id, b.project_id, b.freelancer_id, b.amount, b.proposal, b.timeline_days,
		       b.message, b.status, b.is_accepted, b.accepted_at, b.created_at, b.updated_at,
		       u.id, u.name, u.avatar_url, u.rating, u.total_reviews
		FROM bids b
		JOIN users u ON u.id = b.freelancer_id
		WHERE b.project_id = $1
		ORDER BY b.created_at DESC
	`, projectID)
	if err != nil {
		return utils.ServerError(c, "failed to fetch bids", err)
	}
	defer rows.Close()

	bids := []Bid{}
	for rows.Next() {
		var b Bid
		var u user.Summary
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.FreelancerID, &b.Amount, &b.Proposal,
			&b.TimelineDays, &b.Message, &b.Status, &b.IsAccepted, &b.AcceptedAt,
			&b.CreatedAt, &b.UpdatedAt,
			&u.ID, &u.Name, &u.AvatarURL, &u.Rating, &u.TotalReviews); err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		b.Freelancer = &u
		bids = append(bids, b)
	}

	return c.JSON(http.StatusOK, echo.Map{"bids": bids})
}

// myBid is a caller's bid with a slim view of its project attached.
type myBid struct {
	Bid
	Project struct {
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		BudgetMin float64 `json:"budget_min"`
		BudgetMax float64 `json:"budget_max"`
		Status    string  `json:"status"`
	} `json:"project"`
}

// ListMine returns the caller's bids across projects, newest first.
func ListMine(c echo.Context) error {
	freelancerID, ok := c.Get("user_id").(string)
	if !ok || freelancerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(), `
		SELECT b.id, b.project_id, b.freelancer_id, b.amount, b.proposal, b.timeline_days,
		       b.message, b.status, b.is_accepted, b.accepted_at, b.created_at, b.updated_at,
		       p.id, p.title, p.budget_min, p.budget_max, p.status
		FROM bids b
		JOIN projects p ON p.id = b.project_id
		WHERE b.freelancer_id = $1
		ORDER BY b.created_at DESC
	`, freelancerID)
	if err != nil {
		return utils.ServerError(c, "failed to fetch bids", err)
	}
	defer rows.Close()

	bids := []myBid{}
	for rows.Next() {
		var b myBid
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.FreelancerID, &b.Amount, &b.Proposal,
			&b.TimelineDays, &b.Message, &b.Status, &b.IsAccepted, &b.AcceptedAt,
			&b.CreatedAt, &b.UpdatedAt,
			&b.Project.ID, &b.Project.Title, &b.Project.BudgetMin, &b.Project.BudgetMax,
			&b.Project.Status); err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		bids = append(bids, b)
	}

	return c.JSON(http.StatusOK, echo.Map{"bids": bids})
}

// Accept marks one bid accepted, flips the project in-progress and
// rejects every other pending bid, all in a single transaction. The
// open -> in-progress update is the compare-and-swap that makes exactly
// one concurrent Accept win.
func Accept(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	bidID := c.Param("id")
	if _, err := uuid.Parse(bidID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid bid id"})
	}

	ctx := context.Background()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return utils.ServerError(c, "transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	var projectID, clientID string
	err = tx.QueryRow(ctx, `
		SELECT b.project_id, p.client_id
		FROM bids b JOIN projects p ON p.id = b.project_id
		WHERE b.id = $1
	`, bidID).Scan(&projectID, &clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "bid not found"})
		}
		return utils.ServerError(c, "failed to fetch bid", err)
	}
	if clientID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to accept this bid"})
	}

	res, err := tx.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		project.StatusInProgress, projectID, project.StatusOpen)
	if err != nil {
		return utils.ServerError(c, "failed to update project", err)
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "project is not accepting bids"})
	}

	var acceptedAt time.Time
	err = tx.QueryRow(ctx, `
		UPDATE bids SET status = $1, is_accepted = TRUE, accepted_at = NOW(), updated_at = NOW()
		WHERE id = $2
		RETURNING accepted_at
	`, StatusAccepted, bidID).Scan(&acceptedAt)
	if err != nil {
		return utils.ServerError(c, "failed to accept bid", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE bids SET status = $1, updated_at = NOW()
		WHERE project_id = $2 AND id <> $3 AND status = $4
	`, StatusRejected, projectID, bidID, StatusPending)
	if err != nil {
		return utils.ServerError(c, "failed to reject other bids", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return utils.ServerError(c, "commit failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "bid accepted successfully",
		"bid": echo.Map{
			"id":          bidID,
			"status":      StatusAccepted,
			"is_accepted": true,
			"accepted_at": acceptedAt,
		},
	})
}

// Reject sets a bid rejected. No precondition on the bid's current
// status; re-rejecting a settled bid is a no-op by value.
func Reject(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	bidID := c.Param("id")
	if _, err := uuid.Parse(bidID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid bid id"})
	}

	var clientID string
	err := db.Conn.QueryRow(context.Background(), `
		SELECT p.client_id
		FROM bids b JOIN projects p ON p.id = b.project_id
		WHERE b.id = $1
	`, bidID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "bid not found"})
		}
		return utils.ServerError(c, "failed to fetch bid", err)
	}
	if clientID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to reject this bid"})
	}

	if _, err := db.Conn.Exec(context.Background(),
		`UPDATE bids SET status = $1, updated_at = NOW() WHERE id = $2`, StatusRejected, bidID); err != nil {
		return utils.ServerError(c, "failed to reject bid", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "bid rejected successfully"})
}

// Withdraw deletes a pending bid and decrements the project's counter in
// the same transaction. Settled bids cannot be withdrawn.
func Withdraw(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	bidID := c.Param("id")
	if _, err := uuid.Parse(bidID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid bid id"})
	}

	ctx := context.Background()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return utils.ServerError(c, "transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	var (
		freelancerID string
		status       string
		projectID    string
	)
	err = tx.QueryRow(ctx,
		`SELECT freelancer_id, status, project_id FROM bids WHERE id = $1 FOR UPDATE`,
		bidID).Scan(&freelancerID, &status, &projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "bid not found"})
		}
		return utils.ServerError(c, "failed to fetch bid", err)
	}
	if freelancerID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to withdraw this bid"})
	}
	if isTerminal(status) {
		return c.JSON(http.StatusConflict, echo.Map{"message": "bid cannot be withdrawn"})
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bids WHERE id = $1`, bidID); err != nil {
		return utils.ServerError(c, "failed to withdraw bid", err)
	}

	if err := project.AdjustBidCount(ctx, tx, projectID, -1); err != nil {
		return utils.ServerError(c, "failed to update bid counter", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return utils.ServerError(c, "commit failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "bid withdrawn successfully"})
}
