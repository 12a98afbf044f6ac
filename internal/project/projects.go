package project

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/user"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

type CreateRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"required,oneof=web-development mobile-development design writing marketing other"`
	Skills      []string   `json:"skills"`
	BudgetMin   float64    `json:"budget_min" validate:"required,gt=0"`
	BudgetMax   float64    `json:"budget_max" validate:"required,gtfield=BudgetMin"`
	Deadline    *time.Time `json:"deadline"`
	Location    string     `json:"location"`
}

// Create posts a new project. Client role enforced at the route.
func Create(c echo.Context) error {
	clientID, ok := c.Get("user_id").(string)
	if !ok || clientID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	req := new(CreateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	skills := lo.Uniq(lo.FilterMap(req.Skills, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	}))
	location := req.Location
	if location == "" {
		location = "Remote"
	}

	p := Project{
		ID:          uuid.New().String(),
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Skills:      skills,
		Budget:      Budget{Min: req.BudgetMin, Max: req.BudgetMax},
		Deadline:    req.Deadline,
		Status:      StatusOpen,
		Location:    location,
		IsActive:    true,
	}

	err := db.Conn.QueryRow(context.Background(), `
		INSERT INTO projects (id, client_id, title, description, category, skills,
			budget_min, budget_max, deadline, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, p.ID, p.ClientID, p.Title, p.Description, p.Category, p.Skills,
		p.Budget.Min, p.Budget.Max, p.Deadline, p.Location).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return utils.ServerError(c, "failed to create project", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "project created successfully",
		"project": p,
	})
}

// List returns a page of active projects with their owners attached.
func List(c echo.Context) error {
	f := parseListFilter(c)
	cond, args := f.whereClause()

	var total int
	if err := db.Conn.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM projects p WHERE `+cond, args...).Scan(&total); err != nil {
		return utils.ServerError(c, "failed to count projects", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf(`
		SELECT p.id, p.client_id, p.title, p.description, p.category, p.skills,
		       p.budget_min, p.budget_max, p.deadline, p.status, p.location,
		       p.views, p.bids, p.is_featured, p.is_active, p.created_at, p.updated_at,
		       u.id, u.name, u.avatar_url, u.rating, u.total_reviews
		FROM projects p
		JOIN users u ON u.id = p.client_id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return utils.ServerError(c, "failed to fetch projects", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProjectWithClient(rows)
		if err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		projects = append(projects, p)
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	return c.JSON(http.StatusOK, echo.Map{
		"projects":    projects,
		"total_docs":  total,
		"total_pages": totalPages,
		"page":        f.Page,
		"limit":       f.Limit,
	})
}

func scanProjectWithClient(rows pgx.Rows) (Project, error) {
	var p Project
	var u user.Summary
	err := rows.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.Category, &p.Skills,
		&p.Budget.Min, &p.Budget.Max, &p.Deadline, &p.Status, &p.Location,
		&p.Views, &p.Bids, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Name, &u.AvatarURL, &u.Rating, &u.TotalReviews)
	if err != nil {
		return Project{}, err
	}
	p.Client = &u
	return p, nil
}

// projectBid is the bid shape embedded in the project detail response.
type projectBid struct {
	ID           string       `json:"id"`
	FreelancerID string       `json:"freelancer_id"`
	Amount       float64      `json:"amount"`
	Proposal     string       `json:"proposal"`
	TimelineDays int          `json:"timeline_days"`
	Message      string       `json:"message"`
	Status       string       `json:"status"`
	IsAccepted   bool         `json:"is_accepted"`
	AcceptedAt   *time.Time   `json:"accepted_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	Freelancer   user.Summary `json:"freelancer"`
}

// Get returns one active project with its bids. The view counter is
// incremented atomically on every call; retried fetches inflate views.
func Get(c echo.Context) error {
	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid project id"})
	}

	// The increment doubles as the fetch so concurrent views are never lost.
	var p Project
	err := db.Conn.QueryRow(context.Background(), `
		UPDATE projects SET views = views + 1
		WHERE id = $1 AND is_active = TRUE
		RETURNING id, client_id, title, description, category, skills,
		          budget_min, budget_max, deadline, status, location,
		          views, bids, is_featured, is_active, created_at, updated_at
	`, projectID).Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.Category, &p.Skills,
		&p.Budget.Min, &p.Budget.Max, &p.Deadline, &p.Status, &p.Location,
		&p.Views, &p.Bids, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
		}
		return utils.ServerError(c, "failed to fetch project", err)
	}

	summaries, err := user.SummariesByID(context.Background(), []string{p.ClientID})
	if err != nil {
		return utils.ServerError(c, "failed to fetch client", err)
	}
	if s, ok := summaries[p.ClientID]; ok {
		p.Client = &s
	}

	rows, err := db.Conn.Query(context.Background(), `
		SELECT b.id, b.freelancer_id, b.amount, b.proposal, b.timeline_days, b.message,
		       b.status, b.is_accepted, b.accepted_at, b.created_at,
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

	bids := []projectBid{}
	for rows.Next() {
		var b projectBid
		if err := rows.Scan(&b.ID, &b.FreelancerID, &b.Amount, &b.Proposal, &b.TimelineDays,
			&b.Message, &b.Status, &b.IsAccepted, &b.AcceptedAt, &b.CreatedAt,
			&b.Freelancer.ID, &b.Freelancer.Name, &b.Freelancer.AvatarURL,
			&b.Freelancer.Rating, &b.Freelancer.TotalReviews); err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		bids = append(bids, b)
	}

	return c.JSON(http.StatusOK, echo.Map{"project": p, "bids": bids})
}

type UpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category" validate:"omitempty,oneof=web-development mobile-development design writing marketing other"`
	Skills      []string   `json:"skills"`
	BudgetMin   *float64   `json:"budget_min" validate:"omitempty,gt=0"`
	BudgetMax   *float64   `json:"budget_max" validate:"omitempty,gt=0"`
	Deadline    *time.Time `json:"deadline"`
	Location    *string    `json:"location"`
	Status      *string    `json:"status" validate:"omitempty,oneof=open in-progress completed cancelled"`
}

// Update applies a partial edit. Only the owning client may mutate, and
// budget bounds are only changed as a pair.
func Update(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid project id"})
	}

	req := new(UpdateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	var clientID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT client_id FROM projects WHERE id = $1 AND is_active = TRUE`, projectID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
		}
		return utils.ServerError(c, "failed to fetch project", err)
	}
	if clientID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to update this project"})
	}

	set := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Title != nil && *req.Title != "" {
		add("title", *req.Title)
	}
	if req.Description != nil && *req.Description != "" {
		add("description", *req.Description)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Skills != nil {
		add("skills", lo.Uniq(lo.FilterMap(req.Skills, func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		})))
	}
	if req.BudgetMin != nil && req.BudgetMax != nil {
		if *req.BudgetMin >= *req.BudgetMax {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "maximum budget must be greater than minimum budget"})
		}
		add("budget_min", *req.BudgetMin)
		add("budget_max", *req.BudgetMax)
	}
	if req.Deadline != nil {
		add("deadline", *req.Deadline)
	}
	if req.Location != nil && *req.Location != "" {
		add("location", *req.Location)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}

	if len(args) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no fields to update"})
	}

	args = append(args, projectID)
	query := fmt.Sprintf(`UPDATE projects SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))
	if _, err := db.Conn.Exec(context.Background(), query, args...); err != nil {
		return utils.ServerError(c, "failed to update project", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "project updated successfully"})
}

// SoftDelete marks a project inactive. Bids and messages are untouched.
func SoftDelete(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid project id"})
	}

	var clientID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT client_id FROM projects WHERE id = $1 AND is_active = TRUE`, projectID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "project not found"})
		}
		return utils.ServerError(c, "failed to fetch project", err)
	}
	if clientID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not authorized to delete this project"})
	}

	if _, err := db.Conn.Exec(context.Background(),
		`UPDATE projects SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, projectID); err != nil {
		return utils.ServerError(c, "failed to delete project", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "project deleted successfully"})
}

// MyProjects lists the caller's own active projects, newest first.
func MyProjects(c echo.Context) error {
	callerID, ok := c.Get("user_id").(string)
	if !ok || callerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(), `
		SELECT p.id, p.client_id, p.title, p.description, p.category, p.skills,
		       p.budget_min, p.budget_max, p.deadline, p.status, p.location,
		       p.views, p.bids, p.is_featured, p.is_active, p.created_at, p.updated_at,
		       u.id, u.name, u.avatar_url, u.rating, u.total_reviews
		FROM projects p
		JOIN users u ON u.id = p.client_id
		WHERE p.client_id = $1 AND p.is_active = TRUE
		ORDER BY p.created_at DESC
	`, callerID)
	if err != nil {
		return utils.ServerError(c, "failed to fetch projects", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProjectWithClient(rows)
		if err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		projects = append(projects, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"projects": projects})
}
