package user

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

// SearchFreelancers lists active freelancers filtered by skills, hourly
// rate range and location, best-rated first.
func SearchFreelancers(c echo.Context) error {
	page := 1
	limit := 10
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	where := []string{"user_type = 'freelancer'", "is_active = TRUE"}
	args := []any{}

	if skills := c.QueryParam("skills"); skills != "" {
		parts := normalizeSkills(strings.Split(skills, ","))
		if len(parts) > 0 {
			args = append(args, parts)
			where = append(where, fmt.Sprintf("skills && $%d", len(args)))
		}
	}
	if minRate := c.QueryParam("min_rate"); minRate != "" {
		if v, err := strconv.ParseFloat(minRate, 64); err == nil {
			args = append(args, v)
			where = append(where, fmt.Sprintf("hourly_rate >= $%d", len(args)))
		}
	}
	if maxRate := c.QueryParam("max_rate"); maxRate != "" {
		if v, err := strconv.ParseFloat(maxRate, 64); err == nil {
			args = append(args, v)
			where = append(where, fmt.Sprintf("hourly_rate <= $%d", len(args)))
		}
	}
	if location := c.QueryParam("location"); location != "" {
		args = append(args, "%"+location+"%")
		where = append(where, fmt.Sprintf("location ILIKE $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := db.Conn.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return utils.ServerError(c, "failed to count freelancers", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
		SELECT id, name, bio, skills, hourly_rate, location, website,
		       avatar_url, rating, total_reviews, user_type, created_at
		FROM users WHERE %s
		ORDER BY rating DESC, total_reviews DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return utils.ServerError(c, "failed to search freelancers", err)
	}
	defer rows.Close()

	freelancers := []PublicProfile{}
	for rows.Next() {
		var p PublicProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Bio, &p.Skills, &p.HourlyRate, &p.Location,
			&p.Website, &p.AvatarURL, &p.Rating, &p.TotalReviews, &p.UserType, &p.CreatedAt); err != nil {
			return utils.ServerError(c, "failed to parse record", err)
		}
		freelancers = append(freelancers, p)
	}

	totalPages := (total + limit - 1) / limit
	return c.JSON(http.StatusOK, echo.Map{
		"freelancers": freelancers,
		"total_docs":  total,
		"total_pages": totalPages,
		"page":        page,
		"limit":       limit,
	})
}
