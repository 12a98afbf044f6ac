package project

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// ListFilter captures the query parameters of the public project listing.
type ListFilter struct {
	Category  string
	Search    string
	Status    string
	MinBudget *float64
	MaxBudget *float64
	Page      int
	Limit     int
}

func parseListFilter(c echo.Context) ListFilter {
	f := ListFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Page:     1,
		Limit:    10,
	}
	if f.Status == "" {
		f.Status = StatusOpen
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_budget"), 64); err == nil {
		f.MinBudget = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_budget"), 64); err == nil {
		f.MaxBudget = &v
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		f.Limit = v
	}
	return f
}

// whereClause renders the filter as a SQL condition over the projects
// table (aliased p) with positional args. Budget filters match by range
// overlap; search matches title, description and skills.
func (f ListFilter) whereClause() (string, []any) {
	where := []string{"p.is_active = TRUE"}
	args := []any{}

	args = append(args, f.Status)
	where = append(where, fmt.Sprintf("p.status = $%d", len(args)))

	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("p.category = $%d", len(args)))
	}
	if f.MinBudget != nil {
		args = append(args, *f.MinBudget)
		where = append(where, fmt.Sprintf("p.budget_max >= $%d", len(args)))
	}
	if f.MaxBudget != nil {
		args = append(args, *f.MaxBudget)
		where = append(where, fmt.Sprintf("p.budget_min <= $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.description ILIKE $%d OR array_to_string(p.skills, ' ') ILIKE $%d)",
			n, n, n))
	}

	return strings.Join(where, " AND "), args
}
