package project

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFor(t *testing.T, target string) ListFilter {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", target, nil)
	return parseListFilter(e.NewContext(req, httptest.NewRecorder()))
}

func TestParseListFilterDefaults(t *testing.T) {
	f := filterFor(t, "/api/projects")

	assert.Equal(t, StatusOpen, f.Status)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Nil(t, f.MinBudget)
	assert.Nil(t, f.MaxBudget)
}

func TestParseListFilterExplicit(t *testing.T) {
	f := filterFor(t, "/api/projects?status=completed&category=design&min_budget=50&max_budget=300&search=logo&page=3&limit=25")

	assert.Equal(t, "completed", f.Status)
	assert.Equal(t, "design", f.Category)
	assert.Equal(t, "logo", f.Search)
	require.NotNil(t, f.MinBudget)
	require.NotNil(t, f.MaxBudget)
	assert.Equal(t, 50.0, *f.MinBudget)
	assert.Equal(t, 300.0, *f.MaxBudget)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 25, f.Limit)
}

func TestParseListFilterIgnoresBadPagination(t *testing.T) {
	f := filterFor(t, "/api/projects?page=-1&limit=9999")

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
}

func TestWhereClauseStatusOnly(t *testing.T) {
	cond, args := ListFilter{Status: StatusOpen}.whereClause()

	assert.Equal(t, "p.is_active = TRUE AND p.status = $1", cond)
	assert.Equal(t, []any{StatusOpen}, args)
}

func TestWhereClauseAllFilters(t *testing.T) {
	min, max := 100.0, 500.0
	f := ListFilter{
		Status:    StatusOpen,
		Category:  "web-development",
		MinBudget: &min,
		MaxBudget: &max,
		Search:    "api",
	}

	cond, args := f.whereClause()

	assert.Contains(t, cond, "p.status = $1")
	assert.Contains(t, cond, "p.category = $2")
	// Budget filters match by overlap, not containment.
	assert.Contains(t, cond, "p.budget_max >= $3")
	assert.Contains(t, cond, "p.budget_min <= $4")
	assert.Contains(t, cond, "p.title ILIKE $5")
	assert.Contains(t, cond, "p.description ILIKE $5")
	assert.Contains(t, cond, "array_to_string(p.skills, ' ') ILIKE $5")
	assert.Equal(t, []any{StatusOpen, "web-development", 100.0, 500.0, "%api%"}, args)
}
