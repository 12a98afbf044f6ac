package validate

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/freelancehub/internal/auth"
	"github.com/sudo-init-do/freelancehub/internal/bid"
	"github.com/sudo-init-do/freelancehub/internal/project"
)

func badRequestMessage(t *testing.T, err error) string {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	msg, ok := he.Message.(string)
	require.True(t, ok)
	return msg
}

func TestValidateAcceptsCompleteRegistration(t *testing.T) {
	err := New().Validate(&auth.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
		UserType: auth.RoleClient,
	})
	assert.NoError(t, err)
}

func TestValidateRejectsUnknownUserType(t *testing.T) {
	err := New().Validate(&auth.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
		UserType: "admin",
	})
	msg := badRequestMessage(t, err)
	assert.Equal(t, "user_type must be one of: client, freelancer", msg)
}

func TestValidateRejectsShortPassword(t *testing.T) {
	err := New().Validate(&auth.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "abc",
		UserType: auth.RoleFreelancer,
	})
	msg := badRequestMessage(t, err)
	assert.Equal(t, "password must be at least 6 characters", msg)
}

func TestValidateRejectsInvertedBudget(t *testing.T) {
	err := New().Validate(&project.CreateRequest{
		Title:       "Landing page",
		Description: "Single page site",
		Category:    "design",
		BudgetMin:   500,
		BudgetMax:   100,
	})
	msg := badRequestMessage(t, err)
	assert.Equal(t, "budget_max must be greater than budget_min", msg)
}

func TestValidateRejectsMalformedBidProject(t *testing.T) {
	err := New().Validate(&bid.SubmitRequest{
		ProjectID:    "not-a-uuid",
		Amount:       250,
		Proposal:     "I can build this",
		TimelineDays: 14,
	})
	msg := badRequestMessage(t, err)
	assert.Equal(t, "project_id must be a valid id", msg)
}

func TestValidateCollectsEveryMissingField(t *testing.T) {
	err := New().Validate(&auth.LoginRequest{})
	msg := badRequestMessage(t, err)
	assert.Contains(t, msg, "email is required")
	assert.Contains(t, msg, "password is required")
}
