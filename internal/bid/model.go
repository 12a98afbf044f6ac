package bid

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sudo-init-do/freelancehub/internal/user"
)

// Bid is a freelancer's offer against one project. The state machine is
// pending -> accepted | rejected | withdrawn; all three are terminal.
type Bid struct {
	ID           string        `json:"id"`
	ProjectID    string        `json:"project_id"`
	FreelancerID string        `json:"freelancer_id"`
	Amount       float64       `json:"amount"`
	Proposal     string        `json:"proposal"`
	TimelineDays int           `json:"timeline_days"`
	Message      string        `json:"message"`
	Status       string        `json:"status"`
	IsAccepted   bool          `json:"is_accepted"`
	AcceptedAt   *time.Time    `json:"accepted_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Freelancer   *user.Summary `json:"freelancer,omitempty"`
}

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusWithdrawn = "withdrawn"
)

// isTerminal reports whether a bid can no longer change state.
func isTerminal(status string) bool {
	return status != StatusPending
}

// withinBudget checks the amount against the project budget, bounds
// inclusive.
func withinBudget(amount, min, max float64) bool {
	return amount >= min && amount <= max
}

func budgetRangeMessage(min, max float64) string {
	return fmt.Sprintf("bid amount must be between $%s and $%s",
		strconv.FormatFloat(min, 'f', -1, 64),
		strconv.FormatFloat(max, 'f', -1, 64))
}
