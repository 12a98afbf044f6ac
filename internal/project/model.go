package project

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sudo-init-do/freelancehub/internal/user"
)

// Budget is an inclusive range a bid must fall into.
type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Project is a unit of work posted by a client, open for bidding.
type Project struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Skills      []string      `json:"skills"`
	Budget      Budget        `json:"budget"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	Status      string        `json:"status"`
	Location    string        `json:"location"`
	Views       int           `json:"views"`
	Bids        int           `json:"bids"`
	IsFeatured  bool          `json:"is_featured"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Client      *user.Summary `json:"client,omitempty"`
}

// Statuses a project moves through. Only open projects accept bids.
const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// AdjustBidCount moves the denormalized bid counter by delta, clamped at
// zero. The bid ledger calls this inside its own transactions so the
// counter and the bid row move as one unit.
func AdjustBidCount(ctx context.Context, tx execer, projectID string, delta int) error {
	_, err := tx.Exec(ctx,
		`UPDATE projects SET bids = GREATEST(bids + $1, 0), updated_at = NOW() WHERE id = $2`,
		delta, projectID)
	return err
}
