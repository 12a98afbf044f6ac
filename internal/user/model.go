package user

import (
	"context"
	"time"

	"github.com/sudo-init-do/freelancehub/internal/db"
)

// Summary is the public slice of a user attached to projects, bids and
// conversations.
type Summary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	AvatarURL    string  `json:"avatar_url"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

// PublicProfile is the full public view of a user.
type PublicProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	Skills       []string  `json:"skills"`
	HourlyRate   float64   `json:"hourly_rate"`
	Location     string    `json:"location"`
	Website      string    `json:"website"`
	AvatarURL    string    `json:"avatar_url"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	UserType     string    `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// SummariesByID loads public summaries for a set of user ids in one query.
func SummariesByID(ctx context.Context, ids []string) (map[string]Summary, error) {
	if len(ids) == 0 {
		return map[string]Summary{}, nil
	}

	rows, err := db.Conn.Query(ctx,
		`SELECT id, name, avatar_url, rating, total_reviews FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Summary, len(ids))
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.AvatarURL, &s.Rating, &s.TotalReviews); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}
