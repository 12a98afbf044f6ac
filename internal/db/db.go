package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the slice of the pool the handlers use. Production wires a
// *pgxpool.Pool in via Init; tests substitute a mock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

var Conn Querier

// Init connects to Postgres and ensures the schema. The server must not
// start accepting requests before this returns.
func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	ensureSchema()
}

// ensureSchema creates the tables and indexes the handlers rely on. Every
// statement is idempotent so startup is safe against an existing database.
func ensureSchema() {
	ctx := context.Background()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			user_type TEXT NOT NULL CHECK (user_type IN ('client', 'freelancer')),
			bio TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			hourly_rate NUMERIC NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			website TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			rating NUMERIC NOT NULL DEFAULT 0,
			total_reviews INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL CHECK (category IN (
				'web-development', 'mobile-development', 'design', 'writing', 'marketing', 'other'
			)),
			skills TEXT[] NOT NULL DEFAULT '{}',
			budget_min NUMERIC NOT NULL CHECK (budget_min > 0),
			budget_max NUMERIC NOT NULL CHECK (budget_max > budget_min),
			deadline TIMESTAMP WITH TIME ZONE NULL,
			status TEXT NOT NULL DEFAULT 'open' CHECK (status IN (
				'open', 'in-progress', 'completed', 'cancelled'
			)),
			location TEXT NOT NULL DEFAULT 'Remote',
			views INTEGER NOT NULL DEFAULT 0,
			bids INTEGER NOT NULL DEFAULT 0,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_status_active ON projects(status, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_created ON projects(created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS bids (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id),
			freelancer_id UUID NOT NULL REFERENCES users(id),
			amount NUMERIC NOT NULL CHECK (amount > 0),
			proposal TEXT NOT NULL,
			timeline_days INTEGER NOT NULL CHECK (timeline_days >= 1),
			message TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN (
				'pending', 'accepted', 'rejected', 'withdrawn'
			)),
			is_accepted BOOLEAN NOT NULL DEFAULT FALSE,
			accepted_at TIMESTAMP WITH TIME ZONE NULL,
			client_rating INTEGER NULL CHECK (client_rating BETWEEN 1 AND 5),
			client_comment TEXT NULL,
			feedback_at TIMESTAMP WITH TIME ZONE NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT bids_one_per_freelancer UNIQUE (project_id, freelancer_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_project ON bids(project_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_freelancer ON bids(freelancer_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			sender_id UUID NOT NULL REFERENCES users(id),
			receiver_id UUID NOT NULL REFERENCES users(id),
			project_id UUID NULL REFERENCES projects(id),
			content TEXT NOT NULL,
			message_type TEXT NOT NULL DEFAULT 'text' CHECK (message_type IN ('text', 'file', 'image')),
			attachments JSONB NOT NULL DEFAULT '[]',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			read_at TIMESTAMP WITH TIME ZONE NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id) WHERE is_read = FALSE AND is_deleted = FALSE`,
	}

	for _, stmt := range stmts {
		if _, err := Conn.Exec(ctx, stmt); err != nil {
			log.Fatalf("schema setup failed: %v", err)
		}
	}
}
