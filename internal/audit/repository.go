// Package audit persists a best-effort trail of repository mutations.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Action labels the recorded mutation.
type Action string

const (
	ActionUpload Action = "upload"
	ActionDelete Action = "delete"
)

// Entry is one audit row.
type Entry struct {
	TeamID     string    `json:"team_id"`
	Path       string    `json:"path"`
	Actor      string    `json:"actor,omitempty"`
	Action     Action    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Repository writes audit entries to PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one entry.
func (r *Repository) Record(ctx context.Context, entry Entry) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO file_audit (team_id, path, actor, action, occurred_at)
VALUES ($1, $2, $3, $4, $5);`

	if _, err := r.pool.Exec(ctx, query, entry.TeamID, entry.Path, entry.Actor, string(entry.Action), entry.OccurredAt); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries for a team, newest first.
func (r *Repository) ListRecent(ctx context.Context, teamID string, limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT team_id, path, actor, action, occurred_at
FROM file_audit
WHERE team_id = $1
ORDER BY occurred_at DESC
LIMIT $2;`

	rows, err := r.pool.Query(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var action string
		if err := rows.Scan(&entry.TeamID, &entry.Path, &entry.Actor, &action, &entry.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Action = Action(action)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
