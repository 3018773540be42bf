package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository is a SQLite-backed artifact store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository on an existing database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the cached artifact for a (user, type) pair. A missing row is
// not an error: it returns (nil, nil).
func (r *Repository) Get(ctx context.Context, userID string, typ Type) (*Generated, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT payload, generated_at FROM ai_artifacts WHERE user_id = ? AND artifact_type = ?`,
		userID, string(typ),
	)

	var payload []byte
	var generatedAt time.Time
	if err := row.Scan(&payload, &generatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to load artifact for user %s: %w", ErrStore, userID, err)
	}

	return &Generated{
		UserID:      userID,
		Type:        typ,
		Payload:     payload,
		GeneratedAt: generatedAt,
	}, nil
}

// Upsert replaces the artifact row for (user, type). Concurrent writers for
// the same pair race with last-writer-wins semantics.
func (r *Repository) Upsert(ctx context.Context, g Generated) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_artifacts (user_id, artifact_type, payload, generated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, artifact_type)
		 DO UPDATE SET payload = excluded.payload, generated_at = excluded.generated_at`,
		g.UserID, string(g.Type), []byte(g.Payload), g.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert artifact for user %s: %w", ErrStore, g.UserID, err)
	}
	return nil
}
