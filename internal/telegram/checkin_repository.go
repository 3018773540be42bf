package telegram

import (
	"context"
	"database/sql"
	"time"
)

// Checkin represents a single recorded weight check-in.
type Checkin struct {
	ID        int64
	UserID    string
	WeightKG  float64
	CheckedAt time.Time
}

// CheckinRepository provides access to weight check-in persistence.
type CheckinRepository struct {
	db *sql.DB
}

// NewCheckinRepository creates a new CheckinRepository instance.
func NewCheckinRepository(db *sql.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

// Record stores a new weight check-in for a user.
func (cr *CheckinRepository) Record(ctx context.Context, userID string, weightKG float64, at time.Time) error {
	_, err := cr.db.ExecContext(ctx, `
		INSERT INTO weight_checkins (user_id, weight_kg, checked_at)
		VALUES (?, ?, ?)`,
		userID, weightKG, at.UTC(),
	)
	return err
}

// Latest returns the most recent check-in for a user, or nil when the user
// has never checked in.
func (cr *CheckinRepository) Latest(ctx context.Context, userID string) (*Checkin, error) {
	row := cr.db.QueryRowContext(ctx, `
		SELECT id, user_id, weight_kg, checked_at
		FROM weight_checkins
		WHERE user_id = ?
		ORDER BY checked_at DESC
		LIMIT 1`, userID)

	var c Checkin
	if err := row.Scan(&c.ID, &c.UserID, &c.WeightKG, &c.CheckedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
