package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LastReminder returns when the user was last reminded of their todos. The zero time means
// never.
func (d *Database) LastReminder(ctx context.Context, userID string) (time.Time, error) {
	var lastAt int64

	err := d.conn.QueryRowContext(ctx, `SELECT last_at FROM reminder WHERE user_id = $1`, userID).Scan(&lastAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("error loading last reminder for %s: %w", userID, err)
	}

	return time.UnixMilli(lastAt), nil
}

// SetLastReminder records that the user was reminded at the given time.
func (d *Database) SetLastReminder(ctx context.Context, userID string, at time.Time) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO reminder (user_id, last_at) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET last_at = excluded.last_at`,
		userID, at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error saving last reminder for %s: %w", userID, err)
	}

	return nil
}
