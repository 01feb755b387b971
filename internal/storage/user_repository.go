package storage

import (
	"context"
	"database/sql"
	"time"
)

// UserRepository handles per-user preferences
type UserRepository struct {
	queue *DBQueue
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(queue *DBQueue) *UserRepository {
	return &UserRepository{queue: queue}
}

// GetLanguage returns the stored language key for the user, or "" when
// the user has no stored preference.
func (r *UserRepository) GetLanguage(ctx context.Context, userID int64) (string, error) {
	var language string

	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT language FROM user_languages WHERE user_id = ?`,
			userID,
		).Scan(&language)
	})

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return language, nil
}

// SetLanguage stores or replaces the user's language preference
func (r *UserRepository) SetLanguage(ctx context.Context, userID int64, language string) error {
	return r.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO user_languages (user_id, language, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(user_id) DO UPDATE SET language = excluded.language, updated_at = excluded.updated_at`,
			userID, language, time.Now(),
		)
		return err
	})
}
