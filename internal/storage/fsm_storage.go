package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ad/telegram-lottery-bot/internal/logger"
)

var (
	// ErrSessionNotFound is returned when a user has no conversation state
	ErrSessionNotFound = errors.New("session not found")
)

// FSMStorage persists per-user conversation state (photo upload prompt,
// ticket-number prompts, rejection reason prompts) so an in-flight dialog
// survives a restart.
type FSMStorage struct {
	queue  *DBQueue
	logger *logger.Logger
}

// NewFSMStorage creates a new FSM storage backed by SQLite
func NewFSMStorage(queue *DBQueue, log *logger.Logger) *FSMStorage {
	return &FSMStorage{
		queue:  queue,
		logger: log,
	}
}

// Get retrieves the state and context for a user
func (s *FSMStorage) Get(ctx context.Context, userID int64) (state string, data map[string]interface{}, err error) {
	var contextJSON string

	err = s.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `
			SELECT state, context_json
			FROM fsm_sessions
			WHERE user_id = ?
		`, userID).Scan(&state, &contextJSON)
	})

	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil, ErrSessionNotFound
		}
		s.logger.Error("failed to get session", "user_id", userID, "error", err)
		return "", nil, err
	}

	if err := json.Unmarshal([]byte(contextJSON), &data); err != nil {
		s.logger.Error("failed to unmarshal session context", "user_id", userID, "error", err)
		// Corrupted state is unrecoverable, drop it
		_ = s.Delete(ctx, userID)
		return "", nil, err
	}

	return state, data, nil
}

// Set stores the state and context for a user
func (s *FSMStorage) Set(ctx context.Context, userID int64, state string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	contextJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal session context", "user_id", userID, "error", err)
		return err
	}

	err = s.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO fsm_sessions (user_id, state, context_json, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				state = excluded.state,
				context_json = excluded.context_json,
				updated_at = CURRENT_TIMESTAMP
		`, userID, state, string(contextJSON))
		return err
	})

	if err != nil {
		s.logger.Error("failed to set session", "user_id", userID, "state", state, "error", err)
		return err
	}

	s.logger.Debug("session stored", "user_id", userID, "state", state)
	return nil
}

// Delete removes the session for a user. Deleting a missing session is
// not an error.
func (s *FSMStorage) Delete(ctx context.Context, userID int64) error {
	err := s.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM fsm_sessions WHERE user_id = ?`, userID)
		return err
	})

	if err != nil {
		s.logger.Error("failed to delete session", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// CleanupStale removes sessions untouched for more than 30 minutes
func (s *FSMStorage) CleanupStale(ctx context.Context) error {
	var deleted int64

	err := s.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `
			DELETE FROM fsm_sessions
			WHERE updated_at < datetime('now', '-30 minutes')
		`)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})

	if err != nil {
		s.logger.Error("failed to cleanup stale sessions", "error", err)
		return err
	}

	if deleted > 0 {
		s.logger.Info("cleaned up stale sessions", "count", deleted)
	}

	return nil
}
