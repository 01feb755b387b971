package storage

import (
	"context"
	"database/sql"

	"github.com/ad/telegram-lottery-bot/internal/domain"
)

// AuditRepository persists the local audit trail
type AuditRepository struct {
	queue *DBQueue
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(queue *DBQueue) *AuditRepository {
	return &AuditRepository{queue: queue}
}

// InsertEntry appends one audit trail row
func (r *AuditRepository) InsertEntry(ctx context.Context, entry *domain.AuditEntry) error {
	return r.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx,
			`INSERT INTO audit_log (user_id, username, kind, action, details, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			entry.UserID, entry.Username, string(entry.Kind), entry.Action, entry.Details, entry.CreatedAt,
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		entry.ID = id
		return nil
	})
}
