package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ad/telegram-lottery-bot/internal/domain"

	_ "modernc.org/sqlite"
)

func TestAuditEntryInsert(t *testing.T) {
	queue := setupQueue(t)
	repo := NewAuditRepository(queue)
	ctx := context.Background()

	first := &domain.AuditEntry{
		UserID:    100,
		Username:  "alice",
		Kind:      domain.AuditUser,
		Action:    "photo_uploaded",
		Details:   "ticket #1",
		CreatedAt: time.Now(),
	}
	if err := repo.InsertEntry(ctx, first); err != nil {
		t.Fatalf("InsertEntry failed: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("Expected ID to be backfilled")
	}

	second := &domain.AuditEntry{
		Kind:      domain.AuditSystem,
		Action:    "bot_started",
		CreatedAt: time.Now(),
	}
	if err := repo.InsertEntry(ctx, second); err != nil {
		t.Fatalf("InsertEntry failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("Expected increasing IDs, got %d then %d", first.ID, second.ID)
	}

	var count int
	err := queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&count)
	})
	if err != nil {
		t.Fatalf("Failed to count audit rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 audit rows, got %d", count)
	}
}
