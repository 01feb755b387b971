package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/ad/telegram-lottery-bot/internal/domain"
)

const ticketCounterName = "ticket_number"

// TicketRepository handles ticket data operations
type TicketRepository struct {
	queue *DBQueue
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(queue *DBQueue) *TicketRepository {
	return &TicketRepository{queue: queue}
}

// NextTicketNumber atomically advances the global ticket counter and
// returns the new value. The counter row is written before the value is
// handed out, so a failed write never consumes a number. The counter is
// global and survives archival.
func (r *TicketRepository) NextTicketNumber(ctx context.Context) (int64, error) {
	var number int64

	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`INSERT INTO counters (name, value) VALUES (?, 1)
			 ON CONFLICT(name) DO UPDATE SET value = value + 1
			 RETURNING value`,
			ticketCounterName,
		).Scan(&number)
	})
	if err != nil {
		return 0, err
	}

	return number, nil
}

// InsertTicket saves a new ticket to the live round
func (r *TicketRepository) InsertTicket(ctx context.Context, ticket *domain.Ticket) error {
	return r.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO tickets (ticket_number, user_id, username, photo_ref, status, status_reason, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ticket.Number, ticket.UserID, ticket.Username, ticket.PhotoRef,
			string(ticket.Status), ticket.StatusReason, ticket.CreatedAt,
		)
		return err
	})
}

// GetTicket retrieves a ticket by number regardless of status.
// Returns (nil, nil) when the ticket does not exist.
func (r *TicketRepository) GetTicket(ctx context.Context, number int64) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var status string

	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT ticket_number, user_id, username, photo_ref, status, status_reason, created_at
			 FROM tickets WHERE ticket_number = ?`,
			number,
		).Scan(
			&ticket.Number, &ticket.UserID, &ticket.Username, &ticket.PhotoRef,
			&status, &ticket.StatusReason, &ticket.CreatedAt,
		)
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}

// ListTicketNumbersByUser returns the user's ticket numbers with the given
// status in ascending order
func (r *TicketRepository) ListTicketNumbersByUser(ctx context.Context, userID int64, status domain.TicketStatus) ([]int64, error) {
	var numbers []int64

	err := r.queue.Execute(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT ticket_number FROM tickets
			 WHERE user_id = ? AND status = ?
			 ORDER BY ticket_number ASC`,
			userID, string(status),
		)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var number int64
			if err := rows.Scan(&number); err != nil {
				return err
			}
			numbers = append(numbers, number)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return numbers, nil
}

// UpdateTicketStatus writes the new status and reason only while the
// ticket still has prevStatus. Returns false when no row matched, which
// means the ticket is gone or was transitioned concurrently.
func (r *TicketRepository) UpdateTicketStatus(ctx context.Context, number int64, prevStatus, newStatus domain.TicketStatus, reason string) (bool, error) {
	var updated bool

	err := r.queue.Execute(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx,
			`UPDATE tickets SET status = ?, status_reason = ?
			 WHERE ticket_number = ? AND status = ?`,
			string(newStatus), reason, number, string(prevStatus),
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		updated = affected > 0
		return nil
	})

	if err != nil {
		return false, err
	}

	return updated, nil
}

// GetRandomActiveTicket picks one active ticket uniformly at random.
// Returns (nil, nil) when no active tickets exist.
func (r *TicketRepository) GetRandomActiveTicket(ctx context.Context) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var status string

	err := r.queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT ticket_number, user_id, username, photo_ref, status, status_reason, created_at
			 FROM tickets WHERE status = ?
			 ORDER BY RANDOM() LIMIT 1`,
			string(domain.StatusActive),
		).Scan(
			&ticket.Number, &ticket.UserID, &ticket.Username, &ticket.PhotoRef,
			&status, &ticket.StatusReason, &ticket.CreatedAt,
		)
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}

// ArchiveAll moves every live ticket into archived_tickets in a single
// transaction. A failure rolls back and leaves the round untouched.
func (r *TicketRepository) ArchiveAll(ctx context.Context) error {
	return r.queue.Execute(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO archived_tickets
			     (ticket_number, user_id, username, photo_ref, status, status_reason, created_at, archived_at)
			 SELECT ticket_number, user_id, username, photo_ref, status, status_reason, created_at, ?
			 FROM tickets`,
			time.Now(),
		)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
			return err
		}

		return tx.Commit()
	})
}
