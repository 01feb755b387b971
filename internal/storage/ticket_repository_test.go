package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ad/telegram-lottery-bot/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	_ "modernc.org/sqlite"
)

func setupTicketRepo(t *testing.T) (*TicketRepository, *DBQueue) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	queue := NewDBQueue(db)
	t.Cleanup(queue.Close)

	if err := InitSchema(queue); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	if err := RunMigrations(queue); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewTicketRepository(queue), queue
}

func TestNextTicketNumberSequential(t *testing.T) {
	repo, _ := setupTicketRepo(t)
	ctx := context.Background()

	for want := int64(1); want <= 50; want++ {
		got, err := repo.NextTicketNumber(ctx)
		if err != nil {
			t.Fatalf("NextTicketNumber failed: %v", err)
		}
		if got != want {
			t.Fatalf("Expected ticket number %d, got %d", want, got)
		}
	}
}

func TestNextTicketNumberConcurrent(t *testing.T) {
	repo, _ := setupTicketRepo(t)
	ctx := context.Background()

	const workers = 10
	const perWorker = 20

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				number, err := repo.NextTicketNumber(ctx)
				if err != nil {
					t.Errorf("NextTicketNumber failed: %v", err)
					return
				}
				mu.Lock()
				if seen[number] {
					t.Errorf("Duplicate ticket number issued: %d", number)
				}
				seen[number] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("Expected %d distinct numbers, got %d", workers*perWorker, len(seen))
	}
	// The counter never skips: all numbers 1..N must be present
	for n := int64(1); n <= workers*perWorker; n++ {
		if !seen[n] {
			t.Fatalf("Ticket number %d was skipped", n)
		}
	}
}

func TestTicketRoundTrip(t *testing.T) {
	repo, _ := setupTicketRepo(t)
	ctx := context.Background()

	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("ticket round-trip preserves all fields", prop.ForAll(
		func(userID int64, username, photoRef string) bool {
			ticket := &domain.Ticket{
				UserID:    userID,
				Username:  username,
				PhotoRef:  photoRef,
				Status:    domain.StatusActive,
				CreatedAt: time.Now().Truncate(time.Second),
			}

			number, err := repo.NextTicketNumber(ctx)
			if err != nil {
				t.Logf("Failed to issue number: %v", err)
				return false
			}
			ticket.Number = number

			if err := ticket.Validate(); err != nil {
				return true // skip invalid inputs
			}

			if err := repo.InsertTicket(ctx, ticket); err != nil {
				t.Logf("Failed to insert ticket: %v", err)
				return false
			}

			retrieved, err := repo.GetTicket(ctx, number)
			if err != nil {
				t.Logf("Failed to get ticket: %v", err)
				return false
			}
			if retrieved == nil {
				t.Logf("Ticket %d not found after insert", number)
				return false
			}

			return retrieved.Number == ticket.Number &&
				retrieved.UserID == ticket.UserID &&
				retrieved.Username == ticket.Username &&
				retrieved.PhotoRef == ticket.PhotoRef &&
				retrieved.Status == domain.StatusActive &&
				retrieved.StatusReason == "" &&
				retrieved.CreatedAt.Equal(ticket.CreatedAt)
		},
		gen.Int64Range(1, 1<<40),
		gen.AlphaString(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestGetTicketMissing(t *testing.T) {
	repo, _ := setupTicketRepo(t)

	ticket, err := repo.GetTicket(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetTicket failed: %v", err)
	}
	if ticket != nil {
		t.Fatalf("Expected nil for missing ticket, got %+v", ticket)
	}
}

func TestUpdateTicketStatusConditional(t *testing.T) {
	repo, _ := setupTicketRepo(t)
	ctx := context.Background()

	insertTestTicket(t, repo, 1, 100, "alice", "photo-1")

	// First transition wins
	updated, err := repo.UpdateTicketStatus(ctx, 1, domain.StatusActive, domain.StatusRejected, "blurry")
	if err != nil {
		t.Fatalf("UpdateTicketStatus failed: %v", err)
	}
	if !updated {
		t.Fatal("Expected first transition to apply")
	}

	// Second transition sees a different prev status and must not apply
	updated, err = repo.UpdateTicketStatus(ctx, 1, domain.StatusActive, domain.StatusWon, "")
	if err != nil {
		t.Fatalf("UpdateTicketStatus failed: %v", err)
	}
	if updated {
		t.Fatal("Expected conditional update to miss after the status changed")
	}

	ticket, err := repo.GetTicket(ctx, 1)
	if err != nil {
		t.Fatalf("GetTicket failed: %v", err)
	}
	if ticket.Status != domain.StatusRejected {
		t.Fatalf("Expected status rejected, got %s", ticket.Status)
	}
	if ticket.StatusReason != "blurry" {
		t.Fatalf("Expected reason to be stored, got %q", ticket.StatusReason)
	}
}

func TestListTicketNumbersByUser(t *testing.T) {
	repo, _ := setupTicketRepo(t)
	ctx := context.Background()

	insertTestTicket(t, repo, 1, 100, "alice", "p1")
	insertTestTicket(t, repo, 2, 200, "bob", "p2")
	insertTestTicket(t, repo, 3, 100, "alice", "p3")
	insertTestTicket(t, repo, 4, 100, "alice", "p4")

	// Reject one of alice's tickets, it must drop out of the active list
	if _, err := repo.UpdateTicketStatus(ctx, 3, domain.StatusActive, domain.StatusRejected, "dup"); err != nil {
		t.Fatalf("UpdateTicketStatus failed: %v", err)
	}

	numbers, err := repo.ListTicketNumbersByUser(ctx, 100, domain.StatusActive)
	if err != nil {
		t.Fatalf("ListTicketNumbersByUser failed: %v", err)
	}
	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 4 {
		t.Fatalf("Expected [1 4], got %v", numbers)
	}

	empty, err := repo.ListTicketNumbersByUser(ctx, 999, domain.StatusActive)
	if err != nil {
		t.Fatalf("ListTicketNumbersByUser failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected no tickets for unknown user, got %v", empty)
	}
}

func TestGetRandomActiveTicketOnlyActive(t *testing.T) {
	repo, _ := setupTicketRepo(t)
	ctx := context.Background()

	// Empty round
	ticket, err := repo.GetRandomActiveTicket(ctx)
	if err != nil {
		t.Fatalf("GetRandomActiveTicket failed: %v", err)
	}
	if ticket != nil {
		t.Fatalf("Expected nil on empty round, got %+v", ticket)
	}

	insertTestTicket(t, repo, 1, 100, "alice", "p1")
	insertTestTicket(t, repo, 2, 200, "bob", "p2")

	if _, err := repo.UpdateTicketStatus(ctx, 1, domain.StatusActive, domain.StatusRejected, "x"); err != nil {
		t.Fatalf("UpdateTicketStatus failed: %v", err)
	}

	// With only one active ticket the draw is deterministic
	for i := 0; i < 20; i++ {
		ticket, err := repo.GetRandomActiveTicket(ctx)
		if err != nil {
			t.Fatalf("GetRandomActiveTicket failed: %v", err)
		}
		if ticket == nil || ticket.Number != 2 {
			t.Fatalf("Expected ticket 2, got %+v", ticket)
		}
	}
}

func TestArchiveAllPreservesCounter(t *testing.T) {
	repo, queue := setupTicketRepo(t)
	ctx := context.Background()

	var lastNumber int64
	for i := 0; i < 5; i++ {
		number, err := repo.NextTicketNumber(ctx)
		if err != nil {
			t.Fatalf("NextTicketNumber failed: %v", err)
		}
		lastNumber = number
		insertTestTicket(t, repo, number, 100+int64(i), fmt.Sprintf("user%d", i), fmt.Sprintf("p%d", i))
	}

	if err := repo.ArchiveAll(ctx); err != nil {
		t.Fatalf("ArchiveAll failed: %v", err)
	}

	// Live round is empty now
	for i := int64(1); i <= lastNumber; i++ {
		ticket, err := repo.GetTicket(ctx, i)
		if err != nil {
			t.Fatalf("GetTicket failed: %v", err)
		}
		if ticket != nil {
			t.Fatalf("Ticket %d still live after archive", i)
		}
	}

	// Archive holds every ticket
	var archived int64
	err := queue.Execute(func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM archived_tickets`).Scan(&archived)
	})
	if err != nil {
		t.Fatalf("Failed to count archived tickets: %v", err)
	}
	if archived != lastNumber {
		t.Fatalf("Expected %d archived tickets, got %d", lastNumber, archived)
	}

	// Numbering continues, it never restarts
	next, err := repo.NextTicketNumber(ctx)
	if err != nil {
		t.Fatalf("NextTicketNumber failed: %v", err)
	}
	if next != lastNumber+1 {
		t.Fatalf("Expected counter to continue at %d, got %d", lastNumber+1, next)
	}
}

func insertTestTicket(t *testing.T, repo *TicketRepository, number, userID int64, username, photoRef string) {
	t.Helper()
	err := repo.InsertTicket(context.Background(), &domain.Ticket{
		Number:    number,
		UserID:    userID,
		Username:  username,
		PhotoRef:  photoRef,
		Status:    domain.StatusActive,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to insert ticket %d: %v", number, err)
	}
}
