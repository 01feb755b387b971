package domain

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// TicketRepository interface for ticket persistence
type TicketRepository interface {
	// NextTicketNumber atomically advances the global counter and returns
	// the new value. The value is durable before it is returned.
	NextTicketNumber(ctx context.Context) (int64, error)
	InsertTicket(ctx context.Context, ticket *Ticket) error
	// GetTicket fetches a ticket regardless of status; (nil, nil) when absent.
	GetTicket(ctx context.Context, number int64) (*Ticket, error)
	// ListTicketNumbersByUser returns the user's ticket numbers with the
	// given status in ascending order.
	ListTicketNumbersByUser(ctx context.Context, userID int64, status TicketStatus) ([]int64, error)
	// UpdateTicketStatus applies the status write only while the ticket
	// still has prevStatus. Returns false when no row matched.
	UpdateTicketStatus(ctx context.Context, number int64, prevStatus, newStatus TicketStatus, reason string) (bool, error)
	// GetRandomActiveTicket picks one active ticket uniformly at random;
	// (nil, nil) when the round is empty.
	GetRandomActiveTicket(ctx context.Context) (*Ticket, error)
	// ArchiveAll transactionally moves every live ticket to cold storage.
	ArchiveAll(ctx context.Context) error
}

// RaffleService owns the ticket lifecycle: numbering, status transitions,
// the single-flight draw and round archival. Constructed once at startup
// and shared by every handler.
type RaffleService struct {
	tickets TicketRepository
	logger  Logger

	// drawBusy guards the draw critical section. Compare-and-swap, never
	// a queue: a caller that loses the race is rejected, not parked.
	drawBusy atomic.Bool
}

// NewRaffleService creates a new RaffleService
func NewRaffleService(tickets TicketRepository, logger Logger) *RaffleService {
	return &RaffleService{
		tickets: tickets,
		logger:  logger,
	}
}

// NextTicketNumber returns the next unused ticket number. Numbers are
// strictly increasing for the lifetime of the deployment and survive
// archival; no number is considered consumed unless this returns nil error.
func (s *RaffleService) NextTicketNumber(ctx context.Context) (int64, error) {
	number, err := s.tickets.NextTicketNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("advance ticket counter: %w", err)
	}
	return number, nil
}

// AddTicket registers a new active ticket for the given owner. The number
// must come from NextTicketNumber.
func (s *RaffleService) AddTicket(ctx context.Context, number, userID int64, username, photoRef string) error {
	ticket := &Ticket{
		Number:    number,
		UserID:    userID,
		Username:  username,
		PhotoRef:  photoRef,
		Status:    StatusActive,
		CreatedAt: time.Now(),
	}
	if err := ticket.Validate(); err != nil {
		return err
	}
	if err := s.tickets.InsertTicket(ctx, ticket); err != nil {
		return fmt.Errorf("insert ticket %d: %w", number, err)
	}
	s.logger.Info("ticket registered", "ticket_number", number, "user_id", userID)
	return nil
}

// ListActiveTicketsForUser returns the user's active ticket numbers in
// ascending order. An empty slice is a normal result.
func (s *RaffleService) ListActiveTicketsForUser(ctx context.Context, userID int64) ([]int64, error) {
	numbers, err := s.tickets.ListTicketNumbersByUser(ctx, userID, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list tickets for user %d: %w", userID, err)
	}
	return numbers, nil
}

// GetActiveTicket fetches a ticket only if it is active. A missing ticket
// and a non-active ticket both come back as ErrTicketNotFound.
func (s *RaffleService) GetActiveTicket(ctx context.Context, number int64) (*Ticket, error) {
	ticket, err := s.tickets.GetTicket(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", number, err)
	}
	if ticket == nil || ticket.Status != StatusActive {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

// GetTicketAnyStatus fetches a ticket regardless of status. Used by the
// privileged admin flows only.
func (s *RaffleService) GetTicketAnyStatus(ctx context.Context, number int64) (*Ticket, error) {
	ticket, err := s.tickets.GetTicket(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("get ticket %d: %w", number, err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

// SetTicketStatus applies a forward-only status transition. The write is
// conditional on the status observed here, so a concurrent transition
// surfaces as ErrInvalidTransition rather than a silent overwrite.
func (s *RaffleService) SetTicketStatus(ctx context.Context, number int64, status TicketStatus, reason string) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	ticket, err := s.tickets.GetTicket(ctx, number)
	if err != nil {
		return fmt.Errorf("get ticket %d: %w", number, err)
	}
	if ticket == nil {
		return ErrTicketNotFound
	}
	if !ticket.Status.CanTransitionTo(status) {
		return ErrInvalidTransition
	}
	updated, err := s.tickets.UpdateTicketStatus(ctx, number, ticket.Status, status, reason)
	if err != nil {
		return fmt.Errorf("update ticket %d status: %w", number, err)
	}
	if !updated {
		// Lost a race with another transition; the ticket is terminal now.
		return ErrInvalidTransition
	}
	s.logger.Info("ticket status changed",
		"ticket_number", number,
		"status", string(status),
		"reason", reason,
	)
	return nil
}

// DrawRandomActiveTicket selects one active ticket uniformly at random.
// At most one draw is in flight system-wide: a concurrent caller gets
// ErrDrawInProgress immediately. The flag is held only while selecting;
// the admin's confirm/reject happen later as independent operations.
func (s *RaffleService) DrawRandomActiveTicket(ctx context.Context) (*Ticket, error) {
	if !s.drawBusy.CompareAndSwap(false, true) {
		return nil, ErrDrawInProgress
	}
	defer s.drawBusy.Store(false)

	ticket, err := s.tickets.GetRandomActiveTicket(ctx)
	if err != nil {
		return nil, fmt.Errorf("draw ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNoActiveTickets
	}
	s.logger.Info("ticket drawn", "ticket_number", ticket.Number, "user_id", ticket.UserID)
	return ticket, nil
}

// ArchiveRound moves every live ticket (any status) to cold storage in a
// single transaction, leaving the round empty. The global counter is not
// reset. Archival takes the same draw flag, so it can never interleave
// with a selection in flight.
func (s *RaffleService) ArchiveRound(ctx context.Context) error {
	if !s.drawBusy.CompareAndSwap(false, true) {
		return ErrDrawInProgress
	}
	defer s.drawBusy.Store(false)

	if err := s.tickets.ArchiveAll(ctx); err != nil {
		return fmt.Errorf("archive round: %w", err)
	}
	s.logger.Info("round archived")
	return nil
}
