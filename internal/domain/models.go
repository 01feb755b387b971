package domain

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrInvalidTicketNumber = errors.New("ticket number must be positive")
	ErrInvalidUserID       = errors.New("user ID must be set")
	ErrEmptyPhotoRef       = errors.New("photo reference cannot be empty")
	ErrInvalidStatus       = errors.New("invalid ticket status")
)

// Operational errors
var (
	// ErrTicketNotFound is returned when a ticket does not exist or is not
	// in the status the caller asked for. The two cases are deliberately
	// indistinguishable so a lookup never confirms another user's ticket.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrDrawInProgress is returned immediately when a draw or an archive
	// is attempted while another draw holds the flag. Callers must not
	// retry in a loop; they report back to the admin.
	ErrDrawInProgress = errors.New("draw already in progress")

	// ErrNoActiveTickets is returned by a draw over an empty round.
	ErrNoActiveTickets = errors.New("no active tickets")

	// ErrInvalidTransition is returned when a status write would move a
	// ticket out of a terminal status.
	ErrInvalidTransition = errors.New("invalid ticket status transition")
)

// TicketStatus represents the lifecycle status of a ticket
type TicketStatus string

const (
	StatusActive   TicketStatus = "active"
	StatusRejected TicketStatus = "rejected"
	StatusWon      TicketStatus = "won"
)

// Valid reports whether the status is one of the known tokens.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusActive, StatusRejected, StatusWon:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is final. Terminal tickets never
// return to the draw pool.
func (s TicketStatus) Terminal() bool {
	return s == StatusRejected || s == StatusWon
}

// CanTransitionTo reports whether the forward-only state machine allows
// moving from s to next. The only legal moves are active -> rejected and
// active -> won.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	return s == StatusActive && next.Terminal()
}

// Ticket represents a single raffle entry backed by an uploaded photo.
// PhotoRef is the transport layer's opaque file handle; the store never
// interprets it.
type Ticket struct {
	Number       int64
	UserID       int64
	Username     string // display only, may be empty
	PhotoRef     string
	Status       TicketStatus
	StatusReason string // set on rejection, empty otherwise
	CreatedAt    time.Time
}

// Validate validates a Ticket before insertion
func (t *Ticket) Validate() error {
	if t.Number <= 0 {
		return ErrInvalidTicketNumber
	}
	if t.UserID == 0 {
		return ErrInvalidUserID
	}
	if t.PhotoRef == "" {
		return ErrEmptyPhotoRef
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// AuditEventKind classifies audit trail entries
type AuditEventKind string

const (
	AuditUser   AuditEventKind = "user"
	AuditAdmin  AuditEventKind = "admin"
	AuditSystem AuditEventKind = "system"
)

// AuditEntry is one row of the local audit trail. The same content is
// mirrored to the audit channel when one is configured.
type AuditEntry struct {
	ID        int64
	UserID    int64
	Username  string
	Kind      AuditEventKind
	Action    string
	Details   string
	CreatedAt time.Time
}
