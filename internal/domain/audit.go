package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AuditRepository interface for the local audit trail
type AuditRepository interface {
	InsertEntry(ctx context.Context, entry *AuditEntry) error
}

// ChannelNotifier mirrors audit messages to an external channel. The
// transport binding lives in the bot layer; a nil notifier disables
// mirroring.
type ChannelNotifier interface {
	Notify(ctx context.Context, text string) error
}

// AuditLogger records user, admin and system events. Audit is best-effort
// by contract: every failure here is logged and swallowed so that no core
// operation ever fails because its audit record did.
type AuditLogger struct {
	entries  AuditRepository
	notifier ChannelNotifier
	logger   Logger
}

// NewAuditLogger creates a new AuditLogger. notifier may be nil.
func NewAuditLogger(entries AuditRepository, notifier ChannelNotifier, logger Logger) *AuditLogger {
	return &AuditLogger{
		entries:  entries,
		notifier: notifier,
		logger:   logger,
	}
}

// LogUserAction records an action performed by a regular user.
func (a *AuditLogger) LogUserAction(ctx context.Context, userID int64, username, action, details string) {
	a.record(ctx, &AuditEntry{
		UserID:   userID,
		Username: username,
		Kind:     AuditUser,
		Action:   action,
		Details:  details,
	})
}

// LogAdminAction records a privileged action with an optional target and
// reason.
func (a *AuditLogger) LogAdminAction(ctx context.Context, userID int64, username, action, target, reason string) {
	var parts []string
	if target != "" {
		parts = append(parts, "target: "+target)
	}
	if reason != "" {
		parts = append(parts, "reason: "+reason)
	}
	a.record(ctx, &AuditEntry{
		UserID:   userID,
		Username: username,
		Kind:     AuditAdmin,
		Action:   action,
		Details:  strings.Join(parts, " | "),
	})
}

// LogSystemEvent records a lifecycle event not tied to a user.
func (a *AuditLogger) LogSystemEvent(ctx context.Context, event, details string) {
	a.record(ctx, &AuditEntry{
		Kind:    AuditSystem,
		Action:  event,
		Details: details,
	})
}

func (a *AuditLogger) record(ctx context.Context, entry *AuditEntry) {
	entry.CreatedAt = time.Now()

	if err := a.entries.InsertEntry(ctx, entry); err != nil {
		a.logger.Error("failed to persist audit entry",
			"kind", string(entry.Kind),
			"action", entry.Action,
			"error", err,
		)
	}

	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, formatAuditMessage(entry)); err != nil {
		a.logger.Error("failed to mirror audit entry to channel",
			"kind", string(entry.Kind),
			"action", entry.Action,
			"error", err,
		)
	}
}

func formatAuditMessage(entry *AuditEntry) string {
	var b strings.Builder

	switch entry.Kind {
	case AuditAdmin:
		b.WriteString("🛡 <b>Admin Action</b>\n\n")
	case AuditSystem:
		b.WriteString("🤖 <b>System Event</b>\n\n")
	default:
		b.WriteString("📊 <b>User Action</b>\n\n")
	}

	if entry.Kind != AuditSystem {
		username := "no username"
		if entry.Username != "" {
			username = "@" + entry.Username
		}
		fmt.Fprintf(&b, "👤 <b>User:</b> %s (%d)\n", username, entry.UserID)
	}
	fmt.Fprintf(&b, "🎯 <b>Action:</b> %s\n", entry.Action)
	if entry.Details != "" {
		fmt.Fprintf(&b, "ℹ️ <b>Info:</b> %s\n", entry.Details)
	}
	fmt.Fprintf(&b, "⏰ <b>Time:</b> %s", entry.CreatedAt.Format("2006-01-02 15:04:05"))

	return b.String()
}
