package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ad/telegram-lottery-bot/internal/domain"
	"github.com/ad/telegram-lottery-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// requireAdmin gates privileged actions. Non-admins get a localized
// refusal and the attempt is logged.
func (h *BotHandler) requireAdmin(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer) bool {
	if h.isAdmin(user.ID) {
		return true
	}
	h.logger.Warn("unauthorized admin action attempt", "user_id", user.ID)
	h.sendText(ctx, chatID, loc.MustLocalize(locale.InsufficientRights), nil)
	return false
}

// handleStartDraw draws a random active ticket and presents it with
// confirm/reject buttons. A concurrent draw is rejected, not queued.
func (h *BotHandler) handleStartDraw(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer) {
	if !h.requireAdmin(ctx, user, chatID, loc) {
		return
	}

	ticket, err := h.raffle.DrawRandomActiveTicket(ctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDrawInProgress):
			h.sendText(ctx, chatID, loc.MustLocalize(locale.DrawInProgress), nil)
		case errors.Is(err, domain.ErrNoActiveTickets):
			h.sendText(ctx, chatID, loc.MustLocalize(locale.NoActiveTickets), nil)
		default:
			h.logger.Error("draw failed", "error", err)
			h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		}
		return
	}

	h.audit.LogAdminAction(ctx, user.ID, user.Username, "start_draw",
		"ticket #"+strconv.FormatInt(ticket.Number, 10), "")

	numberStr := strconv.FormatInt(ticket.Number, 10)
	h.sendPhoto(ctx, chatID, ticket.PhotoRef,
		loc.MustLocalizeWithTemplate(locale.DrawResult, numberStr, ticket.Username),
		drawActionsKeyboard(loc, ticket.Number),
	)
}

// handleConfirmWinnerCallback marks the drawn ticket as the winner
func (h *BotHandler) handleConfirmWinnerCallback(
	ctx context.Context,
	cq *models.CallbackQuery,
	user *models.User,
	loc locale.Localizer,
	number int64,
) {
	if !h.isAdmin(user.ID) {
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.NoRights), true)
		return
	}

	ticket, err := h.raffle.GetTicketAnyStatus(ctx, number)
	if err != nil || ticket.Status != domain.StatusActive {
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.TicketUnavailable), true)
		return
	}

	if err := h.raffle.SetTicketStatus(ctx, number, domain.StatusWon, ""); err != nil {
		// A concurrent confirm/reject already settled this ticket
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrTicketNotFound) {
			h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.TicketUnavailable), true)
			return
		}
		h.logger.Error("failed to confirm winner", "ticket_number", number, "error", err)
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.ErrorGeneric), true)
		return
	}

	numberStr := strconv.FormatInt(number, 10)
	h.audit.LogAdminAction(ctx, user.ID, user.Username, "confirm_winner",
		"ticket #"+numberStr, "winner: @"+ticket.Username)

	h.sendText(ctx, h.config.GroupChatID,
		loc.MustLocalizeWithTemplate(locale.WinnerAnnounced, numberStr, ticket.Username), nil)

	h.clearInlineKeyboard(ctx, cq)
	h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.WinnerPublished), false)
}

// handleRejectWinnerCallback starts the rejection dialog for a drawn
// ticket; the actual status write happens when the reason arrives.
func (h *BotHandler) handleRejectWinnerCallback(
	ctx context.Context,
	cq *models.CallbackQuery,
	user *models.User,
	loc locale.Localizer,
	number int64,
) {
	if !h.isAdmin(user.ID) {
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.NoRights), true)
		return
	}

	ticket, err := h.raffle.GetTicketAnyStatus(ctx, number)
	if err != nil || ticket.Status != domain.StatusActive {
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.TicketUnavailable), true)
		return
	}

	err = h.sessions.Set(ctx, user.ID, stateAwaitingRejectReason, map[string]interface{}{
		sessionTicketNumberKey: number,
	})
	if err != nil {
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.ErrorGeneric), true)
		return
	}

	numberStr := strconv.FormatInt(number, 10)
	if chatID := chatIDOfCallback(cq); chatID != 0 {
		h.sendText(ctx, chatID,
			loc.MustLocalizeWithTemplate(locale.AskRejectReason, numberStr),
			backMenuKeyboard(loc),
		)
	}
	h.clearInlineKeyboard(ctx, cq)
	h.answerCallback(ctx, cq.ID, "", false)
}

// handleRejectReasonReply finishes the rejection started from the draw
// result: the ticket leaves the pool and the draw can be repeated.
func (h *BotHandler) handleRejectReasonReply(
	ctx context.Context,
	user *models.User,
	chatID int64,
	loc locale.Localizer,
	data map[string]interface{},
	reason string,
) {
	number, ok := sessionTicketNumber(data)
	if !ok {
		_ = h.sessions.Delete(ctx, user.ID)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.IncorrectRequest), nil)
		return
	}

	if err := h.raffle.SetTicketStatus(ctx, number, domain.StatusRejected, reason); err != nil {
		h.reportStatusError(ctx, chatID, loc, number, err)
		_ = h.sessions.Delete(ctx, user.ID)
		return
	}
	_ = h.sessions.Delete(ctx, user.ID)

	numberStr := strconv.FormatInt(number, 10)
	h.audit.LogAdminAction(ctx, user.ID, user.Username, "reject_ticket", "ticket #"+numberStr, reason)

	h.sendText(ctx, h.config.GroupChatID,
		loc.MustLocalizeWithTemplate(locale.TicketRejected, numberStr, reason), nil)
	h.sendText(ctx, chatID, loc.MustLocalize(locale.DrawContinues), adminMenuKeyboard(loc))
}

// startTicketPrompt begins an admin dialog that asks for a ticket number
func (h *BotHandler) startTicketPrompt(
	ctx context.Context,
	user *models.User,
	chatID int64,
	loc locale.Localizer,
	state, promptKey string,
) {
	if !h.requireAdmin(ctx, user, chatID, loc) {
		return
	}
	if err := h.sessions.Set(ctx, user.ID, state, nil); err != nil {
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}
	h.sendText(ctx, chatID, loc.MustLocalize(promptKey), backMenuKeyboard(loc))
}

// handleViewNumberReply shows any ticket's photo and status to an admin
func (h *BotHandler) handleViewNumberReply(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer, text string) {
	number, err := parseTicketNumber(text)
	if err != nil {
		h.sendText(ctx, chatID, loc.MustLocalize(locale.IncorrectTicketNumber), nil)
		return
	}

	ticket, err := h.raffle.GetTicketAnyStatus(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			h.sendText(ctx, chatID, loc.MustLocalize(locale.TicketNotFound), nil)
		} else {
			h.logger.Error("failed to load ticket", "ticket_number", number, "error", err)
			h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		}
		return
	}
	_ = h.sessions.Delete(ctx, user.ID)

	numberStr := strconv.FormatInt(number, 10)
	h.audit.LogAdminAction(ctx, user.ID, user.Username, "view_ticket_photo", "ticket #"+numberStr, "")

	h.sendPhoto(ctx, chatID, ticket.PhotoRef,
		loc.MustLocalizeWithTemplate(locale.TicketInfo, numberStr, h.statusLabel(loc, ticket.Status)),
		adminMenuKeyboard(loc),
	)
}

// handleDeleteNumberReply validates the number and asks for a reason
func (h *BotHandler) handleDeleteNumberReply(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer, text string) {
	number, err := parseTicketNumber(text)
	if err != nil {
		h.sendText(ctx, chatID, loc.MustLocalize(locale.IncorrectTicketNumber), nil)
		return
	}

	if _, err := h.raffle.GetActiveTicket(ctx, number); err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			h.sendText(ctx, chatID, loc.MustLocalize(locale.TicketNotFound), nil)
		} else {
			h.logger.Error("failed to load ticket", "ticket_number", number, "error", err)
			h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		}
		return
	}

	err = h.sessions.Set(ctx, user.ID, stateAwaitingDeleteReason, map[string]interface{}{
		sessionTicketNumberKey: number,
	})
	if err != nil {
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}
	h.sendText(ctx, chatID,
		loc.MustLocalizeWithTemplate(locale.AskDeleteReason, strconv.FormatInt(number, 10)),
		backMenuKeyboard(loc),
	)
}

// handleDeleteReasonReply removes the ticket from the round with a reason
func (h *BotHandler) handleDeleteReasonReply(
	ctx context.Context,
	user *models.User,
	chatID int64,
	loc locale.Localizer,
	data map[string]interface{},
	reason string,
) {
	number, ok := sessionTicketNumber(data)
	if !ok {
		_ = h.sessions.Delete(ctx, user.ID)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.IncorrectRequest), nil)
		return
	}

	if err := h.raffle.SetTicketStatus(ctx, number, domain.StatusRejected, reason); err != nil {
		h.reportStatusError(ctx, chatID, loc, number, err)
		_ = h.sessions.Delete(ctx, user.ID)
		return
	}
	_ = h.sessions.Delete(ctx, user.ID)

	numberStr := strconv.FormatInt(number, 10)
	h.audit.LogAdminAction(ctx, user.ID, user.Username, "delete_ticket", "ticket #"+numberStr, reason)

	h.sendText(ctx, h.config.GroupChatID,
		loc.MustLocalizeWithTemplate(locale.TicketDeleted, numberStr, reason), nil)
	h.sendText(ctx, chatID, loc.MustLocalize(locale.MainMenuAdmin), adminMenuKeyboard(loc))
}

// handleArchive closes the round: all tickets go to cold storage and the
// numbering continues where it left off.
func (h *BotHandler) handleArchive(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer) {
	if !h.requireAdmin(ctx, user, chatID, loc) {
		return
	}

	if err := h.raffle.ArchiveRound(ctx); err != nil {
		if errors.Is(err, domain.ErrDrawInProgress) {
			h.sendText(ctx, chatID, loc.MustLocalize(locale.DrawInProgress), nil)
			return
		}
		h.logger.Error("failed to archive round", "error", err)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}

	h.audit.LogAdminAction(ctx, user.ID, user.Username, "archive_raffle", "", "")
	h.sendText(ctx, h.config.GroupChatID, loc.MustLocalize(locale.RaffleArchived), nil)
}

// handleCheckSettings shows the runtime configuration to an admin
func (h *BotHandler) handleCheckSettings(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer) {
	if !h.requireAdmin(ctx, user, chatID, loc) {
		return
	}

	h.audit.LogAdminAction(ctx, user.ID, user.Username, "check_settings", "", "")

	logChannel := "-"
	if h.config.LogChannelID != 0 {
		logChannel = strconv.FormatInt(h.config.LogChannelID, 10)
	}
	adminIDs := make([]string, 0, len(h.config.AdminUserIDs))
	for _, id := range h.config.AdminUserIDs {
		adminIDs = append(adminIDs, strconv.FormatInt(id, 10))
	}
	tokenPrefix := h.config.TelegramToken
	if len(tokenPrefix) > 10 {
		tokenPrefix = tokenPrefix[:10]
	}

	h.sendText(ctx, chatID,
		loc.MustLocalizeWithTemplate(locale.SettingsInfo, logChannel, strings.Join(adminIDs, ", "), tokenPrefix),
		nil,
	)
}

func (h *BotHandler) statusLabel(loc locale.Localizer, status domain.TicketStatus) string {
	switch status {
	case domain.StatusRejected:
		return loc.MustLocalize(locale.TicketStatusRejected)
	case domain.StatusWon:
		return loc.MustLocalize(locale.TicketStatusWon)
	default:
		return loc.MustLocalize(locale.TicketStatusActive)
	}
}

func (h *BotHandler) reportStatusError(ctx context.Context, chatID int64, loc locale.Localizer, number int64, err error) {
	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		h.sendText(ctx, chatID, loc.MustLocalize(locale.TicketNotFound), nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		h.sendText(ctx, chatID, loc.MustLocalize(locale.TicketUnavailable), nil)
	default:
		h.logger.Error("failed to update ticket status",
			"ticket_number", fmt.Sprintf("%d", number), "error", err)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
	}
}

func (h *BotHandler) clearInlineKeyboard(ctx context.Context, cq *models.CallbackQuery) {
	if cq.Message.Message == nil {
		return
	}
	_, err := h.bot.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:    cq.Message.Message.Chat.ID,
		MessageID: cq.Message.Message.ID,
	})
	if err != nil {
		h.logger.Error("failed to clear inline keyboard", "error", err)
	}
}
