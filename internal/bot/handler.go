package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ad/telegram-lottery-bot/internal/config"
	"github.com/ad/telegram-lottery-bot/internal/domain"
	"github.com/ad/telegram-lottery-bot/internal/locale"
	"github.com/ad/telegram-lottery-bot/internal/storage"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Callback payload prefixes. The suffix is always a decimal ticket number
// and is parsed defensively.
const (
	callbackViewTicket = "view_ticket:"
	callbackConfirmWin = "confirm_win:"
	callbackRejectWin  = "reject_win:"
)

// Conversation states persisted in FSMStorage
const (
	stateAwaitingPhoto        = "awaiting_photo"
	stateAwaitingViewNumber   = "awaiting_view_number"
	stateAwaitingDeleteNumber = "awaiting_delete_number"
	stateAwaitingDeleteReason = "awaiting_delete_reason"
	stateAwaitingRejectReason = "awaiting_reject_reason"
)

const sessionTicketNumberKey = "ticket_number"

// BotHandler handles all Telegram bot interactions
type BotHandler struct {
	bot       *bot.Bot
	raffle    *domain.RaffleService
	languages *domain.LanguageService
	audit     *domain.AuditLogger
	sessions  *storage.FSMStorage
	locales   *locale.Registry
	config    *config.Config
	logger    domain.Logger
}

// NewBotHandler creates a new BotHandler with all dependencies
func NewBotHandler(
	b *bot.Bot,
	raffle *domain.RaffleService,
	languages *domain.LanguageService,
	audit *domain.AuditLogger,
	sessions *storage.FSMStorage,
	locales *locale.Registry,
	cfg *config.Config,
	logger domain.Logger,
) *BotHandler {
	return &BotHandler{
		bot:       b,
		raffle:    raffle,
		languages: languages,
		audit:     audit,
		sessions:  sessions,
		locales:   locales,
		config:    cfg,
		logger:    logger,
	}
}

// isAdmin checks if a user ID is in the admin list
func (h *BotHandler) isAdmin(userID int64) bool {
	return h.config.IsAdmin(userID)
}

// localizerFor resolves the user's interface language. On first contact
// the detected language is persisted.
func (h *BotHandler) localizerFor(ctx context.Context, user *models.User) locale.Localizer {
	lang := h.languages.Resolve(ctx, user.ID, locale.Detect(user.LanguageCode))
	return h.locales.For(lang)
}

func displayName(user *models.User) string {
	if user.Username != "" {
		return user.Username
	}
	return strconv.FormatInt(user.ID, 10)
}

// parseTicketNumber parses the decimal suffix of an action payload.
// Anything that is not a positive integer is rejected.
func parseTicketNumber(s string) (int64, error) {
	number, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || number <= 0 {
		return 0, domain.ErrInvalidTicketNumber
	}
	return number, nil
}

func (h *BotHandler) sendText(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (h *BotHandler) answerCallback(ctx context.Context, callbackID, text string, alert bool) {
	_, err := h.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		h.logger.Error("failed to answer callback query", "error", err)
	}
}

// HandleStart handles the /start command: language detection, welcome
// message with optional channel links, then the role-based main menu.
func (h *BotHandler) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	user := update.Message.From
	chatID := update.Message.Chat.ID

	// A fresh /start aborts any half-finished dialog
	if err := h.sessions.Delete(ctx, user.ID); err != nil {
		h.logger.Error("failed to clear session on /start", "user_id", user.ID, "error", err)
	}

	loc := h.localizerFor(ctx, user)
	h.audit.LogUserAction(ctx, user.ID, user.Username, "/start", "language: "+loc.Locale())

	h.sendText(ctx, chatID, loc.MustLocalize(locale.Welcome), welcomeKeyboard(loc, h.config))
	h.sendMenu(ctx, chatID, user, loc)
}

// sendMenu shows the role-based main menu
func (h *BotHandler) sendMenu(ctx context.Context, chatID int64, user *models.User, loc locale.Localizer) {
	if h.isAdmin(user.ID) {
		h.sendText(ctx, chatID, loc.MustLocalize(locale.MainMenuAdmin), adminMenuKeyboard(loc))
		return
	}
	h.sendText(ctx, chatID, loc.MustLocalize(locale.MainMenuUser), userMenuKeyboard(loc))
}

// HandleMessage routes plain text messages: first to an in-flight dialog
// if one exists, then by matching the text against the menu button labels
// in every supported language.
func (h *BotHandler) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	// Photo messages have no text and land here through the catch-all
	if len(update.Message.Photo) > 0 {
		h.HandlePhoto(ctx, b, update)
		return
	}

	user := update.Message.From
	chatID := update.Message.Chat.ID
	text := update.Message.Text

	if strings.HasPrefix(text, "/start") {
		// Registered separately; the catch-all must not double-handle it
		return
	}

	loc := h.localizerFor(ctx, user)

	state, data, err := h.sessions.Get(ctx, user.ID)
	if err == nil {
		if h.locales.MatchButton(locale.ButtonBackToMenu, text) {
			_ = h.sessions.Delete(ctx, user.ID)
			h.sendMenu(ctx, chatID, user, loc)
			return
		}
		h.handleDialogMessage(ctx, user, chatID, loc, state, data, text)
		return
	}
	if !errors.Is(err, storage.ErrSessionNotFound) {
		h.logger.Error("failed to load session", "user_id", user.ID, "error", err)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}

	switch {
	case h.locales.MatchButton(locale.ButtonBackToMenu, text):
		h.sendMenu(ctx, chatID, user, loc)
	case h.locales.MatchButton(locale.ButtonUploadPhoto, text):
		h.startPhotoUpload(ctx, user, chatID, loc)
	case h.locales.MatchButton(locale.ButtonMyTickets, text):
		h.handleMyTickets(ctx, user, chatID, loc)
	case h.locales.MatchButton(locale.ButtonStartDraw, text):
		h.handleStartDraw(ctx, user, chatID, loc)
	case h.locales.MatchButton(locale.ButtonShowPhoto, text):
		h.startTicketPrompt(ctx, user, chatID, loc, stateAwaitingViewNumber, locale.AskTicketNumberView)
	case h.locales.MatchButton(locale.ButtonDeleteTicket, text):
		h.startTicketPrompt(ctx, user, chatID, loc, stateAwaitingDeleteNumber, locale.AskTicketNumberDelete)
	case h.locales.MatchButton(locale.ButtonArchiveRaffle, text):
		h.handleArchive(ctx, user, chatID, loc)
	case h.locales.MatchButton(locale.ButtonCheckSettings, text):
		h.handleCheckSettings(ctx, user, chatID, loc)
	}
}

// handleDialogMessage continues an in-flight conversation
func (h *BotHandler) handleDialogMessage(
	ctx context.Context,
	user *models.User,
	chatID int64,
	loc locale.Localizer,
	state string,
	data map[string]interface{},
	text string,
) {
	switch state {
	case stateAwaitingPhoto:
		// Photos arrive through HandlePhoto; any text here is a mistake
		h.sendText(ctx, chatID, loc.MustLocalize(locale.SendPhotoOnly), backMenuKeyboard(loc))
	case stateAwaitingViewNumber:
		h.handleViewNumberReply(ctx, user, chatID, loc, text)
	case stateAwaitingDeleteNumber:
		h.handleDeleteNumberReply(ctx, user, chatID, loc, text)
	case stateAwaitingDeleteReason:
		h.handleDeleteReasonReply(ctx, user, chatID, loc, data, text)
	case stateAwaitingRejectReason:
		h.handleRejectReasonReply(ctx, user, chatID, loc, data, text)
	default:
		h.logger.Warn("unknown session state, dropping it", "user_id", user.ID, "state", state)
		_ = h.sessions.Delete(ctx, user.ID)
		h.sendMenu(ctx, chatID, user, loc)
	}
}

// handleMyTickets lists the user's active tickets as inline buttons
func (h *BotHandler) handleMyTickets(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer) {
	h.audit.LogUserAction(ctx, user.ID, user.Username, "view_my_tickets", "")

	numbers, err := h.raffle.ListActiveTicketsForUser(ctx, user.ID)
	if err != nil {
		h.logger.Error("failed to list tickets", "user_id", user.ID, "error", err)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}
	if len(numbers) == 0 {
		h.sendText(ctx, chatID, loc.MustLocalize(locale.NoTickets), nil)
		return
	}

	h.sendText(ctx, chatID,
		loc.MustLocalizeWithTemplate(locale.YourTickets, strconv.Itoa(len(numbers))),
		ticketsKeyboard(loc, numbers),
	)
}

// HandleCallback routes inline button presses. Every payload has the form
// action:<ticket number> and the number is never trusted as-is.
func (h *BotHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	user := &cq.From
	loc := h.localizerFor(ctx, user)
	data := cq.Data

	var action, payload string
	switch {
	case strings.HasPrefix(data, callbackViewTicket):
		action, payload = callbackViewTicket, strings.TrimPrefix(data, callbackViewTicket)
	case strings.HasPrefix(data, callbackConfirmWin):
		action, payload = callbackConfirmWin, strings.TrimPrefix(data, callbackConfirmWin)
	case strings.HasPrefix(data, callbackRejectWin):
		action, payload = callbackRejectWin, strings.TrimPrefix(data, callbackRejectWin)
	default:
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.IncorrectRequest), true)
		return
	}

	number, err := parseTicketNumber(payload)
	if err != nil {
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.IncorrectTicketNumber), true)
		return
	}

	switch action {
	case callbackViewTicket:
		h.handleViewTicketCallback(ctx, cq, user, loc, number)
	case callbackConfirmWin:
		h.handleConfirmWinnerCallback(ctx, cq, user, loc, number)
	case callbackRejectWin:
		h.handleRejectWinnerCallback(ctx, cq, user, loc, number)
	}
}

// handleViewTicketCallback shows a user their own ticket photo. Tickets
// of other users come back as "not found" so their existence never leaks.
func (h *BotHandler) handleViewTicketCallback(
	ctx context.Context,
	cq *models.CallbackQuery,
	user *models.User,
	loc locale.Localizer,
	number int64,
) {
	ticket, err := h.raffle.GetActiveTicket(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.TicketNotFound), true)
			return
		}
		h.logger.Error("failed to load ticket", "ticket_number", number, "error", err)
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.ErrorGeneric), true)
		return
	}
	if ticket.UserID != user.ID {
		// Same answer as a missing ticket, existence must not leak
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.TicketNotFound), true)
		return
	}

	h.audit.LogUserAction(ctx, user.ID, user.Username, "view_ticket", "ticket #"+strconv.FormatInt(number, 10))

	chatID := chatIDOfCallback(cq)
	if chatID == 0 {
		h.answerCallback(ctx, cq.ID, loc.MustLocalize(locale.IncorrectRequest), true)
		return
	}
	h.sendPhoto(ctx, chatID, ticket.PhotoRef,
		loc.MustLocalizeWithTemplate(locale.YourTicket, strconv.FormatInt(number, 10)), nil)
	h.answerCallback(ctx, cq.ID, "", false)
}

func (h *BotHandler) sendPhoto(ctx context.Context, chatID int64, photoRef, caption string, markup models.ReplyMarkup) {
	_, err := h.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileString{Data: photoRef},
		Caption:     caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("failed to send photo", "chat_id", chatID, "error", err)
	}
}

func chatIDOfCallback(cq *models.CallbackQuery) int64 {
	if cq.Message.Message != nil {
		return cq.Message.Message.Chat.ID
	}
	return 0
}

// sessionTicketNumber reads the ticket number stashed in a session
// context. JSON round-trips numbers as float64.
func sessionTicketNumber(data map[string]interface{}) (int64, bool) {
	v, ok := data[sessionTicketNumberKey]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
