package bot

import (
	"context"
	"strconv"

	"github.com/ad/telegram-lottery-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// startPhotoUpload begins the photo upload dialog
func (h *BotHandler) startPhotoUpload(ctx context.Context, user *models.User, chatID int64, loc locale.Localizer) {
	h.audit.LogUserAction(ctx, user.ID, user.Username, "start_photo_upload", "")

	if err := h.sessions.Set(ctx, user.ID, stateAwaitingPhoto, nil); err != nil {
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}
	h.sendText(ctx, chatID, loc.MustLocalize(locale.PhotoUploadInstructions), backMenuKeyboard(loc))
}

// HandlePhoto processes an uploaded photo. Photos are only accepted while
// the user is in the upload dialog; stray photos are ignored.
func (h *BotHandler) HandlePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || len(update.Message.Photo) == 0 {
		return
	}
	user := update.Message.From
	chatID := update.Message.Chat.ID

	state, _, err := h.sessions.Get(ctx, user.ID)
	if err != nil || state != stateAwaitingPhoto {
		return
	}

	loc := h.localizerFor(ctx, user)

	// Telegram sends several sizes of the same photo; keep the largest
	photoRef := largestPhoto(update.Message.Photo)

	number, err := h.raffle.NextTicketNumber(ctx)
	if err != nil {
		h.logger.Error("failed to issue ticket number", "user_id", user.ID, "error", err)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}
	if err := h.raffle.AddTicket(ctx, number, user.ID, user.Username, photoRef); err != nil {
		h.logger.Error("failed to register ticket", "ticket_number", number, "error", err)
		h.sendText(ctx, chatID, loc.MustLocalize(locale.ErrorGeneric), nil)
		return
	}

	if err := h.sessions.Delete(ctx, user.ID); err != nil {
		h.logger.Error("failed to clear upload session", "user_id", user.ID, "error", err)
	}

	numberStr := strconv.FormatInt(number, 10)
	h.audit.LogUserAction(ctx, user.ID, user.Username, "photo_uploaded", "ticket #"+numberStr)

	h.sendText(ctx, chatID,
		loc.MustLocalizeWithTemplate(locale.PhotoRegistered, numberStr),
		userMenuKeyboard(loc),
	)
	h.sendText(ctx, h.config.GroupChatID,
		loc.MustLocalizeWithTemplate(locale.TicketAnnouncement, displayName(user), numberStr),
		nil,
	)
}

// largestPhoto picks the file reference of the biggest photo size
func largestPhoto(sizes []models.PhotoSize) string {
	best := sizes[0]
	for _, size := range sizes[1:] {
		if size.FileSize > best.FileSize {
			best = size
		}
	}
	return best.FileID
}
