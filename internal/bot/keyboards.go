package bot

import (
	"strconv"
	"strings"

	"github.com/ad/telegram-lottery-bot/internal/config"
	"github.com/ad/telegram-lottery-bot/internal/locale"

	"github.com/go-telegram/bot/models"
)

// userMenuKeyboard builds the reply keyboard for regular users
func userMenuKeyboard(loc locale.Localizer) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: loc.MustLocalize(locale.ButtonUploadPhoto)}},
			{{Text: loc.MustLocalize(locale.ButtonMyTickets)}},
			{{Text: loc.MustLocalize(locale.ButtonBackToMenu)}},
		},
		ResizeKeyboard: true,
	}
}

// adminMenuKeyboard builds the reply keyboard for administrators
func adminMenuKeyboard(loc locale.Localizer) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: loc.MustLocalize(locale.ButtonStartDraw)}},
			{{Text: loc.MustLocalize(locale.ButtonShowPhoto)}},
			{{Text: loc.MustLocalize(locale.ButtonDeleteTicket)}},
			{{Text: loc.MustLocalize(locale.ButtonArchiveRaffle)}},
			{{Text: loc.MustLocalize(locale.ButtonCheckSettings)}},
			{{Text: loc.MustLocalize(locale.ButtonBackToMenu)}},
		},
		ResizeKeyboard: true,
	}
}

// backMenuKeyboard builds a single back button, used inside dialog flows
func backMenuKeyboard(loc locale.Localizer) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: loc.MustLocalize(locale.ButtonBackToMenu)}},
		},
		ResizeKeyboard: true,
	}
}

// welcomeKeyboard builds the optional channel link buttons for /start.
// Returns nil when no channels are configured.
func welcomeKeyboard(loc locale.Localizer, cfg *config.Config) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	if cfg.ChannelUsername != "" {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text: loc.MustLocalize(locale.WelcomeAddMe),
			URL:  "https://t.me/" + strings.TrimPrefix(cfg.ChannelUsername, "@"),
		}})
	}
	if cfg.UpdatesChannelUsername != "" {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text: loc.MustLocalize(locale.WelcomeUpdates),
			URL:  "https://t.me/" + strings.TrimPrefix(cfg.UpdatesChannelUsername, "@"),
		}})
	}

	if len(rows) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// drawActionsKeyboard builds the confirm/reject buttons attached to a
// draw result. The callback payloads carry the ticket number.
func drawActionsKeyboard(loc locale.Localizer, ticketNumber int64) *models.InlineKeyboardMarkup {
	number := strconv.FormatInt(ticketNumber, 10)
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: loc.MustLocalize(locale.ButtonConfirmWinner), CallbackData: callbackConfirmWin + number},
				{Text: loc.MustLocalize(locale.ButtonRejectTicket), CallbackData: callbackRejectWin + number},
			},
		},
	}
}

// ticketsKeyboard builds the inline keyboard of a user's ticket numbers,
// two buttons per row.
func ticketsKeyboard(loc locale.Localizer, numbers []int64) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	for i := 0; i < len(numbers); i += 2 {
		var row []models.InlineKeyboardButton
		for j := i; j < i+2 && j < len(numbers); j++ {
			number := strconv.FormatInt(numbers[j], 10)
			row = append(row, models.InlineKeyboardButton{
				Text:         loc.MustLocalizeWithTemplate(locale.TicketButton, number),
				CallbackData: callbackViewTicket + number,
			})
		}
		rows = append(rows, row)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
