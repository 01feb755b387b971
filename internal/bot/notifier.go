package bot

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChannelAuditNotifier mirrors audit messages into a Telegram channel
type ChannelAuditNotifier struct {
	bot       *bot.Bot
	channelID int64
}

// NewChannelAuditNotifier creates a notifier posting to channelID
func NewChannelAuditNotifier(b *bot.Bot, channelID int64) *ChannelAuditNotifier {
	return &ChannelAuditNotifier{
		bot:       b,
		channelID: channelID,
	}
}

// Notify posts a single audit message to the channel
func (n *ChannelAuditNotifier) Notify(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.channelID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	return err
}
