package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

// Client sends chat messages to a Telegram user. Implementations may block on ctx
// while waiting for an outbound rate-limit slot.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string, options *telebot.SendOptions) error
}
