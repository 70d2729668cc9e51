// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// sender is the part of *telebot.Bot the adapter uses.
type sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
// Outbound messages are throttled to stay under Telegram's bot rate limits.
type TelebotAdapter struct {
	bot     sender
	limiter *rate.Limiter
}

// NewTelebotAdapter sends through b at no more than perSecond messages per second.
func NewTelebotAdapter(b sender, perSecond float64) *TelebotAdapter {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &TelebotAdapter{bot: b, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// SendMessage sends a text message to the specified recipient.
func (tba *TelebotAdapter) SendMessage(ctx context.Context, recipientChatID int64, text string, options *telebot.SendOptions) error {
	if err := tba.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for telegram rate limit: %w", err)
	}
	if options == nil {
		options = &telebot.SendOptions{}
	}

	recipient := &telebot.User{ID: recipientChatID} // Direct user chat
	_, err := tba.bot.Send(recipient, text, options)
	return err
}
