package telegram

import (
	"context"
	"errors"
	"fmt"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/obligation"
	"reminder_notifier/internal/domain/person"
	domaintg "reminder_notifier/internal/domain/telegram"
)

// ErrNoChatHandle is returned for persons without a Telegram chat id.
var ErrNoChatHandle = errors.New("person has no chat handle")

// ChatDriver delivers reminders as Telegram messages. A nil client leaves the
// driver permanently not ready.
type ChatDriver struct {
	client domaintg.Client
}

func NewChatDriver(client domaintg.Client) *ChatDriver {
	return &ChatDriver{client: client}
}

func (d *ChatDriver) Channel() notification.Channel { return notification.ChannelChat }

func (d *ChatDriver) Ready() bool { return d.client != nil }

func (d *ChatDriver) SendBirthday(ctx context.Context, p *person.Person) (string, error) {
	return d.send(ctx, p, notification.BirthdayMessage(p))
}

func (d *ChatDriver) SendPaymentReminder(ctx context.Context, p *person.Person, o *obligation.Obligation, daysUntilDue int) (string, error) {
	return d.send(ctx, p, notification.PaymentReminderMessage(p, o, daysUntilDue))
}

func (d *ChatDriver) send(ctx context.Context, p *person.Person, msg notification.Message) (string, error) {
	if !p.TelegramChatID.Valid || p.TelegramChatID.Int64 == 0 {
		return "", ErrNoChatHandle
	}
	if err := d.client.SendMessage(ctx, p.TelegramChatID.Int64, msg.Body, nil); err != nil {
		return "", fmt.Errorf("failed to send telegram message to chat %d: %w", p.TelegramChatID.Int64, err)
	}
	return msg.Subject, nil
}
