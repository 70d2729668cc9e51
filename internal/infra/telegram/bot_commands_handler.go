// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"reminder_notifier/internal/domain/person"
	idb "reminder_notifier/internal/infra/database" // For ErrPersonNotFound
)

// BotCommands answers /start and /help for admins, known persons and strangers.
type BotCommands struct {
	ctx             context.Context
	adminTelegramID int64
	personRepo      person.Repository
	logger          *logrus.Entry
}

func NewBotCommands(ctx context.Context, adminTelegramID int64, personRepo person.Repository, baseLogger *logrus.Entry) *BotCommands {
	return &BotCommands{
		ctx:             ctx,
		adminTelegramID: adminTelegramID,
		personRepo:      personRepo,
		logger:          baseLogger.WithField("handler_group", "start_help"),
	}
}

func RegisterBotCommands(b *telebot.Bot, h *BotCommands) {
	b.Handle("/start", h.Start)
	b.Handle("/help", h.Help)
}

func (h *BotCommands) isAdmin(senderID int64) bool {
	return h.adminTelegramID != 0 && senderID == h.adminTelegramID
}

func (h *BotCommands) Start(c telebot.Context) error {
	senderID := c.Sender().ID
	logCtx := h.logger.WithField("command", "/start").WithField("sender_id", senderID)
	logCtx.Info("Processing /start command")

	if h.isAdmin(senderID) {
		logCtx.Info("User identified as Admin")
		return c.Send(fmt.Sprintf("Hello, %s! The notifier is running. Use /help for the command list.", c.Sender().FirstName))
	}

	p, err := h.personRepo.GetByTelegramChatID(h.ctx, senderID)
	if err == nil {
		if p.IsActive {
			logCtx.WithField("person_id", p.ID).Info("User identified as active person")
			return c.Send(fmt.Sprintf("Hello, %s! I will message you here about birthdays and upcoming payments.", p.Name))
		}
		logCtx.WithField("person_id", p.ID).Info("User identified as inactive person")
		return c.Send("Your account is inactive. Please contact the administrator.")
	} else if !errors.Is(err, idb.ErrPersonNotFound) {
		logCtx.WithError(err).Error("Error looking up person for /start command")
		return c.Send("Something went wrong while checking your account. Please try again later.")
	}

	logCtx.Info("User is unknown")
	return c.Send(fmt.Sprintf("Hello! I send reminders to registered people. Ask the administrator to register your chat id: %d", senderID))
}

func (h *BotCommands) Help(c telebot.Context) error {
	senderID := c.Sender().ID
	logCtx := h.logger.WithField("command", "/help").WithField("sender_id", senderID)
	logCtx.Info("Processing /help command")

	if h.isAdmin(senderID) {
		var helpText strings.Builder
		helpText.WriteString("Admin commands:\n\n")
		helpText.WriteString("`/check_now`\n - Run a review cycle now.\n\n")
		helpText.WriteString("`/status`\n - Show channel readiness.\n\n")
		helpText.WriteString("`/birthdays [month]`\n - List birthdays in a month (1-12). Defaults to the current month.\n\n")
		helpText.WriteString("`/help`\n - Show this message.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	}

	p, err := h.personRepo.GetByTelegramChatID(h.ctx, senderID)
	if err == nil && p.IsActive {
		return c.Send("You will receive birthday greetings and reminders for payments due soon in this chat.\n\n`/help` - Show this message.")
	}
	if err != nil && !errors.Is(err, idb.ErrPersonNotFound) {
		logCtx.WithError(err).Error("Error looking up person for /help command")
		return c.Send("Something went wrong while checking your account. Please try again later.")
	}
	return c.Send("No commands are available to you. Contact the administrator to be registered.")
}
