package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"reminder_notifier/internal/app"
	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/person"
)

const msgUnauthorized = "Error: you are not allowed to run this command."

// AdminCommands is the admin surface backing the bot commands.
type AdminCommands interface {
	CheckNow(ctx context.Context, performingAdminID int64) (*notification.CycleReport, error)
	Status(performingAdminID int64) (*app.ChannelStatus, error)
	BirthdaysInMonth(ctx context.Context, performingAdminID int64, month int) ([]*person.Person, error)
}

// AdminHandlers implements /check_now, /status and /birthdays.
type AdminHandlers struct {
	ctx    context.Context
	admin  AdminCommands
	now    func() time.Time
	logger *logrus.Entry
}

func NewAdminHandlers(ctx context.Context, admin AdminCommands, now func() time.Time, baseLogger *logrus.Entry) *AdminHandlers {
	if now == nil {
		now = time.Now
	}
	return &AdminHandlers{ctx: ctx, admin: admin, now: now, logger: baseLogger.WithField("handler_group", "admin")}
}

// RegisterAdminHandlers registers handlers for admin commands.
func RegisterAdminHandlers(b *telebot.Bot, h *AdminHandlers) {
	b.Handle("/check_now", h.CheckNow)
	b.Handle("/status", h.Status)
	b.Handle("/birthdays", h.Birthdays)
}

func (h *AdminHandlers) handlerLogger(c telebot.Context, command string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"handler":   command,
		"sender_id": c.Sender().ID,
	})
}

func (h *AdminHandlers) CheckNow(c telebot.Context) error {
	handlerLogger := h.handlerLogger(c, "/check_now")
	handlerLogger.Info("Command received")

	report, err := h.admin.CheckNow(h.ctx, c.Sender().ID)
	if err != nil {
		logWithError := handlerLogger.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		case errors.Is(err, app.ErrCycleInProgress):
			logWithError.Info("Review cycle already running")
			return c.Send("A review is already running. Try again in a moment.")
		default:
			logWithError.Error("Manual review cycle failed")
			return c.Send(fmt.Sprintf("The review failed: %s", err.Error()))
		}
	}

	handlerLogger.WithField("run_id", report.RunID).Info("Manual review cycle completed")
	return c.Send(formatCycleReport(report))
}

func formatCycleReport(r *notification.CycleReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review %s finished.\n\n", r.RunID)
	if r.Birthdays.Success {
		fmt.Fprintf(&b, "Birthdays: %d\n", r.Birthdays.Count)
	} else {
		fmt.Fprintf(&b, "Birthdays: failed (%s)\n", r.Birthdays.Error)
	}
	if r.Payments.Success {
		fmt.Fprintf(&b, "Payment reminders: %d\n", r.Payments.Count)
	} else {
		fmt.Fprintf(&b, "Payment reminders: failed (%s)\n", r.Payments.Error)
	}
	return b.String()
}

func (h *AdminHandlers) Status(c telebot.Context) error {
	handlerLogger := h.handlerLogger(c, "/status")

	st, err := h.admin.Status(c.Sender().ID)
	if err != nil {
		handlerLogger.WithError(err).Warn("Unauthorized access attempt")
		return c.Send(msgUnauthorized)
	}

	channels := make([]string, 0, len(st.Channels))
	for ch := range st.Channels {
		channels = append(channels, string(ch))
	}
	sort.Strings(channels)

	var b strings.Builder
	b.WriteString("Channel status:\n")
	for _, ch := range channels {
		fmt.Fprintf(&b, "- %s: %s\n", ch, readiness(st.Channels[notification.Channel(ch)]))
	}
	fmt.Fprintf(&b, "- WEBHOOK: %s\n", enabled(st.SinkEnabled))
	return c.Send(b.String())
}

func readiness(ok bool) string {
	if ok {
		return "ready"
	}
	return "not ready"
}

func enabled(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}

func (h *AdminHandlers) Birthdays(c telebot.Context) error {
	handlerLogger := h.handlerLogger(c, "/birthdays")

	month := int(h.now().Month())
	if args := c.Args(); len(args) > 0 {
		m, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send("Invalid month. Use: /birthdays [1-12]")
		}
		month = m
	}
	handlerLogger = handlerLogger.WithField("month", month)

	people, err := h.admin.BirthdaysInMonth(h.ctx, c.Sender().ID, month)
	if err != nil {
		logWithError := handlerLogger.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		case errors.Is(err, app.ErrInvalidMonth):
			return c.Send("Invalid month. Use: /birthdays [1-12]")
		default:
			logWithError.Error("Failed to list birthdays")
			return c.Send(fmt.Sprintf("Could not list birthdays: %s", err.Error()))
		}
	}

	monthName := time.Month(month).String()
	if len(people) == 0 {
		return c.Send(fmt.Sprintf("No birthdays in %s.", monthName))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Birthdays in %s:\n\n", monthName)
	for _, p := range people {
		status := ""
		if !p.IsActive {
			status = " (inactive)"
		}
		fmt.Fprintf(&b, "%02d - %s%s\n", p.Birthday.Time.Day(), p.Name, status)
	}
	handlerLogger.WithField("count", len(people)).Info("Listed birthdays")
	return c.Send(b.String())
}
