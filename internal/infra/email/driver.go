package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/obligation"
	"reminder_notifier/internal/domain/person"
	"reminder_notifier/internal/infra/config"
)

// ErrNoAddress is returned for persons without an email address.
var ErrNoAddress = errors.New("person has no email address")

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Driver delivers reminders over SMTP. It is ready only when credentials are set.
type Driver struct {
	cfg      config.EmailConfig
	sendMail SendFunc
}

func NewDriver(cfg config.EmailConfig) *Driver {
	return &Driver{cfg: cfg, sendMail: smtp.SendMail}
}

// WithSendFunc replaces the transport, mainly for tests.
func (d *Driver) WithSendFunc(fn SendFunc) *Driver {
	d.sendMail = fn
	return d
}

func (d *Driver) Channel() notification.Channel { return notification.ChannelEmail }

func (d *Driver) Ready() bool {
	return d.cfg.Host != "" && d.cfg.User != "" && d.cfg.Pass != ""
}

func (d *Driver) SendBirthday(ctx context.Context, p *person.Person) (string, error) {
	return d.send(ctx, p, notification.BirthdayMessage(p))
}

func (d *Driver) SendPaymentReminder(ctx context.Context, p *person.Person, o *obligation.Obligation, daysUntilDue int) (string, error) {
	return d.send(ctx, p, notification.PaymentReminderMessage(p, o, daysUntilDue))
}

func (d *Driver) send(ctx context.Context, p *person.Person, msg notification.Message) (string, error) {
	to := strings.TrimSpace(p.Email)
	if to == "" {
		return "", ErrNoAddress
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	auth := smtp.PlainAuth("", d.cfg.User, d.cfg.Pass, d.cfg.Host)
	if err := d.sendMail(addr, auth, envelopeAddress(d.from()), []string{to}, d.compose(to, msg)); err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return msg.Subject, nil
}

func (d *Driver) from() string {
	if d.cfg.From != "" {
		return d.cfg.From
	}
	return d.cfg.User
}

// envelopeAddress strips a display name, as SMTP MAIL FROM takes a bare address.
func envelopeAddress(from string) string {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address
	}
	return from
}

// compose builds an RFC 5322 plain-text message.
func (d *Driver) compose(to string, msg notification.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", d.from())
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
