package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/obligation"
	"reminder_notifier/internal/domain/person"
)

var ErrChannelNotReady = errors.New("channel driver is not ready")
var ErrDriverPanic = errors.New("channel driver panicked")

// ChannelDriver transmits reminders over one medium. Send methods return a short
// summary of what was sent (used as the ledger message) or an error.
type ChannelDriver interface {
	Channel() notification.Channel
	Ready() bool
	SendBirthday(ctx context.Context, p *person.Person) (string, error)
	SendPaymentReminder(ctx context.Context, p *person.Person, o *obligation.Obligation, daysUntilDue int) (string, error)
}

// IntegrationSink receives one fire-and-forget event per dispatch.
type IntegrationSink interface {
	Publish(ctx context.Context, event notification.Event) error
}

// DispatchRequest is one reminder for one recipient.
type DispatchRequest struct {
	Kind         notification.Kind
	Person       *person.Person
	Obligation   *obligation.Obligation // Payment kinds only
	DaysUntilDue int                    // Payment kinds only
}

// Dispatcher is what the detectors need from a ChannelDispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) map[notification.Channel]bool
}

// ChannelDispatcher sends one request over every channel the recipient opted into,
// sequentially and in driver order. A failing or panicking driver produces a FAILED
// record and never stops the remaining channels.
type ChannelDispatcher struct {
	drivers []ChannelDriver
	ledger  *DeliveryLedger
	sink    IntegrationSink // optional
	metrics Metrics
	logger  *logrus.Entry
}

func NewChannelDispatcher(drivers []ChannelDriver, ledger *DeliveryLedger, sink IntegrationSink, metrics Metrics, logger *logrus.Entry) *ChannelDispatcher {
	return &ChannelDispatcher{
		drivers: drivers,
		ledger:  ledger,
		sink:    sink,
		metrics: metricsOrNop(metrics),
		logger:  logger.WithField("component", "channel_dispatcher"),
	}
}

// Dispatch returns whether each attempted channel succeeded. Channels the person
// did not opt into are absent from the map.
func (d *ChannelDispatcher) Dispatch(ctx context.Context, req DispatchRequest) map[notification.Channel]bool {
	ctx, span := tracer.Start(ctx, "ChannelDispatcher.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("notification.kind", string(req.Kind)),
		attribute.Int64("person.id", req.Person.ID),
	)

	log := d.logger.WithFields(logrus.Fields{
		"person_id": req.Person.ID,
		"kind":      req.Kind,
	})
	if req.Obligation != nil {
		log = log.WithField("obligation_id", req.Obligation.ID)
	}
	log.Infof("Dispatching %s to %s", req.Kind, req.Person.Name)

	results := make(map[notification.Channel]bool, len(d.drivers))
	for _, drv := range d.drivers {
		ch := drv.Channel()
		if !optedInto(req.Person, ch) {
			continue
		}
		results[ch] = d.attempt(ctx, drv, req, log)
	}

	if d.sink != nil {
		if err := d.sink.Publish(ctx, eventFor(req)); err != nil {
			log.WithError(err).Warn("Integration sink publish failed")
		}
	}

	failed := 0
	for _, ok := range results {
		if !ok {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("dispatch.channels", len(results)), attribute.Int("dispatch.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d channel(s) failed", failed))
	}
	return results
}

// Ready reports each driver's readiness, keyed by channel.
func (d *ChannelDispatcher) Ready() map[notification.Channel]bool {
	out := make(map[notification.Channel]bool, len(d.drivers))
	for _, drv := range d.drivers {
		out[drv.Channel()] = drv.Ready()
	}
	return out
}

// SinkEnabled reports whether an integration sink is configured.
func (d *ChannelDispatcher) SinkEnabled() bool {
	return d.sink != nil
}

func (d *ChannelDispatcher) attempt(ctx context.Context, drv ChannelDriver, req DispatchRequest, log *logrus.Entry) bool {
	ch := drv.Channel()
	summary, err := invokeDriver(ctx, drv, req)

	outcome := notification.OutcomeSuccess
	if err != nil {
		outcome = notification.OutcomeFailed
		log.WithError(err).WithField("channel", ch).Warn("Channel delivery failed")
		if summary == "" {
			summary = fmt.Sprintf("Failed to send %s message", ch)
		}
	} else {
		log.WithField("channel", ch).Info("Channel delivery succeeded")
	}

	d.ledger.Record(ctx, LedgerEntry{
		Person:     req.Person,
		Kind:       req.Kind,
		Channel:    ch,
		Outcome:    outcome,
		Message:    summary,
		Err:        err,
		Obligation: req.Obligation,
	})
	d.metrics.DeliveryAttempted(req.Kind, ch, outcome)
	return err == nil
}

func invokeDriver(ctx context.Context, drv ChannelDriver, req DispatchRequest) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDriverPanic, r)
		}
	}()

	if !drv.Ready() {
		return "", ErrChannelNotReady
	}
	if req.Kind.IsPaymentKind() {
		if req.Obligation == nil {
			return "", fmt.Errorf("%s dispatch without obligation", req.Kind)
		}
		return drv.SendPaymentReminder(ctx, req.Person, req.Obligation, req.DaysUntilDue)
	}
	return drv.SendBirthday(ctx, req.Person)
}

func optedInto(p *person.Person, ch notification.Channel) bool {
	switch ch {
	case notification.ChannelEmail:
		return p.Preferences.Email
	case notification.ChannelChat:
		return p.Preferences.Chat
	default:
		return false
	}
}

func eventFor(req DispatchRequest) notification.Event {
	ev := notification.Event{
		Type: notification.EventTypeBirthday,
		Person: notification.EventPerson{
			Name:  req.Person.Name,
			Email: req.Person.Email,
			Phone: req.Person.Phone.String,
		},
	}
	if req.Kind.IsPaymentKind() && req.Obligation != nil {
		ev.Type = notification.EventTypePayment
		ev.Obligation = &notification.EventObligation{
			Description:  req.Obligation.Description,
			Amount:       req.Obligation.Amount,
			DueDate:      req.Obligation.DueDate,
			DaysUntilDue: req.DaysUntilDue,
		}
	}
	return ev
}
