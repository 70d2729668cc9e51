package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/obligation"
)

// PaymentDetector dispatches reminders for pending obligations due within
// [today, today+advanceDays]. An obligation already stamped today is skipped, so
// at most one reminder per obligation is attempted per calendar day.
type PaymentDetector struct {
	obligations obligation.Repository
	dispatcher  Dispatcher
	advanceDays int
	clock       Clock
	logger      *logrus.Entry
}

func NewPaymentDetector(obligations obligation.Repository, dispatcher Dispatcher, advanceDays int, clock Clock, logger *logrus.Entry) *PaymentDetector {
	return &PaymentDetector{
		obligations: obligations,
		dispatcher:  dispatcher,
		advanceDays: advanceDays,
		clock:       clock,
		logger:      logger.WithField("component", "payment_detector"),
	}
}

func (d *PaymentDetector) Run(ctx context.Context) (notification.PaymentReport, error) {
	today := d.clock.today()
	windowEnd := endOfDay(today.AddDate(0, 0, d.advanceDays))
	log := d.logger.WithFields(logrus.Fields{
		"from": today.Format(time.DateOnly),
		"to":   windowEnd.Format(time.DateOnly),
	})
	log.Info("Checking payments and receivables")

	pending, err := d.obligations.ListPendingDueBetween(ctx, today, windowEnd)
	if err != nil {
		return notification.PaymentReport{}, fmt.Errorf("failed to list pending obligations: %w", err)
	}

	var due []*obligation.Obligation
	for _, o := range pending {
		if o.Owner == nil || !o.Owner.IsActive {
			continue
		}
		if o.NotifiedOn(today) {
			log.WithField("obligation_id", o.ID).Debug("Already notified today, skipping")
			continue
		}
		due = append(due, o)
	}
	log.Infof("Found %d obligation(s) to notify", len(due))

	report := notification.PaymentReport{
		Success:  true,
		Payments: make([]notification.PaymentSummary, 0, len(due)),
	}
	for _, o := range due {
		days := daysUntil(today, o.DueDate)
		d.dispatcher.Dispatch(ctx, DispatchRequest{
			Kind:         notification.KindForDirection(o.Direction),
			Person:       o.Owner,
			Obligation:   o,
			DaysUntilDue: days,
		})

		// The attempt itself satisfies the same-day guard, whatever the channel outcomes.
		stampedAt := d.clock.now()
		if err := d.obligations.UpdateLastNotified(ctx, o.ID, stampedAt); err != nil {
			return report, fmt.Errorf("failed to stamp obligation %d: %w", o.ID, err)
		}
		o.LastNotifiedAt.Time, o.LastNotifiedAt.Valid = stampedAt, true

		report.Count++
		report.Payments = append(report.Payments, summarize(o))
	}
	return report, nil
}

func summarize(o *obligation.Obligation) notification.PaymentSummary {
	s := notification.PaymentSummary{
		Description: o.Description,
		Amount:      o.Amount,
		DueDate:     o.DueDate,
	}
	if o.Owner != nil {
		s.Person = o.Owner.Name
	}
	return s
}
