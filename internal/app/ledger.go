package app

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/obligation"
	"reminder_notifier/internal/domain/person"
)

// LedgerEntry describes one channel attempt to be audited.
type LedgerEntry struct {
	Person     *person.Person
	Kind       notification.Kind
	Channel    notification.Channel
	Outcome    notification.Outcome
	Message    string
	Err        error
	Obligation *obligation.Obligation
}

// DeliveryLedger appends immutable delivery records. Writes are best-effort: a
// failing store is logged and never reported to the caller.
type DeliveryLedger struct {
	repo   notification.Repository
	clock  Clock
	logger *logrus.Entry
}

func NewDeliveryLedger(repo notification.Repository, clock Clock, logger *logrus.Entry) *DeliveryLedger {
	return &DeliveryLedger{
		repo:   repo,
		clock:  clock,
		logger: logger.WithField("component", "delivery_ledger"),
	}
}

// Record writes e as a new DeliveryRecord and returns it. The returned record is
// nil only when the store rejected the write.
func (l *DeliveryLedger) Record(ctx context.Context, e LedgerEntry) *notification.DeliveryRecord {
	rec := &notification.DeliveryRecord{
		ID:       uuid.New(),
		PersonID: e.Person.ID,
		Kind:     e.Kind,
		Channel:  e.Channel,
		Outcome:  e.Outcome,
		Message:  e.Message,
		SentAt:   l.clock.now(),
	}
	if e.Err != nil {
		rec.ErrorMessage = sql.NullString{String: e.Err.Error(), Valid: true}
	}
	if e.Obligation != nil {
		rec.ObligationID = sql.NullInt64{Int64: e.Obligation.ID, Valid: true}
	}

	if err := l.repo.Create(ctx, rec); err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"person_id": rec.PersonID,
			"kind":      rec.Kind,
			"channel":   rec.Channel,
			"outcome":   rec.Outcome,
		}).Error("Failed to write delivery record")
		return nil
	}
	return rec
}
