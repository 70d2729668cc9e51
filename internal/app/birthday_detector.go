package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/person"
)

// BirthdayDetector dispatches birthday greetings for active persons whose birthday
// is advanceDays from today. It keeps no per-person state, so a second run on the
// same day dispatches the same matches again.
type BirthdayDetector struct {
	persons     person.Repository
	dispatcher  Dispatcher
	advanceDays int
	clock       Clock
	logger      *logrus.Entry
}

func NewBirthdayDetector(persons person.Repository, dispatcher Dispatcher, advanceDays int, clock Clock, logger *logrus.Entry) *BirthdayDetector {
	return &BirthdayDetector{
		persons:     persons,
		dispatcher:  dispatcher,
		advanceDays: advanceDays,
		clock:       clock,
		logger:      logger.WithField("component", "birthday_detector"),
	}
}

func (d *BirthdayDetector) Run(ctx context.Context) (notification.BirthdayReport, error) {
	target := d.clock.today().AddDate(0, 0, d.advanceDays)
	log := d.logger.WithField("target", target.Format("01-02"))
	log.Info("Checking birthdays")

	candidates, err := d.persons.ListActiveWithBirthday(ctx)
	if err != nil {
		return notification.BirthdayReport{}, fmt.Errorf("failed to list persons with birthdays: %w", err)
	}

	var matches []*person.Person
	for _, p := range candidates {
		if p.IsActive && p.HasBirthdayOn(target) {
			matches = append(matches, p)
		}
	}
	log.Infof("Found %d birthday(s) to notify", len(matches))

	report := notification.BirthdayReport{
		Success: true,
		Count:   len(matches),
		People:  make([]notification.PersonSummary, 0, len(matches)),
	}
	for _, p := range matches {
		report.People = append(report.People, notification.PersonSummary{Name: p.Name, Email: p.Email})
		if !p.WantsAnyChannel() {
			log.WithField("person_id", p.ID).Info("Person has no channel enabled, skipping dispatch")
			continue
		}
		d.dispatcher.Dispatch(ctx, DispatchRequest{Kind: notification.KindBirthday, Person: p})
	}
	return report, nil
}
