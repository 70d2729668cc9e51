package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/obligation"
	"reminder_notifier/internal/domain/person"
)

var errStoreDown = errors.New("store unavailable")

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(now time.Time) Clock {
	return Clock{Now: func() time.Time { return now }, Location: now.Location()}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- notification.Repository ---

type fakeNotificationRepo struct {
	mu        sync.Mutex
	records   []*notification.DeliveryRecord
	createErr error
}

func (r *fakeNotificationRepo) Create(_ context.Context, rec *notification.DeliveryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeNotificationRepo) List(_ context.Context, f notification.Filter) ([]*notification.DeliveryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.DeliveryRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if f.Channel != "" && rec.Channel != f.Channel {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeNotificationRepo) Stats(context.Context, time.Time) (*notification.Stats, error) {
	return &notification.Stats{}, nil
}

func (r *fakeNotificationRepo) all() []*notification.DeliveryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.DeliveryRecord(nil), r.records...)
}

// --- person.Repository ---

type fakePersonRepo struct {
	people  []*person.Person
	listErr error
}

func (r *fakePersonRepo) GetByID(_ context.Context, id int64) (*person.Person, error) {
	for _, p := range r.people {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("person not found")
}

func (r *fakePersonRepo) GetByTelegramChatID(_ context.Context, chatID int64) (*person.Person, error) {
	for _, p := range r.people {
		if p.TelegramChatID.Valid && p.TelegramChatID.Int64 == chatID {
			return p, nil
		}
	}
	return nil, errors.New("person not found")
}

func (r *fakePersonRepo) ListActiveWithBirthday(context.Context) ([]*person.Person, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*person.Person
	for _, p := range r.people {
		if p.IsActive && p.Birthday.Valid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePersonRepo) ListByBirthMonth(_ context.Context, month time.Month) ([]*person.Person, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*person.Person
	for _, p := range r.people {
		if p.Birthday.Valid && p.Birthday.Time.Month() == month {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- obligation.Repository ---

// fakeObligationRepo hands out copies on every list, like a real store would.
type fakeObligationRepo struct {
	mu          sync.Mutex
	obligations []*obligation.Obligation
	listErr     error
	updateErr   error
	stamped     []int64
}

func (r *fakeObligationRepo) ListPendingDueBetween(_ context.Context, from, to time.Time) ([]*obligation.Obligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*obligation.Obligation
	for _, o := range r.obligations {
		if o.Status != obligation.StatusPending || o.DueDate.Before(from) || o.DueDate.After(to) {
			continue
		}
		if o.Owner == nil || !o.Owner.IsActive {
			continue
		}
		c := *o
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeObligationRepo) UpdateLastNotified(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	for _, o := range r.obligations {
		if o.ID == id {
			o.LastNotifiedAt.Time, o.LastNotifiedAt.Valid = at, true
			r.stamped = append(r.stamped, id)
			return nil
		}
	}
	return errors.New("obligation not found")
}

func (r *fakeObligationRepo) MarkOverdueBefore(_ context.Context, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return 0, r.updateErr
	}
	var n int64
	for _, o := range r.obligations {
		if o.Status == obligation.StatusPending && o.DueDate.Before(day) {
			o.Status = obligation.StatusOverdue
			n++
		}
	}
	return n, nil
}

// --- ChannelDriver ---

type paymentCall struct {
	obligationID int64
	days         int
}

type fakeDriver struct {
	channel   notification.Channel
	notReady  bool
	err       error
	panicWith any

	mu        sync.Mutex
	birthdays []int64
	payments  []paymentCall
}

func (d *fakeDriver) Channel() notification.Channel { return d.channel }
func (d *fakeDriver) Ready() bool                   { return !d.notReady }

func (d *fakeDriver) SendBirthday(_ context.Context, p *person.Person) (string, error) {
	d.mu.Lock()
	d.birthdays = append(d.birthdays, p.ID)
	d.mu.Unlock()
	if d.panicWith != nil {
		panic(d.panicWith)
	}
	if d.err != nil {
		return "", d.err
	}
	return notification.BirthdayMessage(p).Subject, nil
}

func (d *fakeDriver) SendPaymentReminder(_ context.Context, p *person.Person, o *obligation.Obligation, days int) (string, error) {
	d.mu.Lock()
	d.payments = append(d.payments, paymentCall{obligationID: o.ID, days: days})
	d.mu.Unlock()
	if d.panicWith != nil {
		panic(d.panicWith)
	}
	if d.err != nil {
		return "", d.err
	}
	return notification.PaymentReminderMessage(p, o, days).Subject, nil
}

func (d *fakeDriver) attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.birthdays) + len(d.payments)
}

// --- IntegrationSink ---

type fakeSink struct {
	events []notification.Event
	err    error
}

func (s *fakeSink) Publish(_ context.Context, ev notification.Event) error {
	s.events = append(s.events, ev)
	return s.err
}

// --- Metrics ---

type fakeMetrics struct {
	mu           sync.Mutex
	deliveries   map[notification.Outcome]int
	stageFailed  []string
	cycles       int
	skipped      int
	overdueMoved int64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{deliveries: map[notification.Outcome]int{}}
}

func (m *fakeMetrics) DeliveryAttempted(_ notification.Kind, _ notification.Channel, o notification.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[o]++
}

func (m *fakeMetrics) StageFailed(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageFailed = append(m.stageFailed, stage)
}

func (m *fakeMetrics) CycleCompleted(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
}

func (m *fakeMetrics) CycleSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped++
}

func (m *fakeMetrics) ObligationsOverdue(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overdueMoved += n
}

// --- fixtures ---

type harness struct {
	records    *fakeNotificationRepo
	email      *fakeDriver
	chat       *fakeDriver
	sink       *fakeSink
	metrics    *fakeMetrics
	dispatcher *ChannelDispatcher
}

func newHarness(withSink bool) *harness {
	h := &harness{
		records: &fakeNotificationRepo{},
		email:   &fakeDriver{channel: notification.ChannelEmail},
		chat:    &fakeDriver{channel: notification.ChannelChat},
		metrics: newFakeMetrics(),
	}
	var sink IntegrationSink
	if withSink {
		h.sink = &fakeSink{}
		sink = h.sink
	}
	ledger := NewDeliveryLedger(h.records, SystemClock(time.UTC), testLogger())
	h.dispatcher = NewChannelDispatcher([]ChannelDriver{h.email, h.chat}, ledger, sink, h.metrics, testLogger())
	return h
}

func newPerson(id int64, name string, email, chat bool) *person.Person {
	return &person.Person{
		ID:          id,
		Name:        name,
		Email:       name + "@example.com",
		IsActive:    true,
		Preferences: person.ChannelPreferences{Email: email, Chat: chat},
	}
}
