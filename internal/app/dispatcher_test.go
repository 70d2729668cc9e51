package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/obligation"
)

func TestChannelDispatcher_BothChannelsSucceed(t *testing.T) {
	h := newHarness(false)
	p := newPerson(1, "ana", true, true)

	res := h.dispatcher.Dispatch(context.Background(), DispatchRequest{Kind: notification.KindBirthday, Person: p})

	assert.Equal(t, map[notification.Channel]bool{notification.ChannelEmail: true, notification.ChannelChat: true}, res)
	recs := h.records.all()
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, notification.OutcomeSuccess, rec.Outcome)
		assert.Equal(t, notification.KindBirthday, rec.Kind)
		assert.Equal(t, int64(1), rec.PersonID)
		assert.Equal(t, "Happy Birthday, ana!", rec.Message)
		assert.False(t, rec.ErrorMessage.Valid)
		assert.False(t, rec.ObligationID.Valid)
		assert.NotEqual(t, uuid.Nil, rec.ID)
	}
	assert.Equal(t, 2, h.metrics.deliveries[notification.OutcomeSuccess])
}

func TestChannelDispatcher_FailureDoesNotBlockOtherChannel(t *testing.T) {
	h := newHarness(false)
	h.email.err = errors.New("smtp: connection refused")
	p := newPerson(2, "bruno", true, true)

	res := h.dispatcher.Dispatch(context.Background(), DispatchRequest{Kind: notification.KindBirthday, Person: p})

	assert.False(t, res[notification.ChannelEmail])
	assert.True(t, res[notification.ChannelChat])
	assert.Equal(t, 1, h.chat.attempts(), "chat must still be attempted after email fails")

	recs := h.records.all()
	require.Len(t, recs, 2)
	assert.Equal(t, notification.ChannelEmail, recs[0].Channel)
	assert.Equal(t, notification.OutcomeFailed, recs[0].Outcome)
	assert.Equal(t, "smtp: connection refused", recs[0].ErrorMessage.String)
	assert.Equal(t, notification.OutcomeSuccess, recs[1].Outcome)
}

func TestChannelDispatcher_PanicIsRecordedAsFailure(t *testing.T) {
	h := newHarness(false)
	h.email.panicWith = "nil transport"
	p := newPerson(3, "carla", true, true)

	var res map[notification.Channel]bool
	require.NotPanics(t, func() {
		res = h.dispatcher.Dispatch(context.Background(), DispatchRequest{Kind: notification.KindBirthday, Person: p})
	})

	assert.False(t, res[notification.ChannelEmail])
	assert.True(t, res[notification.ChannelChat])
	recs := h.records.all()
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0].ErrorMessage.String, ErrDriverPanic.Error())
}

func TestChannelDispatcher_NotReadyDriverRecordsFailure(t *testing.T) {
	h := newHarness(false)
	h.chat.notReady = true
	p := newPerson(4, "davi", false, true)

	res := h.dispatcher.Dispatch(context.Background(), DispatchRequest{Kind: notification.KindBirthday, Person: p})

	assert.Equal(t, map[notification.Channel]bool{notification.ChannelChat: false}, res)
	assert.Equal(t, 0, h.chat.attempts())
	recs := h.records.all()
	require.Len(t, recs, 1)
	assert.Equal(t, ErrChannelNotReady.Error(), recs[0].ErrorMessage.String)
	assert.Equal(t, "Failed to send CHAT message", recs[0].Message)
}

// Scenario E: email-only person whose email driver fails.
func TestChannelDispatcher_EmailOnlyFailure(t *testing.T) {
	h := newHarness(false)
	h.email.err = errors.New("mailbox unavailable")
	p := newPerson(5, "eva", true, false)

	var res map[notification.Channel]bool
	require.NotPanics(t, func() {
		res = h.dispatcher.Dispatch(context.Background(), DispatchRequest{Kind: notification.KindBirthday, Person: p})
	})

	assert.Equal(t, map[notification.Channel]bool{notification.ChannelEmail: false}, res)
	assert.Equal(t, 0, h.chat.attempts())
	recs := h.records.all()
	require.Len(t, recs, 1)
	assert.Equal(t, notification.ChannelEmail, recs[0].Channel)
	assert.Equal(t, notification.OutcomeFailed, recs[0].Outcome)
}

func TestChannelDispatcher_PaymentRecordReferencesObligation(t *testing.T) {
	h := newHarness(false)
	p := newPerson(6, "fabio", true, false)
	o := &obligation.Obligation{ID: 77, Direction: obligation.DirectionReceivable, Description: "Invoice", DueDate: date(2026, time.March, 17)}

	h.dispatcher.Dispatch(context.Background(), DispatchRequest{
		Kind:         notification.KindReceivableReminder,
		Person:       p,
		Obligation:   o,
		DaysUntilDue: 3,
	})

	require.Len(t, h.email.payments, 1)
	assert.Equal(t, paymentCall{obligationID: 77, days: 3}, h.email.payments[0])
	recs := h.records.all()
	require.Len(t, recs, 1)
	assert.Equal(t, notification.KindReceivableReminder, recs[0].Kind)
	assert.Equal(t, int64(77), recs[0].ObligationID.Int64)
	assert.Equal(t, "Reminder: Receivable - Invoice", recs[0].Message)
}

func TestChannelDispatcher_LedgerFailureIsSwallowed(t *testing.T) {
	h := newHarness(false)
	h.records.createErr = errStoreDown
	p := newPerson(7, "gabi", true, true)

	res := h.dispatcher.Dispatch(context.Background(), DispatchRequest{Kind: notification.KindBirthday, Person: p})

	assert.True(t, res[notification.ChannelEmail])
	assert.True(t, res[notification.ChannelChat])
	assert.Empty(t, h.records.all())
}

func TestChannelDispatcher_SinkInvokedOncePerDispatch(t *testing.T) {
	h := newHarness(true)
	h.sink.err = errors.New("webhook 502")
	h.email.err = errors.New("down")
	p := newPerson(8, "hugo", true, true)
	o := &obligation.Obligation{ID: 9, Description: "Rent", Amount: 100, DueDate: date(2026, time.March, 14)}

	res := h.dispatcher.Dispatch(context.Background(), DispatchRequest{
		Kind:         notification.KindPayableReminder,
		Person:       p,
		Obligation:   o,
		DaysUntilDue: 0,
	})

	assert.Len(t, res, 2)
	require.Len(t, h.sink.events, 1)
	ev := h.sink.events[0]
	assert.Equal(t, notification.EventTypePayment, ev.Type)
	assert.Equal(t, "hugo", ev.Person.Name)
	require.NotNil(t, ev.Obligation)
	assert.Equal(t, "Rent", ev.Obligation.Description)
	assert.Equal(t, 0, ev.Obligation.DaysUntilDue)
}

func TestChannelDispatcher_BirthdaySinkEventHasNoObligation(t *testing.T) {
	h := newHarness(true)
	h.dispatcher.Dispatch(context.Background(), DispatchRequest{Kind: notification.KindBirthday, Person: newPerson(10, "iris", true, false)})

	require.Len(t, h.sink.events, 1)
	assert.Equal(t, notification.EventTypeBirthday, h.sink.events[0].Type)
	assert.Nil(t, h.sink.events[0].Obligation)
}

func TestChannelDispatcher_ReadyAndSink(t *testing.T) {
	h := newHarness(false)
	h.chat.notReady = true

	assert.Equal(t, map[notification.Channel]bool{notification.ChannelEmail: true, notification.ChannelChat: false}, h.dispatcher.Ready())
	assert.False(t, h.dispatcher.SinkEnabled())
	assert.True(t, newHarness(true).dispatcher.SinkEnabled())
}
