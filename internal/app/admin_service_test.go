package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/person"
)

const adminID int64 = 1001

type stubCycle struct {
	report *notification.CycleReport
	err    error
	runs   int
}

func (c *stubCycle) Run(context.Context) (*notification.CycleReport, error) {
	c.runs++
	return c.report, c.err
}

type stubStatus struct{}

func (stubStatus) Ready() map[notification.Channel]bool {
	return map[notification.Channel]bool{notification.ChannelEmail: true, notification.ChannelChat: false}
}
func (stubStatus) SinkEnabled() bool { return true }

func TestAdminService_Authorization(t *testing.T) {
	cycle := &stubCycle{report: &notification.CycleReport{RunID: "r1"}}

	t.Run("unknown user", func(t *testing.T) {
		svc := NewAdminService(&fakePersonRepo{}, cycle, stubStatus{}, adminID)
		_, err := svc.CheckNow(context.Background(), 5)
		assert.ErrorIs(t, err, ErrAdminNotAuthorized)
		_, err = svc.Status(5)
		assert.ErrorIs(t, err, ErrAdminNotAuthorized)
		_, err = svc.BirthdaysInMonth(context.Background(), 5, 3)
		assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	})

	t.Run("no admin configured", func(t *testing.T) {
		svc := NewAdminService(&fakePersonRepo{}, cycle, stubStatus{}, 0)
		_, err := svc.CheckNow(context.Background(), 0)
		assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	})

	assert.Zero(t, cycle.runs)
}

func TestAdminService_CheckNow(t *testing.T) {
	cycle := &stubCycle{report: &notification.CycleReport{RunID: "r1"}}
	svc := NewAdminService(&fakePersonRepo{}, cycle, stubStatus{}, adminID)

	report, err := svc.CheckNow(context.Background(), adminID)

	require.NoError(t, err)
	assert.Equal(t, "r1", report.RunID)
	assert.Equal(t, 1, cycle.runs)
}

func TestAdminService_CheckNowPropagatesInProgress(t *testing.T) {
	svc := NewAdminService(&fakePersonRepo{}, &stubCycle{err: ErrCycleInProgress}, stubStatus{}, adminID)

	_, err := svc.CheckNow(context.Background(), adminID)

	assert.ErrorIs(t, err, ErrCycleInProgress)
}

func TestAdminService_Status(t *testing.T) {
	svc := NewAdminService(&fakePersonRepo{}, &stubCycle{}, stubStatus{}, adminID)

	st, err := svc.Status(adminID)

	require.NoError(t, err)
	assert.True(t, st.Channels[notification.ChannelEmail])
	assert.False(t, st.Channels[notification.ChannelChat])
	assert.True(t, st.SinkEnabled)
}

func TestAdminService_BirthdaysInMonth(t *testing.T) {
	march := &person.Person{ID: 1, Name: "ana", Birthday: sql.NullTime{Time: date(1990, time.March, 14), Valid: true}}
	june := &person.Person{ID: 2, Name: "bruno", Birthday: sql.NullTime{Time: date(1985, time.June, 2), Valid: true}}
	svc := NewAdminService(&fakePersonRepo{people: []*person.Person{march, june}}, &stubCycle{}, stubStatus{}, adminID)

	people, err := svc.BirthdaysInMonth(context.Background(), adminID, 3)
	require.NoError(t, err)
	assert.Equal(t, []*person.Person{march}, people)

	_, err = svc.BirthdaysInMonth(context.Background(), adminID, 13)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = svc.BirthdaysInMonth(context.Background(), adminID, 0)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}
