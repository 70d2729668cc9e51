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

func withBirthday(p *person.Person, m time.Month, d int) *person.Person {
	p.Birthday = sql.NullTime{Time: time.Date(1988, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
	return p
}

// Scenario A: birthday 03-15, today 03-14, one day in advance.
func TestBirthdayDetector_AdvanceOffsetMatch(t *testing.T) {
	h := newHarness(false)
	ana := withBirthday(newPerson(1, "ana", true, true), time.March, 15)
	repo := &fakePersonRepo{people: []*person.Person{ana}}
	now := time.Date(2026, time.March, 14, 8, 0, 0, 0, time.UTC)

	d := NewBirthdayDetector(repo, h.dispatcher, 1, fixedClock(now), testLogger())
	report, err := d.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, []notification.PersonSummary{{Name: "ana", Email: "ana@example.com"}}, report.People)
	assert.Equal(t, []int64{1}, h.email.birthdays)
	assert.Equal(t, []int64{1}, h.chat.birthdays)
	assert.Len(t, h.records.all(), 2, "one record per opted-in channel")
}

func TestBirthdayDetector_SelectsOnlyActiveMatches(t *testing.T) {
	h := newHarness(false)
	match := withBirthday(newPerson(1, "ana", true, false), time.March, 14)
	otherDay := withBirthday(newPerson(2, "bruno", true, false), time.March, 15)
	inactive := withBirthday(newPerson(3, "carla", true, false), time.March, 14)
	inactive.IsActive = false
	noChannels := withBirthday(newPerson(4, "davi", false, false), time.March, 14)
	noBirthday := newPerson(5, "eva", true, true)
	repo := &fakePersonRepo{people: []*person.Person{match, otherDay, inactive, noChannels, noBirthday}}
	now := time.Date(2026, time.March, 14, 8, 0, 0, 0, time.UTC)

	d := NewBirthdayDetector(repo, h.dispatcher, 0, fixedClock(now), testLogger())
	report, err := d.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Count, "matches without channels still count")
	assert.Equal(t, []int64{1}, h.email.birthdays)
	assert.Empty(t, h.chat.birthdays)
	assert.Len(t, h.records.all(), 1)
}

func TestBirthdayDetector_AdvanceAcrossYearEnd(t *testing.T) {
	h := newHarness(false)
	p := withBirthday(newPerson(1, "ana", false, true), time.January, 2)
	repo := &fakePersonRepo{people: []*person.Person{p}}
	now := time.Date(2026, time.December, 31, 8, 0, 0, 0, time.UTC)

	d := NewBirthdayDetector(repo, h.dispatcher, 2, fixedClock(now), testLogger())
	report, err := d.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)
}

func TestBirthdayDetector_RerunDispatchesAgain(t *testing.T) {
	h := newHarness(false)
	p := withBirthday(newPerson(1, "ana", true, false), time.March, 14)
	repo := &fakePersonRepo{people: []*person.Person{p}}
	d := NewBirthdayDetector(repo, h.dispatcher, 0, fixedClock(time.Date(2026, time.March, 14, 8, 0, 0, 0, time.UTC)), testLogger())

	_, err := d.Run(context.Background())
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, h.email.birthdays, 2, "birthdays carry no same-day stamp")
}

func TestBirthdayDetector_StoreError(t *testing.T) {
	h := newHarness(false)
	d := NewBirthdayDetector(&fakePersonRepo{listErr: errStoreDown}, h.dispatcher, 1, fixedClock(time.Now()), testLogger())

	_, err := d.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
}
