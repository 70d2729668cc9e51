package person

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPerson_HasBirthdayOn_IgnoresYear(t *testing.T) {
	p := Person{Birthday: sql.NullTime{Time: time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), Valid: true}}

	assert.True(t, p.HasBirthdayOn(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.Local)))
	assert.False(t, p.HasBirthdayOn(time.Date(2026, time.March, 14, 0, 0, 0, 0, time.Local)))
	assert.False(t, p.HasBirthdayOn(time.Date(2026, time.April, 15, 0, 0, 0, 0, time.Local)))

	var noBirthday Person
	assert.False(t, noBirthday.HasBirthdayOn(time.Now()))
}

func TestPerson_WantsAnyChannel(t *testing.T) {
	assert.False(t, (&Person{}).WantsAnyChannel())
	assert.True(t, (&Person{Preferences: ChannelPreferences{Chat: true}}).WantsAnyChannel())
}
