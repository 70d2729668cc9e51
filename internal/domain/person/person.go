package person

import (
	"database/sql"
	"time"
)

// ChannelPreferences holds a person's per-channel opt-in.
type ChannelPreferences struct {
	Email bool
	Chat  bool
}

// Person is a reminder recipient. Only month and day of Birthday are meaningful.
type Person struct {
	ID             int64
	Name           string
	Email          string
	Phone          sql.NullString
	TelegramChatID sql.NullInt64 // Chat handle; direct user chat on Telegram
	Birthday       sql.NullTime
	IsActive       bool
	Preferences    ChannelPreferences
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasBirthdayOn reports whether the person's birthday falls on day's month and day.
// The year is never compared.
func (p *Person) HasBirthdayOn(day time.Time) bool {
	if !p.Birthday.Valid {
		return false
	}
	b := p.Birthday.Time
	return b.Month() == day.Month() && b.Day() == day.Day()
}

// WantsAnyChannel reports whether at least one channel is opted in.
func (p *Person) WantsAnyChannel() bool {
	return p.Preferences.Email || p.Preferences.Chat
}
