package person

import (
	"context"
	"time"
)

// Repository defines read access to Person records. Creation and edits belong to
// the CRUD layer, not to the notification engine.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Person, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*Person, error)
	ListActiveWithBirthday(ctx context.Context) ([]*Person, error)
	ListByBirthMonth(ctx context.Context, month time.Month) ([]*Person, error) // For admin purposes
}
