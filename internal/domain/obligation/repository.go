package obligation

import (
	"context"
	"time"
)

// Repository defines the store operations the notification engine needs on obligations.
type Repository interface {
	// ListPendingDueBetween returns PENDING obligations with from <= due_date <= to
	// whose owner is active, with Owner populated, ordered by due date.
	ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]*Obligation, error)
	UpdateLastNotified(ctx context.Context, id int64, at time.Time) error
	// MarkOverdueBefore moves every PENDING obligation due before day to OVERDUE in a
	// single statement and returns the number of rows changed.
	MarkOverdueBefore(ctx context.Context, day time.Time) (int64, error)
}
