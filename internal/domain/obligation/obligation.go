package obligation

import (
	"database/sql"
	"time"

	"reminder_notifier/internal/domain/person"
)

// Direction tells whether money is owed by the person or to the person.
type Direction string

const (
	DirectionPayable    Direction = "PAYABLE"
	DirectionReceivable Direction = "RECEIVABLE"
)

// Status is the lifecycle state of an obligation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusOverdue   Status = "OVERDUE"
	StatusCancelled Status = "CANCELLED"
)

// Obligation is a payable or receivable with a due date.
type Obligation struct {
	ID             int64
	PersonID       int64
	Owner          *person.Person // Populated by list queries that join the owner
	Direction      Direction
	Description    string
	Amount         float64
	DueDate        time.Time // Calendar date, midnight in the scheduler's location
	Status         Status
	Category       sql.NullString
	Notes          sql.NullString
	LastNotifiedAt sql.NullTime // Last day a reminder was attempted
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NotifiedOn reports whether a reminder was already attempted on the calendar day
// of day, comparing in day's location with the time of day stripped.
func (o *Obligation) NotifiedOn(day time.Time) bool {
	if !o.LastNotifiedAt.Valid {
		return false
	}
	last := o.LastNotifiedAt.Time.In(day.Location())
	y1, m1, d1 := last.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
