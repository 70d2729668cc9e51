// internal/domain/notification/event.go
package notification

import "time"

// Event types published to the integration sink.
const (
	EventTypeBirthday = "birthday"
	EventTypePayment  = "payment"
)

// EventPerson is the recipient as seen by downstream integrations.
type EventPerson struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// EventObligation is present on payment events only.
type EventObligation struct {
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	DueDate      time.Time `json:"dueDate"`
	DaysUntilDue int       `json:"daysUntilDue"`
}

// Event is the payload sent once per dispatch to the integration sink.
type Event struct {
	Type       string           `json:"type"`
	Person     EventPerson      `json:"person"`
	Obligation *EventObligation `json:"obligation,omitempty"`
}
